package service

import (
	"time"

	"lockout_web/internal/models"
)

// Decision is the resolver's verdict for one problem.
type Decision struct {
	Winner   models.Side
	SolvedAt time.Time
}

// ResolveLockout decides which side locks the problem given both sides'
// detections. A nil Solve means that side has no qualifying solve. The
// earliest timestamp wins; with only one solve that side wins; with none
// the problem stays open and nil is returned.
//
// On an exact timestamp tie the judge gives us no ordering, so the
// lexicographically first handle wins. This is a deterministic policy
// choice, not something the judge defines.
func ResolveLockout(p1, p2 *Solve, p1Handle, p2Handle string) *Decision {
	switch {
	case p1 == nil && p2 == nil:
		return nil
	case p2 == nil:
		return &Decision{Winner: models.SideP1, SolvedAt: p1.At}
	case p1 == nil:
		return &Decision{Winner: models.SideP2, SolvedAt: p2.At}
	case p1.At.Before(p2.At):
		return &Decision{Winner: models.SideP1, SolvedAt: p1.At}
	case p2.At.Before(p1.At):
		return &Decision{Winner: models.SideP2, SolvedAt: p2.At}
	case p1Handle <= p2Handle:
		return &Decision{Winner: models.SideP1, SolvedAt: p1.At}
	default:
		return &Decision{Winner: models.SideP2, SolvedAt: p2.At}
	}
}
