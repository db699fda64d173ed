package service

import (
	"context"
	"time"

	"lockout_web/internal/cf"
)

// ClockSkew is subtracted from the lower time bound when validating solve
// timestamps. The match start is stamped by our clock while submissions
// carry the judge's clock, and the two disagree by up to this much.
const ClockSkew = 30 * time.Second

// Solve is a qualifying accepted submission.
type Solve struct {
	At time.Time
}

// SolveFinder locates a player's earliest qualifying solve for one problem.
// A nil result with a nil error means no solve was found; an error means
// the answer is unknown and must not advance any lock state.
type SolveFinder interface {
	FirstSolveSince(ctx context.Context, handle string, contestID int, index string, since time.Time) (*Solve, error)
}

// SolveDetector implements SolveFinder against the judge's submission
// history. It only inspects a bounded recent window, which is enough
// because matches are short-lived.
type SolveDetector struct {
	source cf.SubmissionSource
	window int
}

func NewSolveDetector(source cf.SubmissionSource) *SolveDetector {
	return &SolveDetector{source: source, window: cf.SubmissionWindow}
}

// FirstSolveSince scans the handle's recent submissions for accepted ones
// matching (contestID, index) at or after since minus the skew tolerance,
// and returns the earliest.
func (d *SolveDetector) FirstSolveSince(ctx context.Context, handle string, contestID int, index string, since time.Time) (*Solve, error) {
	subs, err := d.source.ListRecentSubmissions(ctx, handle, d.window)
	if err != nil {
		return nil, err
	}

	floor := since.Add(-ClockSkew)
	var best *Solve
	for _, s := range subs {
		if !s.Accepted() {
			continue
		}
		if s.ContestID != contestID || s.Index != index {
			continue
		}
		if s.At.Before(floor) {
			continue
		}
		if best == nil || s.At.Before(best.At) {
			best = &Solve{At: s.At}
		}
	}
	return best, nil
}
