package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"lockout_web/internal/models"
	"lockout_web/internal/repository"
)

// roomPoller is one room's polling task. The context cancels the schedule;
// an in-flight tick is never interrupted, only kept from rescheduling.
type roomPoller struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// PollerManager keeps at most one active polling task per room code. Each
// task re-reads its room from the registry every tick, evaluates the open
// problems against both handles' submission history, applies winning locks
// and broadcasts them, and finishes the room when the deadline passes.
type PollerManager struct {
	roomRepo repository.RoomRepository
	finder   SolveFinder
	notifier Notifier
	clock    clockwork.Clock

	interval     time.Duration
	initialDelay time.Duration
	problemDelay time.Duration

	mu      sync.Mutex
	pollers map[string]*roomPoller
}

func NewPollerManager(roomRepo repository.RoomRepository, finder SolveFinder, notifier Notifier, clock clockwork.Clock, interval, initialDelay, problemDelay time.Duration) *PollerManager {
	return &PollerManager{
		roomRepo:     roomRepo,
		finder:       finder,
		notifier:     notifier,
		clock:        clock,
		interval:     interval,
		initialDelay: initialDelay,
		problemDelay: problemDelay,
		pollers:      make(map[string]*roomPoller),
	}
}

// Start spawns the room's polling task, replacing any existing one.
func (m *PollerManager) Start(code string) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &roomPoller{ctx: ctx, cancel: cancel}

	m.mu.Lock()
	if old, ok := m.pollers[code]; ok {
		old.cancel()
	}
	m.pollers[code] = p
	m.mu.Unlock()

	go m.run(p, code)
}

// Stop cancels the room's polling task. Safe to call when none is active.
func (m *PollerManager) Stop(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pollers[code]; ok {
		p.cancel()
		delete(m.pollers, code)
	}
}

// Active reports whether the room currently has a polling task.
func (m *PollerManager) Active(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.pollers[code]
	return ok
}

// release removes the task from the registry, but only if it is still the
// current one; a replacement started meanwhile must not be torn down.
func (m *PollerManager) release(code string, p *roomPoller) {
	p.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollers[code] == p {
		delete(m.pollers, code)
	}
}

func (m *PollerManager) run(p *roomPoller, code string) {
	// One immediate pass shortly after spawn, then the fixed interval.
	select {
	case <-m.clock.After(m.initialDelay):
	case <-p.ctx.Done():
		return
	}
	if m.safeTick(p.ctx, code) {
		m.release(code, p)
		return
	}

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			if m.safeTick(p.ctx, code) {
				m.release(code, p)
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// safeTick runs one tick and contains its failures: an errored tick is
// logged and the schedule continues, it never kills the room's polling.
func (m *PollerManager) safeTick(ctx context.Context, code string) (done bool) {
	done, err := m.tick(ctx, code)
	if err != nil {
		log.Printf("[tick] %s: %v", code, err)
	}
	return done
}

// tick is one full evaluation pass. It reports done=true when polling for
// this room should stop (room gone or match over).
func (m *PollerManager) tick(ctx context.Context, code string) (bool, error) {
	room, err := m.roomRepo.FindByCode(code)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	// Expiry outranks problem evaluation within the same tick.
	if room.Expired(m.clock.Now()) {
		if err := m.roomRepo.SetFinished(room.ID, nil); err != nil {
			return false, err
		}
		if updated, err := m.roomRepo.FindByCode(code); err == nil {
			m.notifier.RoomUpdated(updated)
		}
		return true, nil
	}

	// Should not happen while a poller is active, but a racing stop/start
	// can hand us a room without a stamped window.
	if room.StartAt == nil {
		return false, nil
	}

	for i := range room.Problems {
		prob := &room.Problems[i]
		if prob.State != models.ProblemStateOpen || prob.SolvedBy != nil {
			continue
		}
		select {
		case <-ctx.Done():
			return false, nil
		default:
		}

		m.evaluate(ctx, room, prob)

		// Throttle between problems to respect the judge's rate limits.
		if m.problemDelay > 0 {
			select {
			case <-m.clock.After(m.problemDelay):
			case <-ctx.Done():
				return false, nil
			}
		}
	}
	return false, nil
}

// evaluate runs both detections for one problem and applies the outcome.
// A detection failure on either side leaves the problem untouched for this
// tick; it is re-evaluated on the next one.
func (m *PollerManager) evaluate(ctx context.Context, room *models.Room, prob *models.RoomProblem) {
	p1, err1 := m.finder.FirstSolveSince(ctx, room.P1Handle, prob.ContestID, prob.Index, *room.StartAt)
	if err1 != nil {
		log.Printf("[poll] %s %d%s p1=%s: %v", room.Code, prob.ContestID, prob.Index, room.P1Handle, err1)
		return
	}
	p2, err2 := m.finder.FirstSolveSince(ctx, room.P2Handle, prob.ContestID, prob.Index, *room.StartAt)
	if err2 != nil {
		log.Printf("[poll] %s %d%s p2=%s: %v", room.Code, prob.ContestID, prob.Index, room.P2Handle, err2)
		return
	}

	log.Printf("[poll] %s %d%s p1=%s p2=%s", room.Code, prob.ContestID, prob.Index, solveStamp(p1), solveStamp(p2))

	decision := ResolveLockout(p1, p2, room.P1Handle, room.P2Handle)
	if decision == nil {
		return
	}

	locked, err := m.roomRepo.LockProblem(prob.ID, decision.Winner, decision.SolvedAt)
	if err != nil {
		log.Printf("[lock] %s %d%s: %v", room.Code, prob.ContestID, prob.Index, err)
		return
	}
	if !locked {
		// Already locked: first lock wins, the in-flight decision is moot.
		return
	}

	log.Printf("[lock] %s %d%s winner=%s when=%s", room.Code, prob.ContestID, prob.Index, decision.Winner, decision.SolvedAt.UTC().Format(time.RFC3339))

	updated, err := m.roomRepo.FindProblem(prob.ID)
	if err != nil {
		log.Printf("[lock] %s %d%s reload: %v", room.Code, prob.ContestID, prob.Index, err)
		return
	}
	m.notifier.ProblemSolved(room.Code, updated)
}

func solveStamp(s *Solve) string {
	if s == nil {
		return "-"
	}
	return s.At.UTC().Format(time.RFC3339)
}
