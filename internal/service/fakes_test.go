package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lockout_web/internal/cf"
	"lockout_web/internal/models"
	"lockout_web/internal/repository"
)

// memoryRoomRepo is an in-memory repository.RoomRepository for tests.
type memoryRoomRepo struct {
	mu     sync.Mutex
	nextID uint
	rooms  map[string]*models.Room
}

func newMemoryRoomRepo() *memoryRoomRepo {
	return &memoryRoomRepo{rooms: make(map[string]*models.Room)}
}

func (r *memoryRoomRepo) Create(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	room.ID = r.nextID
	for i := range room.Problems {
		r.nextID++
		room.Problems[i].ID = r.nextID
		room.Problems[i].RoomID = room.ID
	}
	r.rooms[room.Code] = cloneRoom(room)
	return nil
}

func (r *memoryRoomRepo) FindByCode(code string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRoom(room), nil
}

func (r *memoryRoomRepo) SetRunning(roomID uint, startAt, endAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if room.ID != roomID {
			continue
		}
		if room.State != models.RoomStatePending {
			return false, nil
		}
		room.State = models.RoomStateRunning
		room.StartAt = &startAt
		room.EndAt = &endAt
		return true, nil
	}
	return false, nil
}

func (r *memoryRoomRepo) SetFinished(roomID uint, endAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if room.ID != roomID {
			continue
		}
		room.State = models.RoomStateFinished
		if endAt != nil {
			t := *endAt
			room.EndAt = &t
		}
		return nil
	}
	return repository.ErrNotFound
}

func (r *memoryRoomRepo) LockProblem(problemID uint, winner models.Side, solvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		for i := range room.Problems {
			prob := &room.Problems[i]
			if prob.ID != problemID {
				continue
			}
			if prob.State != models.ProblemStateOpen {
				return false, nil
			}
			at := solvedAt
			w := winner
			opp := winner.Opponent()
			prob.State = models.ProblemStateLocked
			prob.SolvedBy = &w
			prob.SolvedAt = &at
			prob.LockedFor = &opp
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRoomRepo) FindProblem(problemID uint) (*models.RoomProblem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		for i := range room.Problems {
			if room.Problems[i].ID == problemID {
				prob := room.Problems[i]
				return &prob, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func cloneRoom(room *models.Room) *models.Room {
	out := *room
	out.Problems = make([]models.RoomProblem, len(room.Problems))
	copy(out.Problems, room.Problems)
	return &out
}

// stubFinder serves canned detector results keyed by handle and problem.
type stubFinder struct {
	mu     sync.Mutex
	solves map[string]*Solve
	errs   map[string]error
	calls  int
}

func newStubFinder() *stubFinder {
	return &stubFinder{
		solves: make(map[string]*Solve),
		errs:   make(map[string]error),
	}
}

func finderKey(handle string, contestID int, index string) string {
	return fmt.Sprintf("%s/%d%s", handle, contestID, index)
}

func (f *stubFinder) setSolve(handle string, contestID int, index string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.solves[finderKey(handle, contestID, index)] = &Solve{At: at}
}

func (f *stubFinder) setError(handle string, contestID int, index string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[finderKey(handle, contestID, index)] = err
}

func (f *stubFinder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *stubFinder) FirstSolveSince(_ context.Context, handle string, contestID int, index string, _ time.Time) (*Solve, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	key := finderKey(handle, contestID, index)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.solves[key], nil
}

// recordingNotifier captures broadcasts for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	updates  []*models.Room
	problems []*models.RoomProblem
}

func (n *recordingNotifier) RoomUpdated(room *models.Room) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, room)
}

func (n *recordingNotifier) ProblemSolved(_ string, problem *models.RoomProblem) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.problems = append(n.problems, problem)
}

func (n *recordingNotifier) updateCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.updates)
}

func (n *recordingNotifier) problemCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.problems)
}

// stubProblemSource serves a fixed problem pool.
type stubProblemSource struct {
	problems []cf.Problem
	err      error
}

func (s *stubProblemSource) ListRatedProblems(context.Context) ([]cf.Problem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.problems, nil
}
