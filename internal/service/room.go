package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"lockout_web/internal/models"
	"lockout_web/internal/repository"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

// CreateRoomInput carries the validated parameters for a new match.
type CreateRoomInput struct {
	P1Handle        string
	P2Handle        string
	RatingMin       int
	RatingMax       int
	ProblemCount    int
	DurationMinutes int
}

// RoomService owns the room lifecycle: creation with a sampled problem
// set, the PENDING -> RUNNING -> FINISHED transitions, and the poller
// spawned alongside a running match.
type RoomService struct {
	roomRepo repository.RoomRepository
	sampler  *ProblemSampler
	pollers  *PollerManager
	notifier Notifier
	clock    clockwork.Clock
}

func NewRoomService(roomRepo repository.RoomRepository, sampler *ProblemSampler, pollers *PollerManager, notifier Notifier, clock clockwork.Clock) *RoomService {
	return &RoomService{
		roomRepo: roomRepo,
		sampler:  sampler,
		pollers:  pollers,
		notifier: notifier,
		clock:    clock,
	}
}

// CreateRoom samples the problem set and persists the room aggregate.
func (s *RoomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*models.Room, error) {
	problems, err := s.sampler.Sample(ctx, input.RatingMin, input.RatingMax, input.ProblemCount)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		Code:            generateRoomCode(),
		P1Handle:        input.P1Handle,
		P2Handle:        input.P2Handle,
		RatingMin:       input.RatingMin,
		RatingMax:       input.RatingMax,
		ProblemCount:    input.ProblemCount,
		DurationMinutes: input.DurationMinutes,
		State:           models.RoomStatePending,
	}
	for _, p := range problems {
		rating := p.Rating
		room.Problems = append(room.Problems, models.RoomProblem{
			ContestID: p.ContestID,
			Index:     p.Index,
			Name:      p.Name,
			Rating:    &rating,
			State:     models.ProblemStateOpen,
		})
	}

	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom loads a room snapshot by code.
func (s *RoomService) GetRoom(code string) (*models.Room, error) {
	room, err := s.roomRepo.FindByCode(code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// StartRoom transitions a PENDING room to RUNNING, stamps the match
// window exactly once and spawns the room's poller.
func (s *RoomService) StartRoom(code string) (*models.Room, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return nil, err
	}
	if room.State != models.RoomStatePending {
		return nil, ErrRoomAlreadyStarted
	}

	startAt := s.clock.Now()
	endAt := startAt.Add(time.Duration(room.DurationMinutes) * time.Minute)
	ok, err := s.roomRepo.SetRunning(room.ID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a concurrent start.
		return nil, ErrRoomAlreadyStarted
	}

	updated, err := s.GetRoom(code)
	if err != nil {
		return nil, err
	}

	s.notifier.RoomUpdated(updated)
	s.pollers.Start(code)
	return updated, nil
}

// StopRoom terminates a room regardless of state: the poller is destroyed,
// the room is forced FINISHED and the deadline is cut to now.
func (s *RoomService) StopRoom(code string) (*models.Room, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return nil, err
	}

	s.pollers.Stop(code)

	now := s.clock.Now()
	if err := s.roomRepo.SetFinished(room.ID, &now); err != nil {
		return nil, err
	}

	updated, err := s.GetRoom(code)
	if err != nil {
		return nil, err
	}

	s.notifier.RoomUpdated(updated)
	return updated, nil
}

// generateRoomCode draws a short shareable token. Uniqueness is enforced
// by the store's index; collisions on 36^6 codes are not worth retry loops.
func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
