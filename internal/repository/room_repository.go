package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"lockout_web/internal/models"
	"lockout_web/internal/storage"
)

// ErrNotFound is returned when no room matches the given code.
var ErrNotFound = errors.New("record not found")

// RoomRepository is the persistence boundary for rooms and their problems.
// The poller re-reads through it every tick, so its current state is
// authoritative over anything a caller computed in flight.
type RoomRepository interface {
	// Create persists the room together with its attached problems.
	Create(room *models.Room) error
	// FindByCode loads a room and its problems in attachment order.
	FindByCode(code string) (*models.Room, error)
	// SetRunning transitions PENDING -> RUNNING and stamps the match window.
	// Returns false when the room was not PENDING anymore.
	SetRunning(roomID uint, startAt, endAt time.Time) (bool, error)
	// SetFinished forces the terminal state. A non-nil endAt overwrites the
	// deadline (explicit stop); nil keeps the original one (expiry).
	SetFinished(roomID uint, endAt *time.Time) error
	// LockProblem applies a winning decision if and only if the problem is
	// still OPEN. Returns false when it was already locked.
	LockProblem(problemID uint, winner models.Side, solvedAt time.Time) (bool, error)
	// FindProblem reloads a single room problem.
	FindProblem(problemID uint) (*models.RoomProblem, error)
}

type roomRepository struct {
	db *storage.PostgresDB
}

func NewRoomRepository(db *storage.PostgresDB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *roomRepository) FindByCode(code string) (*models.Room, error) {
	var room models.Room
	err := r.db.Preload("Problems", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Where("code = ?", code).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) SetRunning(roomID uint, startAt, endAt time.Time) (bool, error) {
	res := r.db.Model(&models.Room{}).
		Where("id = ? AND state = ?", roomID, models.RoomStatePending).
		Updates(map[string]interface{}{
			"state":    models.RoomStateRunning,
			"start_at": startAt,
			"end_at":   endAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *roomRepository) SetFinished(roomID uint, endAt *time.Time) error {
	updates := map[string]interface{}{"state": models.RoomStateFinished}
	if endAt != nil {
		updates["end_at"] = *endAt
	}
	return r.db.Model(&models.Room{}).Where("id = ?", roomID).Updates(updates).Error
}

func (r *roomRepository) LockProblem(problemID uint, winner models.Side, solvedAt time.Time) (bool, error) {
	// First lock wins: the guard on state makes re-applied decisions no-ops.
	res := r.db.Model(&models.RoomProblem{}).
		Where("id = ? AND state = ?", problemID, models.ProblemStateOpen).
		Updates(map[string]interface{}{
			"state":      models.ProblemStateLocked,
			"solved_by":  winner,
			"solved_at":  solvedAt,
			"locked_for": winner.Opponent(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *roomRepository) FindProblem(problemID uint) (*models.RoomProblem, error) {
	var problem models.RoomProblem
	err := r.db.First(&problem, problemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &problem, nil
}
