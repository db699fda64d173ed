package models

import (
	"time"

	"gorm.io/gorm"
)

// RoomState tracks the match lifecycle. Transitions only move forward:
// PENDING -> RUNNING -> FINISHED, with an explicit stop short-circuiting
// straight to FINISHED from either earlier state.
type RoomState string

const (
	RoomStatePending  RoomState = "PENDING"
	RoomStateRunning  RoomState = "RUNNING"
	RoomStateFinished RoomState = "FINISHED"
)

// ProblemState is OPEN until one side gets an accepted solve, then LOCKED.
// OPEN -> LOCKED is one-way.
type ProblemState string

const (
	ProblemStateOpen   ProblemState = "OPEN"
	ProblemStateLocked ProblemState = "LOCKED"
)

// Side identifies a player slot within a room.
type Side string

const (
	SideP1 Side = "P1"
	SideP2 Side = "P2"
)

// Opponent returns the other player slot.
func (s Side) Opponent() Side {
	if s == SideP1 {
		return SideP2
	}
	return SideP1
}

// Room is one lockout match between two judge handles.
type Room struct {
	gorm.Model
	Code            string        `json:"code" gorm:"uniqueIndex;type:varchar(16)"`
	P1Handle        string        `json:"p1Handle"`
	P2Handle        string        `json:"p2Handle"`
	RatingMin       int           `json:"ratingMin"`
	RatingMax       int           `json:"ratingMax"`
	ProblemCount    int           `json:"problemCount"`
	DurationMinutes int           `json:"durationMinutes"`
	State           RoomState     `json:"state" gorm:"type:varchar(16);default:'PENDING'"`
	StartAt         *time.Time    `json:"startAt"`
	EndAt           *time.Time    `json:"endAt"`
	Problems        []RoomProblem `json:"problems" gorm:"foreignKey:RoomID"`
}

// HandleFor maps a player slot to its judge handle.
func (r *Room) HandleFor(side Side) string {
	if side == SideP1 {
		return r.P1Handle
	}
	return r.P2Handle
}

// Expired reports whether the match deadline has passed.
func (r *Room) Expired(now time.Time) bool {
	return r.EndAt != nil && !now.Before(*r.EndAt)
}

// RoomProblem is a judge problem attached to a room. The attachment order
// (ascending primary key) is the display and evaluation order.
type RoomProblem struct {
	gorm.Model
	RoomID    uint         `json:"roomId"`
	ContestID int          `json:"contestId"`
	Index     string       `json:"index" gorm:"column:idx;type:varchar(8)"`
	Name      string       `json:"name"`
	Rating    *int         `json:"rating"`
	State     ProblemState `json:"state" gorm:"type:varchar(16);default:'OPEN'"`
	SolvedBy  *Side        `json:"solvedBy" gorm:"type:varchar(4)"`
	SolvedAt  *time.Time   `json:"solvedAt"`
	LockedFor *Side        `json:"lockedFor" gorm:"type:varchar(4)"`
}
