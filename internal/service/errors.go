package service

import "errors"

var (
	// ErrRoomNotFound means no room exists for the given code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomAlreadyStarted is returned when starting a room that left PENDING.
	ErrRoomAlreadyStarted = errors.New("room already started")
	// ErrInsufficientProblems means the rating range holds fewer distinct
	// problems than the requested count.
	ErrInsufficientProblems = errors.New("not enough problems in range")
)
