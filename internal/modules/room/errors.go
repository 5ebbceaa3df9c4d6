package room

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room with this block and number already exists")
	ErrRoomOccupied = errors.New("room still has occupants")
)
