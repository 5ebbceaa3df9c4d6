package repository

import "errors"

var (
	// ErrNoFreeSlot is returned when a conditional occupancy increment
	// matched no room (room missing, inactive, or already at capacity).
	ErrNoFreeSlot = errors.New("no room with a free slot matched")
	// ErrInvalidRelease is returned when a release would drive an
	// occupancy counter negative. It signals a corrupted prior state.
	ErrInvalidRelease = errors.New("release on a room with zero occupancy")
)
