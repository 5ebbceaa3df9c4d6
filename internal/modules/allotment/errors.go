package allotment

import (
	"errors"

	"hostelms/internal/repository"
)

var (
	ErrValidation               = errors.New("validation error")
	ErrDuplicateEmail           = errors.New("user with this email already exists")
	ErrDuplicateSID             = errors.New("student with this SID already exists")
	ErrPhaseClosed              = errors.New("registration phase is closed")
	ErrInvalidPhaseTransition   = errors.New("invalid allotment phase transition")
	ErrHostelNotConfigured      = errors.New("no active hostel configuration found")
	ErrStudentNotFound          = errors.New("student not found")
	ErrRoomNotFound             = errors.New("room not found")
	ErrNotAllotted              = errors.New("student has no confirmed allotment")
	ErrOpenRequestExists        = errors.New("student already has an open allocation request")
	ErrInconsistentRequestState = errors.New("allocation request state does not match its phase")
	ErrAlreadyProcessed         = errors.New("allocation request already processed")
	ErrAssignmentConflict       = errors.New("room assignment changed concurrently")
	ErrNoAdjustableRooms        = errors.New("no rooms eligible for capacity adjustment")
	ErrRoomOccupied             = errors.New("room still has occupants")
)

// Storage-guard failures surface under domain-facing names but stay
// errors.Is-compatible with the repository sentinels.
var (
	ErrNoCapacityAvailable = repository.ErrNoFreeSlot
	ErrInvalidRelease      = repository.ErrInvalidRelease
)
