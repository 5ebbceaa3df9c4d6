package domain

import "time"

type RoomAllocationStatus string

const (
	// RoomAvailable means the room still has free slots and no special
	// refill priority.
	RoomAvailable RoomAllocationStatus = "AVAILABLE"
	// RoomFull means occupied_count reached capacity.
	RoomFull RoomAllocationStatus = "FULL"
	// RoomVacantUpgrade marks a previously occupied room that lost an
	// occupant and is refilled ahead of untouched AVAILABLE rooms.
	RoomVacantUpgrade RoomAllocationStatus = "VACANT_UPGRADE"
)

// Room is the unit of shared-capacity inventory. occupied_count is only ever
// mutated through the conditional updates in repository.RoomRepository so the
// occupied_count <= capacity invariant holds under concurrent writers.
type Room struct {
	ID               int64                `json:"id" gorm:"primaryKey"`
	Block            string               `json:"block" gorm:"uniqueIndex:idx_block_room;size:32" validate:"required"`
	RoomNumber       string               `json:"room_number" gorm:"uniqueIndex:idx_block_room;size:32" validate:"required"`
	Floor            int                  `json:"floor"`
	Capacity         int                  `json:"capacity" validate:"required,gte=1"`
	OccupiedCount    int                  `json:"occupied_count"`
	AllocationStatus RoomAllocationStatus `json:"allocation_status"`
	// FillOrder is set the first time the room becomes FULL and cleared
	// when a VACANT_UPGRADE room is reserved again.
	FillOrder  *time.Time `json:"fill_order,omitempty"`
	IsActive   bool       `json:"is_active"`
	YearlyRent int        `json:"yearly_rent"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasFreeSlot reports whether a reservation could currently succeed. It is a
// read-side convenience only; reservations themselves go through the atomic
// repository operations.
func (r *Room) HasFreeSlot() bool {
	return r.IsActive && r.OccupiedCount < r.Capacity
}
