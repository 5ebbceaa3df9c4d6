package domain

import "time"

type RequestStatus string

const (
	RequestPending    RequestStatus = "PENDING"
	RequestTempLocked RequestStatus = "TEMP_LOCKED"
	RequestSuccess    RequestStatus = "SUCCESS"
	RequestFailed     RequestStatus = "FAILED"
)

// Terminal reports whether the ledger entry can no longer change.
func (s RequestStatus) Terminal() bool {
	return s == RequestSuccess || s == RequestFailed
}

// RoomRequest is one ledger entry per allocation attempt. A partial unique
// index on student_id (status PENDING or TEMP_LOCKED) guarantees at most one
// open entry per student; the index is created in database.Migrate because
// gorm tags cannot express partial indexes portably.
type RoomRequest struct {
	ID              int64          `json:"id" gorm:"primaryKey"`
	StudentID       int64          `json:"student_id" gorm:"index"`
	Phase           AllotmentPhase `json:"phase" gorm:"index"`
	RequestedRoomID *int64         `json:"requested_room_id,omitempty"`
	AllocatedRoomID *int64         `json:"allocated_room_id,omitempty"`
	Status          RequestStatus  `json:"status" gorm:"index"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Student       *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	RequestedRoom *Room    `json:"requested_room,omitempty" gorm:"foreignKey:RequestedRoomID"`
	AllocatedRoom *Room    `json:"allocated_room,omitempty" gorm:"foreignKey:AllocatedRoomID"`
}
