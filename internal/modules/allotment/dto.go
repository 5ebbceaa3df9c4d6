package allotment

import (
	"time"

	"hostelms/internal/domain"
)

type RegisterPhaseARequest struct {
	FullName         string `json:"full_name" binding:"required" validate:"required"`
	Email            string `json:"email" binding:"required" validate:"required,email"`
	Phone            string `json:"phone" binding:"required" validate:"required,len=10,numeric"`
	Password         string `json:"password" binding:"required" validate:"required,min=6"`
	SID              string `json:"sid" binding:"required" validate:"required,len=8,numeric"`
	Branch           string `json:"branch" binding:"required" validate:"required"`
	PermanentAddress string `json:"permanent_address" binding:"required" validate:"required"`
	GuardianName     string `json:"guardian_name"`
	GuardianContact  string `json:"guardian_contact" binding:"required" validate:"required,len=10,numeric"`
	RoomID           int64  `json:"room_id" binding:"required" validate:"required"`
}

type RegisterPhaseBRequest struct {
	FullName         string `json:"full_name" binding:"required" validate:"required"`
	Email            string `json:"email" binding:"required" validate:"required,email"`
	Phone            string `json:"phone" binding:"required" validate:"required,len=10,numeric"`
	Password         string `json:"password" binding:"required" validate:"required,min=6"`
	SID              string `json:"sid" binding:"required" validate:"required,len=8,numeric"`
	Branch           string `json:"branch" binding:"required" validate:"required"`
	PermanentAddress string `json:"permanent_address" binding:"required" validate:"required"`
	GuardianName     string `json:"guardian_name"`
	GuardianContact  string `json:"guardian_contact" binding:"required" validate:"required,len=10,numeric"`
}

// RegistrationResult is what both flows hand back to the handler: the new
// student record plus the freshly issued credential.
type RegistrationResult struct {
	Student     *domain.Student `json:"student"`
	AccessToken string          `json:"access_token"`
}

type VerifyRequest struct {
	Status domain.VerificationStatus `json:"status" binding:"required"`
}

type VerifyResult struct {
	SID                string                    `json:"sid"`
	AllotmentStatus    domain.AllotmentStatus    `json:"allotment_status"`
	VerificationStatus domain.VerificationStatus `json:"verification_status"`
	AllocatedRoom      *domain.Room              `json:"allocated_room,omitempty"`
}

type MyAllotmentStatus struct {
	Phase              domain.AllotmentPhase     `json:"phase,omitempty"`
	AllotmentStatus    domain.AllotmentStatus    `json:"allotment_status"`
	VerificationStatus domain.VerificationStatus `json:"verification_status"`
	RequestedRoom      *domain.Room              `json:"requested_room,omitempty"`
	AllocatedRoom      *domain.Room              `json:"allocated_room,omitempty"`
}

type AdjustCapacityRequest struct {
	Delta     int `json:"delta" binding:"required"`
	RoomCount int `json:"room_count" binding:"required"`
}

// CapacityAdjustment reports the outcome for one room in an AdjustCapacity
// batch. Skipped rooms carry the reason; the batch itself continues.
type CapacityAdjustment struct {
	Room        string                      `json:"room"`
	OldCapacity int                         `json:"old_capacity"`
	NewCapacity int                         `json:"new_capacity"`
	Occupied    int                         `json:"occupied"`
	Status      domain.RoomAllocationStatus `json:"status_after,omitempty"`
	Skipped     bool                        `json:"skipped"`
	Reason      string                      `json:"reason,omitempty"`
}

type SetPhaseRequest struct {
	Phase domain.HostelPhase `json:"phase" binding:"required"`
}

type ChangeRoomRequest struct {
	Block      string `json:"block" binding:"required"`
	RoomNumber string `json:"room_number" binding:"required"`
}

type QuickInfo struct {
	TotalActiveRooms   int64     `json:"total_active_rooms"`
	AvailableRooms     int64     `json:"available_rooms"`
	FullyOccupiedRooms int64     `json:"fully_occupied_rooms"`
	UpgradeRooms       int64     `json:"upgrade_rooms"`
	PendingRequests    int64     `json:"pending_requests"`
	TempLockedRequests int64     `json:"temp_locked_requests"`
	SuccessfulRequests int64     `json:"successful_requests"`
	FailedRequests     int64     `json:"failed_requests"`
	ActiveStudents     int64     `json:"active_students"`
	InactiveStudents   int64     `json:"inactive_students"`
	TotalStudents      int64     `json:"total_students"`
	GeneratedAt        time.Time `json:"generated_at"`
}
