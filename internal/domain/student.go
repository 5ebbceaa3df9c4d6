package domain

import "time"

type AllotmentPhase string

const (
	PhaseA AllotmentPhase = "A"
	PhaseB AllotmentPhase = "B"
)

type AllotmentStatus string

const (
	AllotmentPending    AllotmentStatus = "PENDING"
	AllotmentTempLocked AllotmentStatus = "TEMP_LOCKED"
	AllotmentAllotted   AllotmentStatus = "ALLOTTED"
	AllotmentCancelled  AllotmentStatus = "CANCELLED"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Student is the per-account allocation record. It is created by the
// registration flows and afterwards mutated only by the verification engine
// and administrative room reassignment. Cancelled records are retained for
// audit, never deleted.
type Student struct {
	ID                 int64              `json:"id" gorm:"primaryKey"`
	UserID             int64              `json:"user_id" gorm:"uniqueIndex"`
	SID                string             `json:"sid" gorm:"column:sid;uniqueIndex;size:8" validate:"required,len=8,numeric"`
	Branch             string             `json:"branch"`
	PermanentAddress   string             `json:"permanent_address"`
	GuardianName       string             `json:"guardian_name,omitempty"`
	GuardianContact    string             `json:"guardian_contact" validate:"required,len=10,numeric"`
	RoomID             *int64             `json:"room_id,omitempty"`
	AllotmentPhase     AllotmentPhase     `json:"allotment_phase,omitempty"`
	AllotmentStatus    AllotmentStatus    `json:"allotment_status"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}
