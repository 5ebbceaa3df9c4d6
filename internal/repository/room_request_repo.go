package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

type RoomRequestRepository struct {
	db *gorm.DB
}

func NewRoomRequestRepository(db *gorm.DB) *RoomRequestRepository {
	return &RoomRequestRepository{db: db}
}

func (r *RoomRequestRepository) CreateTx(ctx context.Context, tx *gorm.DB, req *domain.RoomRequest) error {
	return tx.WithContext(ctx).Create(req).Error
}

// GetOpenByStudentTx returns the student's single open ledger entry. The
// partial unique index guarantees there is at most one.
func (r *RoomRequestRepository) GetOpenByStudentTx(ctx context.Context, tx *gorm.DB, studentID int64) (*domain.RoomRequest, error) {
	var req domain.RoomRequest
	res := tx.WithContext(ctx).
		Where("student_id = ? AND status IN ?",
			studentID,
			[]domain.RequestStatus{domain.RequestPending, domain.RequestTempLocked}).
		First(&req)
	if res.Error != nil {
		return nil, res.Error
	}
	return &req, nil
}

// HasTerminalByStudentTx reports whether the student already has a processed
// entry. Used to tell "already processed" apart from "never requested".
func (r *RoomRequestRepository) HasTerminalByStudentTx(ctx context.Context, tx *gorm.DB, studentID int64) (bool, error) {
	var n int64
	res := tx.WithContext(ctx).Model(&domain.RoomRequest{}).
		Where("student_id = ? AND status IN ?",
			studentID,
			[]domain.RequestStatus{domain.RequestSuccess, domain.RequestFailed}).
		Count(&n)
	if res.Error != nil {
		return false, res.Error
	}
	return n > 0, nil
}

func (r *RoomRequestRepository) GetLatestByStudent(ctx context.Context, studentID int64) (*domain.RoomRequest, error) {
	var req domain.RoomRequest
	res := r.db.WithContext(ctx).
		Preload("RequestedRoom").
		Preload("AllocatedRoom").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		First(&req)
	if res.Error != nil {
		return nil, res.Error
	}
	return &req, nil
}

// UpdateTx writes the entry's terminal transition. Entries already in
// SUCCESS/FAILED are immutable: the guard keeps a lost race from rewriting a
// processed entry.
func (r *RoomRequestRepository) UpdateTx(ctx context.Context, tx *gorm.DB, req *domain.RoomRequest) error {
	res := tx.WithContext(ctx).Model(&domain.RoomRequest{}).
		Where("id = ? AND status IN ?",
			req.ID,
			[]domain.RequestStatus{domain.RequestPending, domain.RequestTempLocked}).
		Updates(map[string]interface{}{
			"status":            req.Status,
			"requested_room_id": req.RequestedRoomID,
			"allocated_room_id": req.AllocatedRoomID,
			"processed_at":      req.ProcessedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RoomRequestRepository) CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RoomRequest{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

// VerificationRow is one line of the admin verification queue.
type VerificationRow struct {
	RequestID          int64                     `json:"request_id"`
	Phase              domain.AllotmentPhase     `json:"phase"`
	RequestStatus      domain.RequestStatus      `json:"request_status"`
	VerificationStatus domain.VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time                 `json:"created_at"`
	StudentUserID      int64                     `json:"student_user_id"`
	SID                string                    `json:"sid" gorm:"column:sid"`
	Branch             string                    `json:"branch"`
	FullName           string                    `json:"name"`
	Email              string                    `json:"email"`
	Phone              string                    `json:"phone"`
	Block              *string                   `json:"block,omitempty"`
	RoomNumber         *string                   `json:"room_number,omitempty"`
	RoomCapacity       *int                      `json:"room_capacity,omitempty"`
}

type VerificationQuery struct {
	Phase              domain.AllotmentPhase
	VerificationStatus domain.VerificationStatus
	Search             string
	Page               int
	Limit              int
}

// ListVerificationRequests joins ledger entries with student, user and the
// requested room for the admin queue. Phase-A entries sort first, then
// oldest first.
func (r *RoomRequestRepository) ListVerificationRequests(ctx context.Context, q VerificationQuery) ([]VerificationRow, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.RoomRequest{}).
		Joins("JOIN students ON students.id = room_requests.student_id").
		Joins("JOIN users ON users.id = students.user_id").
		Joins("LEFT JOIN rooms ON rooms.id = room_requests.requested_room_id")

	if q.Phase != "" {
		base = base.Where("room_requests.phase = ?", q.Phase)
	}
	if q.VerificationStatus != "" {
		base = base.Where("students.verification_status = ?", q.VerificationStatus)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		base = base.Where("students.sid LIKE ? OR users.full_name LIKE ?", like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	var rows []VerificationRow
	err := base.
		Select(`room_requests.id AS request_id,
room_requests.phase,
room_requests.status AS request_status,
students.verification_status,
room_requests.created_at,
students.user_id AS student_user_id,
students.sid,
students.branch,
users.full_name,
users.email,
users.phone,
rooms.block,
rooms.room_number,
rooms.capacity AS room_capacity`).
		Order("CASE WHEN room_requests.phase = 'A' THEN 0 ELSE 1 END").
		Order("room_requests.created_at ASC").
		Offset(offset).
		Limit(q.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
