package repository

import (
	"context"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) CreateTx(ctx context.Context, tx *gorm.DB, s *domain.Student) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Student, error) {
	var s domain.Student
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &s, nil
}

func (r *StudentRepository) GetByUserIDWithRoom(ctx context.Context, userID int64) (*domain.Student, error) {
	var s domain.Student
	tx := r.db.WithContext(ctx).
		Preload("Room").
		Where("user_id = ?", userID).
		First(&s)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &s, nil
}

func (r *StudentRepository) GetByUserIDTx(ctx context.Context, tx *gorm.DB, userID int64) (*domain.Student, error) {
	var s domain.Student
	res := tx.WithContext(ctx).Where("user_id = ?", userID).First(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	return &s, nil
}

// ReassignRoomTx moves the student to a new room only while they still occupy
// fromRoomID. A concurrent reassignment of the same student flips room_id
// first, the guard then matches zero rows and the caller must abort before any
// slot counters move. Zero rows surfaces as gorm.ErrRecordNotFound.
func (r *StudentRepository) ReassignRoomTx(ctx context.Context, tx *gorm.DB, studentID, fromRoomID, toRoomID int64) error {
	res := tx.WithContext(ctx).
		Model(&domain.Student{}).
		Where("id = ? AND room_id = ?", studentID, fromRoomID).
		Update("room_id", toRoomID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *StudentRepository) GetBySIDTx(ctx context.Context, tx *gorm.DB, sid string) (*domain.Student, error) {
	var s domain.Student
	res := tx.WithContext(ctx).Where("sid = ?", sid).First(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	return &s, nil
}

// GetOpenByUserIDTx loads the student only when it is still awaiting
// verification. The verification engine works exclusively on this shape.
func (r *StudentRepository) GetOpenByUserIDTx(ctx context.Context, tx *gorm.DB, userID int64) (*domain.Student, error) {
	var s domain.Student
	res := tx.WithContext(ctx).
		Where("user_id = ? AND allotment_status IN ? AND verification_status = ?",
			userID,
			[]domain.AllotmentStatus{domain.AllotmentPending, domain.AllotmentTempLocked},
			domain.VerificationPending).
		First(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	return &s, nil
}

func (r *StudentRepository) UpdateTx(ctx context.Context, tx *gorm.DB, s *domain.Student) error {
	return tx.WithContext(ctx).Model(&domain.Student{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"room_id":             s.RoomID,
			"allotment_status":    s.AllotmentStatus,
			"verification_status": s.VerificationStatus,
		}).Error
}

func (r *StudentRepository) CountByUserStatus(ctx context.Context, status domain.UserStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Student{}).
		Joins("JOIN users ON users.id = students.user_id").
		Where("users.status = ? AND users.role = ?", status, domain.RoleStudent).
		Count(&n).Error
	return n, err
}

func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Student{}).Count(&n).Error
	return n, err
}
