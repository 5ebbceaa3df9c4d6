package repository

import (
	"context"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

type HostelRepository struct {
	db *gorm.DB
}

func NewHostelRepository(db *gorm.DB) *HostelRepository {
	return &HostelRepository{db: db}
}

// GetActive returns the single active hostel configuration. Callers read it
// fresh on every gated operation; nothing is cached in process.
func (r *HostelRepository) GetActive(ctx context.Context) (*domain.Hostel, error) {
	var h domain.Hostel
	tx := r.db.WithContext(ctx).Where("is_active = ?", true).First(&h)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &h, nil
}

func (r *HostelRepository) GetActiveTx(ctx context.Context, tx *gorm.DB) (*domain.Hostel, error) {
	var h domain.Hostel
	res := tx.WithContext(ctx).Where("is_active = ?", true).First(&h)
	if res.Error != nil {
		return nil, res.Error
	}
	return &h, nil
}

// CASPhase flips the phase only when the stored value still equals from,
// so two admins moving the switch at once cannot skip a transition.
func (r *HostelRepository) CASPhase(ctx context.Context, hostelID int64, from, to domain.HostelPhase) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Hostel{}).
		Where("id = ? AND allotment_status = ?", hostelID, from).
		Update("allotment_status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *HostelRepository) Create(ctx context.Context, h *domain.Hostel) error {
	return r.db.WithContext(ctx).Create(h).Error
}
