package allotment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

// SetPhase moves the allotment machine to the requested phase. The write is
// a compare-and-swap on the current phase, so two admins racing the same
// transition produce exactly one winner.
func (s *Service) SetPhase(ctx context.Context, target domain.HostelPhase) (*domain.Hostel, error) {
	if !target.Valid() {
		return nil, ErrValidation
	}

	hostel, err := s.hostels.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHostelNotConfigured
		}
		return nil, err
	}

	if !hostel.AllotmentStatus.CanTransition(target) {
		return nil, ErrInvalidPhaseTransition
	}

	swapped, err := s.hostels.CASPhase(ctx, hostel.ID, hostel.AllotmentStatus, target)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Phase moved between the read and the write.
		return nil, ErrInvalidPhaseTransition
	}

	hostel.AllotmentStatus = target
	return hostel, nil
}

// GetPhase returns the active hostel record with its current phase.
func (s *Service) GetPhase(ctx context.Context) (*domain.Hostel, error) {
	hostel, err := s.hostels.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHostelNotConfigured
		}
		return nil, err
	}
	return hostel, nil
}
