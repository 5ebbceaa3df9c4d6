package allotment

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"hostelms/internal/domain"
	"hostelms/internal/repository"
)

// GetMyAllotmentStatus returns the caller's registration state plus the
// rooms tied to their latest ledger entry.
func (s *Service) GetMyAllotmentStatus(ctx context.Context, userID int64) (*MyAllotmentStatus, error) {
	student, err := s.students.GetByUserIDWithRoom(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	status := &MyAllotmentStatus{
		Phase:              student.AllotmentPhase,
		AllotmentStatus:    student.AllotmentStatus,
		VerificationStatus: student.VerificationStatus,
	}

	request, err := s.requests.GetLatestByStudent(ctx, student.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if request != nil {
		status.RequestedRoom = request.RequestedRoom
		status.AllocatedRoom = request.AllocatedRoom
	}
	if status.AllocatedRoom == nil && student.AllotmentStatus == domain.AllotmentAllotted {
		status.AllocatedRoom = student.Room
	}
	return status, nil
}

// GetAllottableRooms lists active rooms a phase-A registrant may pick from.
func (s *Service) GetAllottableRooms(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.ListAllottable(ctx)
}

// GetRoom returns one room by id for the public detail view.
func (s *Service) GetRoom(ctx context.Context, roomID int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// VerificationList is one page of the admin verification queue.
type VerificationList struct {
	Requests []repository.VerificationRow `json:"requests"`
	Total    int64                        `json:"total"`
	Page     int                          `json:"page"`
	Limit    int                          `json:"limit"`
}

// ListVerificationRequests pages through the verification queue. Page and
// limit are clamped rather than rejected.
func (s *Service) ListVerificationRequests(ctx context.Context, q repository.VerificationQuery) (*VerificationList, error) {
	if q.Phase != "" && q.Phase != domain.PhaseA && q.Phase != domain.PhaseB {
		return nil, ErrValidation
	}
	if q.VerificationStatus != "" {
		switch q.VerificationStatus {
		case domain.VerificationPending, domain.VerificationVerified, domain.VerificationRejected:
		default:
			return nil, ErrValidation
		}
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 50 {
		q.Limit = 50
	}
	q.Search = strings.TrimSpace(q.Search)

	rows, total, err := s.requests.ListVerificationRequests(ctx, q)
	if err != nil {
		return nil, err
	}
	return &VerificationList{
		Requests: rows,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
	}, nil
}

// QuickInfo aggregates the dashboard counters in one call. The counts come
// from separate reads, so the snapshot is approximate under load.
func (s *Service) QuickInfo(ctx context.Context) (*QuickInfo, error) {
	info := &QuickInfo{GeneratedAt: time.Now().UTC()}

	var err error
	if info.TotalActiveRooms, err = s.rooms.CountActive(ctx); err != nil {
		return nil, err
	}
	if info.AvailableRooms, err = s.rooms.CountByStatus(ctx, domain.RoomAvailable); err != nil {
		return nil, err
	}
	if info.FullyOccupiedRooms, err = s.rooms.CountByStatus(ctx, domain.RoomFull); err != nil {
		return nil, err
	}
	if info.UpgradeRooms, err = s.rooms.CountByStatus(ctx, domain.RoomVacantUpgrade); err != nil {
		return nil, err
	}
	if info.PendingRequests, err = s.requests.CountByStatus(ctx, domain.RequestPending); err != nil {
		return nil, err
	}
	if info.TempLockedRequests, err = s.requests.CountByStatus(ctx, domain.RequestTempLocked); err != nil {
		return nil, err
	}
	if info.SuccessfulRequests, err = s.requests.CountByStatus(ctx, domain.RequestSuccess); err != nil {
		return nil, err
	}
	if info.FailedRequests, err = s.requests.CountByStatus(ctx, domain.RequestFailed); err != nil {
		return nil, err
	}
	if info.ActiveStudents, err = s.students.CountByUserStatus(ctx, domain.UserActive); err != nil {
		return nil, err
	}
	if info.InactiveStudents, err = s.students.CountByUserStatus(ctx, domain.UserInactive); err != nil {
		return nil, err
	}
	if info.TotalStudents, err = s.students.Count(ctx); err != nil {
		return nil, err
	}
	return info, nil
}
