package room

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"hostelms/internal/domain"
	"hostelms/internal/pkg/validator"
	"hostelms/internal/repository"
)

// DefaultYearlyRent is applied when a room is created without an explicit
// rent figure.
const DefaultYearlyRent = 75500

// Service is the admin-side room inventory: creation, listing, activation,
// rent and deletion. Occupancy itself is owned by the allotment module.
type Service struct {
	rooms *repository.RoomRepository
}

func NewService(rooms *repository.RoomRepository) *Service {
	return &Service{rooms: rooms}
}

func (s *Service) Create(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, ErrValidation
	}

	room := &domain.Room{
		Block:            strings.ToLower(strings.TrimSpace(req.Block)),
		RoomNumber:       strings.TrimSpace(req.RoomNumber),
		Floor:            req.Floor,
		Capacity:         req.Capacity,
		AllocationStatus: domain.RoomAvailable,
		IsActive:         true,
		YearlyRent:       req.YearlyRent,
	}
	if room.YearlyRent == 0 {
		room.YearlyRent = DefaultYearlyRent
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRoomExists
		}
		return nil, err
	}
	return room, nil
}

func (s *Service) List(ctx context.Context, q ListRoomsQuery) ([]domain.Room, error) {
	filter := repository.RoomFilter{Block: strings.ToLower(strings.TrimSpace(q.Block))}
	if q.ActiveOnly {
		active := true
		filter.IsActive = &active
	}
	rooms, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if q.Status != "" {
		status := domain.RoomAllocationStatus(q.Status)
		filtered := rooms[:0]
		for _, r := range rooms {
			if r.AllocationStatus == status {
				filtered = append(filtered, r)
			}
		}
		rooms = filtered
	}
	return rooms, nil
}

func (s *Service) Get(ctx context.Context, roomID int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *Service) SetActive(ctx context.Context, roomID int64, active bool) (*domain.Room, error) {
	if _, err := s.Get(ctx, roomID); err != nil {
		return nil, err
	}
	if err := s.rooms.SetActive(ctx, roomID, active); err != nil {
		return nil, err
	}
	return s.Get(ctx, roomID)
}

func (s *Service) UpdateRent(ctx context.Context, roomID int64, req UpdateRentRequest) (*domain.Room, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, ErrValidation
	}
	if _, err := s.Get(ctx, roomID); err != nil {
		return nil, err
	}
	if err := s.rooms.UpdateRent(ctx, roomID, req.YearlyRent); err != nil {
		return nil, err
	}
	return s.Get(ctx, roomID)
}

// Delete removes an unoccupied room. The occupancy guard sits in the delete
// statement itself, so a reservation racing the delete cannot strand a
// student in a removed room.
func (s *Service) Delete(ctx context.Context, roomID int64) error {
	if _, err := s.Get(ctx, roomID); err != nil {
		return err
	}
	deleted, err := s.rooms.Delete(ctx, roomID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRoomOccupied
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
