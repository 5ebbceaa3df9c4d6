package allotment

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

// AdjustCapacity changes capacity by delta on the roomCount most recently
// filled rooms. Rooms that would break a bound are skipped with a reason and
// the batch continues; only batch-level failures abort the transaction.
func (s *Service) AdjustCapacity(ctx context.Context, req AdjustCapacityRequest) ([]CapacityAdjustment, error) {
	if (req.Delta != 1 && req.Delta != -1) || req.RoomCount < 1 {
		return nil, ErrValidation
	}

	var results []CapacityAdjustment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms, err := s.rooms.AdjustableRoomsTx(ctx, tx, req.RoomCount)
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			return ErrNoAdjustableRooms
		}

		for _, room := range rooms {
			label := fmt.Sprintf("%s-%s", room.Block, room.RoomNumber)
			adj := CapacityAdjustment{
				Room:        label,
				OldCapacity: room.Capacity,
				Occupied:    room.OccupiedCount,
			}

			newCap := room.Capacity + req.Delta
			switch {
			case newCap > s.capacityCeiling:
				adj.Skipped = true
				adj.NewCapacity = room.Capacity
				adj.Reason = fmt.Sprintf("capacity ceiling is %d", s.capacityCeiling)
			case newCap < room.OccupiedCount:
				adj.Skipped = true
				adj.NewCapacity = room.Capacity
				adj.Reason = "cannot shrink below current occupancy"
			case newCap < 1:
				adj.Skipped = true
				adj.NewCapacity = room.Capacity
				adj.Reason = "capacity must stay at least 1"
			default:
				status := domain.RoomAvailable
				if room.OccupiedCount == newCap {
					status = domain.RoomFull
				} else if room.AllocationStatus == domain.RoomVacantUpgrade {
					// A widened room that already had refill
					// priority keeps it.
					status = domain.RoomVacantUpgrade
				}
				if err := s.rooms.SetCapacityTx(ctx, tx, room.ID, newCap, status); err != nil {
					return err
				}
				adj.NewCapacity = newCap
				adj.Status = status
			}
			results = append(results, adj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
