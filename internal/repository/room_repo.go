package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) DB() *gorm.DB { return r.db }

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepository) GetByBlockNumber(ctx context.Context, block, roomNumber string) (*domain.Room, error) {
	var room domain.Room
	tx := r.db.WithContext(ctx).
		Where("block = ? AND room_number = ?", block, roomNumber).
		First(&room)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &room, nil
}

type RoomFilter struct {
	Block    string
	Floor    *int
	IsActive *bool
}

func (r *RoomRepository) List(ctx context.Context, filter RoomFilter) ([]domain.Room, error) {
	q := r.db.WithContext(ctx).Model(&domain.Room{})
	if filter.Block != "" {
		q = q.Where("block = ?", filter.Block)
	}
	if filter.Floor != nil {
		q = q.Where("floor = ?", *filter.Floor)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var rooms []domain.Room
	if err := q.Order("block, room_number").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListAllottable returns active AVAILABLE rooms that still have free slots,
// the set a phase-A registrant may choose from. Read-only, no side effects.
func (r *RoomRepository) ListAllottable(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	tx := r.db.WithContext(ctx).
		Where("is_active = ? AND allocation_status = ? AND occupied_count < capacity",
			true, domain.RoomAvailable).
		Order("block, room_number").
		Find(&rooms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return rooms, nil
}

// ReserveRoomTx atomically takes one slot in a specific room. The increment
// and the availability check are a single conditional UPDATE so two
// concurrent reservations for the last slot can never both succeed; the
// loser sees zero affected rows and gets ErrNoFreeSlot.
func (r *RoomRepository) ReserveRoomTx(ctx context.Context, tx *gorm.DB, roomID int64) (*domain.Room, error) {
	res := tx.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND is_active = ? AND allocation_status = ? AND occupied_count < capacity",
			roomID, true, domain.RoomAvailable).
		UpdateColumn("occupied_count", gorm.Expr("occupied_count + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoFreeSlot
	}
	return r.recomputeStatusTx(ctx, tx, roomID, false)
}

// ReserveFromPoolTx takes one slot from the phase-B pool: VACANT_UPGRADE
// rooms first, then by ascending fill_order (longest-idle first, unset
// last). Candidates are claimed with the same conditional increment as
// ReserveRoomTx, so a candidate filled by a concurrent writer is simply
// skipped.
func (r *RoomRepository) ReserveFromPoolTx(ctx context.Context, tx *gorm.DB) (*domain.Room, error) {
	var candidates []domain.Room
	res := tx.WithContext(ctx).
		Where("is_active = ? AND allocation_status IN ? AND occupied_count < capacity",
			true, []domain.RoomAllocationStatus{domain.RoomAvailable, domain.RoomVacantUpgrade}).
		Order("CASE WHEN allocation_status = 'VACANT_UPGRADE' THEN 0 ELSE 1 END").
		Order("CASE WHEN fill_order IS NULL THEN 1 ELSE 0 END").
		Order("fill_order ASC").
		Find(&candidates)
	if res.Error != nil {
		return nil, res.Error
	}

	for _, cand := range candidates {
		claim := tx.WithContext(ctx).Model(&domain.Room{}).
			Where("id = ? AND is_active = ? AND allocation_status IN ? AND occupied_count < capacity",
				cand.ID, true, []domain.RoomAllocationStatus{domain.RoomAvailable, domain.RoomVacantUpgrade}).
			UpdateColumn("occupied_count", gorm.Expr("occupied_count + 1"))
		if claim.Error != nil {
			return nil, claim.Error
		}
		if claim.RowsAffected == 0 {
			continue
		}
		reused := cand.AllocationStatus == domain.RoomVacantUpgrade
		return r.recomputeStatusTx(ctx, tx, cand.ID, reused)
	}
	return nil, ErrNoFreeSlot
}

// ReserveForReassignTx takes a slot in a specific room for an administrative
// room change. Unlike ReserveRoomTx it also accepts VACANT_UPGRADE rooms;
// a reassignment target keeps the same conditional-increment discipline.
func (r *RoomRepository) ReserveForReassignTx(ctx context.Context, tx *gorm.DB, roomID int64) (*domain.Room, error) {
	var before domain.Room
	if err := tx.WithContext(ctx).First(&before, roomID).Error; err != nil {
		return nil, err
	}

	res := tx.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND is_active = ? AND allocation_status IN ? AND occupied_count < capacity",
			roomID, true, []domain.RoomAllocationStatus{domain.RoomAvailable, domain.RoomVacantUpgrade}).
		UpdateColumn("occupied_count", gorm.Expr("occupied_count + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoFreeSlot
	}
	return r.recomputeStatusTx(ctx, tx, roomID, before.AllocationStatus == domain.RoomVacantUpgrade)
}

// ReleaseSlotTx gives back one slot and earmarks the room for priority
// refill. The guard occupied_count > 0 keeps the counter from ever going
// negative.
func (r *RoomRepository) ReleaseSlotTx(ctx context.Context, tx *gorm.DB, roomID int64) error {
	res := tx.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND occupied_count > 0", roomID).
		Updates(map[string]interface{}{
			"occupied_count":    gorm.Expr("occupied_count - 1"),
			"allocation_status": domain.RoomVacantUpgrade,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidRelease
	}
	return nil
}

// recomputeStatusTx reloads the row after an increment and settles
// allocation_status and fill_order. The caller still holds the row's write
// lock for the rest of the transaction, so the reload cannot race another
// writer.
func (r *RoomRepository) recomputeStatusTx(ctx context.Context, tx *gorm.DB, roomID int64, reused bool) (*domain.Room, error) {
	var room domain.Room
	if err := tx.WithContext(ctx).First(&room, roomID).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if reused {
		// The vacancy-upgrade cycle is over for this room; a fresh
		// fill_order is assigned if it fills up again.
		room.FillOrder = nil
		updates["fill_order"] = nil
	}
	if room.OccupiedCount >= room.Capacity {
		room.AllocationStatus = domain.RoomFull
		updates["allocation_status"] = domain.RoomFull
		if room.FillOrder == nil {
			now := time.Now().UTC()
			room.FillOrder = &now
			updates["fill_order"] = now
		}
	} else {
		room.AllocationStatus = domain.RoomAvailable
		updates["allocation_status"] = domain.RoomAvailable
	}

	if err := tx.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ?", roomID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// AdjustableRoomsTx lists rooms eligible for the capacity tool: only rooms
// that have filled up at least once, most recently filled first.
func (r *RoomRepository) AdjustableRoomsTx(ctx context.Context, tx *gorm.DB, limit int) ([]domain.Room, error) {
	var rooms []domain.Room
	res := tx.WithContext(ctx).
		Where("fill_order IS NOT NULL").
		Order("fill_order DESC").
		Limit(limit).
		Find(&rooms)
	if res.Error != nil {
		return nil, res.Error
	}
	return rooms, nil
}

func (r *RoomRepository) SetCapacityTx(ctx context.Context, tx *gorm.DB, roomID int64, capacity int, status domain.RoomAllocationStatus) error {
	return tx.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"capacity":          capacity,
			"allocation_status": status,
		}).Error
}

func (r *RoomRepository) SetActive(ctx context.Context, roomID int64, active bool) error {
	return r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ?", roomID).
		Update("is_active", active).Error
}

func (r *RoomRepository) UpdateRent(ctx context.Context, roomID int64, yearlyRent int) error {
	return r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ?", roomID).
		Update("yearly_rent", yearlyRent).Error
}

// Delete removes an unoccupied room. Rooms with occupants are never hard
// deleted.
func (r *RoomRepository) Delete(ctx context.Context, roomID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND occupied_count = 0", roomID).
		Delete(&domain.Room{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RoomRepository) CountByStatus(ctx context.Context, status domain.RoomAllocationStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("allocation_status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *RoomRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("is_active = ?", true).
		Count(&n).Error
	return n, err
}
