package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hostelms/internal/database"
	"hostelms/internal/domain"
)

func setupRoomRepo(t *testing.T) (*RoomRepository, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewRoomRepository(db), db
}

func seedRoom(t *testing.T, db *gorm.DB, room *domain.Room) *domain.Room {
	t.Helper()
	if room.AllocationStatus == "" {
		room.AllocationStatus = domain.RoomAvailable
	}
	room.IsActive = true
	require.NoError(t, db.Create(room).Error)
	return room
}

func TestReserveRoomTx_TakesSlotAndSettlesStatus(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 2})

	got, err := repo.ReserveRoomTx(context.Background(), db, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.OccupiedCount)
	assert.Equal(t, domain.RoomAvailable, got.AllocationStatus)
	assert.Nil(t, got.FillOrder)

	got, err = repo.ReserveRoomTx(context.Background(), db, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.OccupiedCount)
	assert.Equal(t, domain.RoomFull, got.AllocationStatus)
	assert.NotNil(t, got.FillOrder)
}

func TestReserveRoomTx_FullRoom(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1})

	_, err := repo.ReserveRoomTx(context.Background(), db, room.ID)
	require.NoError(t, err)

	_, err = repo.ReserveRoomTx(context.Background(), db, room.ID)
	assert.ErrorIs(t, err, ErrNoFreeSlot)

	reloaded, err := repo.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.OccupiedCount, "occupied_count must never exceed capacity")
}

func TestReserveRoomTx_InactiveRoom(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1})
	require.NoError(t, db.Model(&domain.Room{}).Where("id = ?", room.ID).Update("is_active", false).Error)

	_, err := repo.ReserveRoomTx(context.Background(), db, room.ID)
	assert.ErrorIs(t, err, ErrNoFreeSlot)
}

func TestReleaseSlotTx_EmptyRoom(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1})

	err := repo.ReleaseSlotTx(context.Background(), db, room.ID)
	assert.ErrorIs(t, err, ErrInvalidRelease)
}

func TestReleaseSlotTx_MarksVacantUpgrade(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1})

	_, err := repo.ReserveRoomTx(context.Background(), db, room.ID)
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseSlotTx(context.Background(), db, room.ID))

	reloaded, err := repo.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.OccupiedCount)
	assert.Equal(t, domain.RoomVacantUpgrade, reloaded.AllocationStatus)
}

func TestReserveFromPoolTx_PrefersVacantUpgrade(t *testing.T) {
	repo, db := setupRoomRepo(t)
	seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1})
	upgraded := seedRoom(t, db, &domain.Room{
		Block:            "z",
		RoomNumber:       "999",
		Capacity:         1,
		AllocationStatus: domain.RoomVacantUpgrade,
	})

	got, err := repo.ReserveFromPoolTx(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, upgraded.ID, got.ID, "VACANT_UPGRADE must win regardless of sort-neutral ordering")
}

func TestReserveFromPoolTx_LongestIdleFirst(t *testing.T) {
	repo, db := setupRoomRepo(t)
	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC().Add(-1 * time.Hour)

	// Both previously full, both widened again with free slots.
	first := seedRoom(t, db, &domain.Room{
		Block: "a", RoomNumber: "101", Capacity: 2, OccupiedCount: 1, FillOrder: &old,
	})
	seedRoom(t, db, &domain.Room{
		Block: "a", RoomNumber: "102", Capacity: 2, OccupiedCount: 1, FillOrder: &recent,
	})

	got, err := repo.ReserveFromPoolTx(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestReserveFromPoolTx_Empty(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1})
	_, err := repo.ReserveRoomTx(context.Background(), db, room.ID)
	require.NoError(t, err)

	_, err = repo.ReserveFromPoolTx(context.Background(), db)
	assert.ErrorIs(t, err, ErrNoFreeSlot)
}

func TestReserveForReassignTx_AcceptsVacantUpgrade(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{
		Block:            "a",
		RoomNumber:       "101",
		Capacity:         1,
		AllocationStatus: domain.RoomVacantUpgrade,
	})

	got, err := repo.ReserveForReassignTx(context.Background(), db, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.OccupiedCount)
	assert.Equal(t, domain.RoomFull, got.AllocationStatus)
}

func TestAdjustableRoomsTx_MostRecentlyFilledFirst(t *testing.T) {
	repo, db := setupRoomRepo(t)
	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC().Add(-1 * time.Hour)

	seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1, FillOrder: &old})
	newest := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "102", Capacity: 1, FillOrder: &recent})
	seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "103", Capacity: 1}) // never filled

	rooms, err := repo.AdjustableRoomsTx(context.Background(), db, 5)
	require.NoError(t, err)
	require.Len(t, rooms, 2, "rooms without a fill_order are not adjustable")
	assert.Equal(t, newest.ID, rooms[0].ID)
}

// Hammers one room with parallel reserve attempts. The conditional UPDATE is
// the only thing standing between the counter and oversubscription, so exactly
// capacity goroutines may win no matter how the writers interleave. SQLite
// serializes writers by failing the late ones, so lock errors are retried.
func TestReserveRoomTx_ParallelWritersNeverOversubscribe(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 2})

	const writers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				err := db.Transaction(func(tx *gorm.DB) error {
					_, err := repo.ReserveRoomTx(context.Background(), tx, room.ID)
					return err
				})
				switch {
				case err == nil:
					mu.Lock()
					wins++
					mu.Unlock()
					return
				case errors.Is(err, ErrNoFreeSlot):
					return
				default:
					// database is locked / busy under contention
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, wins)

	reloaded, err := repo.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.OccupiedCount, "occupied_count must never exceed capacity")
	assert.Equal(t, domain.RoomFull, reloaded.AllocationStatus)
}

// Mixed reserve and release traffic. Releases only fire after a successful
// reserve, so the counter must stay within [0, capacity] throughout and land
// on the net number of kept slots.
func TestRoomSlotCounters_ParallelReserveRelease(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 2})

	retry := func(op func() error) error {
		for {
			err := op()
			if err == nil || errors.Is(err, ErrNoFreeSlot) || errors.Is(err, ErrInvalidRelease) {
				return err
			}
			time.Sleep(time.Millisecond)
		}
	}

	const writers = 6
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 5; n++ {
				err := retry(func() error {
					return db.Transaction(func(tx *gorm.DB) error {
						_, err := repo.ReserveRoomTx(context.Background(), tx, room.ID)
						return err
					})
				})
				if err != nil {
					continue
				}
				err = retry(func() error {
					return db.Transaction(func(tx *gorm.DB) error {
						return repo.ReleaseSlotTx(context.Background(), tx, room.ID)
					})
				})
				assert.NoError(t, err, "a reserved slot must always release")
			}
		}()
	}
	wg.Wait()

	reloaded, err := repo.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.OccupiedCount)
	assert.LessOrEqual(t, reloaded.OccupiedCount, reloaded.Capacity)
}

func TestDelete_OccupiedRoomSurvives(t *testing.T) {
	repo, db := setupRoomRepo(t)
	room := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1})
	_, err := repo.ReserveRoomTx(context.Background(), db, room.ID)
	require.NoError(t, err)

	deleted, err := repo.Delete(context.Background(), room.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetByID(context.Background(), room.ID)
	assert.NoError(t, err)
}
