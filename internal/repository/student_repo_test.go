package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hostelms/internal/database"
	"hostelms/internal/domain"
)

func setupStudentRepo(t *testing.T) (*StudentRepository, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewStudentRepository(db), db
}

func seedAllottedStudent(t *testing.T, db *gorm.DB, roomID int64) *domain.Student {
	t.Helper()
	user := &domain.User{
		Email:    "resident@hostel.example.com",
		FullName: "Resident",
		Role:     domain.RoleStudent,
		Status:   domain.UserActive,
	}
	require.NoError(t, db.Create(user).Error)
	student := &domain.Student{
		UserID:             user.ID,
		SID:                "20210001",
		GuardianContact:    "9876543210",
		RoomID:             &roomID,
		AllotmentStatus:    domain.AllotmentAllotted,
		VerificationStatus: domain.VerificationVerified,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

func TestReassignRoomTx_MovesFromExpectedRoom(t *testing.T) {
	repo, db := setupStudentRepo(t)
	first := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1, OccupiedCount: 1})
	second := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "102", Capacity: 1})
	student := seedAllottedStudent(t, db, first.ID)

	require.NoError(t, repo.ReassignRoomTx(context.Background(), db, student.ID, first.ID, second.ID))

	reloaded, err := repo.GetByUserID(context.Background(), student.UserID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.RoomID)
	assert.Equal(t, second.ID, *reloaded.RoomID)
}

// Two overlapping moves of the same resident must not both go through: the
// second one still carries the room the resident has already left, so its
// guard matches nothing and its slot bookkeeping never runs.
func TestReassignRoomTx_StaleRoomAborts(t *testing.T) {
	repo, db := setupStudentRepo(t)
	first := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "101", Capacity: 1, OccupiedCount: 1})
	second := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "102", Capacity: 1})
	third := seedRoom(t, db, &domain.Room{Block: "a", RoomNumber: "103", Capacity: 1})
	student := seedAllottedStudent(t, db, first.ID)

	require.NoError(t, repo.ReassignRoomTx(context.Background(), db, student.ID, first.ID, second.ID))

	err := repo.ReassignRoomTx(context.Background(), db, student.ID, first.ID, third.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	reloaded, err := repo.GetByUserID(context.Background(), student.UserID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.RoomID)
	assert.Equal(t, second.ID, *reloaded.RoomID, "the later move must not override the earlier one")
}
