package allotment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"hostelms/internal/domain"
	"hostelms/internal/modules/identity"
	"hostelms/internal/pkg/validator"
	"hostelms/internal/repository"
)

// Service is the room-allotment core: registration flows, the verification
// engine, the phase controller and the capacity tool. All multi-record
// mutations run inside one gorm transaction; occupancy counters are only
// touched through the conditional updates in the room repository.
type Service struct {
	db       *gorm.DB
	hostels  *repository.HostelRepository
	rooms    *repository.RoomRepository
	students *repository.StudentRepository
	requests *repository.RoomRequestRepository
	users    *repository.UserRepository
	identity IdentityService
	files    FileStore

	capacityCeiling int
}

func NewService(
	db *gorm.DB,
	hostels *repository.HostelRepository,
	rooms *repository.RoomRepository,
	students *repository.StudentRepository,
	requests *repository.RoomRequestRepository,
	users *repository.UserRepository,
	identitySvc IdentityService,
	files FileStore,
	capacityCeiling int,
) *Service {
	return &Service{
		db:              db,
		hostels:         hostels,
		rooms:           rooms,
		students:        students,
		requests:        requests,
		users:           users,
		identity:        identitySvc,
		files:           files,
		capacityCeiling: capacityCeiling,
	}
}

// RegisterPhaseA signs a student up with a self-selected room. The account,
// the slot reservation, the student record and the ledger entry commit or
// abort together: a full room never leaves a half-created registration
// behind.
func (s *Service) RegisterPhaseA(ctx context.Context, req RegisterPhaseARequest) (*RegistrationResult, error) {
	normalizeRegistration(&req.Email, &req.SID, &req.Phone, &req.GuardianContact)
	if errs := validator.Validate(req); errs != nil {
		return nil, ErrValidation
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	hostel, err := s.hostels.GetActiveTx(ctx, tx)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHostelNotConfigured
		}
		return nil, err
	}
	if hostel.AllotmentStatus != domain.PhaseAOpen {
		tx.Rollback()
		return nil, ErrPhaseClosed
	}

	if err := s.checkDuplicatesTx(ctx, tx, req.Email, req.SID); err != nil {
		tx.Rollback()
		return nil, err
	}

	user, err := s.identity.CreateAccountTx(ctx, tx, identity.CreateAccountParams{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     domain.RoleStudent,
	})
	if err != nil {
		tx.Rollback()
		if errors.Is(err, identity.ErrEmailExists) || isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	room, err := s.rooms.ReserveRoomTx(ctx, tx, req.RoomID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	student := &domain.Student{
		UserID:             user.ID,
		SID:                req.SID,
		Branch:             strings.TrimSpace(req.Branch),
		PermanentAddress:   strings.TrimSpace(req.PermanentAddress),
		GuardianName:       strings.TrimSpace(req.GuardianName),
		GuardianContact:    req.GuardianContact,
		RoomID:             &room.ID,
		AllotmentPhase:     domain.PhaseA,
		AllotmentStatus:    domain.AllotmentTempLocked,
		VerificationStatus: domain.VerificationPending,
	}
	if err := s.students.CreateTx(ctx, tx, student); err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSID
		}
		return nil, err
	}

	now := time.Now().UTC()
	request := &domain.RoomRequest{
		StudentID:       student.ID,
		Phase:           domain.PhaseA,
		RequestedRoomID: &room.ID,
		Status:          domain.RequestTempLocked,
		ProcessedAt:     &now,
	}
	if err := s.requests.CreateTx(ctx, tx, request); err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return nil, ErrOpenRequestExists
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	token, err := s.identity.IssueCredential(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	student.User = user
	student.Room = room
	return &RegistrationResult{Student: student, AccessToken: token}, nil
}

// RegisterPhaseB signs a student up without a room. No capacity is reserved:
// phase B draws from whatever is left (including upgraded vacancies) at
// verification time, so reserving here would fake scarcity.
func (s *Service) RegisterPhaseB(ctx context.Context, req RegisterPhaseBRequest) (*RegistrationResult, error) {
	normalizeRegistration(&req.Email, &req.SID, &req.Phone, &req.GuardianContact)
	if errs := validator.Validate(req); errs != nil {
		return nil, ErrValidation
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	hostel, err := s.hostels.GetActiveTx(ctx, tx)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHostelNotConfigured
		}
		return nil, err
	}
	if hostel.AllotmentStatus != domain.PhaseBOpen {
		tx.Rollback()
		return nil, ErrPhaseClosed
	}

	if err := s.checkDuplicatesTx(ctx, tx, req.Email, req.SID); err != nil {
		tx.Rollback()
		return nil, err
	}

	user, err := s.identity.CreateAccountTx(ctx, tx, identity.CreateAccountParams{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     domain.RoleStudent,
	})
	if err != nil {
		tx.Rollback()
		if errors.Is(err, identity.ErrEmailExists) || isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	student := &domain.Student{
		UserID:             user.ID,
		SID:                req.SID,
		Branch:             strings.TrimSpace(req.Branch),
		PermanentAddress:   strings.TrimSpace(req.PermanentAddress),
		GuardianName:       strings.TrimSpace(req.GuardianName),
		GuardianContact:    req.GuardianContact,
		AllotmentPhase:     domain.PhaseB,
		AllotmentStatus:    domain.AllotmentPending,
		VerificationStatus: domain.VerificationPending,
	}
	if err := s.students.CreateTx(ctx, tx, student); err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSID
		}
		return nil, err
	}

	request := &domain.RoomRequest{
		StudentID: student.ID,
		Phase:     domain.PhaseB,
		Status:    domain.RequestPending,
	}
	if err := s.requests.CreateTx(ctx, tx, request); err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return nil, ErrOpenRequestExists
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	token, err := s.identity.IssueCredential(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	student.User = user
	return &RegistrationResult{Student: student, AccessToken: token}, nil
}

// VerifyAndAllocate applies the admin decision to a pending registration.
// Student record, ledger entry and room inventory change together or not at
// all; this is the only operation that releases phase-A reservations or
// allocates phase-B rooms.
func (s *Service) VerifyAndAllocate(ctx context.Context, studentUserID int64, decision domain.VerificationStatus) (*VerifyResult, error) {
	if decision != domain.VerificationVerified && decision != domain.VerificationRejected {
		return nil, ErrValidation
	}

	var result VerifyResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		student, err := s.students.GetOpenByUserIDTx(ctx, tx, studentUserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if _, lookupErr := s.students.GetByUserID(ctx, studentUserID); lookupErr == nil {
				return ErrAlreadyProcessed
			}
			return ErrStudentNotFound
		}

		request, err := s.requests.GetOpenByStudentTx(ctx, tx, student.ID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			terminal, terr := s.requests.HasTerminalByStudentTx(ctx, tx, student.ID)
			if terr != nil {
				return terr
			}
			if terminal {
				return ErrAlreadyProcessed
			}
			return ErrInconsistentRequestState
		}

		// Phase A and phase B reach "open ledger entry" on different
		// paths; a mismatch means a corrupted prior operation and must
		// not be silently reprocessed.
		switch request.Phase {
		case domain.PhaseA:
			if request.Status != domain.RequestTempLocked || request.RequestedRoomID == nil {
				return ErrInconsistentRequestState
			}
		case domain.PhaseB:
			if request.Status != domain.RequestPending || request.RequestedRoomID != nil {
				return ErrInconsistentRequestState
			}
		default:
			return ErrInconsistentRequestState
		}

		now := time.Now().UTC()
		request.ProcessedAt = &now

		if request.Phase == domain.PhaseA {
			if decision == domain.VerificationVerified {
				student.VerificationStatus = domain.VerificationVerified
				student.AllotmentStatus = domain.AllotmentAllotted
				request.Status = domain.RequestSuccess
				request.AllocatedRoomID = request.RequestedRoomID
			} else {
				student.VerificationStatus = domain.VerificationRejected
				student.AllotmentStatus = domain.AllotmentCancelled
				student.RoomID = nil
				request.Status = domain.RequestFailed
				if err := s.rooms.ReleaseSlotTx(ctx, tx, *request.RequestedRoomID); err != nil {
					return err
				}
			}
		} else {
			if decision == domain.VerificationVerified {
				student.VerificationStatus = domain.VerificationVerified
				room, err := s.rooms.ReserveFromPoolTx(ctx, tx)
				switch {
				case err == nil:
					student.RoomID = &room.ID
					student.AllotmentStatus = domain.AllotmentAllotted
					request.Status = domain.RequestSuccess
					request.RequestedRoomID = &room.ID
					request.AllocatedRoomID = &room.ID
					result.AllocatedRoom = room
				case errors.Is(err, repository.ErrNoFreeSlot):
					// Verification stands but nothing can be
					// allotted; the attempt terminates FAILED.
					student.AllotmentStatus = domain.AllotmentCancelled
					request.Status = domain.RequestFailed
				default:
					return err
				}
			} else {
				student.VerificationStatus = domain.VerificationRejected
				student.AllotmentStatus = domain.AllotmentCancelled
				request.Status = domain.RequestFailed
			}
		}

		if err := s.students.UpdateTx(ctx, tx, student); err != nil {
			return err
		}
		if err := s.requests.UpdateTx(ctx, tx, request); err != nil {
			return err
		}

		result.SID = student.SID
		result.AllotmentStatus = student.AllotmentStatus
		result.VerificationStatus = student.VerificationStatus
		if result.AllocatedRoom == nil && request.Status == domain.RequestSuccess && request.AllocatedRoomID != nil {
			room, err := s.rooms.GetByID(ctx, *request.AllocatedRoomID)
			if err != nil {
				return err
			}
			result.AllocatedRoom = room
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.files != nil {
		if result.VerificationStatus == domain.VerificationVerified {
			_ = s.files.PromoteProfilePhoto(ctx, result.SID)
		} else {
			_ = s.files.DiscardProfilePhoto(ctx, result.SID)
		}
	}

	return &result, nil
}

// ChangeRoom moves an allotted student to another room. The student's room
// assignment is flipped through a guarded write so overlapping moves of the
// same student cannot both release the old slot, and the new slot is reserved
// before the old one is released so a failed reservation never leaves the
// student without a room.
func (s *Service) ChangeRoom(ctx context.Context, studentUserID int64, req ChangeRoomRequest) (*domain.Student, error) {
	block := strings.ToLower(strings.TrimSpace(req.Block))
	roomNumber := strings.TrimSpace(req.RoomNumber)
	if block == "" || roomNumber == "" {
		return nil, ErrValidation
	}

	var moved *domain.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		student, err := s.students.GetByUserIDTx(ctx, tx, studentUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}
		if student.AllotmentStatus != domain.AllotmentAllotted || student.RoomID == nil {
			return ErrNotAllotted
		}
		oldRoomID := *student.RoomID

		target, err := s.rooms.GetByBlockNumber(ctx, block, roomNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		if target.ID == oldRoomID {
			return ErrValidation
		}

		// Flip the student's room first. The write locks the student row,
		// so concurrent moves of the same student serialize here and the
		// loser's room_id guard matches zero rows before any slot counter
		// has been touched.
		if err := s.students.ReassignRoomTx(ctx, tx, student.ID, oldRoomID, target.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentConflict
			}
			return err
		}

		newRoom, err := s.rooms.ReserveForReassignTx(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		if err := s.rooms.ReleaseSlotTx(ctx, tx, oldRoomID); err != nil {
			return err
		}

		student.RoomID = &newRoom.ID
		student.Room = newRoom
		moved = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *Service) checkDuplicatesTx(ctx context.Context, tx *gorm.DB, email, sid string) error {
	if _, err := s.users.GetByEmailTx(ctx, tx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if _, err := s.students.GetBySIDTx(ctx, tx, sid); err == nil {
		return ErrDuplicateSID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func normalizeRegistration(email, sid, phone, guardianContact *string) {
	*email = strings.ToLower(strings.TrimSpace(*email))
	*sid = strings.TrimSpace(*sid)
	*phone = strings.TrimSpace(*phone)
	*guardianContact = strings.TrimSpace(*guardianContact)
}

// isUniqueViolation recognizes unique-index violations from both backends:
// pgconn's 23505 on postgres and the sqlite driver's message otherwise.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
