package identity

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostelms/internal/domain"
)

// Service owns account creation and credential issuance. The allotment
// registration flows call CreateAccountTx inside their own transaction so a
// failed room reservation aborts the account too.
type Service struct {
	users UserRepository
	jwt   tokenService
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(users UserRepository, jwt tokenService) *Service {
	return &Service{users: users, jwt: jwt}
}

type CreateAccountParams struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     domain.UserRole
}

// CreateAccountTx creates an account within the caller's transaction. The
// email pre-check runs on the same transaction; the unique index on email
// closes the remaining race at commit time.
func (s *Service) CreateAccountTx(ctx context.Context, tx *gorm.DB, p CreateAccountParams) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))

	if _, err := s.users.GetByEmailTx(ctx, tx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(p.FullName),
		Phone:        strings.TrimSpace(p.Phone),
		Role:         p.Role,
		Status:       domain.UserActive,
	}
	if err := s.users.CreateTx(ctx, tx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueCredential returns a signed access token for the account.
func (s *Service) IssueCredential(user *domain.User) (string, error) {
	return s.jwt.GenerateToken(user.ID, string(user.Role))
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Status != domain.UserActive {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueCredential(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
