package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostelms/internal/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateTx(ctx context.Context, tx *gorm.DB, u *domain.User) error {
	args := m.Called(ctx, tx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmailTx(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	args := m.Called(ctx, tx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func activeUser(email, password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return &domain.User{
		ID:           42,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Role:         domain.RoleStudent,
		Status:       domain.UserActive,
	}
}

func TestCreateAccountTx_Success(t *testing.T) {
	repo := new(mockUserRepo)
	tokens := new(mockTokenService)
	svc := NewService(repo, tokens)

	repo.On("GetByEmailTx", mock.Anything, mock.Anything, "new@test.edu").
		Return(nil, gorm.ErrRecordNotFound)
	repo.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(nil)

	user, err := svc.CreateAccountTx(context.Background(), nil, CreateAccountParams{
		FullName: "New Student",
		Email:    "New@Test.EDU",
		Password: "secret123",
		Role:     domain.RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, "new@test.edu", user.Email, "email is normalized before storage")
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
	repo.AssertExpectations(t)
}

func TestCreateAccountTx_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepo)
	tokens := new(mockTokenService)
	svc := NewService(repo, tokens)

	repo.On("GetByEmailTx", mock.Anything, mock.Anything, "taken@test.edu").
		Return(activeUser("taken@test.edu", "x"), nil)

	_, err := svc.CreateAccountTx(context.Background(), nil, CreateAccountParams{
		Email:    "taken@test.edu",
		Password: "secret123",
		Role:     domain.RoleStudent,
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	repo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockUserRepo)
	tokens := new(mockTokenService)
	svc := NewService(repo, tokens)

	user := activeUser("student@test.edu", "secret123")
	repo.On("GetByEmail", mock.Anything, "student@test.edu").Return(user, nil)
	tokens.On("GenerateToken", int64(42), "student").Return("signed-token", nil)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Student@Test.EDU",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "signed-token", result.AccessToken)
	assert.Empty(t, result.User.PasswordHash, "hash never leaves the service")
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockUserRepo)
	tokens := new(mockTokenService)
	svc := NewService(repo, tokens)

	repo.On("GetByEmail", mock.Anything, "student@test.edu").
		Return(activeUser("student@test.edu", "secret123"), nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "student@test.edu",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(mockUserRepo)
	tokens := new(mockTokenService)
	svc := NewService(repo, tokens)

	repo.On("GetByEmail", mock.Anything, "ghost@test.edu").
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@test.edu",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	repo := new(mockUserRepo)
	tokens := new(mockTokenService)
	svc := NewService(repo, tokens)

	user := activeUser("student@test.edu", "secret123")
	user.Status = domain.UserInactive
	repo.On("GetByEmail", mock.Anything, "student@test.edu").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "student@test.edu",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrAccountInactive)
}
