package identity

import (
	"context"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

// UserRepository is the slice of the user store the identity module needs.
type UserRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailTx(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error)
}

type tokenService interface {
	GenerateToken(userID int64, role string) (string, error)
}
