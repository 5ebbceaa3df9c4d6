package repository

import (
	"context"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) DB() *gorm.DB { return r.db }

func (r *UserRepository) CreateTx(ctx context.Context, tx *gorm.DB, u *domain.User) error {
	return tx.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	tx := r.db.WithContext(ctx).Where("email = ?", email).First(&u)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &u, nil
}

func (r *UserRepository) GetByEmailTx(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	res := tx.WithContext(ctx).Where("email = ?", email).First(&u)
	if res.Error != nil {
		return nil, res.Error
	}
	return &u, nil
}

func (r *UserRepository) CountStudents(ctx context.Context, status domain.UserStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", domain.RoleStudent)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
