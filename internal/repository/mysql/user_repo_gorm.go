package mysql

import (
	"context"
	"errors"
	"fmt"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

func (r *userRepo) FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find users with role %s: %w", role, err)
	}
	return out, nil
}
