package mysql

import (
	"context"
	"errors"
	"fmt"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"

	"gorm.io/gorm"
)

type dealerProfileRepo struct {
	db *gorm.DB
}

func NewDealerProfileRepository(db *gorm.DB) repository.DealerProfileRepository {
	return &dealerProfileRepo{db: db}
}

func (r *dealerProfileRepo) Get(ctx context.Context, userID uint64) (*domain.DealerProfile, error) {
	var p domain.DealerProfile
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find dealer profile %d: %w", userID, err)
	}
	return &p, nil
}

// Save replaces the whole profile row.
func (r *dealerProfileRepo) Save(ctx context.Context, p *domain.DealerProfile) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("save dealer profile %d: %w", p.UserID, err)
	}
	return nil
}
