package mysql

import (
	"context"
	"errors"
	"fmt"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"

	"gorm.io/gorm"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	var out []domain.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC, `key` ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	return out, nil
}

func (r *cartRepo) FindLine(ctx context.Context, cartID, key string) (*domain.CartLine, error) {
	return r.first(ctx, "cart_id = ? AND `key` = ?", cartID, key)
}

func (r *cartRepo) FindLineFor(ctx context.Context, cartID string, productID uint64, t domain.OrderType) (*domain.CartLine, error) {
	return r.first(ctx, "cart_id = ? AND product_id = ? AND order_type = ?", cartID, productID, t)
}

func (r *cartRepo) first(ctx context.Context, query string, args ...any) (*domain.CartLine, error) {
	var l domain.CartLine
	if err := r.db.WithContext(ctx).Where(query, args...).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart line: %w", err)
	}
	return &l, nil
}

func (r *cartRepo) SaveLine(ctx context.Context, line *domain.CartLine) error {
	if err := r.db.WithContext(ctx).Save(line).Error; err != nil {
		return fmt.Errorf("save cart line %s: %w", line.Key, err)
	}
	return nil
}

func (r *cartRepo) DeleteLine(ctx context.Context, cartID, key string) (bool, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ? AND `key` = ?", cartID, key).Delete(&domain.CartLine{})
	if res.Error != nil {
		return false, fmt.Errorf("delete cart line %s: %w", key, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) Clear(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartLine{}).Error; err != nil {
		return fmt.Errorf("clear cart %s: %w", cartID, err)
	}
	return nil
}
