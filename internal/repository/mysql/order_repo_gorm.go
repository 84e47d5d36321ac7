package mysql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"

	"gorm.io/gorm"
)

const defaultOrderSearchLimit = 100

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	if order.ID == 0 {
		return errors.New("save order: no id assigned")
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := preloadLines(r.db.WithContext(ctx)).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &o, nil
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	var out []domain.Order
	err := preloadLines(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find orders for user %d: %w", userID, err)
	}
	return out, nil
}

func (r *orderRepo) Search(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	q := preloadLines(r.db.WithContext(ctx)).Model(&domain.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := likePattern(term)
		if id, err := strconv.ParseUint(term, 10, 64); err == nil {
			q = q.Where("id = ? OR customer_name LIKE ? OR customer_email LIKE ?", id, like, like)
		} else {
			q = q.Where("customer_name LIKE ? OR customer_email LIKE ?", like, like)
		}
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultOrderSearchLimit
	}

	var out []domain.Order
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update order %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero rows when the status is unchanged.
		var n int64
		if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("check order %d: %w", id, err)
		}
		if n == 0 {
			return domain.NewNotFoundError("order")
		}
	}
	return nil
}

func (r *orderRepo) FindPendingBefore(ctx context.Context, t time.Time) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.StatusPending, t).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find pending orders: %w", err)
	}
	return out, nil
}

// likePattern wraps term for a substring LIKE match, escaping wildcards.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
