package mysql

import (
	"context"
	"errors"
	"fmt"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"

	"gorm.io/gorm"
)

const saveBatchChunk = 100

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &p, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product by sku %q: %w", sku, err)
	}
	return &p, nil
}

func (r *productRepo) SearchByName(ctx context.Context, term string) ([]domain.Product, error) {
	var out []domain.Product
	if err := r.db.WithContext(ctx).Where("name LIKE ?", likePattern(term)).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("search products by name: %w", err)
	}
	return out, nil
}

func (r *productRepo) SearchBySKU(ctx context.Context, term string) ([]domain.Product, error) {
	var out []domain.Product
	if err := r.db.WithContext(ctx).Where("sku LIKE ?", likePattern(term)).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("search products by sku: %w", err)
	}
	return out, nil
}

func (r *productRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	var out []domain.Product
	err := r.db.WithContext(ctx).
		Order("name ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return out, total, nil
}

func (r *productRepo) Save(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("save product %q: %w", p.SKU, err)
	}
	return nil
}

// SaveBatch writes products in one transaction, chunked to keep statements small.
func (r *productRepo) SaveBatch(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < len(products); i += saveBatchChunk {
			end := i + saveBatchChunk
			if end > len(products) {
				end = len(products)
			}
			for _, p := range products[i:end] {
				if err := tx.Save(p).Error; err != nil {
					return fmt.Errorf("save product %q: %w", p.SKU, err)
				}
				if p.ID == 0 {
					return errors.New("batch save failed to assign product id")
				}
			}
		}
		return nil
	})
}
