package repository

import (
	"context"
	"time"

	"dealer-portal/internal/domain"
)

// Finder methods return (nil, nil) when nothing matches.

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	SearchByName(ctx context.Context, term string) ([]domain.Product, error)
	SearchBySKU(ctx context.Context, term string) ([]domain.Product, error)
	// ListPage returns products ordered by name along with the catalog size.
	ListPage(ctx context.Context, offset, limit int) ([]domain.Product, int64, error)
	Save(ctx context.Context, p *domain.Product) error
	SaveBatch(ctx context.Context, products []*domain.Product) error
}

type CartRepository interface {
	// Lines returns the lines of a cart ordered by creation time.
	Lines(ctx context.Context, cartID string) ([]domain.CartLine, error)
	FindLine(ctx context.Context, cartID, key string) (*domain.CartLine, error)
	FindLineFor(ctx context.Context, cartID string, productID uint64, t domain.OrderType) (*domain.CartLine, error)
	SaveLine(ctx context.Context, line *domain.CartLine) error
	// DeleteLine reports whether a line was removed.
	DeleteLine(ctx context.Context, cartID, key string) (bool, error)
	Clear(ctx context.Context, cartID string) error
}

type OrderFilter struct {
	Status domain.OrderStatus
	Search string
	Limit  int
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error)
	Search(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error
	// FindPendingBefore returns pending orders created before t.
	FindPendingBefore(ctx context.Context, t time.Time) ([]domain.Order, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

type DealerProfileRepository interface {
	Get(ctx context.Context, userID uint64) (*domain.DealerProfile, error)
	Save(ctx context.Context, p *domain.DealerProfile) error
}

// Transactor runs fn with repositories bound to a single transaction. If fn
// returns an error nothing it wrote is kept.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(orders OrderRepository, carts CartRepository) error) error
}
