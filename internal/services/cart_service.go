package services

import (
	"context"
	"fmt"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/infra"
	"dealer-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const productCachePrefix = "product:"

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	locks    *SessionLocks
	cache    infra.Cache
	cacheTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, locks *SessionLocks, log zerolog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		locks:    locks,
		log:      log.With().Str("component", "cart").Logger(),
		now:      time.Now,
	}
}

// SetProductCache enables product lookups through cache.
func (s *CartService) SetProductCache(cache infra.Cache, ttl time.Duration) {
	s.cache = cache
	s.cacheTTL = ttl
}

func requireShopper(sess domain.Session) error {
	if !sess.User.Role.CanShop() {
		return domain.NewPermissionError("your account cannot place orders")
	}
	return nil
}

// AddItem prices productID for orderType and adds it to the session cart.
// A line for the same product and order type is merged, keeping its price.
func (s *CartService) AddItem(ctx context.Context, sess domain.Session, productID uint64, quantity int, orderType string) (*domain.CartLine, domain.CartSnapshot, error) {
	if err := requireShopper(sess); err != nil {
		return nil, domain.CartSnapshot{}, err
	}
	qty := domain.NormalizeQuantity(quantity)
	t := domain.ParseOrderType(orderType)

	prod, err := s.getProductWithCache(ctx, productID)
	if err != nil {
		return nil, domain.CartSnapshot{}, err
	}
	if prod == nil {
		return nil, domain.CartSnapshot{}, domain.NewNotFoundError("product")
	}
	price := domain.ResolvePrice(*prod, t)
	if !price.Priced() {
		return nil, domain.CartSnapshot{}, domain.NewValidationError("%s has no price for %s", prod.Name, t.Label())
	}

	unlock := s.locks.Lock(sess.ID)
	defer unlock()

	line, err := s.carts.FindLineFor(ctx, sess.ID, prod.ID, t)
	if err != nil {
		return nil, domain.CartSnapshot{}, err
	}
	if line != nil {
		if line.Quantity > domain.MaxLineQuantity-qty {
			return nil, domain.CartSnapshot{}, domain.NewValidationError("%s cannot exceed %d units per line", prod.Name, domain.MaxLineQuantity)
		}
		line.Quantity += qty
	} else {
		line = &domain.CartLine{
			Key:       uuid.NewString(),
			CartID:    sess.ID,
			ProductID: prod.ID,
			SKU:       prod.SKU,
			Name:      prod.Name,
			Quantity:  qty,
			OrderType: t,
			UnitPrice: price.Amount,
			CreatedAt: s.now(),
		}
	}
	if err := s.carts.SaveLine(ctx, line); err != nil {
		return nil, domain.CartSnapshot{}, err
	}

	s.log.Debug().
		Str("cart_id", sess.ID).
		Str("line", line.Key).
		Uint64("product_id", prod.ID).
		Str("order_type", string(t)).
		Int("quantity", line.Quantity).
		Str("price_source", price.Source).
		Msg("cart line saved")

	snap, err := s.snapshot(ctx, sess.ID)
	return line, snap, err
}

// UpdateQuantity sets a line's quantity; the frozen unit price is kept.
func (s *CartService) UpdateQuantity(ctx context.Context, sess domain.Session, key string, quantity int) (domain.CartSnapshot, error) {
	if err := requireShopper(sess); err != nil {
		return domain.CartSnapshot{}, err
	}
	unlock := s.locks.Lock(sess.ID)
	defer unlock()

	line, err := s.carts.FindLine(ctx, sess.ID, key)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	if line == nil {
		return domain.CartSnapshot{}, domain.NewNotFoundError("cart item")
	}
	line.Quantity = domain.NormalizeQuantity(quantity)
	if err := s.carts.SaveLine(ctx, line); err != nil {
		return domain.CartSnapshot{}, err
	}
	return s.snapshot(ctx, sess.ID)
}

// RemoveItem deletes a line. Removing an absent line is an error.
func (s *CartService) RemoveItem(ctx context.Context, sess domain.Session, key string) (domain.CartSnapshot, error) {
	if err := requireShopper(sess); err != nil {
		return domain.CartSnapshot{}, err
	}
	unlock := s.locks.Lock(sess.ID)
	defer unlock()

	removed, err := s.carts.DeleteLine(ctx, sess.ID, key)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	if !removed {
		return domain.CartSnapshot{}, domain.NewNotFoundError("cart item")
	}
	return s.snapshot(ctx, sess.ID)
}

func (s *CartService) List(ctx context.Context, sess domain.Session) (domain.CartSnapshot, error) {
	if err := requireShopper(sess); err != nil {
		return domain.CartSnapshot{}, err
	}
	return s.snapshot(ctx, sess.ID)
}

func (s *CartService) Clear(ctx context.Context, sess domain.Session) error {
	unlock := s.locks.Lock(sess.ID)
	defer unlock()
	return s.carts.Clear(ctx, sess.ID)
}

func (s *CartService) snapshot(ctx context.Context, cartID string) (domain.CartSnapshot, error) {
	lines, err := s.carts.Lines(ctx, cartID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	return domain.NewCartSnapshot(lines), nil
}

func (s *CartService) getProductWithCache(ctx context.Context, productID uint64) (*domain.Product, error) {
	cacheKey := fmt.Sprintf("%s%d", productCachePrefix, productID)

	if s.cache != nil {
		var cached domain.Product
		hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", cacheKey).Msg("product cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	prod, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && prod != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, prod, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", cacheKey).Msg("product cache write failed")
		}
	}
	return prod, nil
}
