package memory

import (
	"context"
	"sort"

	"dealer-portal/internal/domain"
)

type cartRepo struct {
	s *Store
}

func (r *cartRepo) Lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lines := r.s.data.carts[cartID]
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (r *cartRepo) FindLine(ctx context.Context, cartID, key string) (*domain.CartLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.data.carts[cartID][key]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *cartRepo) FindLineFor(ctx context.Context, cartID string, productID uint64, t domain.OrderType) (*domain.CartLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.data.carts[cartID] {
		if l.ProductID == productID && l.OrderType == t {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *cartRepo) SaveLine(ctx context.Context, line *domain.CartLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lines, ok := r.s.data.carts[line.CartID]
	if !ok {
		lines = make(map[string]domain.CartLine)
		r.s.data.carts[line.CartID] = lines
	}
	lines[line.Key] = *line
	return nil
}

func (r *cartRepo) DeleteLine(ctx context.Context, cartID, key string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lines := r.s.data.carts[cartID]
	if _, ok := lines[key]; !ok {
		return false, nil
	}
	delete(lines, key)
	return true, nil
}

func (r *cartRepo) Clear(ctx context.Context, cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.carts, cartID)
	return nil
}
