package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"
)

type orderRepo struct {
	s *Store
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.ID == 0 {
		r.s.data.nextOrderID++
		order.ID = r.s.data.nextOrderID
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
	}
	r.s.data.orders[order.ID] = copyOrder(*order)
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, nil
	}
	o = copyOrder(o)
	return &o, nil
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	return r.filter(0, func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r *orderRepo) Search(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	term := strings.TrimSpace(f.Search)
	id, idErr := strconv.ParseUint(term, 10, 64)
	return r.filter(f.Limit, func(o domain.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if term == "" {
			return true
		}
		if idErr == nil && o.ID == id {
			return true
		}
		return containsFold(o.CustomerName, term) || containsFold(o.CustomerEmail, term)
	}), nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return domain.NewNotFoundError("order")
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.data.orders[id] = o
	return nil
}

func (r *orderRepo) FindPendingBefore(ctx context.Context, t time.Time) ([]domain.Order, error) {
	out := r.filter(0, func(o domain.Order) bool {
		return o.Status == domain.StatusPending && o.CreatedAt.Before(t)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// filter returns matching orders newest first.
func (r *orderRepo) filter(limit int, keep func(domain.Order) bool) []domain.Order {
	r.s.mu.RLock()
	out := []domain.Order{}
	for _, o := range r.s.data.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
