package memory

import (
	"context"
	"sort"
	"strings"

	"dealer-portal/internal/domain"
)

type productRepo struct {
	s *Store
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.products {
		if strings.EqualFold(p.SKU, sku) {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) SearchByName(ctx context.Context, term string) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return containsFold(p.Name, term) }), nil
}

func (r *productRepo) SearchBySKU(ctx context.Context, term string) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return containsFold(p.SKU, term) }), nil
}

func (r *productRepo) filter(keep func(domain.Product) bool) []domain.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Product
	for _, p := range r.s.data.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *productRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.Product, int64, error) {
	r.s.mu.RLock()
	all := make([]domain.Product, 0, len(r.s.data.products))
	for _, p := range r.s.data.products {
		all = append(all, p)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		a, b := strings.ToLower(all[i].Name), strings.ToLower(all[j].Name)
		if a != b {
			return a < b
		}
		return all[i].ID < all[j].ID
	})
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Product{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *productRepo) Save(ctx context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.save(p)
	return nil
}

func (r *productRepo) SaveBatch(ctx context.Context, products []*domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range products {
		r.save(p)
	}
	return nil
}

func (r *productRepo) save(p *domain.Product) {
	if p.ID == 0 {
		r.s.data.nextProductID++
		p.ID = r.s.data.nextProductID
	} else if p.ID > r.s.data.nextProductID {
		r.s.data.nextProductID = p.ID
	}
	r.s.data.products[p.ID] = *p
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
