package memory

import (
	"context"
	"sort"

	"dealer-portal/internal/domain"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.User
	for _, u := range r.s.data.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type profileRepo struct {
	s *Store
}

func (r *profileRepo) Get(ctx context.Context, userID uint64) (*domain.DealerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *profileRepo) Save(ctx context.Context, p *domain.DealerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.profiles[p.UserID] = *p
	return nil
}
