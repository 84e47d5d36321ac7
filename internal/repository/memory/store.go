// Package memory holds in-process repository implementations. Matching is
// case-insensitive to mirror the MySQL collation.
package memory

import (
	"context"
	"sync"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"
)

type data struct {
	products      map[uint64]domain.Product
	nextProductID uint64
	carts         map[string]map[string]domain.CartLine
	orders        map[uint64]domain.Order
	nextOrderID   uint64
	users         map[uint64]domain.User
	profiles      map[uint64]domain.DealerProfile
}

func newData() *data {
	return &data{
		products: make(map[uint64]domain.Product),
		carts:    make(map[string]map[string]domain.CartLine),
		orders:   make(map[uint64]domain.Order),
		users:    make(map[uint64]domain.User),
		profiles: make(map[uint64]domain.DealerProfile),
	}
}

func (d *data) clone() *data {
	c := newData()
	c.nextProductID = d.nextProductID
	c.nextOrderID = d.nextOrderID
	for k, v := range d.products {
		c.products[k] = v
	}
	for id, lines := range d.carts {
		m := make(map[string]domain.CartLine, len(lines))
		for k, v := range lines {
			m[k] = v
		}
		c.carts[id] = m
	}
	for k, v := range d.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.profiles {
		c.profiles[k] = v
	}
	return c
}

func copyOrder(o domain.Order) domain.Order {
	o.Lines = append([]domain.OrderLine(nil), o.Lines...)
	return o
}

type Store struct {
	mu   sync.RWMutex
	data *data
}

func NewStore() *Store {
	return &Store{data: newData()}
}

func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

func (s *Store) Carts() repository.CartRepository { return &cartRepo{s: s} }

func (s *Store) Orders() repository.OrderRepository { return &orderRepo{s: s} }

func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

func (s *Store) Profiles() repository.DealerProfileRepository { return &profileRepo{s: s} }

func (s *Store) Transactor() repository.Transactor { return &transactor{s: s} }

// PutUser inserts or replaces a user, assigning an ID when zero.
func (s *Store) PutUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = uint64(len(s.data.users) + 1)
		for s.data.users[u.ID].ID != 0 {
			u.ID++
		}
	}
	s.data.users[u.ID] = u
	return u
}

type transactor struct {
	s *Store
}

// WithinTransaction runs fn against a private copy and publishes it only if
// fn succeeds. Other writers wait for the transaction to finish.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(repository.OrderRepository, repository.CartRepository) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	txStore := &Store{data: t.s.data.clone()}
	if err := fn(txStore.Orders(), txStore.Carts()); err != nil {
		return err
	}
	t.s.data = txStore.data
	return nil
}
