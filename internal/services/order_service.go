package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/infra"
	"dealer-portal/internal/repository"

	"github.com/rs/zerolog"
)

const EventOrderCreated = "order.created"

type OrderService struct {
	tx        repository.Transactor
	orders    repository.OrderRepository
	users     repository.UserRepository
	publisher infra.Publisher
	locks     *SessionLocks
	log       zerolog.Logger
	now       func() time.Time
	inflight  sync.WaitGroup
}

func NewOrderService(tx repository.Transactor, orders repository.OrderRepository, users repository.UserRepository, pub infra.Publisher, locks *SessionLocks, log zerolog.Logger) *OrderService {
	if pub == nil {
		pub = infra.NopPublisher{}
	}
	return &OrderService{
		tx:        tx,
		orders:    orders,
		users:     users,
		publisher: pub,
		locks:     locks,
		log:       log.With().Str("component", "orders").Logger(),
		now:       time.Now,
	}
}

// PlaceOrder turns the session cart into a pending order and empties the
// cart. Either both happen or neither does.
func (s *OrderService) PlaceOrder(ctx context.Context, sess domain.Session, notes string) (*domain.Order, error) {
	if err := requireShopper(sess); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(sess.ID)
	defer unlock()

	var order *domain.Order
	err := s.tx.WithinTransaction(ctx, func(orders repository.OrderRepository, carts repository.CartRepository) error {
		lines, err := carts.Lines(ctx, sess.ID)
		if err != nil {
			return err
		}
		snap := domain.NewCartSnapshot(lines)
		if snap.Empty() {
			return domain.ErrEmptyCart
		}
		order = domain.NewOrderFromCart(sess.User, snap, strings.TrimSpace(notes), s.now())
		if err := orders.Save(ctx, order); err != nil {
			return err
		}
		return carts.Clear(ctx, sess.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint64("order_id", order.ID).
		Uint64("user_id", order.UserID).
		Str("total", order.Total.StringFixed(2)).
		Int("lines", len(order.Lines)).
		Msg("order placed")

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.notifyWarehouse(context.Background(), order)
	}()

	return order, nil
}

// Wait blocks until every pending warehouse notification has finished.
func (s *OrderService) Wait() {
	s.inflight.Wait()
}

func (s *OrderService) notifyWarehouse(ctx context.Context, order *domain.Order) {
	managers, err := s.users.FindByRole(ctx, domain.RoleWarehouseManager)
	if err != nil {
		s.log.Error().Err(err).Uint64("order_id", order.ID).Msg("failed to load warehouse managers")
		return
	}
	if len(managers) == 0 {
		s.log.Debug().Uint64("order_id", order.ID).Msg("no warehouse managers to notify")
		return
	}
	recipients := make([]string, 0, len(managers))
	for _, m := range managers {
		recipients = append(recipients, m.Email)
	}

	evt := domain.NewOrderCreatedEvent(order, recipients)
	if err := s.publisher.Publish(ctx, EventOrderCreated, evt); err != nil {
		s.log.Error().Err(err).Uint64("order_id", order.ID).Msg("failed to publish order.created")
		return
	}
	s.log.Debug().Uint64("order_id", order.ID).Int("recipients", len(recipients)).Msg("published order.created")
}

func (s *OrderService) OrdersForUser(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	return s.orders.FindByUser(ctx, sess.User.ID)
}

// CancelOwnOrder cancels an order the caller placed while it is still
// pending or on hold.
func (s *OrderService) CancelOwnOrder(ctx context.Context, sess domain.Session, id uint64) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID != sess.User.ID {
		return nil, domain.NewNotFoundError("order")
	}
	if !o.CancellableByOwner() {
		return nil, domain.NewValidationError("order #%d can no longer be cancelled", o.ID)
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, domain.StatusCancelled); err != nil {
		return nil, err
	}
	o.Status = domain.StatusCancelled
	s.log.Info().Uint64("order_id", o.ID).Uint64("user_id", sess.User.ID).Msg("order cancelled by owner")
	return o, nil
}

func requireWarehouse(sess domain.Session) error {
	if !sess.User.Role.CanManageOrders() {
		return domain.NewPermissionError("warehouse access required")
	}
	return nil
}

// ListAll returns orders for the warehouse console. A status of "" or "all"
// does not filter.
func (s *OrderService) ListAll(ctx context.Context, sess domain.Session, search, status string) ([]domain.Order, error) {
	if err := requireWarehouse(sess); err != nil {
		return nil, err
	}
	f := repository.OrderFilter{Search: strings.TrimSpace(search)}
	status = strings.TrimSpace(status)
	if status != "" && status != "all" {
		st := domain.OrderStatus(status)
		if !st.Valid() {
			return nil, domain.NewValidationError("unknown order status %q", status)
		}
		f.Status = st
	}
	return s.orders.Search(ctx, f)
}

func (s *OrderService) Detail(ctx context.Context, sess domain.Session, id uint64) (*domain.Order, error) {
	if err := requireWarehouse(sess); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NewNotFoundError("order")
	}
	return o, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, sess domain.Session, id uint64, status string) (domain.OrderStatus, error) {
	if err := requireWarehouse(sess); err != nil {
		return "", err
	}
	st := domain.OrderStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return "", domain.NewValidationError("invalid status")
	}
	if err := s.orders.UpdateStatus(ctx, id, st); err != nil {
		return "", err
	}
	s.log.Info().
		Uint64("order_id", id).
		Str("status", string(st)).
		Uint64("by", sess.User.ID).
		Msg("order status updated")
	return st, nil
}

// SweepUnpaid cancels pending orders older than olderThan. Exempt orders are
// skipped. It returns how many orders were cancelled.
func (s *OrderService) SweepUnpaid(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.orders.FindPendingBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range stale {
		o := &stale[i]
		if o.AutoCancelExempt() {
			continue
		}
		if err := s.orders.UpdateStatus(ctx, o.ID, domain.StatusCancelled); err != nil {
			return cancelled, err
		}
		cancelled++
		s.log.Info().Uint64("order_id", o.ID).Msg("unpaid order cancelled")
	}
	return cancelled, nil
}

// ParseOrderID parses a positive order number.
func ParseOrderID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewValidationError("invalid order id")
	}
	return id, nil
}
