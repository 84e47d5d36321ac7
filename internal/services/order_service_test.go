package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/mocks"
	"dealer-portal/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_PlaceOrder(t *testing.T) {
	pub := new(mocks.MockPublisher)
	f := newFixture(t, pub)
	ctx := context.Background()

	pub.On("Publish", mock.Anything, EventOrderCreated, mock.MatchedBy(func(evt domain.OrderCreatedEvent) bool {
		return evt.ItemCount == 6 &&
			evt.OrderTypes[domain.OrderTypeDaily] == 2 &&
			evt.OrderTypes[domain.OrderTypeVOR] == 4 &&
			assert.ObjectsAreEqual([]string{"warehouse@example.com"}, evt.Recipients)
	})).Return(nil).Once()

	a := f.addProduct(t, &domain.Product{SKU: "A1", Name: "Alternator", BasePrice: money("100"), DailyPrice: money("95")})
	b := f.addProduct(t, CreateTestProduct("B1", "Belt", "12.50"))
	_, _, err := f.carts.AddItem(ctx, f.dealer, a.ID, 2, "daily_order")
	require.NoError(t, err)
	_, _, err = f.carts.AddItem(ctx, f.dealer, b.ID, 4, "vor_order")
	require.NoError(t, err)

	// Prices moving after the cart was filled must not change the order.
	a.DailyPrice = money("120")
	require.NoError(t, f.store.Products().Save(ctx, a))

	order, err := f.orders.PlaceOrder(ctx, f.dealer, "  leave at dock 3 \n")
	require.NoError(t, err)
	f.orders.Wait()

	assert.NotZero(t, order.ID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "leave at dock 3", order.Notes)
	assert.Equal(t, "240", order.Total.String())
	assert.Equal(t, "Bay Motors", order.CustomerName)
	assert.Equal(t, domain.RoleDealer, order.PlacedByRole)
	assert.True(t, order.AutoCancelExempt())
	require.Len(t, order.Lines, 2)
	assert.Equal(t, domain.OrderTypeDaily, order.Lines[0].OrderType)
	assert.Equal(t, "95", order.Lines[0].UnitPrice.String())
	assert.Equal(t, domain.OrderTypeVOR, order.Lines[1].OrderType)
	assert.Equal(t, "50", order.Lines[1].LineTotal.String())

	snap, err := f.carts.List(ctx, f.dealer)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	stored, err := f.store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, order.Total.String(), stored.Total.String())

	pub.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t, new(mocks.MockPublisher))
	ctx := context.Background()

	order, err := f.orders.PlaceOrder(ctx, f.dealer, "")
	f.orders.Wait()

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Nil(t, order)
	orders, err := f.orders.OrdersForUser(ctx, f.dealer)
	require.NoError(t, err)
	assert.Empty(t, orders)
	snap, err := f.carts.List(ctx, f.dealer)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestOrderService_PlaceOrder_WarehouseForbidden(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.orders.PlaceOrder(context.Background(), f.warehouse, "")

	assert.ErrorIs(t, err, domain.ErrPermission)
}

type failingTransactor struct {
	inner repository.Transactor
}

func (t failingTransactor) WithinTransaction(ctx context.Context, fn func(repository.OrderRepository, repository.CartRepository) error) error {
	return t.inner.WithinTransaction(ctx, func(orders repository.OrderRepository, carts repository.CartRepository) error {
		if err := fn(orders, carts); err != nil {
			return err
		}
		return errors.New("commit failed")
	})
}

func TestOrderService_PlaceOrder_RollsBack(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	prod := f.addProduct(t, CreateTestProduct("G1", "Gasket", "6"))
	_, _, err := f.carts.AddItem(ctx, f.dealer, prod.ID, 2, "stock_order")
	require.NoError(t, err)

	svc := NewOrderService(failingTransactor{inner: f.store.Transactor()}, f.store.Orders(), f.store.Users(), nil, NewSessionLocks(), zerolog.Nop())
	_, err = svc.PlaceOrder(ctx, f.dealer, "")
	assert.EqualError(t, err, "commit failed")

	snap, err := f.carts.List(ctx, f.dealer)
	require.NoError(t, err)
	assert.Len(t, snap.Lines, 1)
	orders, err := f.orders.OrdersForUser(ctx, f.dealer)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_PlaceOrder_PublishFailureKeepsOrder(t *testing.T) {
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, EventOrderCreated, mock.Anything).Return(errors.New("broker down")).Once()
	f := newFixture(t, pub)
	ctx := context.Background()
	prod := f.addProduct(t, CreateTestProduct("N1", "Nut", "0.40"))
	_, _, err := f.carts.AddItem(ctx, f.dealer, prod.ID, 10, "stock_order")
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, f.dealer, "")
	require.NoError(t, err)
	f.orders.Wait()

	stored, err := f.store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
	pub.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_ManagerLookupFailureKeepsOrder(t *testing.T) {
	pub := new(mocks.MockPublisher)
	users := new(mocks.MockUserRepository)
	users.On("FindByRole", mock.Anything, domain.RoleWarehouseManager).Return(nil, errors.New("users table locked")).Once()
	f := newFixture(t, pub)
	f.orders.users = users
	ctx := context.Background()
	prod := f.addProduct(t, CreateTestProduct("W1", "Washer", "0.25"))
	_, _, err := f.carts.AddItem(ctx, f.dealer, prod.ID, 8, "daily_order")
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, f.dealer, "")
	require.NoError(t, err)
	f.orders.Wait()

	stored, err := f.store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "2", stored.Total.String())

	snap, err := f.carts.List(ctx, f.dealer)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	users.AssertExpectations(t)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CancelOwnOrder(t *testing.T) {
	tests := []struct {
		name        string
		status      domain.OrderStatus
		otherUser   bool
		expectedErr error
	}{
		{name: "pending order", status: domain.StatusPending},
		{name: "on hold order", status: domain.StatusOnHold},
		{name: "processing order", status: domain.StatusProcessing, expectedErr: domain.ErrValidation},
		{name: "someone else's order", status: domain.StatusPending, otherUser: true, expectedErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()
			owner := f.dealer.User.ID
			if tt.otherUser {
				owner = 99
			}
			o := &domain.Order{UserID: owner, Status: tt.status, PlacedByRole: domain.RoleDealer}
			require.NoError(t, f.store.Orders().Save(ctx, o))

			got, err := f.orders.CancelOwnOrder(ctx, f.dealer, o.ID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, got.Status)
			stored, err := f.store.Orders().FindByID(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, stored.Status)
		})
	}
}

func TestOrderService_ListAll(t *testing.T) {
	tests := []struct {
		name        string
		sess        func(*fixture) domain.Session
		status      string
		search      string
		setupMocks  func(*mocks.MockOrderRepository)
		expectedErr error
		expectedLen int
	}{
		{
			name:   "all statuses",
			sess:   func(f *fixture) domain.Session { return f.warehouse },
			status: "all",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("Search", mock.Anything, repository.OrderFilter{}).Return([]domain.Order{{ID: 1}, {ID: 2}}, nil)
			},
			expectedLen: 2,
		},
		{
			name:   "status and search filter",
			sess:   func(f *fixture) domain.Session { return f.warehouse },
			status: "on-hold",
			search: " bay ",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("Search", mock.Anything, repository.OrderFilter{Status: domain.StatusOnHold, Search: "bay"}).Return([]domain.Order{{ID: 3}}, nil)
			},
			expectedLen: 1,
		},
		{
			name:        "unknown status",
			sess:        func(f *fixture) domain.Session { return f.warehouse },
			status:      "shipped",
			setupMocks:  func(*mocks.MockOrderRepository) {},
			expectedErr: domain.ErrValidation,
		},
		{
			name:        "dealer is refused",
			sess:        func(f *fixture) domain.Session { return f.dealer },
			setupMocks:  func(*mocks.MockOrderRepository) {},
			expectedErr: domain.ErrPermission,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			repo := new(mocks.MockOrderRepository)
			tt.setupMocks(repo)
			svc := NewOrderService(f.store.Transactor(), repo, f.store.Users(), nil, NewSessionLocks(), zerolog.Nop())

			orders, err := svc.ListAll(context.Background(), tt.sess(f), tt.search, tt.status)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Len(t, orders, tt.expectedLen)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderService_DetailAndUpdateStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	o := &domain.Order{UserID: f.dealer.User.ID, Status: domain.StatusPending, PlacedByRole: domain.RoleDealer}
	require.NoError(t, f.store.Orders().Save(ctx, o))

	_, err := f.orders.Detail(ctx, f.warehouse, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.orders.Detail(ctx, f.dealer, o.ID)
	assert.ErrorIs(t, err, domain.ErrPermission)

	st, err := f.orders.UpdateStatus(ctx, f.warehouse, o.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, st)
	assert.Equal(t, "Completed", st.Name())

	_, err = f.orders.UpdateStatus(ctx, f.warehouse, o.ID, "shipped")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.orders.UpdateStatus(ctx, f.dealer, o.ID, "completed")
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = f.orders.UpdateStatus(ctx, f.warehouse, 404, "completed")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.orders.Detail(ctx, f.warehouse, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestOrderService_SweepUnpaid(t *testing.T) {
	repo := new(mocks.MockOrderRepository)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	repo.On("FindPendingBefore", mock.Anything, now.Add(-time.Hour)).Return([]domain.Order{
		{ID: 1, Status: domain.StatusPending, PlacedByRole: domain.RoleDealer},
		{ID: 2, Status: domain.StatusPending, PlacedByRole: domain.RoleAdministrator},
		{ID: 3, Status: domain.StatusPending, PlacedByRole: domain.RoleDealer},
	}, nil)
	repo.On("UpdateStatus", mock.Anything, uint64(2), domain.StatusCancelled).Return(nil).Once()

	svc := NewOrderService(nil, repo, nil, nil, NewSessionLocks(), zerolog.Nop())
	svc.now = func() time.Time { return now }

	n, err := svc.SweepUnpaid(context.Background(), time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, uint64(1), mock.Anything)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, uint64(3), mock.Anything)
}

func TestParseOrderID(t *testing.T) {
	id, err := ParseOrderID(" #42 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, raw := range []string{"", "0", "abc", "-3"} {
		_, err := ParseOrderID(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}
