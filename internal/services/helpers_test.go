package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/infra"
	"dealer-portal/internal/repository/memory"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	TestDealerSession    = "sess-dealer"
	TestWarehouseSession = "sess-warehouse"
)

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func CreateTestProduct(sku, name, base string) *domain.Product {
	p := &domain.Product{SKU: sku, Name: name, Stock: 25}
	if base != "" {
		p.BasePrice = money(base)
	}
	return p
}

// testClock hands out strictly increasing times so cart line order is
// deterministic.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	store     *memory.Store
	clock     *testClock
	carts     *CartService
	orders    *OrderService
	catalog   *CatalogService
	dealer    domain.Session
	warehouse domain.Session
}

func newFixture(t *testing.T, pub infra.Publisher) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := newTestClock()
	locks := NewSessionLocks()
	log := zerolog.Nop()

	dealer := store.PutUser(domain.User{Email: "dealer@example.com", DisplayName: "Bay Motors", Phone: "0400 000 000", Role: domain.RoleDealer})
	manager := store.PutUser(domain.User{Email: "warehouse@example.com", DisplayName: "Warehouse", Role: domain.RoleWarehouseManager})

	carts := NewCartService(store.Carts(), store.Products(), locks, log)
	carts.now = clock.Now
	orders := NewOrderService(store.Transactor(), store.Orders(), store.Users(), pub, locks, log)
	orders.now = clock.Now

	return &fixture{
		store:     store,
		clock:     clock,
		carts:     carts,
		orders:    orders,
		catalog:   NewCatalogService(store.Products(), DefaultPageSize, log),
		dealer:    domain.Session{ID: TestDealerSession, User: dealer},
		warehouse: domain.Session{ID: TestWarehouseSession, User: manager},
	}
}

func (f *fixture) addProduct(t *testing.T, p *domain.Product) *domain.Product {
	t.Helper()
	require.NoError(t, f.store.Products().Save(context.Background(), p))
	return p
}

func (f *fixture) seedCatalog(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		f.addProduct(t, CreateTestProduct(fmt.Sprintf("SKU-%03d", i), fmt.Sprintf("Part %03d", i), "5.00"))
	}
}
