package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"dealer-portal/internal/auth"
	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository/memory"
	"dealer-portal/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator map[string]domain.Session

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	sess, ok := s[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return &sess, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router    *gin.Engine
	store     *memory.Store
	nonces    *auth.Nonces
	orders    *services.OrderService
	dealer    domain.Session
	warehouse domain.Session
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	log := zerolog.Nop()

	dealer := domain.Session{ID: "dealer-session", User: store.PutUser(domain.User{Email: "dealer@example.com", DisplayName: "Bay Motors", Role: domain.RoleDealer})}
	warehouse := domain.Session{ID: "warehouse-session", User: store.PutUser(domain.User{Email: "wh@example.com", DisplayName: "Warehouse", Role: domain.RoleWarehouseManager})}

	locks := services.NewSessionLocks()
	catalog := services.NewCatalogService(store.Products(), services.DefaultPageSize, log)
	carts := services.NewCartService(store.Carts(), store.Products(), locks, log)
	orders := services.NewOrderService(store.Transactor(), store.Orders(), store.Users(), nil, locks, log)
	account := services.NewAccountService(store.Profiles(), log)
	nonces := auth.NewNonces("test-secret", time.Hour)

	r := gin.New()
	r.Use(Recovery(log), RequestLogger(log))
	NewHandler(carts, catalog, orders, account, nonces, log).RegisterRoutes(r, stubAuthenticator{
		"dealer-token":    dealer,
		"warehouse-token": warehouse,
	})

	return &testServer{router: r, store: store, nonces: nonces, orders: orders, dealer: dealer, warehouse: warehouse}
}

func (s *testServer) addProduct(t *testing.T, sku, name, base string) *domain.Product {
	t.Helper()
	p := &domain.Product{SKU: sku, Name: name, Stock: 12, BasePrice: decimal.NewNullDecimal(decimal.RequireFromString(base))}
	require.NoError(t, s.store.Products().Save(context.Background(), p))
	return p
}

func (s *testServer) do(t *testing.T, method, path, token string, form url.Values) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		// DELETE bodies are not parsed as forms.
		if method == http.MethodDelete {
			req.Header.Set(headerNonce, form.Get("nonce"))
		}
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(path, "/api") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Please log in", decode[MessageResponse](t, env.Data).Message)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "dealer-token"})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestSessionRedirects(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		token    string
		role     string
		redirect string
	}{
		{token: "dealer-token", role: "dealer", redirect: "/"},
		{token: "warehouse-token", role: "warehouse_manager", redirect: "/warehouse-orders/"},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			w, env := s.do(t, http.MethodGet, "/api/session", tt.token, nil)
			require.Equal(t, http.StatusOK, w.Code)
			got := decode[SessionResponse](t, env.Data)
			assert.Equal(t, tt.role, got.Role)
			assert.Equal(t, tt.redirect, got.Redirect)
		})
	}
}

func TestNonceRequired(t *testing.T) {
	s := newTestServer(t)
	s.addProduct(t, "A100", "Brake Pad", "10")

	tests := []struct {
		name  string
		nonce string
	}{
		{name: "missing", nonce: ""},
		{name: "wrong action", nonce: s.nonces.Create(auth.ActionSearch, s.dealer)},
		{name: "other session", nonce: s.nonces.Create(auth.ActionCart, s.warehouse)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"product_id": {"1"}, "quantity": {"1"}, "nonce": {tt.nonce}}
			w, env := s.do(t, http.MethodPost, "/api/cart/items", "dealer-token", form)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.False(t, env.Success)
		})
	}

	snap, err := s.store.Carts().Lines(context.Background(), s.dealer.ID)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestDealerOrderFlow(t *testing.T) {
	s := newTestServer(t)
	p := s.addProduct(t, "A100", "Brake Pad", "10")
	s.addProduct(t, "B200", "Brake Disc", "55")

	w, env := s.do(t, http.MethodGet, "/api/nonces", "dealer-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	nonces := decode[map[string]string](t, env.Data)
	require.Len(t, nonces, len(auth.Actions))

	w, env = s.do(t, http.MethodPost, "/api/products/search", "dealer-token", url.Values{"search": {"brake"}, "nonce": {nonces[auth.ActionSearch]}})
	require.Equal(t, http.StatusOK, w.Code)
	search := decode[SearchResponse](t, env.Data)
	assert.Equal(t, 2, search.Total)
	assert.Equal(t, "Brake Disc", search.Products[0].Name)
	assert.Equal(t, 10.0, search.Products[1].Prices.DailyOrder)
	assert.Equal(t, "In Stock", search.Products[1].StockStatus)

	w, env = s.do(t, http.MethodPost, "/api/cart/items", "dealer-token", url.Values{
		"product_id": {"1"}, "quantity": {"3"}, "order_type": {"daily_order"}, "nonce": {nonces[auth.ActionCart]},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[AddToCartResponse](t, env.Data)
	assert.Equal(t, 3, added.CartCount)
	require.NotEmpty(t, added.CartItemKey)

	p.BasePrice = decimal.NewNullDecimal(decimal.NewFromInt(12))
	require.NoError(t, s.store.Products().Save(context.Background(), p))

	w, env = s.do(t, http.MethodPatch, "/api/cart/items/"+added.CartItemKey, "dealer-token", url.Values{"quantity": {"5"}, "nonce": {nonces[auth.ActionCart]}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[CartCountResponse](t, env.Data).CartCount)

	w, env = s.do(t, http.MethodGet, "/api/cart", "dealer-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[CartResponse](t, env.Data)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 50.0, cart.Items[0].Subtotal)
	assert.Equal(t, "daily_order", cart.Items[0].OrderType)

	w, env = s.do(t, http.MethodPost, "/api/orders", "dealer-token", url.Values{"order_notes": {"urgent"}, "nonce": {nonces[auth.ActionPlaceOrder]}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	placed := decode[PlaceOrderResponse](t, env.Data)
	assert.NotZero(t, placed.OrderID)
	assert.Equal(t, "/my-account/orders/", placed.Redirect)
	s.orders.Wait()

	w, env = s.do(t, http.MethodGet, "/api/orders", "dealer-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode[OrdersResponse](t, env.Data)
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, "50.00", orders.Orders[0].Total)
	assert.Equal(t, "Pending payment", orders.Orders[0].StatusName)
	assert.Equal(t, 5, orders.Orders[0].ItemsCount)

	w, env = s.do(t, http.MethodGet, "/api/cart", "dealer-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[CartResponse](t, env.Data).Items)
}

func TestCartErrors(t *testing.T) {
	s := newTestServer(t)
	cartNonce := s.nonces.Create(auth.ActionCart, s.dealer)

	w, env := s.do(t, http.MethodDelete, "/api/cart/items/nope", "dealer-token", url.Values{"nonce": {cartNonce}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "cart item not found", decode[MessageResponse](t, env.Data).Message)

	w, _ = s.do(t, http.MethodPost, "/api/cart/items", "dealer-token", url.Values{"product_id": {"0"}, "nonce": {cartNonce}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/orders", "dealer-token", url.Values{"nonce": {s.nonces.Create(auth.ActionPlaceOrder, s.dealer)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Your cart is empty", decode[MessageResponse](t, env.Data).Message)
}

func TestWarehouseEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	order := &domain.Order{
		UserID:        s.dealer.User.ID,
		Status:        domain.StatusPending,
		CustomerName:  "Bay Motors",
		CustomerEmail: "dealer@example.com",
		PlacedByRole:  domain.RoleDealer,
		Total:         decimal.NewFromInt(40),
		Lines: []domain.OrderLine{
			{Name: "Brake Pad", SKU: "A100", Quantity: 3, UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(30), OrderType: domain.OrderTypeVOR},
			{Name: "Oil Filter", SKU: "F20", Quantity: 2, UnitPrice: decimal.NewFromInt(5), LineTotal: decimal.NewFromInt(10), OrderType: domain.OrderTypeDaily},
		},
	}
	require.NoError(t, s.store.Orders().Save(ctx, order))

	w, _ := s.do(t, http.MethodGet, "/api/warehouse/orders", "dealer-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/warehouse/orders?status=all&search=bay", "warehouse-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[OrdersResponse](t, env.Data)
	assert.Len(t, list.Orders, 1)
	assert.Equal(t, "On hold", list.Statuses["on-hold"])
	assert.Len(t, list.Statuses, 7)

	w, _ = s.do(t, http.MethodGet, "/api/warehouse/orders?status=shipped", "warehouse-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/warehouse/orders/1", "warehouse-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[OrderResponse](t, env.Data)
	require.Len(t, detail.Order.Items, 2)
	assert.Equal(t, "vor_order", detail.Order.Items[0].OrderType)
	assert.Equal(t, 30.0, detail.Order.Items[0].Total)
	require.Len(t, detail.Order.OrderTypes, 2)
	require.Len(t, detail.Order.OrderTypes["daily_order"], 1)
	assert.Equal(t, "F20", detail.Order.OrderTypes["daily_order"][0].SKU)
	assert.Equal(t, "A100", detail.Order.OrderTypes["vor_order"][0].SKU)

	w, _ = s.do(t, http.MethodGet, "/api/warehouse/orders/99", "warehouse-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	updateNonce := s.nonces.Create(auth.ActionUpdateStatus, s.warehouse)
	w, env = s.do(t, http.MethodPost, "/api/warehouse/orders/1/status", "warehouse-token", url.Values{"status": {"processing"}, "nonce": {updateNonce}})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[UpdateStatusResponse](t, env.Data)
	assert.Equal(t, "processing", updated.NewStatus)
	assert.Equal(t, "Processing", updated.NewStatusName)

	w, _ = s.do(t, http.MethodPost, "/api/warehouse/orders/1/status", "warehouse-token", url.Values{"status": {"shipped"}, "nonce": {updateNonce}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/orders", "warehouse-token", url.Values{"nonce": {s.nonces.Create(auth.ActionPlaceOrder, s.warehouse)}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelOwnOrder(t *testing.T) {
	s := newTestServer(t)
	order := &domain.Order{UserID: s.dealer.User.ID, Status: domain.StatusOnHold, PlacedByRole: domain.RoleDealer}
	require.NoError(t, s.store.Orders().Save(context.Background(), order))
	cancelNonce := s.nonces.Create(auth.ActionCancelOrder, s.dealer)

	w, env := s.do(t, http.MethodPost, "/api/orders/1/cancel", "dealer-token", url.Values{"nonce": {cancelNonce}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode[UpdateStatusResponse](t, env.Data).NewStatus)

	w, _ = s.do(t, http.MethodPost, "/api/orders/1/cancel", "dealer-token", url.Values{"nonce": {cancelNonce}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/orders/abc/cancel", "dealer-token", url.Values{"nonce": {cancelNonce}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccount(t *testing.T) {
	s := newTestServer(t)
	nonce := s.nonces.Create(auth.ActionAccount, s.dealer)

	put := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/account", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer dealer-token")
		req.Header.Set(headerNonce, nonce)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := put(`{"companyName":"Bay Motors","partsManager":{"name":"Sam","email":"not-an-email"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = put(`{"companyName":"Bay Motors","suburb":"Geelong","partsManager":{"name":"Sam","email":"sam@example.com"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w2, env := s.do(t, http.MethodGet, "/api/account", "dealer-token", nil)
	require.Equal(t, http.StatusOK, w2.Code)
	got := decode[domain.DealerProfile](t, env.Data)
	assert.Equal(t, "Geelong", got.Suburb)
	assert.Equal(t, "sam@example.com", got.PartsManager.Email)

	w2, _ = s.do(t, http.MethodGet, "/api/account", "warehouse-token", nil)
	assert.Equal(t, http.StatusForbidden, w2.Code)
}
