package http

import (
	"net/http"

	"dealer-portal/internal/auth"
	"dealer-portal/internal/domain"
	"dealer-portal/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	carts   *services.CartService
	catalog *services.CatalogService
	orders  *services.OrderService
	account *services.AccountService
	nonces  *auth.Nonces
	log     zerolog.Logger
}

func NewHandler(carts *services.CartService, catalog *services.CatalogService, orders *services.OrderService, account *services.AccountService, nonces *auth.Nonces, log zerolog.Logger) *Handler {
	return &Handler{
		carts:   carts,
		catalog: catalog,
		orders:  orders,
		account: account,
		nonces:  nonces,
		log:     log.With().Str("component", "http").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, authn auth.Authenticator) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api", Authenticate(authn, h.log))
	api.GET("/session", h.GetSession)
	api.GET("/nonces", h.GetNonces)

	api.POST("/products/search", RequireNonce(h.nonces, auth.ActionSearch), h.SearchProducts)

	cart := api.Group("/cart")
	cart.GET("", h.GetCart)
	cart.POST("/items", RequireNonce(h.nonces, auth.ActionCart), h.AddToCart)
	cart.PATCH("/items/:key", RequireNonce(h.nonces, auth.ActionCart), h.UpdateCartItem)
	cart.DELETE("/items/:key", RequireNonce(h.nonces, auth.ActionCart), h.RemoveFromCart)

	api.GET("/orders", h.GetOrders)
	api.POST("/orders", RequireNonce(h.nonces, auth.ActionPlaceOrder), h.PlaceOrder)
	api.POST("/orders/:id/cancel", RequireNonce(h.nonces, auth.ActionCancelOrder), h.CancelOrder)

	api.GET("/account", h.GetAccount)
	api.PUT("/account", RequireNonce(h.nonces, auth.ActionAccount), h.UpdateAccount)

	wh := api.Group("/warehouse", RequireRole(domain.Role.CanManageOrders, "Permission denied"))
	wh.GET("/orders", h.GetAllOrders)
	wh.GET("/orders/:id", h.GetOrderDetail)
	wh.POST("/orders/:id/status", RequireNonce(h.nonces, auth.ActionUpdateStatus), h.UpdateOrderStatus)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, _ := sessionFrom(c)
	respondOK(c, SessionResponse{
		UserID:      sess.User.ID,
		DisplayName: sess.User.DisplayName,
		Email:       sess.User.Email,
		Role:        string(sess.User.Role),
		Redirect:    sess.User.Role.LandingPath(),
	})
}

// GetNonces hands out a nonce for every action bound to the caller's session.
func (h *Handler) GetNonces(c *gin.Context) {
	sess, _ := sessionFrom(c)
	out := make(map[string]string, len(auth.Actions))
	for _, a := range auth.Actions {
		out[a] = h.nonces.Create(a, sess)
	}
	respondOK(c, out)
}

func (h *Handler) SearchProducts(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBind(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid search request")
		return
	}
	res, err := h.catalog.Search(c.Request.Context(), req.Search, req.Page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, toSearchResponse(res))
}

func (h *Handler) GetCart(c *gin.Context) {
	sess, _ := sessionFrom(c)
	snap, err := h.carts.List(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, toCartResponse(snap))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBind(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid product")
		return
	}
	sess, _ := sessionFrom(c)
	line, snap, err := h.carts.AddItem(c.Request.Context(), sess, req.ProductID, req.Quantity, req.OrderType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, AddToCartResponse{CartItemKey: line.Key, CartCount: snap.Count})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid quantity")
		return
	}
	sess, _ := sessionFrom(c)
	snap, err := h.carts.UpdateQuantity(c.Request.Context(), sess, c.Param("key"), req.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, CartCountResponse{CartCount: snap.Count})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	sess, _ := sessionFrom(c)
	snap, err := h.carts.RemoveItem(c.Request.Context(), sess, c.Param("key"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, CartCountResponse{CartCount: snap.Count})
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid order request")
		return
	}
	sess, _ := sessionFrom(c)
	order, err := h.orders.PlaceOrder(c.Request.Context(), sess, req.OrderNotes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, PlaceOrderResponse{OrderID: order.ID, Redirect: ordersRedirectPath})
}

func (h *Handler) GetOrders(c *gin.Context) {
	sess, _ := sessionFrom(c)
	orders, err := h.orders.OrdersForUser(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, OrdersResponse{Orders: toOrderSummaries(orders)})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, err := services.ParseOrderID(c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	sess, _ := sessionFrom(c)
	order, err := h.orders.CancelOwnOrder(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, UpdateStatusResponse{NewStatus: string(order.Status), NewStatusName: order.Status.Name()})
}

func (h *Handler) GetAccount(c *gin.Context) {
	sess, _ := sessionFrom(c)
	p, err := h.account.Get(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, p)
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	var req domain.DealerProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Please check the account details and try again")
		return
	}
	sess, _ := sessionFrom(c)
	p, err := h.account.Update(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, p)
}

func (h *Handler) GetAllOrders(c *gin.Context) {
	sess, _ := sessionFrom(c)
	orders, err := h.orders.ListAll(c.Request.Context(), sess, c.Query("search"), c.Query("status"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, OrdersResponse{Orders: toOrderSummaries(orders), Statuses: statusNames()})
}

func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, err := services.ParseOrderID(c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	sess, _ := sessionFrom(c)
	order, err := h.orders.Detail(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, OrderResponse{Order: toOrderDetail(*order), Statuses: statusNames()})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := services.ParseOrderID(c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid status")
		return
	}
	sess, _ := sessionFrom(c)
	st, err := h.orders.UpdateStatus(c.Request.Context(), sess, id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, UpdateStatusResponse{NewStatus: string(st), NewStatusName: st.Name()})
}
