package http

import (
	"dealer-portal/internal/domain"
	"dealer-portal/internal/services"
)

const (
	dateLayout         = "2006-01-02 15:04"
	ordersRedirectPath = "/my-account/orders/"
)

type SearchRequest struct {
	Search string `form:"search" json:"search"`
	Page   int    `form:"page" json:"page"`
}

type AddToCartRequest struct {
	ProductID uint64 `form:"product_id" json:"product_id" binding:"required"`
	Quantity  int    `form:"quantity" json:"quantity"`
	OrderType string `form:"order_type" json:"order_type"`
}

type UpdateCartItemRequest struct {
	Quantity int `form:"quantity" json:"quantity"`
}

type PlaceOrderRequest struct {
	OrderNotes string `form:"order_notes" json:"order_notes"`
}

type UpdateStatusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

type ProductPrices struct {
	StockOrder float64 `json:"stock_order"`
	DailyOrder float64 `json:"daily_order"`
	VOROrder   float64 `json:"vor_order"`
}

type ProductResponse struct {
	ID          uint64        `json:"id"`
	SKU         string        `json:"sku"`
	Name        string        `json:"name"`
	Category    string        `json:"category,omitempty"`
	Stock       int64         `json:"stock"`
	StockStatus string        `json:"stock_status"`
	Prices      ProductPrices `json:"prices"`
}

type SearchResponse struct {
	Products   []ProductResponse `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	HasMore    bool              `json:"has_more"`
}

type CartItemResponse struct {
	Key       string  `json:"key"`
	ProductID uint64  `json:"id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	OrderType string  `json:"order_type"`
}

type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	Total     float64            `json:"total"`
	CartCount int                `json:"cart_count"`
}

type AddToCartResponse struct {
	CartItemKey string `json:"cart_item_key"`
	CartCount   int    `json:"cart_count"`
}

type CartCountResponse struct {
	CartCount int `json:"cart_count"`
}

type PlaceOrderResponse struct {
	OrderID  uint64 `json:"order_id"`
	Redirect string `json:"redirect"`
}

type OrderSummary struct {
	ID         uint64 `json:"id"`
	Status     string `json:"status"`
	StatusName string `json:"status_name"`
	Date       string `json:"date"`
	Total      string `json:"total"`
	Customer   string `json:"customer"`
	Email      string `json:"email"`
	ItemsCount int    `json:"items_count"`
}

type OrderItemResponse struct {
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
	OrderType string  `json:"order_type"`
}

type OrderDetailResponse struct {
	OrderSummary
	Phone      string                         `json:"phone"`
	Notes      string                         `json:"notes"`
	Items      []OrderItemResponse            `json:"items"`
	OrderTypes map[string][]OrderItemResponse `json:"items_by_order_type"`
}

type OrdersResponse struct {
	Orders   []OrderSummary    `json:"orders"`
	Statuses map[string]string `json:"statuses,omitempty"`
}

type OrderResponse struct {
	Order    OrderDetailResponse `json:"order"`
	Statuses map[string]string   `json:"statuses"`
}

type UpdateStatusResponse struct {
	NewStatus     string `json:"new_status"`
	NewStatusName string `json:"new_status_name"`
}

type SessionResponse struct {
	UserID      uint64 `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Redirect    string `json:"redirect"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toProductResponse(it services.CatalogItem) ProductResponse {
	return ProductResponse{
		ID:          it.Product.ID,
		SKU:         it.Product.SKU,
		Name:        it.Product.Name,
		Category:    it.Product.Category,
		Stock:       it.Product.Stock,
		StockStatus: string(it.StockStatus),
		Prices: ProductPrices{
			StockOrder: it.Prices[domain.OrderTypeStock].Amount.InexactFloat64(),
			DailyOrder: it.Prices[domain.OrderTypeDaily].Amount.InexactFloat64(),
			VOROrder:   it.Prices[domain.OrderTypeVOR].Amount.InexactFloat64(),
		},
	}
}

func toSearchResponse(res services.SearchResult) SearchResponse {
	out := SearchResponse{
		Products:   make([]ProductResponse, 0, len(res.Items)),
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		HasMore:    res.HasMore,
	}
	for _, it := range res.Items {
		out.Products = append(out.Products, toProductResponse(it))
	}
	return out
}

func toCartResponse(snap domain.CartSnapshot) CartResponse {
	out := CartResponse{
		Items:     make([]CartItemResponse, 0, len(snap.Lines)),
		Total:     snap.Total.InexactFloat64(),
		CartCount: snap.Count,
	}
	for _, l := range snap.Lines {
		out.Items = append(out.Items, CartItemResponse{
			Key:       l.Key,
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Price:     l.UnitPrice.InexactFloat64(),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().InexactFloat64(),
			OrderType: string(l.OrderType),
		})
	}
	return out
}

func toOrderSummary(o domain.Order) OrderSummary {
	return OrderSummary{
		ID:         o.ID,
		Status:     string(o.Status),
		StatusName: o.Status.Name(),
		Date:       o.CreatedAt.Format(dateLayout),
		Total:      o.Total.StringFixed(2),
		Customer:   o.CustomerName,
		Email:      o.CustomerEmail,
		ItemsCount: o.ItemCount(),
	}
}

func toOrderSummaries(orders []domain.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderSummary(o))
	}
	return out
}

func toOrderItem(l domain.OrderLine) OrderItemResponse {
	return OrderItemResponse{
		Name:      l.Name,
		SKU:       l.SKU,
		Quantity:  l.Quantity,
		Price:     l.UnitPrice.InexactFloat64(),
		Total:     l.LineTotal.InexactFloat64(),
		OrderType: string(l.OrderType),
	}
}

func toOrderDetail(o domain.Order) OrderDetailResponse {
	d := OrderDetailResponse{
		OrderSummary: toOrderSummary(o),
		Phone:        o.CustomerPhone,
		Notes:        o.Notes,
		Items:        make([]OrderItemResponse, 0, len(o.Lines)),
		OrderTypes:   make(map[string][]OrderItemResponse),
	}
	for _, l := range o.Lines {
		d.Items = append(d.Items, toOrderItem(l))
	}
	for t, lines := range o.LinesByOrderType() {
		for _, l := range lines {
			d.OrderTypes[string(t)] = append(d.OrderTypes[string(t)], toOrderItem(l))
		}
	}
	return d
}

func statusNames() map[string]string {
	out := make(map[string]string, len(domain.OrderStatuses))
	for s, name := range domain.StatusNames() {
		out[string(s)] = name
	}
	return out
}
