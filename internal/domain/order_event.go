package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID    uint64            `json:"orderId"`
	UserID     uint64            `json:"userId"`
	Customer   string            `json:"customer"`
	Total      decimal.Decimal   `json:"total"`
	ItemCount  int               `json:"itemCount"`
	OrderTypes map[OrderType]int `json:"orderTypes"`
	Recipients []string          `json:"recipients"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func NewOrderCreatedEvent(o *Order, recipients []string) OrderCreatedEvent {
	types := make(map[OrderType]int)
	for _, l := range o.Lines {
		types[l.OrderType] += l.Quantity
	}
	return OrderCreatedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Customer:   o.CustomerName,
		Total:      o.Total,
		ItemCount:  o.ItemCount(),
		OrderTypes: types,
		Recipients: recipients,
		CreatedAt:  o.CreatedAt,
	}
}
