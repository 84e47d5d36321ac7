package domain

type OrderType string

const (
	OrderTypeStock OrderType = "stock_order"
	OrderTypeDaily OrderType = "daily_order"
	OrderTypeVOR   OrderType = "vor_order"
)

// OrderTypes lists every order type in display order.
var OrderTypes = []OrderType{OrderTypeStock, OrderTypeDaily, OrderTypeVOR}

// ParseOrderType normalizes s to one of the three order types. Anything
// unrecognised becomes OrderTypeStock.
func ParseOrderType(s string) OrderType {
	t := OrderType(s)
	if t.Valid() {
		return t
	}
	return OrderTypeStock
}

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeStock, OrderTypeDaily, OrderTypeVOR:
		return true
	}
	return false
}

func (t OrderType) Label() string {
	switch t {
	case OrderTypeDaily:
		return "Daily Order"
	case OrderTypeVOR:
		return "VOR Order"
	default:
		return "Stock Order"
	}
}
