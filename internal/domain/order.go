package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusOnHold     OrderStatus = "on-hold"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
	StatusFailed     OrderStatus = "failed"
)

// OrderStatuses lists every status in the order the warehouse console shows them.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusOnHold,
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
	StatusFailed,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) Name() string {
	switch s {
	case StatusPending:
		return "Pending payment"
	case StatusProcessing:
		return "Processing"
	case StatusOnHold:
		return "On hold"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusRefunded:
		return "Refunded"
	case StatusFailed:
		return "Failed"
	}
	return string(s)
}

// StatusNames maps every status to its display name.
func StatusNames() map[OrderStatus]string {
	out := make(map[OrderStatus]string, len(OrderStatuses))
	for _, s := range OrderStatuses {
		out[s] = s.Name()
	}
	return out
}

type Order struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint64          `json:"userId" gorm:"not null;index"`
	Status        OrderStatus     `json:"status" gorm:"type:enum('pending','processing','on-hold','completed','cancelled','refunded','failed');default:'pending';index"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Notes         string          `json:"notes" gorm:"type:text"`
	CustomerName  string          `json:"customerName" gorm:"type:varchar(191)"`
	CustomerEmail string          `json:"customerEmail" gorm:"type:varchar(191)"`
	CustomerPhone string          `json:"customerPhone" gorm:"type:varchar(50)"`
	PlacedByRole  Role            `json:"placedByRole" gorm:"type:varchar(32);not null"`
	Lines         []OrderLine     `json:"lines" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// OrderLine is a point-in-time copy of a cart line. It never changes after
// the order is created.
type OrderLine struct {
	ID        uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"-" gorm:"not null;index"`
	Position  int             `json:"-" gorm:"not null"`
	ProductID uint64          `json:"productId"`
	Name      string          `json:"name" gorm:"type:varchar(255)"`
	SKU       string          `json:"sku" gorm:"type:varchar(100)"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	LineTotal decimal.Decimal `json:"lineTotal" gorm:"type:decimal(12,2);not null"`
	OrderType OrderType       `json:"orderType" gorm:"type:varchar(20);not null;index"`
}

// NewOrderFromCart materializes lines into a pending order owned by user.
func NewOrderFromCart(user User, snap CartSnapshot, notes string, now time.Time) *Order {
	o := &Order{
		UserID:        user.ID,
		Status:        StatusPending,
		Total:         decimal.Zero,
		Notes:         notes,
		CustomerName:  user.DisplayName,
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
		PlacedByRole:  user.Role,
		CreatedAt:     now,
		Lines:         make([]OrderLine, 0, len(snap.Lines)),
	}
	for i, l := range snap.Lines {
		line := OrderLine{
			Position:  i,
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Subtotal(),
			OrderType: l.OrderType,
		}
		o.Total = o.Total.Add(line.LineTotal)
		o.Lines = append(o.Lines, line)
	}
	return o
}

func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// AutoCancelExempt reports whether unpaid-order sweeps must leave o alone.
// Dealer orders are settled on account and are always exempt.
func (o *Order) AutoCancelExempt() bool {
	return o.PlacedByRole == RoleDealer
}

// CancellableByOwner reports whether the placing dealer may still cancel.
func (o *Order) CancellableByOwner() bool {
	return o.Status == StatusPending || o.Status == StatusOnHold
}

// LinesByOrderType groups line positions by order type for fulfilment.
func (o *Order) LinesByOrderType() map[OrderType][]OrderLine {
	out := make(map[OrderType][]OrderLine)
	for _, l := range o.Lines {
		out[l.OrderType] = append(out[l.OrderType], l)
	}
	return out
}
