package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	Key       string          `json:"key" gorm:"primaryKey;type:varchar(64)"`
	CartID    string          `json:"-" gorm:"type:varchar(128);not null;uniqueIndex:idx_cart_product_type,priority:1"`
	ProductID uint64          `json:"productId" gorm:"not null;uniqueIndex:idx_cart_product_type,priority:2"`
	SKU       string          `json:"sku" gorm:"type:varchar(100)"`
	Name      string          `json:"name" gorm:"type:varchar(255)"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	OrderType OrderType       `json:"orderType" gorm:"type:varchar(20);not null;uniqueIndex:idx_cart_product_type,priority:3"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is a read-only view of a cart at one point in time.
type CartSnapshot struct {
	Lines []CartLine
	Total decimal.Decimal
	Count int
}

// NewCartSnapshot computes totals over lines. Lines are kept in the given order.
func NewCartSnapshot(lines []CartLine) CartSnapshot {
	s := CartSnapshot{Lines: lines, Total: decimal.Zero}
	for _, l := range lines {
		s.Total = s.Total.Add(l.Subtotal())
		s.Count += l.Quantity
	}
	return s
}

func (s CartSnapshot) Empty() bool {
	return len(s.Lines) == 0
}

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 9999

// NormalizeQuantity clamps a requested quantity to [1, MaxLineQuantity].
func NormalizeQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxLineQuantity:
		return MaxLineQuantity
	}
	return q
}
