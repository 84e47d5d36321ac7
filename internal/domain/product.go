package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const lowStockThreshold = 10

type Product struct {
	ID         uint64              `json:"id" gorm:"primaryKey;autoIncrement"`
	SKU        string              `json:"sku" gorm:"type:varchar(100);not null;uniqueIndex"`
	Name       string              `json:"name" gorm:"type:varchar(255);not null;index"`
	Category   string              `json:"category" gorm:"type:varchar(100)"`
	Stock      int64               `json:"stock" gorm:"not null;default:0"`
	BasePrice  decimal.NullDecimal `json:"basePrice" gorm:"type:decimal(10,2)"`
	StockPrice decimal.NullDecimal `json:"stockOrderPrice" gorm:"column:stock_order_price;type:decimal(10,2)"`
	DailyPrice decimal.NullDecimal `json:"dailyOrderPrice" gorm:"column:daily_order_price;type:decimal(10,2)"`
	VORPrice   decimal.NullDecimal `json:"vorOrderPrice" gorm:"column:vor_order_price;type:decimal(10,2)"`
	CreatedAt  time.Time           `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time           `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TierPrice returns the configured price for t, which may be unset.
func (p Product) TierPrice(t OrderType) decimal.NullDecimal {
	switch t {
	case OrderTypeDaily:
		return p.DailyPrice
	case OrderTypeVOR:
		return p.VORPrice
	default:
		return p.StockPrice
	}
}

// SetTierPrice stores v for t. Non-positive values clear the tier.
func (p *Product) SetTierPrice(t OrderType, v decimal.Decimal) {
	n := decimal.NullDecimal{}
	if v.IsPositive() {
		n = decimal.NewNullDecimal(v)
	}
	switch t {
	case OrderTypeDaily:
		p.DailyPrice = n
	case OrderTypeVOR:
		p.VORPrice = n
	default:
		p.StockPrice = n
	}
}

type StockStatus string

const (
	StockStatusIn  StockStatus = "In Stock"
	StockStatusLow StockStatus = "Low Stock"
	StockStatusOut StockStatus = "Out of Stock"
)

func (p Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockStatusOut
	case p.Stock <= lowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}
