package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestResolvePrice(t *testing.T) {
	tests := []struct {
		name           string
		product        Product
		orderType      OrderType
		expectedAmount string
		expectedSource string
	}{
		{
			name:           "tier price",
			product:        Product{BasePrice: nd("10"), DailyPrice: nd("9.5")},
			orderType:      OrderTypeDaily,
			expectedAmount: "9.5",
			expectedSource: PriceSourceTier,
		},
		{
			name:           "unset tier falls back to base",
			product:        Product{BasePrice: nd("10")},
			orderType:      OrderTypeDaily,
			expectedAmount: "10",
			expectedSource: PriceSourceBase,
		},
		{
			name:           "zero tier falls back to base",
			product:        Product{BasePrice: nd("10"), VORPrice: nd("0")},
			orderType:      OrderTypeVOR,
			expectedAmount: "10",
			expectedSource: PriceSourceBase,
		},
		{
			name:           "negative tier falls back to base",
			product:        Product{BasePrice: nd("10"), StockPrice: nd("-2")},
			orderType:      OrderTypeStock,
			expectedAmount: "10",
			expectedSource: PriceSourceBase,
		},
		{
			name:           "unknown type uses the stock tier",
			product:        Product{BasePrice: nd("10"), StockPrice: nd("8")},
			orderType:      OrderType("rush"),
			expectedAmount: "8",
			expectedSource: PriceSourceTier,
		},
		{
			name:           "nothing positive is unpriced",
			product:        Product{BasePrice: nd("-1"), DailyPrice: nd("0")},
			orderType:      OrderTypeDaily,
			expectedAmount: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePrice(tt.product, tt.orderType)

			assert.Equal(t, tt.expectedAmount, got.Amount.String())
			assert.Equal(t, tt.expectedSource, got.Source)
			assert.Equal(t, tt.expectedSource != "", got.Priced())
			assert.False(t, got.Amount.IsNegative())
		})
	}
}

func TestResolveAllPrices(t *testing.T) {
	p := Product{BasePrice: nd("20"), VORPrice: nd("25")}

	prices := ResolveAllPrices(p)

	assert.Len(t, prices, 3)
	assert.Equal(t, "20", prices[OrderTypeStock].Amount.String())
	assert.Equal(t, "20", prices[OrderTypeDaily].Amount.String())
	assert.Equal(t, "25", prices[OrderTypeVOR].Amount.String())
}

func TestProduct_SetTierPrice(t *testing.T) {
	var p Product
	p.SetTierPrice(OrderTypeDaily, decimal.RequireFromString("4.5"))
	assert.True(t, p.DailyPrice.Valid)

	p.SetTierPrice(OrderTypeDaily, decimal.Zero)
	assert.False(t, p.DailyPrice.Valid)
}

func TestProduct_StockStatus(t *testing.T) {
	assert.Equal(t, StockStatusOut, Product{Stock: 0}.StockStatus())
	assert.Equal(t, StockStatusOut, Product{Stock: -3}.StockStatus())
	assert.Equal(t, StockStatusLow, Product{Stock: 10}.StockStatus())
	assert.Equal(t, StockStatusIn, Product{Stock: 11}.StockStatus())
}

func TestParseOrderType(t *testing.T) {
	assert.Equal(t, OrderTypeDaily, ParseOrderType("daily_order"))
	assert.Equal(t, OrderTypeVOR, ParseOrderType("vor_order"))
	assert.Equal(t, OrderTypeStock, ParseOrderType(""))
	assert.Equal(t, OrderTypeStock, ParseOrderType("DAILY_ORDER"))
	assert.Equal(t, "VOR Order", OrderTypeVOR.Label())
}
