package domain

import "github.com/shopspring/decimal"

// PriceSource is one candidate price for a product/order type pair.
type PriceSource struct {
	Name  string
	Value decimal.NullDecimal
}

const (
	PriceSourceTier = "tier"
	PriceSourceBase = "base"
)

// Price is the outcome of resolving a product's price. A zero Source means
// no positive price exists; Amount is then zero and must not be charged.
type Price struct {
	Amount decimal.Decimal
	Source string
}

func (p Price) Priced() bool {
	return p.Source != ""
}

// PriceSources lists the sources consulted for t, in order.
func (p Product) PriceSources(t OrderType) []PriceSource {
	return []PriceSource{
		{Name: PriceSourceTier, Value: p.TierPrice(t)},
		{Name: PriceSourceBase, Value: p.BasePrice},
	}
}

// ResolvePrice returns the first strictly positive price source for t.
func ResolvePrice(p Product, t OrderType) Price {
	for _, src := range p.PriceSources(ParseOrderType(string(t))) {
		if src.Value.Valid && src.Value.Decimal.IsPositive() {
			return Price{Amount: src.Value.Decimal, Source: src.Name}
		}
	}
	return Price{Amount: decimal.Zero}
}

// ResolveAllPrices resolves every order type at once, keyed by order type.
func ResolveAllPrices(p Product) map[OrderType]Price {
	out := make(map[OrderType]Price, len(OrderTypes))
	for _, t := range OrderTypes {
		out[t] = ResolvePrice(p, t)
	}
	return out
}
