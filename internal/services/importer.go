package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const importBatchSize = 50

var requiredImportColumns = []string{"sku", "name", "regular_price", "sale_price", "stock_quantity", "category"}

var tierColumns = map[string]domain.OrderType{
	"stock_order_price": domain.OrderTypeStock,
	"daily_order_price": domain.OrderTypeDaily,
	"vor_order_price":   domain.OrderTypeVOR,
}

type ImportStats struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Importer upserts products from a CSV price list, keyed by SKU.
type Importer struct {
	products repository.ProductRepository
	catalog  *CatalogService
	log      zerolog.Logger
}

func NewImporter(products repository.ProductRepository, catalog *CatalogService, log zerolog.Logger) *Importer {
	return &Importer{
		products: products,
		catalog:  catalog,
		log:      log.With().Str("component", "importer").Logger(),
	}
}

type pendingProduct struct {
	product *domain.Product
	created bool
	// repeats counts later rows in the same batch with this SKU.
	repeats int
}

func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return stats, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredImportColumns {
		if _, ok := cols[c]; !ok {
			return stats, domain.NewValidationError("missing column %q", c)
		}
	}

	batch := make([]pendingProduct, 0, importBatchSize)
	bySKU := make(map[string]int)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		products := make([]*domain.Product, 0, len(batch))
		for _, pp := range batch {
			products = append(products, pp.product)
		}
		if err := im.products.SaveBatch(ctx, products); err != nil {
			rows := 0
			for _, pp := range batch {
				rows += 1 + pp.repeats
			}
			im.log.Error().Err(err).Int("rows", rows).Msg("batch save failed")
			stats.Failed += rows
		} else {
			for _, pp := range batch {
				if pp.created {
					stats.Created++
				} else {
					stats.Updated++
				}
				stats.Updated += pp.repeats
			}
		}
		batch = batch[:0]
		clear(bySKU)
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			stats.Total++
			stats.Failed++
			im.log.Warn().Err(err).Int("line", line).Msg("unreadable row")
			continue
		}
		stats.Total++

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		sku := field("sku")
		if sku == "" {
			stats.Failed++
			im.log.Warn().Int("line", line).Msg("row without sku")
			continue
		}

		// A SKU repeated inside one batch updates the pending product.
		if i, ok := bySKU[strings.ToLower(sku)]; ok {
			applyImportRow(batch[i].product, field, cols)
			batch[i].repeats++
			continue
		}

		p, err := im.products.FindBySKU(ctx, sku)
		if err != nil {
			stats.Failed++
			im.log.Error().Err(err).Str("sku", sku).Msg("lookup failed")
			continue
		}
		created := p == nil
		if created {
			p = &domain.Product{SKU: sku}
		}
		applyImportRow(p, field, cols)
		bySKU[strings.ToLower(sku)] = len(batch)
		batch = append(batch, pendingProduct{product: p, created: created})

		if len(batch) == importBatchSize {
			flush()
		}
	}
	flush()

	if im.catalog != nil {
		if err := im.catalog.InvalidateCache(ctx); err != nil {
			im.log.Warn().Err(err).Msg("cache invalidation failed")
		}
	}

	im.log.Info().
		Int("total", stats.Total).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("failed", stats.Failed).
		Msg("import finished")
	return stats, nil
}

func applyImportRow(p *domain.Product, field func(string) string, cols map[string]int) {
	if name := field("name"); name != "" {
		p.Name = name
	}
	p.Category = field("category")
	p.Stock = parseStock(field("stock_quantity"))

	base := parsePrice(field("sale_price"))
	if !base.IsPositive() {
		base = parsePrice(field("regular_price"))
	}
	if base.IsPositive() {
		p.BasePrice = decimal.NewNullDecimal(base)
	} else {
		p.BasePrice = decimal.NullDecimal{}
	}

	for col, t := range tierColumns {
		if _, ok := cols[col]; !ok {
			continue
		}
		p.SetTierPrice(t, parsePrice(field(col)))
	}
}

func parsePrice(raw string) decimal.Decimal {
	raw = strings.TrimPrefix(strings.ReplaceAll(raw, ",", ""), "$")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseStock(raw string) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return n
}
