package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/infra"
	"dealer-portal/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize    = 50
	browseCachePrefix  = "catalog:browse:"
	catalogCachePrefix = "catalog:"
)

// CatalogItem is one search hit with every order-type price resolved.
type CatalogItem struct {
	Product     domain.Product                    `json:"product"`
	Prices      map[domain.OrderType]domain.Price `json:"prices"`
	StockStatus domain.StockStatus                `json:"stockStatus"`
}

type SearchResult struct {
	Items      []CatalogItem `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	HasMore    bool          `json:"hasMore"`
}

type CatalogService struct {
	products repository.ProductRepository
	pageSize int
	cache    infra.Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewCatalogService(products repository.ProductRepository, pageSize int, log zerolog.Logger) *CatalogService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &CatalogService{
		products: products,
		pageSize: pageSize,
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

// SetBrowseCache enables caching of unfiltered catalog pages.
func (s *CatalogService) SetBrowseCache(cache infra.Cache, ttl time.Duration) {
	s.cache = cache
	s.cacheTTL = ttl
}

// Search browses the catalog page by page when term is blank. Otherwise it
// returns every product whose name or SKU contains term, unpaginated.
func (s *CatalogService) Search(ctx context.Context, term string, page int) (SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.browse(ctx, page)
	}
	return s.match(ctx, term)
}

func (s *CatalogService) browse(ctx context.Context, page int) (SearchResult, error) {
	if page < 1 {
		page = 1
	}
	cacheKey := fmt.Sprintf("%s%d:%d", browseCachePrefix, s.pageSize, page)
	if s.cache != nil {
		var cached SearchResult
		hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", cacheKey).Msg("browse cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	products, total, err := s.products.ListPage(ctx, (page-1)*s.pageSize, s.pageSize)
	if err != nil {
		return SearchResult{}, err
	}
	totalPages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	res := SearchResult{
		Items:      toCatalogItems(products),
		Total:      int(total),
		Page:       page,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, res, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", cacheKey).Msg("browse cache write failed")
		}
	}
	return res, nil
}

func (s *CatalogService) match(ctx context.Context, term string) (SearchResult, error) {
	var byName, bySKU []domain.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byName, err = s.products.SearchByName(gctx, term)
		return err
	})
	g.Go(func() error {
		var err error
		bySKU, err = s.products.SearchBySKU(gctx, term)
		return err
	})
	if err := g.Wait(); err != nil {
		return SearchResult{}, err
	}

	merged := mergeProducts(byName, bySKU)
	s.log.Debug().Str("term", term).Int("matches", len(merged)).Msg("catalog search")
	return SearchResult{
		Items:      toCatalogItems(merged),
		Total:      len(merged),
		Page:       1,
		TotalPages: 1,
		HasMore:    false,
	}, nil
}

// InvalidateCache drops cached catalog pages and products.
func (s *CatalogService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeletePrefix(ctx, catalogCachePrefix); err != nil {
		return err
	}
	return s.cache.DeletePrefix(ctx, productCachePrefix)
}

// mergeProducts unions the lists by product ID and orders them by name
// without regard to case, then by ID.
func mergeProducts(lists ...[]domain.Product) []domain.Product {
	seen := make(map[uint64]struct{})
	out := make([]domain.Product, 0)
	for _, list := range lists {
		for _, p := range list {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func toCatalogItems(products []domain.Product) []CatalogItem {
	items := make([]CatalogItem, 0, len(products))
	for _, p := range products {
		items = append(items, CatalogItem{
			Product:     p,
			Prices:      domain.ResolveAllPrices(p),
			StockStatus: p.StockStatus(),
		})
	}
	return items
}
