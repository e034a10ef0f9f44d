package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/filter"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	DetailTTL   time.Duration
	DetailLimit int
	ShopType    string
}

// CatalogService runs searches through the filter pipeline, optional
// enrichment and optional persistence.
type CatalogService struct {
	client    domain.CatalogClient
	cache     domain.CacheRepository
	products  domain.ProductRepository
	log       *zap.Logger
	detailTTL time.Duration
	limit     int
	shopType  string
}

// NewCatalogService creates a catalog service. cache and products may be
// nil, which disables detail caching and saving.
func NewCatalogService(
	client domain.CatalogClient,
	cache domain.CacheRepository,
	products domain.ProductRepository,
	log *zap.Logger,
	config CatalogServiceConfig,
) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	ttl := config.DetailTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	shopType := config.ShopType
	if shopType == "" {
		shopType = "1688"
	}
	return &CatalogService{
		client:    client,
		cache:     cache,
		products:  products,
		log:       log.Named("catalog"),
		detailTTL: ttl,
		limit:     config.DetailLimit,
		shopType:  shopType,
	}
}

// SearchOptions describes one search run.
type SearchOptions struct {
	Request     domain.SearchRequest `json:"request"`
	Filter      filter.Config        `json:"filter"`
	WithDetail  bool                 `json:"withDetail"`
	DetailLimit int                  `json:"detailLimit"`
	Save        bool                 `json:"save"`
	SaveKeyword string               `json:"saveKeyword,omitempty"`
}

// SearchOutcome is the result of one search run.
type SearchOutcome struct {
	Keyword    string              `json:"keyword"`
	Total      int                 `json:"total"`
	Fetched    int                 `json:"fetched"`
	Products   []domain.Product    `json:"products"`
	Stages     []filter.StageCount `json:"stages"`
	Enrichment *EnrichStats        `json:"enrichment,omitempty"`
	Saved      int                 `json:"saved"`
	SaveError  error               `json:"-"`
}

// Search calls the search endpoint, filters the items, enriches them when
// asked and saves them when asked. When the endpoint yields no result the
// error is returned and neither filtering nor enrichment runs. A failed save
// is logged and reported in SaveError without failing the search.
func (s *CatalogService) Search(ctx context.Context, opts SearchOptions) (*SearchOutcome, error) {
	req := opts.Request
	req.Keywords = NormalizeKeyword(req.Keywords)
	if req.Keywords == "" {
		return nil, fmt.Errorf("%w: keywords are required", domain.ErrInvalidRequest)
	}
	if req.ShopType == "" {
		req.ShopType = s.shopType
	}
	hintFilter(&req, opts.Filter)

	result, err := s.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	products, stages := filter.Trace(result.Products, opts.Filter)
	out := &SearchOutcome{
		Keyword:  req.Keywords,
		Total:    result.Total,
		Fetched:  len(result.Products),
		Products: products,
		Stages:   stages,
	}
	s.log.Info("search filtered",
		zap.String("keywords", req.Keywords),
		zap.Int("fetched", out.Fetched),
		zap.Int("kept", len(products)))

	if opts.WithDetail {
		limit := opts.DetailLimit
		if limit == 0 {
			limit = s.limit
		}
		stats := Enrich(ctx, out.Products, limit, func(ctx context.Context, shopType, id string) (*domain.ProductDetail, error) {
			if shopType == "" {
				shopType = req.ShopType
			}
			return s.Detail(ctx, shopType, id)
		}, s.log)
		out.Enrichment = &stats
	}

	if opts.Save {
		keyword := opts.SaveKeyword
		if keyword == "" {
			keyword = req.Keywords
		}
		out.Saved, out.SaveError = s.save(ctx, keyword, out.Products)
	}
	return out, nil
}

func (s *CatalogService) save(ctx context.Context, keyword string, products []domain.Product) (int, error) {
	if s.products == nil {
		err := errors.New("no database configured")
		s.log.Warn("save skipped", zap.Error(err))
		return 0, err
	}
	n, err := s.products.SaveProducts(ctx, keyword, products)
	if err != nil {
		s.log.Error("save failed", zap.String("keyword", keyword), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// hintFilter copies the filter's category allow-lists and limits onto the
// request so the server can narrow results as well.
func hintFilter(req *domain.SearchRequest, cfg filter.Config) {
	if len(req.Categories) == 0 {
		req.Categories = cfg.Categories
	}
	if len(req.Subcategories) == 0 {
		req.Subcategories = cfg.Subcategories
	}
	if len(req.SubSubcategories) == 0 {
		req.SubSubcategories = cfg.SubSubcategories
	}
	if req.MaxLength == nil {
		req.MaxLength = cfg.MaxLength
	}
	if req.MaxWidth == nil {
		req.MaxWidth = cfg.MaxWidth
	}
	if req.MaxHeight == nil {
		req.MaxHeight = cfg.MaxHeight
	}
	if req.MinInventory == nil {
		req.MinInventory = cfg.MinInventory
	}
	if req.MaxDeliveryDays == nil {
		req.MaxDeliveryDays = cfg.MaxDeliveryDays
	}
	if req.MaxShippingFee == nil {
		req.MaxShippingFee = cfg.MaxShippingFee
	}
}

// Detail returns one product's detail, from the cache when possible.
func (s *CatalogService) Detail(ctx context.Context, shopType, goodsID string) (*domain.ProductDetail, error) {
	if goodsID == "" {
		return nil, fmt.Errorf("%w: goods id is required", domain.ErrInvalidRequest)
	}
	if shopType == "" {
		shopType = s.shopType
	}
	key := detailCacheKey(shopType, goodsID)

	if cached, ok := s.cachedDetail(ctx, key); ok {
		return cached, nil
	}

	detail, err := s.client.Detail(ctx, shopType, goodsID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, detail, s.detailTTL); err != nil {
			s.log.Warn("caching detail failed", zap.String("key", key), zap.Error(err))
		}
	}
	return detail, nil
}

func (s *CatalogService) cachedDetail(ctx context.Context, key string) (*domain.ProductDetail, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var detail domain.ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		s.log.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &detail, true
}

// Categories runs a search and returns the category facets of the raw
// result, before any filtering.
func (s *CatalogService) Categories(ctx context.Context, req domain.SearchRequest) (*filter.Facets, error) {
	req.Keywords = NormalizeKeyword(req.Keywords)
	if req.Keywords == "" {
		return nil, fmt.Errorf("%w: keywords are required", domain.ErrInvalidRequest)
	}
	result, err := s.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	facets := filter.CollectCategories(result.Products)
	return &facets, nil
}

// ImageID looks up the image id of a base64 image.
func (s *CatalogService) ImageID(ctx context.Context, imageBase64 string) (*domain.ImageSearch, error) {
	if imageBase64 == "" {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidRequest)
	}
	return s.client.ImageID(ctx, imageBase64)
}

// Logistics lists the available carriers.
func (s *CatalogService) Logistics(ctx context.Context) ([]domain.Logistics, error) {
	return s.client.Logistics(ctx)
}

// Tags lists the labelling options.
func (s *CatalogService) Tags(ctx context.Context) ([]domain.Tag, error) {
	return s.client.Tags(ctx)
}
