package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/internal/domain"
)

// DetailFetcher returns the detail document of one product. shopType is the
// product's own marketplace, empty when the item does not carry one.
type DetailFetcher func(ctx context.Context, shopType, goodsID string) (*domain.ProductDetail, error)

// EnrichStats summarizes one enrichment pass.
type EnrichStats struct {
	Attempted int `json:"attempted"`
	Enriched  int `json:"enriched"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Enrich fetches details for up to limit products, in order, and merges the
// detail images and description into them. A limit of zero or less means
// all products. Products without an identifier are skipped and do not count
// against the limit; failed fetches do. A failed fetch leaves the product
// untouched and never stops the batch. Cancellation is checked between
// fetches only.
func Enrich(ctx context.Context, products []domain.Product, limit int, fetch DetailFetcher, log *zap.Logger) EnrichStats {
	if log == nil {
		log = zap.NewNop()
	}
	var stats EnrichStats
	for i := range products {
		if limit > 0 && stats.Attempted >= limit {
			break
		}
		if ctx.Err() != nil {
			log.Warn("enrichment cancelled", zap.Int("attempted", stats.Attempted), zap.Error(ctx.Err()))
			break
		}

		p := &products[i]
		id := p.ID()
		if id == "" {
			stats.Skipped++
			continue
		}

		stats.Attempted++
		var shopType string
		if p.ShopType != nil {
			shopType = strings.TrimSpace(*p.ShopType)
		}
		detail, err := fetch(ctx, shopType, id)
		if err != nil || detail == nil {
			stats.Failed++
			log.Warn("detail fetch failed", zap.String("goods_id", id), zap.Error(err))
			continue
		}
		merge(p, detail)
		stats.Enriched++
	}
	return stats
}

// merge adds the detail fields without touching anything already set.
func merge(p *domain.Product, detail *domain.ProductDetail) {
	if p.DetailImages == nil {
		images := detail.Images
		if images == nil {
			images = []string{}
		}
		p.DetailImages = images
	}
	if p.DetailDescription == nil {
		p.DetailDescription = domain.StringPtr(detail.Description)
	}
}
