package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations. Values are
// stored as JSON so that memory and redis backends behave the same.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient covers the product side of the sourcing API. Every method
// returns a nil value together with a classified error when the call yields
// no result.
type CatalogClient interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	Detail(ctx context.Context, shopType, goodsID string) (*ProductDetail, error)
	ImageID(ctx context.Context, imageBase64 string) (*ImageSearch, error)
	Logistics(ctx context.Context) ([]Logistics, error)
	Tags(ctx context.Context) ([]Tag, error)
}

// OrderClient covers orders, porders, stock and tracking.
type OrderClient interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Payload, error)
	UpdateOrderStatus(ctx context.Context, orderSN, status string) (*Payload, error)
	CancelOrder(ctx context.Context, orderSN string) (*Payload, error)
	ListOrders(ctx context.Context, req ListRequest) (*Payload, error)
	OrderDetail(ctx context.Context, orderSN string) (*Payload, error)
	StockList(ctx context.Context) (*Payload, error)

	CreatePorder(ctx context.Context, req PorderRequest) (*Payload, error)
	UpdatePorderStatus(ctx context.Context, porderSN, status string) (*Payload, error)
	CancelPorder(ctx context.Context, porderSN string) (*Payload, error)
	ListPorders(ctx context.Context, req ListRequest) (*Payload, error)
	PorderDetail(ctx context.Context, porderSN string) (*Payload, error)

	TrackLogistics(ctx context.Context, expressNo string) (*Payload, error)
}

// ProductRepository persists search results.
type ProductRepository interface {
	SaveProducts(ctx context.Context, keyword string, products []Product) (int, error)
	CountProducts(ctx context.Context) (int64, error)
}
