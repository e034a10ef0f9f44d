package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/run651/rakumart-1688/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data     map[string][]byte
	getError error
	setError error
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = data
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	searchResult *domain.SearchResult
	searchError  error
	lastSearch   domain.SearchRequest
	searchCalls  int

	details      map[string]*domain.ProductDetail
	detailError  error
	detailCalls  []string
	imageResult  *domain.ImageSearch
	logistics    []domain.Logistics
	tags         []domain.Tag
	catalogError error
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{details: make(map[string]*domain.ProductDetail)}
}

func (m *MockCatalogClient) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.searchCalls++
	m.lastSearch = req
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.searchResult, nil
}

func (m *MockCatalogClient) Detail(ctx context.Context, shopType, goodsID string) (*domain.ProductDetail, error) {
	m.detailCalls = append(m.detailCalls, shopType+"/"+goodsID)
	if m.detailError != nil {
		return nil, m.detailError
	}
	if d, ok := m.details[goodsID]; ok {
		return d, nil
	}
	return nil, domain.ErrUnexpectedEnvelope
}

func (m *MockCatalogClient) ImageID(ctx context.Context, imageBase64 string) (*domain.ImageSearch, error) {
	return m.imageResult, m.catalogError
}

func (m *MockCatalogClient) Logistics(ctx context.Context) ([]domain.Logistics, error) {
	return m.logistics, m.catalogError
}

func (m *MockCatalogClient) Tags(ctx context.Context) ([]domain.Tag, error) {
	return m.tags, m.catalogError
}

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	saved   map[string][]domain.Product
	saveErr error
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{saved: make(map[string][]domain.Product)}
}

func (m *MockProductRepository) SaveProducts(ctx context.Context, keyword string, products []domain.Product) (int, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saved[keyword] = append(m.saved[keyword], products...)
	return len(products), nil
}

func (m *MockProductRepository) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	for _, ps := range m.saved {
		n += int64(len(ps))
	}
	return n, nil
}

func products(doc string) []domain.Product {
	var out []domain.Product
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		panic(err)
	}
	return out
}
