package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/run651/rakumart-1688/internal/domain"
)

// ProductRepository writes search results into the products table.
type ProductRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *gorm.DB, log *zap.Logger) *ProductRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductRepository{db: db, log: log.Named("persistence")}
}

// SaveProducts upserts products by product id inside one transaction. All
// rows written by one call share a batch id. Products without an id are
// skipped. It returns the number of rows written.
func (r *ProductRepository) SaveProducts(ctx context.Context, keyword string, products []domain.Product) (int, error) {
	batchID := uuid.NewString()
	models := make([]*ProductModel, 0, len(products))
	for i := range products {
		m, ok := ProductModelFromEntity(&products[i], batchID, keyword)
		if !ok {
			r.log.Debug("skipping product without id", zap.Int("index", i))
			continue
		}
		models = append(models, m)
	}
	if len(models) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range models {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}},
				DoUpdates: clause.AssignmentColumns(upsertColumns),
			}).Create(m).Error; err != nil {
				return fmt.Errorf("save product %s: %w", m.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Info("products saved",
		zap.String("batch_id", batchID),
		zap.String("keyword", keyword),
		zap.Int("count", len(models)))
	return len(models), nil
}

// CountProducts returns the number of stored products.
func (r *ProductRepository) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&ProductModel{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// FindByProductID returns the stored row for a product id.
func (r *ProductRepository) FindByProductID(ctx context.Context, productID string) (*ProductModel, error) {
	var m ProductModel
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoResult
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

var _ domain.ProductRepository = (*ProductRepository)(nil)
