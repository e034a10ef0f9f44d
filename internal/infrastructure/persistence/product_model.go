package persistence

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/filter"
)

// ProductModel is one row of the denormalized products table.
type ProductModel struct {
	ID                uint                `gorm:"primaryKey"`
	ProductID         string              `gorm:"type:varchar(64);uniqueIndex;not null"`
	BatchID           string              `gorm:"type:varchar(36);index;not null"`
	Keyword           string              `gorm:"type:varchar(255);index"`
	ShopType          string              `gorm:"type:varchar(32)"`
	TitleC            string              `gorm:"type:text"`
	TitleT            string              `gorm:"type:text"`
	Price             decimal.NullDecimal `gorm:"type:decimal(14,2)"`
	MonthSold         *int
	RepurchaseRate    string `gorm:"type:varchar(32)"`
	ShopName          string `gorm:"type:varchar(255)"`
	ShopAddress       string `gorm:"type:varchar(255)"`
	TopCategoryID     string `gorm:"type:varchar(64)"`
	SecondCategoryID  string `gorm:"type:varchar(64)"`
	ImageURL          string `gorm:"type:text"`
	SourceCreatedAt   string `gorm:"type:varchar(32)"`
	WeightGrams       *float64
	Inventory         *int
	DetailImages      string `gorm:"type:text"`
	DetailDescription string `gorm:"type:text"`
	Raw               string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for ProductModel
func (ProductModel) TableName() string {
	return "products"
}

// upsertColumns are rewritten when a product is saved again.
var upsertColumns = []string{
	"batch_id", "keyword", "shop_type", "title_c", "title_t", "price",
	"month_sold", "repurchase_rate", "shop_name", "shop_address",
	"top_category_id", "second_category_id", "image_url", "source_created_at",
	"weight_grams", "inventory", "detail_images", "detail_description", "raw",
	"updated_at",
}

// ProductModelFromEntity flattens a product into a row. It returns false
// when the product has no identifier.
func ProductModelFromEntity(p *domain.Product, batchID, keyword string) (*ProductModel, bool) {
	id := p.ID()
	if id == "" {
		return nil, false
	}
	m := &ProductModel{
		ProductID:        id,
		BatchID:          batchID,
		Keyword:          keyword,
		ShopType:         deref(p.ShopType),
		TitleC:           deref(p.TitleC),
		TitleT:           deref(p.TitleT),
		RepurchaseRate:   p.RepurchaseRate.String(),
		ShopName:         p.ShopName(),
		TopCategoryID:    p.TopCategoryID.String(),
		SecondCategoryID: p.SecondCategoryID.String(),
		ImageURL:         deref(p.ImgURL),
		SourceCreatedAt:  deref(p.CreateDate),
	}
	if price, ok := filter.SourcePrice(p); ok {
		m.Price = decimal.NewNullDecimal(price)
	}
	if n, ok := p.MonthSold.Int(); ok {
		m.MonthSold = &n
	}
	if p.ShopInfo != nil {
		m.ShopAddress = deref(p.ShopInfo.Address)
	}
	if w, ok := filter.WeightGrams(p); ok {
		m.WeightGrams = &w
	}
	if n, ok := filter.Inventory(p); ok {
		m.Inventory = &n
	}
	if p.DetailImages != nil {
		b, _ := json.Marshal(p.DetailImages)
		m.DetailImages = string(b)
	}
	m.DetailDescription = deref(p.DetailDescription)
	if raw, err := json.Marshal(p); err == nil {
		m.Raw = string(raw)
	}
	return m, true
}

// ToEntity decodes the stored raw document back into a product.
func (m *ProductModel) ToEntity() (*domain.Product, error) {
	var p domain.Product
	if err := json.Unmarshal([]byte(m.Raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
