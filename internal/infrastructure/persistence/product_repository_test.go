package persistence

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/run651/rakumart-1688/config"
	"github.com/run651/rakumart-1688/internal/domain"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&ProductModel{})
	require.NoError(t, err)

	return db
}

func decodeProducts(t *testing.T, doc string) []domain.Product {
	t.Helper()
	var products []domain.Product
	require.NoError(t, json.Unmarshal([]byte(doc), &products))
	return products
}

func TestProductRepository_SaveProducts(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db, zap.NewNop())
	ctx := context.Background()

	products := decodeProducts(t, `[
		{"goodsId": "100", "titleC": "帆布包", "titleT": "キャンバスバッグ", "goodsPrice": "¥1,234.50",
		 "monthSold": 42, "shopInfo": {"shopName": "Shop A", "address": "Yiwu"},
		 "topCategoryId": 7, "weight": "1.5kg", "inventory": "300"},
		{"goodsId": 200, "goodsPrice": 9.9, "detailImages": ["a.jpg"], "detailDescription": "<p>d</p>"},
		{"titleC": "no id"}
	]`)

	n, err := repo.SaveProducts(ctx, "bag", products)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	first, err := repo.FindByProductID(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "bag", first.Keyword)
	assert.Equal(t, "キャンバスバッグ", first.TitleT)
	assert.Equal(t, "Shop A", first.ShopName)
	assert.Equal(t, "Yiwu", first.ShopAddress)
	assert.Equal(t, "7", first.TopCategoryID)
	require.True(t, first.Price.Valid)
	assert.Equal(t, "1234.5", first.Price.Decimal.String())
	require.NotNil(t, first.MonthSold)
	assert.Equal(t, 42, *first.MonthSold)
	require.NotNil(t, first.WeightGrams)
	assert.InDelta(t, 1500, *first.WeightGrams, 1e-9)
	require.NotNil(t, first.Inventory)
	assert.Equal(t, 300, *first.Inventory)
	assert.Len(t, first.BatchID, 36)

	second, err := repo.FindByProductID(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, `["a.jpg"]`, second.DetailImages)
	assert.Equal(t, "<p>d</p>", second.DetailDescription)
	assert.Nil(t, second.WeightGrams)
	assert.Equal(t, first.BatchID, second.BatchID)

	restored, err := second.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, "200", restored.ID())
	assert.Equal(t, []string{"a.jpg"}, restored.DetailImages)
}

func TestProductRepository_UpsertByProductID(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db, nil)
	ctx := context.Background()

	_, err := repo.SaveProducts(ctx, "bag", decodeProducts(t, `[{"goodsId": "1", "titleC": "old", "goodsPrice": "10"}]`))
	require.NoError(t, err)
	before, err := repo.FindByProductID(ctx, "1")
	require.NoError(t, err)

	_, err = repo.SaveProducts(ctx, "tote", decodeProducts(t, `[{"goodsId": "1", "titleC": "new", "goodsPrice": "12"}]`))
	require.NoError(t, err)

	count, err := repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	after, err := repo.FindByProductID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, "new", after.TitleC)
	assert.Equal(t, "tote", after.Keyword)
	assert.Equal(t, "12", after.Price.Decimal.String())
	assert.NotEqual(t, before.BatchID, after.BatchID)
}

func TestProductRepository_EmptyAndMissing(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db, nil)
	ctx := context.Background()

	n, err := repo.SaveProducts(ctx, "none", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.FindByProductID(ctx, "404")
	assert.ErrorIs(t, err, domain.ErrNoResult)
}

func TestNewDatabase(t *testing.T) {
	db, err := NewDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, zap.NewNop(), "silent")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
	assert.True(t, db.DB.Migrator().HasTable(&ProductModel{}))

	_, err = NewDatabase(config.DatabaseConfig{Driver: "oracle", DSN: "x"}, zap.NewNop(), "silent")
	assert.Error(t, err)
}
