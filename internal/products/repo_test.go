package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/auradecor/storefront-backend/pkg/db/models"
	"github.com/auradecor/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  category TEXT NOT NULL,
  tags TEXT,
  images TEXT,
  price TEXT NOT NULL,
  compare_at_price TEXT,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func createCatalogProduct(t *testing.T, db *gorm.DB, name, category string, created time.Time, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		Name:          name,
		Slug:          fmt.Sprintf("%s-%s", Slugify(name), uuid.NewString()[:8]),
		Category:      category,
		Tags:          pq.StringArray{},
		Price:         decimal.NewFromInt(100),
		StockQuantity: 4,
		IsActive:      active,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryListProducts_pagination(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	category := "seating-" + uuid.NewString()[:8]
	now := time.Now().UTC()
	createCatalogProduct(t, db, "Older Chair", category, now.Add(-time.Hour), true)
	newer := createCatalogProduct(t, db, "Newer Chair", category, now, true)

	list, err := repo.ListProducts(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 1},
		Filters:    ProductListFilters{Category: &category},
	})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, newer.ID, list.Products[0].ID)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListProducts(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 1, Cursor: list.NextCursor},
		Filters:    ProductListFilters{Category: &category},
	})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Equal(t, "Older Chair", second.Products[0].Name)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListProducts_filters(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	category := "lounge-" + uuid.NewString()[:8]
	tables := "tables-" + uuid.NewString()[:8]
	searchName := "Marble Table " + uuid.NewString()[:8]
	now := time.Now().UTC()
	createCatalogProduct(t, db, "Linen Sofa", category, now, true)
	createCatalogProduct(t, db, searchName, tables, now, true)
	createCatalogProduct(t, db, "Hidden Sofa", category, now, false)

	list, err := repo.ListProducts(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ProductListFilters{Category: &category},
	})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Linen Sofa", list.Products[0].Name)

	list, err = repo.ListProducts(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ProductListFilters{Query: searchName},
	})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, searchName, list.Products[0].Name)

	list, err = repo.ListProducts(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ProductListFilters{Category: &category, IncludeInactive: true},
	})
	require.NoError(t, err)
	assert.Len(t, list.Products, 2)
}

func TestRepositoryCreateProductPersistsInactive(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	category := "drafts-" + uuid.NewString()[:8]
	draft := &models.Product{
		ID:            uuid.New(),
		Name:          "Draft Armchair",
		Slug:          fmt.Sprintf("draft-armchair-%s", uuid.NewString()[:8]),
		Category:      category,
		Tags:          pq.StringArray{},
		Price:         decimal.NewFromInt(250),
		StockQuantity: 2,
		IsActive:      false,
	}
	created, err := repo.CreateProduct(context.Background(), draft)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive, "a draft must not come back active")

	list, err := repo.ListProducts(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ProductListFilters{Category: &category},
	})
	require.NoError(t, err)
	assert.Empty(t, list.Products, "drafts must stay out of the public catalog")
}

func TestRepositoryAdjustStockGuardsNegative(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	product := createCatalogProduct(t, db, "Stocked Lamp", "lighting", time.Now().UTC(), true)

	require.NoError(t, repo.AdjustStock(context.Background(), product.ID, -4))

	err := repo.AdjustStock(context.Background(), product.ID, -1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	reloaded, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.StockQuantity)
}
