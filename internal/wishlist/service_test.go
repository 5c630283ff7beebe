package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/auradecor/storefront-backend/pkg/db/models"
	pkgerrors "github.com/auradecor/storefront-backend/pkg/errors"
)

func setupWishlistTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS products (
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
);`,
		`CREATE TABLE IF NOT EXISTS wishlists (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS wishlist_items (
  id TEXT PRIMARY KEY,
  wishlist_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (wishlist_id, product_id)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type stubWishlistProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubWishlistProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func seedWishlistProduct(t *testing.T, db *gorm.DB, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		Name:          "Rattan Pendant",
		Slug:          "rattan-pendant-" + uuid.NewString()[:8],
		Category:      "lighting",
		Price:         decimal.NewFromInt(120),
		StockQuantity: 3,
		IsActive:      active,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func buildWishlistService(t *testing.T, db *gorm.DB, products *stubWishlistProducts) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{Repo: NewRepository(db), Products: products})
	require.NoError(t, err)
	return svc
}

func TestServiceAddAndListItems(t *testing.T) {
	db := setupWishlistTestDB(t)
	product := seedWishlistProduct(t, db, true)
	svc := buildWishlistService(t, db, &stubWishlistProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	userID := uuid.New()
	list, err := svc.AddItem(context.Background(), userID, product.ID)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, product.ID, list.Items[0].Product.ID)
	assert.Equal(t, product.Slug, list.Items[0].Product.Slug)
}

func TestServiceAddDuplicateConflicts(t *testing.T) {
	db := setupWishlistTestDB(t)
	product := seedWishlistProduct(t, db, true)
	svc := buildWishlistService(t, db, &stubWishlistProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, product.ID)
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), userID, product.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestServiceAddInactiveProduct(t *testing.T) {
	db := setupWishlistTestDB(t)
	product := seedWishlistProduct(t, db, false)
	svc := buildWishlistService(t, db, &stubWishlistProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	_, err := svc.AddItem(context.Background(), uuid.New(), product.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceRemoveItem(t *testing.T) {
	db := setupWishlistTestDB(t)
	product := seedWishlistProduct(t, db, true)
	svc := buildWishlistService(t, db, &stubWishlistProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, product.ID)
	require.NoError(t, err)

	list, err := svc.RemoveItem(context.Background(), userID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = svc.RemoveItem(context.Background(), userID, product.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
