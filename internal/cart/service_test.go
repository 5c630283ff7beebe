package cart

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

func setupCartTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price_at_addition TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type stubCartProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubCartProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type inlineTxRunner struct {
	db *gorm.DB
}

func (r *inlineTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func seedCartProduct(t *testing.T, db *gorm.DB, price int64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		Name:          "Ceramic Vase",
		Slug:          "ceramic-vase-" + uuid.NewString()[:8],
		Category:      "decor",
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func buildCartService(t *testing.T, db *gorm.DB, products *stubCartProducts) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Products: products,
		Tx:       &inlineTxRunner{db: db},
	})
	require.NoError(t, err)
	return svc
}

func TestServiceAddItemSnapshotsPrice(t *testing.T) {
	db := setupCartTestDB(t)
	product := seedCartProduct(t, db, 80, 5)
	products := &stubCartProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	svc := buildCartService(t, db, products)

	userID := uuid.New()
	cart, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].PriceAtAddition.Equal(decimal.NewFromInt(80)))
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(160)))
	assert.Equal(t, 2, cart.ItemCount)
}

func TestServiceAddItemAgainRefreshesSnapshot(t *testing.T) {
	db := setupCartTestDB(t)
	product := seedCartProduct(t, db, 80, 5)
	products := &stubCartProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	svc := buildCartService(t, db, products)

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, product.ID, 1)
	require.NoError(t, err)

	product.Price = decimal.NewFromInt(95)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", product.Price).Error)

	cart, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].PriceAtAddition.Equal(decimal.NewFromInt(95)))
}

func TestServiceAddItemRejectsOutOfStock(t *testing.T) {
	db := setupCartTestDB(t)
	product := seedCartProduct(t, db, 40, 0)
	products := &stubCartProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	svc := buildCartService(t, db, products)

	_, err := svc.AddItem(context.Background(), uuid.New(), product.ID, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestServiceUpdateQuantityMissingLine(t *testing.T) {
	db := setupCartTestDB(t)
	svc := buildCartService(t, db, &stubCartProducts{byID: map[uuid.UUID]*models.Product{}})

	_, err := svc.UpdateQuantity(context.Background(), uuid.New(), uuid.New(), 3)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceRemoveAndClear(t *testing.T) {
	db := setupCartTestDB(t)
	first := seedCartProduct(t, db, 30, 5)
	second := seedCartProduct(t, db, 50, 5)
	products := &stubCartProducts{byID: map[uuid.UUID]*models.Product{
		first.ID:  first,
		second.ID: second,
	}}
	svc := buildCartService(t, db, products)

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, first.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, second.ID, 1)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(context.Background(), userID, first.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, second.ID, cart.Items[0].ProductID)

	cart, err = svc.Clear(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Subtotal.IsZero())
}

func TestServiceMergeGuestCartUnionSemantics(t *testing.T) {
	db := setupCartTestDB(t)
	kept := seedCartProduct(t, db, 25, 10)
	fresh := seedCartProduct(t, db, 60, 10)
	products := &stubCartProducts{byID: map[uuid.UUID]*models.Product{
		kept.ID:  kept,
		fresh.ID: fresh,
	}}
	svc := buildCartService(t, db, products)

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, kept.ID, 2)
	require.NoError(t, err)

	cart, err := svc.MergeGuestCart(context.Background(), userID, []GuestCartLine{
		{ProductID: kept.ID, Quantity: 3, PriceAtAddition: decimal.NewFromInt(20)},
		{ProductID: fresh.ID, Quantity: 1, PriceAtAddition: decimal.NewFromInt(55)},
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	byProduct := map[uuid.UUID]CartItemDTO{}
	for _, item := range cart.Items {
		byProduct[item.ProductID] = item
	}
	// Existing line: quantities summed, server snapshot kept.
	assert.Equal(t, 5, byProduct[kept.ID].Quantity)
	assert.True(t, byProduct[kept.ID].PriceAtAddition.Equal(decimal.NewFromInt(25)))
	// New line: inserted at the guest's price.
	assert.Equal(t, 1, byProduct[fresh.ID].Quantity)
	assert.True(t, byProduct[fresh.ID].PriceAtAddition.Equal(decimal.NewFromInt(55)))
}

func TestServiceMergeGuestCartUnknownProductFails(t *testing.T) {
	db := setupCartTestDB(t)
	svc := buildCartService(t, db, &stubCartProducts{byID: map[uuid.UUID]*models.Product{}})

	_, err := svc.MergeGuestCart(context.Background(), uuid.New(), []GuestCartLine{
		{ProductID: uuid.New(), Quantity: 1, PriceAtAddition: decimal.NewFromInt(10)},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
