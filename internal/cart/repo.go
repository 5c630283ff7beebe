package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/auradecor/storefront-backend/pkg/db"
	"github.com/auradecor/storefront-backend/pkg/db/models"
)

// Repository manages persistent carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetOrCreateByUser returns the user's cart, creating an empty one on first
// touch. Items and their products are preloaded.
func (r *Repository) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.findByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Cart{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// Lost a create race: the unique user index means the cart now exists.
		if db.IsUniqueViolation(err, "carts_user_id_key") {
			return r.findByUser(ctx, userID)
		}
		return nil, err
	}
	created.Items = []models.CartItem{}
	return created, nil
}

func (r *Repository) findByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Preload("Items.Product").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpsertItem adds a product line to the cart. When the line already exists
// the quantity is incremented and the price snapshot refreshed to the
// provided price.
func (r *Repository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, price decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]any{
			"quantity":          gorm.Expr("quantity + ?", quantity),
			"price_at_addition": price,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	item := models.CartItem{
		ID:              uuid.New(),
		CartID:          cartID,
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtAddition: price,
	}
	err := r.db.WithContext(ctx).Create(&item).Error
	if err != nil && db.IsUniqueViolation(err, "cart_items_cart_product_key") {
		// Concurrent insert for the same product; fold into the existing line.
		return r.db.WithContext(ctx).
			Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			Updates(map[string]any{
				"quantity":          gorm.Expr("quantity + ?", quantity),
				"price_at_addition": price,
			}).Error
	}
	return err
}

// MergeLine folds a guest line into the cart. An existing line for the
// product only gets the quantity added; a new line is inserted with the
// provided price snapshot.
func (r *Repository) MergeLine(ctx context.Context, cartID, productID uuid.UUID, quantity int, price decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	item := models.CartItem{
		ID:              uuid.New(),
		CartID:          cartID,
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtAddition: price,
	}
	return r.db.WithContext(ctx).Create(&item).Error
}

// SetItemQuantity overwrites the quantity on an existing line. Returns
// gorm.ErrRecordNotFound when the product is not in the cart.
func (r *Repository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveItem deletes a product line from the cart. Returns
// gorm.ErrRecordNotFound when the product is not in the cart.
func (r *Repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Clear removes every line from the cart.
func (r *Repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
