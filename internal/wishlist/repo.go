package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auradecor/storefront-backend/pkg/db"
	"github.com/auradecor/storefront-backend/pkg/db/models"
)

// ErrAlreadySaved reports an add for a product already on the wishlist.
var ErrAlreadySaved = errors.New("product already on wishlist")

// Repository manages persistent wishlists and their saved products.
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

// GetOrCreateByUser returns the user's wishlist, creating an empty one on
// first touch. Items and their products are preloaded.
func (r *Repository) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	list, err := r.findByUser(ctx, userID)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Wishlist{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		if db.IsUniqueViolation(err, "wishlists_user_id_key") {
			return r.findByUser(ctx, userID)
		}
		return nil, err
	}
	created.Items = []models.WishlistItem{}
	return created, nil
}

func (r *Repository) findByUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var list models.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Preload("Items.Product").
		First(&list, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// AddItem saves a product onto the wishlist. Returns ErrAlreadySaved when
// the product is already present.
func (r *Repository) AddItem(ctx context.Context, wishlistID, productID uuid.UUID) error {
	item := models.WishlistItem{
		ID:         uuid.New(),
		WishlistID: wishlistID,
		ProductID:  productID,
	}
	err := r.db.WithContext(ctx).Create(&item).Error
	if err != nil && db.IsUniqueViolation(err, "wishlist_items_wishlist_product_key") {
		return ErrAlreadySaved
	}
	return err
}

// RemoveItem drops a saved product from the wishlist. Returns
// gorm.ErrRecordNotFound when the product is not on the list.
func (r *Repository) RemoveItem(ctx context.Context, wishlistID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
