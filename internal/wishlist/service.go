package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auradecor/storefront-backend/internal/products"
	"github.com/auradecor/storefront-backend/pkg/db/models"
	pkgerrors "github.com/auradecor/storefront-backend/pkg/errors"
)

// WishlistItemDTO pairs a saved product with the time it was saved.
type WishlistItemDTO struct {
	Product products.ProductSummary `json:"product"`
	AddedAt time.Time               `json:"added_at"`
}

// WishlistDTO is the full wishlist payload.
type WishlistDTO struct {
	ID    uuid.UUID         `json:"id"`
	Items []WishlistItemDTO `json:"items"`
}

type productGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the authenticated user's server-side wishlist.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*WishlistDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error)
}

type service struct {
	repo       *Repository
	productsRp productGetter
}

// ServiceParams bundles the dependencies for the wishlist service.
type ServiceParams struct {
	Repo     *Repository
	Products productGetter
}

// NewService constructs a wishlist service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product getter required")
	}
	return &service{repo: params.Repo, productsRp: params.Products}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*WishlistDTO, error) {
	list, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}
	return fromModel(list), nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error) {
	product, err := s.productsRp.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	list, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}
	if err := s.repo.AddItem(ctx, list.ID, productID); err != nil {
		if errors.Is(err, ErrAlreadySaved) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already on wishlist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist item")
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error) {
	list, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}
	if err := s.repo.RemoveItem(ctx, list.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not on wishlist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	return s.Get(ctx, userID)
}

func fromModel(list *models.Wishlist) *WishlistDTO {
	items := make([]WishlistItemDTO, 0, len(list.Items))
	for i := range list.Items {
		item := &list.Items[i]
		if item.Product == nil {
			continue
		}
		items = append(items, WishlistItemDTO{
			Product: products.SummaryFromModel(item.Product),
			AddedAt: item.CreatedAt,
		})
	}
	return &WishlistDTO{ID: list.ID, Items: items}
}
