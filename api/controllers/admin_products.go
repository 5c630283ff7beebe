package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/auradecor/storefront-backend/api/responses"
	"github.com/auradecor/storefront-backend/api/validators"
	"github.com/auradecor/storefront-backend/internal/products"
	"github.com/auradecor/storefront-backend/pkg/logger"
	"github.com/auradecor/storefront-backend/pkg/types"
)

// CreateProductRequest is the admin payload to add a catalog product.
type CreateProductRequest struct {
	Name           string              `json:"name" validate:"required,min=2,max=200"`
	Slug           *string             `json:"slug,omitempty" validate:"omitempty,min=2,max=200"`
	Description    *string             `json:"description,omitempty"`
	Category       string              `json:"category" validate:"required,min=2,max=100"`
	Tags           []string            `json:"tags,omitempty"`
	Images         types.ProductImages `json:"images,omitempty" validate:"omitempty,dive"`
	Price          decimal.Decimal     `json:"price" validate:"required"`
	CompareAtPrice *decimal.Decimal    `json:"compare_at_price,omitempty"`
	StockQuantity  int                 `json:"stock_quantity" validate:"min=0"`
	IsActive       bool                `json:"is_active"`
	IsFeatured     bool                `json:"is_featured"`
}

// UpdateProductRequest is the admin payload for a partial product update.
type UpdateProductRequest struct {
	Name           *string              `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description    *string              `json:"description,omitempty"`
	Category       *string              `json:"category,omitempty" validate:"omitempty,min=2,max=100"`
	Tags           *[]string            `json:"tags,omitempty"`
	Images         *types.ProductImages `json:"images,omitempty"`
	Price          *decimal.Decimal     `json:"price,omitempty"`
	CompareAtPrice *decimal.Decimal     `json:"compare_at_price,omitempty"`
	StockQuantity  *int                 `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	IsActive       *bool                `json:"is_active,omitempty"`
	IsFeatured     *bool                `json:"is_featured,omitempty"`
}

// AdminProductList serves the catalog for the admin console, inactive rows
// included.
func AdminProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := catalogQuery(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), *query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminCreateProduct adds a product to the catalog.
func AdminCreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateProductInput{
			Name:           body.Name,
			Slug:           body.Slug,
			Description:    body.Description,
			Category:       body.Category,
			Tags:           body.Tags,
			Images:         body.Images,
			Price:          body.Price,
			CompareAtPrice: body.CompareAtPrice,
			StockQuantity:  body.StockQuantity,
			IsActive:       body.IsActive,
			IsFeatured:     body.IsFeatured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial update to a product.
func AdminUpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, products.UpdateProductInput{
			Name:           body.Name,
			Description:    body.Description,
			Category:       body.Category,
			Tags:           body.Tags,
			Images:         body.Images,
			Price:          body.Price,
			CompareAtPrice: body.CompareAtPrice,
			StockQuantity:  body.StockQuantity,
			IsActive:       body.IsActive,
			IsFeatured:     body.IsFeatured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product from the catalog.
func AdminDeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
