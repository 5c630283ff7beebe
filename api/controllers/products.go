package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/auradecor/storefront-backend/api/responses"
	"github.com/auradecor/storefront-backend/api/validators"
	"github.com/auradecor/storefront-backend/internal/products"
	"github.com/auradecor/storefront-backend/pkg/logger"
	"github.com/auradecor/storefront-backend/pkg/pagination"
)

// ProductList serves the public catalog listing with filters and cursor
// pagination.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := catalogQuery(r, false)
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

// ProductDetail serves the public product page payload by slug.
func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		product, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func catalogQuery(r *http.Request, includeInactive bool) (*products.ListQuery, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
	if err != nil {
		return nil, err
	}

	priceMin, err := validators.ParseQueryDecimal(r, "price_min")
	if err != nil {
		return nil, err
	}
	priceMax, err := validators.ParseQueryDecimal(r, "price_max")
	if err != nil {
		return nil, err
	}
	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return nil, err
	}

	filters := products.ProductListFilters{
		PriceMin:        priceMin,
		PriceMax:        priceMax,
		Query:           strings.TrimSpace(r.URL.Query().Get("q")),
		FeaturedOnly:    featured,
		IncludeInactive: includeInactive,
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filters.Category = &category
	}
	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		filters.Tag = &tag
	}

	return &products.ListQuery{
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		},
		Filters: filters,
	}, nil
}
