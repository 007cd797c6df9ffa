package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlasmedina/medina-backend/api/responses"
	productsvc "github.com/atlasmedina/medina-backend/internal/products"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

// ListProducts serves the storefront catalog. Inactive products are never
// included. Accepts optional ?category= and ?best_sellers= filters.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		var filter productsvc.ListFilter

		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			filter.CategoryID = &categoryID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("best_sellers")); raw != "" {
			bestSellers, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid best_sellers flag"))
				return
			}
			filter.BestSellersOnly = bestSellers
		}

		products, err := svc.ListStorefront(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		rawProductID := strings.TrimSpace(chi.URLParam(r, "productId"))
		productID, err := uuid.Parse(rawProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetStorefront(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
