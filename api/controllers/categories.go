package controllers

import (
	"net/http"

	"github.com/atlasmedina/medina-backend/api/responses"
	categorysvc "github.com/atlasmedina/medina-backend/internal/categories"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

// ListCategories serves the active categories for the storefront navigation.
func ListCategories(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service not configured"))
			return
		}

		categories, err := svc.ListStorefront(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, categories)
	}
}
