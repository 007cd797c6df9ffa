package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlasmedina/medina-backend/api/responses"
	"github.com/atlasmedina/medina-backend/api/validators"
	productsvc "github.com/atlasmedina/medina-backend/internal/products"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

// maxImageUploadBytes caps one upload request at 20 MiB across all parts.
const maxImageUploadBytes = 20 << 20

type createProductRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=200"`
	Description  string  `json:"description"`
	Price        string  `json:"price" validate:"required"`
	Promo        *string `json:"promo,omitempty"`
	IsBestSeller bool    `json:"is_best_seller"`
	CategoryID   *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Stock        int     `json:"stock" validate:"min=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description  *string `json:"description,omitempty"`
	Price        *string `json:"price,omitempty"`
	Promo        *string `json:"promo,omitempty"`
	ClearPromo   bool    `json:"clear_promo"`
	IsBestSeller *bool   `json:"is_best_seller,omitempty"`
	CategoryID   *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	ClearCat     bool    `json:"clear_category"`
	Stock        *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type removeProductImageRequest struct {
	Path string `json:"path" validate:"required"`
}

func (p createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	input := productsvc.CreateProductInput{
		Name:         p.Name,
		Description:  p.Description,
		Price:        price,
		Promo:        p.Promo,
		IsBestSeller: p.IsBestSeller,
		Stock:        p.Stock,
		IsActive:     true,
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	if p.CategoryID != nil {
		categoryID, err := uuid.Parse(*p.CategoryID)
		if err != nil {
			return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &categoryID
	}
	return input, nil
}

func (p updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:         p.Name,
		Description:  p.Description,
		Promo:        p.Promo,
		ClearPromo:   p.ClearPromo,
		IsBestSeller: p.IsBestSeller,
		ClearCat:     p.ClearCat,
		Stock:        p.Stock,
		IsActive:     p.IsActive,
	}
	if p.Price != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*p.Price))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		input.Price = &price
	}
	if p.CategoryID != nil {
		categoryID, err := uuid.Parse(*p.CategoryID)
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &categoryID
	}
	return input, nil
}

func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		products, err := svc.ListAdmin(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func AdminGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.GetAdmin(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Update(ctx, productID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminUploadProductImages attaches one or more multipart "images" parts to
// a product and returns the refreshed view.
func AdminUploadProductImages(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}
		if r.MultipartForm == nil || len(r.MultipartForm.File["images"]) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at least one image part is required"))
			return
		}

		uploads := make([]productsvc.ImageUpload, 0, len(r.MultipartForm.File["images"]))
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable image part"))
				return
			}
			defer file.Close()

			uploads = append(uploads, productsvc.ImageUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			})
		}

		product, err := svc.AttachImages(ctx, productID, uploads)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func AdminRemoveProductImage(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service not configured"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload removeProductImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.RemoveImage(ctx, productID, payload.Path)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func productIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "productId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
