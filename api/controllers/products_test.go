package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/atlasmedina/medina-backend/internal/products"
	"github.com/atlasmedina/medina-backend/pkg/db/models"
)

type stubProductService struct {
	listStorefrontFn func(ctx context.Context, filter productsvc.ListFilter) ([]productsvc.View, error)
	getStorefrontFn  func(ctx context.Context, id uuid.UUID) (*productsvc.View, error)
	listAdminFn      func(ctx context.Context) ([]productsvc.View, error)
	getAdminFn       func(ctx context.Context, id uuid.UUID) (*productsvc.View, error)
	createFn         func(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.View, error)
	updateFn         func(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.View, error)
	deleteFn         func(ctx context.Context, id uuid.UUID) error
	attachFn         func(ctx context.Context, id uuid.UUID, uploads []productsvc.ImageUpload) (*productsvc.View, error)
	removeImageFn    func(ctx context.Context, id uuid.UUID, objectPath string) (*productsvc.View, error)
}

func (s stubProductService) ListStorefront(ctx context.Context, filter productsvc.ListFilter) ([]productsvc.View, error) {
	if s.listStorefrontFn != nil {
		return s.listStorefrontFn(ctx, filter)
	}
	return nil, nil
}

func (s stubProductService) GetStorefront(ctx context.Context, id uuid.UUID) (*productsvc.View, error) {
	if s.getStorefrontFn != nil {
		return s.getStorefrontFn(ctx, id)
	}
	return nil, nil
}

func (s stubProductService) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

func (s stubProductService) ListAdmin(ctx context.Context) ([]productsvc.View, error) {
	if s.listAdminFn != nil {
		return s.listAdminFn(ctx)
	}
	return nil, nil
}

func (s stubProductService) GetAdmin(ctx context.Context, id uuid.UUID) (*productsvc.View, error) {
	if s.getAdminFn != nil {
		return s.getAdminFn(ctx, id)
	}
	return nil, nil
}

func (s stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.View, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, nil
}

func (s stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.View, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, input)
	}
	return nil, nil
}

func (s stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s stubProductService) AttachImages(ctx context.Context, id uuid.UUID, uploads []productsvc.ImageUpload) (*productsvc.View, error) {
	if s.attachFn != nil {
		return s.attachFn(ctx, id, uploads)
	}
	return nil, nil
}

func (s stubProductService) RemoveImage(ctx context.Context, id uuid.UUID, objectPath string) (*productsvc.View, error) {
	if s.removeImageFn != nil {
		return s.removeImageFn(ctx, id, objectPath)
	}
	return nil, nil
}

func withProductID(req *http.Request, productID uuid.UUID) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("productId", productID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestListProductsParsesFilters(t *testing.T) {
	categoryID := uuid.New()
	var captured productsvc.ListFilter

	svc := stubProductService{
		listStorefrontFn: func(ctx context.Context, filter productsvc.ListFilter) ([]productsvc.View, error) {
			captured = filter
			return []productsvc.View{}, nil
		},
	}

	handler := ListProducts(svc, nil)
	req := httptest.NewRequest(http.MethodGet, "/?category="+categoryID.String()+"&best_sellers=true", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.CategoryID == nil || *captured.CategoryID != categoryID {
		t.Fatalf("category filter not forwarded: %v", captured.CategoryID)
	}
	if !captured.BestSellersOnly {
		t.Fatal("best sellers filter not forwarded")
	}
}

func TestListProductsRejectsBadCategory(t *testing.T) {
	handler := ListProducts(stubProductService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/?category=not-a-uuid", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetProductReturnsView(t *testing.T) {
	productID := uuid.New()
	svc := stubProductService{
		getStorefrontFn: func(ctx context.Context, id uuid.UUID) (*productsvc.View, error) {
			if id != productID {
				t.Fatalf("unexpected id %s", id)
			}
			view := productsvc.View{ImageURLs: []string{"https://cdn.example.com/p.jpg"}}
			view.ID = productID
			view.Name = "Argan Oil"
			return &view, nil
		},
	}

	handler := GetProduct(svc, nil)
	req := withProductID(httptest.NewRequest(http.MethodGet, "/", nil), productID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data productsvc.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "Argan Oil" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestGetProductRejectsBadID(t *testing.T) {
	handler := GetProduct(stubProductService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("productId", "garbage")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
