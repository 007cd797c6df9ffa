package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlasmedina/medina-backend/api/middleware"
	cartsvc "github.com/atlasmedina/medina-backend/internal/cart"
)

type stubCartControllerService struct {
	getFn         func(ctx context.Context, token string) (*cartsvc.HydratedCart, error)
	addItemFn     func(ctx context.Context, token string, productID uuid.UUID, quantity int) (*cartsvc.HydratedCart, error)
	setQuantityFn func(ctx context.Context, token string, productID uuid.UUID, quantity int) (*cartsvc.HydratedCart, error)
	removeItemFn  func(ctx context.Context, token string, productID uuid.UUID) (*cartsvc.HydratedCart, error)
	clearFn       func(ctx context.Context, token string) error
}

func (s stubCartControllerService) Get(ctx context.Context, token string) (*cartsvc.HydratedCart, error) {
	if s.getFn != nil {
		return s.getFn(ctx, token)
	}
	return &cartsvc.HydratedCart{Token: token, Total: decimal.Zero}, nil
}

func (s stubCartControllerService) AddItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*cartsvc.HydratedCart, error) {
	if s.addItemFn != nil {
		return s.addItemFn(ctx, token, productID, quantity)
	}
	return &cartsvc.HydratedCart{Token: token}, nil
}

func (s stubCartControllerService) SetQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int) (*cartsvc.HydratedCart, error) {
	if s.setQuantityFn != nil {
		return s.setQuantityFn(ctx, token, productID, quantity)
	}
	return &cartsvc.HydratedCart{Token: token}, nil
}

func (s stubCartControllerService) RemoveItem(ctx context.Context, token string, productID uuid.UUID) (*cartsvc.HydratedCart, error) {
	if s.removeItemFn != nil {
		return s.removeItemFn(ctx, token, productID)
	}
	return &cartsvc.HydratedCart{Token: token}, nil
}

func (s stubCartControllerService) Clear(ctx context.Context, token string) error {
	if s.clearFn != nil {
		return s.clearFn(ctx, token)
	}
	return nil
}

func withCartToken(req *http.Request, token string) *http.Request {
	return req.WithContext(middleware.WithCartToken(req.Context(), token))
}

func TestGetCartUsesContextToken(t *testing.T) {
	token := uuid.NewString()
	var seenToken string

	svc := stubCartControllerService{
		getFn: func(ctx context.Context, tok string) (*cartsvc.HydratedCart, error) {
			seenToken = tok
			return &cartsvc.HydratedCart{Token: tok, Total: decimal.Zero}, nil
		},
	}

	handler := GetCart(svc, nil)
	req := withCartToken(httptest.NewRequest(http.MethodGet, "/", nil), token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seenToken != token {
		t.Fatalf("expected token %s got %s", token, seenToken)
	}
}

func TestAddCartItemForwardsPayload(t *testing.T) {
	token := uuid.NewString()
	productID := uuid.New()
	var seenProduct uuid.UUID
	var seenQuantity int

	svc := stubCartControllerService{
		addItemFn: func(ctx context.Context, tok string, pid uuid.UUID, quantity int) (*cartsvc.HydratedCart, error) {
			seenProduct = pid
			seenQuantity = quantity
			return &cartsvc.HydratedCart{Token: tok}, nil
		},
	}

	body := `{"product_id":"` + productID.String() + `","quantity":2}`
	handler := AddCartItem(svc, nil)
	req := withCartToken(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seenProduct != productID || seenQuantity != 2 {
		t.Fatalf("unexpected call product=%s quantity=%d", seenProduct, seenQuantity)
	}
}

func TestAddCartItemRejectsZeroQuantity(t *testing.T) {
	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	handler := AddCartItem(stubCartControllerService{}, nil)
	req := withCartToken(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), uuid.NewString())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateCartItemAllowsZeroQuantity(t *testing.T) {
	productID := uuid.New()
	var seenQuantity = -1

	svc := stubCartControllerService{
		setQuantityFn: func(ctx context.Context, tok string, pid uuid.UUID, quantity int) (*cartsvc.HydratedCart, error) {
			seenQuantity = quantity
			return &cartsvc.HydratedCart{Token: tok}, nil
		},
	}

	body := `{"product_id":"` + productID.String() + `","quantity":0}`
	handler := UpdateCartItem(svc, nil)
	req := withCartToken(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)), uuid.NewString())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seenQuantity != 0 {
		t.Fatalf("expected quantity 0 got %d", seenQuantity)
	}
}

func TestRemoveCartItemParsesParam(t *testing.T) {
	productID := uuid.New()
	var seenProduct uuid.UUID

	svc := stubCartControllerService{
		removeItemFn: func(ctx context.Context, tok string, pid uuid.UUID) (*cartsvc.HydratedCart, error) {
			seenProduct = pid
			return &cartsvc.HydratedCart{Token: tok}, nil
		},
	}

	handler := RemoveCartItem(svc, nil)
	req := withProductID(withCartToken(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.NewString()), productID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seenProduct != productID {
		t.Fatalf("expected product %s got %s", productID, seenProduct)
	}
}

func TestClearCartClearsToken(t *testing.T) {
	token := uuid.NewString()
	var seenToken string

	svc := stubCartControllerService{
		clearFn: func(ctx context.Context, tok string) error {
			seenToken = tok
			return nil
		},
	}

	handler := ClearCart(svc, nil)
	req := withCartToken(httptest.NewRequest(http.MethodDelete, "/", nil), token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seenToken != token {
		t.Fatalf("expected token %s got %s", token, seenToken)
	}
}
