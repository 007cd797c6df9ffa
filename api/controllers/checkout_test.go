package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/atlasmedina/medina-backend/api/middleware"
	checkoutsvc "github.com/atlasmedina/medina-backend/internal/checkout"
	"github.com/atlasmedina/medina-backend/pkg/db/models"
	"github.com/atlasmedina/medina-backend/pkg/enums"
)

type stubCheckoutService struct {
	placeOrderFn func(ctx context.Context, token string, details checkoutsvc.DeliveryDetails) (*models.Order, error)
}

func (s stubCheckoutService) PlaceOrder(ctx context.Context, token string, details checkoutsvc.DeliveryDetails) (*models.Order, error) {
	if s.placeOrderFn != nil {
		return s.placeOrderFn(ctx, token, details)
	}
	return &models.Order{}, nil
}

func TestCheckoutPlacesOrder(t *testing.T) {
	token := uuid.NewString()
	orderID := uuid.New()
	var seenToken string
	var seenDetails checkoutsvc.DeliveryDetails

	svc := stubCheckoutService{
		placeOrderFn: func(ctx context.Context, tok string, details checkoutsvc.DeliveryDetails) (*models.Order, error) {
			seenToken = tok
			seenDetails = details
			return &models.Order{
				ID:          orderID,
				OrderNumber: "ORD-20260830-ABC123",
				Status:      enums.OrderStatusPending,
			}, nil
		},
	}

	body := `{"name":"Fatima Z","phone":"+212 600-000000","city":"Casablanca","address":"12 Rue des Fleurs","notes":"call on arrival"}`
	handler := Checkout(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = req.WithContext(middleware.WithCartToken(req.Context(), token))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if seenToken != token {
		t.Fatalf("expected token %s got %s", token, seenToken)
	}
	if seenDetails.Name != "Fatima Z" || seenDetails.City != "Casablanca" {
		t.Fatalf("details not forwarded: %+v", seenDetails)
	}
	if seenDetails.Notes == nil || *seenDetails.Notes != "call on arrival" {
		t.Fatalf("notes not forwarded: %v", seenDetails.Notes)
	}

	var envelope struct {
		Data models.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "ORD-20260830-ABC123" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestCheckoutRejectsMissingFields(t *testing.T) {
	called := false
	svc := stubCheckoutService{
		placeOrderFn: func(ctx context.Context, tok string, details checkoutsvc.DeliveryDetails) (*models.Order, error) {
			called = true
			return nil, nil
		},
	}

	handler := Checkout(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Fatima Z"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not be called on invalid payload")
	}
}

func TestCheckoutRejectsBadEmail(t *testing.T) {
	handler := Checkout(stubCheckoutService{}, nil)
	body := `{"name":"Fatima Z","phone":"0600000000","email":"not-an-email","city":"Rabat","address":"1 Avenue Mohammed V"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
