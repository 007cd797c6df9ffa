package controllers

import (
	"net/http"

	"github.com/atlasmedina/medina-backend/api/middleware"
	"github.com/atlasmedina/medina-backend/api/responses"
	"github.com/atlasmedina/medina-backend/api/validators"
	checkoutsvc "github.com/atlasmedina/medina-backend/internal/checkout"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

type checkoutRequest struct {
	Name           string  `json:"name" validate:"required"`
	Phone          string  `json:"phone" validate:"required"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	City           string  `json:"city" validate:"required"`
	Address        string  `json:"address" validate:"required"`
	AdditionalInfo *string `json:"additional_info,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

func (p checkoutRequest) toDeliveryDetails() checkoutsvc.DeliveryDetails {
	return checkoutsvc.DeliveryDetails{
		Name:           p.Name,
		Phone:          p.Phone,
		Email:          p.Email,
		City:           p.City,
		Address:        p.Address,
		AdditionalInfo: p.AdditionalInfo,
		Notes:          p.Notes,
	}
}

// Checkout turns the caller's cart into a pending order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service not configured"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token := middleware.CartTokenFromContext(ctx)
		order, err := svc.PlaceOrder(ctx, token, payload.toDeliveryDetails())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
