package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/atlasmedina/medina-backend/api/middleware"
	"github.com/atlasmedina/medina-backend/api/responses"
	"github.com/atlasmedina/medina-backend/api/validators"
	authsvc "github.com/atlasmedina/medina-backend/internal/auth"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateCredentialsRequest struct {
	CurrentPassword string  `json:"current_password" validate:"required"`
	NewEmail        *string `json:"new_email,omitempty" validate:"omitempty,email"`
	NewPassword     *string `json:"new_password,omitempty" validate:"omitempty,min=8"`
}

func Login(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service not configured"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Login(ctx, authsvc.LoginRequest{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func Logout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service not configured"))
			return
		}

		accessID := middleware.AccessIDFromContext(ctx)
		if err := svc.Logout(ctx, accessID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// Register provisions an admin account. The route is only mounted outside
// production, so there is no further gating here.
func Register(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service not configured"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.Register(ctx, authsvc.RegisterRequest{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// UpdateCredentials rotates the signed-in admin's email and/or password. The
// current password is always required.
func UpdateCredentials(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service not configured"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}

		var payload updateCredentialsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := authsvc.UpdateCredentialsRequest{
			UserID:          userID,
			CurrentPassword: payload.CurrentPassword,
		}
		if payload.NewEmail != nil {
			input.NewEmail = *payload.NewEmail
		}
		if payload.NewPassword != nil {
			input.NewPassword = *payload.NewPassword
		}

		user, err := svc.UpdateCredentials(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}
