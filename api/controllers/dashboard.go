package controllers

import (
	"net/http"

	"github.com/atlasmedina/medina-backend/api/responses"
	"github.com/atlasmedina/medina-backend/internal/notifications"
	statsvc "github.com/atlasmedina/medina-backend/internal/stats"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

// AdminDashboard serves the back-office overview aggregates.
func AdminDashboard(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats service not configured"))
			return
		}

		dashboard, err := svc.Dashboard(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}

// AdminNotificationBadge serves the live pending-order count maintained by
// the change-feed consumer.
func AdminNotificationBadge(counter *notifications.Counter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if counter == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification counter not configured"))
			return
		}

		responses.WriteSuccess(w, map[string]int64{"pending_orders": counter.Value()})
	}
}
