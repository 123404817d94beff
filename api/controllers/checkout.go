package controllers

import (
	"net/http"

	"github.com/avelarsoft/shoplane-backend/api/middleware"
	"github.com/avelarsoft/shoplane-backend/api/responses"
	"github.com/avelarsoft/shoplane-backend/api/validators"
	checkoutsvc "github.com/avelarsoft/shoplane-backend/internal/checkout"
	pkgerrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/logger"
)

// CheckoutPreview prices a cart without reserving stock or consuming usage.
func CheckoutPreview(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		tenantID := middleware.TenantIDFromContext(r.Context())

		var payload checkoutsvc.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Preview(r.Context(), tenantID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CheckoutSubmit runs the checkout transaction and returns the created order.
func CheckoutSubmit(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		tenantID := middleware.TenantIDFromContext(r.Context())

		var payload checkoutsvc.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Execute(r.Context(), tenantID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
