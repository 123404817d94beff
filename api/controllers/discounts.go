package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelarsoft/shoplane-backend/api/middleware"
	"github.com/avelarsoft/shoplane-backend/api/responses"
	"github.com/avelarsoft/shoplane-backend/api/validators"
	"github.com/avelarsoft/shoplane-backend/internal/discounts"
	"github.com/avelarsoft/shoplane-backend/pkg/logger"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

func DiscountCreate(svc *discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := middleware.TenantIDFromContext(r.Context())

		var payload discounts.CreateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := svc.Create(r.Context(), tenantID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, code)
	}
}

func DiscountGet(svc *discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := middleware.TenantIDFromContext(r.Context())

		id, err := validators.ParsePathUUID(chi.URLParam(r, "discountID"), "discountID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := svc.Get(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, code)
	}
}

func DiscountList(svc *discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := middleware.TenantIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, next, err := svc.List(r.Context(), tenantID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"discounts": found, "next_cursor": next})
	}
}

func DiscountDeactivate(svc *discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := middleware.TenantIDFromContext(r.Context())

		id, err := validators.ParsePathUUID(chi.URLParam(r, "discountID"), "discountID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), tenantID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// DiscountCheck reports whether a code is currently applicable. It mirrors
// the verdict a preview would give, without building a cart.
func DiscountCheck(svc *discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := middleware.TenantIDFromContext(r.Context())

		result, err := svc.Validate(r.Context(), tenantID, r.URL.Query().Get("code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{
			"status":     result.Status,
			"message":    result.Status.Message(),
			"applicable": result.Applicable(),
		}
		if result.Discount != nil {
			payload["amount"] = result.Discount.Amount
		}
		responses.WriteSuccess(w, payload)
	}
}
