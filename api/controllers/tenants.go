package controllers

import (
	"net/http"

	"github.com/avelarsoft/shoplane-backend/api/responses"
	"github.com/avelarsoft/shoplane-backend/api/validators"
	"github.com/avelarsoft/shoplane-backend/internal/tenants"
	"github.com/avelarsoft/shoplane-backend/pkg/logger"
)

type tenantCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=255"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
}

// TenantCreate provisions a new shop partition. Exposed only on the
// unauthenticated provisioning surface; production deployments gate it at
// the edge.
func TenantCreate(svc *tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload tenantCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.Create(r.Context(), payload.Name, payload.ContactEmail)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tenant)
	}
}
