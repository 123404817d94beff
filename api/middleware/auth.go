package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/avelarsoft/shoplane-backend/api/responses"
	pkgauth "github.com/avelarsoft/shoplane-backend/pkg/auth"
	"github.com/avelarsoft/shoplane-backend/pkg/config"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	pkgerrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/logger"
)

// TenantVerifier confirms the tenant named in the token exists and is active.
type TenantVerifier interface {
	VerifyActive(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// Auth validates the bearer token, verifies the tenant claim against the
// tenant directory and seeds the request context with the tenant id. Every
// route behind this middleware is tenant-scoped.
func Auth(cfg config.JWTConfig, verifier TenantVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.TenantID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing tenant claim"))
				return
			}

			if verifier != nil {
				if _, err := verifier.VerifyActive(r.Context(), claims.TenantID); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}

			ctx := WithTenantID(r.Context(), claims.TenantID)
			if logg != nil {
				ctx = logg.WithTenantID(ctx, claims.TenantID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
