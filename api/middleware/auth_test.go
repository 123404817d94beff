package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/avelarsoft/shoplane-backend/pkg/auth"
	"github.com/avelarsoft/shoplane-backend/pkg/config"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	pkgerrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "shoplane-test",
	ExpirationMinutes: 15,
}

type stubVerifier struct {
	active map[uuid.UUID]bool
}

func (s *stubVerifier) VerifyActive(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	active, known := s.active[id]
	if !known {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tenant is not recognized")
	}
	if !active {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tenant is disabled")
	}
	return &models.Tenant{ID: id, IsActive: true}, nil
}

func authHandler(t *testing.T, verifier TenantVerifier, captured *uuid.UUID) http.Handler {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = TenantIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return Auth(testJWTConfig, verifier, nil)(next)
}

func mintToken(t *testing.T, tenantID uuid.UUID) string {
	t.Helper()

	token, err := pkgauth.MintAccessToken(testJWTConfig, time.Now(), pkgauth.AccessTokenPayload{TenantID: tenantID})
	require.NoError(t, err)
	return token
}

func TestAuthSeedsTenantContext(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	verifier := &stubVerifier{active: map[uuid.UUID]bool{tenantID: true}}

	var captured uuid.UUID
	handler := authHandler(t, verifier, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, tenantID))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, tenantID, captured)
}

func TestAuthRejectsMissingCredentials(t *testing.T) {
	t.Parallel()

	var captured uuid.UUID
	handler := authHandler(t, &stubVerifier{active: map[uuid.UUID]bool{}}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, uuid.Nil, captured)
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	t.Parallel()

	var captured uuid.UUID
	handler := authHandler(t, &stubVerifier{active: map[uuid.UUID]bool{}}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsDisabledTenant(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	verifier := &stubVerifier{active: map[uuid.UUID]bool{tenantID: false}}

	var captured uuid.UUID
	handler := authHandler(t, verifier, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, tenantID))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, uuid.Nil, captured)
}

func TestAuthRejectsUnknownTenant(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{active: map[uuid.UUID]bool{}}

	var captured uuid.UUID
	handler := authHandler(t, verifier, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, uuid.New()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}
