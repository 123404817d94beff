package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avelarsoft/shoplane-backend/pkg/config"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev
	cfg.JWT = config.JWTConfig{
		Secret:            "router-test-secret",
		Issuer:            "shoplane-test",
		ExpirationMinutes: 15,
	}
	return NewRouter(Deps{Config: cfg})
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, config.AppEnvDev, rec.Header().Get("X-Shoplane-Env"))
}

func TestMetricsExposed(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/products"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/discounts/check?code=X"},
	}

	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}
