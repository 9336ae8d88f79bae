package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/services"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/observability"
)

func setupFullRouter(t *testing.T) (*adapterHTTP.RouterDependencies, *services.TokenService) {
	t.Helper()

	catalog, err := domain.NewRegionCatalog("",
		domain.Region{ID: "early", StartDate: domain.MustParseDate("2026-02-23")})
	require.NoError(t, err)
	clock := &testClock{today: domain.MustParseDate("2026-02-25")}
	repo := repository.NewInMemoryTrackerRepository()
	metrics := observability.NewMetrics()

	tokens, err := services.NewTokenService("router-test-secret", "sawm-test", time.Hour)
	require.NoError(t, err)

	tracker := services.NewTrackerService(services.ReconcilerDeps{Repo: repo, Catalog: catalog, Clock: clock}, 0)
	return &adapterHTTP.RouterDependencies{
		TrackerHandler: adapterHTTP.NewTrackerHandler(tracker, metrics),
		StatsHandler:   adapterHTTP.NewStatsHandler(services.NewStatsService(repo, catalog, clock)),
		Tokens:         tokens,
		Metrics:        metrics,
		StartTime:      time.Now(),
	}, tokens
}

func TestRouter(t *testing.T) {
	deps, tokens := setupFullRouter(t)
	router := adapterHTTP.NewRouter(*deps)

	t.Run("Health reports in-memory store", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[map[string]any](t, w)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "in-memory", body["database"])
		assert.Equal(t, "disabled", body["redis"])
	})

	t.Run("API requires a bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tracker/state", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid token reaches the tracker", func(t *testing.T) {
		token, err := tokens.GenerateToken("u1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/tracker/activities", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "empty body")

		req = httptest.NewRequest(http.MethodGet, "/api/v1/tracker/state", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(adapterHTTP.SessionHeader))
	})

	t.Run("Metrics are exposed", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "http_requests_total")
	})
}
