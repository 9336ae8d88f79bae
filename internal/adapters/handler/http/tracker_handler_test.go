package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/services"
)

type testClock struct {
	mu    sync.Mutex
	today domain.CalendarDate
}

func (c *testClock) Today() domain.CalendarDate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.today
}

func (c *testClock) Set(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = domain.MustParseDate(s)
}

type writeEvent struct{ kind, outcome string }

type recordingWriteObserver struct {
	mu     sync.Mutex
	events []writeEvent
}

func (o *recordingWriteObserver) ObserveWrite(kind, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, writeEvent{kind, outcome})
}

func (o *recordingWriteObserver) Last() writeEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.events) == 0 {
		return writeEvent{}
	}
	return o.events[len(o.events)-1]
}

type trackerFixture struct {
	router   *gin.Engine
	repo     *repository.InMemoryTrackerRepository
	clock    *testClock
	observer *recordingWriteObserver
	catalog  *domain.RegionCatalog
}

func setupTrackerRouter(t *testing.T, today string) *trackerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := domain.NewRegionCatalog("early",
		domain.Region{ID: "early", Name: "Early", StartDate: domain.MustParseDate("2026-02-23")},
		domain.Region{ID: "late", Name: "Late", StartDate: domain.MustParseDate("2026-02-24")},
	)
	require.NoError(t, err)

	f := &trackerFixture{
		repo:     repository.NewInMemoryTrackerRepository(),
		clock:    &testClock{today: domain.MustParseDate(today)},
		observer: &recordingWriteObserver{},
		catalog:  catalog,
	}

	tracker := services.NewTrackerService(services.ReconcilerDeps{
		Repo:    f.repo,
		Catalog: catalog,
		Clock:   f.clock,
	}, 0)
	stats := services.NewStatsService(f.repo, catalog, f.clock)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})
	api := r.Group("/api/v1")
	adapterHTTP.NewTrackerHandler(tracker, f.observer).RegisterRoutes(api)
	adapterHTTP.NewStatsHandler(stats).RegisterRoutes(api)

	f.router = r
	return f
}

func (f *trackerFixture) do(method, path, userID, sessionID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if sessionID != "" {
		req.Header.Set(adapterHTTP.SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *trackerFixture) stored(t *testing.T, userID string) *domain.UserRecord {
	t.Helper()
	rec, err := f.repo.Load(context.Background(), userID)
	require.NoError(t, err)
	return rec
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestTrackerHandler_Unauthorized(t *testing.T) {
	f := setupTrackerRouter(t, "2026-02-25")

	w := f.do(http.MethodGet, "/tracker/state", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/stats/summary", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTrackerHandler_GetState(t *testing.T) {
	f := setupTrackerRouter(t, "2026-02-25")

	w := f.do(http.MethodGet, "/tracker/state", "u1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	sid := w.Header().Get(adapterHTTP.SessionHeader)
	assert.NotEmpty(t, sid, "a session id is handed out")

	state := decodeBody[services.TrackerState](t, w)
	assert.Equal(t, "2026-02-25", state.Today.String())
	assert.Equal(t, 3, state.DayIndex)
	assert.True(t, state.RegionUnresolved)
	assert.Equal(t, domain.ViewLive, state.Effective.View.Mode)

	w = f.do(http.MethodGet, "/tracker/state", "u1", sid, nil)
	assert.Equal(t, sid, w.Header().Get(adapterHTTP.SessionHeader))
}

func TestTrackerHandler_RecordActivity(t *testing.T) {
	t.Run("Writes today", func(t *testing.T) {
		f := setupTrackerRouter(t, "2026-02-25")

		w := f.do(http.MethodPost, "/tracker/activities", "u1", "s1", gin.H{"key": "fasting", "value": true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		eff := decodeBody[domain.EffectiveRecord](t, w)
		assert.True(t, eff.Record.Fasting)
		assert.Equal(t, 3, eff.DayIndex)
		assert.False(t, eff.PendingSync)
		assert.Equal(t, writeEvent{"activity", "accepted"}, f.observer.Last())
		assert.True(t, f.stored(t, "u1").Ledger.Get(domain.MustParseDate("2026-02-25")).Fasting)
	})

	t.Run("Explicit date", func(t *testing.T) {
		f := setupTrackerRouter(t, "2026-02-25")

		w := f.do(http.MethodPost, "/tracker/activities", "u1", "s1", gin.H{"key": "juz_3", "value": true, "date": "2026-02-23"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, []int{3}, f.stored(t, "u1").Ledger.Get(domain.MustParseDate("2026-02-23")).JuzRead)
	})

	t.Run("Before the window", func(t *testing.T) {
		f := setupTrackerRouter(t, "2026-02-20")

		w := f.do(http.MethodPost, "/tracker/activities", "u1", "s1", gin.H{"key": "fasting", "value": true})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		body := decodeBody[map[string]any](t, w)
		assert.Equal(t, "2026-02-23", body["window_start"])
		assert.Equal(t, "2026-02-20", body["target"])
		assert.Equal(t, writeEvent{"activity", "rejected"}, f.observer.Last())
		assert.Equal(t, 0, f.stored(t, "u1").Ledger.Len())

		w = f.do(http.MethodPost, "/tracker/activities", "u1", "s1", gin.H{"key": "language", "value": "ar"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, writeEvent{"metadata", "accepted"}, f.observer.Last())
		assert.Equal(t, "ar", f.stored(t, "u1").Metadata["language"])
	})

	t.Run("Bad requests", func(t *testing.T) {
		f := setupTrackerRouter(t, "2026-02-25")

		tests := []struct {
			name string
			body any
		}{
			{"Missing key", gin.H{"value": true}},
			{"Unknown field", gin.H{"key": "prayer_tahajjud", "value": true}},
			{"Wrong value type", gin.H{"key": "fasting", "value": 3}},
			{"Malformed date", gin.H{"key": "fasting", "value": true, "date": "25/02/2026"}},
			{"Impossible date", gin.H{"key": "fasting", "value": true, "date": "2026-02-30"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := f.do(http.MethodPost, "/tracker/activities", "u1", "s1", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			})
		}
		assert.Equal(t, writeEvent{"activity", "invalid"}, f.observer.Last())
		assert.Equal(t, 0, f.stored(t, "u1").Ledger.Len())
	})
}

func TestTrackerHandler_HistoricalFlow(t *testing.T) {
	f := setupTrackerRouter(t, "2026-02-25")

	w := f.do(http.MethodPost, "/tracker/view", "u1", "s1", gin.H{"date": "2026-02-24"})
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody[services.TrackerState](t, w)
	assert.Equal(t, domain.ViewHistorical, state.Effective.View.Mode)
	assert.Equal(t, 2, state.Effective.DayIndex)

	w = f.do(http.MethodPost, "/tracker/drafts", "u1", "s1", gin.H{"key": "taraweeh", "value": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[domain.EffectiveRecord](t, w).Record.TaraweehPrayed)

	w = f.do(http.MethodPost, "/tracker/activities", "u1", "s1", gin.H{"key": "prayer_fajr", "value": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/tracker/state", "u1", "other-device", nil)
	assert.Equal(t, domain.ViewLive, decodeBody[services.TrackerState](t, w).Effective.View.Mode, "other sessions stay live")

	w = f.do(http.MethodDelete, "/tracker/view", "u1", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeBody[services.TrackerState](t, w)
	assert.Equal(t, domain.ViewLive, state.Effective.View.Mode)
	assert.Nil(t, state.Overlay)

	rec := f.stored(t, "u1")
	yesterday := rec.Ledger.Get(domain.MustParseDate("2026-02-24"))
	assert.True(t, yesterday.Prayers["fajr"])
	assert.False(t, yesterday.TaraweehPrayed, "drafts are never persisted")
	assert.False(t, rec.Ledger.Has(domain.MustParseDate("2026-02-25")))

	w = f.do(http.MethodPost, "/tracker/view", "u1", "s1", gin.H{"date": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackerHandler_Region(t *testing.T) {
	f := setupTrackerRouter(t, "2026-02-23")

	w := f.do(http.MethodGet, "/tracker/regions", "u1", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	regions := decodeBody[map[string]any](t, w)
	assert.Equal(t, "early", regions["default"])
	assert.Len(t, regions["regions"], 2)

	w = f.do(http.MethodPut, "/tracker/region", "u1", "s1", gin.H{"region_id": "atlantis"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/tracker/region", "u1", "s1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/tracker/region", "u1", "s1", gin.H{"region_id": "late"})
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody[services.TrackerState](t, w)
	assert.False(t, state.RegionUnresolved)
	assert.Equal(t, 0, state.DayIndex)
	assert.True(t, state.BeforeRamadan)

	w = f.do(http.MethodPut, "/tracker/region", "u1", "s1", gin.H{"region_id": "early"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "late", f.stored(t, "u1").Region.RegionID)
}

func TestTrackerHandler_Calendar(t *testing.T) {
	f := setupTrackerRouter(t, "2026-02-25")

	w := f.do(http.MethodGet, "/tracker/calendar", "u1", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	class := decodeBody[domain.DateClass](t, w)
	assert.Equal(t, "2026-02-25", class.Date.String())
	assert.Equal(t, 3, class.DayIndex)
	assert.True(t, class.Within)

	w = f.do(http.MethodGet, "/tracker/calendar?date=2026-02-01", "u1", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	class = decodeBody[domain.DateClass](t, w)
	assert.True(t, class.Before)
	assert.Equal(t, 0, class.DayIndex)

	w = f.do(http.MethodGet, "/tracker/calendar?date=2026-2-1", "u1", "s1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackerHandler_RolloverAndSync(t *testing.T) {
	f := setupTrackerRouter(t, "2026-02-25")

	w := f.do(http.MethodPost, "/tracker/rollover", "u1", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody[map[string]any](t, w)["rolled_over"])

	w = f.do(http.MethodPost, "/tracker/rollover", "u1", "s1", nil)
	assert.Equal(t, false, decodeBody[map[string]any](t, w)["rolled_over"])

	f.clock.Set("2026-02-26")
	w = f.do(http.MethodPost, "/tracker/rollover", "u1", "s1", nil)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, true, body["rolled_over"])
	assert.Equal(t, "2026-02-26", f.stored(t, "u1").LastActiveDate.String())

	w = f.do(http.MethodPost, "/tracker/sync", "u1", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody[map[string]any](t, w)["pending_sync"])
}
