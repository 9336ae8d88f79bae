package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/services"
)

const SessionHeader = "X-Session-ID"

type WriteObserver interface {
	ObserveWrite(kind, outcome string)
}

type TrackerHandler struct {
	svc      *services.TrackerService
	observer WriteObserver
}

func NewTrackerHandler(svc *services.TrackerService, observer WriteObserver) *TrackerHandler {
	return &TrackerHandler{
		svc:      svc,
		observer: observer,
	}
}

type recordActivityRequest struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value"`
	Date  string `json:"date"`
}

type stageDraftRequest struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value"`
}

type selectRegionRequest struct {
	RegionID string `json:"region_id" binding:"required"`
}

type viewDateRequest struct {
	Date string `json:"date" binding:"required"`
}

type regionsResponse struct {
	Default string          `json:"default"`
	Regions []domain.Region `json:"regions"`
}

type rolloverResponse struct {
	RolledOver bool                  `json:"rolled_over"`
	State      services.TrackerState `json:"state"`
}

type syncResponse struct {
	PendingSync bool `json:"pending_sync"`
}

func (h *TrackerHandler) RegisterRoutes(router *gin.RouterGroup) {
	tracker := router.Group("/tracker")
	{
		tracker.GET("/state", h.GetState)
		tracker.POST("/activities", h.RecordActivity)
		tracker.POST("/drafts", h.StageDraft)
		tracker.PUT("/region", h.SelectRegion)
		tracker.GET("/regions", h.ListRegions)
		tracker.POST("/view", h.ViewDate)
		tracker.DELETE("/view", h.ReturnToLive)
		tracker.POST("/rollover", h.CheckRollover)
		tracker.POST("/sync", h.Sync)
		tracker.GET("/calendar", h.ClassifyDate)
	}
}

// session resolves the caller's reconciler and echoes the session id back so
// clients that did not send one can reuse it.
func (h *TrackerHandler) session(c *gin.Context) (*services.Reconciler, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	r, sessionID, err := h.svc.Session(c.Request.Context(), userID, c.GetHeader(SessionHeader))
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	c.Header(SessionHeader, sessionID)
	return r, true
}

func (h *TrackerHandler) observe(key string, rec domain.EffectiveRecord, err error) {
	if h.observer == nil {
		return
	}
	kind := "unknown"
	if fk, perr := domain.ParseFieldKey(key); perr == nil {
		kind = fk.Kind.String()
	}

	var beforeWindow *domain.BeforeWindowError
	switch {
	case errors.As(err, &beforeWindow):
		h.observer.ObserveWrite(kind, "rejected")
	case err != nil:
		h.observer.ObserveWrite(kind, "invalid")
	case rec.PendingSync:
		h.observer.ObserveWrite(kind, "pending")
	default:
		h.observer.ObserveWrite(kind, "accepted")
	}
}

// GetState godoc
// @Summary      Current tracker state
// @Description  Today, window, effective record for the date in view, overlay and streaks.
// @Tags         tracker
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session id"
// @Success      200  {object}  services.TrackerState
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracker/state [get]
func (h *TrackerHandler) GetState(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r.State())
}

// RecordActivity godoc
// @Summary      Record an activity field
// @Description  Writes to the date in view, or to an explicit date when one is given.
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string                 false  "Session id"
// @Param        request       body    recordActivityRequest  true   "Field write"
// @Success      200  {object}  domain.EffectiveRecord
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracker/activities [post]
func (h *TrackerHandler) RecordActivity(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}

	var req recordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	var (
		rec domain.EffectiveRecord
		err error
	)
	if req.Date != "" {
		var date domain.CalendarDate
		date, err = domain.ParseDate(req.Date)
		if err == nil {
			rec, err = r.RecordActivityOn(c.Request.Context(), date, req.Key, req.Value)
		}
	} else {
		rec, err = r.RecordActivity(c.Request.Context(), req.Key, req.Value)
	}

	h.observe(req.Key, rec, err)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// StageDraft godoc
// @Summary      Stage an uncommitted field
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string             false  "Session id"
// @Param        request       body    stageDraftRequest  true   "Draft"
// @Success      200  {object}  domain.EffectiveRecord
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracker/drafts [post]
func (h *TrackerHandler) StageDraft(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}

	var req stageDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	rec, err := r.StageDraft(req.Key, req.Value)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// SelectRegion godoc
// @Summary      Select the region profile
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string               false  "Session id"
// @Param        request       body    selectRegionRequest  true   "Region"
// @Success      200  {object}  services.TrackerState
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracker/region [put]
func (h *TrackerHandler) SelectRegion(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}

	var req selectRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	state, err := r.SelectRegion(c.Request.Context(), req.RegionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// ListRegions godoc
// @Summary      Selectable regions
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  regionsResponse
// @Security     BearerAuth
// @Router       /tracker/regions [get]
func (h *TrackerHandler) ListRegions(c *gin.Context) {
	catalog := h.svc.Catalog()
	c.JSON(http.StatusOK, regionsResponse{
		Default: catalog.DefaultID(),
		Regions: catalog.Regions(),
	})
}

// ViewDate godoc
// @Summary      Switch to a historical date
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string           false  "Session id"
// @Param        request       body    viewDateRequest  true   "Date"
// @Success      200  {object}  services.TrackerState
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracker/view [post]
func (h *TrackerHandler) ViewDate(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}

	var req viewDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := r.ViewDate(date); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, r.State())
}

// ReturnToLive godoc
// @Summary      Return to today
// @Tags         tracker
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session id"
// @Success      200  {object}  services.TrackerState
// @Security     BearerAuth
// @Router       /tracker/view [delete]
func (h *TrackerHandler) ReturnToLive(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}
	r.ReturnToLive()
	c.JSON(http.StatusOK, r.State())
}

// CheckRollover godoc
// @Summary      Check for a day change
// @Tags         tracker
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session id"
// @Success      200  {object}  rolloverResponse
// @Security     BearerAuth
// @Router       /tracker/rollover [post]
func (h *TrackerHandler) CheckRollover(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}

	rolled, err := r.CheckDayRollover(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rolloverResponse{RolledOver: rolled, State: r.State()})
}

// Sync godoc
// @Summary      Retry unsynced writes
// @Tags         tracker
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session id"
// @Success      200  {object}  syncResponse
// @Failure      503  {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracker/sync [post]
func (h *TrackerHandler) Sync(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}

	if err := r.Flush(c.Request.Context()); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, syncResponse{PendingSync: r.PendingSync()})
}

// ClassifyDate godoc
// @Summary      Place a date in the user's window
// @Tags         tracker
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session id"
// @Param        date          query   string  false  "YYYY-MM-DD, defaults to today"
// @Success      200  {object}  domain.DateClass
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracker/calendar [get]
func (h *TrackerHandler) ClassifyDate(c *gin.Context) {
	r, ok := h.session(c)
	if !ok {
		return
	}

	key := c.Query("date")
	if key == "" {
		key = h.svc.Today().String()
	}

	window, _ := r.Window()
	class, err := window.ClassifyDate(key)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}
