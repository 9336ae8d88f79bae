package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/summary", h.GetMonthlySummary)
}

// GetMonthlySummary godoc
// @Summary      Month-at-a-glance summary
// @Description  Completion rates, daily progress, prayers per day, juz read and the combined streak score.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  domain.MonthlySummary
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Security     BearerAuth
// @Router       /stats/summary [get]
func (h *StatsHandler) GetMonthlySummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := h.svc.GetMonthlySummary(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
