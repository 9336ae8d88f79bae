package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

func handleError(c *gin.Context, err error) {
	var beforeWindow *domain.BeforeWindowError

	switch {
	case errors.As(err, &beforeWindow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":        "activity cannot be recorded before the observance starts",
			"target":       beforeWindow.Target,
			"window_start": beforeWindow.WindowStart,
		})

	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidFieldValue),
		errors.Is(err, domain.ErrUnknownRegion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrRegionLocked):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "region locked",
			"message": err.Error(),
		})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Printf("[ERROR] Request %s %s: store unavailable: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "store unavailable",
			"message": "changes are kept locally, please sync later",
		})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
