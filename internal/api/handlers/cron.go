package handlers

import (
	"crypto/subtle"
	"net/http"

	"wcbsale/internal/logger"
	syncengine "wcbsale/internal/sync"

	"github.com/gin-gonic/gin"
)

// CronHandler exposes the external trigger for the catalog sync. The endpoint
// is gated by the shared secret from the cron settings.
type CronHandler struct {
	runner    *syncengine.CronRunner
	secretKey string
	logger    *logger.Logger
}

func NewCronHandler(runner *syncengine.CronRunner, secretKey string, logger *logger.Logger) *CronHandler {
	return &CronHandler{
		runner:    runner,
		secretKey: secretKey,
		logger:    logger,
	}
}

// Run triggers a catalog sync pass. Responds 403 on a secret mismatch, 204
// when the run applied at least one update, and 200 when it applied none.
func (h *CronHandler) Run(c *gin.Context) {
	provided := c.Query("secret_key")

	if h.secretKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.secretKey)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid secret key"})
		return
	}

	summary := h.runner.Run(c.Request.Context())

	if summary.Updated > 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, summary)
}
