package handlers

import (
	"net/http"
	"strconv"
	"time"

	"wcbsale/internal/audit"
	"wcbsale/internal/logger"

	"github.com/gin-gonic/gin"
)

// LogHandler exposes the operation log for the admin screens.
type LogHandler struct {
	store  *audit.Store
	logger *logger.Logger
}

func NewLogHandler(store *audit.Store, logger *logger.Logger) *LogHandler {
	return &LogHandler{
		store:  store,
		logger: logger,
	}
}

// List returns operation log entries, newest first, narrowed by the query
// parameters.
func (h *LogHandler) List(c *gin.Context) {
	filter := audit.Filter{
		EventTrigger: c.Query("event_trigger"),
		Identifier:   c.Query("identifier"),
		Message:      c.Query("message"),
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		filter.To = t
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}
	if offset := c.Query("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		filter.Offset = n
	}

	entries, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list operation log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"count": len(entries),
	})
}

// Clear empties the operation log.
func (h *LogHandler) Clear(c *gin.Context) {
	if err := h.store.Clear(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear operation log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear logs"})
		return
	}

	c.Status(http.StatusNoContent)
}
