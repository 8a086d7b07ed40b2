package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wcbsale/internal/logger"
	syncengine "wcbsale/internal/sync"
	"wcbsale/internal/worker/processors"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
)

// OrderHandler bridges store order webhooks onto the event topic and exposes
// manual invoice generation.
type OrderHandler struct {
	writer   *kafka.Writer
	invoices *syncengine.InvoiceGenerator
	logger   *logger.Logger
}

func NewOrderHandler(writer *kafka.Writer, invoices *syncengine.InvoiceGenerator, logger *logger.Logger) *OrderHandler {
	return &OrderHandler{
		writer:   writer,
		invoices: invoices,
		logger:   logger,
	}
}

// Event receives an order lifecycle webhook and publishes it to the order
// topic for the worker to pick up.
func (h *OrderHandler) Event(c *gin.Context) {
	var event processors.OrderEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if event.Type == "" || event.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type and order_id are required"})
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode event"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
	}); err != nil {
		h.logger.Error("Failed to publish order event for %s: %v", event.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish event"})
		return
	}

	c.Status(http.StatusAccepted)
}

// Invoice generates an invoice for an order on demand. Already invoiced
// orders come back as 200 with generated=false.
func (h *OrderHandler) Invoice(c *gin.Context) {
	orderID := c.Param("id")

	generated, err := h.invoices.Generate(c.Request.Context(), orderID, "manual")
	if err != nil {
		h.logger.Error("Manual invoice generation failed for order %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if generated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"generated": generated})
}
