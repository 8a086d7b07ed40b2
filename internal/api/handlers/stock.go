package handlers

import (
	"net/http"

	"wcbsale/internal/logger"
	syncengine "wcbsale/internal/sync"

	"github.com/gin-gonic/gin"
)

// StockHandler exposes the storefront and admin stock sync channels.
type StockHandler struct {
	reconciler *syncengine.StockReconciler
	logger     *logger.Logger
}

func NewStockHandler(reconciler *syncengine.StockReconciler, logger *logger.Logger) *StockHandler {
	return &StockHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// CartAdd handles the storefront add-to-cart sync trigger.
func (h *StockHandler) CartAdd(c *gin.Context) {
	var req struct {
		ProductID   string `json:"product_id" binding:"required"`
		VariationID string `json:"variation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reconciler.CartAdd(c.Request.Context(), req.ProductID, req.VariationID); err != nil {
		h.logger.Error("Cart sync failed for product %s: %v", req.ProductID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync stock"})
		return
	}

	c.Status(http.StatusAccepted)
}

// Checkout handles the storefront checkout-start sync trigger.
func (h *StockHandler) Checkout(c *gin.Context) {
	var req struct {
		Items []syncengine.CartLine `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reconciler.Checkout(c.Request.Context(), req.Items); err != nil {
		h.logger.Error("Checkout sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync stock"})
		return
	}

	c.Status(http.StatusAccepted)
}

// AdminCheck handles the supervised product-edit stock check. Divergent
// quantities come back flagged for confirmation unless auto-update is on or
// the operator confirmed the prompt (confirm=1).
func (h *StockHandler) AdminCheck(c *gin.Context) {
	productID := c.Param("id")
	confirm := c.Query("confirm") == "1"

	result, err := h.reconciler.AdminCheck(c.Request.Context(), productID, confirm)
	if err != nil {
		h.logger.Error("Stock check failed for product %s: %v", productID, err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
