package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wcbsale/internal/models"

	"gorm.io/gorm"
)

type Orders struct {
	db *gorm.DB
}

func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

func (o *Orders) Order(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := o.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	return &order, nil
}

func (o *Orders) Items(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := o.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items of order %s: %w", orderID, err)
	}
	return items, nil
}

// MarkStockConsumed stamps the given line items as consumed. Every line of one
// consumption call carries the same operation timestamp.
func (o *Orders) MarkStockConsumed(ctx context.Context, itemIDs []string, at time.Time) error {
	if len(itemIDs) == 0 {
		return nil
	}
	err := o.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id IN ?", itemIDs).
		Update("stock_consumed_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark items consumed: %w", err)
	}
	return nil
}

// SaveInvoiceRecord persists the outcome of a successful invoice generation.
func (o *Orders) SaveInvoiceRecord(ctx context.Context, orderID string, record models.InvoiceRecord) error {
	err := o.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"invoice_number":       record.Number,
			"invoice_pdf_url":      record.PDFURL,
			"invoice_total":        record.TotalAmount,
			"invoice_generated_at": record.GeneratedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save invoice record for order %s: %w", orderID, err)
	}
	return nil
}
