// Package sync holds the reconciliation engine: the rules deciding, per product,
// variation, or order, whether local state diverges from Bsale and how to bring
// the two in line without duplicating side effects.
package sync

import (
	"context"
	"time"

	"wcbsale/internal/models"
)

// Catalog is the product side of the local store.
type Catalog interface {
	Product(ctx context.Context, id string) (*models.Product, error)
	Variation(ctx context.Context, id string) (*models.ProductVariation, error)
	Variations(ctx context.Context, productID string) ([]models.ProductVariation, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
	SaveVariation(ctx context.Context, variation *models.ProductVariation) error
}

// OrderStore is the order side of the local store.
type OrderStore interface {
	Order(ctx context.Context, id string) (*models.Order, error)
	Items(ctx context.Context, orderID string) ([]models.OrderItem, error)
	MarkStockConsumed(ctx context.Context, itemIDs []string, at time.Time) error
	SaveInvoiceRecord(ctx context.Context, orderID string, record models.InvoiceRecord) error
}

// Outcome is the decision taken for a single product or variation.
type Outcome struct {
	Identifier string `json:"identifier"`
	Result     string `json:"result"`
	Message    string `json:"message"`
	LocalQty   int    `json:"local_qty"`
	RemoteQty  int    `json:"remote_qty"`
	Updated    bool   `json:"updated"`
	// Set on supervised channels when a divergence was found but not applied;
	// the operator has to confirm the update.
	NeedsConfirmation bool `json:"needs_confirmation"`
}
