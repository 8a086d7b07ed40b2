package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Order struct {
	ID               string  `json:"id" gorm:"type:uuid;primary_key"`
	Number           string  `json:"number" gorm:"not null"`
	Status           string  `json:"status"`
	ShippingTotal    float64 `json:"shipping_total" gorm:"type:decimal(10,2)"`
	ShippingMethod   string  `json:"shipping_method"`
	BillingEmail     string  `json:"billing_email"`
	BillingFirstName string  `json:"billing_first_name"`
	BillingLastName  string  `json:"billing_last_name"`

	// Invoice record. InvoiceGeneratedAt is the at-most-once gate: once set, no
	// further document is ever submitted for this order.
	InvoiceNumber      int        `json:"invoice_number"`
	InvoicePDFURL      string     `json:"invoice_pdf_url"`
	InvoiceTotal       float64    `json:"invoice_total" gorm:"type:decimal(10,2)"`
	InvoiceGeneratedAt *time.Time `json:"invoice_generated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID          string  `json:"id" gorm:"type:uuid;primary_key"`
	OrderID     string  `json:"order_id" gorm:"type:uuid;not null"`
	ProductID   string  `json:"product_id" gorm:"type:uuid"`
	VariationID string  `json:"variation_id" gorm:"type:uuid"`
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	ProductType string  `json:"product_type" gorm:"default:simple"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total" gorm:"type:decimal(10,2)"`

	// Set once the line's stock has been consumed in Bsale. Never cleared.
	StockConsumedAt *time.Time `json:"stock_consumed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceRecord is the persisted outcome of a successful invoice generation.
type InvoiceRecord struct {
	Number      int
	PDFURL      string
	TotalAmount float64
	GeneratedAt time.Time
}

// Invoiced reports whether an electronic invoice has already been generated in
// Bsale for this order.
func (o *Order) Invoiced() bool {
	return o.InvoiceGeneratedAt != nil
}

// Consumed reports whether Bsale stock has already been deducted for this line.
func (i *OrderItem) Consumed() bool {
	return i.StockConsumedAt != nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
