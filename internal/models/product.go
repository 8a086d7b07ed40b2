package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID           string    `json:"id" gorm:"type:uuid;primary_key"`
	ExternalID   string    `json:"external_id" gorm:"not null"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description"`
	Type         string    `json:"type" gorm:"default:simple"`
	Status       string    `json:"status" gorm:"default:publish"`
	ManageStock  bool      `json:"manage_stock"`
	StockQty     int       `json:"stock_quantity"`
	RegularPrice float64   `json:"regular_price" gorm:"type:decimal(10,2)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProductVariation struct {
	ID           string    `json:"id" gorm:"type:uuid;primary_key"`
	ProductID    string    `json:"product_id" gorm:"type:uuid;not null"`
	ExternalID   string    `json:"external_id"`
	SKU          string    `json:"sku"`
	ManageStock  bool      `json:"manage_stock"`
	StockQty     int       `json:"stock_quantity"`
	RegularPrice float64   `json:"regular_price" gorm:"type:decimal(10,2)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
	ProductTypeGrouped  ProductType = "grouped"
)

type ProductStatus string

const (
	StatusPublish ProductStatus = "publish"
	StatusDraft   ProductStatus = "draft"
)

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (v *ProductVariation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
