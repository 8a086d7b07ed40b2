// Package store provides the catalog and order collaborators over the local
// database. The sync engine only sees these through its own interfaces.
package store

import (
	"context"
	"errors"
	"fmt"

	"wcbsale/internal/models"

	"gorm.io/gorm"
)

type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) Product(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := c.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return &product, nil
}

func (c *Catalog) Variation(ctx context.Context, id string) (*models.ProductVariation, error) {
	var variation models.ProductVariation
	err := c.db.WithContext(ctx).First(&variation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load variation %s: %w", id, err)
	}
	return &variation, nil
}

func (c *Catalog) Variations(ctx context.Context, productID string) ([]models.ProductVariation, error) {
	var variations []models.ProductVariation
	if err := c.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at").Find(&variations).Error; err != nil {
		return nil, fmt.Errorf("failed to load variations of product %s: %w", productID, err)
	}
	return variations, nil
}

func (c *Catalog) AllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.db.WithContext(ctx).Order("created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (c *Catalog) ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products by ids: %w", err)
	}
	return products, nil
}

func (c *Catalog) SaveProduct(ctx context.Context, product *models.Product) error {
	if err := c.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.ID, err)
	}
	return nil
}

func (c *Catalog) SaveVariation(ctx context.Context, variation *models.ProductVariation) error {
	if err := c.db.WithContext(ctx).Save(variation).Error; err != nil {
		return fmt.Errorf("failed to save variation %s: %w", variation.ID, err)
	}
	return nil
}
