package sync

import (
	"context"
	"fmt"

	"wcbsale/internal/audit"
	"wcbsale/internal/bsale"
	"wcbsale/internal/config"
	"wcbsale/internal/logger"
	"wcbsale/internal/models"
)

// StockReconciler compares local stock against Bsale and applies the remote
// quantity when they diverge. The storefront channel applies automatically and
// reports through the observers; the admin channel is supervised and returns
// its outcomes to the caller instead, unless auto-update is enabled.
type StockReconciler struct {
	audit.Publisher

	api      *bsale.Client
	catalog  Catalog
	settings config.StockSettings
	logger   *logger.Logger
}

func NewStockReconciler(api *bsale.Client, catalog Catalog, settings config.StockSettings, logger *logger.Logger) *StockReconciler {
	return &StockReconciler{
		api:      api,
		catalog:  catalog,
		settings: settings,
		logger:   logger,
	}
}

// stockTarget is a product or variation seen only through what the shared
// algorithm needs: an identifier, a stock-management flag, a quantity, and a
// way to persist a new quantity.
type stockTarget struct {
	sku      string
	managing bool
	quantity int
	apply    func(int) error
}

func productTarget(ctx context.Context, catalog Catalog, p *models.Product) stockTarget {
	return stockTarget{
		sku:      p.SKU,
		managing: p.ManageStock,
		quantity: p.StockQty,
		apply: func(qty int) error {
			p.StockQty = qty
			return catalog.SaveProduct(ctx, p)
		},
	}
}

func variationTarget(ctx context.Context, catalog Catalog, v *models.ProductVariation) stockTarget {
	return stockTarget{
		sku:      v.SKU,
		managing: v.ManageStock,
		quantity: v.StockQty,
		apply: func(qty int) error {
			v.StockQty = qty
			return catalog.SaveVariation(ctx, v)
		},
	}
}

// checkTarget runs the shared reconciliation algorithm for one target. It never
// touches the observers; channel wrappers decide what gets reported.
func (r *StockReconciler) checkTarget(target stockTarget, autoApply bool) Outcome {
	outcome := Outcome{Identifier: target.sku}

	if target.sku == "" {
		outcome.Result = models.ResultWarning
		outcome.Message = "the product has no SKU; its stock cannot be synced with Bsale"
		return outcome
	}

	if !target.managing {
		outcome.Result = models.ResultInfo
		outcome.Message = "stock management is disabled for this product"
		return outcome
	}

	remoteQty, found, err := r.api.GetStockByIdentifier(target.sku, r.settings.OfficeID)
	if err != nil {
		outcome.Result = models.ResultError
		outcome.Message = fmt.Sprintf("error fetching the stock from Bsale: %s", err.Error())
		return outcome
	}

	if !found {
		outcome.Result = models.ResultWarning
		outcome.Message = "no stock was found in Bsale for the selected office"
		return outcome
	}

	outcome.LocalQty = target.quantity
	outcome.RemoteQty = remoteQty

	if target.quantity == remoteQty {
		outcome.Result = models.ResultSuccess
		outcome.Message = fmt.Sprintf("the stock is already in sync with Bsale (%d)", remoteQty)
		return outcome
	}

	if !autoApply {
		outcome.Result = models.ResultWarning
		outcome.NeedsConfirmation = true
		outcome.Message = fmt.Sprintf("the local stock (%d) differs from the stock in Bsale (%d)", target.quantity, remoteQty)
		return outcome
	}

	if err := target.apply(remoteQty); err != nil {
		outcome.Result = models.ResultError
		outcome.Message = fmt.Sprintf("error saving the updated stock: %s", err.Error())
		return outcome
	}

	outcome.Result = models.ResultSuccess
	outcome.Updated = true
	outcome.Message = fmt.Sprintf("stock updated from %d to %d", target.quantity, remoteQty)
	return outcome
}

// reportStorefront routes a storefront outcome through the observers. An
// in-sync result is not worth a log row; everything else is.
func (r *StockReconciler) reportStorefront(trigger string, outcome Outcome) {
	if outcome.Result == models.ResultSuccess && !outcome.Updated {
		return
	}
	r.NotifyObservers(trigger, "stock_update", outcome.Identifier, outcome.Message, outcome.Result)
}

// CartAdd syncs the stock of a product the moment it lands in a cart. Variable
// products resolve to the chosen variation.
func (r *StockReconciler) CartAdd(ctx context.Context, productID, variationID string) error {
	if !r.settings.Storefront.Cart || r.settings.OfficeID == 0 {
		return nil
	}

	target, err := r.resolveTarget(ctx, productID, variationID)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	r.reportStorefront("add_to_cart", r.checkTarget(*target, true))
	return nil
}

// CartLine is one line of a cart at checkout time.
type CartLine struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id"`
}

// Checkout syncs every cart line when the checkout starts. A stock zeroed here
// is surfaced by the platform's own checkout validation, not by this method.
func (r *StockReconciler) Checkout(ctx context.Context, lines []CartLine) error {
	if !r.settings.Storefront.Checkout || r.settings.OfficeID == 0 {
		return nil
	}

	for _, line := range lines {
		target, err := r.resolveTarget(ctx, line.ProductID, line.VariationID)
		if err != nil {
			return err
		}
		if target == nil {
			continue
		}

		r.reportStorefront("check_cart_items_checkout", r.checkTarget(*target, true))
	}

	return nil
}

func (r *StockReconciler) resolveTarget(ctx context.Context, productID, variationID string) (*stockTarget, error) {
	product, err := r.catalog.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	if product.Type == string(models.ProductTypeVariable) && variationID != "" {
		variation, err := r.catalog.Variation(ctx, variationID)
		if err != nil {
			return nil, err
		}
		if variation == nil {
			return nil, nil
		}
		target := variationTarget(ctx, r.catalog, variation)
		return &target, nil
	}

	target := productTarget(ctx, r.catalog, product)
	return &target, nil
}

// AdminCheckResult is what the supervised product-edit check hands back to the
// operator: one outcome per syncable target, plus a flag when a variable
// product has variations that were left out.
type AdminCheckResult struct {
	Outcomes           []Outcome `json:"outcomes"`
	ExcludedVariations bool      `json:"excluded_variations"`
}

// AdminCheck runs the product-edit stock check. With auto-update off,
// divergences come back flagged for confirmation; with it on (or with confirm
// set, the operator having accepted the prompt) they are applied directly.
func (r *StockReconciler) AdminCheck(ctx context.Context, productID string, confirm bool) (*AdminCheckResult, error) {
	product, err := r.catalog.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %s not found", productID)
	}

	r.logger.Debug("Stock check requested for product %s", productID)

	if !r.settings.Admin.Edit {
		return &AdminCheckResult{}, nil
	}

	autoApply := confirm || r.settings.Admin.AutoUpdate
	result := &AdminCheckResult{}

	if product.Type == string(models.ProductTypeVariable) {
		variations, err := r.catalog.Variations(ctx, productID)
		if err != nil {
			return nil, err
		}

		for i := range variations {
			variation := &variations[i]
			if variation.SKU == "" || !variation.ManageStock {
				result.ExcludedVariations = true
				continue
			}
			result.Outcomes = append(result.Outcomes, r.checkTarget(variationTarget(ctx, r.catalog, variation), autoApply))
		}

		return result, nil
	}

	result.Outcomes = append(result.Outcomes, r.checkTarget(productTarget(ctx, r.catalog, product), autoApply))
	return result, nil
}
