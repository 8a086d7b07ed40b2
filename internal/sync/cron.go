package sync

import (
	"context"
	"fmt"
	"time"

	"wcbsale/internal/audit"
	"wcbsale/internal/bsale"
	"wcbsale/internal/config"
	"wcbsale/internal/logger"
	"wcbsale/internal/models"
)

// CronRunner reconciles a catalog subset against Bsale in one sequential pass.
// Besides stock it can sync a product's status, description, and regular price.
// One item's failure never aborts the run, and each product is saved at most
// once per run no matter how many fields changed.
type CronRunner struct {
	audit.Publisher

	api     *bsale.Client
	catalog Catalog
	stock   config.StockSettings
	cron    config.CronSettings
	logger  *logger.Logger
}

func NewCronRunner(api *bsale.Client, catalog Catalog, stock config.StockSettings, cron config.CronSettings, logger *logger.Logger) *CronRunner {
	return &CronRunner{
		api:     api,
		catalog: catalog,
		stock:   stock,
		cron:    cron,
		logger:  logger,
	}
}

// RunSummary aggregates the per-item decisions of one run.
type RunSummary struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

const cronTrigger = "cron"

// Run executes one catalog sync pass.
func (cr *CronRunner) Run(ctx context.Context) RunSummary {
	summary := RunSummary{}

	if !cr.cron.Enabled {
		cr.NotifyObservers(cronTrigger, "catalog_sync", "", "the cron sync is disabled", models.ResultWarning)
		return summary
	}

	products, ok := cr.resolveProducts(ctx)
	if !ok {
		return summary
	}

	// A missing office only disables the stock and price portions of the run;
	// status and description still sync.
	officeSet := cr.stock.OfficeID != 0

	for i := range products {
		product := &products[i]
		summary.Processed++

		if product.SKU == "" {
			cr.NotifyObservers(cronTrigger, "catalog_sync", product.Name, "the product has no SKU and cannot be synced with Bsale", models.ResultWarning)
			continue
		}

		changed, err := cr.syncProduct(ctx, product, officeSet)
		if err != nil {
			summary.Errors++
			cr.NotifyObservers(cronTrigger, "catalog_sync", product.SKU, err.Error(), models.ResultError)
			continue
		}

		if changed {
			summary.Updated++
		}

		if officeSet && cr.cron.SyncsField("stock") && product.Type == string(models.ProductTypeVariable) {
			updated, errors := cr.syncVariationsStock(ctx, product)
			summary.Updated += updated
			summary.Errors += errors
		}
	}

	cr.NotifyObservers(cronTrigger, "catalog_sync", "",
		fmt.Sprintf("catalog sync finished: %d of %d products updated", summary.Updated, summary.Processed),
		models.ResultInfo)

	return summary
}

// resolveProducts builds the product list for this run from the catalog scope.
func (cr *CronRunner) resolveProducts(ctx context.Context) ([]models.Product, bool) {
	if cr.cron.Catalog == "specific" {
		if len(cr.cron.ProductIDs) == 0 {
			cr.NotifyObservers(cronTrigger, "catalog_sync", "", "no products are configured for the catalog sync", models.ResultWarning)
			return nil, false
		}

		products, err := cr.catalog.ProductsByIDs(ctx, cr.cron.ProductIDs)
		if err != nil {
			cr.NotifyObservers(cronTrigger, "catalog_sync", "", err.Error(), models.ResultError)
			return nil, false
		}
		return products, true
	}

	products, err := cr.catalog.AllProducts(ctx)
	if err != nil {
		cr.NotifyObservers(cronTrigger, "catalog_sync", "", err.Error(), models.ResultError)
		return nil, false
	}

	if len(cr.cron.ExcludedProductIDs) == 0 {
		return products, true
	}

	excluded := make(map[string]bool, len(cr.cron.ExcludedProductIDs))
	for _, id := range cr.cron.ExcludedProductIDs {
		excluded[id] = true
	}

	kept := products[:0]
	for _, p := range products {
		if !excluded[p.ID] {
			kept = append(kept, p)
		}
	}

	return kept, true
}

// syncProduct reconciles one product's configured fields and saves it at most
// once. The returned error covers remote failures; field-level warnings go
// straight to the observers.
func (cr *CronRunner) syncProduct(ctx context.Context, product *models.Product, officeSet bool) (bool, error) {
	changed := false
	var changes []string

	// Status and description come from the remote variant and sync regardless
	// of the product's stock management flag.
	if cr.cron.SyncsField("status") || cr.cron.SyncsField("description") {
		variant, err := cr.api.GetVariantByIdentifier(product.SKU)
		if err != nil {
			return false, fmt.Errorf("error fetching the product from Bsale: %s", err.Error())
		}

		if variant == nil {
			cr.NotifyObservers(cronTrigger, "catalog_sync", product.SKU, "the product was not found in Bsale", models.ResultWarning)
		} else {
			if cr.cron.SyncsField("status") {
				status := string(models.StatusDraft)
				if variant.Active() {
					status = string(models.StatusPublish)
				}
				if product.Status != status {
					changes = append(changes, fmt.Sprintf("status %s -> %s", product.Status, status))
					product.Status = status
					changed = true
				}
			}

			if cr.cron.SyncsField("description") && variant.Description != "" && product.Description != variant.Description {
				changes = append(changes, "description")
				product.Description = variant.Description
				changed = true
			}
		}
	}

	if officeSet && cr.cron.SyncsField("stock") && product.ManageStock {
		remoteQty, found, err := cr.api.GetStockByIdentifier(product.SKU, cr.stock.OfficeID)
		if err != nil {
			return changed, fmt.Errorf("error fetching the stock from Bsale: %s", err.Error())
		}

		if !found {
			cr.NotifyObservers(cronTrigger, "catalog_sync", product.SKU, "no stock was found in Bsale for the selected office", models.ResultWarning)
		} else if product.StockQty != remoteQty {
			changes = append(changes, fmt.Sprintf("stock %d -> %d", product.StockQty, remoteQty))
			product.StockQty = remoteQty
			changed = true
		}
	}

	if officeSet && cr.cron.SyncsField("price") && cr.cron.PriceListID != 0 {
		// The comparison is against the regular price; a sale price never
		// enters into it.
		price, found, err := cr.api.GetVariantPriceFromPriceList(cr.cron.PriceListID, product.SKU)
		if err != nil {
			return changed, fmt.Errorf("error fetching the price from Bsale: %s", err.Error())
		}

		if found && product.RegularPrice != price {
			changes = append(changes, fmt.Sprintf("price %.2f -> %.2f", product.RegularPrice, price))
			product.RegularPrice = price
			changed = true
		}
	}

	if !changed {
		return false, nil
	}

	if err := cr.catalog.SaveProduct(ctx, product); err != nil {
		return false, err
	}

	message := "product updated from Bsale"
	for _, c := range changes {
		message += "; " + c
	}
	cr.NotifyObservers(cronTrigger, "catalog_sync", product.SKU, message, models.ResultSuccess)

	return true, nil
}

func (cr *CronRunner) syncVariationsStock(ctx context.Context, product *models.Product) (updated, errors int) {
	variations, err := cr.catalog.Variations(ctx, product.ID)
	if err != nil {
		cr.NotifyObservers(cronTrigger, "catalog_sync", product.SKU, err.Error(), models.ResultError)
		return 0, 1
	}

	for i := range variations {
		variation := &variations[i]

		if variation.SKU == "" || !variation.ManageStock {
			continue
		}

		remoteQty, found, err := cr.api.GetStockByIdentifier(variation.SKU, cr.stock.OfficeID)
		if err != nil {
			errors++
			cr.NotifyObservers(cronTrigger, "catalog_sync", variation.SKU, fmt.Sprintf("error fetching the stock from Bsale: %s", err.Error()), models.ResultError)
			continue
		}

		if !found {
			cr.NotifyObservers(cronTrigger, "catalog_sync", variation.SKU, "no stock was found in Bsale for the selected office", models.ResultWarning)
			continue
		}

		if variation.StockQty == remoteQty {
			continue
		}

		before := variation.StockQty
		variation.StockQty = remoteQty
		if err := cr.catalog.SaveVariation(ctx, variation); err != nil {
			errors++
			cr.NotifyObservers(cronTrigger, "catalog_sync", variation.SKU, err.Error(), models.ResultError)
			continue
		}

		updated++
		cr.NotifyObservers(cronTrigger, "catalog_sync", variation.SKU, fmt.Sprintf("stock updated from %d to %d", before, remoteQty), models.ResultSuccess)
	}

	return updated, errors
}

// RunDaily blocks, executing Run once a day at the configured HHMM time, until
// the context is cancelled. Used when the cron mode is "schedule".
func (cr *CronRunner) RunDaily(ctx context.Context, loc *time.Location) {
	for {
		next := nextRunTime(time.Now().In(loc), cr.cron.Time)
		cr.logger.Info("Next catalog sync scheduled for %s", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
			cr.Run(ctx)
		}
	}
}

func nextRunTime(now time.Time, hhmm string) time.Time {
	hour := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	minute := int(hhmm[2]-'0')*10 + int(hhmm[3]-'0')

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
