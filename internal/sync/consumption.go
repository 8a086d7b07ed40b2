package sync

import (
	"context"
	"regexp"
	"strings"
	"time"

	"wcbsale/internal/audit"
	"wcbsale/internal/bsale"
	"wcbsale/internal/config"
	"wcbsale/internal/logger"
	"wcbsale/internal/models"
)

// StockConsumptionTracker deducts order stock in Bsale at most once per order
// line. Lines already carrying a consumed mark are never sent again; all
// unconsumed lines of one order go out in a single consumption call, and only a
// successful call marks them. A failed call leaves every line unmarked so a
// later trigger can retry.
type StockConsumptionTracker struct {
	audit.Publisher

	api       *bsale.Client
	orders    OrderStore
	settings  config.StockSettings
	storeName string
	logger    *logger.Logger
}

func NewStockConsumptionTracker(api *bsale.Client, orders OrderStore, settings config.StockSettings, storeName string, logger *logger.Logger) *StockConsumptionTracker {
	return &StockConsumptionTracker{
		api:       api,
		orders:    orders,
		settings:  settings,
		storeName: storeName,
		logger:    logger,
	}
}

// ProcessOrder checks an order's lines and consumes the stock of the ones not
// yet consumed. Safe to call any number of times for the same order.
func (t *StockConsumptionTracker) ProcessOrder(ctx context.Context, orderID string) error {
	if t.settings.OfficeID == 0 {
		return nil
	}

	order, err := t.orders.Order(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	items, err := t.orders.Items(ctx, orderID)
	if err != nil {
		return err
	}

	var details []bsale.ConsumptionDetail
	var itemIDs []string

	for i := range items {
		item := &items[i]

		if item.ProductType == string(models.ProductTypeGrouped) {
			// Grouped products are an unsupported case: the child lines are
			// not exploded, and nothing is consumed for them.
			t.NotifyObservers("stock_consumption", "consume_bsale_stock", order.Number,
				"grouped product line '"+item.Name+"' skipped: stock consumption of grouped products is not supported", models.ResultWarning)
			continue
		}

		if item.Consumed() {
			continue
		}

		details = append(details, bsale.ConsumptionDetail{
			Identifier: item.SKU,
			Quantity:   item.Quantity,
		})
		itemIDs = append(itemIDs, item.ID)
	}

	if len(details) == 0 {
		return nil
	}

	note := FormatNote(t.settings.Transversal.Note, t.storeName, order.Number)

	t.logger.Debug("Consuming stock for order %s (%d lines)", order.Number, len(details))

	if !t.api.ConsumeStock(note, t.settings.OfficeID, details) {
		message := "invalid consumption data"
		if remoteErr := t.api.LastError(); remoteErr != nil {
			message = remoteErr.Message
		}
		t.NotifyObservers("stock_consumption", "consume_bsale_stock", order.Number,
			"Error consuming stock in Bsale: "+message, models.ResultError)
		return nil
	}

	operationTime := time.Now().UTC()
	if err := t.orders.MarkStockConsumed(ctx, itemIDs, operationTime); err != nil {
		return err
	}

	t.NotifyObservers("stock_consumption", "consume_bsale_stock", order.Number,
		"Stock successfully consumed in Bsale", models.ResultSuccess)

	return nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// FormatNote renders a consumption note template. {1} becomes the store name
// and {2} the order number; HTML tags and newlines are stripped, and the result
// is capped at the 100 characters Bsale accepts.
func FormatNote(template, storeName, orderNumber string) string {
	note := htmlTagPattern.ReplaceAllString(template, "")

	replacer := strings.NewReplacer(
		"{1}", storeName,
		"{2}", orderNumber,
		"\r", "",
		"\n", "",
	)
	note = replacer.Replace(note)

	if len(note) > 100 {
		note = note[:100]
	}

	return note
}
