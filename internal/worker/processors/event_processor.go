package processors

import (
	"context"
	"time"

	"wcbsale/internal/config"
	"wcbsale/internal/logger"
	syncengine "wcbsale/internal/sync"
)

// Order event types consumed from the store.
const (
	EventStockReduced  = "order.stock_reduced"
	EventStatusChanged = "order.status_changed"
)

// OrderEvent is an order lifecycle event published by the store's webhook
// bridge.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// EventProcessor routes order events to the stock consumption tracker and the
// invoice generator according to the configured triggers. The idempotence
// guards live in those components, so re-delivered or overlapping events are
// harmless here.
type EventProcessor struct {
	settings *config.Settings
	logger   *logger.Logger
	tracker  *syncengine.StockConsumptionTracker
	invoices *syncengine.InvoiceGenerator
}

func NewEventProcessor(settings *config.Settings, logger *logger.Logger, tracker *syncengine.StockConsumptionTracker, invoices *syncengine.InvoiceGenerator) *EventProcessor {
	return &EventProcessor{
		settings: settings,
		logger:   logger,
		tracker:  tracker,
		invoices: invoices,
	}
}

func (ep *EventProcessor) Process(ctx context.Context, event OrderEvent) error {
	switch event.Type {
	case EventStockReduced:
		// The native stock-reduction event only consumes when the trigger is
		// configured as "wc".
		if ep.settings.Stock.Transversal.OrderEvent != "wc" {
			return nil
		}
		return ep.tracker.ProcessOrder(ctx, event.OrderID)

	case EventStatusChanged:
		if ep.settings.Stock.Transversal.ConsumesOnStatus(event.Status) {
			if err := ep.tracker.ProcessOrder(ctx, event.OrderID); err != nil {
				return err
			}
		}

		if ep.settings.Invoice.Enabled && event.Status == ep.settings.Invoice.OrderStatus {
			if _, err := ep.invoices.Generate(ctx, event.OrderID, "order_update"); err != nil {
				return err
			}
		}

		return nil
	}

	ep.logger.Debug("Ignoring unknown event type: %s", event.Type)
	return nil
}
