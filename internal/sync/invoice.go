package sync

import (
	"context"
	"strings"
	"time"

	"wcbsale/internal/audit"
	"wcbsale/internal/bsale"
	"wcbsale/internal/config"
	"wcbsale/internal/logger"
	"wcbsale/internal/models"

	"github.com/shopspring/decimal"
)

// InvoiceGenerator creates electronic invoices in Bsale, exactly once per
// order. The presence of the order's invoice record is the sole gate: it is
// checked before any remote call, and only a successful generation writes it.
type InvoiceGenerator struct {
	audit.Publisher

	api      *bsale.Client
	orders   OrderStore
	settings config.InvoiceSettings
	location *time.Location
	logger   *logger.Logger
}

func NewInvoiceGenerator(api *bsale.Client, orders OrderStore, settings config.InvoiceSettings, location *time.Location, logger *logger.Logger) *InvoiceGenerator {
	if location == nil {
		location = time.UTC
	}
	return &InvoiceGenerator{
		api:      api,
		orders:   orders,
		settings: settings,
		location: location,
		logger:   logger,
	}
}

func (g *InvoiceGenerator) notify(trigger, identifier, message, resultCode string) {
	g.NotifyObservers("invoice."+trigger, "invoice_generation", identifier, message, resultCode)
}

// Generate builds and submits the invoice for an order. Returns true only when
// a new invoice was generated; an already-invoiced order short-circuits with an
// informational outcome, not an error.
func (g *InvoiceGenerator) Generate(ctx context.Context, orderID, trigger string) (bool, error) {
	order, err := g.orders.Order(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, nil
	}

	if order.Invoiced() {
		g.notify(trigger, order.Number, "The order has already been invoiced in Bsale", models.ResultInfo)
		return false, nil
	}

	// The tax percentage is needed to back out net prices from the gross
	// totals stored locally. Without it no invoice can be built.
	tax, err := g.api.GetTaxByID(g.settings.TaxID)
	if err != nil {
		g.notify(trigger, order.Number, "Error getting the tax data from Bsale: "+err.Error(), models.ResultError)
		return false, nil
	}
	if tax == nil {
		g.notify(trigger, order.Number, "Error getting the tax data from Bsale: the tax was not found", models.ResultError)
		return false, nil
	}

	taxFactor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(tax.Percentage).Div(decimal.NewFromInt(100)))

	items, err := g.orders.Items(ctx, orderID)
	if err != nil {
		return false, err
	}

	var details []bsale.InvoiceDetail

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}

		// The net unit value comes from what the customer actually paid for
		// one unit, not from the list price.
		unitPaid := decimal.NewFromFloat(item.Total).Div(decimal.NewFromInt(int64(item.Quantity)))
		netUnitValue := unitPaid.Div(taxFactor)

		if item.SKU != "" {
			details = append(details, bsale.InvoiceDetail{
				Identifier:   item.SKU,
				NetUnitValue: netUnitValue.InexactFloat64(),
				Quantity:     item.Quantity,
			})
		} else {
			// Without an identifier the line is declared as a comment, and the
			// tax must be stated explicitly.
			details = append(details, bsale.InvoiceDetail{
				Comment:      item.Name,
				NetUnitValue: netUnitValue.InexactFloat64(),
				Quantity:     item.Quantity,
				TaxIDs:       []int{g.settings.TaxID},
			})
		}
	}

	if order.ShippingTotal > 0 {
		netShipping := decimal.NewFromFloat(order.ShippingTotal).Div(taxFactor)
		details = append(details, bsale.InvoiceDetail{
			Comment:      order.ShippingMethod,
			NetUnitValue: netShipping.InexactFloat64(),
			Quantity:     1,
			TaxIDs:       []int{g.settings.TaxID},
		})
	}

	// Emission and expiration are the current date at midnight in the store's
	// timezone.
	now := time.Now().In(g.location)
	emissionDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.location).Unix()

	invoice := bsale.InvoiceData{
		DocumentTypeID: g.settings.DocumentTypeID,
		OfficeID:       g.settings.OfficeID,
		PriceListID:    g.settings.PriceListID,
		EmissionDate:   emissionDate,
		ExpirationDate: emissionDate,
		DeclareSII:     g.settings.DeclareSII,
		Details:        details,
	}

	if g.settings.SendEmail && order.BillingEmail != "" {
		firstName := strings.TrimSpace(order.BillingFirstName)
		lastName := strings.TrimSpace(order.BillingLastName)

		// Bsale requires a first name to email the invoice; a missing one gets
		// a placeholder instead of failing the generation.
		if firstName == "" {
			firstName = "Customer"
			lastName = ""
		}

		invoice.Client = &bsale.InvoiceClient{
			FirstName: firstName,
			LastName:  lastName,
			Email:     order.BillingEmail,
		}
		invoice.SendEmail = true
	}

	g.logger.Debug("Generating invoice for order %s (%d lines)", order.Number, len(details))

	document, err := g.api.GenerateInvoice(invoice)
	if err != nil {
		g.notify(trigger, order.Number, "Error generating the invoice in Bsale: "+err.Error(), models.ResultError)
		return false, nil
	}

	record := models.InvoiceRecord{
		Number:      document.Number,
		PDFURL:      document.PDFURL,
		TotalAmount: document.TotalAmount,
		GeneratedAt: time.Now().UTC(),
	}
	if err := g.orders.SaveInvoiceRecord(ctx, orderID, record); err != nil {
		return false, err
	}

	g.notify(trigger, order.Number, "Invoice successfully generated in Bsale", models.ResultSuccess)

	return true, nil
}
