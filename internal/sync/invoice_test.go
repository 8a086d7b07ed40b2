package sync

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"wcbsale/internal/config"
	"wcbsale/internal/logger"
	"wcbsale/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceSettings() config.InvoiceSettings {
	return config.InvoiceSettings{
		Enabled:        true,
		OrderStatus:    "completed",
		DocumentTypeID: 5,
		TaxID:          1,
		DeclareSII:     true,
		SendEmail:      true,
	}
}

// invoiceStub answers the tax lookup and captures the document payload.
func invoiceStub(taxStatus int, taxBody string, payload *map[string]interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/taxes/1.json":
			w.WriteHeader(taxStatus)
			w.Write([]byte(taxBody))
		case r.URL.Path == "/documents.json":
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, payload)
			w.Write([]byte(`{"id": 99, "number": 4321, "totalAmount": 23990, "urlPdf": "https://app.bsale.cl/doc.pdf"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "not found"}`))
		}
	}
}

func newGenerator(t *testing.T, handler http.HandlerFunc, orders *fakeOrderStore, settings config.InvoiceSettings) (*InvoiceGenerator, *logRecorder) {
	t.Helper()

	generator := NewInvoiceGenerator(newStubAPI(t, handler), orders, settings, time.UTC, logger.New("error"))
	recorder := &logRecorder{}
	generator.AddObserver(recorder)

	return generator, recorder
}

func TestGenerateInvoice(t *testing.T) {
	orders := &fakeOrderStore{
		order: &models.Order{
			ID:               "order-1",
			Number:           "123",
			ShippingTotal:    2990,
			ShippingMethod:   "Flat rate",
			BillingEmail:     "customer@example.com",
			BillingFirstName: "Jane",
			BillingLastName:  "Doe",
		},
		items: []models.OrderItem{
			{ID: "item-1", SKU: "SKU-1", Name: "Shirt", Quantity: 2, Total: 19990},
			{ID: "item-2", Name: "Handmade item", Quantity: 1, Total: 5000},
		},
	}

	var payload map[string]interface{}
	generator, recorder := newGenerator(t, invoiceStub(http.StatusOK, `{"id": 1, "percentage": 19, "state": 0}`, &payload), orders, invoiceSettings())

	generated, err := generator.Generate(context.Background(), "order-1", "order_update")

	require.NoError(t, err)
	assert.True(t, generated)

	require.NotNil(t, orders.savedRecord)
	assert.Equal(t, 4321, orders.savedRecord.Number)
	assert.Equal(t, "https://app.bsale.cl/doc.pdf", orders.savedRecord.PDFURL)
	assert.Equal(t, float64(23990), orders.savedRecord.TotalAmount)
	assert.False(t, orders.savedRecord.GeneratedAt.IsZero())

	details := payload["details"].([]interface{})
	require.Len(t, details, 3)

	// Net unit value is backed out of the gross unit price with the tax factor.
	product := details[0].(map[string]interface{})
	assert.Equal(t, "SKU-1", product["code"])
	assert.InDelta(t, 19990.0/2/1.19, product["netUnitValue"], 0.01)

	// A line without an identifier is declared as a comment with an explicit tax.
	handmade := details[1].(map[string]interface{})
	assert.Equal(t, "Handmade item", handmade["comment"])
	assert.Equal(t, "[1]", handmade["taxId"])

	shipping := details[2].(map[string]interface{})
	assert.Equal(t, "Flat rate", shipping["comment"])
	assert.InDelta(t, 2990.0/1.19, shipping["netUnitValue"], 0.01)

	client := payload["client"].(map[string]interface{})
	assert.Equal(t, "Jane", client["firstName"])
	assert.Equal(t, float64(1), payload["sendEmail"])

	successes := recorder.byResult(models.ResultSuccess)
	require.Len(t, successes, 1)
	assert.Equal(t, "invoice.order_update", successes[0].Trigger)
}

func TestGenerateAlreadyInvoicedShortCircuits(t *testing.T) {
	generatedAt := time.Now().UTC()
	orders := &fakeOrderStore{
		order: &models.Order{ID: "order-1", Number: "123", InvoiceGeneratedAt: &generatedAt},
	}

	called := false
	generator, recorder := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, orders, invoiceSettings())

	generated, err := generator.Generate(context.Background(), "order-1", "manual")

	require.NoError(t, err)
	assert.False(t, generated)
	assert.False(t, called, "an invoiced order must not trigger any remote call")

	infos := recorder.byResult(models.ResultInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, "The order has already been invoiced in Bsale", infos[0].Message)
}

func TestGenerateTaxLookupFailureAborts(t *testing.T) {
	orders := &fakeOrderStore{
		order: &models.Order{ID: "order-1", Number: "123"},
		items: []models.OrderItem{{ID: "item-1", SKU: "SKU-1", Quantity: 1, Total: 1000}},
	}

	var payload map[string]interface{}
	generator, recorder := newGenerator(t, invoiceStub(http.StatusInternalServerError, `{"error": "server error"}`, &payload), orders, invoiceSettings())

	generated, err := generator.Generate(context.Background(), "order-1", "manual")

	require.NoError(t, err)
	assert.False(t, generated)
	assert.Nil(t, orders.savedRecord)
	assert.Empty(t, payload, "no document may be submitted without the tax data")

	errors := recorder.byResult(models.ResultError)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "Error getting the tax data from Bsale")
}

func TestGenerateInactiveTaxAborts(t *testing.T) {
	orders := &fakeOrderStore{
		order: &models.Order{ID: "order-1", Number: "123"},
		items: []models.OrderItem{{ID: "item-1", SKU: "SKU-1", Quantity: 1, Total: 1000}},
	}

	var payload map[string]interface{}
	generator, recorder := newGenerator(t, invoiceStub(http.StatusOK, `{"id": 1, "percentage": 19, "state": 1}`, &payload), orders, invoiceSettings())

	generated, err := generator.Generate(context.Background(), "order-1", "manual")

	require.NoError(t, err)
	assert.False(t, generated)
	assert.Empty(t, payload)

	errors := recorder.byResult(models.ResultError)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "the tax was not found")
}

func TestGenerateMissingFirstNameGetsPlaceholder(t *testing.T) {
	orders := &fakeOrderStore{
		order: &models.Order{
			ID:              "order-1",
			Number:          "123",
			BillingEmail:    "customer@example.com",
			BillingLastName: "Doe",
		},
		items: []models.OrderItem{{ID: "item-1", SKU: "SKU-1", Quantity: 1, Total: 1190}},
	}

	var payload map[string]interface{}
	generator, _ := newGenerator(t, invoiceStub(http.StatusOK, `{"id": 1, "percentage": 19, "state": 0}`, &payload), orders, invoiceSettings())

	generated, err := generator.Generate(context.Background(), "order-1", "manual")

	require.NoError(t, err)
	assert.True(t, generated)

	client := payload["client"].(map[string]interface{})
	assert.Equal(t, "Customer", client["firstName"])
	assert.Equal(t, "", client["lastName"])
}

func TestGenerateRemoteFailureSavesNothing(t *testing.T) {
	orders := &fakeOrderStore{
		order: &models.Order{ID: "order-1", Number: "123"},
		items: []models.OrderItem{{ID: "item-1", SKU: "SKU-1", Quantity: 1, Total: 1000}},
	}

	generator, recorder := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/taxes/1.json" {
			w.Write([]byte(`{"id": 1, "percentage": 19, "state": 0}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid document"}`))
	}, orders, invoiceSettings())

	generated, err := generator.Generate(context.Background(), "order-1", "manual")

	require.NoError(t, err)
	assert.False(t, generated)
	assert.Nil(t, orders.savedRecord, "a failed generation must leave the order retryable")

	errors := recorder.byResult(models.ResultError)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "invalid document")
}
