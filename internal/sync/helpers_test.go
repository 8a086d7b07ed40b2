package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wcbsale/internal/bsale"
	"wcbsale/internal/logger"
	"wcbsale/internal/models"
)

// newStubAPI points a real client at a local test server.
func newStubAPI(t *testing.T, handler http.HandlerFunc) *bsale.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := bsale.NewClient("test-token", "code", logger.New("error"))
	client.SetBaseURL(server.URL + "/")

	return client
}

// recordedEntry is one observer notification captured during a test.
type recordedEntry struct {
	Trigger    string
	EventType  string
	Identifier string
	Message    string
	Result     string
}

type logRecorder struct {
	entries []recordedEntry
}

func (r *logRecorder) Update(eventTrigger, eventType, identifier, message, resultCode string) {
	r.entries = append(r.entries, recordedEntry{
		Trigger:    eventTrigger,
		EventType:  eventType,
		Identifier: identifier,
		Message:    message,
		Result:     resultCode,
	})
}

func (r *logRecorder) byResult(result string) []recordedEntry {
	var matched []recordedEntry
	for _, e := range r.entries {
		if e.Result == result {
			matched = append(matched, e)
		}
	}
	return matched
}

type fakeCatalog struct {
	products   map[string]*models.Product
	variations map[string]*models.ProductVariation

	savedProducts   []string
	savedVariations []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:   map[string]*models.Product{},
		variations: map[string]*models.ProductVariation{},
	}
}

func (c *fakeCatalog) Product(ctx context.Context, id string) (*models.Product, error) {
	return c.products[id], nil
}

func (c *fakeCatalog) Variation(ctx context.Context, id string) (*models.ProductVariation, error) {
	return c.variations[id], nil
}

func (c *fakeCatalog) Variations(ctx context.Context, productID string) ([]models.ProductVariation, error) {
	var list []models.ProductVariation
	for _, v := range c.variations {
		if v.ProductID == productID {
			list = append(list, *v)
		}
	}
	return list, nil
}

func (c *fakeCatalog) AllProducts(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	for _, p := range c.products {
		list = append(list, *p)
	}
	return list, nil
}

func (c *fakeCatalog) ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var list []models.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (c *fakeCatalog) SaveProduct(ctx context.Context, product *models.Product) error {
	c.savedProducts = append(c.savedProducts, product.ID)
	c.products[product.ID] = product
	return nil
}

func (c *fakeCatalog) SaveVariation(ctx context.Context, variation *models.ProductVariation) error {
	c.savedVariations = append(c.savedVariations, variation.ID)
	c.variations[variation.ID] = variation
	return nil
}

type fakeOrderStore struct {
	order *models.Order
	items []models.OrderItem

	markedIDs   []string
	markedAt    time.Time
	savedRecord *models.InvoiceRecord
}

func (s *fakeOrderStore) Order(ctx context.Context, id string) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, nil
	}
	return s.order, nil
}

func (s *fakeOrderStore) Items(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return s.items, nil
}

func (s *fakeOrderStore) MarkStockConsumed(ctx context.Context, itemIDs []string, at time.Time) error {
	s.markedIDs = append(s.markedIDs, itemIDs...)
	s.markedAt = at
	return nil
}

func (s *fakeOrderStore) SaveInvoiceRecord(ctx context.Context, orderID string, record models.InvoiceRecord) error {
	s.savedRecord = &record
	now := record.GeneratedAt
	s.order.InvoiceGeneratedAt = &now
	return nil
}
