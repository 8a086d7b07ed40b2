package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Sync settings, grouped the way the admin screens persist them: one struct per
// settings domain, loaded once at startup and passed down by value. Components never
// re-read settings at runtime.

type MainSettings struct {
	// Bsale API access token. Remote calls are impossible without it.
	AccessToken string `json:"access_token"`
	// How products are identified in Bsale: "code" or "barcode".
	ProductIdentifier string `json:"product_identifier"`
}

type AdminStockSettings struct {
	// Check the stock against Bsale when a product is opened for editing.
	Edit bool `json:"edit"`
	// Apply a divergent Bsale stock without asking. Only meaningful when Edit is on.
	AutoUpdate bool `json:"auto_update"`
}

type StorefrontStockSettings struct {
	Cart     bool `json:"cart"`
	Checkout bool `json:"checkout"`
}

type TransversalStockSettings struct {
	// "wc" consumes stock on the platform's native stock reduction event,
	// "custom" consumes it when the order reaches one of OrderStatuses.
	OrderEvent    string   `json:"order_event"`
	OrderStatuses []string `json:"order_status"`
	// Consumption note template. {1} is the store name, {2} the order number.
	Note string `json:"note"`
}

type StockSettings struct {
	// The Bsale office that supplies and consumes stock. Zero disables every
	// stock channel.
	OfficeID    int                      `json:"office_id"`
	Admin       AdminStockSettings       `json:"admin"`
	Storefront  StorefrontStockSettings  `json:"storefront"`
	Transversal TransversalStockSettings `json:"transversal"`
}

type InvoiceSettings struct {
	Enabled        bool   `json:"enabled"`
	OrderStatus    string `json:"order_status"`
	DocumentTypeID int    `json:"document_type"`
	OfficeID       int    `json:"office_id"`
	PriceListID    int    `json:"price_list_id"`
	TaxID          int    `json:"tax_id"`
	DeclareSII     bool   `json:"declare_sii"`
	SendEmail      bool   `json:"send_email"`
}

type CronSettings struct {
	Enabled bool `json:"enabled"`
	// "all" syncs the whole catalog, "specific" only ProductIDs.
	Catalog            string   `json:"catalog"`
	ProductIDs         []string `json:"products"`
	ExcludedProductIDs []string `json:"excluded_products"`
	// Which product fields to reconcile: status, description, stock, price.
	Fields      []string `json:"fields"`
	PriceListID int      `json:"price_list_id"`
	// "external" waits for the trigger endpoint, "schedule" runs a daily
	// in-process timer at Time (HHMM).
	Mode      string `json:"mode"`
	Time      string `json:"time"`
	SecretKey string `json:"secret_key"`
}

type Settings struct {
	Main    MainSettings    `json:"main"`
	Stock   StockSettings   `json:"stock"`
	Invoice InvoiceSettings `json:"invoice"`
	Cron    CronSettings    `json:"cron"`
}

// DefaultSettings mirrors the defaults each settings screen falls back to when
// nothing has been persisted yet.
func DefaultSettings() *Settings {
	return &Settings{
		Main: MainSettings{
			ProductIdentifier: "code",
		},
		Stock: StockSettings{
			Transversal: TransversalStockSettings{
				OrderEvent:    "wc",
				OrderStatuses: []string{"processing"},
				Note:          "{1} - Order {2}",
			},
		},
		Invoice: InvoiceSettings{
			OrderStatus: "completed",
		},
		Cron: CronSettings{
			Catalog: "all",
			Fields:  []string{"status"},
			Mode:    "external",
			Time:    "0000",
		},
	}
}

// LoadSettings reads the settings file and fills every unset field with its
// default. A missing file yields the defaults; a malformed file is an error.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return settings, settings.validate()
}

func (s *Settings) validate() error {
	if s.Main.ProductIdentifier != "code" && s.Main.ProductIdentifier != "barcode" {
		s.Main.ProductIdentifier = "code"
	}

	if s.Stock.Transversal.OrderEvent != "wc" && s.Stock.Transversal.OrderEvent != "custom" {
		s.Stock.Transversal.OrderEvent = "wc"
	}
	if len(s.Stock.Transversal.OrderStatuses) == 0 {
		s.Stock.Transversal.OrderStatuses = []string{"processing"}
	}
	if s.Stock.Transversal.Note == "" {
		s.Stock.Transversal.Note = "{1} - Order {2}"
	}

	if s.Invoice.OrderStatus == "" {
		s.Invoice.OrderStatus = "completed"
	}

	if s.Cron.Catalog != "all" && s.Cron.Catalog != "specific" {
		s.Cron.Catalog = "all"
	}
	if s.Cron.Mode != "external" && s.Cron.Mode != "schedule" {
		s.Cron.Mode = "external"
	}
	if len(s.Cron.Time) != 4 {
		s.Cron.Time = "0000"
	}
	validFields := map[string]bool{"status": true, "description": true, "stock": true, "price": true}
	fields := make([]string, 0, len(s.Cron.Fields))
	for _, f := range s.Cron.Fields {
		if validFields[f] {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		fields = []string{"status"}
	}
	s.Cron.Fields = fields

	return nil
}

// SyncsField reports whether the cron reconciliation covers the given field.
func (c CronSettings) SyncsField(field string) bool {
	for _, f := range c.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ConsumesOnStatus reports whether a transition into status should trigger stock
// consumption. Only consulted when OrderEvent is "custom".
func (t TransversalStockSettings) ConsumesOnStatus(status string) bool {
	if t.OrderEvent != "custom" {
		return false
	}
	for _, s := range t.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
