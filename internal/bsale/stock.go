package bsale

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ConsumptionDetail is one product line of a stock consumption.
type ConsumptionDetail struct {
	Identifier string
	Quantity   int
}

// GetStockByIdentifier retrieves a product's available stock at an office. The
// second return value distinguishes "no stock record" from a quantity of zero:
// an empty identifier, a zero office ID, or zero matching rows all yield
// (0, false, nil) — nothing to sync, but not an error.
func (c *Client) GetStockByIdentifier(identifier string, officeID int) (int, bool, error) {
	if identifier == "" || officeID == 0 {
		return 0, false, nil
	}

	endpoint := "stocks.json?" + c.productIdentifier + "=" + url.QueryEscape(identifier) + "&officeid=" + strconv.Itoa(officeID)

	body, err := c.request(endpoint, http.MethodGet, nil)
	if err != nil {
		return 0, false, err
	}

	var stock struct {
		Count int `json:"count"`
		Items []struct {
			QuantityAvailable float64 `json:"quantityAvailable"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &stock); err != nil {
		return 0, false, fmt.Errorf("failed to decode stock response: %w", err)
	}

	if stock.Count == 0 {
		// The product may well exist in Bsale; it just has no stock record in
		// this office.
		return 0, false, nil
	}

	return int(stock.Items[0].QuantityAvailable), true, nil
}

// ConsumeStock deducts stock for a batch of products at an office. Validation is
// all or nothing: a single empty identifier or non-positive quantity aborts the
// whole call before any request is made. The note is truncated to 100 characters,
// a hard Bsale limit. Returns false on validation or remote failure; the remote
// error, if any, is retrievable via LastError.
func (c *Client) ConsumeStock(note string, officeID int, details []ConsumptionDetail) bool {
	if officeID == 0 {
		return false
	}

	// The consumption endpoint only accepts the barcode identifier as 'barCode',
	// even though stock retrieval takes it as 'barcode'.
	identifierField := "code"
	if c.productIdentifier == "barcode" {
		identifierField = "barCode"
	}

	lines := make([]map[string]interface{}, 0, len(details))
	for _, d := range details {
		if d.Identifier == "" || d.Quantity <= 0 {
			// It's all or nothing. One invalid product and nothing is consumed.
			return false
		}

		lines = append(lines, map[string]interface{}{
			"quantity":      d.Quantity,
			identifierField: d.Identifier,
		})
	}

	if len(note) > 100 {
		note = note[:100]
	}

	body := map[string]interface{}{
		"note":     note,
		"officeId": officeID,
		"details":  lines,
	}

	if _, err := c.request("stocks/consumptions.json", http.MethodPost, body); err != nil {
		return false
	}

	return true
}

// Variant is a product variant as returned by the variants listing. Unlike the
// entity lookups, variant retrieval does not filter by state, so an inactive
// variant can be returned.
type Variant struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Code        string `json:"code"`
	BarCode     string `json:"barCode"`
	State       int    `json:"state"`
}

// Active reports whether the variant is active in Bsale (state 0).
func (v *Variant) Active() bool {
	return v.State == 0
}

// GetVariantByIdentifier looks a variant up by the configured identifier and
// returns the first match, or (nil, nil) when none exists.
func (c *Client) GetVariantByIdentifier(identifier string) (*Variant, error) {
	if identifier == "" {
		return nil, nil
	}

	body, err := c.request("variants.json?"+c.productIdentifier+"="+url.QueryEscape(identifier), http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	var list struct {
		Count int       `json:"count"`
		Items []Variant `json:"items"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode variant response: %w", err)
	}

	if list.Count == 0 {
		return nil, nil
	}

	return &list.Items[0], nil
}

// GetVariantPriceFromPriceList returns a variant's net price from a price
// list. Empty arguments or zero matching rows yield (0, false, nil).
func (c *Client) GetVariantPriceFromPriceList(priceListID int, identifier string) (float64, bool, error) {
	if priceListID == 0 || identifier == "" {
		return 0, false, nil
	}

	endpoint := "price_lists/" + strconv.Itoa(priceListID) + "/details.json?" + c.productIdentifier + "=" + url.QueryEscape(identifier)

	body, err := c.request(endpoint, http.MethodGet, nil)
	if err != nil {
		return 0, false, err
	}

	var details struct {
		Count int `json:"count"`
		Items []struct {
			VariantValue float64 `json:"variantValue"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &details); err != nil {
		return 0, false, fmt.Errorf("failed to decode price list details: %w", err)
	}

	if details.Count == 0 {
		return 0, false, nil
	}

	return details.Items[0].VariantValue, true, nil
}
