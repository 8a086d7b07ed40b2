package bsale

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Entity is a remote Bsale record (office, tax, price list, document type).
type Entity struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	State      int     `json:"state"`
	Percentage float64 `json:"percentage"`
}

// EntityRef is an id/name pair returned by the name searches.
type EntityRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// isActive isolates Bsale's inverted state flag: a state of 0 means the entity
// is active. No caller should test State directly.
func isActive(e *Entity) bool {
	return e.State == 0
}

// getActiveEntityByID fetches an entity by its numeric ID. A zero ID, a 404, or
// an inactive entity all yield (nil, nil): absence is a valid outcome, not an
// error. Any other failure is returned as-is.
func (c *Client) getActiveEntityByID(entityID int, endpoint string) (*Entity, error) {
	if entityID == 0 {
		return nil, nil
	}

	body, err := c.request(endpoint+strconv.Itoa(entityID)+".json", http.MethodGet, nil)
	if err != nil {
		if c.lastError != nil && c.lastError.Code == 404 {
			return nil, nil
		}
		return nil, err
	}

	var entity Entity
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, fmt.Errorf("failed to decode entity response: %w", err)
	}

	if !isActive(&entity) {
		return nil, nil
	}

	return &entity, nil
}

// searchEntitiesByName lists active entities whose name matches. An empty name
// returns an empty list without a remote call.
func (c *Client) searchEntitiesByName(name, endpoint string, parameters url.Values) ([]EntityRef, error) {
	entities := []EntityRef{}

	if name == "" {
		return entities, nil
	}

	query := endpoint + "?state=0&fields=[name]&name=" + url.QueryEscape(name)
	if len(parameters) > 0 {
		query += "&" + parameters.Encode()
	}

	body, err := c.request(query, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	var list struct {
		Items []EntityRef `json:"items"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode entity list: %w", err)
	}

	return append(entities, list.Items...), nil
}

func (c *Client) GetOfficeByID(officeID int) (*Entity, error) {
	return c.getActiveEntityByID(officeID, "offices/")
}

func (c *Client) GetTaxByID(taxID int) (*Entity, error) {
	return c.getActiveEntityByID(taxID, "taxes/")
}

func (c *Client) GetPriceListByID(priceListID int) (*Entity, error) {
	return c.getActiveEntityByID(priceListID, "price_lists/")
}

func (c *Client) GetDocumentTypeByID(documentTypeID int) (*Entity, error) {
	return c.getActiveEntityByID(documentTypeID, "document_types/")
}

func (c *Client) SearchOfficesByName(name string) ([]EntityRef, error) {
	return c.searchEntitiesByName(name, "offices.json", nil)
}

func (c *Client) SearchTaxesByName(name string) ([]EntityRef, error) {
	return c.searchEntitiesByName(name, "taxes.json", nil)
}

func (c *Client) SearchPriceListsByName(name string) ([]EntityRef, error) {
	return c.searchEntitiesByName(name, "price_lists.json", nil)
}

// SearchInvoiceDocumentTypesByName limits the search to electronic invoice
// document types. SII code 39 corresponds to electronic invoices.
func (c *Client) SearchInvoiceDocumentTypesByName(name string) ([]EntityRef, error) {
	return c.searchEntitiesByName(name, "document_types.json", url.Values{"codesii": {"39"}})
}
