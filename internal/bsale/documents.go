package bsale

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// InvoiceClient is the customer the generated invoice is emailed to.
type InvoiceClient struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// InvoiceDetail is one line of an invoice. Lines with an Identifier reference a
// Bsale product; lines without one are declared as free-text comments and must
// carry an explicit tax ID list.
type InvoiceDetail struct {
	Identifier   string
	Comment      string
	NetUnitValue float64
	Quantity     int
	TaxIDs       []int
}

// InvoiceData is the payload for an electronic invoice.
type InvoiceData struct {
	DocumentTypeID int
	OfficeID       int
	PriceListID    int
	EmissionDate   int64
	ExpirationDate int64
	DeclareSII     bool
	Details        []InvoiceDetail
	Client         *InvoiceClient
	SendEmail      bool
}

// DocumentResponse is the remote outcome of a document generation.
type DocumentResponse struct {
	ID          int     `json:"id"`
	Number      int     `json:"number"`
	TotalAmount float64 `json:"totalAmount"`
	PDFURL      string  `json:"urlPdf"`
}

// GenerateDocument POSTs a document payload. The kind of document generated
// depends entirely on the data provided.
func (c *Client) GenerateDocument(documentData map[string]interface{}) (*DocumentResponse, error) {
	body, err := c.request("documents.json", http.MethodPost, documentData)
	if err != nil {
		return nil, err
	}

	var doc DocumentResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document response: %w", err)
	}

	return &doc, nil
}

// GenerateInvoice builds and submits an electronic invoice. Zero office and
// price list IDs are omitted so the Bsale account defaults apply. Tax ID lists
// are formatted as the bracketed strings Bsale expects, and each line's
// identifier is sent under the configured product identifier field.
func (c *Client) GenerateInvoice(invoice InvoiceData) (*DocumentResponse, error) {
	declareSII := 0
	if invoice.DeclareSII {
		declareSII = 1
	}

	payload := map[string]interface{}{
		"documentTypeId": invoice.DocumentTypeID,
		"emissionDate":   invoice.EmissionDate,
		"expirationDate": invoice.ExpirationDate,
		"declareSii":     declareSII,
	}

	if invoice.OfficeID != 0 {
		payload["officeId"] = invoice.OfficeID
	}
	if invoice.PriceListID != 0 {
		payload["priceListId"] = invoice.PriceListID
	}

	identifierField := "code"
	if c.productIdentifier == "barcode" {
		identifierField = "barCode"
	}

	details := make([]map[string]interface{}, 0, len(invoice.Details))
	for _, d := range invoice.Details {
		line := map[string]interface{}{
			"netUnitValue": d.NetUnitValue,
			"quantity":     d.Quantity,
		}

		if len(d.TaxIDs) > 0 {
			ids := make([]string, len(d.TaxIDs))
			for i, id := range d.TaxIDs {
				ids[i] = strconv.Itoa(id)
			}
			line["taxId"] = "[" + strings.Join(ids, ",") + "]"
		}

		if d.Identifier != "" {
			line[identifierField] = d.Identifier
		} else {
			// No identifier means the product is not in Bsale and the line is
			// declared as-is.
			line["comment"] = d.Comment
		}

		details = append(details, line)
	}
	payload["details"] = details

	if invoice.Client != nil {
		payload["client"] = invoice.Client
		if invoice.SendEmail {
			payload["sendEmail"] = 1
		}
	}

	return c.GenerateDocument(payload)
}
