package bsale

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wcbsale/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-token", "code", logger.New("error"))
	client.SetBaseURL(server.URL + "/")

	return client
}

func TestRequestWithoutAccessToken(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client.accessToken = ""

	_, err := client.request("offices/1.json", http.MethodGet, nil)

	require.Error(t, err)
	assert.False(t, called, "no request should reach the server without a token")

	remoteErr := client.LastError()
	require.NotNil(t, remoteErr)
	assert.Equal(t, 422, remoteErr.Code)
}

func TestRequestSendsAccessTokenHeader(t *testing.T) {
	var gotToken string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("access_token")
		w.Write([]byte(`{}`))
	})

	_, err := client.request("offices/1.json", http.MethodGet, nil)

	require.NoError(t, err)
	assert.Equal(t, "test-token", gotToken)
}

func TestRequestErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    int
		wantMessage string
	}{
		{
			name:        "error field in payload",
			status:      http.StatusBadRequest,
			body:        `{"error": "officeId is not valid"}`,
			wantCode:    400,
			wantMessage: "officeId is not valid",
		},
		{
			name:        "no error field falls back to status text",
			status:      http.StatusInternalServerError,
			body:        `{"foo": "bar"}`,
			wantCode:    500,
			wantMessage: "Internal Server Error",
		},
		{
			name:        "unparseable body falls back to status text",
			status:      http.StatusBadGateway,
			body:        "<html>gateway</html>",
			wantCode:    502,
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.request("offices/1.json", http.MethodGet, nil)

			require.Error(t, err)
			remoteErr := client.LastError()
			require.NotNil(t, remoteErr)
			assert.Equal(t, tt.wantCode, remoteErr.Code)
			assert.Equal(t, tt.wantMessage, remoteErr.Message)
			assert.Nil(t, client.LastResponse())
		})
	}
}

func TestGetOfficeByID(t *testing.T) {
	tests := []struct {
		name     string
		officeID int
		status   int
		body     string
		wantNil  bool
		wantName string
	}{
		{
			name:     "active office",
			officeID: 1,
			status:   http.StatusOK,
			body:     `{"id": 1, "name": "Main Office", "state": 0}`,
			wantName: "Main Office",
		},
		{
			name:     "inactive office is absent",
			officeID: 2,
			status:   http.StatusOK,
			body:     `{"id": 2, "name": "Closed Office", "state": 1}`,
			wantNil:  true,
		},
		{
			name:     "404 is absent, not an error",
			officeID: 3,
			status:   http.StatusNotFound,
			body:     `{"error": "not found"}`,
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			office, err := client.GetOfficeByID(tt.officeID)

			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, office)
				return
			}
			require.NotNil(t, office)
			assert.Equal(t, tt.wantName, office.Name)
		})
	}
}

func TestGetOfficeByIDZeroSkipsRequest(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	office, err := client.GetOfficeByID(0)

	require.NoError(t, err)
	assert.Nil(t, office)
	assert.False(t, called)
}

func TestSearchEntitiesByNameEmptySkipsRequest(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	offices, err := client.SearchOfficesByName("")

	require.NoError(t, err)
	assert.Empty(t, offices)
	assert.False(t, called)
}

func TestSearchInvoiceDocumentTypesFiltersBySIICode(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"items": [{"id": 5, "name": "Factura Electronica"}]}`))
	})

	types, err := client.SearchInvoiceDocumentTypesByName("Factura")

	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, 5, types[0].ID)
	assert.Contains(t, gotQuery, "codesii=39")
	assert.Contains(t, gotQuery, "state=0")
}

func TestGetStockByIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantQty   int
		wantFound bool
	}{
		{
			name:      "stock record exists",
			body:      `{"count": 1, "items": [{"quantityAvailable": 12}]}`,
			wantQty:   12,
			wantFound: true,
		},
		{
			name:      "zero quantity is still found",
			body:      `{"count": 1, "items": [{"quantityAvailable": 0}]}`,
			wantQty:   0,
			wantFound: true,
		},
		{
			name:      "no rows means absent, not zero stock",
			body:      `{"count": 0, "items": []}`,
			wantQty:   0,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			qty, found, err := client.GetStockByIdentifier("SKU-1", 1)

			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, qty)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}

func TestGetStockByIdentifierEmptyArgsSkipRequest(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	qty, found, err := client.GetStockByIdentifier("", 1)
	require.NoError(t, err)
	assert.Zero(t, qty)
	assert.False(t, found)

	qty, found, err = client.GetStockByIdentifier("SKU-1", 0)
	require.NoError(t, err)
	assert.Zero(t, qty)
	assert.False(t, found)

	assert.False(t, called)
}

func TestConsumeStockRejectsInvalidLines(t *testing.T) {
	tests := []struct {
		name     string
		officeID int
		details  []ConsumptionDetail
	}{
		{
			name:     "zero office",
			officeID: 0,
			details:  []ConsumptionDetail{{Identifier: "SKU-1", Quantity: 1}},
		},
		{
			name:     "empty identifier aborts the whole batch",
			officeID: 1,
			details: []ConsumptionDetail{
				{Identifier: "SKU-1", Quantity: 1},
				{Identifier: "", Quantity: 2},
			},
		},
		{
			name:     "non-positive quantity aborts the whole batch",
			officeID: 1,
			details: []ConsumptionDetail{
				{Identifier: "SKU-1", Quantity: 1},
				{Identifier: "SKU-2", Quantity: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			ok := client.ConsumeStock("note", tt.officeID, tt.details)

			assert.False(t, ok)
			assert.False(t, called, "invalid data must never reach Bsale")
		})
	}
}

func TestConsumeStockPayload(t *testing.T) {
	var payload map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		w.Write([]byte(`{}`))
	})
	client.productIdentifier = "barcode"

	note := strings.Repeat("x", 150)
	ok := client.ConsumeStock(note, 7, []ConsumptionDetail{
		{Identifier: "7801234567890", Quantity: 3},
	})

	require.True(t, ok)
	assert.Equal(t, float64(7), payload["officeId"])
	assert.Len(t, payload["note"], 100)

	details := payload["details"].([]interface{})
	require.Len(t, details, 1)
	line := details[0].(map[string]interface{})
	// The consumption endpoint wants 'barCode', not 'barcode'.
	assert.Equal(t, "7801234567890", line["barCode"])
	assert.NotContains(t, line, "barcode")
	assert.Equal(t, float64(3), line["quantity"])
}

func TestConsumeStockRemoteFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "insufficient stock"}`))
	})

	ok := client.ConsumeStock("note", 1, []ConsumptionDetail{{Identifier: "SKU-1", Quantity: 1}})

	assert.False(t, ok)
	require.NotNil(t, client.LastError())
	assert.Equal(t, "insufficient stock", client.LastError().Message)
}

func TestGetVariantPriceFromPriceList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 1, "items": [{"variantValue": 19990}]}`))
	})

	price, found, err := client.GetVariantPriceFromPriceList(2, "SKU-1")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, float64(19990), price)
}

func TestGenerateInvoicePayload(t *testing.T) {
	var payload map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		w.Write([]byte(`{"id": 99, "number": 1234, "totalAmount": 23990, "urlPdf": "https://app.bsale.cl/doc.pdf"}`))
	})

	doc, err := client.GenerateInvoice(InvoiceData{
		DocumentTypeID: 5,
		OfficeID:       0, // account default applies
		PriceListID:    0,
		EmissionDate:   1700000000,
		ExpirationDate: 1700000000,
		DeclareSII:     true,
		Details: []InvoiceDetail{
			{Identifier: "SKU-1", NetUnitValue: 8395.8, Quantity: 2},
			{Comment: "Flat rate shipping", NetUnitValue: 2512.6, Quantity: 1, TaxIDs: []int{1}},
		},
		Client: &InvoiceClient{
			FirstName: "Customer",
			Email:     "customer@example.com",
		},
		SendEmail: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1234, doc.Number)
	assert.Equal(t, "https://app.bsale.cl/doc.pdf", doc.PDFURL)

	// Zero office and price list IDs must not be sent at all.
	assert.NotContains(t, payload, "officeId")
	assert.NotContains(t, payload, "priceListId")
	assert.Equal(t, float64(1), payload["declareSii"])
	assert.Equal(t, float64(1), payload["sendEmail"])

	details := payload["details"].([]interface{})
	require.Len(t, details, 2)

	product := details[0].(map[string]interface{})
	assert.Equal(t, "SKU-1", product["code"])
	assert.NotContains(t, product, "comment")
	assert.NotContains(t, product, "taxId")

	shipping := details[1].(map[string]interface{})
	assert.Equal(t, "Flat rate shipping", shipping["comment"])
	// Tax ID lists are sent as bracketed strings.
	assert.Equal(t, "[1]", shipping["taxId"])
}
