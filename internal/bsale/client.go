// Package bsale is the client for the Bsale REST API. All requests go through a
// single path that normalizes transport and HTTP failures into RemoteError, and
// the last response/error of a client is retrievable afterwards. The client
// performs no retries; a failed call is the caller's to log and skip.
package bsale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wcbsale/internal/logger"
)

const DefaultBaseURL = "https://api.bsale.io/v1/"

// RemoteError is the single error shape for every failed Bsale call. Code is the
// HTTP status, or 0 for transport failures, or 422 for a missing access token.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("bsale: %s (code %d)", e.Message, e.Code)
}

type Client struct {
	baseURL     string
	accessToken string
	// How products are identified in Bsale requests: "code" or "barcode". The
	// identifier is case-sensitive for some endpoints: stock retrieval takes
	// 'barcode' but stock consumption only accepts 'barCode'.
	productIdentifier string
	httpClient        *http.Client
	logger            *logger.Logger

	lastResponse []byte
	lastError    *RemoteError
}

func NewClient(accessToken, productIdentifier string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:           DefaultBaseURL,
		accessToken:       accessToken,
		productIdentifier: productIdentifier,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SetBaseURL overrides the API base URL. Used to point the client at a sandbox
// or a test server.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// LastResponse returns the body of the last successful request, or nil if no
// request was made or the last one failed.
func (c *Client) LastResponse() []byte {
	return c.lastResponse
}

// LastError returns the error of the last request, or nil if no request was
// made or the last one succeeded.
func (c *Client) LastError() *RemoteError {
	return c.lastError
}

func (c *Client) request(endpoint, method string, body interface{}) ([]byte, error) {
	if c.accessToken == "" {
		c.lastError = &RemoteError{Code: 422, Message: "the Bsale API access token is not set"}
		return nil, c.lastError
	}

	c.lastResponse = nil
	c.lastError = nil

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			c.lastError = &RemoteError{Code: 0, Message: fmt.Sprintf("failed to encode request body: %v", err)}
			return nil, c.lastError
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		c.lastError = &RemoteError{Code: 0, Message: err.Error()}
		return nil, c.lastError
	}

	req.Header.Set("access_token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Bsale request: %s %s", method, endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.lastError = &RemoteError{Code: 0, Message: err.Error()}
		return nil, c.lastError
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.lastError = &RemoteError{Code: 0, Message: err.Error()}
		return nil, c.lastError
	}

	if resp.StatusCode/100 != 2 {
		// Bsale error payloads carry the reason in an "error" field; fall back
		// to the HTTP status text when they don't.
		var errBody struct {
			Error string `json:"error"`
		}
		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			message = errBody.Error
		}

		c.lastError = &RemoteError{Code: resp.StatusCode, Message: message}
		c.logger.Warn("Bsale request %s %s failed: %s (code %d)", method, endpoint, message, resp.StatusCode)
		return nil, c.lastError
	}

	c.lastResponse = respBody

	return respBody, nil
}
