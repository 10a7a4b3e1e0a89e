package paypal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrGatewayUnavailable wraps network and server-side failures from PayPal.
// Callers may retry the whole operation; the client itself never retries.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Client talks to the PayPal REST API: OAuth token, order creation, and
// payment capture.
type Client struct {
	baseURL      string
	clientID     string
	appSecret    string
	httpClient   *http.Client
	currencyCode string
}

// Config holds PayPal API credentials and endpoint.
type Config struct {
	BaseURL   string // e.g. https://api-m.sandbox.paypal.com
	ClientID  string
	AppSecret string
}

// NewClient creates a new PayPal client.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		appSecret:    cfg.AppSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		currencyCode: "USD",
	}
}

// Capture is the slice of a capture response the order workflow consumes.
type Capture struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Payer         Payer  `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// Payer identifies who paid.
type Payer struct {
	EmailAddress string `json:"email_address"`
}

// AmountFor returns the captured amount belonging to captureID. The captures
// list is matched by id, never indexed positionally.
func (c *Capture) AmountFor(captureID string) string {
	for _, unit := range c.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			if capture.ID == captureID {
				return capture.Amount.Value
			}
		}
	}
	// Fall back to the top-level id: single-capture responses report the
	// order id at the top and the capture amount in the only entry.
	for _, unit := range c.PurchaseUnits {
		if len(unit.Payments.Captures) > 0 {
			return unit.Payments.Captures[0].Amount.Value
		}
	}
	return ""
}

// generateAccessToken performs the client-credentials OAuth exchange.
func (c *Client) generateAccessToken() (string, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.appSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach PayPal: %v: %w", err, ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", gatewayError("token", resp.StatusCode, body)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("PayPal returned an empty access token")
	}
	return tokenResp.AccessToken, nil
}

// CreateOrder creates a remote PayPal order for the given amount and returns
// the gateway order id.
func (c *Client) CreateOrder(amount decimal.Decimal) (string, error) {
	token, err := c.generateAccessToken()
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": c.currencyCode,
					"value":         amount.StringFixed(2),
				},
			},
		},
	}
	body, err := c.post("/v2/checkout/orders", token, payload)
	if err != nil {
		return "", err
	}

	var orderResp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return "", fmt.Errorf("failed to parse order response: %w", err)
	}
	if orderResp.ID == "" {
		return "", fmt.Errorf("PayPal returned an empty order id")
	}
	return orderResp.ID, nil
}

// CapturePayment captures an approved PayPal order.
func (c *Client) CapturePayment(gatewayOrderID string) (*Capture, error) {
	token, err := c.generateAccessToken()
	if err != nil {
		return nil, err
	}

	body, err := c.post("/v2/checkout/orders/"+gatewayOrderID+"/capture", token, nil)
	if err != nil {
		return nil, err
	}

	var capture Capture
	if err := json.Unmarshal(body, &capture); err != nil {
		return nil, fmt.Errorf("failed to parse capture response: %w", err)
	}
	return &capture, nil
}

func (c *Client) post(path, token string, payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach PayPal: %v: %w", err, ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, gatewayError(path, resp.StatusCode, body)
	}
	return body, nil
}

func gatewayError(what string, status int, body []byte) error {
	if status >= 500 {
		return fmt.Errorf("PayPal %s error (%d): %s: %w", what, status, body, ErrGatewayUnavailable)
	}
	return fmt.Errorf("PayPal %s error (%d): %s", what, status, body)
}
