package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusOpen       = "open"
	StatusPending    = "pending"
	StatusAuthorized = "authorized"
	StatusPaid       = "paid"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
	StatusExpired    = "expired"
)

var ErrNotConfigured = errors.New("payment provider is not configured")

// Amount is a currency value in the provider's wire format ("22.50").
type Amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

func EUR(value decimal.Decimal) Amount {
	return Amount{Currency: "EUR", Value: value.StringFixed(2)}
}

type Metadata struct {
	OrderID   string `json:"orderId"`
	OrderDbID string `json:"orderDbId"`
}

type PaymentRequest struct {
	Amount      Amount   `json:"amount"`
	Description string   `json:"description"`
	RedirectURL string   `json:"redirectUrl"`
	WebhookURL  string   `json:"webhookUrl,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

type Link struct {
	Href string `json:"href"`
	Type string `json:"type"`
}

type Payment struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Amount   Amount   `json:"amount"`
	Metadata Metadata `json:"metadata"`
	Links    struct {
		Checkout *Link `json:"checkout"`
	} `json:"_links"`
}

// CheckoutURL is the hosted checkout page, empty when the provider gave none.
func (p Payment) CheckoutURL() string {
	if p.Links.Checkout == nil {
		return ""
	}
	return p.Links.Checkout.Href
}

// Provider creates and inspects payments.
type Provider interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (Payment, error)
	GetPayment(ctx context.Context, id string) (Payment, error)
}

// Client talks to the Mollie payments API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func NewClient(apiKey, baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type apiError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (Payment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Payment{}, fmt.Errorf("encode payment request: %w", err)
	}
	var p Payment
	if err := c.do(ctx, http.MethodPost, "/payments", bytes.NewReader(body), &p); err != nil {
		return Payment{}, err
	}
	c.logger.Printf("payment %s created for order %s", p.ID, req.Metadata.OrderID)
	return p, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (Payment, error) {
	if id == "" {
		return Payment{}, errors.New("empty payment id")
	}
	var p Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), nil, &p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create payment request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Detail != "" {
			return fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("payment provider returned non-success status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode payment response: %w", err)
	}
	return nil
}
