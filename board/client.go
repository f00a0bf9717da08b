package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-restaurant-ordering/models"

	"github.com/gorilla/websocket"
)

// APIError is a non-2xx answer of the order API.
type APIError struct {
	StatusCode int
	Message    string
}

// ErrLocalZone is returned for days in time.Local, whose name means nothing
// to the server.
var ErrLocalZone = errors.New("day must be in a named time zone, not Local")

func (e *APIError) Error() string {
	return fmt.Sprintf("order api returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the order endpoints on behalf of the board.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Login exchanges staff credentials for a token used on later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/login", body, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *Client) ListOrders(ctx context.Context, day time.Time) ([]models.Order, error) {
	if day.Location() == time.Local {
		return nil, ErrLocalZone
	}
	q := url.Values{}
	q.Set("date", day.Format("2006-01-02"))
	q.Set("tz", day.Location().String())
	var resp struct {
		Orders    []models.Order `json:"orders"`
		TotalDocs int64          `json:"totalDocs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

type updateResponse struct {
	Success bool         `json:"success"`
	Order   models.Order `json:"order"`
}

func (c *Client) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	body := map[string]string{"orderId": orderID, "orderStatus": string(status)}
	var resp updateResponse
	if err := c.do(ctx, http.MethodPatch, "/api/orders/update-status", body, &resp); err != nil {
		return models.Order{}, err
	}
	return resp.Order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, orderID string, patch models.OrderPatch) (models.Order, error) {
	body := struct {
		OrderID string            `json:"orderId"`
		Updates models.OrderPatch `json:"updates"`
	}{orderID, patch}
	var resp updateResponse
	if err := c.do(ctx, http.MethodPatch, "/api/orders/update", body, &resp); err != nil {
		return models.Order{}, err
	}
	return resp.Order, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Subscribe streams board events to fn until ctx ends or the connection drops.
func (c *Client) Subscribe(ctx context.Context, fn func(models.BoardEvent)) error {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("connect to board events: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var event models.BoardEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		fn(event)
	}
}
