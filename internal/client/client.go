// Package client talks to the café API. Kiosk and Dashboard build the
// customer and staff flows on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-cafe-orders/internal/menus"
	"github.com/ariefcatur/go-cafe-orders/internal/orders"
	"github.com/ariefcatur/go-cafe-orders/internal/stockwatch"
)

var ErrFinalStatus = errors.New("order is already completed")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return e.Message + " - " + string(e.Details)
	}
	return e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:3000". A nil hc gets a client with a 10s timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) Menus(ctx context.Context) ([]menus.MenuItem, error) {
	var out []menus.MenuItem
	return out, c.do(ctx, http.MethodGet, "/api/menus", nil, &out, nil)
}

func (c *Client) Menu(ctx context.Context, id int64) (menus.MenuItem, error) {
	var out menus.MenuItem
	return out, c.do(ctx, http.MethodGet, "/api/menus/"+strconv.FormatInt(id, 10), nil, &out, nil)
}

func (c *Client) UpdateStock(ctx context.Context, id int64, stock int) (menus.StockUpdate, error) {
	var out menus.StockUpdate
	body := map[string]int{"stock": stock}
	return out, c.do(ctx, http.MethodPatch, "/api/menus/"+strconv.FormatInt(id, 10)+"/stock", body, &out, nil)
}

// PlaceOrder submits one order. An empty idempotencyKey sends no key.
func (c *Client) PlaceOrder(ctx context.Context, req orders.PlaceOrderRequest, idempotencyKey string) (orders.Order, error) {
	var out orders.Order
	var h http.Header
	if idempotencyKey != "" {
		h = http.Header{"Idempotency-Key": {idempotencyKey}}
	}
	return out, c.do(ctx, http.MethodPost, "/api/orders", req, &out, h)
}

// Orders lists orders. A zero status or limit leaves the server default.
func (c *Client) Orders(ctx context.Context, status orders.Status, limit int) ([]orders.Order, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if limit != 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []orders.Order
	return out, c.do(ctx, http.MethodGet, path, nil, &out, nil)
}

func (c *Client) Order(ctx context.Context, id int64) (orders.Order, error) {
	var out orders.Order
	return out, c.do(ctx, http.MethodGet, "/api/orders/"+strconv.FormatInt(id, 10), nil, &out, nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status orders.Status) (orders.StatusUpdate, error) {
	var out orders.StatusUpdate
	body := map[string]string{"status": string(status)}
	return out, c.do(ctx, http.MethodPatch, "/api/orders/"+strconv.FormatInt(id, 10)+"/status", body, &out, nil)
}

// AdvanceOrder moves an order one step forward. The server accepts any
// status, so the forward-only rule is applied here.
func (c *Client) AdvanceOrder(ctx context.Context, id int64) (orders.StatusUpdate, error) {
	o, err := c.Order(ctx, id)
	if err != nil {
		return orders.StatusUpdate{}, err
	}
	next, ok := o.Status.Next()
	if !ok || !orders.CanAdvance(o.Status, next) {
		return orders.StatusUpdate{}, ErrFinalStatus
	}
	return c.UpdateOrderStatus(ctx, id, next)
}

func (c *Client) Alerts(ctx context.Context) ([]stockwatch.Alert, error) {
	var out []stockwatch.Alert
	return out, c.do(ctx, http.MethodGet, "/api/inventory/alerts", nil, &out, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, header http.Header) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("server error (%d)", resp.StatusCode)}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("request failed (%d)", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Details: env.Details}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}
