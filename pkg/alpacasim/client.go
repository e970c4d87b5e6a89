// Package alpacasim provides a Go client for the simulator's trading and
// market-data APIs. It is a lightweight alternative to pointing the full
// Alpaca SDK at the simulator, for tests and tooling that only need the
// endpoints the simulator serves.
package alpacasim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"alpacasim/internal/domain"
)

// ClientOpts configures a Client. TradingURL and MarketDataURL are the base
// URLs of the two facades; either may be empty if only the other is used.
// The key pair is optional — the simulator never checks it — but is sent in
// the standard Alpaca headers when present so request logs look realistic.
type ClientOpts struct {
	TradingURL    string
	MarketDataURL string
	APIKey        string
	APISecret     string
	HTTPClient    *http.Client
}

// Client talks to a running simulator.
type Client struct {
	opts       ClientOpts
	httpClient *http.Client
}

// NewClient creates a new simulator API client.
func NewClient(opts ClientOpts) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{opts: opts, httpClient: httpClient}
}

// APIError is a non-2xx response decoded from the {code, message} body.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alpacasim: %s (http %d, code %d)", e.Message, e.StatusCode, e.Code)
}

// ---------------------------------------------------------------------------
// Trading API
// ---------------------------------------------------------------------------

// GetAccount retrieves the account snapshot.
func (c *Client) GetAccount(ctx context.Context) (domain.Account, error) {
	var acct domain.Account
	err := c.do(ctx, http.MethodGet, c.opts.TradingURL+"/v2/account", nil, &acct)
	return acct, err
}

// ListPositions retrieves all open positions.
func (c *Client) ListPositions(ctx context.Context) ([]domain.Position, error) {
	var positions []domain.Position
	err := c.do(ctx, http.MethodGet, c.opts.TradingURL+"/v2/positions", nil, &positions)
	return positions, err
}

// PlaceOrder submits a new order.
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodPost, c.opts.TradingURL+"/v2/orders", req, &order)
	return order, err
}

// GetOrder retrieves an order by order id or client order id.
func (c *Client) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodGet, c.opts.TradingURL+"/v2/orders/"+url.PathEscape(id), nil, &order)
	return order, err
}

// ListOrdersOpts are the query parameters of GET /v2/orders. Zero values are
// omitted from the request.
type ListOrdersOpts struct {
	Status    string
	Symbols   []string
	After     time.Time
	Until     time.Time
	Direction string
	Limit     int
	Nested    bool
}

// ListOrders retrieves orders matching the given filter.
func (c *Client) ListOrders(ctx context.Context, opts ListOrdersOpts) ([]domain.Order, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if len(opts.Symbols) > 0 {
		q.Set("symbols", strings.Join(opts.Symbols, ","))
	}
	if !opts.After.IsZero() {
		q.Set("after", opts.After.Format(time.RFC3339))
	}
	if !opts.Until.IsZero() {
		q.Set("until", opts.Until.Format(time.RFC3339))
	}
	if opts.Direction != "" {
		q.Set("direction", opts.Direction)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Nested {
		q.Set("nested", "true")
	}

	endpoint := c.opts.TradingURL + "/v2/orders"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var orders []domain.Order
	err := c.do(ctx, http.MethodGet, endpoint, nil, &orders)
	return orders, err
}

// ---------------------------------------------------------------------------
// Market-data API
// ---------------------------------------------------------------------------

// GetLatestQuotes retrieves one random quote per symbol, keyed by symbol.
func (c *Client) GetLatestQuotes(ctx context.Context, symbols []string) (map[string]domain.Quote, error) {
	q := url.Values{"symbols": {strings.Join(symbols, ",")}}
	var quotes map[string]domain.Quote
	err := c.do(ctx, http.MethodGet, c.opts.MarketDataURL+"/v2/stocks/quotes/latest?"+q.Encode(), nil, &quotes)
	return quotes, err
}

// GetLatestQuote retrieves the abbreviated single-symbol quote snapshot.
func (c *Client) GetLatestQuote(ctx context.Context, symbol string) (domain.QuoteSnapshot, error) {
	endpoint := c.opts.MarketDataURL + "/v2/stocks/" + url.PathEscape(symbol) + "/quotes/latest"
	var snap domain.QuoteSnapshot
	err := c.do(ctx, http.MethodGet, endpoint, nil, &snap)
	return snap, err
}

// GetBarsOpts are the query parameters of the bars endpoint. The simulator
// accepts them for compatibility but does not shape its output by them.
type GetBarsOpts struct {
	Start     string
	End       string
	Timeframe string
}

// GetBars retrieves random historical bars for a symbol.
func (c *Client) GetBars(ctx context.Context, symbol string, opts GetBarsOpts) (domain.BarsResponse, error) {
	q := url.Values{}
	if opts.Start != "" {
		q.Set("start", opts.Start)
	}
	if opts.End != "" {
		q.Set("end", opts.End)
	}
	if opts.Timeframe != "" {
		q.Set("timeframe", opts.Timeframe)
	}

	endpoint := c.opts.MarketDataURL + "/v2/stocks/" + url.PathEscape(symbol) + "/bars"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp domain.BarsResponse
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Transport-level failures retry with exponential backoff; HTTP error
// statuses are returned immediately.
const (
	maxAttempts = 3
	baseDelay   = 100 * time.Millisecond
)

// do performs one request and decodes the response into out. Non-2xx
// responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	var resp *http.Response
	delay := baseDelay
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.opts.APIKey != "" {
			req.Header.Set("APCA-API-KEY-ID", c.opts.APIKey)
			req.Header.Set("APCA-API-SECRET-KEY", c.opts.APISecret)
		}

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}
		if attempt == maxAttempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
