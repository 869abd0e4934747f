// Package backend is a client for the product database API: operator login,
// order search and factory-number issuance.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/imamik/apmconsole/internal/order"
	"github.com/imamik/apmconsole/internal/util/retry"
)

// DefaultProductStatus is the quality status products are created with.
const DefaultProductStatus = "Годен"

// Endpoints are the backend URLs and the API key sent with every request.
type Endpoints struct {
	LoginURL       string
	LogoutURL      string
	OrderSearchURL string
	ProductsURL    string
	APIKey         string
}

// Observer receives the outcome of every backend round trip.
type Observer func(operation string, err error, elapsed time.Duration)

// Client talks to the backend over HTTP.
type Client struct {
	endpoints     Endpoints
	productStatus string
	httpClient    *http.Client
	timeout       time.Duration
	log           logr.Logger
	observe       Observer
	retryOpts     []retry.Option
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request, including reading the response body.
// It applies to a copy of the HTTP client, whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the debug logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithObserver registers a hook for request metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// WithProductStatus overrides the status new products are created with.
func WithProductStatus(status string) Option {
	return func(c *Client) { c.productStatus = status }
}

// WithRetry sets the bounded retry policy for idempotent calls.
func WithRetry(maxRetries int, initialDelay time.Duration) Option {
	return func(c *Client) {
		c.retryOpts = []retry.Option{retry.WithMaxRetries(maxRetries), retry.WithInitialDelay(initialDelay)}
	}
}

// NewClient creates a backend client.
func NewClient(endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		endpoints:     endpoints,
		productStatus: DefaultProductStatus,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		log:           logr.Discard(),
		observe:       func(string, error, time.Duration) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type searchRequest struct {
	Request string `json:"request"`
}

type searchResult struct {
	ID        json.RawMessage `json:"id"`
	Number    int64           `json:"number"`
	CreatedAt string          `json:"created_at"`
}

type searchResponse struct {
	SearchResult []searchResult `json:"search_result"`
}

type createProductRequest struct {
	OrderID       any    `json:"order_id"`
	DecimalNumber string `json:"decimal_number"`
	Status        string `json:"status"`
}

type createProductResponse struct {
	FactoryNumber json.RawMessage `json:"factory_number"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// Login exchanges operator credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var token string
	err := c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.post(ctx, "login", c.endpoints.LoginURL, "", loginRequest{Username: username, Password: password})
		if err != nil {
			return err
		}

		switch resp.status {
		case http.StatusOK:
			var out loginResponse
			if err := json.Unmarshal(resp.body, &out); err != nil {
				return fmt.Errorf("parse login response: %w", err)
			}
			if out.Token == "" {
				return errors.New("login response carries no token")
			}
			token = out.Token
			return nil
		case http.StatusUnauthorized:
			return &AuthError{Kind: InvalidCredentials, Username: username, Detail: resp.detail()}
		case http.StatusForbidden:
			return &AuthError{Kind: InvalidAPIKey, Username: username, Detail: resp.detail()}
		case http.StatusNotFound:
			return &AuthError{Kind: UserNotFound, Username: username, Detail: resp.detail()}
		default:
			return resp.apiError()
		}
	})
	return token, err
}

// Logout invalidates token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.post(ctx, "logout", c.endpoints.LogoutURL, token, nil)
		if err != nil {
			return err
		}
		if resp.status < 200 || resp.status >= 300 {
			return resp.apiError()
		}
		return nil
	})
}

// SearchOrders runs the backend's order search for number.
func (c *Client) SearchOrders(ctx context.Context, token, number string) ([]order.Order, error) {
	var orders []order.Order
	err := c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.post(ctx, "search_orders", c.endpoints.OrderSearchURL, token, searchRequest{Request: number})
		if err != nil {
			return err
		}
		if resp.status != http.StatusOK {
			return resp.apiError()
		}

		var out searchResponse
		if err := json.Unmarshal(resp.body, &out); err != nil {
			return fmt.Errorf("parse search response: %w", err)
		}

		orders = make([]order.Order, 0, len(out.SearchResult))
		for _, r := range out.SearchResult {
			orders = append(orders, order.Order{
				ID:        order.ID(rawString(r.ID)),
				Number:    r.Number,
				CreatedAt: r.CreatedAt,
			})
		}
		return nil
	})
	return orders, err
}

// CreateProduct registers a product under orderID and returns the factory
// number the backend issued for it.
//
// Creation is never retried: a request that timed out may still have issued
// a number.
func (c *Client) CreateProduct(ctx context.Context, token string, orderID order.ID, decimalNumber string) (string, error) {
	resp, err := c.post(ctx, "create_product", c.endpoints.ProductsURL, token, createProductRequest{
		OrderID:       jsonID(orderID),
		DecimalNumber: decimalNumber,
		Status:        c.productStatus,
	})
	if err != nil {
		return "", err
	}

	switch resp.status {
	case http.StatusCreated, http.StatusOK:
		var out createProductResponse
		if err := json.Unmarshal(resp.body, &out); err != nil {
			return "", fmt.Errorf("parse create response: %w", err)
		}
		fn := rawString(out.FactoryNumber)
		if fn == "" {
			return "", errors.New("create response carries no factory number")
		}
		return fn, nil
	default:
		return "", resp.apiError()
	}
}

func (c *Client) withRetry(ctx context.Context, op func(context.Context) error) error {
	opts := append([]retry.Option{
		retry.WithRetryIf(IsConnectivity),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			c.log.Info("backend unreachable, retrying", "attempt", attempt, "delay", delay, "error", err.Error())
		}),
	}, c.retryOpts...)
	return retry.Do(ctx, op, opts...)
}

type response struct {
	status int
	body   []byte
}

func (c *Client) post(ctx context.Context, operation, url, token string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.endpoints.APIKey)
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.do(req)
	elapsed := time.Since(start)
	c.observe(operation, err, elapsed)

	if err != nil {
		c.log.V(1).Info("backend request failed", "op", operation, "request_id", requestID, "error", err.Error())
		return nil, err
	}

	c.log.V(1).Info("backend request", "op", operation, "request_id", requestID,
		"status", resp.status, "elapsed", elapsed)
	return resp, nil
}

func (c *Client) do(req *http.Request) (*response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectivityError{URL: req.URL.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectivityError{URL: req.URL.String(), Err: fmt.Errorf("read response: %w", err)}
	}

	return &response{status: resp.StatusCode, body: body}, nil
}

// detail extracts the human-readable "detail" of an error response.
func (r *response) detail() string {
	var out errorResponse
	if err := json.Unmarshal(r.body, &out); err != nil || len(out.Detail) == 0 {
		return strings.TrimSpace(string(r.body))
	}

	var s string
	if err := json.Unmarshal(out.Detail, &s); err == nil {
		return s
	}
	return string(out.Detail)
}

func (r *response) apiError() error {
	switch r.status {
	case http.StatusNotFound:
		return &APIError{Kind: NotFound, Status: r.status, Message: r.detail()}
	case http.StatusConflict:
		return &APIError{Kind: Conflict, Status: r.status, Message: r.detail()}
	case http.StatusUnauthorized:
		return &APIError{Kind: Unauthorized, Status: r.status, Message: r.detail()}
	case http.StatusUnprocessableEntity:
		return r.validationError()
	default:
		return &APIError{Kind: Unexpected, Status: r.status, Message: r.detail()}
	}
}

// validationError maps a 422 body of the form
// {"detail": [{"loc": ["body", "<field>"], "msg": "<message>"}]}.
func (r *response) validationError() error {
	apiErr := &APIError{Kind: ValidationError, Status: r.status}

	var out errorResponse
	var details []validationDetail
	if err := json.Unmarshal(r.body, &out); err != nil || json.Unmarshal(out.Detail, &details) != nil || len(details) == 0 {
		apiErr.Message = r.detail()
		return apiErr
	}

	first := details[0]
	if len(first.Loc) > 1 {
		apiErr.Field = fmt.Sprint(first.Loc[1])
	}
	apiErr.Message = first.Msg
	return apiErr
}

// rawString renders a JSON scalar that may be a number or a string.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// jsonID sends numeric ids as JSON numbers and anything else as a string.
func jsonID(id order.ID) any {
	s := string(id)
	if s == "" {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	return json.Number(s)
}
