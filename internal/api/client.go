// Package api is the typed HTTP client of the storefront API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	PathCartAdd      = "/api/cart/add"
	PathCartUpdate   = "/api/cart/update"
	PathCartRemove   = "/api/cart/remove"
	PathCartCount    = "/api/cart/count"
	PathAutocomplete = "/api/products/autocomplete"
	PathOrderStatus  = "/admin/orders/update-status"
	PathBulkAction   = "/admin/bulk-action"
)

// Client calls the storefront API. It never retries: a failed call is
// reported to the caller, which rolls back and tells the user.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	validate *validator.Validate
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	logger   *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the API at cfg.BaseURL.
func NewClient(cfg config.ClientConfig, cb config.CircuitBreakerConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		validate: newValidator(),
		logger:   logger.With("component", "api"),
	}
	if cb.Enabled {
		c.breaker = newCircuitBreaker(cb)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newCircuitBreaker(cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[*http.Response] {
	st := gobreaker.Settings{
		Name:        "storefront-api-cb",
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(counts.TotalSuccesses+counts.TotalFailures > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.TotalSuccesses+counts.TotalFailures)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			// A superseded search is cancelled on purpose; it says nothing about the server.
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return gobreaker.NewCircuitBreaker[*http.Response](st)
}

// errServerStatus marks 5xx answers as failures for the circuit breaker.
type errServerStatus int

func (e errServerStatus) Error() string {
	return "server error status " + strconv.Itoa(int(e))
}

// AddToCart adds quantity units of a product to the cart.
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (CartResult, error) {
	return c.cartAction(ctx, "add to cart", PathCartAdd, AddRequest{ProductID: productID, Quantity: quantity})
}

// UpdateCart sets the quantity of a cart item; 0 removes it.
func (c *Client) UpdateCart(ctx context.Context, productID int64, quantity int) (CartResult, error) {
	return c.cartAction(ctx, "update cart", PathCartUpdate, UpdateRequest{ProductID: productID, Quantity: quantity})
}

// RemoveFromCart removes a product from the cart.
func (c *Client) RemoveFromCart(ctx context.Context, productID int64) (CartResult, error) {
	return c.cartAction(ctx, "remove from cart", PathCartRemove, RemoveRequest{ProductID: productID})
}

func (c *Client) cartAction(ctx context.Context, op, path string, req any) (CartResult, error) {
	var resp CartResponse
	if err := c.post(ctx, op, path, req, &resp); err != nil {
		return CartResult{}, err
	}
	if !resp.Success {
		return CartResult{}, &RejectedError{Op: op, Message: resp.Message}
	}
	return CartResult{Message: resp.Message, CartCount: resp.CartCount}, nil
}

// CartCount returns the number of items in the signed-in user's cart.
func (c *Client) CartCount(ctx context.Context) (int, error) {
	var resp CartResponse
	if err := c.do(ctx, "cart count", http.MethodGet, PathCartCount, nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.CartCount, nil
}

// Autocomplete returns up to limit products matching query.
func (c *Client) Autocomplete(ctx context.Context, query string, limit int) ([]Product, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	var resp AutocompleteResponse
	if err := c.do(ctx, "autocomplete", http.MethodGet, PathAutocomplete, q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Suggestions == nil {
		return []Product{}, nil
	}
	return resp.Suggestions, nil
}

// UpdateOrderStatus moves an order to status and returns the server's message.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (string, error) {
	return c.adminAction(ctx, "update order status", PathOrderStatus, StatusRequest{OrderID: orderID, Status: status})
}

// BulkAction applies action to the listed item ids.
func (c *Client) BulkAction(ctx context.Context, action string, items []string) (string, error) {
	return c.adminAction(ctx, "bulk action", PathBulkAction, BulkRequest{Action: action, Items: items})
}

// Delete posts to an admin delete URL such as /admin/products/delete/3.
func (c *Client) Delete(ctx context.Context, path string) (string, error) {
	if !strings.HasPrefix(path, "/admin/") {
		return "", &ValidationError{Op: "delete", Fields: map[string]string{"URL": "must be an /admin/ path"}}
	}
	return c.adminAction(ctx, "delete", path, nil)
}

func (c *Client) adminAction(ctx context.Context, op, path string, req any) (string, error) {
	var resp Envelope
	if err := c.post(ctx, op, path, req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &RejectedError{Op: op, Message: resp.Message}
	}
	return resp.Message, nil
}

func (c *Client) post(ctx context.Context, op, path string, req, out any) error {
	if req != nil {
		if err := c.check(op, req); err != nil {
			return err
		}
	}
	return c.do(ctx, op, http.MethodPost, path, nil, req, out)
}

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " item(s)"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed on rule: " + fe.Tag()
	}
}

// check validates req and converts validator errors into a ValidationError.
func (c *Client) check(op string, req any) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields[fieldErr.Field()] = ruleMessage(fieldErr)
		}
		return &ValidationError{Op: op, Fields: fields}
	}
	return &ValidationError{Op: op, Fields: map[string]string{"request": err.Error()}}
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(web.RequestIDHeader, reqID)

	log := c.logger.With("op", op, "request_id", reqID)
	log.DebugContext(ctx, "Sending request", "method", method, "url", u.String())

	resp, err := c.send(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.WarnContext(ctx, "Request failed", "error", err)
		}
		var status errServerStatus
		if errors.As(err, &status) {
			return &TransportError{Op: op, StatusCode: int(status)}
		}
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WarnContext(ctx, "Unexpected status", "status", resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// send performs the exchange, through the circuit breaker when one is configured.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(req)
	}
	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			return nil, errServerStatus(resp.StatusCode)
		}
		return resp, nil
	})
}
