// Package stub serves an in-memory implementation of the storefront API for
// local development and tests.
package stub

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/abgdnv/storefront/internal/api"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Server is the stub storefront. Besides serving the API it lets tests hold
// requests, inject failures and inspect what was received.
type Server struct {
	mu       sync.Mutex
	store    *store
	validate *validator.Validate
	logger   *slog.Logger
	requests metric.Int64Counter

	calls    map[string]int
	bodies   map[string][]byte
	holds    map[string]chan struct{}
	failures map[string][]int
}

// Option customises a Server.
type Option func(*Server)

// WithCatalog replaces the default catalogue.
func WithCatalog(products []api.Product) Option {
	return func(s *Server) {
		s.store = newStore(products)
	}
}

// WithCart seeds the cart with product id → quantity.
func WithCart(items map[int64]int) Option {
	return func(s *Server) {
		for id, q := range items {
			s.store.cart[id] = q
		}
	}
}

// New creates a stub server with the default catalogue and an empty cart.
func New(logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		store:    newStore(DefaultCatalog()),
		validate: validator.New(),
		logger:   logger.With("component", "stub"),
		calls:    make(map[string]int),
		bodies:   make(map[string][]byte),
		holds:    make(map[string]chan struct{}),
		failures: make(map[string][]int),
	}
	requests, err := otel.Meter("storefront/stub").Int64Counter("storefront_stub_requests",
		metric.WithDescription("Requests received by the stub server"))
	if err != nil {
		panic(fmt.Sprintf("failed to create storefront_stub_requests counter: %v", err))
	}
	s.requests = requests
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving the API and /metrics.
func (s *Server) Handler() http.Handler {
	mux := server.NewChiRouter(s.logger, "/healthz", "/metrics")
	mux.Use(s.instrument)

	mux.Route("/api", func(r chi.Router) {
		r.Post("/cart/add", s.addToCart)
		r.Post("/cart/update", s.updateCart)
		r.Post("/cart/remove", s.removeFromCart)
		r.Get("/cart/count", s.cartCount)
		r.Get("/products/autocomplete", s.autocomplete)
	})
	mux.Route("/admin", func(r chi.Router) {
		r.Post("/orders/update-status", s.updateOrderStatus)
		r.Post("/bulk-action", s.bulkAction)
		r.Post("/products/delete/{id}", s.deleteProduct)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSON(w, s.logger, http.StatusOK, web.Envelope{Success: true, Message: "ok"})
	})
	return mux
}

// Hold makes requests to path wait until the returned release is called.
// Held requests are counted by Calls as soon as they arrive.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[path] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[path] == ch {
				delete(s.holds, path)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// FailNext makes the next len(statuses) requests to path answer with the
// given HTTP statuses instead of being served.
func (s *Server) FailNext(path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], statuses...)
}

// Calls returns how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// LastBody returns the body of the most recent request to path.
func (s *Server) LastBody(path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.bodies[path])
}

// CartQuantity returns the quantity of a product in the stub's cart.
func (s *Server) CartQuantity(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.cart[productID]
}

// OrderStatus returns the stored status of an order.
func (s *Server) OrderStatus(orderID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.orders[orderID]
}

// instrument records the call, applies holds and injected failures.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			web.RespondError(w, s.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		path := r.URL.Path
		s.calls[path]++
		s.bodies[path] = body
		hold := s.holds[path]
		status := 0
		if q := s.failures[path]; len(q) > 0 {
			status, s.failures[path] = q[0], q[1:]
		}
		s.mu.Unlock()
		s.requests.Add(r.Context(), 1, metric.WithAttributes(attribute.String("path", path)))

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			s.logger.WarnContext(r.Context(), "Injected failure", "path", path, "status", status)
			web.RespondError(w, s.logger, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) respondCart(w http.ResponseWriter, message string) {
	web.RespondJSON(w, s.logger, http.StatusOK, api.CartResponse{
		Envelope:  api.Envelope{Success: true, Message: message},
		CartCount: s.store.count(),
	})
}

func (s *Server) reject(w http.ResponseWriter, message string) {
	web.RespondJSON(w, s.logger, http.StatusOK, web.Envelope{Success: false, Message: message})
}

type addDto struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addDto
	if !web.DecodeValid(w, r, s.logger, s.validate, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.store.products[req.ProductID]
	if !ok {
		s.reject(w, "Product not found")
		return
	}
	if p.Stock < s.store.cart[req.ProductID]+req.Quantity {
		s.reject(w, "Insufficient stock")
		return
	}
	s.store.cart[req.ProductID] += req.Quantity
	s.respondCart(w, fmt.Sprintf("%s added to cart", p.Name))
}

func (s *Server) updateCart(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateRequest
	if !web.DecodeValid(w, r, s.logger, s.validate, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Quantity == 0 {
		if _, ok := s.store.cart[req.ProductID]; !ok {
			s.reject(w, "Failed to update cart")
			return
		}
		delete(s.store.cart, req.ProductID)
		s.respondCart(w, "Item removed from cart")
		return
	}
	p, ok := s.store.products[req.ProductID]
	if !ok || p.Stock < req.Quantity {
		s.reject(w, "Insufficient stock")
		return
	}
	s.store.cart[req.ProductID] = req.Quantity
	s.respondCart(w, "Cart updated")
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	var req api.RemoveRequest
	if !web.DecodeValid(w, r, s.logger, s.validate, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.cart[req.ProductID]; !ok {
		s.reject(w, "Failed to remove item")
		return
	}
	delete(s.store.cart, req.ProductID)
	s.respondCart(w, "Item removed from cart")
}

func (s *Server) cartCount(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	web.RespondJSON(w, s.logger, http.StatusOK, map[string]int{"cart_count": s.store.count()})
}

func (s *Server) autocomplete(w http.ResponseWriter, r *http.Request) {
	limit, ok := web.ParseQueryInt(r, w, s.logger, "limit", 8, web.Gt(0))
	if !ok {
		return
	}
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		web.RespondJSON(w, s.logger, http.StatusOK, api.AutocompleteResponse{Suggestions: []api.Product{}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	web.RespondJSON(w, s.logger, http.StatusOK, api.AutocompleteResponse{
		Suggestions: s.store.search(term, int(min(limit, 10))),
	})
}

type statusDto struct {
	OrderID int64  `json:"order_id" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusDto
	if !web.DecodeValid(w, r, s.logger, s.validate, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.orders[req.OrderID]; !ok {
		s.reject(w, "Order not found")
		return
	}
	valid := false
	for _, st := range api.OrderStatuses {
		if st == req.Status {
			valid = true
			break
		}
	}
	if !valid {
		s.reject(w, "Failed to update order status")
		return
	}
	s.store.orders[req.OrderID] = req.Status
	web.RespondJSON(w, s.logger, http.StatusOK, web.Envelope{Success: true, Message: "Order status updated successfully"})
}

func (s *Server) bulkAction(w http.ResponseWriter, r *http.Request) {
	var req api.BulkRequest
	if !web.DecodeValid(w, r, s.logger, s.validate, &req) {
		return
	}
	switch req.Action {
	case "delete", "activate", "deactivate":
	default:
		s.reject(w, fmt.Sprintf("Unknown action: %s", req.Action))
		return
	}
	web.RespondJSON(w, s.logger, http.StatusOK, web.Envelope{
		Success: true,
		Message: fmt.Sprintf("Bulk %s applied to %d item(s)", req.Action, len(req.Items)),
	})
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParsePathInt(w, s.logger, chi.URLParam(r, "id"), "product id", web.Gt(0))
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.store.products[id]; !exists {
		s.reject(w, "Failed to delete product")
		return
	}
	delete(s.store.products, id)
	delete(s.store.cart, id)
	web.RespondJSON(w, s.logger, http.StatusOK, web.Envelope{Success: true, Message: "Product deleted successfully"})
}
