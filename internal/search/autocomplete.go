// Package search implements the search box autocomplete: debounced
// suggestion requests where only the answer to the latest query is shown.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/abgdnv/storefront/internal/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Suggester fetches product suggestions for a query.
type Suggester interface {
	Autocomplete(ctx context.Context, query string, limit int) ([]api.Product, error)
}

// Renderer draws the suggestion list. Its methods are called one at a time
// and must not call back into the Autocomplete.
type Renderer interface {
	Loading(query string)
	Results(query string, products []api.Product)
	NoResults(query string)
	Error(query string)
	Hide()
	Select(index int)
}

// Autocomplete drives a Renderer from the text typed into the search box.
//
// Keystrokes are collapsed by the debounce delay. When it fires the
// previous request is cancelled and a new one is issued; every request
// carries a generation number and its answer is rendered only if no newer
// request was issued since.
type Autocomplete struct {
	suggester Suggester
	renderer  Renderer
	debounce  time.Duration
	limit     int
	logger    *slog.Logger
	stale     metric.Int64Counter

	mu         sync.Mutex
	wg         sync.WaitGroup
	closed     bool
	timer      *time.Timer
	pending    uint64 // debounce token of the scheduled search
	generation uint64
	cancel     context.CancelFunc
	query      string
	results    []api.Product
	selected   int
	visible    bool
}

// NewAutocomplete creates an idle autocomplete.
func NewAutocomplete(suggester Suggester, renderer Renderer, debounce time.Duration, limit int, logger *slog.Logger) *Autocomplete {
	stale, err := otel.Meter("storefront/search").Int64Counter("storefront_search_stale_responses",
		metric.WithDescription("Autocomplete responses discarded because a newer query was issued"))
	if err != nil {
		panic(fmt.Sprintf("failed to create storefront_search_stale_responses counter: %v", err))
	}
	return &Autocomplete{
		suggester: suggester,
		renderer:  renderer,
		debounce:  debounce,
		limit:     limit,
		logger:    logger.With("component", "search"),
		stale:     stale,
		selected:  -1,
	}
}

// Input handles the current text of the search box.
func (a *Autocomplete) Input(text string) {
	query := strings.TrimSpace(text)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.query = query
	if query == "" {
		a.hideLocked()
		return
	}
	a.stopTimerLocked()
	a.pending++
	token := a.pending
	a.timer = time.AfterFunc(a.debounce, func() { a.fire(token, query) })
}

// fire issues the request for a debounced query.
func (a *Autocomplete) fire(token uint64, query string) {
	a.mu.Lock()
	if a.closed || token != a.pending {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.wg.Add(1)
	a.visible = true
	a.renderer.Loading(query)
	a.mu.Unlock()

	defer a.wg.Done()
	defer cancel()

	a.logger.DebugContext(ctx, "Searching", "query", query, "generation", gen)
	products, err := a.suggester.Autocomplete(ctx, query, a.limit)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation || a.closed {
		a.logger.DebugContext(ctx, "Stale search response discarded", "query", query, "generation", gen)
		a.stale.Add(ctx, 1)
		return
	}
	a.cancel = nil
	a.selected = -1
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		a.logger.WarnContext(ctx, "Search failed", "query", query, "error", err)
		a.results = nil
		a.renderer.Error(query)
	case len(products) == 0:
		a.results = nil
		a.renderer.NoResults(query)
	default:
		a.results = products
		a.renderer.Results(query, products)
	}
}

// Next moves the selection down, stopping at the last suggestion.
func (a *Autocomplete) Next() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.visible || len(a.results) == 0 {
		return
	}
	a.selected = min(a.selected+1, len(a.results)-1)
	a.renderer.Select(a.selected)
}

// Prev moves the selection up; above the first suggestion nothing is selected.
func (a *Autocomplete) Prev() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.visible || len(a.results) == 0 {
		return
	}
	a.selected = max(a.selected-1, -1)
	a.renderer.Select(a.selected)
}

// Selected returns the highlighted suggestion, if any.
func (a *Autocomplete) Selected() (api.Product, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.visible || a.selected < 0 || a.selected >= len(a.results) {
		return api.Product{}, false
	}
	return a.results[a.selected], true
}

// Query returns the last query typed.
func (a *Autocomplete) Query() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.query
}

// Visible reports whether the suggestion list is shown.
func (a *Autocomplete) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visible
}

// Hide closes the suggestion list and abandons any pending search.
func (a *Autocomplete) Hide() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.hideLocked()
}

// Close stops the autocomplete and waits for outstanding requests to return.
func (a *Autocomplete) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.stopTimerLocked()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Autocomplete) hideLocked() {
	a.stopTimerLocked()
	a.pending++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.generation++
	a.selected = -1
	a.visible = false
	a.renderer.Hide()
}

func (a *Autocomplete) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Highlight wraps every case-insensitive occurrence of query in text with <strong>.
func Highlight(text, query string) string {
	if query == "" {
		return text
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return "<strong>" + m + "</strong>"
	})
}

// ProductPath is the page a selected suggestion leads to.
func ProductPath(p api.Product) string {
	return fmt.Sprintf("/product/%d", p.ID)
}
