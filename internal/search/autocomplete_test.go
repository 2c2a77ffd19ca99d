package search

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/api"
	"github.com/abgdnv/storefront/internal/stub"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	timeout  = 2 * time.Second
	tick     = 5 * time.Millisecond
	debounce = 20 * time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type reply struct {
	products []api.Product
	err      error
}

// pendingCall is a request held by fakeSuggester until the test answers it.
type pendingCall struct {
	ctx   context.Context
	query string
	limit int
	reply chan reply
}

func (c *pendingCall) answer(products []api.Product, err error) {
	c.reply <- reply{products: products, err: err}
}

// fakeSuggester answers whenever the test decides, in any order. It ignores
// cancellation so that late answers of superseded requests can be simulated.
type fakeSuggester struct {
	started chan *pendingCall
}

func newFakeSuggester() *fakeSuggester {
	return &fakeSuggester{started: make(chan *pendingCall, 16)}
}

func (f *fakeSuggester) Autocomplete(ctx context.Context, query string, limit int) ([]api.Product, error) {
	c := &pendingCall{ctx: ctx, query: query, limit: limit, reply: make(chan reply, 1)}
	f.started <- c
	r := <-c.reply
	return r.products, r.err
}

func (f *fakeSuggester) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-f.started:
		return c
	case <-time.After(timeout):
		t.Fatal("no request issued")
		return nil
	}
}

func (f *fakeSuggester) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.started:
		t.Fatalf("unexpected request for %q", c.query)
	case <-time.After(3 * debounce):
	}
}

type event struct {
	Kind  string
	Query string
	N     int
}

// screen records what the renderer was asked to draw.
type screen struct {
	mu     sync.Mutex
	events []event
}

func (s *screen) add(e event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *screen) Loading(query string) { s.add(event{Kind: "loading", Query: query}) }
func (s *screen) Results(query string, products []api.Product) {
	s.add(event{Kind: "results", Query: query, N: len(products)})
}
func (s *screen) NoResults(query string) { s.add(event{Kind: "none", Query: query}) }
func (s *screen) Error(query string)     { s.add(event{Kind: "error", Query: query}) }
func (s *screen) Hide()                  { s.add(event{Kind: "hide"}) }
func (s *screen) Select(index int)       { s.add(event{Kind: "select", N: index}) }

func (s *screen) Events() []event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event(nil), s.events...)
}

func (s *screen) waitFor(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.Events()) >= n }, timeout, tick)
}

func products(names ...string) []api.Product {
	out := make([]api.Product, len(names))
	for i, name := range names {
		out[i] = api.Product{ID: int64(i + 1), Name: name, Price: 10}
	}
	return out
}

func newTestAutocomplete(t *testing.T) (*Autocomplete, *fakeSuggester, *screen) {
	t.Helper()
	s := newFakeSuggester()
	sc := &screen{}
	a := NewAutocomplete(s, sc, debounce, 8, discard)
	t.Cleanup(a.Close)
	return a, s, sc
}

func TestAutocomplete_DebounceCollapsesKeystrokes(t *testing.T) {
	a, s, sc := newTestAutocomplete(t)

	a.Input("m")
	a.Input("mo")
	a.Input("mou ")

	c := s.next(t)
	assert.Equal(t, "mou", c.query)
	assert.Equal(t, 8, c.limit)
	s.assertIdle(t)

	c.answer(products("Mouse", "Mouse Pad"), nil)
	sc.waitFor(t, 2)
	want := []event{{Kind: "loading", Query: "mou"}, {Kind: "results", Query: "mou", N: 2}}
	if diff := cmp.Diff(want, sc.Events()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, a.Visible())
}

func TestAutocomplete_OnlyLatestResponseIsRendered(t *testing.T) {
	testCases := []struct {
		name       string
		staleFirst bool
	}{
		{name: "stale answer arrives first", staleFirst: true},
		{name: "stale answer arrives last", staleFirst: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, s, sc := newTestAutocomplete(t)

			a.Input("ke")
			first := s.next(t)
			a.Input("key")
			second := s.next(t)

			require.Eventually(t, func() bool { return first.ctx.Err() != nil }, timeout, tick,
				"superseded request is cancelled")
			assert.NoError(t, second.ctx.Err())

			if tc.staleFirst {
				first.answer(products("Keyboard", "Keychain", "Monkey"), nil)
				second.answer(products("Keyboard"), nil)
			} else {
				second.answer(products("Keyboard"), nil)
				sc.waitFor(t, 3)
				first.answer(products("Keyboard", "Keychain", "Monkey"), nil)
			}
			sc.waitFor(t, 3)
			a.Close()

			want := []event{
				{Kind: "loading", Query: "ke"},
				{Kind: "loading", Query: "key"},
				{Kind: "results", Query: "key", N: 1},
			}
			if diff := cmp.Diff(want, sc.Events()); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAutocomplete_EmptyInputHides(t *testing.T) {
	a, s, sc := newTestAutocomplete(t)

	a.Input("mo")
	c := s.next(t)
	a.Input("   ")

	require.Eventually(t, func() bool { return c.ctx.Err() != nil }, timeout, tick)
	c.answer(products("Mouse"), nil)
	a.Close()

	assert.Equal(t, []event{{Kind: "loading", Query: "mo"}, {Kind: "hide"}}, sc.Events())
	assert.False(t, a.Visible())
}

func TestAutocomplete_EmptyInputCancelsPendingDebounce(t *testing.T) {
	a, s, sc := newTestAutocomplete(t)

	a.Input("mo")
	a.Input("")

	s.assertIdle(t)
	assert.Equal(t, []event{{Kind: "hide"}}, sc.Events())
	assert.Equal(t, "", a.Query())
}

func TestAutocomplete_ErrorAndNoResults(t *testing.T) {
	a, s, sc := newTestAutocomplete(t)

	a.Input("zz")
	s.next(t).answer(nil, &api.TransportError{Op: "autocomplete", StatusCode: 500})
	sc.waitFor(t, 2)

	a.Input("zzz")
	s.next(t).answer([]api.Product{}, nil)
	sc.waitFor(t, 4)

	want := []event{
		{Kind: "loading", Query: "zz"},
		{Kind: "error", Query: "zz"},
		{Kind: "loading", Query: "zzz"},
		{Kind: "none", Query: "zzz"},
	}
	if diff := cmp.Diff(want, sc.Events()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestAutocomplete_CancelledAnswerIsNotAnError(t *testing.T) {
	a, s, sc := newTestAutocomplete(t)

	a.Input("mo")
	c := s.next(t)
	a.Hide()
	c.answer(nil, context.Canceled)
	a.Close()

	assert.Equal(t, []event{{Kind: "loading", Query: "mo"}, {Kind: "hide"}}, sc.Events())
}

func TestAutocomplete_KeyboardNavigation(t *testing.T) {
	a, s, sc := newTestAutocomplete(t)

	a.Next() // nothing shown yet
	_, ok := a.Selected()
	assert.False(t, ok)

	a.Input("mo")
	s.next(t).answer(products("Mouse", "Mouse Pad", "Monitor"), nil)
	sc.waitFor(t, 2)

	a.Next()
	a.Next()
	p, ok := a.Selected()
	require.True(t, ok)
	assert.Equal(t, "Mouse Pad", p.Name)

	a.Next()
	a.Next()
	p, _ = a.Selected()
	assert.Equal(t, "Monitor", p.Name, "selection stops at the last suggestion")
	assert.Equal(t, "/product/3", ProductPath(p))

	for range 4 {
		a.Prev()
	}
	_, ok = a.Selected()
	assert.False(t, ok, "moving above the first suggestion clears the selection")

	a.Next()
	a.Hide()
	_, ok = a.Selected()
	assert.False(t, ok, "hiding clears the selection")
}

func TestAutocomplete_CloseWaitsForOutstandingRequest(t *testing.T) {
	s := newFakeSuggester()
	sc := &screen{}
	a := NewAutocomplete(s, sc, debounce, 8, discard)

	a.Input("mo")
	c := s.next(t)

	closed := make(chan struct{})
	go func() {
		a.Close()
		close(closed)
	}()
	require.Eventually(t, func() bool { return c.ctx.Err() != nil }, timeout, tick)
	select {
	case <-closed:
		t.Fatal("Close returned before the request finished")
	case <-time.After(3 * tick):
	}

	c.answer(nil, context.Canceled)
	select {
	case <-closed:
	case <-time.After(timeout):
		t.Fatal("Close did not return")
	}

	a.Input("mouse")
	s.assertIdle(t)
	assert.Equal(t, []event{{Kind: "loading", Query: "mo"}}, sc.Events())
}

func TestAutocomplete_WithStubServer(t *testing.T) {
	srv := httptest.NewServer(stub.New(discard).Handler())
	defer srv.Close()
	client, err := api.NewClient(config.ClientConfig{BaseURL: srv.URL, Timeout: timeout}, config.CircuitBreakerConfig{}, discard)
	require.NoError(t, err)

	sc := &screen{}
	a := NewAutocomplete(client, sc, debounce, 8, discard)
	defer a.Close()

	a.Input("MOUSE")
	sc.waitFor(t, 2)
	assert.Equal(t, event{Kind: "results", Query: "MOUSE", N: 2}, sc.Events()[1])
}

func TestHighlight(t *testing.T) {
	testCases := []struct {
		text, query, want string
	}{
		{"Wireless Mouse", "mouse", "Wireless <strong>Mouse</strong>"},
		{"Mouse Pad for Mouse", "MOUSE", "<strong>Mouse</strong> Pad for <strong>Mouse</strong>"},
		{"C++ Primer", "c++", "<strong>C++</strong> Primer"},
		{"Keyboard", "", "Keyboard"},
		{"Keyboard", "xyz", "Keyboard"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Highlight(tc.text, tc.query), "%s/%s", tc.text, tc.query)
	}
}
