package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abgdnv/storefront/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrInFlight is returned when an action is dropped because another action
// with the same key has not settled yet.
var ErrInFlight = errors.New("action already in flight")

// Registry tracks outstanding actions by key. At most one action per key is
// outstanding at any time. A Registry belongs to one client session and is
// handed to the components that issue requests.
type Registry struct {
	mu       sync.Mutex
	inFlight map[Key]struct{}

	logger  *slog.Logger
	dropped metric.Int64Counter
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	meter := otel.Meter("storefront/guard")
	dropped, err := meter.Int64Counter("storefront_actions_dropped",
		metric.WithDescription("Actions dropped because the same key was already in flight"))
	if err != nil {
		panic(fmt.Sprintf("failed to create storefront_actions_dropped counter: %v", err))
	}
	return &Registry{
		inFlight: make(map[Key]struct{}),
		logger:   log.With("component", "guard"),
		dropped:  dropped,
	}
}

// Begin marks key as outstanding. It returns false, and changes nothing, if
// key is already outstanding. Every successful Begin must be paired with
// exactly one End; prefer Do, which guarantees it.
func (r *Registry) Begin(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inFlight[key]; ok {
		return false
	}
	r.inFlight[key] = struct{}{}
	return true
}

// End clears key. It is safe to call for a key that is not outstanding.
func (r *Registry) End(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, key)
}

// InFlight reports whether key is outstanding.
func (r *Registry) InFlight(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[key]
	return ok
}

// Len returns the number of outstanding keys.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inFlight)
}

// Do runs fn while holding key. If key is already held the action is dropped:
// fn is not called and ErrInFlight is returned. The key is released on every
// exit path of fn, including a panic, which is re-raised after release.
func (r *Registry) Do(ctx context.Context, key Key, fn func(ctx context.Context) error) error {
	ctx = logger.WithActionKey(ctx, key.String())
	if !r.Begin(key) {
		r.logger.DebugContext(ctx, "Duplicate action dropped")
		r.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kindOf(key))))
		return ErrInFlight
	}
	defer r.End(key)
	return fn(ctx)
}

// kindOf extracts the kind prefix for metric attributes.
func kindOf(key Key) string {
	s := string(key)
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			return s[:i]
		}
	}
	return s
}
