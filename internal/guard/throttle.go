package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Clock returns the current time. Tests substitute a manual clock.
type Clock func() time.Time

// Throttle is a coarse gate shared by every control: an input event is
// rejected when it arrives within the cooldown of the last accepted one,
// whichever control produced either event.
type Throttle struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      Clock
	last     time.Time

	throttled metric.Int64Counter
}

// NewThrottle creates a throttle with the given cooldown. A nil clock uses time.Now.
func NewThrottle(cooldown time.Duration, now Clock) *Throttle {
	if now == nil {
		now = time.Now
	}
	meter := otel.Meter("storefront/guard")
	throttled, err := meter.Int64Counter("storefront_actions_throttled",
		metric.WithDescription("Input events rejected by the click throttle"))
	if err != nil {
		panic(fmt.Sprintf("failed to create storefront_actions_throttled counter: %v", err))
	}
	return &Throttle{cooldown: cooldown, now: now, throttled: throttled}
}

// Allow accepts the event and records its time, or returns false if the
// previous accepted event is less than the cooldown ago.
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.cooldown {
		t.throttled.Add(context.Background(), 1)
		return false
	}
	t.last = now
	return true
}
