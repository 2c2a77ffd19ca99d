package cart

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abgdnv/storefront/internal/guard"
	"github.com/abgdnv/storefront/internal/notify"
	"github.com/abgdnv/storefront/internal/widget"
)

// SelectorCooldown spaces the step buttons of a quantity selector.
const SelectorCooldown = 200 * time.Millisecond

// Selector is the quantity picker of a product page, read by the add to
// cart button. It never talks to the server. The quantity stays within
// [1, stock]; a stock of 0 means the limit is unknown and only the lower
// bound applies.
type Selector struct {
	stock    int
	input    *widget.Value[int]
	throttle *guard.Throttle
	notifier notify.Notifier
}

func NewSelector(stock int, notifier notify.Notifier, now guard.Clock) *Selector {
	return &Selector{
		stock:    max(stock, 0),
		input:    widget.NewValue(1),
		throttle: guard.NewThrottle(SelectorCooldown, now),
		notifier: notifier,
	}
}

func (s *Selector) Input() *widget.Value[int] {
	return s.input
}

// Quantity is the value the add to cart button sends.
func (s *Selector) Quantity() int {
	return s.input.Current()
}

// Increase adds one unit unless the stock limit is reached.
func (s *Selector) Increase(ctx context.Context) error {
	if !s.throttle.Allow() {
		return ErrThrottled
	}
	current := s.input.Current()
	if s.stock > 0 && current >= s.stock {
		s.warnStock(ctx)
		return ErrQuantityLimit
	}
	s.store(current + 1)
	return nil
}

// Decrease removes one unit, stopping at 1.
func (s *Selector) Decrease(_ context.Context) error {
	if !s.throttle.Allow() {
		return ErrThrottled
	}
	current := s.input.Current()
	if current <= 1 {
		return ErrQuantityLimit
	}
	s.store(current - 1)
	return nil
}

// Set handles a value typed into the selector and returns the quantity it
// settled on. Anything that is not a number of at least 1 becomes 1.
func (s *Selector) Set(ctx context.Context, raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil || n < 1:
		n = 1
	case s.stock > 0 && n > s.stock:
		n = s.stock
		s.warnStock(ctx)
	}
	s.store(n)
	return n
}

func (s *Selector) store(n int) {
	s.input.Set(n)
	s.input.Commit()
}

func (s *Selector) warnStock(ctx context.Context) {
	s.notifier.Notify(ctx, notify.Warning, fmt.Sprintf("Only %d items available in stock", s.stock))
}
