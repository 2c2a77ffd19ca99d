package cart

import (
	"context"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelector(stock int) (*Selector, *notify.Recorder, *manualClock) {
	notes := &notify.Recorder{}
	clock := &manualClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewSelector(stock, notes, clock.Now), notes, clock
}

func TestSelector_Steps(t *testing.T) {
	ctx := context.Background()
	sel, notes, clock := newSelector(3)
	assert.Equal(t, 1, sel.Quantity())

	assert.ErrorIs(t, sel.Decrease(ctx), ErrQuantityLimit, "never below 1")
	clock.Advance(SelectorCooldown)
	require.NoError(t, sel.Increase(ctx))
	assert.ErrorIs(t, sel.Increase(ctx), ErrThrottled, "second press inside the cooldown")
	clock.Advance(SelectorCooldown)
	require.NoError(t, sel.Increase(ctx))
	clock.Advance(SelectorCooldown)

	assert.ErrorIs(t, sel.Increase(ctx), ErrQuantityLimit)
	assert.Equal(t, 3, sel.Quantity())
	n, ok := notes.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Notification{Level: notify.Warning, Message: "Only 3 items available in stock"}, n)

	clock.Advance(SelectorCooldown)
	require.NoError(t, sel.Decrease(ctx))
	assert.Equal(t, 2, sel.Quantity())
	assert.False(t, sel.Input().Dirty())
}

func TestSelector_Set(t *testing.T) {
	testCases := []struct {
		name  string
		stock int
		raw   string
		want  int
		warn  bool
	}{
		{name: "in range", stock: 10, raw: "4", want: 4},
		{name: "not a number", stock: 10, raw: "lots", want: 1},
		{name: "zero", stock: 10, raw: "0", want: 1},
		{name: "negative", stock: 10, raw: "-3", want: 1},
		{name: "above stock", stock: 10, raw: "25", want: 10, warn: true},
		{name: "unknown stock", stock: 0, raw: "25", want: 25},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sel, notes, _ := newSelector(tc.stock)

			got := sel.Set(context.Background(), tc.raw)

			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, sel.Quantity())
			if tc.warn {
				assert.Equal(t, []notify.Notification{{Level: notify.Warning, Message: "Only 10 items available in stock"}}, notes.All())
			} else {
				assert.Empty(t, notes.All())
			}
		})
	}
}

func TestSelector_UnknownStockHasNoUpperBound(t *testing.T) {
	sel, notes, clock := newSelector(0)
	for range 5 {
		require.NoError(t, sel.Increase(context.Background()))
		clock.Advance(SelectorCooldown)
	}
	assert.Equal(t, 6, sel.Quantity())
	assert.Zero(t, notes.Count(notify.Warning))
}
