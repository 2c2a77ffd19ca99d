package cart

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/abgdnv/storefront/internal/guard"
	"github.com/abgdnv/storefront/internal/notify"
	"github.com/abgdnv/storefront/internal/widget"
)

// DefaultMaxStock caps quantities when the stock of a product is unknown.
const DefaultMaxStock = 999

// Stepper is the quantity control of one cart row: an input and the
// increase/decrease buttons next to it. It is idle until a button press is
// accepted, processing until the update settles, then idle again.
type Stepper struct {
	productID int64
	name      string
	maxStock  int

	input    *widget.Value[int]
	increase *widget.Button
	decrease *widget.Button

	service  *Service
	throttle *guard.Throttle
}

// NewStepper creates the stepper for row. All steppers of a session share
// throttle. A row without a known stock limit is capped at DefaultMaxStock.
func (s *Service) NewStepper(row Row, throttle *guard.Throttle) *Stepper {
	maxStock := row.MaxStock
	if maxStock <= 0 {
		maxStock = DefaultMaxStock
	}
	return &Stepper{
		productID: row.ProductID,
		name:      row.Name,
		maxStock:  maxStock,
		input:     widget.NewValue(row.Quantity),
		increase:  widget.NewButton("+"),
		decrease:  widget.NewButton("-"),
		service:   s,
		throttle:  throttle,
	}
}

func (st *Stepper) Input() *widget.Value[int] {
	return st.input
}

func (st *Stepper) IncreaseButton() *widget.Button {
	return st.increase
}

func (st *Stepper) DecreaseButton() *widget.Button {
	return st.decrease
}

// Increase adds one unit, up to the stock limit.
func (st *Stepper) Increase(ctx context.Context) error {
	release, err := st.press(st.increase)
	if err != nil {
		return err
	}
	defer release()

	current := st.input.Current()
	if current >= st.maxStock {
		st.service.notifier.Notify(ctx, notify.Warning, "Maximum quantity reached")
		return ErrQuantityLimit
	}
	return st.service.update(ctx, st.productID, current+1, st.input, false, nil)
}

// Decrease removes one unit. Reaching zero removes the row and needs confirmation.
func (st *Stepper) Decrease(ctx context.Context) error {
	release, err := st.press(st.decrease)
	if err != nil {
		return err
	}
	defer release()

	current := st.input.Current()
	if current <= 0 {
		st.service.notifier.Notify(ctx, notify.Warning, "Item quantity is already 0")
		return ErrQuantityLimit
	}
	next := current - 1
	return st.service.update(ctx, st.productID, next, st.input, false, st.removalCheck(next))
}

// SetQuantity handles a value typed into the input. It is clamped to
// [0, max stock] and only sent when it differs from the confirmed quantity.
func (st *Stepper) SetQuantity(ctx context.Context, raw string) error {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		st.input.Rollback()
		return fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}

	qty := n
	switch {
	case n < 0:
		qty = 0
		st.service.notifier.Notify(ctx, notify.Warning, "Minimum quantity is 0")
	case n > st.maxStock:
		qty = st.maxStock
		st.service.notifier.Notify(ctx, notify.Warning, fmt.Sprintf("Maximum quantity is %d", st.maxStock))
	}

	if qty == st.input.Confirmed() {
		st.input.Rollback()
		return nil
	}
	return st.service.update(ctx, st.productID, qty, st.input, true, st.removalCheck(qty))
}

// press applies the shared throttle and puts button into the processing state.
func (st *Stepper) press(button *widget.Button) (func(), error) {
	if !st.throttle.Allow() {
		return nil, ErrThrottled
	}
	return acquire(button)
}

// removalCheck returns the confirmation asked before qty is sent, or nil
// when qty keeps the row.
func (st *Stepper) removalCheck(qty int) func(context.Context) bool {
	if qty != 0 {
		return nil
	}
	return func(ctx context.Context) bool {
		name := st.name
		if name == "" {
			name = "this item"
		}
		return st.service.confirm.Confirm(ctx, fmt.Sprintf("Remove %s from your cart?", name))
	}
}
