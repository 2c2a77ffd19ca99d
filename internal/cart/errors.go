package cart

import "errors"

var (
	// ErrThrottled is returned when an input event arrives within the click cooldown.
	ErrThrottled = errors.New("input throttled")
	// ErrQuantityLimit is returned when a stepper is already at its bound.
	ErrQuantityLimit = errors.New("quantity limit reached")
	// ErrNotConfirmed is returned when the user declines a removal.
	ErrNotConfirmed = errors.New("removal not confirmed")
	// ErrInvalidQuantity is returned for a typed quantity that is not a number.
	ErrInvalidQuantity = errors.New("invalid quantity")
)
