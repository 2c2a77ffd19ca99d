// Package widget models the UI controls storefront components own: buttons
// that can be put into a processing state, and bound values with a confirmed
// baseline for optimistic updates.
package widget

import (
	"errors"
	"slices"
	"sync"
)

// ErrBusy is returned when a control is still processing a previous action.
var ErrBusy = errors.New("control is processing")

// Button is a control that is disabled while an action it triggered is processing.
type Button struct {
	mu         sync.Mutex
	label      string
	processing bool
}

// NewButton creates an enabled button.
func NewButton(label string) *Button {
	return &Button{label: label}
}

// Acquire moves the button into the processing state. It returns ok=false,
// and does nothing, if the button is already processing. The returned release
// re-enables the button exactly once; further calls are no-ops.
func (b *Button) Acquire() (release func(), ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.processing {
		return func() {}, false
	}
	b.processing = true
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.processing = false
			b.mu.Unlock()
		})
	}, true
}

// Enabled reports whether the button accepts input.
func (b *Button) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.processing
}

func (b *Button) Label() string {
	return b.label
}

// Value is a control value with a last-known-good baseline. Set changes the
// displayed value speculatively; Commit makes it the baseline and Rollback
// restores the baseline.
type Value[T comparable] struct {
	mu        sync.Mutex
	current   T
	confirmed T
}

// NewValue creates a value whose current and confirmed states are v.
func NewValue[T comparable](v T) *Value[T] {
	return &Value[T]{current: v, confirmed: v}
}

// Current returns the displayed value.
func (v *Value[T]) Current() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Confirmed returns the last value the server accepted.
func (v *Value[T]) Confirmed() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.confirmed
}

// Set replaces the displayed value without touching the baseline.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = x
}

// Commit promotes the displayed value to the baseline.
func (v *Value[T]) Commit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.confirmed = v.current
}

// Rollback restores the displayed value to the baseline and returns it.
func (v *Value[T]) Rollback() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = v.confirmed
	return v.current
}

// Dirty reports whether the displayed value differs from the baseline.
func (v *Value[T]) Dirty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current != v.confirmed
}

// Select is a drop-down: a bound value that is disabled while a change is processing.
type Select struct {
	*Value[string]
	options []string
	lock    *Button
}

// NewSelect creates a select showing value.
func NewSelect(value string, options ...string) *Select {
	return &Select{
		Value:   NewValue(value),
		options: append([]string(nil), options...),
		lock:    NewButton(""),
	}
}

// Choose sets the displayed value to one of the options. It reports false,
// and changes nothing, for a value that is not an option or while the select
// is disabled.
func (s *Select) Choose(option string) bool {
	if !s.lock.Enabled() || !slices.Contains(s.options, option) {
		return false
	}
	s.Set(option)
	return true
}

// Acquire disables the select; see Button.Acquire.
func (s *Select) Acquire() (release func(), ok bool) {
	return s.lock.Acquire()
}

func (s *Select) Enabled() bool {
	return s.lock.Enabled()
}

func (s *Select) Options() []string {
	return append([]string(nil), s.options...)
}
