// Package cart implements the cart actions of the storefront: adding,
// updating and removing items, the header badge, the cart page and its
// quantity steppers.
package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/abgdnv/storefront/internal/api"
	"github.com/abgdnv/storefront/internal/guard"
	"github.com/abgdnv/storefront/internal/notify"
	"github.com/abgdnv/storefront/internal/widget"
)

const (
	msgAddFailed    = "Failed to add item to cart"
	msgUpdateFailed = "Failed to update cart"
	msgRemoveFailed = "Failed to remove item"
	promptRemove    = "Are you sure you want to remove this item from your cart?"
)

// Client is the part of the storefront API the cart uses.
type Client interface {
	AddToCart(ctx context.Context, productID int64, quantity int) (api.CartResult, error)
	UpdateCart(ctx context.Context, productID int64, quantity int) (api.CartResult, error)
	RemoveFromCart(ctx context.Context, productID int64) (api.CartResult, error)
	CartCount(ctx context.Context) (int, error)
}

// Service issues cart actions. At most one action per product and kind is
// outstanding; a repeated action is dropped with guard.ErrInFlight before any
// request is made.
type Service struct {
	registry *guard.Registry
	client   Client
	notifier notify.Notifier
	confirm  widget.Confirmer
	page     *Page
	badge    *Badge
	logger   *slog.Logger
}

// NewService creates a cart service over page. A nil page starts empty and
// a nil confirm accepts every prompt.
func NewService(registry *guard.Registry, client Client, notifier notify.Notifier, confirm widget.Confirmer, page *Page, logger *slog.Logger) *Service {
	if page == nil {
		page = NewPage()
	}
	if confirm == nil {
		confirm = widget.Always
	}
	return &Service{
		registry: registry,
		client:   client,
		notifier: notifier,
		confirm:  confirm,
		page:     page,
		badge:    &Badge{},
		logger:   logger.With("component", "cart"),
	}
}

func (s *Service) Page() *Page {
	return s.page
}

func (s *Service) Badge() *Badge {
	return s.badge
}

// Add adds quantity units of a product. button, if not nil, is disabled
// until the request settles.
func (s *Service) Add(ctx context.Context, productID int64, quantity int, button *widget.Button) error {
	return s.registry.Do(ctx, guard.NewKey(guard.KindAdd, productID), func(ctx context.Context) error {
		release, err := acquire(button)
		if err != nil {
			return err
		}
		defer release()

		res, err := s.client.AddToCart(ctx, productID, quantity)
		if err != nil {
			s.fail(ctx, err, msgAddFailed)
			return err
		}
		s.badge.Set(res.CartCount)
		s.notifier.Notify(ctx, notify.Success, res.Message)
		return nil
	})
}

// Update sets the quantity of a cart item; 0 removes the row.
func (s *Service) Update(ctx context.Context, productID int64, quantity int) error {
	return s.update(ctx, productID, quantity, nil, true, nil)
}

// update sends the new quantity. The key is held before anything else
// happens: confirm, when given, is asked only then, and a refusal returns
// ErrNotConfirmed. When input is given it is set to quantity once confirmed,
// committed on success and rolled back on failure or refusal. Success is
// announced only for manual edits.
func (s *Service) update(ctx context.Context, productID int64, quantity int, input *widget.Value[int], announce bool, confirm func(context.Context) bool) error {
	return s.registry.Do(ctx, guard.NewKey(guard.KindUpdate, productID), func(ctx context.Context) error {
		if confirm != nil && !confirm(ctx) {
			if input != nil {
				input.Rollback()
			}
			return ErrNotConfirmed
		}
		if input != nil {
			input.Set(quantity)
		}
		res, err := s.client.UpdateCart(ctx, productID, quantity)
		if err != nil {
			if input != nil {
				input.Rollback()
			}
			s.fail(ctx, err, msgUpdateFailed)
			return err
		}
		if input != nil {
			input.Commit()
		}
		s.badge.Set(res.CartCount)
		s.page.SetQuantity(productID, quantity)
		if announce {
			s.notifier.Notify(ctx, notify.Success, res.Message)
		}
		s.logger.DebugContext(ctx, "Cart updated", "product_id", productID, "quantity", quantity, "totals", s.page.Totals().String())
		return nil
	})
}

// Remove asks for confirmation and removes a product from the cart. Nothing
// is asked while a removal of the product is outstanding.
func (s *Service) Remove(ctx context.Context, productID int64, button *widget.Button) error {
	return s.registry.Do(ctx, guard.NewKey(guard.KindRemove, productID), func(ctx context.Context) error {
		if !s.confirm.Confirm(ctx, promptRemove) {
			return ErrNotConfirmed
		}
		release, err := acquire(button)
		if err != nil {
			return err
		}
		defer release()

		res, err := s.client.RemoveFromCart(ctx, productID)
		if err != nil {
			s.fail(ctx, err, msgRemoveFailed)
			return err
		}
		s.notifier.Notify(ctx, notify.Success, res.Message)
		s.badge.Set(res.CartCount)
		s.page.Remove(productID)
		if s.page.Empty() {
			s.logger.InfoContext(ctx, "Cart is empty")
		}
		return nil
	})
}

// RefreshCount reloads the badge. A failure hides it; the visitor is
// usually not signed in.
func (s *Service) RefreshCount(ctx context.Context) error {
	n, err := s.client.CartCount(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to refresh cart count", "error", err)
		s.badge.Hide()
		return err
	}
	s.badge.Set(n)
	return nil
}

// fail reports a failed action to the user. Cancellation is not reported;
// a request blocked by client-side validation is a warning naming the field.
func (s *Service) fail(ctx context.Context, err error, fallback string) {
	if errors.Is(err, context.Canceled) {
		return
	}
	var invalid *api.ValidationError
	if errors.As(err, &invalid) {
		s.logger.DebugContext(ctx, "Cart action blocked by validation", "error", err)
		s.notifier.Notify(ctx, notify.Warning, invalid.Summary())
		return
	}
	s.logger.WarnContext(ctx, "Cart action failed", "error", err)
	s.notifier.Notify(ctx, notify.Error, api.Message(err, fallback))
}

func acquire(button *widget.Button) (func(), error) {
	if button == nil {
		return func() {}, nil
	}
	release, ok := button.Acquire()
	if !ok {
		return nil, widget.ErrBusy
	}
	return release, nil
}
