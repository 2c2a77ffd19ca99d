// Package admin implements the admin panel actions: order status changes,
// bulk actions and deletes.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/api"
	"github.com/abgdnv/storefront/internal/guard"
	"github.com/abgdnv/storefront/internal/notify"
	"github.com/abgdnv/storefront/internal/widget"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrNotConfirmed    = errors.New("action not confirmed")
	ErrNothingSelected = errors.New("no items selected")
	ErrNoAction        = errors.New("no action selected")
)

// Client is the part of the storefront API the admin panel uses.
type Client interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (string, error)
	BulkAction(ctx context.Context, action string, items []string) (string, error)
	Delete(ctx context.Context, path string) (string, error)
}

// Panel issues admin actions through the session's registry.
type Panel struct {
	registry *guard.Registry
	client   Client
	notifier notify.Notifier
	confirm  widget.Confirmer
	logger   *slog.Logger
}

func NewPanel(registry *guard.Registry, client Client, notifier notify.Notifier, confirm widget.Confirmer, logger *slog.Logger) *Panel {
	if confirm == nil {
		confirm = widget.Always
	}
	return &Panel{
		registry: registry,
		client:   client,
		notifier: notifier,
		confirm:  confirm,
		logger:   logger.With("component", "admin"),
	}
}

// fail reports a failed action. Requests that never left the client are a
// warning naming the invalid fields; rejections carry the server's message
// and anything else gets fallback.
func (p *Panel) fail(ctx context.Context, err error, fallback string) {
	if errors.Is(err, context.Canceled) {
		return
	}
	var invalid *api.ValidationError
	if errors.As(err, &invalid) {
		p.logger.DebugContext(ctx, "Admin action blocked by validation", "error", err)
		p.notifier.Notify(ctx, notify.Warning, invalid.Summary())
		return
	}
	p.logger.WarnContext(ctx, "Admin action failed", "error", err)
	p.notifier.Notify(ctx, notify.Error, api.Message(err, fallback))
}

var titleCase = cases.Title(language.English)

// StatusLabel is the badge text of an order status.
func StatusLabel(status string) string {
	return titleCase.String(status)
}

// UpdateStatus sends the status chosen in sel. The select is disabled while
// the request is in flight, committed on success and reverted on failure.
func (p *Panel) UpdateStatus(ctx context.Context, orderID int64, sel *widget.Select) error {
	return p.registry.Do(ctx, guard.NewKey(guard.KindStatus, orderID), func(ctx context.Context) error {
		release, ok := sel.Acquire()
		if !ok {
			return widget.ErrBusy
		}
		defer release()

		msg, err := p.client.UpdateOrderStatus(ctx, orderID, sel.Current())
		if err != nil {
			sel.Rollback()
			p.fail(ctx, err, "Failed to update status")
			return err
		}
		sel.Commit()
		p.notifier.Notify(ctx, notify.Success, msg)
		return nil
	})
}

// BulkLabel is the text of the bulk action button for n selected items.
func BulkLabel(n int) string {
	return fmt.Sprintf("Apply to %d item(s)", n)
}

// ApplyBulk runs action on the selected items after confirmation. No prompt
// is shown while another bulk action is outstanding.
func (p *Panel) ApplyBulk(ctx context.Context, action string, items []string) error {
	if len(items) == 0 {
		p.notifier.Notify(ctx, notify.Warning, "Please select items to perform bulk action")
		return ErrNothingSelected
	}
	if action == "" {
		p.notifier.Notify(ctx, notify.Warning, "Please select an action")
		return ErrNoAction
	}
	return p.registry.Do(ctx, guard.GlobalKey(guard.KindBulk), func(ctx context.Context) error {
		if !p.confirm.Confirm(ctx, fmt.Sprintf("Are you sure you want to %s %d item(s)?", action, len(items))) {
			return ErrNotConfirmed
		}
		msg, err := p.client.BulkAction(ctx, action, items)
		if err != nil {
			p.fail(ctx, err, "Bulk action failed")
			return err
		}
		p.notifier.Notify(ctx, notify.Success, msg)
		return nil
	})
}

// Delete posts to an admin delete URL after confirmation. name describes
// the item in the prompt.
func (p *Panel) Delete(ctx context.Context, url, name string, button *widget.Button) error {
	if name == "" {
		name = "this item"
	}
	return p.registry.Do(ctx, guard.NewTargetKey(guard.KindDelete, url), func(ctx context.Context) error {
		if !p.confirm.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", name)) {
			return ErrNotConfirmed
		}
		if button != nil {
			release, ok := button.Acquire()
			if !ok {
				return widget.ErrBusy
			}
			defer release()
		}
		msg, err := p.client.Delete(ctx, url)
		if err != nil {
			p.fail(ctx, err, "Failed to delete item")
			return err
		}
		p.notifier.Notify(ctx, notify.Success, msg)
		return nil
	})
}
