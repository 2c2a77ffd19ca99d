// Package app wires the storefront client components together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/storefront/internal/admin"
	"github.com/abgdnv/storefront/internal/api"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/form"
	"github.com/abgdnv/storefront/internal/guard"
	"github.com/abgdnv/storefront/internal/notify"
	"github.com/abgdnv/storefront/internal/search"
	"github.com/abgdnv/storefront/internal/storage"
	"github.com/abgdnv/storefront/internal/stub"
	"github.com/abgdnv/storefront/internal/theme"
	"github.com/abgdnv/storefront/internal/widget"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/telemetry"
)

const (
	ServiceName        = "storefront"
	stateDBOpenTimeout = 5 * time.Second
)

// Dependencies is one client session: everything a command needs to act on
// the storefront.
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *guard.Registry
	Throttle *guard.Throttle
	Client   *api.Client
	Notifier notify.Notifier
	Theme    *theme.Manager
	Cart     *cart.Service
	Admin    *admin.Panel
	Forms    *form.Validator

	closers []func(context.Context) error
}

// SetupDependencies builds a session. Notifications are printed to out in
// the colors of the saved theme and logged.
func SetupDependencies(ctx context.Context, cfg *config.Config, out io.Writer, confirm widget.Confirmer, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: logger}

	if err := deps.setupTelemetry(ctx); err != nil {
		_ = deps.Close(ctx)
		return nil, err
	}

	db, err := bootstrap.NewStateDB(ctx, cfg.Storage.Path, stateDBOpenTimeout)
	if err != nil {
		_ = deps.Close(ctx)
		return nil, err
	}
	deps.closers = append(deps.closers, func(context.Context) error { return db.Close() })
	kv, err := storage.NewSQLite(ctx, db)
	if err != nil {
		_ = deps.Close(ctx)
		return nil, err
	}

	client, err := api.NewClient(cfg.Client, cfg.Resilience.CircuitBreaker, logger)
	if err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	deps.Client = client

	// The terminal reads the palette of the theme manager, which in turn
	// notifies through the terminal.
	var themes *theme.Manager
	terminal := notify.NewTerminal(out, notify.PaletteFunc(func() notify.Palette { return themes.Palette() }))
	deps.Notifier = notify.Multi{terminal, notify.NewLog(logger)}
	themes = theme.NewManager(kv, deps.Notifier, logger)
	if _, err := themes.Load(ctx); err != nil {
		logger.WarnContext(ctx, "Using default theme", "error", err)
	}
	deps.Theme = themes

	deps.Registry = guard.NewRegistry(logger)
	deps.Throttle = guard.NewThrottle(cfg.Guard.Throttle, nil)
	deps.Cart = cart.NewService(deps.Registry, client, deps.Notifier, confirm, nil, logger)
	deps.Admin = admin.NewPanel(deps.Registry, client, deps.Notifier, confirm, logger)
	deps.Forms = form.New()
	return deps, nil
}

func (d *Dependencies) setupTelemetry(ctx context.Context) error {
	tel := d.Config.Telemetry
	if tel.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, ServiceName, tel)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		d.closers = append(d.closers, tp.Shutdown)
	}
	if tel.Metrics.Enabled {
		mp, err := telemetry.NewMeterProvider(ServiceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		d.closers = append(d.closers, mp.Shutdown)
	}
	return nil
}

// NewAutocomplete creates a search box autocomplete drawing on r.
func (d *Dependencies) NewAutocomplete(r search.Renderer) *search.Autocomplete {
	return search.NewAutocomplete(d.Client, r, d.Config.Guard.Debounce, d.Config.Guard.SearchLimit, d.Logger)
}

// Close releases the session's resources in reverse order of acquisition.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// SetupStubServer creates the development server implementing the storefront API.
func SetupStubServer(cfg *config.Config, logger *slog.Logger, opts ...stub.Option) *http.Server {
	return server.NewHTTPServer(cfg.Stub, ServiceName+"-stub", stub.New(logger, opts...).Handler(), logger)
}
