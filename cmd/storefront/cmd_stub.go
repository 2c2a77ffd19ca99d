package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const stubShutdownTimeout = 5 * time.Second

func (c *cli) newStubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local server implementing the storefront API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runStub(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&c.stubPort, "port", "p", 0, "listen port, overrides stub.port")
	return cmd
}

func (c *cli) runStub(ctx context.Context) error {
	if c.stubPort > 0 {
		c.cfg.Stub.Port = c.stubPort
	}
	logger := c.logger.With("component", "stub")

	if c.cfg.Telemetry.Metrics.Enabled {
		mp, err := telemetry.NewMeterProvider(app.ServiceName + "-stub")
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer func() {
			if err := mp.Shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Error("Failed to shut down meter provider", slog.String("error", err.Error()))
			}
		}()
	}

	httpServer := app.SetupStubServer(c.cfg, logger)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Stub server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("stub server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down stub server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), stubShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
