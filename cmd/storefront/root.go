package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/spf13/cobra"
)

// cli holds what every command shares: streams, flags and the loaded configuration.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configFile string
	yes        bool
	stubPort   int

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront client",
		Long:          "Cart, search and admin actions against a storefront API, plus a local stub of that API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "config.yaml", "path to the YAML configuration file")
	root.PersistentFlags().BoolVarP(&c.yes, "yes", "y", false, "answer yes to every confirmation prompt")

	root.AddCommand(
		c.newCartCmd(),
		c.newSearchCmd(),
		c.newAdminCmd(),
		c.newThemeCmd(),
		c.newStubCmd(),
		c.newConfigCmd(),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := configloader.Load[*config.Config](app.ServiceName, c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.cfg = cfg
	c.logger = bootstrap.NewLogger(c.errOut, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(c.logger)
	c.logger.Debug("Configuration loaded", "config", cfg.String())
	return nil
}

// session builds the client dependencies and closes them when fn returns.
func (c *cli) session(ctx context.Context, fn func(deps *app.Dependencies) error) error {
	deps, err := app.SetupDependencies(ctx, c.cfg, c.out, c.confirmer(), c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(context.WithoutCancel(ctx)); err != nil {
			c.logger.Error("Failed to close session", "error", err)
		}
	}()
	return fn(deps)
}

func (c *cli) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(c.out, c.cfg.String())
			return err
		},
	}
}
