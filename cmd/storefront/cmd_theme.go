package main

import (
	"fmt"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/theme"
	"github.com/spf13/cobra"
)

func (c *cli) newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the color theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				_, err := fmt.Fprintln(c.out, deps.Theme.Current())
				return err
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				_, err := deps.Theme.Toggle(cmd.Context())
				return err
			})
		},
	}

	set := &cobra.Command{
		Use:       "set <light|dark>",
		Short:     "Choose a theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(theme.Light), string(theme.Dark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := theme.Parse(args[0])
			if err != nil {
				return err
			}
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				return deps.Theme.Set(cmd.Context(), t)
			})
		},
	}

	cmd.AddCommand(toggle, set)
	return cmd
}
