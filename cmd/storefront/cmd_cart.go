package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/abgdnv/storefront/internal/admin"
	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/widget"
	"github.com/spf13/cobra"
)

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", what, raw)
	}
	return id, nil
}

// declined turns a refused confirmation into a clean exit.
func (c *cli) declined(err error) error {
	if errors.Is(err, cart.ErrNotConfirmed) || errors.Is(err, admin.ErrNotConfirmed) {
		_, _ = fmt.Fprintln(c.out, "Cancelled")
		return nil
	}
	return err
}

func (c *cli) newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	var (
		quantity string
		stock    int
	)
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: `Add a product to the cart. The quantity goes through the product page
selector first: it is at least 1 and, when --stock is set, at most the stock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				sel := cart.NewSelector(stock, deps.Notifier, nil)
				sel.Set(cmd.Context(), quantity)
				if err := deps.Cart.Add(cmd.Context(), id, sel.Quantity(), widget.NewButton("Add to cart")); err != nil {
					return err
				}
				_, err := fmt.Fprintf(c.out, "Cart: %d item(s)\n", deps.Cart.Badge().Count())
				return err
			})
		},
	}
	add.Flags().StringVarP(&quantity, "quantity", "q", "1", "number of units to add")
	add.Flags().IntVar(&stock, "stock", 0, "units in stock, 0 when unknown")

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a cart item; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity: %s", args[1])
			}
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				return deps.Cart.Update(cmd.Context(), id, qty)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				return c.declined(deps.Cart.Remove(cmd.Context(), id, widget.NewButton("Remove")))
			})
		},
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Show the number of items in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				if err := deps.Cart.RefreshCount(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(c.out, deps.Cart.Badge().Count())
				return err
			})
		},
	}

	cmd.AddCommand(add, update, remove, count, c.newStepCmd())
	return cmd
}

func (c *cli) newStepCmd() *cobra.Command {
	var row cart.Row
	cmd := &cobra.Command{
		Use:   "step <product-id> <up|down|quantity>",
		Short: "Drive the quantity stepper of a cart row",
		Long: `Press the increase or decrease button of a cart row, or type a quantity
into its input. --current is the quantity shown on the page and --max the
stock limit of the row.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			row.ProductID = id
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				st := deps.Cart.NewStepper(row, deps.Throttle)
				switch args[1] {
				case "up":
					err = st.Increase(cmd.Context())
				case "down":
					err = st.Decrease(cmd.Context())
				default:
					err = st.SetQuantity(cmd.Context(), args[1])
				}
				if errors.Is(err, cart.ErrQuantityLimit) {
					err = nil
				}
				if err := c.declined(err); err != nil {
					return err
				}
				_, err := fmt.Fprintf(c.out, "Quantity: %d\n", st.Input().Current())
				return err
			})
		},
	}
	cmd.Flags().IntVar(&row.Quantity, "current", 1, "quantity currently in the cart")
	cmd.Flags().IntVar(&row.MaxStock, "max", 0, "stock limit, 0 when unknown")
	cmd.Flags().StringVar(&row.Name, "name", "", "product name used in prompts")
	return cmd
}
