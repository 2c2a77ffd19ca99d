package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/storefront/internal/admin"
	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/form"
	"github.com/abgdnv/storefront/internal/widget"
	"github.com/spf13/cobra"
)

var orderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

func (c *cli) newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin panel actions",
	}

	var previous string
	status := &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Change the status of an order",
		Long:  "Change the status of an order. One of: " + strings.Join(orderStatuses, ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order id")
			if err != nil {
				return err
			}
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				sel := widget.NewSelect(previous, orderStatuses...)
				if !sel.Choose(args[1]) {
					return fmt.Errorf("unknown status: %s", args[1])
				}
				if err := deps.Admin.UpdateStatus(cmd.Context(), id, sel); err != nil {
					return err
				}
				_, err := fmt.Fprintf(c.out, "Order #%d: %s\n", id, admin.StatusLabel(sel.Current()))
				return err
			})
		},
	}
	status.Flags().StringVar(&previous, "from", "pending", "status currently shown for the order")

	bulk := &cobra.Command{
		Use:   "bulk <delete|activate|deactivate> <item-id>...",
		Short: "Apply an action to several items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				err := deps.Admin.ApplyBulk(cmd.Context(), args[0], args[1:])
				if errors.Is(err, admin.ErrNothingSelected) || errors.Is(err, admin.ErrNoAction) {
					return nil
				}
				return c.declined(err)
			})
		},
	}

	var name string
	del := &cobra.Command{
		Use:   "delete <url>",
		Short: "Delete an item through its admin delete URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				return c.declined(deps.Admin.Delete(cmd.Context(), args[0], name, widget.NewButton("Delete")))
			})
		},
	}
	del.Flags().StringVar(&name, "name", "", "name of the item shown in the prompt")

	cmd.AddCommand(status, bulk, del, c.newFilterCmd(), c.newValidateProductCmd())
	return cmd
}

func (c *cli) newValidateProductCmd() *cobra.Command {
	var p form.Product
	cmd := &cobra.Command{
		Use:   "validate-product",
		Short: "Check a product form before submitting it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				err := deps.Forms.Validate(p)
				var invalid form.Errors
				if !errors.As(err, &invalid) {
					if err != nil {
						return err
					}
					_, err := fmt.Fprintln(c.out, "Product form is valid")
					return err
				}
				for _, field := range invalid.Fields() {
					_, _ = fmt.Fprintf(c.out, "%s: %s\n", field, invalid[field])
				}
				return form.ErrInvalid
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Name, "name", "", "product name")
	f.StringVar(&p.Description, "description", "", "product description")
	f.StringVar(&p.Price, "price", "", "unit price")
	f.StringVar(&p.StockQuantity, "stock", "", "stock quantity")
	f.StringVar(&p.CategoryID, "category", "", "category id")
	f.StringVar(&p.ImageURL, "image", "", "image URL")
	return cmd
}

func (c *cli) newFilterCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "filter <term>",
		Short: "Filter table rows read from stdin",
		Long: `Print the rows read from stdin that contain term, ignoring case. The term is
applied the way the admin table search box applies it, after the debounce delay.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []string
			scanner := bufio.NewScanner(c.in)
			for scanner.Scan() {
				rows = append(rows, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read rows: %w", err)
			}

			visible := make(chan []int, 1)
			filter := admin.NewTableFilter(rows, debounce, func(idx []int) { visible <- idx })
			defer filter.Close()
			filter.Input(args[0])

			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case idx := <-visible:
				for _, i := range idx {
					if _, err := fmt.Fprintln(c.out, rows[i]); err != nil {
						return err
					}
				}
				return nil
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", admin.DefaultFilterDebounce, "delay before the filter applies")
	return cmd
}
