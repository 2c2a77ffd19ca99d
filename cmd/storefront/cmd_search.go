package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/abgdnv/storefront/internal/api"
	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/search"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var strongTag = regexp.MustCompile(`<strong>(.*?)</strong>`)

// terminalRenderer prints the suggestion list and signals once a search settles.
type terminalRenderer struct {
	out    io.Writer
	match  lipgloss.Style
	mark   lipgloss.Style
	list   []api.Product
	query  string
	once   sync.Once
	settle chan struct{}
}

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	return &terminalRenderer{
		out:    out,
		match:  lipgloss.NewStyle().Bold(true),
		mark:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		settle: make(chan struct{}),
	}
}

func (r *terminalRenderer) done() {
	r.once.Do(func() { close(r.settle) })
}

func (r *terminalRenderer) Loading(query string) {
	_, _ = fmt.Fprintf(r.out, "Searching for %q...\n", query)
}

func (r *terminalRenderer) Results(query string, products []api.Product) {
	r.query, r.list = query, products
	for i, p := range products {
		_, _ = fmt.Fprintf(r.out, "%2d. %s\n", i+1, r.line(p))
	}
	r.done()
}

func (r *terminalRenderer) NoResults(query string) {
	_, _ = fmt.Fprintf(r.out, "No products found for %q\n", query)
	r.done()
}

func (r *terminalRenderer) Error(string) {
	_, _ = fmt.Fprintln(r.out, "Search failed")
	r.done()
}

func (r *terminalRenderer) Hide() {
	r.list = nil
}

func (r *terminalRenderer) Select(index int) {
	if index < 0 || index >= len(r.list) {
		return
	}
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.mark.Render(">"), r.line(r.list[index]))
}

func (r *terminalRenderer) line(p api.Product) string {
	name := strongTag.ReplaceAllStringFunc(search.Highlight(p.Name, r.query), func(m string) string {
		return r.match.Render(strongTag.FindStringSubmatch(m)[1])
	})
	category := p.CategoryName
	if category == "" {
		category = "Uncategorized"
	}
	return fmt.Sprintf("%s  %s  %s  %s", name, cart.FormatCents(cart.Cents(p.Price)), category, search.ProductPath(p))
}

func (c *cli) newSearchCmd() *cobra.Command {
	var (
		pick    int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show autocomplete suggestions for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session(cmd.Context(), func(deps *app.Dependencies) error {
				r := newTerminalRenderer(c.out)
				ac := deps.NewAutocomplete(r)
				defer ac.Close()

				ac.Input(strings.Join(args, " "))
				select {
				case <-r.settle:
				case <-time.After(timeout):
					return fmt.Errorf("no suggestions within %s", timeout)
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}

				if pick <= 0 {
					return nil
				}
				for range pick {
					ac.Next()
				}
				p, ok := ac.Selected()
				if !ok {
					return fmt.Errorf("no suggestion to select")
				}
				_, err := fmt.Fprintf(c.out, "Open %s\n", search.ProductPath(p))
				return err
			})
		},
	}
	cmd.Flags().IntVar(&pick, "select", 0, "select the n-th suggestion and print its page")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "how long to wait for suggestions")
	return cmd
}
