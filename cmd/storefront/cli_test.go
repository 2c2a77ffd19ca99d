package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abgdnv/storefront/internal/form"
	"github.com/abgdnv/storefront/internal/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStub starts a stub storefront and points the client configuration at it.
func newStub(t *testing.T, opts ...stub.Option) *stub.Server {
	t.Helper()
	srv := stub.New(slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	t.Setenv("STOREFRONT_CLIENT_BASEURL", ts.URL)
	t.Setenv("STOREFRONT_STORAGE_PATH", filepath.Join(t.TempDir(), "state.db"))
	t.Setenv("STOREFRONT_LOG_LEVEL", "error")
	t.Setenv("STOREFRONT_GUARD_DEBOUNCE", "10ms")
	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCLI_Cart(t *testing.T) {
	srv := newStub(t)

	out, err := execute(t, "", "cart", "add", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Wireless Mouse added to cart")
	assert.Contains(t, out, "Cart: 1 item(s)")

	out, err = execute(t, "", "cart", "add", "2", "--quantity", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart: 3 item(s)")

	out, err = execute(t, "", "cart", "count")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = execute(t, "", "cart", "update", "2", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart updated")
	assert.Equal(t, 4, srv.CartQuantity(2))

	out, err = execute(t, "", "cart", "update", "3", "1")
	require.Error(t, err)
	assert.Contains(t, out, "Insufficient stock")
}

func TestCLI_CartAddClampsQuantity(t *testing.T) {
	srv := newStub(t)

	out, err := execute(t, "", "cart", "add", "1", "-q", "50", "--stock", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Only 5 items available in stock")
	assert.Equal(t, 5, srv.CartQuantity(1))

	out, err = execute(t, "", "cart", "add", "2", "-q", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart: 6 item(s)")
	assert.Equal(t, 1, srv.CartQuantity(2))
}

func TestCLI_CartRemoveAsksFirst(t *testing.T) {
	srv := newStub(t, stub.WithCart(map[int64]int{1: 2}))

	out, err := execute(t, "n\n", "cart", "remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to remove this item from your cart? [y/N]:")
	assert.Contains(t, out, "Cancelled")
	assert.Zero(t, srv.Calls("/api/cart/remove"))

	out, err = execute(t, "y\n", "cart", "remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Item removed from cart")
	assert.Zero(t, srv.CartQuantity(1))
}

func TestCLI_CartStep(t *testing.T) {
	srv := newStub(t, stub.WithCart(map[int64]int{1: 1}))

	out, err := execute(t, "", "cart", "step", "1", "up", "--current", "1", "--max", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Quantity: 2")
	assert.Equal(t, 2, srv.CartQuantity(1))

	out, err = execute(t, "", "cart", "step", "1", "up", "--current", "5", "--max", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Maximum quantity reached")
	assert.Contains(t, out, "Quantity: 5")

	out, err = execute(t, "", "cart", "step", "1", "9", "--current", "2", "--max", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Maximum quantity is 5")
	assert.Contains(t, out, "Quantity: 5")
	assert.Equal(t, 5, srv.CartQuantity(1))

	out, err = execute(t, "n\n", "cart", "step", "1", "down", "--current", "1", "--max", "5", "--name", "Wireless Mouse")
	require.NoError(t, err)
	assert.Contains(t, out, "Remove Wireless Mouse from your cart?")
	assert.Contains(t, out, "Quantity: 1")
	assert.Equal(t, 5, srv.CartQuantity(1))
}

func TestCLI_Search(t *testing.T) {
	newStub(t)

	out, err := execute(t, "", "search", "mouse", "--select", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `Searching for "mouse"`)
	assert.Contains(t, out, "$29.99")
	assert.Contains(t, out, "/product/1")
	assert.Contains(t, out, "Uncategorized")
	assert.Contains(t, out, "Open /product/6")

	out, err = execute(t, "", "search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, `No products found for "zzz"`)
}

func TestCLI_Admin(t *testing.T) {
	srv := newStub(t)

	out, err := execute(t, "", "admin", "status", "1", "shipped")
	require.NoError(t, err)
	assert.Contains(t, out, "Order status updated successfully")
	assert.Contains(t, out, "Order #1: Shipped")
	assert.Equal(t, "shipped", srv.OrderStatus(1))

	_, err = execute(t, "", "admin", "status", "1", "lost")
	require.ErrorContains(t, err, "unknown status: lost")

	out, err = execute(t, "n\n", "admin", "bulk", "activate", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to activate 2 item(s)?")
	assert.Zero(t, srv.Calls("/admin/bulk-action"))

	out, err = execute(t, "", "--yes", "admin", "bulk", "activate", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Bulk activate applied to 2 item(s)")

	out, err = execute(t, "", "admin", "bulk", "activate")
	require.NoError(t, err)
	assert.Contains(t, out, "Please select items to perform bulk action")

	out, err = execute(t, "", "-y", "admin", "delete", "/admin/products/delete/3", "--name", "USB-C Hub")
	require.NoError(t, err)
	assert.Contains(t, out, "Product deleted successfully")
}

func TestCLI_ValidateProduct(t *testing.T) {
	newStub(t)

	out, err := execute(t, "", "admin", "validate-product", "--name", "Lamp", "--price", "19.90", "--stock", "3", "--category", "1")
	require.NoError(t, err)
	assert.Equal(t, "Product form is valid\n", out)

	out, err = execute(t, "", "admin", "validate-product", "--price", "0", "--stock", "many")
	require.ErrorIs(t, err, form.ErrInvalid)
	assert.Contains(t, out, "name: This field is required")
	assert.Contains(t, out, "price: Price must be greater than 0")
	assert.Contains(t, out, "stock_quantity: Please enter a valid number")
}

func TestCLI_Theme(t *testing.T) {
	newStub(t)

	out, err := execute(t, "", "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = execute(t, "", "theme", "toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "Switched to dark theme")

	out, err = execute(t, "", "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	_, err = execute(t, "", "theme", "set", "sepia")
	require.Error(t, err)
}

func TestCLI_Config(t *testing.T) {
	newStub(t)
	t.Setenv("STOREFRONT_CLIENT_TIMEOUT", "3s")

	out, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "timeout: 3s")
	assert.Contains(t, out, "debounce: 10ms")

	t.Setenv("STOREFRONT_GUARD_SEARCHLIMIT", "0")
	_, err = execute(t, "", "config")
	require.ErrorContains(t, err, "guard.searchlimit")
}

func TestCLI_AdminFilter(t *testing.T) {
	rows := "#1001 Alice Smith Pending\n#1002 Bob Jones Shipped\n#1003 ALICE COOPER Delivered\n"

	out, err := execute(t, rows, "admin", "filter", "alice", "--debounce", "1ms")
	require.NoError(t, err)
	assert.Equal(t, "#1001 Alice Smith Pending\n#1003 ALICE COOPER Delivered\n", out)
}
