package stub

import (
	"sort"
	"strings"

	"github.com/abgdnv/storefront/internal/api"
)

// product is a catalogue entry with its stock level.
type product struct {
	api.Product
	Stock int
}

// store is the in-memory state of the stub storefront. Callers hold Server.mu.
type store struct {
	products map[int64]*product
	cart     map[int64]int
	orders   map[int64]string
}

// DefaultCatalog is the catalogue the stub starts with.
func DefaultCatalog() []api.Product {
	return []api.Product{
		{ID: 1, Name: "Wireless Mouse", Price: 29.99, CategoryName: "Electronics", ImageURL: "mouse.jpg", StockQuantity: 5},
		{ID: 2, Name: "Mechanical Keyboard", Price: 89.50, CategoryName: "Electronics", ImageURL: "keyboard.jpg", StockQuantity: 12},
		{ID: 3, Name: "USB-C Hub", Price: 45.00, CategoryName: "Electronics", StockQuantity: 0},
		{ID: 4, Name: "Cotton T-Shirt", Price: 15.99, CategoryName: "Clothing", ImageURL: "tshirt.jpg", StockQuantity: 40},
		{ID: 5, Name: "Running Shoes", Price: 120.00, CategoryName: "Footwear", StockQuantity: 7},
		{ID: 6, Name: "Mouse Pad", Price: 9.99, StockQuantity: 100},
	}
}

func newStore(catalog []api.Product) *store {
	s := &store{
		products: make(map[int64]*product, len(catalog)),
		cart:     make(map[int64]int),
		orders:   map[int64]string{1: "pending", 2: "processing", 3: "shipped"},
	}
	for _, p := range catalog {
		s.products[p.ID] = &product{Product: p, Stock: p.StockQuantity}
	}
	return s
}

// count is the number of units in the cart.
func (s *store) count() int {
	n := 0
	for _, q := range s.cart {
		n += q
	}
	return n
}

// search returns up to limit products whose name contains term, case-insensitively.
func (s *store) search(term string, limit int) []api.Product {
	term = strings.ToLower(term)
	out := make([]api.Product, 0, limit)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			item := p.Product
			item.StockQuantity = p.Stock
			if item.CategoryName == "" {
				item.CategoryName = "Uncategorized"
			}
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
