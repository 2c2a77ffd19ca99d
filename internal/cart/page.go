package cart

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// TaxPercent is applied to the subtotal.
	TaxPercent = 8
	// ShippingCents is charged on any non-empty cart.
	ShippingCents int64 = 1000
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Cents converts a price in dollars to cents.
func Cents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// FormatCents renders an amount as dollars, e.g. $1,234.50.
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return printer.Sprintf("%s$%d.%s", sign, c/100, fmt.Sprintf("%02d", c%100))
}

// Row is one cart line.
type Row struct {
	ProductID int64
	Name      string
	UnitPrice int64 // cents
	Quantity  int
	MaxStock  int
}

// LineTotal is unit price times quantity, in cents.
func (r Row) LineTotal() int64 {
	return r.UnitPrice * int64(r.Quantity)
}

// Totals is the order summary shown under the cart.
type Totals struct {
	Subtotal int64
	Tax      int64
	Shipping int64
	Total    int64
}

func (t Totals) String() string {
	return printer.Sprintf("subtotal %s, tax %s, shipping %s, total %s",
		FormatCents(t.Subtotal), FormatCents(t.Tax), FormatCents(t.Shipping), FormatCents(t.Total))
}

// Page is the cart page: its rows in display order.
type Page struct {
	mu   sync.Mutex
	rows []Row
}

func NewPage(rows ...Row) *Page {
	return &Page{rows: append([]Row(nil), rows...)}
}

// Rows returns a copy of the rows.
func (p *Page) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Row(nil), p.rows...)
}

// Row returns the row of a product.
func (p *Page) Row(productID int64) (Row, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := p.index(productID); i >= 0 {
		return p.rows[i], true
	}
	return Row{}, false
}

// SetQuantity changes the quantity of a row. A quantity of zero or less removes it.
func (p *Page) SetQuantity(productID int64, qty int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.index(productID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		p.rows = append(p.rows[:i], p.rows[i+1:]...)
		return
	}
	p.rows[i].Quantity = qty
}

// Remove drops the row of a product.
func (p *Page) Remove(productID int64) {
	p.SetQuantity(productID, 0)
}

// Empty reports whether the cart has no rows.
func (p *Page) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rows) == 0
}

// Totals recomputes the summary from the current rows.
func (p *Page) Totals() Totals {
	p.mu.Lock()
	defer p.mu.Unlock()
	var t Totals
	for _, r := range p.rows {
		t.Subtotal += r.LineTotal()
	}
	if t.Subtotal > 0 {
		t.Tax = (t.Subtotal*TaxPercent + 50) / 100
		t.Shipping = ShippingCents
	}
	t.Total = t.Subtotal + t.Tax + t.Shipping
	return t
}

func (p *Page) index(productID int64) int {
	for i, r := range p.rows {
		if r.ProductID == productID {
			return i
		}
	}
	return -1
}
