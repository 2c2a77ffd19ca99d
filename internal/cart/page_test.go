package cart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPage_Totals(t *testing.T) {
	testCases := []struct {
		name string
		rows []Row
		want Totals
	}{
		{
			name: "empty cart has no shipping",
			want: Totals{},
		},
		{
			name: "tax and shipping",
			rows: []Row{
				{ProductID: 1, UnitPrice: 1000, Quantity: 2},
				{ProductID: 2, UnitPrice: 550, Quantity: 1},
			},
			want: Totals{Subtotal: 2550, Tax: 204, Shipping: 1000, Total: 3754},
		},
		{
			name: "tax rounds half up",
			rows: []Row{{ProductID: 1, UnitPrice: 1999, Quantity: 1}},
			want: Totals{Subtotal: 1999, Tax: 160, Shipping: 1000, Total: 3159},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewPage(tc.rows...).Totals()
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Totals() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPage_SetQuantityAndRemove(t *testing.T) {
	p := NewPage(
		Row{ProductID: 1, Name: "Mouse", UnitPrice: 2999, Quantity: 1, MaxStock: 5},
		Row{ProductID: 2, Name: "Keyboard", UnitPrice: 8950, Quantity: 2, MaxStock: 12},
		Row{ProductID: 3, Name: "Hub", UnitPrice: 4500, Quantity: 1, MaxStock: 3},
	)

	p.SetQuantity(2, 3)
	row, ok := p.Row(2)
	assert.True(t, ok)
	assert.Equal(t, 3, row.Quantity)

	p.SetQuantity(1, 0)
	_, ok = p.Row(1)
	assert.False(t, ok, "quantity 0 removes the row")

	p.Remove(3)
	p.SetQuantity(99, 4) // unknown product is ignored

	want := []Row{{ProductID: 2, Name: "Keyboard", UnitPrice: 8950, Quantity: 3, MaxStock: 12}}
	if diff := cmp.Diff(want, p.Rows()); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, p.Empty())

	p.Remove(2)
	assert.True(t, p.Empty())
	assert.Equal(t, Totals{}, p.Totals())
}

func TestPage_RowsIsACopy(t *testing.T) {
	p := NewPage(Row{ProductID: 1, Quantity: 1})
	rows := p.Rows()
	rows[0].Quantity = 9
	row, _ := p.Row(1)
	assert.Equal(t, 1, row.Quantity)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCents(0))
	assert.Equal(t, "$29.99", FormatCents(2999))
	assert.Equal(t, "$1,234.50", FormatCents(123450))
	assert.Equal(t, "-$5.05", FormatCents(-505))
	assert.Equal(t, int64(2999), Cents(29.99))
	assert.Equal(t, "subtotal $25.50, tax $2.04, shipping $10.00, total $37.54",
		Totals{Subtotal: 2550, Tax: 204, Shipping: 1000, Total: 3754}.String())
}

func TestBadge(t *testing.T) {
	var b Badge
	assert.False(t, b.Visible())
	assert.Equal(t, "", b.String())

	b.Set(3)
	assert.True(t, b.Visible())
	assert.Equal(t, "3", b.String())

	b.Hide()
	assert.False(t, b.Visible())
	b.Set(-1)
	assert.Equal(t, 0, b.Count())
}
