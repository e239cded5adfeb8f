// Package cart owns the client-local collection of intended purchases. The
// in-memory cart is authoritative; the key-value store holds a serialized
// mirror that is rewritten on every mutation.
package cart

import (
	"github.com/zoudousouk/souk-go/pkg/money"
)

// Line is one product entry with the unit price captured when it was added.
// The JSON tags are the persisted wire shape, shared with the catalog.
type Line struct {
	ProductID string       `json:"id"`
	Name      string       `json:"nom"`
	UnitPrice money.Amount `json:"prix"`
	Quantity  int          `json:"quantity"`
	Category  string       `json:"categorie"`
}

// Subtotal is the line's price contribution.
func (l Line) Subtotal() money.Amount {
	return l.UnitPrice * money.Amount(l.Quantity)
}

// Totals are derived from the current lines, never stored.
type Totals struct {
	Items int
	Price money.Amount
}
