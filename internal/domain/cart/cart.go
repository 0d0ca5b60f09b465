// Package cart holds the cart reconciliation rules shared by the session
// and server-synced cart services.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

// Line is one product in the cart. Name, Price and Image are copied from the
// catalog when the product is first added.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int64           `json:"quantity"`
}

// Subtotal is price * quantity, unrounded.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Cart keeps at most one line per product and never a line with quantity <= 0.
type Cart struct {
	lines []Line
}

// New rebuilds a cart from stored lines. Non-positive quantities are dropped
// and duplicate product ids are folded into the first occurrence.
func New(lines ...Line) *Cart {
	c := &Cart{}
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := c.index(l.ProductID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

func (c *Cart) index(productID int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem increments an existing line or appends a new one with quantity 1.
func (c *Cart) AddItem(p model.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
	})
}

func (c *Cart) RemoveItem(productID int64) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// ChangeQuantity adds delta to the line. A result <= 0 removes it.
// Unknown products are ignored.
func (c *Cart) ChangeQuantity(productID int64, delta int64) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	q := c.lines[i].Quantity + delta
	if q <= 0 {
		c.RemoveItem(productID)
		return
	}
	c.lines[i].Quantity = q
}

// Total is recomputed on every call, rounded to 2 decimal places.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum.Round(2)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Count is the total number of units across all lines.
func (c *Cart) Count() int64 {
	var n int64
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}
