package timestore

import (
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// Cart is an ordered list of lines. Every line keeps quantity >= 1.
type Cart struct {
	lines []shop.CartLine
}

func NewCart(lines []shop.CartLine) Cart {
	c := Cart{}
	for _, l := range lines {
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// Add inserts a line with quantity 1 or increments an existing one.
func (c *Cart) Add(p shop.Product) {
	for i := range c.lines {
		if c.lines[i].ID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, shop.CartLine{Product: p, Quantity: 1})
}

// Remove drops the line regardless of its quantity.
func (c *Cart) Remove(productID string) {
	out := c.lines[:0]
	for _, l := range c.lines {
		if l.ID != productID {
			out = append(out, l)
		}
	}
	c.lines = out
}

// Adjust sets quantity to max(1, quantity+delta). It never removes a line.
func (c *Cart) Adjust(productID string, delta int) {
	for i := range c.lines {
		if c.lines[i].ID == productID {
			c.lines[i].Quantity = max(1, c.lines[i].Quantity+delta)
		}
	}
}

func (c *Cart) Clear() { c.lines = nil }

// Deduct takes sold quantities out of the cart, dropping lines that reach
// zero.
func (c *Cart) Deduct(sold []shop.SaleItem) {
	qty := make(map[string]int, len(sold))
	for _, it := range sold {
		qty[it.ProductID] += it.Quantity
	}
	out := c.lines[:0]
	for _, l := range c.lines {
		l.Quantity -= qty[l.ID]
		if l.Quantity >= 1 {
			out = append(out, l)
		}
	}
	c.lines = out
	if len(c.lines) == 0 {
		c.lines = nil
	}
}

func (c Cart) Lines() []shop.CartLine { return append([]shop.CartLine(nil), c.lines...) }

func (c Cart) Len() int { return len(c.lines) }

// Count is the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is Σ price × quantity, recomputed on every call.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
