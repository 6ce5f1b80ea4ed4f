package store

import (
	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace/internal/core/domain"
)

// Cart maps productID -> quantity. Quantities are always >= 1; a line that
// drops to zero is removed. Keys remember the order they were first added.
type Cart struct {
	order []string
	qty   map[string]int
}

func NewCart() *Cart {
	return &Cart{qty: make(map[string]int)}
}

// Add increments the quantity of id and returns the new quantity.
func (c *Cart) Add(id string) int {
	if _, ok := c.qty[id]; !ok {
		c.order = append(c.order, id)
	}
	c.qty[id]++
	return c.qty[id]
}

// Remove decrements the quantity of id and returns what is left.
// Absent lines are left alone.
func (c *Cart) Remove(id string) int {
	n, ok := c.qty[id]
	if !ok {
		return 0
	}
	if n <= 1 {
		c.Purge(id)
		return 0
	}
	c.qty[id] = n - 1
	return n - 1
}

// Purge drops the whole line for id.
func (c *Cart) Purge(id string) {
	if _, ok := c.qty[id]; !ok {
		return
	}
	delete(c.qty, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Clear() {
	c.order = nil
	c.qty = make(map[string]int)
}

func (c *Cart) Quantity(id string) int { return c.qty[id] }

func (c *Cart) Len() int { return len(c.order) }

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []domain.LineItem {
	out := make([]domain.LineItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, domain.LineItem{ProductID: id, Quantity: c.qty[id]})
	}
	return out
}

// Load replaces the contents with items. Non-positive quantities are skipped
// and repeated ids are summed.
func (c *Cart) Load(items []domain.LineItem) {
	c.Clear()
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if _, ok := c.qty[it.ProductID]; !ok {
			c.order = append(c.order, it.ProductID)
		}
		c.qty[it.ProductID] += it.Quantity
	}
}

// Lookup resolves a product id against the live catalog.
type Lookup func(id string) (domain.Product, bool)

// Resolve joins items against lookup at call time. Items whose product no
// longer exists are skipped and counted in unknown.
func Resolve(items []domain.LineItem, lookup Lookup) (lines []domain.Line, unknown int) {
	lines = make([]domain.Line, 0, len(items))
	for _, it := range items {
		p, ok := lookup(it.ProductID)
		if !ok {
			unknown++
			continue
		}
		lines = append(lines, domain.Line{
			Product:  p,
			Quantity: it.Quantity,
			Total:    p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	return lines, unknown
}

func Sum(lines []domain.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total)
	}
	return total
}
