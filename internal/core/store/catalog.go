package store

import "github.com/ecofinds/marketplace/internal/core/domain"

// Catalog keeps listings in insertion order, which is the "default" sort.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]int)}
}

func (c *Catalog) Add(p domain.Product) {
	c.byID[p.ID] = len(c.products)
	c.products = append(c.products, p)
}

func (c *Catalog) Get(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Replace overwrites a listing in place, keeping its catalog position.
func (c *Catalog) Replace(p domain.Product) bool {
	i, ok := c.byID[p.ID]
	if !ok {
		return false
	}
	c.products[i] = p
	return true
}

func (c *Catalog) Remove(id string) bool {
	i, ok := c.byID[id]
	if !ok {
		return false
	}
	c.products = append(c.products[:i], c.products[i+1:]...)
	delete(c.byID, id)
	for j := i; j < len(c.products); j++ {
		c.byID[c.products[j].ID] = j
	}
	return true
}

func (c *Catalog) All() []domain.Product {
	return append([]domain.Product(nil), c.products...)
}

func (c *Catalog) Len() int { return len(c.products) }

// Lookup adapts the catalog to the resolver signature used for totals.
func (c *Catalog) Lookup(id string) (domain.Product, bool) {
	return c.Get(id)
}
