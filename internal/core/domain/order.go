package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one productID -> quantity entry of a cart or an order.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID     string     `json:"id"`
	UserID string     `json:"user_id"`
	Date   time.Time  `json:"date"`
	Items  []LineItem `json:"items"`
}

// Quantities returns the order items as a productID -> quantity map.
func (o Order) Quantities() map[string]int {
	out := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		out[it.ProductID] = it.Quantity
	}
	return out
}

func (o Order) Clone() Order {
	o.Items = append([]LineItem(nil), o.Items...)
	return o
}

// Line is a LineItem joined against the live catalog.
type Line struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// OrderView is an order resolved for display. Unknown counts entries whose
// product no longer exists; they contribute nothing to Total.
type OrderView struct {
	Order   Order           `json:"order"`
	Lines   []Line          `json:"lines"`
	Unknown int             `json:"unknown_items"`
	Total   decimal.Decimal `json:"total"`
}
