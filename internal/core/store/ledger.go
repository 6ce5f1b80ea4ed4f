package store

import "github.com/ecofinds/marketplace/internal/core/domain"

// Ledger is the append-only order history.
type Ledger struct {
	orders []domain.Order
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Append(o domain.Order) {
	l.orders = append(l.orders, o.Clone())
}

func (l *Ledger) All() []domain.Order {
	out := make([]domain.Order, 0, len(l.orders))
	for _, o := range l.orders {
		out = append(out, o.Clone())
	}
	return out
}

func (l *Ledger) ForUser(userID string) []domain.Order {
	var out []domain.Order
	for _, o := range l.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (l *Ledger) Len() int { return len(l.orders) }
