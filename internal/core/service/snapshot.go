package service

import (
	"fmt"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/core/store"
)

// Snapshot copies the whole engine state for persistence.
func (m *Marketplace) Snapshot() domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return domain.Snapshot{
		Version:       m.version,
		Users:         m.users.All(),
		Products:      m.products(),
		Cart:          m.cart.Items(),
		Orders:        m.ledger.All(),
		CurrentUserID: m.users.CurrentID(),
	}
}

// Restore replaces the engine state with snap. The snapshot is checked first:
// ids must be unique, emails unique ignoring case, every seller, cart entry
// and the session user must resolve. Order lines may reference deleted
// products. On error the engine is left unchanged.
func (m *Marketplace) Restore(snap domain.Snapshot) error {
	users := store.NewIdentity()
	for _, u := range snap.Users {
		if u.ID == "" {
			return invalidSnapshot("users", "empty id")
		}
		if _, dup := users.ByID(u.ID); dup {
			return invalidSnapshot("users", fmt.Sprintf("duplicate id %s", u.ID))
		}
		if _, dup := users.ByEmail(u.Email); dup {
			return invalidSnapshot("users", fmt.Sprintf("duplicate email %s", u.Email))
		}
		users.Add(u)
	}

	catalog := store.NewCatalog()
	for _, p := range snap.Products {
		if p.ID == "" {
			return invalidSnapshot("products", "empty id")
		}
		if _, dup := catalog.Get(p.ID); dup {
			return invalidSnapshot("products", fmt.Sprintf("duplicate id %s", p.ID))
		}
		if _, ok := users.ByID(p.SellerID); !ok {
			return invalidSnapshot("products", fmt.Sprintf("product %s has unknown seller %s", p.ID, p.SellerID))
		}
		catalog.Add(p.Clone())
	}

	for _, it := range snap.Cart {
		if _, ok := catalog.Get(it.ProductID); !ok {
			return invalidSnapshot("cart", fmt.Sprintf("unknown product %s", it.ProductID))
		}
		if it.Quantity < 1 {
			return invalidSnapshot("cart", fmt.Sprintf("quantity %d for %s", it.Quantity, it.ProductID))
		}
	}
	cart := store.NewCart()
	cart.Load(snap.Cart)

	ledger := store.NewLedger()
	for _, o := range snap.Orders {
		if _, ok := users.ByID(o.UserID); !ok {
			return invalidSnapshot("orders", fmt.Sprintf("order %s has unknown user %s", o.ID, o.UserID))
		}
		ledger.Append(o)
	}

	if snap.CurrentUserID != "" {
		if _, ok := users.ByID(snap.CurrentUserID); !ok {
			return invalidSnapshot("current_user_id", "unknown user")
		}
		users.SetCurrent(snap.CurrentUserID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = users
	m.catalog = catalog
	m.cart = cart
	m.ledger = ledger
	m.version = snap.Version
	return nil
}

func invalidSnapshot(field, reason string) error {
	return domain.NewValidationError(domain.FieldError{Field: "snapshot." + field, Reason: reason})
}
