// Package store holds the in-memory collections behind the marketplace:
// registered users, the catalog, the session cart and the order ledger.
// The stores do no locking and no authorization; service.Marketplace owns
// them and serializes access.
package store

import "github.com/ecofinds/marketplace/internal/core/domain"

type Identity struct {
	users   []domain.User
	byID    map[string]int
	current string
}

func NewIdentity() *Identity {
	return &Identity{byID: make(map[string]int)}
}

func (s *Identity) Add(u domain.User) {
	s.byID[u.ID] = len(s.users)
	s.users = append(s.users, u)
}

func (s *Identity) ByID(id string) (domain.User, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.User{}, false
	}
	return s.users[i], true
}

// ByEmail looks a user up case-insensitively.
func (s *Identity) ByEmail(email string) (domain.User, bool) {
	for _, u := range s.users {
		if domain.SameEmail(u.Email, email) {
			return u, true
		}
	}
	return domain.User{}, false
}

// Replace overwrites the record with the same ID. It reports false if there is none.
func (s *Identity) Replace(u domain.User) bool {
	i, ok := s.byID[u.ID]
	if !ok {
		return false
	}
	s.users[i] = u
	return true
}

func (s *Identity) All() []domain.User {
	return append([]domain.User(nil), s.users...)
}

func (s *Identity) Len() int { return len(s.users) }

func (s *Identity) Current() (domain.User, bool) {
	if s.current == "" {
		return domain.User{}, false
	}
	return s.ByID(s.current)
}

func (s *Identity) CurrentID() string { return s.current }

func (s *Identity) SetCurrent(id string) { s.current = id }

func (s *Identity) ClearCurrent() { s.current = "" }
