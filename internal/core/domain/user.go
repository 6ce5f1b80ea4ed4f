package domain

import "strings"

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username" validate:"required,max=255"`
	Email         string `json:"email" validate:"required,max=255,email"`
	PasswordHash  string `json:"password_hash,omitempty"`
	Address       string `json:"address,omitempty"`
	Age           *int   `json:"age,omitempty" validate:"omitempty,gte=18,lte=100"`
	ContactNumber string `json:"contact_number,omitempty" validate:"omitempty,max=32,contact"`
	Image         string `json:"image,omitempty"`
}

// CountryCodes lists the prefixes accepted in front of a contact number.
var CountryCodes = []string{"+91", "+44", "+1", "+61", "+81"}

// ValidContactNumber reports whether s is a recognized country code followed
// by a space and a digits-only local number.
func ValidContactNumber(s string) bool {
	code, local, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return false
	}
	known := false
	for _, c := range CountryCodes {
		if c == code {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	local = strings.TrimSpace(local)
	if local == "" {
		return false
	}
	for _, r := range local {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SameEmail compares mailbox addresses case-insensitively.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
