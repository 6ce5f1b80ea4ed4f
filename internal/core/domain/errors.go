package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmailExists      = errors.New("email already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrUnauthenticated  = errors.New("not logged in")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrDuplicateRequest = errors.New("duplicate request")
)

// Outcome is the closed set of command results exposed to callers.
type Outcome string

const (
	OutcomeSuccess          Outcome = "SUCCESS"
	OutcomeEmailExists      Outcome = "EMAIL_EXISTS"
	OutcomeUserNotFound     Outcome = "USER_NOT_FOUND"
	OutcomeInvalidPassword  Outcome = "INVALID_PASSWORD"
	OutcomeUnauthenticated  Outcome = "UNAUTHENTICATED"
	OutcomeValidation       Outcome = "VALIDATION_ERROR"
	OutcomeNotFound         Outcome = "NOT_FOUND"
	OutcomeForbidden        Outcome = "FORBIDDEN"
	OutcomeEmptyCart        Outcome = "EMPTY_CART"
	OutcomeDuplicateRequest Outcome = "DUPLICATE_REQUEST"
	OutcomeInternal         Outcome = "INTERNAL"
)

var outcomes = []struct {
	err     error
	outcome Outcome
}{
	{ErrEmailExists, OutcomeEmailExists},
	{ErrUserNotFound, OutcomeUserNotFound},
	{ErrInvalidPassword, OutcomeInvalidPassword},
	{ErrUnauthenticated, OutcomeUnauthenticated},
	{ErrValidation, OutcomeValidation},
	{ErrNotFound, OutcomeNotFound},
	{ErrForbidden, OutcomeForbidden},
	{ErrEmptyCart, OutcomeEmptyCart},
	{ErrDuplicateRequest, OutcomeDuplicateRequest},
}

// OutcomeOf maps an error returned by the engine onto its Outcome.
// nil is SUCCESS; anything unrecognized is INTERNAL.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.outcome
		}
	}
	return OutcomeInternal
}

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every rejected field. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
