package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/core/service"
	"github.com/ecofinds/marketplace/internal/port"
)

// Status is the outcome block carried by every HTTP and gRPC reply.
type Status struct {
	Success bool                `json:"success"`
	Code    domain.Outcome      `json:"code"`
	Message string              `json:"message,omitempty"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func statusOf(err error) Status {
	if err == nil {
		return Status{Success: true, Code: domain.OutcomeSuccess}
	}

	st := Status{Code: domain.OutcomeOf(err), Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		st.Fields = verr.Fields
	}
	if st.Code == domain.OutcomeInternal {
		log.Printf("ERROR: %v", err)
		st.Message = "internal error"
	}
	return st
}

func httpStatus(o domain.Outcome) int {
	switch o {
	case domain.OutcomeSuccess:
		return http.StatusOK
	case domain.OutcomeValidation:
		return http.StatusBadRequest
	case domain.OutcomeUnauthenticated, domain.OutcomeInvalidPassword:
		return http.StatusUnauthorized
	case domain.OutcomeForbidden:
		return http.StatusForbidden
	case domain.OutcomeNotFound, domain.OutcomeUserNotFound:
		return http.StatusNotFound
	case domain.OutcomeEmailExists, domain.OutcomeEmptyCart, domain.OutcomeDuplicateRequest:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// UserView is a user without the stored credential.
type UserView struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Address       string `json:"address,omitempty"`
	Age           *int   `json:"age,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
	Image         string `json:"image,omitempty"`
}

func viewUser(u domain.User) *UserView {
	return &UserView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Address:       u.Address,
		Age:           u.Age,
		ContactNumber: u.ContactNumber,
		Image:         u.Image,
	}
}

// persist saves the engine after a successful command. Failures are logged,
// the command has already happened.
func persist(ctx context.Context, snapshots port.SnapshotRepository, market *service.Marketplace) {
	if snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := snapshots.Save(ctx, market.Snapshot())
	if errors.Is(err, port.ErrStaleSnapshot) {
		return
	}
	if err != nil {
		log.Printf("WARN: failed to save snapshot: %v", err)
	}
}
