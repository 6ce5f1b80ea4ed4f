package messaging

import (
	"context"
	"log"

	"github.com/ecofinds/marketplace/internal/core/domain"
)

// LogPublisher stands in for a broker when none is configured.
type LogPublisher struct{}

func (LogPublisher) PublishOrder(ctx context.Context, order domain.Order) error {
	log.Printf("Order placed: id=%s user=%s lines=%d", order.ID, order.UserID, len(order.Items))
	return nil
}

func (LogPublisher) Close() error { return nil }
