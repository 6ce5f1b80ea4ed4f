package port

import (
	"context"

	"github.com/ecofinds/marketplace/internal/core/domain"
)

type OrderPublisher interface {
	// PublishOrder announces a placed order to downstream consumers
	PublishOrder(ctx context.Context, order domain.Order) error

	Close() error
}
