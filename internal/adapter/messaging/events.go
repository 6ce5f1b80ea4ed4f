package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecofinds/marketplace/internal/core/domain"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderPlacedVersion = 1
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderPlacedPayload struct {
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Date    time.Time `json:"date"`
	Items   []ItemQty `json:"items"`
}

// NewOrderPlaced wraps order in an OrderPlaced envelope.
func NewOrderPlaced(order domain.Order, producer string, now time.Time) (Envelope, error) {
	items := make([]ItemQty, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, ItemQty{ProductID: it.ProductID, Qty: it.Quantity})
	}

	payload, err := json.Marshal(OrderPlacedPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Date:    order.Date,
		Items:   items,
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload: %w", err)
	}

	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderPlaced,
		EventVersion: EventOrderPlacedVersion,
		OccurredAt:   now.UTC(),
		Producer:     producer,
		Payload:      payload,
	}, nil
}

// UnwrapPayload decodes the payload of env into T.
func UnwrapPayload[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
