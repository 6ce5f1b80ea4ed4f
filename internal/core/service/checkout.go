package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/port"
)

// CheckoutService places orders and hands them to background workers.
type CheckoutService struct {
	market     *Marketplace
	cache      port.IdempotencyStore
	orderQueue chan domain.Order

	mu     sync.RWMutex
	closed bool
}

// NewCheckoutService wires checkout to market. cache may be nil, in which
// case request keys are ignored.
func NewCheckoutService(market *Marketplace, cache port.IdempotencyStore, queueSize int) *CheckoutService {
	return &CheckoutService{
		market:     market,
		cache:      cache,
		orderQueue: make(chan domain.Order, queueSize),
	}
}

// Checkout places an order from the cart. A repeated non-empty requestKey
// from the same user returns domain.ErrDuplicateRequest without touching the
// cart. The order is queued for publishing when there is room; a full queue
// does not fail the checkout.
func (s *CheckoutService) Checkout(ctx context.Context, requestKey string) (domain.Order, error) {
	var (
		order domain.Order
		err   error
	)

	if requestKey != "" && s.cache != nil {
		cur, ok := s.market.CurrentUser()
		if !ok {
			return domain.Order{}, domain.ErrUnauthenticated
		}

		idempotencyKey := fmt.Sprintf("checkout:%s:%s", cur.ID, requestKey)
		ok, err = s.cache.SetIdempotency(ctx, idempotencyKey)
		if err != nil {
			return domain.Order{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return domain.Order{}, domain.ErrDuplicateRequest
		}

		// the order must belong to the user the key was claimed for
		order, err = s.market.CheckoutAs(cur.ID)
	} else {
		order, err = s.market.Checkout()
	}
	if err != nil {
		return domain.Order{}, err
	}

	s.enqueue(order)
	return order, nil
}

func (s *CheckoutService) enqueue(order domain.Order) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		log.Printf("WARN: order queue closed, order %s will not be published", order.ID)
		return
	}
	select {
	case s.orderQueue <- order.Clone():
	default:
		log.Printf("WARN: order queue full, order %s will not be published", order.ID)
	}
}

func (s *CheckoutService) GetOrderQueue() <-chan domain.Order {
	return s.orderQueue
}

// Close closes the order queue. Orders placed afterwards are kept but not
// published. Close may be called more than once.
func (s *CheckoutService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.orderQueue)
	}
}
