package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/core/query"
	"github.com/ecofinds/marketplace/internal/core/service"
	"github.com/ecofinds/marketplace/internal/port"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Status
	User *UserView `json:"user,omitempty"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
}

type CartResponse struct {
	Status
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CheckoutRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type CheckoutResponse struct {
	Status
	Order *domain.Order `json:"order,omitempty"`
}

type BrowseRequest struct {
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
	MinPrice string `json:"min_price,omitempty"`
	MaxPrice string `json:"max_price,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

type BrowseResponse struct {
	Status
	Products []domain.Product `json:"products,omitempty"`
}

// GRPCHandler reports command outcomes in the response body, like the HTTP
// API, rather than as gRPC status codes.
type GRPCHandler struct {
	market    *service.Marketplace
	checkout  *service.CheckoutService
	snapshots port.SnapshotRepository
}

func NewGRPCHandler(market *service.Marketplace, checkout *service.CheckoutService, snapshots port.SnapshotRepository) *GRPCHandler {
	return &GRPCHandler{market: market, checkout: checkout, snapshots: snapshots}
}

func (h *GRPCHandler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	u, err := h.market.Login(req.Email, req.Password)
	if err != nil {
		return &LoginResponse{Status: statusOf(err)}, nil
	}
	persist(ctx, h.snapshots, h.market)
	return &LoginResponse{Status: statusOf(nil), User: viewUser(u)}, nil
}

func (h *GRPCHandler) AddToCart(ctx context.Context, req *AddToCartRequest) (*CartResponse, error) {
	if err := h.market.AddToCart(req.ProductID); err != nil {
		return &CartResponse{Status: statusOf(err)}, nil
	}
	persist(ctx, h.snapshots, h.market)
	return &CartResponse{
		Status:   statusOf(nil),
		Count:    h.market.CartCount(),
		Subtotal: h.market.CartSubtotal(),
	}, nil
}

func (h *GRPCHandler) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	order, err := h.checkout.Checkout(ctx, req.IdempotencyKey)
	if err != nil {
		return &CheckoutResponse{Status: statusOf(err)}, nil
	}
	persist(ctx, h.snapshots, h.market)
	return &CheckoutResponse{Status: statusOf(nil), Order: &order}, nil
}

func (h *GRPCHandler) Browse(ctx context.Context, req *BrowseRequest) (*BrowseResponse, error) {
	params, err := browseParams(req)
	if err != nil {
		return &BrowseResponse{Status: statusOf(err)}, nil
	}
	return &BrowseResponse{Status: statusOf(nil), Products: h.market.Browse(params)}, nil
}

func browseParams(req *BrowseRequest) (query.Params, error) {
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return query.Params{}, err
	}
	sort, err := query.ParseSort(req.Sort)
	if err != nil {
		return query.Params{}, err
	}
	minPrice, err := parsePrice("min_price", req.MinPrice)
	if err != nil {
		return query.Params{}, err
	}
	maxPrice, err := parsePrice("max_price", req.MaxPrice)
	if err != nil {
		return query.Params{}, err
	}
	return query.Params{
		Search:   req.Query,
		Category: category,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     sort,
	}, nil
}
