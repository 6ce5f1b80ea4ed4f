package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/core/query"
	"github.com/ecofinds/marketplace/internal/core/service"
	"github.com/ecofinds/marketplace/internal/port"
)

const idempotencyHeader = "Idempotency-Key"

// RequestTimeout bounds every HTTP request.
const RequestTimeout = 15 * time.Second

type HTTPHandler struct {
	market    *service.Marketplace
	checkout  *service.CheckoutService
	snapshots port.SnapshotRepository
}

type Response struct {
	Status
	Data interface{} `json:"data,omitempty"`
}

type SignUpHTTPRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginHTTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileHTTPRequest updates the session user. ID defaults to the session user.
type ProfileHTTPRequest struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Age           *int   `json:"age"`
	ContactNumber string `json:"contact_number"`
	Image         string `json:"image"`
}

type ProductDetail struct {
	Product domain.Product `json:"product"`
	Seller  *UserView      `json:"seller,omitempty"`
}

type CartView struct {
	Lines    []domain.Line   `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// NewHTTPHandler serves market over HTTP. snapshots may be nil.
func NewHTTPHandler(market *service.Marketplace, checkout *service.CheckoutService, snapshots port.SnapshotRepository) *HTTPHandler {
	return &HTTPHandler{market: market, checkout: checkout, snapshots: snapshots}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
		r.Put("/me", h.UpdateMe)

		r.Get("/products", h.ListProducts)
		r.Post("/products", h.CreateProduct)
		r.Get("/products/{id}", h.GetProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Get("/listings", h.MyListings)

		r.Get("/cart", h.Cart)
		r.Post("/cart/{id}", h.AddToCart)
		r.Delete("/cart/{id}", h.RemoveFromCart)
		r.Delete("/cart", h.ClearCart)

		r.Post("/checkout", h.Checkout)
		r.Get("/orders", h.Orders)
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpHTTPRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.market.SignUp(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusCreated, viewUser(u))
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginHTTPRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.market.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusOK, viewUser(u))
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.market.Logout()
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusOK, nil)
}

func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.market.CurrentUser()
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	writeData(w, http.StatusOK, viewUser(u))
}

func (h *HTTPHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req ProfileHTTPRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		if cur, ok := h.market.CurrentUser(); ok {
			req.ID = cur.ID
		}
	}

	u, err := h.market.UpdateUser(domain.User{
		ID:            req.ID,
		Username:      req.Username,
		Email:         req.Email,
		Address:       req.Address,
		Age:           req.Age,
		ContactNumber: req.ContactNumber,
		Image:         req.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusOK, viewUser(u))
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("group") == "category" {
		writeData(w, http.StatusOK, h.market.BrowseGrouped(params))
		return
	}
	writeData(w, http.StatusOK, h.market.Browse(params))
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.market.Product(id)
	if !ok {
		writeError(w, domain.ErrNotFound)
		return
	}

	detail := ProductDetail{Product: p}
	if seller, ok := h.market.Seller(id); ok {
		detail.Seller = viewUser(seller)
	}
	writeData(w, http.StatusOK, detail)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if !decode(w, r, &in) {
		return
	}

	p, err := h.market.AddProduct(in)
	if err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusCreated, p)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if !decode(w, r, &in) {
		return
	}

	p, err := h.market.UpdateProduct(chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusOK, p)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.market.DeleteProduct(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusOK, nil)
}

func (h *HTTPHandler) MyListings(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	mine, err := h.market.MyListings(params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mine)
}

func (h *HTTPHandler) Cart(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) cartView() CartView {
	lines := h.market.CartLines()
	if lines == nil {
		lines = []domain.Line{}
	}
	view := CartView{Lines: lines, Subtotal: decimal.Zero}
	for _, l := range lines {
		view.Subtotal = view.Subtotal.Add(l.Total)
		view.Count += l.Quantity
	}
	return view
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	if err := h.market.AddToCart(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.market.RemoveFromCart(chi.URLParam(r, "id"))
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.market.ClearCart()
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.Checkout(r.Context(), r.Header.Get(idempotencyHeader))
	if err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.snapshots, h.market)
	writeData(w, http.StatusCreated, order)
}

func (h *HTTPHandler) Orders(w http.ResponseWriter, r *http.Request) {
	views, err := h.market.MyOrders()
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, views)
}

// parseParams reads q, category, min, max and sort from the query string.
func parseParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()

	category, err := domain.ParseCategory(q.Get("category"))
	if err != nil {
		return query.Params{}, err
	}
	sort, err := query.ParseSort(q.Get("sort"))
	if err != nil {
		return query.Params{}, err
	}
	minPrice, err := parsePrice("min", q.Get("min"))
	if err != nil {
		return query.Params{}, err
	}
	maxPrice, err := parsePrice("max", q.Get("max"))
	if err != nil {
		return query.Params{}, err
	}

	return query.Params{
		Search:   q.Get("q"),
		Category: category,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     sort,
	}, nil
}

func parsePrice(field, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, domain.NewValidationError(domain.FieldError{Field: field, Reason: "not a number"})
	}
	return &d, nil
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, domain.NewValidationError(domain.FieldError{Field: "body", Reason: "invalid request body"}))
		return false
	}
	return true
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Status: statusOf(nil), Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	st := statusOf(err)
	writeJSON(w, httpStatus(st.Code), Response{Status: st})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
