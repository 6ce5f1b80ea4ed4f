package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/core/query"
	"github.com/ecofinds/marketplace/internal/core/store"
)

// Marketplace is the single entry point to the engine. It owns the stores,
// checks every command against the session user and applies commands one at
// a time. Values returned from it are copies.
type Marketplace struct {
	mu       sync.RWMutex
	users    *store.Identity
	catalog  *store.Catalog
	cart     *store.Cart
	ledger   *store.Ledger
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
	hashCost int
	version  int64
}

type Option func(*Marketplace)

func WithClock(now func() time.Time) Option {
	return func(m *Marketplace) { m.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Marketplace) { m.newID = newID }
}

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(m *Marketplace) { m.hashCost = cost }
}

func NewMarketplace(opts ...Option) *Marketplace {
	m := &Marketplace{
		users:    store.NewIdentity(),
		catalog:  store.NewCatalog(),
		cart:     store.NewCart(),
		ledger:   store.NewLedger(),
		validate: newValidator(),
		now:      time.Now,
		newID:    uuid.NewString,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Marketplace) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError(domain.FieldError{Field: "password", Reason: "max"})
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// SignUp registers a user and logs them in.
func (m *Marketplace) SignUp(username, email, password string) (domain.User, error) {
	form := signUpForm{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := m.check(form); err != nil {
		return domain.User{}, err
	}

	hash, err := m.hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users.ByEmail(form.Email); exists {
		return domain.User{}, domain.ErrEmailExists
	}

	u := domain.User{
		ID:           m.newID(),
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
	}
	m.users.Add(u)
	m.users.SetCurrent(u.ID)
	m.version++

	return u, nil
}

// Login starts a session for the user with the given email. A failed login
// leaves the session as it was.
func (m *Marketplace) Login(email, password string) (domain.User, error) {
	form := loginForm{Email: strings.TrimSpace(email), Password: password}
	if err := m.check(form); err != nil {
		return domain.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users.ByEmail(form.Email)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidPassword
	}

	m.users.SetCurrent(u.ID)
	m.version++
	return u, nil
}

func (m *Marketplace) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.users.CurrentID() != "" {
		m.users.ClearCurrent()
		m.version++
	}
}

// UpdateUser replaces the profile of the session user. The stored credential
// is kept whatever user.PasswordHash holds.
func (m *Marketplace) UpdateUser(user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.users.Current()
	if !ok {
		return domain.User{}, domain.ErrUnauthenticated
	}
	if user.ID != cur.ID {
		return domain.User{}, domain.ErrForbidden
	}

	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	user.Address = strings.TrimSpace(user.Address)
	user.ContactNumber = strings.TrimSpace(user.ContactNumber)
	if user.Age != nil {
		age := *user.Age
		user.Age = &age
	}
	if err := m.check(user); err != nil {
		return domain.User{}, err
	}
	if other, ok := m.users.ByEmail(user.Email); ok && other.ID != cur.ID {
		return domain.User{}, domain.ErrEmailExists
	}

	user.PasswordHash = cur.PasswordHash
	m.users.Replace(user)
	m.version++
	return user, nil
}

func (m *Marketplace) CurrentUser() (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users.Current()
}

func (m *Marketplace) Users() []domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users.All()
}

// Seller returns the user who listed productID.
func (m *Marketplace) Seller(productID string) (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.catalog.Get(productID)
	if !ok {
		return domain.User{}, false
	}
	return m.users.ByID(p.SellerID)
}

func normalizeInput(in domain.ProductInput) domain.ProductInput {
	in = in.Clone()
	in.Title = strings.TrimSpace(in.Title)
	for i, u := range in.ImageURLs {
		in.ImageURLs[i] = strings.TrimSpace(u)
	}
	return in
}

// AddProduct lists a new product owned by the session user.
func (m *Marketplace) AddProduct(in domain.ProductInput) (domain.Product, error) {
	in = normalizeInput(in)

	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.users.Current()
	if !ok {
		return domain.Product{}, domain.ErrUnauthenticated
	}
	if err := m.check(in); err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{ID: m.newID(), SellerID: cur.ID, ProductInput: in}
	m.catalog.Add(p)
	m.version++
	return p.Clone(), nil
}

// owned loads listing id and checks that the session user is its seller.
func (m *Marketplace) owned(id string) (domain.Product, error) {
	cur, ok := m.users.Current()
	if !ok {
		return domain.Product{}, domain.ErrUnauthenticated
	}
	p, ok := m.catalog.Get(id)
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	if p.SellerID != cur.ID {
		return domain.Product{}, domain.ErrForbidden
	}
	return p, nil
}

// UpdateProduct replaces the seller-controlled fields of a listing.
func (m *Marketplace) UpdateProduct(id string, in domain.ProductInput) (domain.Product, error) {
	in = normalizeInput(in)

	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.owned(id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := m.check(in); err != nil {
		return domain.Product{}, err
	}

	p.ProductInput = in
	m.catalog.Replace(p)
	m.version++
	return p.Clone(), nil
}

// DeleteProduct removes a listing and drops it from the cart. Orders keep
// their line items; they resolve to unknown items from then on.
func (m *Marketplace) DeleteProduct(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.owned(id); err != nil {
		return err
	}

	m.catalog.Remove(id)
	m.cart.Purge(id)
	m.version++
	return nil
}

func (m *Marketplace) Products() []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.products()
}

func (m *Marketplace) products() []domain.Product {
	all := m.catalog.All()
	for i := range all {
		all[i] = all[i].Clone()
	}
	return all
}

func (m *Marketplace) Product(id string) (domain.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.catalog.Get(id)
	if !ok {
		return domain.Product{}, false
	}
	return p.Clone(), true
}

// Browse runs the catalog through the query layer.
func (m *Marketplace) Browse(p query.Params) []domain.Product {
	return query.Apply(m.Products(), p)
}

func (m *Marketplace) BrowseGrouped(p query.Params) []query.Group {
	return query.GroupByCategory(m.Browse(p))
}

// MyListings runs the session user's own listings through the query layer.
func (m *Marketplace) MyListings(p query.Params) ([]domain.Product, error) {
	m.mu.RLock()
	cur, ok := m.users.Current()
	var mine []domain.Product
	if ok {
		for _, prod := range m.products() {
			if prod.SellerID == cur.ID {
				mine = append(mine, prod)
			}
		}
	}
	m.mu.RUnlock()

	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return query.Apply(mine, p), nil
}

func (m *Marketplace) AddToCart(productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.catalog.Get(productID); !ok {
		return domain.ErrNotFound
	}
	m.cart.Add(productID)
	m.version++
	return nil
}

// RemoveFromCart takes one unit of productID out of the cart.
func (m *Marketplace) RemoveFromCart(productID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cart.Quantity(productID) == 0 {
		return
	}
	m.cart.Remove(productID)
	m.version++
}

func (m *Marketplace) ClearCart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cart.Len() > 0 {
		m.cart.Clear()
		m.version++
	}
}

// CartItems returns the raw productID -> quantity entries in cart order.
func (m *Marketplace) CartItems() []domain.LineItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart.Items()
}

// CartLines joins the cart against the catalog as it is now.
func (m *Marketplace) CartLines() []domain.Line {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lines, _ := store.Resolve(m.cart.Items(), m.lookup)
	return lines
}

func (m *Marketplace) CartSubtotal() decimal.Decimal {
	return store.Sum(m.CartLines())
}

// CartCount is the number of units in the cart that still resolve to a product.
func (m *Marketplace) CartCount() int {
	n := 0
	for _, l := range m.CartLines() {
		n += l.Quantity
	}
	return n
}

func (m *Marketplace) lookup(id string) (domain.Product, bool) {
	p, ok := m.catalog.Get(id)
	if !ok {
		return domain.Product{}, false
	}
	return p.Clone(), true
}

// Checkout turns the cart into an order for the session user and empties the
// cart. Either all of it happens or none of it does. Product quantities are
// not touched.
func (m *Marketplace) Checkout() (domain.Order, error) {
	return m.checkout("")
}

// CheckoutAs is Checkout for a caller that already resolved the session user.
// It fails with domain.ErrUnauthenticated if the session no longer belongs
// to userID.
func (m *Marketplace) CheckoutAs(userID string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUnauthenticated
	}
	return m.checkout(userID)
}

func (m *Marketplace) checkout(userID string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.users.Current()
	if !ok || (userID != "" && cur.ID != userID) {
		return domain.Order{}, domain.ErrUnauthenticated
	}
	if m.cart.Len() == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	order := domain.Order{
		ID:     m.newID(),
		UserID: cur.ID,
		Date:   m.now().UTC(),
		Items:  m.cart.Items(),
	}
	m.ledger.Append(order)
	m.cart.Clear()
	m.version++

	return order.Clone(), nil
}

// Orders returns the whole ledger.
func (m *Marketplace) Orders() []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.All()
}

// MyOrders returns the session user's orders resolved against the live catalog.
func (m *Marketplace) MyOrders() ([]domain.OrderView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cur, ok := m.users.Current()
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	orders := m.ledger.ForUser(cur.ID)
	views := make([]domain.OrderView, 0, len(orders))
	for _, o := range orders {
		lines, unknown := store.Resolve(o.Items, m.lookup)
		views = append(views, domain.OrderView{
			Order:   o,
			Lines:   lines,
			Unknown: unknown,
			Total:   store.Sum(lines),
		})
	}
	return views, nil
}

// Version counts successful mutations since the engine was built or restored.
func (m *Marketplace) Version() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}
