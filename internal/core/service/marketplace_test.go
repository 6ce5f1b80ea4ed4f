package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/core/query"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestMarketplace() *Marketplace {
	n := 0
	return NewMarketplace(
		WithHashCost(bcrypt.MinCost),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithClock(func() time.Time { return testNow }),
	)
}

func listing(title, price string) domain.ProductInput {
	return domain.ProductInput{
		Title:     title,
		Price:     decimal.RequireFromString(price),
		Category:  domain.CategoryHomeGarden,
		ImageURLs: []string{"data:image/png;base64,AAAA"},
		Quantity:  1,
		Condition: "Used - Good",
	}
}

func mustSignUp(t *testing.T, m *Marketplace, name, email string) domain.User {
	t.Helper()
	u, err := m.SignUp(name, email, "secret1")
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return u
}

func mustAdd(t *testing.T, m *Marketplace, in domain.ProductInput) domain.Product {
	t.Helper()
	p, err := m.AddProduct(in)
	if err != nil {
		t.Fatalf("add product %q: %v", in.Title, err)
	}
	return p
}

func TestSignUp_LogsIn(t *testing.T) {
	m := newTestMarketplace()

	u := mustSignUp(t, m, "Asha", "asha@example.com")

	cur, ok := m.CurrentUser()
	if !ok || cur.ID != u.ID {
		t.Fatalf("expected %s to be logged in, got %+v", u.ID, cur)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret1" {
		t.Error("expected password to be stored hashed")
	}
}

func TestSignUp_EmailExistsAnyCase(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")

	for _, email := range []string{"asha@example.com", "ASHA@example.com", "Asha@Example.COM"} {
		_, err := m.SignUp("Other", email, "another1")
		if !errors.Is(err, domain.ErrEmailExists) {
			t.Errorf("%s: expected ErrEmailExists, got %v", email, err)
		}
	}

	if n := len(m.Users()); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestSignUp_Validation(t *testing.T) {
	m := newTestMarketplace()

	tests := []struct {
		name, username, email, password string
	}{
		{"bad email", "Asha", "asha@", "secret1"},
		{"short password", "Asha", "asha@example.com", "abc"},
		{"no username", "  ", "asha@example.com", "secret1"},
	}

	for _, tt := range tests {
		_, err := m.SignUp(tt.username, tt.email, tt.password)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tt.name, err)
		}
	}
	if len(m.Users()) != 0 {
		t.Error("failed sign-ups must not create users")
	}
}

func TestLogin_Failures(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	m.Logout()

	_, err := m.Login("asha@example.com", "wrong-password")
	if !errors.Is(err, domain.ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
	if _, ok := m.CurrentUser(); ok {
		t.Error("expected no session after wrong password")
	}

	_, err = m.Login("nobody@example.com", "secret1")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, ok := m.CurrentUser(); ok {
		t.Error("expected no session after unknown email")
	}
}

func TestLogin_Success(t *testing.T) {
	m := newTestMarketplace()
	u := mustSignUp(t, m, "Asha", "asha@example.com")
	m.Logout()

	got, err := m.Login("ASHA@example.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected %s, got %s", u.ID, got.ID)
	}
	if cur, ok := m.CurrentUser(); !ok || cur.ID != u.ID {
		t.Error("expected session to be set")
	}
}

func TestUpdateUser(t *testing.T) {
	m := newTestMarketplace()
	other := mustSignUp(t, m, "Tom", "tom@example.com")
	u := mustSignUp(t, m, "Asha", "asha@example.com")

	age := 30
	u.Address = "  12 MG Road "
	u.Age = &age
	u.ContactNumber = "+91 9876543210"
	u.PasswordHash = "tampered"

	updated, err := m.UpdateUser(u)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Address != "12 MG Road" || *updated.Age != 30 {
		t.Errorf("unexpected profile: %+v", updated)
	}
	if _, err := m.Login("asha@example.com", "secret1"); err != nil {
		t.Errorf("credential must survive a profile update: %v", err)
	}

	if _, err := m.UpdateUser(other); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for another user's record, got %v", err)
	}

	u.Email = "TOM@example.com"
	if _, err := m.UpdateUser(u); !errors.Is(err, domain.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	bad := []func(*domain.User){
		func(u *domain.User) { a := 17; u.Age = &a },
		func(u *domain.User) { a := 101; u.Age = &a },
		func(u *domain.User) { u.ContactNumber = "+91 98x" },
		func(u *domain.User) { u.Email = "not-an-email" },
	}
	for i, mutate := range bad {
		v := updated
		v.Email = "asha@example.com"
		mutate(&v)
		if _, err := m.UpdateUser(v); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}

	m.Logout()
	if _, err := m.UpdateUser(u); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAddProduct_BindsSellerToSession(t *testing.T) {
	m := newTestMarketplace()

	if _, err := m.AddProduct(listing("Lamp", "20")); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	u := mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))

	if p.SellerID != u.ID {
		t.Errorf("expected seller %s, got %s", u.ID, p.SellerID)
	}
	seller, ok := m.Seller(p.ID)
	if !ok || seller.ID != u.ID {
		t.Errorf("expected Seller to resolve to %s", u.ID)
	}
}

func TestAddProduct_Validation(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")

	bad := map[string]func(*domain.ProductInput){
		"no images":      func(in *domain.ProductInput) { in.ImageURLs = nil },
		"blank image":    func(in *domain.ProductInput) { in.ImageURLs = []string{" "} },
		"negative price": func(in *domain.ProductInput) { in.Price = decimal.NewFromInt(-1) },
		"zero quantity":  func(in *domain.ProductInput) { in.Quantity = 0 },
		"no title":       func(in *domain.ProductInput) { in.Title = "" },
		"bad category":   func(in *domain.ProductInput) { in.Category = "Groceries" },
		"wildcard":       func(in *domain.ProductInput) { in.Category = domain.CategoryAll },
		"tiny negative":  func(in *domain.ProductInput) { in.Price = decimal.RequireFromString("-1e-400") },
		"too precise":    func(in *domain.ProductInput) { in.Price = decimal.RequireFromString("19.99999") },
		"too expensive":  func(in *domain.ProductInput) { in.Price = domain.MaxPrice },
		"long title":     func(in *domain.ProductInput) { in.Title = strings.Repeat("x", 256) },
		"long color":     func(in *domain.ProductInput) { in.Color = strings.Repeat("x", 65) },
		"long brand":     func(in *domain.ProductInput) { in.Brand = strings.Repeat("x", 256) },
	}

	for name, mutate := range bad {
		in := listing("Lamp", "20")
		mutate(&in)
		if _, err := m.AddProduct(in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
	if len(m.Products()) != 0 {
		t.Error("rejected listings must not reach the catalog")
	}

	free := listing("Free Box", "0")
	if _, err := m.AddProduct(free); err != nil {
		t.Errorf("a zero price is allowed: %v", err)
	}

	edge := listing(strings.Repeat("ü", 255), "9999999999999999.9999")
	if _, err := m.AddProduct(edge); err != nil {
		t.Errorf("the largest title and price are allowed: %v", err)
	}
}

func TestAddProduct_PriceReason(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")

	_, err := m.AddProduct(listing("Lamp", "-1e-400"))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0].Field != "price" {
		t.Fatalf("expected a price validation error, got %v", err)
	}
}

func TestSignUp_LengthLimits(t *testing.T) {
	m := newTestMarketplace()

	if _, err := m.SignUp(strings.Repeat("a", 256), "asha@example.com", "secret1"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for a long username, got %v", err)
	}
	long := strings.Repeat("a", 60) + "@" + strings.Repeat(strings.Repeat("b", 60)+".", 4) + "com"
	if _, err := m.SignUp("Asha", long, "secret1"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for a long email, got %v", err)
	}

	u := mustSignUp(t, m, "Asha", "asha@example.com")
	u.ContactNumber = "+91 " + strings.Repeat("9", 29)
	if _, err := m.UpdateUser(u); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for a long contact number, got %v", err)
	}
}

func TestUpdateAndDelete_OwnerOnly(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))
	m.Logout()
	mustSignUp(t, m, "Tom", "tom@example.com")

	before := m.Products()

	if _, err := m.UpdateProduct(p.ID, listing("Stolen Lamp", "1")); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden on update, got %v", err)
	}
	if err := m.DeleteProduct(p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden on delete, got %v", err)
	}
	if !reflect.DeepEqual(m.Products(), before) {
		t.Error("catalog changed after rejected commands")
	}

	if err := m.DeleteProduct("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProduct_KeepsIdentityAndPosition(t *testing.T) {
	m := newTestMarketplace()
	u := mustSignUp(t, m, "Asha", "asha@example.com")
	a := mustAdd(t, m, listing("Lamp", "20"))
	mustAdd(t, m, listing("Chair", "50"))

	updated, err := m.UpdateProduct(a.ID, listing("Desk Lamp", "25"))
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != a.ID || updated.SellerID != u.ID || updated.Title != "Desk Lamp" {
		t.Errorf("unexpected product: %+v", updated)
	}
	if first := m.Products()[0]; first.ID != a.ID {
		t.Errorf("expected updated product to keep its position, got %s first", first.ID)
	}

	bad := listing("Desk Lamp", "25")
	bad.ImageURLs = nil
	if _, err := m.UpdateProduct(a.ID, bad); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestCart_AddRemoveInverse(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))

	for start := 0; start < 3; start++ {
		m.ClearCart()
		for i := 0; i < start; i++ {
			if err := m.AddToCart(p.ID); err != nil {
				t.Fatal(err)
			}
		}
		before := m.CartItems()

		if err := m.AddToCart(p.ID); err != nil {
			t.Fatal(err)
		}
		m.RemoveFromCart(p.ID)

		if after := m.CartItems(); !reflect.DeepEqual(after, before) {
			t.Errorf("start=%d: expected %v, got %v", start, before, after)
		}
	}

	if err := m.AddToCart("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCart_SubtotalFollowsLivePrices(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	lamp := mustAdd(t, m, listing("Lamp", "20"))
	book := mustAdd(t, m, listing("Book", "10.50"))

	m.AddToCart(lamp.ID)
	m.AddToCart(lamp.ID)
	m.AddToCart(book.ID)

	if got := m.CartSubtotal(); !got.Equal(decimal.RequireFromString("50.50")) {
		t.Errorf("expected 50.50, got %s", got)
	}
	if m.CartCount() != 3 {
		t.Errorf("expected 3 units, got %d", m.CartCount())
	}

	if _, err := m.UpdateProduct(lamp.ID, listing("Lamp", "25")); err != nil {
		t.Fatal(err)
	}
	if got := m.CartSubtotal(); !got.Equal(decimal.RequireFromString("60.50")) {
		t.Errorf("expected price edit to show up, got %s", got)
	}
}

func TestDeleteProduct_PurgesCart(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	lamp := mustAdd(t, m, listing("Lamp", "20"))
	book := mustAdd(t, m, listing("Book", "10"))

	m.AddToCart(lamp.ID)
	m.AddToCart(book.ID)

	if err := m.DeleteProduct(lamp.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	items := m.CartItems()
	if len(items) != 1 || items[0].ProductID != book.ID {
		t.Errorf("expected only the book in the cart, got %v", items)
	}
	if got := m.CartSubtotal(); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected subtotal 10, got %s", got)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")

	if _, err := m.Checkout(); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if len(m.Orders()) != 0 {
		t.Error("expected no orders")
	}
}

func TestCheckout_SnapshotsAndClearsCart(t *testing.T) {
	m := newTestMarketplace()
	u := mustSignUp(t, m, "Asha", "asha@example.com")
	lamp := mustAdd(t, m, listing("Lamp", "20"))
	book := mustAdd(t, m, listing("Book", "10"))
	m.AddToCart(lamp.ID)
	m.AddToCart(book.ID)
	m.AddToCart(lamp.ID)

	cart := m.CartItems()

	order, err := m.Checkout()
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if !reflect.DeepEqual(order.Items, cart) {
		t.Errorf("expected items %v, got %v", cart, order.Items)
	}
	if order.UserID != u.ID || !order.Date.Equal(testNow) || order.ID == "" {
		t.Errorf("unexpected order header: %+v", order)
	}
	if len(m.CartItems()) != 0 {
		t.Error("expected cart to be empty after checkout")
	}
	if orders := m.Orders(); len(orders) != 1 || orders[0].ID != order.ID {
		t.Errorf("expected exactly one order, got %+v", orders)
	}

	// seller stock is not decremented
	if p, _ := m.Product(lamp.ID); p.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", p.Quantity)
	}
}

func TestCheckout_RequiresLogin(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))
	m.Logout()

	if err := m.AddToCart(p.ID); err != nil {
		t.Fatalf("anonymous add to cart failed: %v", err)
	}
	if _, err := m.Checkout(); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if len(m.CartItems()) != 1 {
		t.Error("failed checkout must leave the cart alone")
	}
}

func TestCheckoutAs(t *testing.T) {
	m := newTestMarketplace()
	asha := mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))
	m.AddToCart(p.ID)

	for _, id := range []string{"", "someone-else"} {
		if _, err := m.CheckoutAs(id); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("CheckoutAs(%q): expected ErrUnauthenticated, got %v", id, err)
		}
	}
	if len(m.Orders()) != 0 || len(m.CartItems()) != 1 {
		t.Fatal("refused checkouts must not change state")
	}

	order, err := m.CheckoutAs(asha.ID)
	if err != nil {
		t.Fatalf("CheckoutAs failed: %v", err)
	}
	if order.UserID != asha.ID || len(m.CartItems()) != 0 {
		t.Errorf("unexpected order %+v", order)
	}
}

func TestCart_SharedAcrossLogins(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))
	m.AddToCart(p.ID)
	m.Logout()

	mustSignUp(t, m, "Tom", "tom@example.com")
	if got := m.CartItems(); len(got) != 1 {
		t.Errorf("expected the session cart to survive a user switch, got %v", got)
	}
}

func TestMyOrders_ResolvesDeletedProductsAsUnknown(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	lamp := mustAdd(t, m, listing("Lamp", "20"))
	book := mustAdd(t, m, listing("Book", "10"))
	m.AddToCart(lamp.ID)
	m.AddToCart(book.ID)
	if _, err := m.Checkout(); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteProduct(lamp.ID); err != nil {
		t.Fatal(err)
	}

	views, err := m.MyOrders()
	if err != nil {
		t.Fatalf("MyOrders failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 order, got %d", len(views))
	}
	v := views[0]
	if v.Unknown != 1 || len(v.Lines) != 1 || v.Lines[0].Product.ID != book.ID {
		t.Errorf("unexpected view: %+v", v)
	}
	if !v.Total.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected total 10, got %s", v.Total)
	}
	if len(v.Order.Items) != 2 {
		t.Error("order history must keep the deleted product's line")
	}
}

func TestMyListings(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	mustAdd(t, m, listing("Lamp", "20"))
	mustAdd(t, m, listing("Armchair", "50"))
	m.Logout()
	mustSignUp(t, m, "Tom", "tom@example.com")
	mustAdd(t, m, listing("Table Lamp", "5"))
	m.Logout()

	if _, err := m.MyListings(query.Params{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}

	if _, err := m.Login("asha@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	mine, err := m.MyListings(query.Params{Sort: query.SortTitleAsc})
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 || mine[0].Title != "Armchair" || mine[1].Title != "Lamp" {
		t.Errorf("unexpected listings: %+v", mine)
	}
}

func TestBrowseGrouped(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	lamp := listing("Lamp", "20")
	book := listing("Book", "10")
	book.Category = domain.CategoryBooksMedia
	mustAdd(t, m, lamp)
	mustAdd(t, m, book)

	groups := m.BrowseGrouped(query.Params{Sort: query.SortPriceAsc})
	if len(groups) != 2 || groups[0].Category != domain.CategoryBooksMedia {
		t.Errorf("unexpected groups: %+v", groups)
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))

	p.ImageURLs[0] = "changed"
	got, _ := m.Product(p.ID)
	if got.ImageURLs[0] == "changed" {
		t.Error("caller mutated stored product through a returned value")
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))
	m.AddToCart(p.ID)
	m.AddToCart(p.ID)

	snap := m.Snapshot()

	restored := newTestMarketplace()
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Error("restored engine does not reproduce the snapshot")
	}
	if restored.Version() != m.Version() {
		t.Errorf("expected version %d, got %d", m.Version(), restored.Version())
	}
	if _, err := restored.Checkout(); err != nil {
		t.Errorf("restored session should be able to check out: %v", err)
	}
}

func TestRestore_RejectsBrokenReferences(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	p := mustAdd(t, m, listing("Lamp", "20"))
	good := m.Snapshot()

	broken := []func(*domain.Snapshot){
		func(s *domain.Snapshot) { s.Products[0].SellerID = "ghost" },
		func(s *domain.Snapshot) { s.Cart = []domain.LineItem{{ProductID: "ghost", Quantity: 1}} },
		func(s *domain.Snapshot) { s.Cart = []domain.LineItem{{ProductID: p.ID, Quantity: 0}} },
		func(s *domain.Snapshot) { s.CurrentUserID = "ghost" },
		func(s *domain.Snapshot) { s.Users = append(s.Users, domain.User{ID: "u2", Email: "ASHA@example.com"}) },
	}

	for i, breakIt := range broken {
		target := newTestMarketplace()
		snap := good
		snap.Products = append([]domain.Product(nil), good.Products...)
		snap.Users = append([]domain.User(nil), good.Users...)
		breakIt(&snap)

		if err := target.Restore(snap); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
		if len(target.Users()) != 0 {
			t.Errorf("case %d: engine changed after a rejected restore", i)
		}
	}
}

func TestSeedDemo(t *testing.T) {
	m := newTestMarketplace()

	if err := m.SeedDemo(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if len(m.Users()) != len(demoUsers) || len(m.Products()) != len(demoListings) {
		t.Errorf("unexpected seed size: %d users, %d products", len(m.Users()), len(m.Products()))
	}
	if _, ok := m.CurrentUser(); ok {
		t.Error("seeding must not log anyone in")
	}
	if _, err := m.Login(demoUsers[0].Email, DemoPassword); err != nil {
		t.Errorf("demo login failed: %v", err)
	}
	if err := m.SeedDemo(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected second seed to be rejected, got %v", err)
	}
}

func TestVersion_CountsMutationsOnly(t *testing.T) {
	m := newTestMarketplace()
	mustSignUp(t, m, "Asha", "asha@example.com")
	v := m.Version()

	m.RemoveFromCart("missing")
	m.ClearCart()
	_, _ = m.Checkout()
	m.Products()

	if m.Version() != v {
		t.Errorf("expected version to stay %d, got %d", v, m.Version())
	}

	mustAdd(t, m, listing("Lamp", "20"))
	if m.Version() != v+1 {
		t.Errorf("expected version %d, got %d", v+1, m.Version())
	}
}
