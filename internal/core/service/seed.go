package service

import (
	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace/internal/core/domain"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "ecofinds123"

type demoListing struct {
	seller int
	input  domain.ProductInput
}

var demoUsers = []domain.User{
	{Username: "Asha Verma", Email: "asha@ecofinds.test", Address: "12 MG Road, Bengaluru"},
	{Username: "Tom Hughes", Email: "tom@ecofinds.test", ContactNumber: "+44 7700900123"},
}

var demoListings = []demoListing{
	{0, domain.ProductInput{
		Title:            "Vintage Film Camera",
		Description:      "35mm rangefinder, serviced last year.",
		Price:            decimal.RequireFromString("4500"),
		Category:         domain.CategoryElectronics,
		ImageURLs:        []string{"https://picsum.photos/seed/camera/600/400"},
		Quantity:         1,
		Condition:        "Used - Good",
		Brand:            "Yashica",
		Model:            "Electro 35",
		ManualIncluded:   true,
		WorkingCondition: "Shutter and meter work.",
	}},
	{0, domain.ProductInput{
		Title:            "Ceramic Plant Pots (set of 3)",
		Description:      "Glazed pots with drainage holes.",
		Price:            decimal.RequireFromString("850"),
		Category:         domain.CategoryHomeGarden,
		ImageURLs:        []string{"https://picsum.photos/seed/pots/600/400"},
		Quantity:         2,
		Condition:        "Used - Like New",
		Material:         "Ceramic",
		Color:            "Terracotta",
		WorkingCondition: "No chips.",
	}},
	{1, domain.ProductInput{
		Title:            "Denim Jacket",
		Description:      "Classic fit, size M.",
		Price:            decimal.RequireFromString("1200"),
		Category:         domain.CategoryFashion,
		ImageURLs:        []string{"https://picsum.photos/seed/denim/600/400"},
		Quantity:         1,
		Condition:        "Used - Good",
		Color:            "Blue",
		WorkingCondition: "Light fading on sleeves.",
	}},
	{1, domain.ProductInput{
		Title:             "Hardcover Classics Bundle",
		Description:       "Five novels, clothbound.",
		Price:             decimal.RequireFromString("999"),
		Category:          domain.CategoryBooksMedia,
		ImageURLs:         []string{"https://picsum.photos/seed/books/600/400"},
		Quantity:          1,
		Condition:         "Used - Very Good",
		OriginalPackaging: true,
		WorkingCondition:  "Spines intact.",
	}},
	{1, domain.ProductInput{
		Title:            "Acoustic Guitar",
		Description:      "Dreadnought body with gig bag.",
		Price:            decimal.RequireFromString("6000"),
		Category:         domain.CategoryHobbies,
		ImageURLs:        []string{"https://picsum.photos/seed/guitar/600/400", "https://picsum.photos/seed/guitar-back/600/400"},
		Quantity:         1,
		Condition:        "Used - Good",
		Brand:            "Yamaha",
		Model:            "F310",
		WorkingCondition: "New strings fitted.",
	}},
}

// SeedDemo fills an empty engine with demo sellers and listings. Nobody is
// logged in afterwards.
func (m *Marketplace) SeedDemo() error {
	hash, err := m.hashPassword(DemoPassword)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.users.Len() > 0 || m.catalog.Len() > 0 {
		return domain.NewValidationError(domain.FieldError{Field: "seed", Reason: "engine already has data"})
	}

	ids := make([]string, len(demoUsers))
	for i, u := range demoUsers {
		u.ID = m.newID()
		u.PasswordHash = hash
		m.users.Add(u)
		ids[i] = u.ID
	}
	for _, l := range demoListings {
		m.catalog.Add(domain.Product{
			ID:           m.newID(),
			SellerID:     ids[l.seller],
			ProductInput: l.input.Clone(),
		})
	}
	m.version++
	return nil
}
