package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryElectronics     Category = "Electronics"
	CategoryFashion         Category = "Fashion"
	CategoryHomeGarden      Category = "Home & Garden"
	CategoryBooksMedia      Category = "Books & Media"
	CategoryCollectiblesArt Category = "Collectibles & Art"
	CategoryHobbies         Category = "Hobbies"

	// CategoryAll matches every category in queries. It is never stored on a product.
	CategoryAll Category = "All"
)

var Categories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryHomeGarden,
	CategoryBooksMedia,
	CategoryCollectiblesArt,
	CategoryHobbies,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts a listing category, "All" or the empty string (both wildcards).
func ParseCategory(s string) (Category, error) {
	if s == "" || Category(s) == CategoryAll {
		return CategoryAll, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", NewValidationError(FieldError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s)})
	}
	return c, nil
}

type Product struct {
	ID       string `json:"id"`
	SellerID string `json:"seller_id"`
	ProductInput
}

// ProductInput holds the fields a seller controls.
type ProductInput struct {
	Title             string          `json:"title" validate:"required,max=255"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price" validate:"price"`
	Category          Category        `json:"category" validate:"category"`
	ImageURLs         []string        `json:"image_urls" validate:"min=1,dive,required"`
	Quantity          int             `json:"quantity" validate:"gte=1"`
	Condition         string          `json:"condition" validate:"max=64"`
	Brand             string          `json:"brand,omitempty" validate:"max=255"`
	Model             string          `json:"model,omitempty" validate:"max=255"`
	Dimensions        string          `json:"dimensions,omitempty" validate:"max=255"`
	Weight            string          `json:"weight,omitempty" validate:"max=64"`
	Material          string          `json:"material,omitempty" validate:"max=255"`
	Color             string          `json:"color,omitempty" validate:"max=64"`
	YearOfManufacture *int            `json:"year_of_manufacture,omitempty" validate:"omitempty,gt=0"`
	OriginalPackaging bool            `json:"original_packaging"`
	ManualIncluded    bool            `json:"manual_included"`
	WorkingCondition  string          `json:"working_condition"`
}

// PriceScale is the number of decimal places a price may carry.
const PriceScale = 4

// MaxPrice is the exclusive upper bound of a price.
var MaxPrice = decimal.New(1, 16)

// ValidPrice reports whether d is a non-negative price below MaxPrice with at
// most PriceScale decimal places.
func ValidPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(MaxPrice) && d.Equal(d.Truncate(PriceScale))
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Product) Clone() Product {
	p.ProductInput = p.ProductInput.Clone()
	return p
}

func (in ProductInput) Clone() ProductInput {
	if in.ImageURLs != nil {
		in.ImageURLs = append([]string(nil), in.ImageURLs...)
	}
	if in.YearOfManufacture != nil {
		y := *in.YearOfManufacture
		in.YearOfManufacture = &y
	}
	return in
}
