// Package query computes the browse views over a product list: filter by
// category and price, search by title, sort, and group by category.
// Every function is pure; inputs are never modified.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ecofinds/marketplace/internal/core/domain"
)

type SortOption string

const (
	SortDefault   SortOption = "default"
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
	SortTitleAsc  SortOption = "title-asc"
	SortTitleDesc SortOption = "title-desc"
)

// ParseSort accepts the sort names used by the browse screens. Empty means default.
func ParseSort(s string) (SortOption, error) {
	switch opt := SortOption(s); opt {
	case "":
		return SortDefault, nil
	case SortDefault, SortPriceAsc, SortPriceDesc, SortTitleAsc, SortTitleDesc:
		return opt, nil
	}
	return "", domain.NewValidationError(domain.FieldError{Field: "sort", Reason: fmt.Sprintf("unknown sort %q", s)})
}

type Params struct {
	Search   string
	Category domain.Category
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortOption
}

type Group struct {
	Category domain.Category  `json:"category"`
	Products []domain.Product `json:"products"`
}

// Apply runs filter, then search, then sort.
func Apply(products []domain.Product, p Params) []domain.Product {
	return Sort(Search(Filter(products, p), p.Search), p.Sort)
}

// Filter keeps products in p.Category (empty or All matches everything) whose
// price lies within the inclusive bounds that are set.
func Filter(products []domain.Product, p Params) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, prod := range products {
		if p.Category != "" && p.Category != domain.CategoryAll && prod.Category != p.Category {
			continue
		}
		if p.MinPrice != nil && prod.Price.LessThan(*p.MinPrice) {
			continue
		}
		if p.MaxPrice != nil && prod.Price.GreaterThan(*p.MaxPrice) {
			continue
		}
		out = append(out, prod)
	}
	return out
}

// Search keeps products whose title contains term, ignoring case. The term is
// matched as given, surrounding spaces included.
func Search(products []domain.Product, term string) []domain.Product {
	term = strings.ToLower(term)
	out := make([]domain.Product, 0, len(products))
	for _, prod := range products {
		if term == "" || strings.Contains(strings.ToLower(prod.Title), term) {
			out = append(out, prod)
		}
	}
	return out
}

// Sort orders a copy of products. The sort is stable: products that compare
// equal keep their relative order in both directions.
func Sort(products []domain.Product, opt SortOption) []domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []domain.Product{}
	}

	var cmp func(a, b domain.Product) int
	switch opt {
	case SortPriceAsc, SortPriceDesc:
		cmp = func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }
	case SortTitleAsc, SortTitleDesc:
		col := collate.New(language.Und, collate.IgnoreCase)
		cmp = func(a, b domain.Product) int { return col.CompareString(a.Title, b.Title) }
	default:
		return out
	}

	if opt == SortPriceDesc || opt == SortTitleDesc {
		asc := cmp
		cmp = func(a, b domain.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// GroupByCategory partitions products by category, ordering groups by the
// first appearance of each category and keeping product order inside a group.
func GroupByCategory(products []domain.Product) []Group {
	var groups []Group
	index := make(map[domain.Category]int)
	for _, prod := range products {
		i, ok := index[prod.Category]
		if !ok {
			i = len(groups)
			index[prod.Category] = i
			groups = append(groups, Group{Category: prod.Category})
		}
		groups[i].Products = append(groups[i].Products, prod)
	}
	return groups
}
