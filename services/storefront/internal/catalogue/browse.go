package catalogue

import (
	"cmp"
	"slices"
	"strings"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/slug"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
)

// DefaultRelatedLimit is the number of related products shown on a product page.
const DefaultRelatedLimit = 4

// Query filters the storefront product listing. Empty fields match anything.
// Group and Category accept either the display name or its slug.
type Query struct {
	Group    string
	Category string
	Gender   string
	Search   string
}

// Filter returns the products matching q, ordered by displayOrder.
func Filter(products []domain.Product, q Query) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q.Group != "" && !slug.Matches(p.CategoryGroup, q.Group) {
			continue
		}
		if q.Category != "" && !slug.Matches(p.Category, q.Category) {
			continue
		}
		if q.Gender != "" && !strings.EqualFold(p.Gender, q.Gender) {
			continue
		}
		if search != "" && !containsAny(search, p.Name, p.Description, p.Category, p.CategoryGroup) {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})
	return out
}

// DefaultColor picks the colour a product page opens on: the colour named
// initial (case-insensitive), else the first colour. ok is false when the
// product has no colours.
func DefaultColor(p domain.Product, initial string) (domain.Color, bool) {
	if len(p.AvailableColors) == 0 {
		return domain.Color{}, false
	}
	if initial != "" {
		for _, c := range p.AvailableColors {
			if strings.EqualFold(c.Name, initial) {
				return c, true
			}
		}
	}
	return p.AvailableColors[0], true
}

// ImagesFor returns the images of color when it has any, else every image of
// every available colour in colour order. Image keys that are not an
// available colour are never returned.
func ImagesFor(p domain.Product, color string) []string {
	if _, ok := p.Color(color); ok {
		if imgs := p.ImageURLs[color]; len(imgs) > 0 {
			return slices.Clone(imgs)
		}
	}

	var all []string
	for _, c := range p.AvailableColors {
		all = append(all, p.ImageURLs[c.Name]...)
	}
	if all == nil {
		return []string{}
	}
	return all
}

// Related returns up to limit other products in the same category, in
// catalogue order.
func Related(products []domain.Product, p domain.Product, limit int) []domain.Product {
	out := make([]domain.Product, 0, limit)
	for _, other := range products {
		if len(out) == limit {
			break
		}
		if other.ID != p.ID && other.Category == p.Category {
			out = append(out, other)
		}
	}
	return out
}

// Sort keys accepted by AdminList.
const (
	SortDisplayOrder  = "displayOrder"
	SortID            = "id"
	SortName          = "name"
	SortCategory      = "category"
	SortCategoryGroup = "categoryGroup"
	SortGender        = "gender"
)

// AdminQuery drives the admin product table.
type AdminQuery struct {
	Search  string
	SortKey string
	Desc    bool
}

// ValidSortKey reports whether key is accepted by AdminList.
func ValidSortKey(key string) bool {
	switch key {
	case "", SortDisplayOrder, SortID, SortName, SortCategory, SortCategoryGroup, SortGender:
		return true
	}
	return false
}

// AdminList searches id, name, category, group and gender, then sorts. With
// no sort key the list is in displayOrder. For text keys, empty values sort
// last in both directions.
func AdminList(products []domain.Product, q AdminQuery) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if search == "" || containsAny(search, p.ID, p.Name, p.Category, p.CategoryGroup, p.Gender) {
			out = append(out, p)
		}
	}

	field := textField(q.SortKey)
	if field == nil {
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			c := cmp.Compare(a.DisplayOrder, b.DisplayOrder)
			if q.Desc {
				return -c
			}
			return c
		})
		return out
	}

	slices.SortStableFunc(out, func(a, b domain.Product) int {
		av, bv := field(a), field(b)
		switch {
		case av == "" && bv == "":
			return 0
		case av == "":
			return 1
		case bv == "":
			return -1
		}
		c := strings.Compare(av, bv)
		if q.Desc {
			return -c
		}
		return c
	})
	return out
}

func textField(key string) func(domain.Product) string {
	switch key {
	case SortID:
		return func(p domain.Product) string { return p.ID }
	case SortName:
		return func(p domain.Product) string { return p.Name }
	case SortCategory:
		return func(p domain.Product) string { return p.Category }
	case SortCategoryGroup:
		return func(p domain.Product) string { return p.CategoryGroup }
	case SortGender:
		return func(p domain.Product) string { return p.Gender }
	}
	return nil
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
