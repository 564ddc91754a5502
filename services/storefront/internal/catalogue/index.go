// Package catalogue derives browse views from the products and collections
// segments. Every function is pure: inputs are never modified and results
// are recomputed on each call.
package catalogue

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/slug"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
)

// Group is one category group with the distinct categories of its products.
type Group struct {
	Group      string     `json:"group"`
	Slug       string     `json:"slug"`
	Categories []Category `json:"categories"`
}

// Category is one category facet value inside a group.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Index is the browse facet tree.
type Index struct {
	Groups  []Group  `json:"groups"`
	Genders []string `json:"genders"`
}

// CategoryNames returns the group's category names in order.
func (g Group) CategoryNames() []string {
	names := make([]string, len(g.Categories))
	for i, c := range g.Categories {
		names[i] = c.Name
	}
	return names
}

// BuildIndex returns one group per collection name, each listing the sorted
// distinct categories of products whose categoryGroup equals that name.
// Groups are ordered for readers ("Casual" before "team wear"); categories
// keep plain byte order. Products with no category or with a group that
// matches no collection are not indexed, and repeated collection names
// collapse into one group.
func BuildIndex(products []domain.Product, collections []domain.Collection) Index {
	byGroup := make(map[string]map[string]struct{}, len(collections))
	for _, c := range collections {
		if _, ok := byGroup[c.Name]; !ok {
			byGroup[c.Name] = map[string]struct{}{}
		}
	}
	for _, p := range products {
		cats, ok := byGroup[p.CategoryGroup]
		if !ok || p.Category == "" {
			continue
		}
		cats[p.Category] = struct{}{}
	}

	groups := make([]Group, 0, len(byGroup))
	for name, cats := range byGroup {
		names := make([]string, 0, len(cats))
		for c := range cats {
			names = append(names, c)
		}
		slices.Sort(names)

		categories := make([]Category, len(names))
		for i, n := range names {
			categories[i] = Category{Name: n, Slug: slug.Generate(n)}
		}
		groups = append(groups, Group{Group: name, Slug: slug.Generate(name), Categories: categories})
	}
	// Collators are not safe for concurrent use.
	col := collate.New(language.Und)
	slices.SortFunc(groups, func(a, b Group) int {
		if c := col.CompareString(a.Group, b.Group); c != 0 {
			return c
		}
		return strings.Compare(a.Group, b.Group)
	})

	return Index{Groups: groups, Genders: slices.Clone(domain.Genders)}
}
