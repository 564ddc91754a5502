package domain

import "slices"

// Gender facet values.
const (
	GenderMen    = "Men"
	GenderWomen  = "Women"
	GenderUnisex = "Unisex"
)

// Genders is the static gender facet in display order.
var Genders = []string{GenderMen, GenderWomen, GenderUnisex}

// Printing methods a product may support.
const (
	PrintHeatTransfer = "Heat Transfer"
	PrintEmbroidery   = "Embroidery"
	PrintSublimation  = "Sublimation"
	PrintDTF          = "DTF Print"
	PrintSilkScreen   = "Silk Screen"
)

// PrintMethods lists every supported printing method.
var PrintMethods = []string{PrintHeatTransfer, PrintEmbroidery, PrintSublimation, PrintDTF, PrintSilkScreen}

// DefaultLeadTimeWeeks is applied on create when no lead time is given.
const DefaultLeadTimeWeeks = 2

// Color is one colour variant. Names are unique within a product.
type Color struct {
	Name string `json:"name" validate:"required"`
	Hex  string `json:"hex" validate:"omitempty,hexcolor"`
}

// Size is one size variant with garment measurements in inches.
type Size struct {
	Name   string  `json:"name" validate:"required"`
	Width  float64 `json:"width" validate:"gte=0"`
	Length float64 `json:"length" validate:"gte=0"`
}

// Feature is a free-form spec line shown on the product page.
type Feature struct {
	Name     string `json:"name" validate:"required"`
	Value    string `json:"value"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Product is one catalogue entry. ImageURLs is keyed by colour name; keys
// that are not an available colour are kept but never served.
type Product struct {
	ID                string              `json:"id"`
	Name              string              `json:"name" validate:"required,max=200"`
	Description       string              `json:"description"`
	Category          string              `json:"category" validate:"required"`
	CategoryGroup     string              `json:"categoryGroup"`
	Gender            string              `json:"gender" validate:"omitempty,oneof=Men Women Unisex"`
	MaterialID        string              `json:"materialId,omitempty"`
	AvailableColors   []Color             `json:"availableColors" validate:"dive"`
	ImageURLs         map[string][]string `json:"imageUrls"`
	AvailableSizes    []Size              `json:"availableSizes" validate:"dive"`
	Features          []Feature           `json:"features" validate:"dive"`
	SupportedPrinting []string            `json:"supportedPrinting" validate:"dive,oneof='Heat Transfer' Embroidery Sublimation 'DTF Print' 'Silk Screen'"`
	DisplayOrder      int                 `json:"displayOrder"`
	MOQ               *int                `json:"moq,omitempty" validate:"omitempty,gte=1"`
	Price             *float64            `json:"price,omitempty" validate:"omitempty,gte=0"`
	LeadTimeWeeks     *int                `json:"leadTimeWeeks,omitempty" validate:"omitempty,gte=0,lte=52"`
	IsFeatured        bool                `json:"isFeatured,omitempty"`
	IsBestSeller      bool                `json:"isBestSeller,omitempty"`
	IsNew             bool                `json:"isNew,omitempty"`
}

// Color returns the available colour called name.
func (p *Product) Color(name string) (Color, bool) {
	i := slices.IndexFunc(p.AvailableColors, func(c Color) bool { return c.Name == name })
	if i < 0 {
		return Color{}, false
	}
	return p.AvailableColors[i], true
}

// HasSize reports whether name is one of the product's sizes.
func (p *Product) HasSize(name string) bool {
	return slices.ContainsFunc(p.AvailableSizes, func(s Size) bool { return s.Name == name })
}

// DuplicateVariant returns the first repeated colour or size name, if any.
func (p *Product) DuplicateVariant() (field, name string, ok bool) {
	seen := make(map[string]struct{}, len(p.AvailableColors))
	for _, c := range p.AvailableColors {
		if _, dup := seen[c.Name]; dup {
			return "availableColors", c.Name, true
		}
		seen[c.Name] = struct{}{}
	}
	clear(seen)
	for _, s := range p.AvailableSizes {
		if _, dup := seen[s.Name]; dup {
			return "availableSizes", s.Name, true
		}
		seen[s.Name] = struct{}{}
	}
	return "", "", false
}

// FindProduct returns the product with id using a linear scan.
func FindProduct(products []Product, id string) (*Product, bool) {
	for i := range products {
		if products[i].ID == id {
			return &products[i], true
		}
	}
	return nil, false
}
