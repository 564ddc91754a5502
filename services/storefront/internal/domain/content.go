package domain

// Collection is a category group. Products and banners refer to it by name.
type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// HeroContent is one slide of the home page hero carousel.
type HeroContent struct {
	ID                    string   `json:"id" validate:"required"`
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	MediaSrc              string   `json:"mediaSrc"`
	MediaType             string   `json:"mediaType" validate:"omitempty,oneof=image video"`
	ButtonText            string   `json:"buttonText,omitempty"`
	ButtonCollectionLink  string   `json:"buttonCollectionLink,omitempty" validate:"required_with=ButtonText"`
	FeaturedProductsTitle string   `json:"featuredProductsTitle,omitempty"`
	FeaturedProductIDs    []string `json:"featuredProductIds"`
	HideTextOverlay       bool     `json:"hideTextOverlay"`
	DisplayOrder          int      `json:"displayOrder"`
}

// PageBanner is a header banner. Page may name an internal page, a
// collection, a category or a gender; these share one namespace.
type PageBanner struct {
	ID          string `json:"id"`
	Page        string `json:"page"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}
