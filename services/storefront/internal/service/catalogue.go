package service

import (
	"encoding/json"
	"log/slog"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/catalogue"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/contentstore"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
)

// ProductDetail is everything a product page needs.
type ProductDetail struct {
	Product       domain.Product   `json:"product"`
	SelectedColor *domain.Color    `json:"selectedColor,omitempty"`
	Images        []string         `json:"images"`
	Material      json.RawMessage  `json:"material,omitempty"`
	Related       []domain.Product `json:"related"`
}

// BannerQuery names the candidates for a page header.
type BannerQuery struct {
	Page       string
	Collection string
	Category   string
	Gender     string
	ForceTitle string
	Fallback   string
}

// BannerView is a resolved page header.
type BannerView struct {
	Banner    *domain.PageBanner `json:"banner,omitempty"`
	MatchedBy *catalogue.PageRef `json:"matchedBy,omitempty"`
	Title     string             `json:"title"`
}

// CatalogueService serves read-only browse views from the content snapshot.
type CatalogueService struct {
	store  *contentstore.Store
	logger *slog.Logger
}

// NewCatalogueService creates a new catalogue service.
func NewCatalogueService(store *contentstore.Store, logger *slog.Logger) *CatalogueService {
	return &CatalogueService{store: store, logger: logger}
}

// Index returns the group/category/gender facets.
func (s *CatalogueService) Index() catalogue.Index {
	return catalogue.BuildIndex(s.store.Products(), s.store.Collections())
}

// List returns the products matching q.
func (s *CatalogueService) List(q catalogue.Query) []domain.Product {
	return catalogue.Filter(s.store.Products(), q)
}

// Detail returns the product page for id opened on color.
func (s *CatalogueService) Detail(id, color string) (*ProductDetail, error) {
	products := s.store.Products()
	p, ok := domain.FindProduct(products, id)
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}

	detail := &ProductDetail{
		Product: *p,
		Related: catalogue.Related(products, *p, catalogue.DefaultRelatedLimit),
	}
	selected := ""
	if c, ok := catalogue.DefaultColor(*p, color); ok {
		detail.SelectedColor = &c
		selected = c.Name
	}
	detail.Images = catalogue.ImagesFor(*p, selected)
	if p.MaterialID != "" {
		detail.Material = s.material(p.MaterialID)
	}
	return detail, nil
}

// material finds an entry of the opaque materials segment by id.
func (s *CatalogueService) material(id string) json.RawMessage {
	raw, ok := s.store.Raw("materials")
	if !ok {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	for _, e := range entries {
		var head struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(e, &head) == nil && head.ID == id {
			return e
		}
	}
	return nil
}

// Banner resolves a page header. Refs are tried as internal page, then
// collection, then category, then gender.
func (s *CatalogueService) Banner(q BannerQuery) BannerView {
	var view BannerView
	b, ref, ok := catalogue.ResolveBanner(s.store.PageBanners(), catalogue.BannerRefs(q.Page, q.Collection, q.Category, q.Gender)...)
	if ok {
		view.Banner = &b
		view.MatchedBy = &ref
	}
	view.Title = catalogue.ResolveHeading(q.ForceTitle, view.Banner, q.Fallback)
	return view
}

// Segment returns the held JSON of a known segment.
func (s *CatalogueService) Segment(key string) (json.RawMessage, error) {
	if !contentstore.IsKnownKey(key) {
		return nil, apperrors.NotFound("segment", key)
	}
	raw, ok := s.store.Raw(key)
	if !ok {
		return nil, apperrors.NotFound("segment", key)
	}
	return raw, nil
}
