package catalogue

import "github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"

// PageKind names the namespace a banner lookup comes from. Banner pages are
// one flat namespace, so a collection called "about" collides with the about
// page; the order of refs passed to ResolveBanner decides which wins.
type PageKind string

const (
	KindPage       PageKind = "page"
	KindCollection PageKind = "collection"
	KindCategory   PageKind = "category"
	KindGender     PageKind = "gender"
)

// PageRef is one candidate banner page.
type PageRef struct {
	Kind PageKind `json:"kind"`
	Page string   `json:"page"`
}

// BannerRefs builds refs in the storefront's precedence order: internal
// page, collection, category, gender. Empty values are skipped.
func BannerRefs(page, collection, category, gender string) []PageRef {
	var refs []PageRef
	for _, r := range []PageRef{
		{KindPage, page},
		{KindCollection, collection},
		{KindCategory, category},
		{KindGender, gender},
	} {
		if r.Page != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// ResolveBanner tries each ref in order and returns the first banner, in
// stored order, whose page equals the ref exactly. The matching ref is
// returned alongside it.
func ResolveBanner(banners []domain.PageBanner, refs ...PageRef) (domain.PageBanner, PageRef, bool) {
	for _, ref := range refs {
		if ref.Page == "" {
			continue
		}
		for _, b := range banners {
			if b.Page == ref.Page {
				return b, ref, true
			}
		}
	}
	return domain.PageBanner{}, PageRef{}, false
}

// ResolveHeading picks a page title: force, else the banner title, else
// fallback.
func ResolveHeading(force string, banner *domain.PageBanner, fallback string) string {
	if force != "" {
		return force
	}
	if banner != nil && banner.Title != "" {
		return banner.Title
	}
	return fallback
}
