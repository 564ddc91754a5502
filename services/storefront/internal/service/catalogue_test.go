package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/catalogue"
)

const testProducts = `[
	{"id":"JER-100","name":"Pro Jersey","category":"Jersey","categoryGroup":"Team Wear","gender":"Unisex","materialId":"mat-dri",
	 "availableColors":[{"name":"Black","hex":"#000000"},{"name":"White","hex":"#FFFFFF"}],
	 "imageUrls":{"Black":["b1.jpg"],"White":[]},
	 "availableSizes":[{"name":"S","width":18,"length":27},{"name":"M","width":20,"length":28}],
	 "features":[],"supportedPrinting":["Sublimation"],"displayOrder":1},
	{"id":"JER-101","name":"Training Jersey","category":"Jersey","categoryGroup":"Team Wear","gender":"Men",
	 "availableColors":[],"imageUrls":{},"availableSizes":[],"features":[],"supportedPrinting":[],"displayOrder":0},
	{"id":"TEE-300","name":"Everyday Tee","category":"Tee","categoryGroup":"Casual","gender":"Women",
	 "availableColors":[],"imageUrls":{},"availableSizes":[],"features":[],"supportedPrinting":[],"displayOrder":2}
]`

const testCollections = `[{"id":"c1","name":"Team Wear"},{"id":"c2","name":"Casual"}]`

const testBanners = `[
	{"id":"b1","page":"Team Wear","title":"Team Wear","description":"","imageUrl":""},
	{"id":"b2","page":"Jersey","title":"Jerseys","description":"","imageUrl":""}
]`

const testMaterials = `[{"id":"mat-cot","name":"Cotton"},{"id":"mat-dri","name":"Dri-Fit","weight":"160gsm"}]`

func newTestCatalogueService(t *testing.T) *CatalogueService {
	store, _ := newTestStore(t, map[string]string{
		"products":    testProducts,
		"collections": testCollections,
		"pageBanners": testBanners,
		"materials":   testMaterials,
	})
	return NewCatalogueService(store, newTestLogger())
}

func TestCatalogueService_Index(t *testing.T) {
	idx := newTestCatalogueService(t).Index()

	require.Len(t, idx.Groups, 2)
	assert.Equal(t, "Casual", idx.Groups[0].Group)
	assert.Equal(t, []string{"Jersey"}, idx.Groups[1].CategoryNames())
}

func TestCatalogueService_List(t *testing.T) {
	got := newTestCatalogueService(t).List(catalogue.Query{Group: "team-wear"})

	require.Len(t, got, 2)
	assert.Equal(t, "JER-101", got[0].ID)
	assert.Equal(t, "JER-100", got[1].ID)
}

func TestCatalogueService_Detail(t *testing.T) {
	d, err := newTestCatalogueService(t).Detail("JER-100", "white")
	require.NoError(t, err)

	require.NotNil(t, d.SelectedColor)
	assert.Equal(t, "White", d.SelectedColor.Name)
	// White has no images yet, so every colour's images are shown.
	assert.Equal(t, []string{"b1.jpg"}, d.Images)
	assert.JSONEq(t, `{"id":"mat-dri","name":"Dri-Fit","weight":"160gsm"}`, string(d.Material))
	require.Len(t, d.Related, 1)
	assert.Equal(t, "JER-101", d.Related[0].ID)
}

func TestCatalogueService_DetailWithoutColours(t *testing.T) {
	d, err := newTestCatalogueService(t).Detail("TEE-300", "")
	require.NoError(t, err)
	assert.Nil(t, d.SelectedColor)
	assert.Empty(t, d.Images)
	assert.Nil(t, d.Material)
	assert.Empty(t, d.Related)
}

func TestCatalogueService_DetailNotFound(t *testing.T) {
	_, err := newTestCatalogueService(t).Detail("NOPE", "")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCatalogueService_Banner(t *testing.T) {
	svc := newTestCatalogueService(t)

	v := svc.Banner(BannerQuery{Collection: "Outerwear", Category: "Jersey", Fallback: "Products"})
	require.NotNil(t, v.Banner)
	assert.Equal(t, "b2", v.Banner.ID)
	assert.Equal(t, catalogue.KindCategory, v.MatchedBy.Kind)
	assert.Equal(t, "Jerseys", v.Title)

	v = svc.Banner(BannerQuery{Collection: "Team Wear", ForceTitle: "Season Sale"})
	assert.Equal(t, "b1", v.Banner.ID)
	assert.Equal(t, "Season Sale", v.Title)

	v = svc.Banner(BannerQuery{Gender: "Women", Fallback: "Products"})
	assert.Nil(t, v.Banner)
	assert.Nil(t, v.MatchedBy)
	assert.Equal(t, "Products", v.Title)
}

func TestCatalogueService_Segment(t *testing.T) {
	svc := newTestCatalogueService(t)

	raw, err := svc.Segment("materials")
	require.NoError(t, err)
	assert.JSONEq(t, testMaterials, string(raw))

	_, err = svc.Segment("credentials")
	assert.True(t, apperrors.IsNotFound(err))
}
