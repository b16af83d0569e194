package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecommercejockey/jockey/pkg/models"
)

func testItem() *models.Item {
	brand := &models.SemaBrand{BrandID: "BDZV", Name: "Goodyear Tire"}
	dataset := &models.SemaDataset{
		DatasetID: 1,
		Brand:     brand,
		Vehicles: []models.SemaVehicle{
			{VehicleID: 11, BaseVehicleID: 101, IsRelevant: true},
			{VehicleID: 12, BaseVehicleID: 101, IsRelevant: true},
			{VehicleID: 13, BaseVehicleID: 55, IsRelevant: true},
			{VehicleID: 14, BaseVehicleID: 200},
		},
	}

	return &models.Item{
		ID: "i1",
		PremierProduct: &models.PremierProduct{
			PremierPartNumber: "GY-100",
			Description:       "Wrangler All-Terrain",
			UPC:               " 012345678905 ",
			Weight:            12.3456,
			CostCAD:           50.0,
			CostUSD:           38.0,
			PrimaryImage:      "https://img/premier.jpg",
		},
		SemaProduct: &models.SemaProduct{
			ProductID:  900,
			PartNumber: "GY-100",
			Dataset:    dataset,
			HTML:       "<div>packaging</div>",
			DescriptionPiesAttributes: []models.SemaPiesAttribute{
				{Segment: models.PiesSegmentShortDescription, Value: "Wrangler Tire"},
				{Segment: models.PiesSegmentExtendedDescription, Value: "<p>Long description</p>"},
			},
			DigitalAssetsPiesAttributes: []models.SemaPiesAttribute{
				{Segment: "P04", Value: "https://img/shot1.jpg"},
				{Segment: "P04", Value: "https://img/brand-logo.png"},
				{Segment: "P04", Value: "https://img/sheet.pdf"},
			},
			Categories: []*models.SemaCategory{
				{CategoryID: 1, Name: "Wheels & Tires", IsRelevant: true},
				{CategoryID: 2, Name: "Tires", IsRelevant: true},
				{CategoryID: 3, Name: "Not This One"},
			},
		},
	}
}

func TestProductCalculatorDescriptions(t *testing.T) {
	calc := NewProduct(testItem(), DefaultConfig())

	assert.Equal(t, "Wrangler Tire", calc.Title())
	assert.Equal(t, "<p>Long description</p>", calc.BodyHTML())
}

func TestProductCalculatorPremierDescription(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TitleOption = OptionPremierDescription
	calc := NewProduct(testItem(), cfg)

	assert.Equal(t, "Wrangler All-Terrain", calc.Title())
}

func TestProductCalculatorCustomOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TitleOption = OptionCustomTitle
	cfg.CustomTitle = "Hand-written title"
	calc := NewProduct(testItem(), cfg)

	assert.Equal(t, "Hand-written title", calc.Title())
}

func TestProductCalculatorTags(t *testing.T) {
	calc := NewProduct(testItem(), DefaultConfig())

	assert.Equal(t, []string{"vendor:goodyear-tire"}, calc.VendorTags())
	assert.Equal(t, []string{"category:wheels-tires", "category:tires"}, calc.CategoryTags())
	assert.Equal(t, []string{"base-vehicle:101", "base-vehicle:55"}, calc.BaseVehicleTags())
	assert.Equal(t, []string{
		"vendor:goodyear-tire",
		"category:wheels-tires",
		"category:tires",
		"base-vehicle:101",
		"base-vehicle:55",
	}, calc.Tags())
}

func TestProductCalculatorImages(t *testing.T) {
	t.Run("sema skips pdfs and logos", func(t *testing.T) {
		calc := NewProduct(testItem(), DefaultConfig())
		assert.Equal(t, []string{"https://img/shot1.jpg"}, calc.Images())
	})

	t.Run("premier uses the primary image", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ImagesOption = OptionPremierImages
		calc := NewProduct(testItem(), cfg)
		assert.Equal(t, []string{"https://img/premier.jpg"}, calc.Images())
	})

	t.Run("all concatenates both", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ImagesOption = OptionAllImages
		calc := NewProduct(testItem(), cfg)
		assert.Equal(t, []string{"https://img/shot1.jpg", "https://img/premier.jpg"}, calc.Images())
	})
}

func TestProductCalculatorMetafields(t *testing.T) {
	calc := NewProduct(testItem(), DefaultConfig())

	assert.Equal(t, "<div>packaging</div>", calc.PackagingMetafieldValue())
	assert.Equal(t, "55,101", calc.FitmentsMetafieldValue())

	fields := calc.Metafields()
	assert.Len(t, fields, 2)
	assert.Equal(t, models.MetafieldKeyPackaging, fields[0].Key)
	assert.Equal(t, models.MetafieldKeyFitments, fields[1].Key)
}

func TestProductCalculatorVariantFields(t *testing.T) {
	calc := NewProduct(testItem(), DefaultConfig())

	assert.Equal(t, 12.35, calc.Weight())
	assert.Equal(t, models.WeightUnitLB, calc.WeightUnit())
	assert.Equal(t, 50.0, calc.Cost())
	assert.Equal(t, 60.0, calc.Price()) // 50 * 1.2
	assert.Equal(t, "GY-100", calc.SKU())
	assert.Equal(t, "012345678905", calc.Barcode())
}

func TestProductCalculatorUnlinkedItem(t *testing.T) {
	calc := NewProduct(&models.Item{ID: "lonely"}, DefaultConfig())

	assert.Empty(t, calc.Title())
	assert.Empty(t, calc.Tags())
	assert.Empty(t, calc.Images())
	assert.Zero(t, calc.Price())
	assert.Empty(t, calc.WeightUnit())
}

func TestProductCalculatorApply(t *testing.T) {
	item := testItem()
	product := &models.ShopifyProduct{ID: "sp1"}

	changed := NewProduct(item, DefaultConfig()).Apply(product)
	assert.Contains(t, changed, "title")
	assert.Contains(t, changed, "variants")
	assert.Contains(t, changed, "price")

	assert.Equal(t, "Wrangler Tire", product.Title)
	assert.Equal(t, models.DefaultVariantTitle, product.Variants[0].Title)
	assert.True(t, product.Variants[0].IsTaxable)
	assert.Equal(t, "GY-100", product.Variants[0].SKU)
	assert.Equal(t, 60.0, product.Variants[0].Price)
	assert.Equal(t, 1, product.Images[0].Position)

	// Second apply with unchanged sources is a no-op
	changed = NewProduct(item, DefaultConfig()).Apply(product)
	assert.Empty(t, changed)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "wheels-tires", Slugify("Wheels & Tires"))
	assert.Equal(t, "goodyear", Slugify("  Goodyear!  "))
	assert.Equal(t, "a-b-c", Slugify("A/B/C"))
}
