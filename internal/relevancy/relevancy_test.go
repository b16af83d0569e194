package relevancy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecommercejockey/jockey/pkg/models"
)

func relevantManufacturer() *models.PremierManufacturer {
	return &models.PremierManufacturer{
		ID:           "m1",
		Name:         "Goodyear",
		PrimaryImage: "https://img/goodyear.jpg",
		IsRelevant:   true,
	}
}

func eligiblePremierProduct() *models.PremierProduct {
	return &models.PremierProduct{
		PremierPartNumber: "GY-100",
		Manufacturer:      relevantManufacturer(),
		InventoryAB:       4,
		CostCAD:           25.0,
		PrimaryImage:      "https://img/gy-100.jpg",
	}
}

func TestCheckPremierManufacturer(t *testing.T) {
	t.Run("relevant with image passes", func(t *testing.T) {
		res := CheckPremierManufacturer(relevantManufacturer())
		assert.True(t, res.MayBeRelevant)
		assert.Empty(t, res.Errors)
	})

	t.Run("relevant without image errors", func(t *testing.T) {
		m := relevantManufacturer()
		m.PrimaryImage = ""
		res := CheckPremierManufacturer(m)
		assert.False(t, res.MayBeRelevant)
		assert.Contains(t, res.Errors, "no primary image")
	})

	t.Run("irrelevant without image passes", func(t *testing.T) {
		m := &models.PremierManufacturer{ID: "m2", Name: "NoImage"}
		res := CheckPremierManufacturer(m)
		assert.True(t, res.MayBeRelevant)
		assert.Empty(t, res.Errors)
	})
}

func TestCheckPremierProduct(t *testing.T) {
	t.Run("eligible when manufacturer relevant and AB stocked", func(t *testing.T) {
		res := CheckPremierProduct(eligiblePremierProduct())
		assert.True(t, res.MayBeRelevant)
		assert.Empty(t, res.Errors)
	})

	t.Run("no AB inventory blocks eligibility", func(t *testing.T) {
		p := eligiblePremierProduct()
		p.InventoryAB = 0
		res := CheckPremierProduct(p)
		assert.False(t, res.MayBeRelevant)
	})

	t.Run("relevant product reports every missing field", func(t *testing.T) {
		p := eligiblePremierProduct()
		p.IsRelevant = true
		p.InventoryAB = 0
		p.CostCAD = 0
		p.PrimaryImage = ""
		res := CheckPremierProduct(p)
		assert.ElementsMatch(t, []string{"no AB inventory", "no CAD cost", "no primary image"}, res.Errors)
	})

	t.Run("relevant product with irrelevant manufacturer errors", func(t *testing.T) {
		p := eligiblePremierProduct()
		p.IsRelevant = true
		p.Manufacturer.IsRelevant = false
		res := CheckPremierProduct(p)
		assert.Contains(t, res.Errors, "manufacturer not relevant")
	})
}

func TestCheckSemaBrand(t *testing.T) {
	brand := &models.SemaBrand{
		BrandID:         "BDZV",
		Name:            "Goodyear",
		PrimaryImageURL: "https://img/brand.jpg",
		IsAuthorized:    true,
		Datasets: []*models.SemaDataset{
			{DatasetID: 1, IsRelevant: true},
			{DatasetID: 2},
		},
	}

	t.Run("eligible with a relevant dataset", func(t *testing.T) {
		res := CheckSemaBrand(brand)
		assert.True(t, res.MayBeRelevant)
	})

	t.Run("unauthorized relevant brand warns only", func(t *testing.T) {
		b := *brand
		b.IsRelevant = true
		b.IsAuthorized = false
		res := CheckSemaBrand(&b)
		assert.Contains(t, res.Warnings, "not authorized")
		assert.Empty(t, res.Errors)
	})

	t.Run("relevant brand without datasets or image errors", func(t *testing.T) {
		b := &models.SemaBrand{BrandID: "X", IsRelevant: true, IsAuthorized: true}
		res := CheckSemaBrand(b)
		assert.ElementsMatch(t, []string{"no relevant datasets", "missing image"}, res.Errors)
		assert.False(t, res.MayBeRelevant)
	})
}

func TestCheckSemaDataset(t *testing.T) {
	t.Run("eligible when brand relevant", func(t *testing.T) {
		d := &models.SemaDataset{
			DatasetID: 1,
			Brand:     &models.SemaBrand{BrandID: "B", IsRelevant: true},
		}
		res := CheckSemaDataset(d)
		assert.True(t, res.MayBeRelevant)
	})

	t.Run("relevant dataset with irrelevant brand errors", func(t *testing.T) {
		d := &models.SemaDataset{
			DatasetID:    1,
			IsRelevant:   true,
			IsAuthorized: true,
			Brand:        &models.SemaBrand{BrandID: "B"},
		}
		res := CheckSemaDataset(d)
		assert.Contains(t, res.Errors, "brand not relevant")
	})
}

func TestCheckSemaCategory(t *testing.T) {
	t.Run("valid level passes", func(t *testing.T) {
		c := &models.SemaCategory{CategoryID: 1, Level: models.CategoryLevelBranch, IsRelevant: true}
		res := CheckSemaCategory(c)
		assert.True(t, res.MayBeRelevant)
		assert.Empty(t, res.Errors)
	})

	t.Run("level outside tree errors", func(t *testing.T) {
		c := &models.SemaCategory{CategoryID: 2, Level: 4, IsRelevant: true}
		res := CheckSemaCategory(c)
		assert.Contains(t, res.Errors, "invalid level")
	})
}

func TestCheckSemaProduct(t *testing.T) {
	dataset := &models.SemaDataset{
		DatasetID:  1,
		IsRelevant: true,
		Vehicles:   []models.SemaVehicle{{VehicleID: 10, IsRelevant: true}},
	}

	complete := func() *models.SemaProduct {
		return &models.SemaProduct{
			ProductID:  100,
			PartNumber: "GY-100",
			Dataset:    dataset,
			HTML:       "<p>part</p>",
			DescriptionPiesAttributes: []models.SemaPiesAttribute{
				{Segment: models.PiesSegmentShortDescription, Value: "Short"},
			},
			DigitalAssetsPiesAttributes: []models.SemaPiesAttribute{
				{Segment: "P04", Value: "https://img/asset.jpg"},
			},
			Categories: []*models.SemaCategory{
				{CategoryID: 1, Level: 1, IsRelevant: true},
				{CategoryID: 2, Level: 2, IsRelevant: true},
				{CategoryID: 3, Level: 3, IsRelevant: true},
			},
		}
	}

	t.Run("inherits dataset fitments when it has none", func(t *testing.T) {
		res := CheckSemaProduct(complete())
		assert.True(t, res.MayBeRelevant)
	})

	t.Run("own irrelevant fitments block eligibility", func(t *testing.T) {
		p := complete()
		p.Vehicles = []models.SemaVehicle{{VehicleID: 20}}
		res := CheckSemaProduct(p)
		assert.False(t, res.MayBeRelevant)
	})

	t.Run("relevant product needs exactly three relevant categories", func(t *testing.T) {
		p := complete()
		p.IsRelevant = true
		p.Categories = p.Categories[:2]
		res := CheckSemaProduct(p)
		assert.Contains(t, res.Errors, "2 categories")
	})

	t.Run("relevant product missing html and PIES", func(t *testing.T) {
		p := complete()
		p.IsRelevant = true
		p.HTML = ""
		p.DescriptionPiesAttributes = nil
		p.DigitalAssetsPiesAttributes = nil
		res := CheckSemaProduct(p)
		assert.Contains(t, res.Errors, "no html")
		assert.Contains(t, res.Errors, "missing description PIES")
		assert.Contains(t, res.Errors, "missing digital assets PIES")
	})
}

func publishableProduct() *models.ShopifyProduct {
	return &models.ShopifyProduct{
		ID:       "sp1",
		Title:    "Goodyear Wrangler",
		BodyHTML: "<p>tire</p>",
		Vendor:   &models.ShopifyVendor{ID: "v1", Name: "Goodyear"},
		Tags:     []string{"a", "b", "c", "d", "e"},
		Images:   []models.ShopifyImage{{Src: "https://img/1.jpg"}},
		Variants: []*models.ShopifyVariant{{
			Title:      models.DefaultVariantTitle,
			SKU:        "GY-100",
			Barcode:    "0123456789",
			Price:      99.99,
			Cost:       50.0,
			Weight:     12.5,
			WeightUnit: models.WeightUnitLB,
		}},
	}
}

func TestCheckShopifyProduct(t *testing.T) {
	t.Run("complete product is publishable", func(t *testing.T) {
		res := CheckShopifyProduct(publishableProduct())
		assert.True(t, res.MayBeRelevant)
		assert.Empty(t, res.Errors)
	})

	t.Run("missing variants reported once", func(t *testing.T) {
		p := publishableProduct()
		p.Variants = nil
		res := CheckShopifyProduct(p)
		assert.Contains(t, res.Errors, "missing variants")
		assert.False(t, res.MayBeRelevant)
	})

	t.Run("fewer than five tags errors", func(t *testing.T) {
		p := publishableProduct()
		p.Tags = []string{"a", "b"}
		res := CheckShopifyProduct(p)
		assert.Contains(t, res.Errors, "missing tags")
	})

	t.Run("first variant must use the default title", func(t *testing.T) {
		p := publishableProduct()
		p.Variants[0].Title = "Large"
		res := CheckShopifyProduct(p)
		assert.Contains(t, res.Errors, "first variant not default title")
	})

	t.Run("variant field errors accumulate", func(t *testing.T) {
		p := publishableProduct()
		p.Variants[0].Price = 0
		p.Variants[0].Cost = 0
		p.Variants[0].Barcode = ""
		res := CheckShopifyProduct(p)
		assert.Contains(t, res.Errors, "first variant missing price")
		assert.Contains(t, res.Errors, "first variant missing cost")
		assert.Contains(t, res.Errors, "first variant missing barcode")
	})
}

func TestCheckShopifyCollection(t *testing.T) {
	t.Run("title and rules required", func(t *testing.T) {
		res := CheckShopifyCollection(&models.ShopifyCollection{})
		assert.ElementsMatch(t, []string{"missing title", "missing rules"}, res.Errors)
		assert.False(t, res.MayBeRelevant)
	})

	t.Run("complete collection passes", func(t *testing.T) {
		c := &models.ShopifyCollection{
			ID:    "c1",
			Title: "Tires",
			Rules: []models.ShopifyCollectionRule{{Column: "tag", Relation: "equals", Condition: "tires"}},
		}
		res := CheckShopifyCollection(c)
		assert.True(t, res.MayBeRelevant)
	})
}

func TestCheckVendor(t *testing.T) {
	vendor := func() *models.Vendor {
		return &models.Vendor{
			ID:                  "v1",
			Slug:                "goodyear",
			PremierManufacturer: relevantManufacturer(),
			SemaBrand: &models.SemaBrand{
				BrandID:         "BDZV",
				IsAuthorized:    true,
				IsRelevant:      true,
				PrimaryImageURL: "https://img/brand.jpg",
				Datasets:        []*models.SemaDataset{{DatasetID: 1, IsRelevant: true}},
			},
			ShopifyVendor: &models.ShopifyVendor{ID: "sv1", Name: "Goodyear"},
		}
	}

	t.Run("fully linked vendor is eligible", func(t *testing.T) {
		res := CheckVendor(vendor())
		assert.True(t, res.MayBeRelevant)
		assert.Empty(t, res.Errors)
	})

	t.Run("missing sides reported", func(t *testing.T) {
		v := vendor()
		v.SemaBrand = nil
		v.ShopifyVendor = nil
		res := CheckVendor(v)
		assert.Contains(t, res.Errors, "missing SEMA brand")
		assert.Contains(t, res.Errors, "missing Shopify vendor")
		assert.False(t, res.MayBeRelevant)
	})

	t.Run("nested errors carry a source prefix", func(t *testing.T) {
		v := vendor()
		v.PremierManufacturer.IsRelevant = true
		v.PremierManufacturer.PrimaryImage = ""
		res := CheckVendor(v)
		assert.Contains(t, res.Errors, "PREMIER: no primary image")
	})

	t.Run("exception warns and blocks eligibility", func(t *testing.T) {
		v := vendor()
		v.RelevancyException = "discontinued line"
		res := CheckVendor(v)
		assert.Contains(t, res.Warnings, "exception: discontinued line")
		assert.False(t, res.MayBeRelevant)
	})
}

func TestCheckItem(t *testing.T) {
	semaProduct := &models.SemaProduct{
		ProductID:  100,
		PartNumber: "GY-100",
		Dataset:    &models.SemaDataset{DatasetID: 1, IsRelevant: true},
	}

	t.Run("eligible with both products linked", func(t *testing.T) {
		i := &models.Item{
			ID:             "i1",
			PremierProduct: eligiblePremierProduct(),
			SemaProduct:    semaProduct,
		}
		res := CheckItem(i)
		assert.True(t, res.MayBeRelevant)
	})

	t.Run("irrelevant item flags relevant sides", func(t *testing.T) {
		p := eligiblePremierProduct()
		p.IsRelevant = true
		i := &models.Item{ID: "i2", PremierProduct: p}
		res := CheckItem(i)
		assert.Contains(t, res.Errors, "Premier product relevant")
		assert.Contains(t, res.Warnings, "missing SEMA product")
	})

	t.Run("relevant item reports missing sides as errors", func(t *testing.T) {
		i := &models.Item{ID: "i3", IsRelevant: true}
		res := CheckItem(i)
		assert.Contains(t, res.Errors, "missing Premier product")
		assert.Contains(t, res.Errors, "missing SEMA product")
	})
}

func TestCheckCategoryPath(t *testing.T) {
	path := func() *models.CategoryPath {
		return &models.CategoryPath{
			ID:                 "p1",
			SemaRootCategory:   &models.SemaCategory{CategoryID: 1, Level: 1, IsRelevant: true},
			SemaBranchCategory: &models.SemaCategory{CategoryID: 2, Level: 2, IsRelevant: true},
			SemaLeafCategory:   &models.SemaCategory{CategoryID: 3, Level: 3, IsRelevant: true},
		}
	}

	t.Run("all levels relevant is eligible", func(t *testing.T) {
		res := CheckCategoryPath(path())
		assert.True(t, res.MayBeRelevant)
	})

	t.Run("relevant path with irrelevant leaf errors", func(t *testing.T) {
		p := path()
		p.IsRelevant = true
		p.SemaLeafCategory.IsRelevant = false
		res := CheckCategoryPath(p)
		assert.Contains(t, res.Errors, "leaf category not relevant")
		assert.False(t, res.MayBeRelevant)
	})
}
