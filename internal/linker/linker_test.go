package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommercejockey/jockey/internal/calculator"
	"github.com/ecommercejockey/jockey/pkg/models"
)

func TestLinkVendors(t *testing.T) {
	goodyear := &models.PremierManufacturer{ID: "m1", Name: "Goodyear Tire", Slug: "goodyear"}
	orphan := &models.PremierManufacturer{ID: "m2", Name: "No Such Brand"}
	brand := &models.SemaBrand{BrandID: "BDZV", Name: "Goodyear Tire"}

	catalog := &Catalog{
		PremierManufacturers: []*models.PremierManufacturer{goodyear, orphan},
		SemaBrands:           []*models.SemaBrand{brand},
	}

	msgs := catalog.LinkVendors()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Success: Vendor goodyear created", msgs[0])
	assert.Equal(t, "Error: Premier Manufacturer No Such Brand, no matching SEMA brand", msgs[1])

	require.Len(t, catalog.Vendors, 1)
	vendor := catalog.Vendors[0]
	assert.Equal(t, "goodyear", vendor.Slug)
	assert.Same(t, goodyear, vendor.PremierManufacturer)
	assert.Same(t, brand, vendor.SemaBrand)

	// A second pass only reports the leftover manufacturer
	msgs = catalog.LinkVendors()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Error: Premier Manufacturer No Such Brand, no matching SEMA brand", msgs[0])
	assert.Len(t, catalog.Vendors, 1)
}

func TestLinkVendorsSlugFallsBackToName(t *testing.T) {
	manufacturer := &models.PremierManufacturer{ID: "m1", Name: "BBK Performance"}
	catalog := &Catalog{
		PremierManufacturers: []*models.PremierManufacturer{manufacturer},
		SemaBrands:           []*models.SemaBrand{{BrandID: "B1", Name: "BBK Performance!"}},
	}

	catalog.LinkVendors()
	require.Len(t, catalog.Vendors, 1)
	assert.Equal(t, "bbk-performance", catalog.Vendors[0].Slug)
}

func TestCheckUnlinkedVendors(t *testing.T) {
	linked := &models.PremierManufacturer{ID: "m1", Name: "Goodyear Tire"}
	unlinked := &models.PremierManufacturer{ID: "m2", Name: "Hawk"}
	authorized := &models.SemaBrand{BrandID: "B1", Name: "Hawk", IsAuthorized: true}
	unauthorized := &models.SemaBrand{BrandID: "B2", Name: "Someone Else"}

	catalog := &Catalog{
		Vendors:              []*models.Vendor{{ID: "v1", Slug: "goodyear", PremierManufacturer: linked}},
		PremierManufacturers: []*models.PremierManufacturer{linked, unlinked},
		SemaBrands:           []*models.SemaBrand{authorized, unauthorized},
	}

	msgs := catalog.CheckUnlinkedVendors()
	assert.Equal(t, []string{
		"Info: Premier Manufacturer Goodyear Tire, already exists",
		"Error: Premier Manufacturer Hawk, does not exist",
		"Error: SEMA Brand Hawk, does not exist",
	}, msgs)
}

func TestCreateShopifyVendors(t *testing.T) {
	manufacturer := &models.PremierManufacturer{ID: "m1", Name: "Goodyear Tire"}
	complete := &models.Vendor{
		ID:                  "v1",
		Slug:                "goodyear",
		PremierManufacturer: manufacturer,
		SemaBrand:           &models.SemaBrand{BrandID: "B1", Name: "Goodyear Tire"},
	}
	halfLinked := &models.Vendor{ID: "v2", Slug: "hawk"}

	catalog := &Catalog{Vendors: []*models.Vendor{complete, halfLinked}}

	msgs := catalog.CreateShopifyVendors()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Success: Shopify Vendor Goodyear Tire created", msgs[0])
	assert.Equal(t, "Error: Vendor hawk, missing Premier manufacturer and/or SEMA brand", msgs[1])

	require.NotNil(t, complete.ShopifyVendor)
	assert.Equal(t, "Goodyear Tire", complete.ShopifyVendor.Name)

	msgs = catalog.CreateShopifyVendors()
	assert.Equal(t, "Error: Vendor goodyear, Shopify vendor already exists", msgs[0])
}

func linkedCatalog() (*Catalog, *models.Vendor) {
	manufacturer := &models.PremierManufacturer{ID: "m1", Name: "Goodyear Tire"}
	brand := &models.SemaBrand{BrandID: "B1", Name: "Goodyear Tire", IsAuthorized: true}
	vendor := &models.Vendor{
		ID:                  "v1",
		Slug:                "goodyear",
		PremierManufacturer: manufacturer,
		SemaBrand:           brand,
	}
	return &Catalog{
		Vendors:              []*models.Vendor{vendor},
		PremierManufacturers: []*models.PremierManufacturer{manufacturer},
		SemaBrands:           []*models.SemaBrand{brand},
	}, vendor
}

func TestLinkItemsCreatesAndMatches(t *testing.T) {
	catalog, vendor := linkedCatalog()

	premier := &models.PremierProduct{
		ID:                "pp1",
		PremierPartNumber: "GY-100",
		VendorPartNumber:  "100",
		Manufacturer:      vendor.PremierManufacturer,
	}
	sema := &models.SemaProduct{
		ProductID:  900,
		PartNumber: "100",
		Dataset:    &models.SemaDataset{DatasetID: 1, Brand: vendor.SemaBrand},
	}
	catalog.PremierProducts = []*models.PremierProduct{premier}
	catalog.SemaProducts = []*models.SemaProduct{sema}

	msgs := catalog.LinkItems()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Success: Item GY-100 created", msgs[0])
	assert.Equal(t, "Success: Item GY-100 updated, 100 added", msgs[1])

	require.Len(t, catalog.Items, 1)
	item := catalog.Items[0]
	assert.Same(t, premier, item.PremierProduct)
	assert.Same(t, sema, item.SemaProduct)

	// Fully linked products are skipped on re-run
	msgs = catalog.LinkItems()
	assert.Equal(t, []string{"Info: Item, everything up-to-date"}, msgs)
}

func TestLinkItemsWithoutVendor(t *testing.T) {
	catalog := &Catalog{
		PremierProducts: []*models.PremierProduct{
			{ID: "pp1", PremierPartNumber: "X-1"},
			{ID: "pp2", PremierPartNumber: "X-2", Manufacturer: &models.PremierManufacturer{ID: "m9", Name: "Unknown"}},
		},
	}

	msgs := catalog.LinkItems()
	assert.Equal(t, []string{
		"Error: Premier Product X-1, no manufacturer",
		"Error: Premier Product X-2, no vendor",
	}, msgs)
	assert.Empty(t, catalog.Items)
}

func TestLinkItemsSemaOnly(t *testing.T) {
	catalog, vendor := linkedCatalog()
	sema := &models.SemaProduct{
		ProductID:  901,
		PartNumber: "200",
		Dataset:    &models.SemaDataset{DatasetID: 1, Brand: vendor.SemaBrand},
	}
	catalog.SemaProducts = []*models.SemaProduct{sema}

	msgs := catalog.LinkItems()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Success: Item 200 created", msgs[0])
	require.Len(t, catalog.Items, 1)
	assert.Nil(t, catalog.Items[0].PremierProduct)
	assert.Same(t, sema, catalog.Items[0].SemaProduct)
}

func TestCreateShopifyProducts(t *testing.T) {
	catalog, vendor := linkedCatalog()
	vendor.ShopifyVendor = &models.ShopifyVendor{ID: "sv1", Name: "Goodyear Tire"}

	ready := &models.Item{
		ID: "i1",
		PremierProduct: &models.PremierProduct{
			ID:                "pp1",
			PremierPartNumber: "GY-100",
			Manufacturer:      vendor.PremierManufacturer,
		},
		SemaProduct: &models.SemaProduct{ProductID: 900, PartNumber: "100"},
	}
	incomplete := &models.Item{
		ID:             "i2",
		PremierProduct: &models.PremierProduct{ID: "pp2", PremierPartNumber: "GY-200"},
	}
	catalog.Items = []*models.Item{ready, incomplete}

	msgs := catalog.CreateShopifyProducts()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Error: Item GY-200, missing Premier and/or SEMA products", msgs[1])

	require.NotNil(t, ready.ShopifyProduct)
	assert.Same(t, vendor.ShopifyVendor, ready.ShopifyProduct.Vendor)
	assert.Equal(t, models.ProductTypeAutomotive, ready.ShopifyProduct.ProductType)
	assert.Equal(t, models.ScopeWeb, ready.ShopifyProduct.Scope)

	msgs = catalog.CreateShopifyProducts()
	assert.Equal(t, "Error: Item GY-100, Shopify product already exists", msgs[0])
}

func categoryTree() []*models.SemaCategory {
	leaf := &models.SemaCategory{CategoryID: 3, Name: "All-Terrain", Level: models.CategoryLevelLeaf}
	branch := &models.SemaCategory{CategoryID: 2, Name: "Tires", Level: models.CategoryLevelBranch, Children: []*models.SemaCategory{leaf}}
	root := &models.SemaCategory{CategoryID: 1, Name: "Wheels & Tires", Level: models.CategoryLevelRoot, Children: []*models.SemaCategory{branch}}
	leaf.Parents = []*models.SemaCategory{branch}
	branch.Parents = []*models.SemaCategory{root}
	return []*models.SemaCategory{root, branch, leaf}
}

func TestBuildCategoryPaths(t *testing.T) {
	catalog := &Catalog{SemaCategories: categoryTree()}

	msgs := catalog.BuildCategoryPaths()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Success: Category Path Wheels & Tires :: Tires :: All-Terrain created", msgs[0])
	require.Len(t, catalog.CategoryPaths, 1)

	msgs = catalog.BuildCategoryPaths()
	assert.Equal(t, "Info: Category Path Wheels & Tires :: Tires :: All-Terrain, already exists", msgs[0])
	assert.Len(t, catalog.CategoryPaths, 1)
}

func TestBuildCategoryPathsInvalidLevel(t *testing.T) {
	catalog := &Catalog{
		SemaCategories: []*models.SemaCategory{{CategoryID: 9, Name: "Broken", Level: 7}},
	}

	msgs := catalog.BuildCategoryPaths()
	assert.Equal(t, []string{"Error: SEMA Category Broken, invalid level"}, msgs)
}

func TestCreateShopifyCollections(t *testing.T) {
	tree := categoryTree()
	catalog := &Catalog{SemaCategories: tree}
	catalog.BuildCategoryPaths()
	require.Len(t, catalog.CategoryPaths, 1)

	msgs := catalog.CreateShopifyCollections(calculator.DefaultCollectionConfig())
	assert.Len(t, msgs, 6) // created + added per level

	path := catalog.CategoryPaths[0]
	require.NotNil(t, path.ShopifyRootCollection)
	require.NotNil(t, path.ShopifyBranchCollection)
	require.NotNil(t, path.ShopifyLeafCollection)

	assert.Equal(t, "Wheels & Tires", path.ShopifyRootCollection.Title)
	assert.Equal(t, "Wheels & Tires // Tires", path.ShopifyBranchCollection.Title)
	assert.Same(t, path.ShopifyRootCollection, path.ShopifyBranchCollection.Parent)
	assert.Same(t, path.ShopifyBranchCollection, path.ShopifyLeafCollection.Parent)
	assert.Equal(t, models.SortBestSelling, path.ShopifyLeafCollection.SortOrder)
	assert.Equal(t, "category:all-terrain", path.ShopifyLeafCollection.Rules[0].Condition)
	assert.Len(t, catalog.ShopifyCollections, 3)

	msgs = catalog.CreateShopifyCollections(calculator.DefaultCollectionConfig())
	assert.Equal(t, "Error: Category Path Wheels & Tires :: Tires :: All-Terrain, Shopify collections already exist", msgs[0])
}

func TestCreateShopifyCollectionsSharesAcrossPaths(t *testing.T) {
	tree := categoryTree()
	root, branch := tree[0], tree[1]
	secondLeaf := &models.SemaCategory{CategoryID: 4, Name: "Mud-Terrain", Level: models.CategoryLevelLeaf, Parents: []*models.SemaCategory{branch}}
	branch.Children = append(branch.Children, secondLeaf)

	catalog := &Catalog{SemaCategories: []*models.SemaCategory{root, branch, tree[2], secondLeaf}}
	catalog.BuildCategoryPaths()
	require.Len(t, catalog.CategoryPaths, 2)

	catalog.CreateShopifyCollections(calculator.DefaultCollectionConfig())

	first, second := catalog.CategoryPaths[0], catalog.CategoryPaths[1]
	assert.Same(t, first.ShopifyRootCollection, second.ShopifyRootCollection)
	assert.Same(t, first.ShopifyBranchCollection, second.ShopifyBranchCollection)
	assert.NotSame(t, first.ShopifyLeafCollection, second.ShopifyLeafCollection)
	// root + shared branch + two leaves
	assert.Len(t, catalog.ShopifyCollections, 4)
}
