// Package linker builds and maintains the link entities between the
// distributor catalog, the SEMA catalog, and the storefront: items from
// matching products, vendors from manufacturer/brand pairs, category paths
// from the category tree, and the storefront records each of them maps to.
//
// Every operation works over an in-memory snapshot and reports per-record
// Info/Success/Error messages; failures never abort a batch.
package linker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecommercejockey/jockey/internal/calculator"
	"github.com/ecommercejockey/jockey/internal/messages"
	"github.com/ecommercejockey/jockey/pkg/models"
)

const (
	vendorLabel     = "Vendor"
	itemLabel       = "Item"
	pathLabel       = "Category Path"
	shopVendorLabel = "Shopify Vendor"
	shopProductLabel    = "Shopify Product"
	shopCollectionLabel = "Shopify Collection"
)

// Catalog is the working snapshot a link pass operates on. The slices are
// mutated in place: created records are appended and links are set on
// existing records.
type Catalog struct {
	Vendors       []*models.Vendor
	Items         []*models.Item
	CategoryPaths []*models.CategoryPath

	PremierManufacturers []*models.PremierManufacturer
	PremierProducts      []*models.PremierProduct
	SemaBrands           []*models.SemaBrand
	SemaProducts         []*models.SemaProduct
	SemaCategories       []*models.SemaCategory
	ShopifyCollections   []*models.ShopifyCollection
}

// CheckUnlinkedVendors reports manufacturers, authorized brands, and
// storefront vendors that have no vendor link yet.
func (c *Catalog) CheckUnlinkedVendors() []string {
	var msgs []string

	byManufacturer := make(map[*models.PremierManufacturer]bool)
	byBrand := make(map[*models.SemaBrand]bool)
	for _, vendor := range c.Vendors {
		if vendor.PremierManufacturer != nil {
			byManufacturer[vendor.PremierManufacturer] = true
		}
		if vendor.SemaBrand != nil {
			byBrand[vendor.SemaBrand] = true
		}
	}

	for _, manufacturer := range c.PremierManufacturers {
		if byManufacturer[manufacturer] {
			msgs = append(msgs, messages.UpToDate("Premier Manufacturer", manufacturer, "already exists"))
		} else {
			msgs = append(msgs, messages.Error("Premier Manufacturer", manufacturer, errors.New("does not exist")))
		}
	}
	for _, brand := range c.SemaBrands {
		if !brand.IsAuthorized {
			continue
		}
		if byBrand[brand] {
			msgs = append(msgs, messages.UpToDate("SEMA Brand", brand, "already exists"))
		} else {
			msgs = append(msgs, messages.Error("SEMA Brand", brand, errors.New("does not exist")))
		}
	}
	return msgs
}

// CreateShopifyVendors creates a storefront vendor for every vendor link
// that has both upstream sides but no storefront side yet.
func (c *Catalog) CreateShopifyVendors() []string {
	var msgs []string
	for _, vendor := range c.Vendors {
		if vendor.ShopifyVendor != nil {
			msgs = append(msgs, messages.Error(vendorLabel, vendor, errors.New("Shopify vendor already exists")))
			continue
		}
		if vendor.PremierManufacturer == nil || vendor.SemaBrand == nil {
			msgs = append(msgs, messages.Error(vendorLabel, vendor, errors.New("missing Premier manufacturer and/or SEMA brand")))
			continue
		}
		shopifyVendor := &models.ShopifyVendor{
			ID:   uuid.New().String(),
			Name: vendor.PremierManufacturer.Name,
		}
		vendor.ShopifyVendor = shopifyVendor
		msgs = append(msgs, messages.CreateSuccess(shopVendorLabel, shopifyVendor))
	}
	if len(msgs) == 0 {
		msgs = append(msgs, messages.ClassUpToDate(vendorLabel))
	}
	return msgs
}

// vendorOfManufacturer finds the vendor link owning a manufacturer.
func (c *Catalog) vendorOfManufacturer(m *models.PremierManufacturer) *models.Vendor {
	for _, vendor := range c.Vendors {
		if vendor.PremierManufacturer == m {
			return vendor
		}
	}
	return nil
}

// vendorOfBrand finds the vendor link owning a brand.
func (c *Catalog) vendorOfBrand(b *models.SemaBrand) *models.Vendor {
	for _, vendor := range c.Vendors {
		if vendor.SemaBrand == b {
			return vendor
		}
	}
	return nil
}

// LinkItems creates items for unlinked Premier products and attaches
// unlinked SEMA products, matching the two sides by vendor and part
// number.
func (c *Catalog) LinkItems() []string {
	var msgs []string

	premierLinked := make(map[*models.PremierProduct]*models.Item)
	semaLinked := make(map[*models.SemaProduct]*models.Item)
	for _, item := range c.Items {
		if item.PremierProduct != nil {
			premierLinked[item.PremierProduct] = item
		}
		if item.SemaProduct != nil {
			semaLinked[item.SemaProduct] = item
		}
	}

	// Items keyed by vendor and vendor part number for cross-matching
	findBySema := func(vendor *models.Vendor, partNumber string) *models.Item {
		for _, item := range c.Items {
			sema := item.SemaProduct
			if sema == nil || sema.Dataset == nil || sema.Dataset.Brand == nil {
				continue
			}
			if c.vendorOfBrand(sema.Dataset.Brand) == vendor && sema.PartNumber == partNumber {
				return item
			}
		}
		return nil
	}
	findByPremier := func(vendor *models.Vendor, partNumber string) *models.Item {
		for _, item := range c.Items {
			premier := item.PremierProduct
			if premier == nil || premier.Manufacturer == nil {
				continue
			}
			if c.vendorOfManufacturer(premier.Manufacturer) == vendor && premier.VendorPartNumber == partNumber {
				return item
			}
		}
		return nil
	}

	for _, premier := range c.PremierProducts {
		if premierLinked[premier] != nil {
			continue
		}
		if premier.Manufacturer == nil {
			msgs = append(msgs, messages.Error("Premier Product", premier, errors.New("no manufacturer")))
			continue
		}
		vendor := c.vendorOfManufacturer(premier.Manufacturer)
		if vendor == nil {
			msgs = append(msgs, messages.Error("Premier Product", premier, errors.New("no vendor")))
			continue
		}

		if item := findBySema(vendor, premier.VendorPartNumber); item != nil {
			if item.PremierProduct != nil {
				msgs = append(msgs, messages.Error("Premier Product", premier,
					fmt.Errorf("matching item %s already has a Premier product", item)))
			} else {
				item.PremierProduct = premier
				premierLinked[premier] = item
				msgs = append(msgs, messages.UpdateSuccess(itemLabel, item, fmt.Sprintf("%s added", premier)))
			}
			continue
		}

		item := &models.Item{ID: uuid.New().String(), PremierProduct: premier}
		c.Items = append(c.Items, item)
		premierLinked[premier] = item
		msgs = append(msgs, messages.CreateSuccess(itemLabel, item))
	}

	for _, sema := range c.SemaProducts {
		if semaLinked[sema] != nil {
			continue
		}
		if sema.Dataset == nil || sema.Dataset.Brand == nil {
			msgs = append(msgs, messages.Error("SEMA Product", sema, errors.New("no brand")))
			continue
		}
		vendor := c.vendorOfBrand(sema.Dataset.Brand)
		if vendor == nil {
			msgs = append(msgs, messages.Error("SEMA Product", sema, errors.New("no vendor")))
			continue
		}

		if item := findByPremier(vendor, sema.PartNumber); item != nil {
			if item.SemaProduct != nil {
				msgs = append(msgs, messages.Error("SEMA Product", sema,
					fmt.Errorf("matching item %s already has a SEMA product", item)))
			} else {
				item.SemaProduct = sema
				semaLinked[sema] = item
				msgs = append(msgs, messages.UpdateSuccess(itemLabel, item, fmt.Sprintf("%s added", sema)))
			}
			continue
		}

		item := &models.Item{ID: uuid.New().String(), SemaProduct: sema}
		c.Items = append(c.Items, item)
		semaLinked[sema] = item
		msgs = append(msgs, messages.CreateSuccess(itemLabel, item))
	}

	if len(msgs) == 0 {
		msgs = append(msgs, messages.ClassUpToDate(itemLabel))
	}
	return msgs
}

// CreateShopifyProducts creates a storefront product for every item that
// has both upstream products but no storefront product yet.
func (c *Catalog) CreateShopifyProducts() []string {
	var msgs []string
	for _, item := range c.Items {
		if item.ShopifyProduct != nil {
			msgs = append(msgs, messages.Error(itemLabel, item, errors.New("Shopify product already exists")))
			continue
		}
		if item.PremierProduct == nil || item.SemaProduct == nil {
			msgs = append(msgs, messages.Error(itemLabel, item, errors.New("missing Premier and/or SEMA products")))
			continue
		}

		vendor := c.vendorOfManufacturer(item.PremierProduct.Manufacturer)
		if vendor == nil || vendor.ShopifyVendor == nil {
			msgs = append(msgs, messages.Error(itemLabel, item, errors.New("no Shopify vendor")))
			continue
		}

		product := &models.ShopifyProduct{
			ID:          uuid.New().String(),
			Vendor:      vendor.ShopifyVendor,
			ProductType: models.ProductTypeAutomotive,
			Scope:       models.ScopeWeb,
		}
		item.ShopifyProduct = product
		msgs = append(msgs, messages.CreateSuccess(shopProductLabel, product))
	}
	if len(msgs) == 0 {
		msgs = append(msgs, messages.ClassUpToDate(itemLabel))
	}
	return msgs
}

// BuildCategoryPaths walks the three-level category tree and creates a
// path for every root/branch/leaf combination that does not exist yet.
func (c *Catalog) BuildCategoryPaths() []string {
	var msgs []string

	type key struct{ root, branch, leaf *models.SemaCategory }
	existing := make(map[key]*models.CategoryPath)
	for _, path := range c.CategoryPaths {
		existing[key{path.SemaRootCategory, path.SemaBranchCategory, path.SemaLeafCategory}] = path
	}

	record := func(root, branch, leaf *models.SemaCategory) {
		k := key{root, branch, leaf}
		if path, ok := existing[k]; ok {
			msgs = append(msgs, messages.UpToDate(pathLabel, path, "already exists"))
			return
		}
		path := &models.CategoryPath{
			ID:                 uuid.New().String(),
			SemaRootCategory:   root,
			SemaBranchCategory: branch,
			SemaLeafCategory:   leaf,
		}
		c.CategoryPaths = append(c.CategoryPaths, path)
		existing[k] = path
		msgs = append(msgs, messages.CreateSuccess(pathLabel, path))
	}

	for _, category := range c.SemaCategories {
		switch category.Level {
		case models.CategoryLevelRoot:
			for _, branch := range category.Children {
				for _, leaf := range branch.Children {
					record(category, branch, leaf)
				}
			}
		case models.CategoryLevelBranch, models.CategoryLevelLeaf:
			// Paths are enumerated from the roots; other levels only
			// need their level validated.
		default:
			msgs = append(msgs, messages.Error("SEMA Category", category, errors.New("invalid level")))
		}
	}

	if len(msgs) == 0 {
		msgs = append(msgs, messages.ClassUpToDate(pathLabel))
	}
	return msgs
}

// CreateShopifyCollections creates the root, branch, and leaf storefront
// collections for every category path, sharing collections between paths
// with the same title and parent.
func (c *Catalog) CreateShopifyCollections(config calculator.CollectionConfig) []string {
	var msgs []string

	type key struct {
		title  string
		parent *models.ShopifyCollection
	}
	existing := make(map[key]*models.ShopifyCollection)
	for _, collection := range c.ShopifyCollections {
		existing[key{collection.Title, collection.Parent}] = collection
	}

	getOrCreate := func(title string, parent *models.ShopifyCollection, rules []models.ShopifyCollectionRule) (*models.ShopifyCollection, bool) {
		k := key{title, parent}
		if collection, ok := existing[k]; ok {
			return collection, false
		}
		collection := &models.ShopifyCollection{
			ID:        uuid.New().String(),
			Title:     title,
			Parent:    parent,
			Rules:     rules,
			Scope:     models.ScopeWeb,
			SortOrder: models.SortBestSelling,
		}
		c.ShopifyCollections = append(c.ShopifyCollections, collection)
		existing[k] = collection
		return collection, true
	}

	for _, path := range c.CategoryPaths {
		if path.ShopifyRootCollection != nil &&
			path.ShopifyBranchCollection != nil &&
			path.ShopifyLeafCollection != nil {
			msgs = append(msgs, messages.Error(pathLabel, path, errors.New("Shopify collections already exist")))
			continue
		}

		calc := calculator.NewCollection(path, config)

		levels := []struct {
			level  int
			target **models.ShopifyCollection
			parent func() *models.ShopifyCollection
		}{
			{1, &path.ShopifyRootCollection, func() *models.ShopifyCollection { return nil }},
			{2, &path.ShopifyBranchCollection, func() *models.ShopifyCollection { return path.ShopifyRootCollection }},
			{3, &path.ShopifyLeafCollection, func() *models.ShopifyCollection { return path.ShopifyBranchCollection }},
		}

		failed := false
		for _, l := range levels {
			if *l.target != nil {
				continue
			}
			title := calc.Title(l.level)
			if title == "" {
				msgs = append(msgs, messages.Error(pathLabel, path, fmt.Errorf("no title for level %d", l.level)))
				failed = true
				break
			}
			collection, created := getOrCreate(title, l.parent(), calc.Rules(l.level))
			collection.Tags = calc.Tags(l.level)
			*l.target = collection
			if created {
				msgs = append(msgs, messages.CreateSuccess(shopCollectionLabel, collection))
			}
			msgs = append(msgs, messages.UpdateSuccess(pathLabel, path, fmt.Sprintf("%s added", collection)))
		}
		if failed {
			continue
		}
	}

	if len(msgs) == 0 {
		msgs = append(msgs, messages.ClassUpToDate(pathLabel))
	}
	return msgs
}

// LinkVendors creates vendor links for manufacturer/brand pairs that share
// a name and are not linked yet.
func (c *Catalog) LinkVendors() []string {
	var msgs []string

	linkedManufacturers := make(map[*models.PremierManufacturer]bool)
	linkedBrands := make(map[*models.SemaBrand]bool)
	for _, vendor := range c.Vendors {
		if vendor.PremierManufacturer != nil {
			linkedManufacturers[vendor.PremierManufacturer] = true
		}
		if vendor.SemaBrand != nil {
			linkedBrands[vendor.SemaBrand] = true
		}
	}

	brandsByName := make(map[string]*models.SemaBrand)
	for _, brand := range c.SemaBrands {
		brandsByName[calculator.Slugify(brand.Name)] = brand
	}

	for _, manufacturer := range c.PremierManufacturers {
		if linkedManufacturers[manufacturer] {
			continue
		}
		brand, ok := brandsByName[calculator.Slugify(manufacturer.Name)]
		if !ok || linkedBrands[brand] {
			msgs = append(msgs, messages.Error("Premier Manufacturer", manufacturer, errors.New("no matching SEMA brand")))
			continue
		}
		vendor := &models.Vendor{
			ID:                  uuid.New().String(),
			Slug:                slugOf(manufacturer),
			PremierManufacturer: manufacturer,
			SemaBrand:           brand,
		}
		c.Vendors = append(c.Vendors, vendor)
		linkedManufacturers[manufacturer] = true
		linkedBrands[brand] = true
		msgs = append(msgs, messages.CreateSuccess(vendorLabel, vendor))
	}

	if len(msgs) == 0 {
		msgs = append(msgs, messages.ClassUpToDate(vendorLabel))
	}
	return msgs
}

func slugOf(m *models.PremierManufacturer) string {
	if m.Slug != "" {
		return m.Slug
	}
	return calculator.Slugify(m.Name)
}
