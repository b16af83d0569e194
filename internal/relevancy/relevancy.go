// Package relevancy decides whether locally tracked entities are complete
// and consistent enough to publish to the storefront. Every check is a pure
// function of the entity's current links: recomputing is idempotent and
// never depends on history.
package relevancy

import (
	"fmt"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// Result is the outcome of evaluating one entity.
type Result struct {
	MayBeRelevant bool
	Warnings      []string
	Errors        []string
}

// HasErrors reports whether any error was recorded.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// CheckPremierManufacturer evaluates a Premier manufacturer. A relevant
// manufacturer must carry a primary image.
func CheckPremierManufacturer(m *models.PremierManufacturer) Result {
	var res Result
	if m.IsRelevant && m.PrimaryImage == "" {
		res.Errors = append(res.Errors, "no primary image")
	}
	res.MayBeRelevant = len(res.Errors) == 0
	return res
}

// CheckPremierProduct evaluates a Premier product. It may be relevant when
// its manufacturer is relevant and the AB warehouse has stock. When marked
// relevant it must also carry a CAD cost and a primary image.
func CheckPremierProduct(p *models.PremierProduct) Result {
	var res Result
	res.MayBeRelevant = p.Manufacturer != nil &&
		p.Manufacturer.IsRelevant &&
		p.InventoryAB > 0

	if p.IsRelevant {
		if p.Manufacturer == nil || !p.Manufacturer.IsRelevant {
			res.Errors = append(res.Errors, "manufacturer not relevant")
		}
		if p.InventoryAB <= 0 {
			res.Errors = append(res.Errors, "no AB inventory")
		}
		if p.CostCAD <= 0 {
			res.Errors = append(res.Errors, "no CAD cost")
		}
		if p.PrimaryImage == "" {
			res.Errors = append(res.Errors, "no primary image")
		}
	}
	return res
}

// CheckSemaBrand evaluates a SEMA brand. It may be relevant when it has at
// least one relevant dataset. A relevant but unauthorized brand gets a
// warning rather than an error.
func CheckSemaBrand(b *models.SemaBrand) Result {
	var res Result
	res.MayBeRelevant = b.RelevantDatasetCount() > 0

	if b.IsRelevant {
		if !b.IsAuthorized {
			res.Warnings = append(res.Warnings, "not authorized")
		}
		if b.RelevantDatasetCount() == 0 {
			res.Errors = append(res.Errors, "no relevant datasets")
		}
		if b.PrimaryImageURL == "" {
			res.Errors = append(res.Errors, "missing image")
		}
	}
	return res
}

// CheckSemaDataset evaluates a SEMA dataset against its brand.
func CheckSemaDataset(d *models.SemaDataset) Result {
	var res Result
	res.MayBeRelevant = d.Brand != nil && d.Brand.IsRelevant

	if d.IsRelevant {
		if !d.IsAuthorized {
			res.Warnings = append(res.Warnings, "not authorized")
		}
		if d.Brand == nil || !d.Brand.IsRelevant {
			res.Errors = append(res.Errors, "brand not relevant")
		}
	}
	return res
}

// CheckSemaCategory evaluates a SEMA category. Categories are always
// eligible; a relevant category with a level outside the three-level tree
// is an error.
func CheckSemaCategory(c *models.SemaCategory) Result {
	res := Result{MayBeRelevant: true}
	if c.IsRelevant {
		if c.Level < models.CategoryLevelRoot || c.Level > models.CategoryLevelLeaf {
			res.Errors = append(res.Errors, "invalid level")
		}
	}
	return res
}

// CheckSemaProduct evaluates a SEMA product. It may be relevant when its
// dataset is relevant and it has relevant vehicle fitments, inheriting the
// dataset's fitments when it has none of its own.
func CheckSemaProduct(p *models.SemaProduct) Result {
	var res Result

	relevantVehicles := p.RelevantVehicleCount()
	if len(p.Vehicles) == 0 && p.Dataset != nil {
		relevantVehicles = p.Dataset.RelevantVehicleCount()
	}
	res.MayBeRelevant = p.Dataset != nil && p.Dataset.IsRelevant && relevantVehicles > 0

	if p.IsRelevant {
		if p.Dataset == nil || !p.Dataset.IsRelevant {
			res.Errors = append(res.Errors, "dataset not relevant")
		}
		if relevantVehicles == 0 {
			res.Errors = append(res.Errors, "no relevant vehicles")
		}
		if p.HTML == "" {
			res.Errors = append(res.Errors, "no html")
		}
		if count := p.RelevantCategoryCount(); count != 3 {
			res.Errors = append(res.Errors, fmt.Sprintf("%d categories", count))
		}
		if len(p.DescriptionPiesAttributes) == 0 {
			res.Errors = append(res.Errors, "missing description PIES")
		}
		if len(p.DigitalAssetsPiesAttributes) == 0 {
			res.Errors = append(res.Errors, "missing digital assets PIES")
		}
	}
	return res
}

// CheckShopifyProduct evaluates a storefront product for publishability.
// All fields a published product needs must be populated.
func CheckShopifyProduct(p *models.ShopifyProduct) Result {
	var res Result
	if p.Title == "" {
		res.Errors = append(res.Errors, "missing title")
	}
	if p.BodyHTML == "" {
		res.Errors = append(res.Errors, "missing body HTML")
	}
	if p.Vendor == nil {
		res.Errors = append(res.Errors, "missing vendor")
	}
	if len(p.Tags) < 5 {
		res.Errors = append(res.Errors, "missing tags")
	}
	if len(p.Images) < 1 {
		res.Errors = append(res.Errors, "missing images")
	}

	variant := p.FirstVariant()
	if variant == nil {
		res.Errors = append(res.Errors, "missing variants")
	} else {
		if variant.Title != models.DefaultVariantTitle {
			res.Errors = append(res.Errors, "first variant not default title")
		}
		if variant.Weight <= 0 || variant.WeightUnit == "" {
			res.Errors = append(res.Errors, "first variant missing weight")
		}
		if variant.Price <= 0 {
			res.Errors = append(res.Errors, "first variant missing price")
		}
		if variant.Cost <= 0 {
			res.Errors = append(res.Errors, "first variant missing cost")
		}
		if variant.SKU == "" {
			res.Errors = append(res.Errors, "first variant missing SKU")
		}
		if variant.Barcode == "" {
			res.Errors = append(res.Errors, "first variant missing barcode")
		}
	}

	res.MayBeRelevant = len(res.Errors) == 0
	return res
}

// CheckShopifyCollection evaluates a storefront collection.
func CheckShopifyCollection(c *models.ShopifyCollection) Result {
	var res Result
	if c.Title == "" {
		res.Errors = append(res.Errors, "missing title")
	}
	if len(c.Rules) == 0 {
		res.Errors = append(res.Errors, "missing rules")
	}
	res.MayBeRelevant = len(res.Errors) == 0
	return res
}

// CheckVendor evaluates a vendor link. All three sides must be present and
// the Premier and SEMA sides must themselves be relevant; nested errors are
// surfaced with a source prefix. An outstanding relevancy exception blocks
// eligibility.
func CheckVendor(v *models.Vendor) Result {
	var res Result

	if v.PremierManufacturer == nil {
		res.Errors = append(res.Errors, "missing Premier manufacturer")
	} else {
		if nested := CheckPremierManufacturer(v.PremierManufacturer); nested.HasErrors() {
			for _, e := range nested.Errors {
				res.Errors = append(res.Errors, "PREMIER: "+e)
			}
		}
	}

	if v.SemaBrand == nil {
		res.Errors = append(res.Errors, "missing SEMA brand")
	} else {
		nested := CheckSemaBrand(v.SemaBrand)
		for _, e := range nested.Errors {
			res.Errors = append(res.Errors, "SEMA: "+e)
		}
		for _, w := range nested.Warnings {
			res.Warnings = append(res.Warnings, "SEMA: "+w)
		}
	}

	if v.ShopifyVendor == nil {
		res.Errors = append(res.Errors, "missing Shopify vendor")
	}

	if v.RelevancyException != "" {
		res.Warnings = append(res.Warnings, "exception: "+v.RelevancyException)
	}

	res.MayBeRelevant = v.PremierManufacturer != nil &&
		v.PremierManufacturer.IsRelevant &&
		v.SemaBrand != nil && v.SemaBrand.IsRelevant &&
		v.ShopifyVendor != nil &&
		v.RelevancyException == "" &&
		len(res.Errors) == 0
	return res
}

// CheckItem evaluates an item link. An item may be relevant when its
// Premier product is eligible, a SEMA product is linked, and no relevancy
// exception is outstanding. The error list reads differently depending on
// the item's current flag: a relevant item reports what it is missing, an
// irrelevant one reports which linked sides would qualify it.
func CheckItem(i *models.Item) Result {
	var res Result

	res.MayBeRelevant = i.PremierProduct != nil &&
		CheckPremierProduct(i.PremierProduct).MayBeRelevant &&
		i.SemaProduct != nil &&
		i.RelevancyException == ""

	if i.RelevancyException != "" {
		res.Warnings = append(res.Warnings, "exception: "+i.RelevancyException)
	}

	if i.IsRelevant {
		if i.PremierProduct == nil {
			res.Errors = append(res.Errors, "missing Premier product")
		} else {
			if !i.PremierProduct.IsRelevant {
				res.Errors = append(res.Errors, "Premier product not relevant")
			}
			for _, e := range CheckPremierProduct(i.PremierProduct).Errors {
				res.Errors = append(res.Errors, "PREMIER: "+e)
			}
		}
		if i.SemaProduct == nil {
			res.Errors = append(res.Errors, "missing SEMA product")
		} else {
			if !i.SemaProduct.IsRelevant {
				res.Errors = append(res.Errors, "SEMA product not relevant")
			}
			for _, e := range CheckSemaProduct(i.SemaProduct).Errors {
				res.Errors = append(res.Errors, "SEMA: "+e)
			}
		}
	} else {
		if i.PremierProduct == nil {
			res.Warnings = append(res.Warnings, "missing Premier product")
		} else if i.PremierProduct.IsRelevant {
			res.Errors = append(res.Errors, "Premier product relevant")
		}
		if i.SemaProduct == nil {
			res.Warnings = append(res.Warnings, "missing SEMA product")
		} else if i.SemaProduct.IsRelevant {
			res.Errors = append(res.Errors, "SEMA product relevant")
		}
	}
	return res
}

// CheckCategoryPath evaluates a category path link. All three SEMA
// categories must be relevant.
func CheckCategoryPath(p *models.CategoryPath) Result {
	var res Result

	res.MayBeRelevant = p.SemaRootCategory != nil && p.SemaRootCategory.IsRelevant &&
		p.SemaBranchCategory != nil && p.SemaBranchCategory.IsRelevant &&
		p.SemaLeafCategory != nil && p.SemaLeafCategory.IsRelevant &&
		p.RelevancyException == ""

	if p.RelevancyException != "" {
		res.Warnings = append(res.Warnings, "exception: "+p.RelevancyException)
	}

	if p.IsRelevant {
		if p.SemaRootCategory == nil || !p.SemaRootCategory.IsRelevant {
			res.Errors = append(res.Errors, "root category not relevant")
		}
		if p.SemaBranchCategory == nil || !p.SemaBranchCategory.IsRelevant {
			res.Errors = append(res.Errors, "branch category not relevant")
		}
		if p.SemaLeafCategory == nil || !p.SemaLeafCategory.IsRelevant {
			res.Errors = append(res.Errors, "leaf category not relevant")
		}
	}
	return res
}
