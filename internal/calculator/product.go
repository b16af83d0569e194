package calculator

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// ProductCalculator resolves storefront field values for one item at read
// time. Missing upstream links resolve to zero values.
type ProductCalculator struct {
	item   *models.Item
	config Config
}

// NewProduct creates a calculator for item with the given config.
func NewProduct(item *models.Item, config Config) *ProductCalculator {
	if config.PriceMarkup <= 0 {
		config.PriceMarkup = DefaultConfig().PriceMarkup
	}
	return &ProductCalculator{item: item, config: config}
}

func (c *ProductCalculator) semaProduct() *models.SemaProduct {
	if c.item == nil {
		return nil
	}
	return c.item.SemaProduct
}

func (c *ProductCalculator) premierProduct() *models.PremierProduct {
	if c.item == nil {
		return nil
	}
	return c.item.PremierProduct
}

func (c *ProductCalculator) semaDescription(segment string) string {
	if sema := c.semaProduct(); sema != nil {
		return sema.DescriptionBySegment(segment)
	}
	return ""
}

func (c *ProductCalculator) descriptionFor(opt Option, custom string) string {
	switch opt {
	case OptionSemaDescriptionSho:
		return c.semaDescription(models.PiesSegmentShortDescription)
	case OptionSemaDescriptionExt:
		return c.semaDescription(models.PiesSegmentExtendedDescription)
	case OptionSemaDescriptionDef:
		return c.semaDescription(models.PiesSegmentDefault)
	case OptionSemaDescriptionMkt:
		return c.semaDescription(models.PiesSegmentMarketing)
	case OptionPremierDescription:
		if premier := c.premierProduct(); premier != nil {
			return premier.Description
		}
		return ""
	case OptionCustomTitle, OptionCustomBodyHTML:
		return custom
	default:
		return ""
	}
}

// Title resolves the product title.
func (c *ProductCalculator) Title() string {
	return c.descriptionFor(c.config.TitleOption, c.config.CustomTitle)
}

// BodyHTML resolves the product body HTML.
func (c *ProductCalculator) BodyHTML() string {
	return c.descriptionFor(c.config.BodyHTMLOption, c.config.CustomBodyHTML)
}

// VendorTags resolves vendor tags from the linked brand.
func (c *ProductCalculator) VendorTags() []string {
	switch c.config.VendorTagsOption {
	case OptionSemaBrandTags:
		sema := c.semaProduct()
		if sema == nil || sema.Dataset == nil || sema.Dataset.Brand == nil {
			return nil
		}
		return []string{"vendor:" + Slugify(sema.Dataset.Brand.Name)}
	case OptionCustomTags:
		return c.config.CustomTags
	default:
		return nil
	}
}

// CategoryTags resolves category tags from the product's relevant
// categories.
func (c *ProductCalculator) CategoryTags() []string {
	switch c.config.CategoryTagsOption {
	case OptionSemaCategoryTags:
		sema := c.semaProduct()
		if sema == nil {
			return nil
		}
		var tags []string
		for _, category := range sema.Categories {
			if category.IsRelevant {
				tags = append(tags, "category:"+Slugify(category.Name))
			}
		}
		return tags
	case OptionCustomTags:
		return c.config.CustomTags
	default:
		return nil
	}
}

// BaseVehicleTags resolves deduplicated base-vehicle tags from the
// product's relevant fitments (inheriting the dataset's when the product
// has none).
func (c *ProductCalculator) BaseVehicleTags() []string {
	sema := c.semaProduct()
	if sema == nil {
		return nil
	}
	seen := make(map[int]bool)
	var tags []string
	for _, vehicle := range sema.EffectiveVehicles() {
		if !vehicle.IsRelevant || seen[vehicle.BaseVehicleID] {
			continue
		}
		seen[vehicle.BaseVehicleID] = true
		tags = append(tags, fmt.Sprintf("base-vehicle:%d", vehicle.BaseVehicleID))
	}
	return tags
}

// Tags concatenates vendor, category, and base-vehicle tags.
func (c *ProductCalculator) Tags() []string {
	var tags []string
	tags = append(tags, c.VendorTags()...)
	tags = append(tags, c.CategoryTags()...)
	tags = append(tags, c.BaseVehicleTags()...)
	return tags
}

func (c *ProductCalculator) semaImages() []string {
	sema := c.semaProduct()
	if sema == nil {
		return nil
	}
	var urls []string
	for _, asset := range sema.DigitalAssetsPiesAttributes {
		// PDFs and brand logos are not product shots
		if strings.HasSuffix(asset.Value, ".pdf") || strings.Contains(asset.Value, "logo") {
			continue
		}
		urls = append(urls, asset.Value)
	}
	return urls
}

func (c *ProductCalculator) premierImages() []string {
	premier := c.premierProduct()
	if premier == nil || premier.PrimaryImage == "" {
		return nil
	}
	return []string{premier.PrimaryImage}
}

// Images resolves the product image URL list.
func (c *ProductCalculator) Images() []string {
	switch c.config.ImagesOption {
	case OptionSemaImages:
		return c.semaImages()
	case OptionPremierImages:
		return c.premierImages()
	case OptionAllImages:
		return append(c.semaImages(), c.premierImages()...)
	case OptionCustomImages:
		return c.config.CustomImages
	default:
		return nil
	}
}

// PackagingMetafieldValue resolves the packaging metafield value.
func (c *ProductCalculator) PackagingMetafieldValue() string {
	switch c.config.PackagingOption {
	case OptionSemaHTML:
		if sema := c.semaProduct(); sema != nil {
			return sema.HTML
		}
		return ""
	case OptionCustomMetafieldValue:
		return c.config.CustomPackaging
	default:
		return ""
	}
}

// FitmentsMetafieldValue resolves the fitments metafield value: a sorted,
// deduplicated list of base vehicle IDs.
func (c *ProductCalculator) FitmentsMetafieldValue() string {
	switch c.config.FitmentsOption {
	case OptionSemaVehicles:
		sema := c.semaProduct()
		if sema == nil {
			return ""
		}
		seen := make(map[int]bool)
		var ids []int
		for _, vehicle := range sema.EffectiveVehicles() {
			if vehicle.IsRelevant && !seen[vehicle.BaseVehicleID] {
				seen[vehicle.BaseVehicleID] = true
				ids = append(ids, vehicle.BaseVehicleID)
			}
		}
		if len(ids) == 0 {
			return ""
		}
		sort.Ints(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprint(id)
		}
		return strings.Join(parts, ",")
	case OptionCustomMetafieldValue:
		return c.config.CustomFitments
	default:
		return ""
	}
}

// Metafields resolves the product metafields, skipping empty values.
func (c *ProductCalculator) Metafields() []models.ShopifyMetafield {
	var fields []models.ShopifyMetafield
	if value := c.PackagingMetafieldValue(); value != "" {
		fields = append(fields, models.ShopifyMetafield{
			OwnerResource: "product",
			Namespace:     models.MetafieldNamespaceAdditional,
			ValueType:     models.MetafieldTypeString,
			Key:           models.MetafieldKeyPackaging,
			Value:         value,
		})
	}
	if value := c.FitmentsMetafieldValue(); value != "" {
		fields = append(fields, models.ShopifyMetafield{
			OwnerResource: "product",
			Namespace:     models.MetafieldNamespaceAdditional,
			ValueType:     models.MetafieldTypeString,
			Key:           models.MetafieldKeyFitments,
			Value:         value,
		})
	}
	return fields
}

// Weight resolves the variant weight in pounds, rounded to 2 decimals.
func (c *ProductCalculator) Weight() float64 {
	switch c.config.VariantWeightOption {
	case OptionPremierWeight:
		if premier := c.premierProduct(); premier != nil {
			return round2(premier.Weight)
		}
		return 0
	case OptionCustomVariantValue:
		return c.config.CustomWeight
	default:
		return 0
	}
}

// WeightUnit resolves the variant weight unit; pounds whenever a weight is
// available.
func (c *ProductCalculator) WeightUnit() string {
	if c.Weight() > 0 {
		return models.WeightUnitLB
	}
	return ""
}

func (c *ProductCalculator) premierCost(opt Option, custom float64) float64 {
	switch opt {
	case OptionPremierCostCAD:
		if premier := c.premierProduct(); premier != nil {
			return premier.CostCAD
		}
		return 0
	case OptionPremierCostUSD:
		if premier := c.premierProduct(); premier != nil {
			return premier.CostUSD
		}
		return 0
	case OptionCustomVariantValue:
		return custom
	default:
		return 0
	}
}

// Cost resolves the variant cost.
func (c *ProductCalculator) Cost() float64 {
	return c.premierCost(c.config.VariantCostOption, c.config.CustomCost)
}

// PriceBase resolves the base amount the sale price is derived from.
func (c *ProductCalculator) PriceBase() float64 {
	return c.premierCost(c.config.VariantPriceBaseOption, c.config.CustomPrice)
}

// Price resolves the variant sale price: base times markup, rounded to 2
// decimals. Zero when no base is reachable.
func (c *ProductCalculator) Price() float64 {
	base := c.PriceBase()
	if base <= 0 {
		return 0
	}
	return round2(base * c.config.PriceMarkup)
}

// SKU resolves the variant SKU.
func (c *ProductCalculator) SKU() string {
	switch c.config.VariantSKUOption {
	case OptionPremierPartNumber:
		if premier := c.premierProduct(); premier != nil {
			return premier.PremierPartNumber
		}
		return ""
	case OptionCustomVariantValue:
		return c.config.CustomSKU
	default:
		return ""
	}
}

// Barcode resolves the variant barcode.
func (c *ProductCalculator) Barcode() string {
	switch c.config.VariantBarcodeOption {
	case OptionPremierUPC:
		if premier := c.premierProduct(); premier != nil {
			return strings.TrimSpace(premier.UPC)
		}
		return ""
	case OptionCustomVariantValue:
		return c.config.CustomBarcode
	default:
		return ""
	}
}

// Apply writes every resolved value onto product and returns the names of
// the fields that changed.
func (c *ProductCalculator) Apply(product *models.ShopifyProduct) []string {
	var changed []string

	setString := func(name string, target *string, value string) {
		if *target != value {
			*target = value
			changed = append(changed, name)
		}
	}

	setString("title", &product.Title, c.Title())
	setString("body_html", &product.BodyHTML, c.BodyHTML())

	if tags := c.Tags(); !equalStrings(product.Tags, tags) {
		product.Tags = tags
		changed = append(changed, "tags")
	}

	if images := c.Images(); !equalImages(product.Images, images) {
		product.Images = make([]models.ShopifyImage, len(images))
		for i, src := range images {
			product.Images[i] = models.ShopifyImage{Src: src, Position: i + 1}
		}
		changed = append(changed, "images")
	}

	if fields := c.Metafields(); !equalMetafields(product.Metafields, fields) {
		product.Metafields = fields
		changed = append(changed, "metafields")
	}

	if len(product.Variants) == 0 {
		product.Variants = []*models.ShopifyVariant{{
			Title:     models.DefaultVariantTitle,
			IsTaxable: true,
		}}
		changed = append(changed, "variants")
	}
	variant := product.Variants[0]

	setString("sku", &variant.SKU, c.SKU())
	setString("barcode", &variant.Barcode, c.Barcode())

	setFloat := func(name string, target *float64, value float64) {
		if *target != value {
			*target = value
			changed = append(changed, name)
		}
	}
	setFloat("weight", &variant.Weight, c.Weight())
	setString("weight_unit", &variant.WeightUnit, c.WeightUnit())
	setFloat("cost", &variant.Cost, c.Cost())
	setFloat("price", &variant.Price, c.Price())

	return changed
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalImages(a []models.ShopifyImage, srcs []string) bool {
	if len(a) != len(srcs) {
		return false
	}
	for i := range a {
		if a[i].Src != srcs[i] {
			return false
		}
	}
	return true
}

func equalMetafields(a, b []models.ShopifyMetafield) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Namespace != b[i].Namespace || a[i].Key != b[i].Key || a[i].Value != b[i].Value {
			return false
		}
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses runs of non-alphanumerics to single
// hyphens.
func Slugify(s string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}
