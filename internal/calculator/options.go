// Package calculator derives storefront field values from an item's linked
// Premier and SEMA records. Which upstream field feeds each storefront
// field is chosen by an enumerated source option; unreachable paths resolve
// to empty values, never errors.
package calculator

// Option names an upstream source for one derived storefront field.
type Option string

// Title and body HTML sources
const (
	OptionSemaDescriptionSho Option = "sema_description_sho" // short description
	OptionSemaDescriptionExt Option = "sema_description_ext" // extended description
	OptionSemaDescriptionDef Option = "sema_description_def"
	OptionSemaDescriptionMkt Option = "sema_description_mkt"
	OptionPremierDescription Option = "premier_description"
	OptionCustomTitle        Option = "custom_title"
	OptionCustomBodyHTML     Option = "custom_body_html"
)

// Variant field sources
const (
	OptionPremierWeight      Option = "premier_weight"
	OptionPremierCostCAD     Option = "premier_cost_cad"
	OptionPremierCostUSD     Option = "premier_cost_usd"
	OptionPremierPartNumber  Option = "premier_premier_part_number"
	OptionPremierUPC         Option = "premier_upc"
	OptionCustomVariantValue Option = "custom_variant_value"
)

// Tag sources
const (
	OptionSemaBrandTags    Option = "sema_brand_tag_names"
	OptionSemaCategoryTags Option = "sema_category_tag_names"
	OptionCustomTags       Option = "custom_tag_names"
)

// Image sources
const (
	OptionAllImages     Option = "images_all"
	OptionSemaImages    Option = "images_sema"
	OptionPremierImages Option = "images_premier"
	OptionCustomImages  Option = "images_custom"
)

// Metafield value sources
const (
	OptionSemaHTML                Option = "sema_html"
	OptionSemaVehicles            Option = "sema_vehicles"
	OptionShopifyCollectionFamily Option = "shopify_collection_family"
	OptionCustomMetafieldValue    Option = "custom_metafield_value"
)

// Config selects the upstream source for each derived product field, with
// custom overrides used when the matching custom option is selected.
type Config struct {
	TitleOption            Option `yaml:"title_option"`
	BodyHTMLOption         Option `yaml:"body_html_option"`
	VendorTagsOption       Option `yaml:"tags_vendor_option"`
	CategoryTagsOption     Option `yaml:"tags_categories_option"`
	ImagesOption           Option `yaml:"images_option"`
	PackagingOption        Option `yaml:"metafields_packaging_option"`
	FitmentsOption         Option `yaml:"metafields_fitments_option"`
	VariantWeightOption    Option `yaml:"variant_weight_option"`
	VariantCostOption      Option `yaml:"variant_cost_option"`
	VariantPriceBaseOption Option `yaml:"variant_price_base_option"`
	VariantSKUOption       Option `yaml:"variant_sku_option"`
	VariantBarcodeOption   Option `yaml:"variant_barcode_option"`

	// Price = price base * markup, rounded to 2 decimals
	PriceMarkup float64 `yaml:"price_markup"`

	CustomTitle     string   `yaml:"custom_title,omitempty"`
	CustomBodyHTML  string   `yaml:"custom_body_html,omitempty"`
	CustomTags      []string `yaml:"custom_tags,omitempty"`
	CustomImages    []string `yaml:"custom_images,omitempty"`
	CustomPackaging string   `yaml:"custom_packaging,omitempty"`
	CustomFitments  string   `yaml:"custom_fitments,omitempty"`
	CustomWeight    float64  `yaml:"custom_weight,omitempty"`
	CustomCost      float64  `yaml:"custom_cost,omitempty"`
	CustomPrice     float64  `yaml:"custom_price_base,omitempty"`
	CustomSKU       string   `yaml:"custom_sku,omitempty"`
	CustomBarcode   string   `yaml:"custom_barcode,omitempty"`
}

// DefaultConfig mirrors the stock source selection: short SEMA description
// for titles, extended for body HTML, Premier for variant identity and
// pricing, SEMA for tags, images, and metafields.
func DefaultConfig() Config {
	return Config{
		TitleOption:            OptionSemaDescriptionSho,
		BodyHTMLOption:         OptionSemaDescriptionExt,
		VendorTagsOption:       OptionSemaBrandTags,
		CategoryTagsOption:     OptionSemaCategoryTags,
		ImagesOption:           OptionSemaImages,
		PackagingOption:        OptionSemaHTML,
		FitmentsOption:         OptionSemaVehicles,
		VariantWeightOption:    OptionPremierWeight,
		VariantCostOption:      OptionPremierCostCAD,
		VariantPriceBaseOption: OptionPremierCostCAD,
		VariantSKUOption:       OptionPremierPartNumber,
		VariantBarcodeOption:   OptionPremierUPC,
		PriceMarkup:            1.2,
	}
}

// CollectionConfig selects sources for derived collection fields.
type CollectionConfig struct {
	TitleOption  Option `yaml:"title_option"`
	TagsOption   Option `yaml:"tags_option"`
	FamilyOption Option `yaml:"metafield_collection_family_option"`

	CustomTitle  string   `yaml:"custom_title,omitempty"`
	CustomTags   []string `yaml:"custom_tags,omitempty"`
	CustomFamily string   `yaml:"custom_family,omitempty"`
}

// DefaultCollectionConfig selects SEMA category names for titles and tags
// and the storefront collection tree for the family metafield.
func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		TitleOption:  OptionSemaCategoryTags,
		TagsOption:   OptionSemaCategoryTags,
		FamilyOption: OptionShopifyCollectionFamily,
	}
}
