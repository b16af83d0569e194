package models

// Shopify product types
const (
	ProductTypeApparel    = "Apparel"
	ProductTypeAutomotive = "Automotive Parts"
)

// Shopify published scopes
const (
	ScopeWeb    = "web"
	ScopeGlobal = "global"
)

// Variant weight units
const (
	WeightUnitLB = "lb"
	WeightUnitKG = "kg"
	WeightUnitG  = "g"
)

// Metafield value types
const (
	MetafieldTypeString  = "string"
	MetafieldTypeInteger = "integer"
	MetafieldTypeJSON    = "json"
)

// Default metafield namespace/keys populated by the calculators
const (
	MetafieldNamespaceAdditional = "additional"
	MetafieldKeyPackaging        = "packaging"
	MetafieldKeyFitments         = "fitments"
	MetafieldKeyCollectionFamily = "collection_family"
)

// DefaultVariantTitle is the title Shopify assigns to the single variant of
// a product without options.
const DefaultVariantTitle = "Default Title"

// ShopifyVendor represents a storefront vendor
type ShopifyVendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (v *ShopifyVendor) String() string {
	return v.Name
}

// ShopifyImage represents a storefront product image
type ShopifyImage struct {
	ImageID  int64  `json:"image_id,omitempty"` // populated by Shopify
	Src      string `json:"src"`
	Position int    `json:"position,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// ShopifyMetafield represents a storefront metafield
type ShopifyMetafield struct {
	MetafieldID   int64  `json:"metafield_id,omitempty"` // populated by Shopify
	OwnerResource string `json:"owner_resource"`
	Namespace     string `json:"namespace"`
	ValueType     string `json:"value_type"`
	Key           string `json:"key"`
	Value         string `json:"value"`
}

// ShopifyVariant represents a storefront product variant
type ShopifyVariant struct {
	VariantID      int64   `json:"variant_id,omitempty"` // populated by Shopify
	Title          string  `json:"title"`
	SKU            string  `json:"sku,omitempty"`
	Barcode        string  `json:"barcode,omitempty"`
	Price          float64 `json:"price,omitempty"`
	CompareAtPrice float64 `json:"compare_at_price,omitempty"`
	Cost           float64 `json:"cost,omitempty"`
	Weight         float64 `json:"weight,omitempty"`
	WeightUnit     string  `json:"weight_unit,omitempty"`
	Grams          int     `json:"grams,omitempty"`
	IsTaxable      bool    `json:"is_taxable"`
}

// ShopifyProduct represents a storefront product
type ShopifyProduct struct {
	ID          string         `json:"id"`
	ProductID   int64          `json:"product_id,omitempty"` // populated by Shopify
	Title       string         `json:"title,omitempty"`
	BodyHTML    string         `json:"body_html,omitempty"`
	Vendor      *ShopifyVendor `json:"vendor,omitempty"`
	ProductType string         `json:"product_type,omitempty"`
	IsPublished bool           `json:"is_published"`
	Scope       string         `json:"published_scope,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	SEOTitle    string         `json:"seo_title,omitempty"`
	SEODesc     string         `json:"seo_description,omitempty"`

	Variants   []*ShopifyVariant  `json:"variants,omitempty"`
	Images     []ShopifyImage     `json:"images,omitempty"`
	Metafields []ShopifyMetafield `json:"metafields,omitempty"`

	IsRelevant bool `json:"is_relevant"`
}

func (p *ShopifyProduct) String() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

// FirstVariant returns the product's first variant, or nil.
func (p *ShopifyProduct) FirstVariant() *ShopifyVariant {
	if len(p.Variants) == 0 {
		return nil
	}
	return p.Variants[0]
}

// ShopifyCollectionRule is a smart-collection membership rule
type ShopifyCollectionRule struct {
	Column    string `json:"column"`
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}

// Collection sort orders
const (
	SortAlphaAsc    = "alpha-asc"
	SortAlphaDesc   = "alpha-dec"
	SortCreatedAsc  = "created"
	SortCreatedDesc = "created-desc"
	SortPriceAsc    = "price-asc"
	SortPriceDesc   = "price-desc"
	SortBestSelling = "best-selling"
)

// ShopifyCollection represents a storefront collection
type ShopifyCollection struct {
	ID           string                  `json:"id"`
	CollectionID int64                   `json:"collection_id,omitempty"` // populated by Shopify
	Title        string                  `json:"title"`
	BodyHTML     string                  `json:"body_html,omitempty"`
	ImageSrc     string                  `json:"image_src,omitempty"`
	ImageAlt     string                  `json:"image_alt,omitempty"`
	IsPublished  bool                    `json:"is_published"`
	Scope        string                  `json:"published_scope,omitempty"`
	Tags         []string                `json:"tags,omitempty"`
	Rules        []ShopifyCollectionRule `json:"rules,omitempty"`
	Disjunctive  bool                    `json:"disjunctive"`
	SortOrder    string                  `json:"sort_order,omitempty"`
	Parent       *ShopifyCollection      `json:"-"`
	Metafields   []ShopifyMetafield      `json:"metafields,omitempty"`

	IsRelevant bool `json:"is_relevant"`
}

func (c *ShopifyCollection) String() string {
	return c.Title
}

// Family walks up the parent chain and returns the collection titles from
// root to this collection.
func (c *ShopifyCollection) Family() []string {
	var titles []string
	for col := c; col != nil; col = col.Parent {
		titles = append([]string{col.Title}, titles...)
	}
	return titles
}
