package models

import "fmt"

// Vendor links one Premier manufacturer to one SEMA brand and one storefront
// vendor. Each side is a one-to-one link.
type Vendor struct {
	ID                  string               `json:"id"`
	Slug                string               `json:"slug"`
	PremierManufacturer *PremierManufacturer `json:"premier_manufacturer,omitempty"`
	SemaBrand           *SemaBrand           `json:"sema_brand,omitempty"`
	ShopifyVendor       *ShopifyVendor       `json:"shopify_vendor,omitempty"`
	IsRelevant          bool                 `json:"is_relevant"`
	RelevancyException  string               `json:"relevancy_exception,omitempty"`
	Notes               string               `json:"notes,omitempty"`
}

func (v *Vendor) String() string {
	return v.Slug
}

// Item links a Premier product to an optional SEMA product and an optional
// storefront product.
type Item struct {
	ID                 string          `json:"id"`
	PremierProduct     *PremierProduct `json:"premier_product,omitempty"`
	SemaProduct        *SemaProduct    `json:"sema_product,omitempty"`
	ShopifyProduct     *ShopifyProduct `json:"shopify_product,omitempty"`
	IsRelevant         bool            `json:"is_relevant"`
	RelevancyException string          `json:"relevancy_exception,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

func (i *Item) String() string {
	if i.PremierProduct != nil {
		return i.PremierProduct.String()
	}
	if i.SemaProduct != nil {
		return i.SemaProduct.String()
	}
	return i.ID
}

// CategoryPath links a root/branch/leaf SEMA category triple to the
// corresponding storefront collections.
type CategoryPath struct {
	ID                 string `json:"id"`
	SemaRootCategory   *SemaCategory `json:"sema_root_category,omitempty"`
	SemaBranchCategory *SemaCategory `json:"sema_branch_category,omitempty"`
	SemaLeafCategory   *SemaCategory `json:"sema_leaf_category,omitempty"`

	ShopifyRootCollection   *ShopifyCollection `json:"shopify_root_collection,omitempty"`
	ShopifyBranchCollection *ShopifyCollection `json:"shopify_branch_collection,omitempty"`
	ShopifyLeafCollection   *ShopifyCollection `json:"shopify_leaf_collection,omitempty"`

	IsRelevant         bool   `json:"is_relevant"`
	RelevancyException string `json:"relevancy_exception,omitempty"`
}

func (p *CategoryPath) String() string {
	return fmt.Sprintf("%s :: %s :: %s",
		p.SemaRootCategory, p.SemaBranchCategory, p.SemaLeafCategory)
}
