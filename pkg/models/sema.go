package models

// PIES description segments used by the product calculator
const (
	PiesSegmentShortDescription    = "C10_SHO_EN"
	PiesSegmentExtendedDescription = "C10_EXT_EN"
	PiesSegmentDefault             = "C10_DEF_EN"
	PiesSegmentMarketing           = "C10_MKT_EN"
)

// SemaPiesAttribute is a single PIES attribute (description or digital asset)
// attached to a SEMA product.
type SemaPiesAttribute struct {
	Segment string `json:"segment"`
	Value   string `json:"value"`
}

// SemaBrand represents a brand record from the SEMA catalog
type SemaBrand struct {
	BrandID         string `json:"brand_id"`
	Name            string `json:"name"`
	PrimaryImageURL string `json:"primary_image_url,omitempty"`
	IsAuthorized    bool   `json:"is_authorized"` // brand has given access to dataset
	IsRelevant      bool   `json:"is_relevant"`

	Datasets []*SemaDataset `json:"datasets,omitempty"`
}

func (b *SemaBrand) String() string {
	return b.Name
}

// RelevantDatasetCount counts the brand's datasets currently marked relevant.
func (b *SemaBrand) RelevantDatasetCount() int {
	count := 0
	for _, d := range b.Datasets {
		if d.IsRelevant {
			count++
		}
	}
	return count
}

// SemaDataset represents a brand dataset record from the SEMA catalog
type SemaDataset struct {
	DatasetID    int        `json:"dataset_id"`
	Name         string     `json:"name"`
	Brand        *SemaBrand `json:"-"`
	IsAuthorized bool       `json:"is_authorized"`
	IsRelevant   bool       `json:"is_relevant"`

	// Dataset-level vehicle fitments, inherited by products without their own
	Vehicles []SemaVehicle `json:"vehicles,omitempty"`
}

func (d *SemaDataset) String() string {
	return d.Name
}

// RelevantVehicleCount counts the dataset's vehicles currently marked relevant.
func (d *SemaDataset) RelevantVehicleCount() int {
	count := 0
	for _, v := range d.Vehicles {
		if v.IsRelevant {
			count++
		}
	}
	return count
}

// SemaVehicle is a vehicle fitment record
type SemaVehicle struct {
	VehicleID     int  `json:"vehicle_id"`
	BaseVehicleID int  `json:"base_vehicle_id"`
	IsRelevant    bool `json:"is_relevant"`
}

// Category tree levels
const (
	CategoryLevelRoot   = 1
	CategoryLevelBranch = 2
	CategoryLevelLeaf   = 3
)

// SemaCategory represents a category record from the SEMA catalog.
// Categories form a three-level tree: root, branch, leaf.
type SemaCategory struct {
	CategoryID int    `json:"category_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	IsRelevant bool   `json:"is_relevant"`

	Parents  []*SemaCategory `json:"-"`
	Children []*SemaCategory `json:"-"`
}

func (c *SemaCategory) String() string {
	return c.Name
}

// SemaProduct represents a product record from the SEMA catalog
type SemaProduct struct {
	ProductID  int          `json:"product_id"`
	PartNumber string       `json:"part_number"`
	Dataset    *SemaDataset `json:"-"`
	HTML       string       `json:"html,omitempty"`
	IsRelevant bool         `json:"is_relevant"`

	DescriptionPiesAttributes   []SemaPiesAttribute `json:"description_pies_attributes,omitempty"`
	DigitalAssetsPiesAttributes []SemaPiesAttribute `json:"digital_assets_pies_attributes,omitempty"`

	Categories []*SemaCategory `json:"-"`
	Vehicles   []SemaVehicle   `json:"vehicles,omitempty"`
}

func (p *SemaProduct) String() string {
	return p.PartNumber
}

// DescriptionBySegment returns the value of the first description PIES
// attribute with the given segment, or "" when absent.
func (p *SemaProduct) DescriptionBySegment(segment string) string {
	for _, attr := range p.DescriptionPiesAttributes {
		if attr.Segment == segment {
			return attr.Value
		}
	}
	return ""
}

// RelevantCategoryCount counts linked categories currently marked relevant.
func (p *SemaProduct) RelevantCategoryCount() int {
	count := 0
	for _, c := range p.Categories {
		if c.IsRelevant {
			count++
		}
	}
	return count
}

// RelevantVehicleCount counts the product's own relevant vehicle fitments.
func (p *SemaProduct) RelevantVehicleCount() int {
	count := 0
	for _, v := range p.Vehicles {
		if v.IsRelevant {
			count++
		}
	}
	return count
}

// EffectiveVehicles returns the product's own fitments when present,
// otherwise the dataset's. Products without explicit fitments inherit
// the dataset-wide list.
func (p *SemaProduct) EffectiveVehicles() []SemaVehicle {
	if len(p.Vehicles) > 0 {
		return p.Vehicles
	}
	if p.Dataset != nil {
		return p.Dataset.Vehicles
	}
	return nil
}
