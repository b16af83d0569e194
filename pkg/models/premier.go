package models

// PremierManufacturer represents a manufacturer record from the Premier API
type PremierManufacturer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	PrimaryImage string `json:"primary_image,omitempty"`
	IsRelevant   bool   `json:"is_relevant"`
}

func (m *PremierManufacturer) String() string {
	return m.Name
}

// PremierProduct represents a distributor product record from the Premier API
type PremierProduct struct {
	ID                string  `json:"id"`
	PremierPartNumber string  `json:"premier_part_number"`
	VendorPartNumber  string  `json:"vendor_part_number"`
	Description       string  `json:"description,omitempty"`
	Manufacturer      *PremierManufacturer `json:"manufacturer,omitempty"`
	UPC               string  `json:"upc,omitempty"`
	PartStatus        string  `json:"part_status,omitempty"`
	Weight            float64 `json:"weight,omitempty"` // pounds
	PrimaryImage      string  `json:"primary_image,omitempty"`

	// Pricing, refreshed from the Premier pricing endpoint
	CostCAD   float64 `json:"cost_cad,omitempty"`
	CostUSD   float64 `json:"cost_usd,omitempty"`
	JobberCAD float64 `json:"jobber_cad,omitempty"`
	JobberUSD float64 `json:"jobber_usd,omitempty"`
	MSRPCAD   float64 `json:"msrp_cad,omitempty"`
	MSRPUSD   float64 `json:"msrp_usd,omitempty"`
	MAPCAD    float64 `json:"map_cad,omitempty"`
	MAPUSD    float64 `json:"map_usd,omitempty"`

	// Per-warehouse inventory, refreshed from the Premier inventory endpoint
	InventoryAB int `json:"inventory_ab,omitempty"`
	InventoryPO int `json:"inventory_po,omitempty"`
	InventoryUT int `json:"inventory_ut,omitempty"`
	InventoryKY int `json:"inventory_ky,omitempty"`
	InventoryTX int `json:"inventory_tx,omitempty"`
	InventoryCA int `json:"inventory_ca,omitempty"`
	InventoryWA int `json:"inventory_wa,omitempty"`
	InventoryCO int `json:"inventory_co,omitempty"`

	IsRelevant bool `json:"is_relevant"`
}

func (p *PremierProduct) String() string {
	return p.PremierPartNumber
}

// TotalInventory sums on-hand quantity across all warehouses
func (p *PremierProduct) TotalInventory() int {
	return p.InventoryAB + p.InventoryPO + p.InventoryUT + p.InventoryKY +
		p.InventoryTX + p.InventoryCA + p.InventoryWA + p.InventoryCO
}
