package models

// Relevancy flag accessors. Labels match the names shown in CLI messages.

func (m *PremierManufacturer) EntityLabel() string { return "Premier Manufacturer" }
func (m *PremierManufacturer) Relevant() bool      { return m.IsRelevant }
func (m *PremierManufacturer) SetRelevant(r bool)  { m.IsRelevant = r }

func (p *PremierProduct) EntityLabel() string { return "Premier Product" }
func (p *PremierProduct) Relevant() bool      { return p.IsRelevant }
func (p *PremierProduct) SetRelevant(r bool)  { p.IsRelevant = r }

func (b *SemaBrand) EntityLabel() string { return "SEMA Brand" }
func (b *SemaBrand) Relevant() bool      { return b.IsRelevant }
func (b *SemaBrand) SetRelevant(r bool)  { b.IsRelevant = r }

func (d *SemaDataset) EntityLabel() string { return "SEMA Dataset" }
func (d *SemaDataset) Relevant() bool      { return d.IsRelevant }
func (d *SemaDataset) SetRelevant(r bool)  { d.IsRelevant = r }

func (c *SemaCategory) EntityLabel() string { return "SEMA Category" }
func (c *SemaCategory) Relevant() bool      { return c.IsRelevant }
func (c *SemaCategory) SetRelevant(r bool)  { c.IsRelevant = r }

func (p *SemaProduct) EntityLabel() string { return "SEMA Product" }
func (p *SemaProduct) Relevant() bool      { return p.IsRelevant }
func (p *SemaProduct) SetRelevant(r bool)  { p.IsRelevant = r }

func (p *ShopifyProduct) EntityLabel() string { return "Shopify Product" }
func (p *ShopifyProduct) Relevant() bool      { return p.IsRelevant }
func (p *ShopifyProduct) SetRelevant(r bool)  { p.IsRelevant = r }

func (c *ShopifyCollection) EntityLabel() string { return "Shopify Collection" }
func (c *ShopifyCollection) Relevant() bool      { return c.IsRelevant }
func (c *ShopifyCollection) SetRelevant(r bool)  { c.IsRelevant = r }

func (v *Vendor) EntityLabel() string { return "Vendor" }
func (v *Vendor) Relevant() bool      { return v.IsRelevant }
func (v *Vendor) SetRelevant(r bool)  { v.IsRelevant = r }

func (i *Item) EntityLabel() string { return "Item" }
func (i *Item) Relevant() bool      { return i.IsRelevant }
func (i *Item) SetRelevant(r bool)  { i.IsRelevant = r }

func (p *CategoryPath) EntityLabel() string { return "Category Path" }
func (p *CategoryPath) Relevant() bool      { return p.IsRelevant }
func (p *CategoryPath) SetRelevant(r bool)  { p.IsRelevant = r }
