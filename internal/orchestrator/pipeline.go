package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ecommercejockey/jockey/internal/actions"
	"github.com/ecommercejockey/jockey/internal/calculator"
	"github.com/ecommercejockey/jockey/internal/database/clickhouse"
	"github.com/ecommercejockey/jockey/internal/messages"
	"github.com/ecommercejockey/jockey/internal/output"
	"github.com/ecommercejockey/jockey/internal/parser"
	"github.com/ecommercejockey/jockey/internal/relevancy"
	"github.com/ecommercejockey/jockey/internal/source/premier"
	"github.com/ecommercejockey/jockey/internal/source/sema"
	"github.com/ecommercejockey/jockey/pkg/models"
)

// RefreshOptions configures a Premier inventory/pricing refresh
type RefreshOptions struct {
	PartNumbers []string // empty means every product in the catalog
	Inventory   bool
	Pricing     bool
	Progress    func(partNumber string)
}

// RefreshResult contains the results of a Premier refresh
type RefreshResult struct {
	PartsProcessed   int
	InventoryUpdated int
	PricingUpdated   int
	Observations     int
	Errors           []string
	StartedAt        time.Time
	CompletedAt      time.Time
}

// RefreshPremier pulls current inventory and pricing from the Premier API
// and applies them to the stored products. When the observation sink is
// connected, every fetched value is also recorded as a history observation.
func (o *Orchestrator) RefreshPremier(ctx context.Context, opts RefreshOptions) (*RefreshResult, error) {
	result := &RefreshResult{StartedAt: time.Now()}

	partNumbers := opts.PartNumbers
	if len(partNumbers) == 0 {
		products, err := o.premierRepo.GetProducts(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			partNumbers = append(partNumbers, p.PremierPartNumber)
		}
	}
	result.PartsProcessed = len(partNumbers)
	if len(partNumbers) == 0 {
		result.CompletedAt = time.Now()
		return result, nil
	}

	if err := o.premier.Connect(ctx); err != nil {
		return nil, fmt.Errorf("premier: %w", err)
	}

	observedAt := time.Now()
	var priceObs []clickhouse.PriceObservation
	var inventoryObs []clickhouse.InventoryObservation

	if opts.Inventory {
		parts, err := o.premier.FetchInventory(ctx, partNumbers)
		if err != nil {
			return nil, fmt.Errorf("fetch inventory: %w", err)
		}
		for _, part := range parts {
			if opts.Progress != nil {
				opts.Progress(part.ItemNumber)
			}
			update := premier.ParseInventoryUpdate(part.Inventory)
			if len(update) == 0 {
				continue
			}
			if err := o.premierRepo.UpdateInventory(ctx, part.ItemNumber, update); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", part.ItemNumber, err))
				continue
			}
			result.InventoryUpdated++
			if o.ch != nil {
				inventoryObs = append(inventoryObs,
					clickhouse.RecordInventoryUpdate(part.ItemNumber, update, observedAt)...)
			}
		}
	}

	if opts.Pricing {
		parts, err := o.premier.FetchPricing(ctx, partNumbers)
		if err != nil {
			return nil, fmt.Errorf("fetch pricing: %w", err)
		}
		for _, part := range parts {
			if opts.Progress != nil {
				opts.Progress(part.ItemNumber)
			}
			update := premier.ParsePricingUpdate(part.Pricing)
			if len(update) == 0 {
				continue
			}
			if err := o.premierRepo.UpdatePricing(ctx, part.ItemNumber, update); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", part.ItemNumber, err))
				continue
			}
			result.PricingUpdated++
			if o.ch != nil {
				priceObs = append(priceObs,
					clickhouse.RecordPricingUpdate(part.ItemNumber, update, observedAt)...)
			}
		}
	}

	if o.ch != nil {
		if err := o.ch.InsertInventoryObservations(ctx, inventoryObs); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("inventory observations: %v", err))
		}
		if err := o.ch.InsertPriceObservations(ctx, priceObs); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("price observations: %v", err))
		}
		result.Observations = len(inventoryObs) + len(priceObs)
	}

	o.recordRun(ctx, "refresh", "premier", result.InventoryUpdated+result.PricingUpdated,
		fmt.Sprintf("Refreshed %d inventory and %d pricing records", result.InventoryUpdated, result.PricingUpdated),
		result.StartedAt)
	_ = o.store.Save()

	result.CompletedAt = time.Now()
	return result, nil
}

// FeedImportResult contains the results of a Premier feed import
type FeedImportResult struct {
	Manufacturers int
	Products      int
	Errors        []string
	StartedAt     time.Time
	CompletedAt   time.Time
}

// ImportPremierFeed imports the product catalog from a Premier feed CSV.
// The feed is the bulk entry point; RefreshPremier keeps the imported rows
// current afterwards.
func (o *Orchestrator) ImportPremierFeed(ctx context.Context, filePath string) (*FeedImportResult, error) {
	result := &FeedImportResult{StartedAt: time.Now()}

	parsed, err := parser.NewParser().ParseFile(filePath)
	if err != nil {
		return nil, err
	}
	result.Errors = parsed.Errors

	for _, manufacturer := range parsed.Manufacturers {
		if err := o.premierRepo.UpsertManufacturer(ctx, manufacturer); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("manufacturer %s: %v", manufacturer.Name, err))
			continue
		}
		result.Manufacturers++
	}

	for _, product := range parsed.Products {
		// Skip products whose manufacturer failed to persist
		if product.Manufacturer != nil && product.Manufacturer.ID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: manufacturer not persisted", product.PremierPartNumber))
			continue
		}
		if err := o.premierRepo.UpsertProduct(ctx, product); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: %v", product.PremierPartNumber, err))
			continue
		}
		result.Products++
	}

	o.recordRun(ctx, "import", "premier", result.Products,
		fmt.Sprintf("Imported %d products from %s", result.Products, filePath),
		result.StartedAt)
	_ = o.store.Save()

	result.CompletedAt = time.Now()
	return result, nil
}

// SemaImportOptions configures a SEMA catalog import
type SemaImportOptions struct {
	BrandIDs        []string // empty means every authorized brand
	IncludeVehicles bool
	IncludeHTML     bool
	Progress        func(stage string, done, total int)
}

// SemaImportResult contains the results of a SEMA import
type SemaImportResult struct {
	Brands      int
	Datasets    int
	Categories  int
	Products    int
	Vehicles    int
	HTMLFetched int
	Errors      []string
	StartedAt   time.Time
	CompletedAt time.Time
}

var descriptionSegments = []string{
	models.PiesSegmentShortDescription,
	models.PiesSegmentExtendedDescription,
	models.PiesSegmentDefault,
	models.PiesSegmentMarketing,
}

// ImportSema imports brands, datasets, categories, products, and optionally
// vehicles and merchandising HTML from the SEMA Data Co-op.
func (o *Orchestrator) ImportSema(ctx context.Context, opts SemaImportOptions) (*SemaImportResult, error) {
	result := &SemaImportResult{StartedAt: time.Now()}

	if err := o.sema.Connect(ctx); err != nil {
		return nil, fmt.Errorf("sema: %w", err)
	}

	brandDatasets, err := o.sema.FetchBrandDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch brand datasets: %w", err)
	}

	wanted := make(map[string]bool, len(opts.BrandIDs))
	for _, id := range opts.BrandIDs {
		wanted[id] = true
	}

	type datasetRef struct {
		id      int
		brandID string
	}
	var datasets []datasetRef
	seenBrands := make(map[string]bool)

	for _, bd := range brandDatasets {
		if len(wanted) > 0 && !wanted[bd.AAIABrandID] {
			continue
		}
		if !seenBrands[bd.AAIABrandID] {
			seenBrands[bd.AAIABrandID] = true
			brand := &models.SemaBrand{
				BrandID:      bd.AAIABrandID,
				Name:         bd.BrandName,
				IsAuthorized: true,
			}
			if err := o.semaRepo.UpsertBrand(ctx, brand); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("brand %s: %v", bd.AAIABrandID, err))
				continue
			}
			result.Brands++
		}

		dataset := &models.SemaDataset{
			DatasetID:    bd.DatasetID,
			Name:         bd.DatasetName,
			IsAuthorized: true,
		}
		if err := o.semaRepo.UpsertDataset(ctx, dataset, bd.AAIABrandID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("dataset %d: %v", bd.DatasetID, err))
			continue
		}
		result.Datasets++
		datasets = append(datasets, datasetRef{id: bd.DatasetID, brandID: bd.AAIABrandID})
	}

	datasetIDs := make([]int, 0, len(datasets))
	for _, ds := range datasets {
		datasetIDs = append(datasetIDs, ds.id)
	}
	if len(datasetIDs) == 0 {
		result.CompletedAt = time.Now()
		return result, nil
	}

	if err := o.importSemaCategories(ctx, datasetIDs, result); err != nil {
		return nil, err
	}

	for i, ds := range datasets {
		if opts.Progress != nil {
			opts.Progress("products", i, len(datasets))
		}
		if err := o.importSemaDataset(ctx, ds.id, opts, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("dataset %d: %v", ds.id, err))
		}
	}

	o.recordRun(ctx, "import", "sema", result.Products,
		fmt.Sprintf("Imported %d products across %d datasets", result.Products, result.Datasets),
		result.StartedAt)
	_ = o.store.Save()

	result.CompletedAt = time.Now()
	return result, nil
}

// importSemaCategories imports the category tree, upserting parents before
// recording parent links
func (o *Orchestrator) importSemaCategories(ctx context.Context, datasetIDs []int, result *SemaImportResult) error {
	tree, err := o.sema.FetchCategories(ctx, datasetIDs)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}

	type link struct{ child, parent int }
	var links []link

	var walk func(nodes []sema.Category, level int, parentID int) error
	walk = func(nodes []sema.Category, level int, parentID int) error {
		for _, node := range nodes {
			category := &models.SemaCategory{
				CategoryID: node.CategoryID,
				Name:       node.Name,
				Level:      level,
			}
			if err := o.semaRepo.UpsertCategory(ctx, category); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("category %d: %v", node.CategoryID, err))
				continue
			}
			result.Categories++
			if parentID != 0 {
				links = append(links, link{child: node.CategoryID, parent: parentID})
			}
			if err := walk(node.Categories, level+1, node.CategoryID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tree, models.CategoryLevelRoot, 0); err != nil {
		return err
	}

	for _, l := range links {
		if err := o.semaRepo.SetCategoryParents(ctx, l.child, []int{l.parent}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("category %d parents: %v", l.child, err))
		}
	}
	return nil
}

// importSemaDataset imports one dataset's products and optionally vehicles
// and HTML
func (o *Orchestrator) importSemaDataset(ctx context.Context, datasetID int, opts SemaImportOptions, result *SemaImportResult) error {
	products, err := o.sema.FetchProducts(ctx, []int{datasetID}, descriptionSegments)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}

	productIDsByPart := make(map[string]int, len(products))
	partNumbers := make([]string, 0, len(products))
	for _, p := range products {
		product := &models.SemaProduct{
			ProductID:  p.ProductID,
			PartNumber: p.PartNumber,
		}
		for _, attr := range p.PiesAttributes {
			if attr.Value == nil {
				continue
			}
			converted := models.SemaPiesAttribute{
				Segment: attr.PiesSegment,
				Value:   *attr.Value,
			}
			if isDigitalAsset(attr) {
				product.DigitalAssetsPiesAttributes = append(product.DigitalAssetsPiesAttributes, converted)
			} else {
				product.DescriptionPiesAttributes = append(product.DescriptionPiesAttributes, converted)
			}
		}
		if err := o.semaRepo.UpsertProduct(ctx, product, datasetID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("product %d: %v", p.ProductID, err))
			continue
		}
		result.Products++
		productIDsByPart[p.PartNumber] = p.ProductID
		partNumbers = append(partNumbers, p.PartNumber)

		if opts.IncludeHTML {
			html, err := o.sema.FetchProductHTML(ctx, p.ProductID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("product %d html: %v", p.ProductID, err))
			} else if err := o.semaRepo.UpdateProductHTML(ctx, p.ProductID, html); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("product %d html: %v", p.ProductID, err))
			} else {
				result.HTMLFetched++
			}
		}
	}

	if !opts.IncludeVehicles {
		return nil
	}

	brandVehicles, err := o.sema.FetchVehiclesByBrand(ctx, []int{datasetID})
	if err != nil {
		return fmt.Errorf("fetch vehicles: %w", err)
	}
	datasetVehicleIDs := make([]int, 0, len(brandVehicles))
	for _, v := range brandVehicles {
		if v.VehicleID == 0 {
			continue
		}
		vehicle := models.SemaVehicle{
			VehicleID:     v.VehicleID,
			BaseVehicleID: v.BaseVehicleID,
		}
		if err := o.semaRepo.UpsertVehicle(ctx, vehicle); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("vehicle %d: %v", v.VehicleID, err))
			continue
		}
		result.Vehicles++
		datasetVehicleIDs = append(datasetVehicleIDs, v.VehicleID)
	}
	if err := o.semaRepo.SetDatasetVehicles(ctx, datasetID, datasetVehicleIDs); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("dataset %d vehicles: %v", datasetID, err))
	}

	if len(partNumbers) == 0 {
		return nil
	}
	parts, err := o.sema.FetchVehiclesByProduct(ctx, datasetID, partNumbers)
	if err != nil {
		return fmt.Errorf("fetch product vehicles: %w", err)
	}
	for _, part := range parts {
		productID, ok := productIDsByPart[part.PartNumber]
		if !ok {
			continue
		}
		vehicleIDs := make([]int, 0, len(part.Vehicles))
		for _, v := range part.Vehicles {
			if v.VehicleID == 0 {
				continue
			}
			vehicle := models.SemaVehicle{
				VehicleID:     v.VehicleID,
				BaseVehicleID: v.BaseVehicleID,
			}
			if err := o.semaRepo.UpsertVehicle(ctx, vehicle); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("vehicle %d: %v", v.VehicleID, err))
				continue
			}
			vehicleIDs = append(vehicleIDs, v.VehicleID)
		}
		if err := o.semaRepo.SetProductVehicles(ctx, productID, vehicleIDs); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("product %d vehicles: %v", productID, err))
		}
	}
	return nil
}

// The SDC marks digital-asset rows by PIES name, descriptions by segment
func isDigitalAsset(attr sema.PiesAttribute) bool {
	return strings.Contains(strings.ToLower(attr.PiesName), "asset")
}

// LinkOptions configures a link pass
type LinkOptions struct {
	Vendors bool
	Items   bool
	Paths   bool
	DryRun  bool
}

// Link runs the requested linker passes over a fresh snapshot and persists
// everything they created or re-linked
func (o *Orchestrator) Link(ctx context.Context, opts LinkOptions) ([]string, error) {
	started := time.Now()

	snap, err := o.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var msgs []string
	if opts.Vendors {
		msgs = append(msgs, snap.LinkVendors()...)
		msgs = append(msgs, snap.CreateShopifyVendors()...)
	}
	if opts.Items {
		msgs = append(msgs, snap.LinkItems()...)
		msgs = append(msgs, snap.CreateShopifyProducts()...)
	}
	if opts.Paths {
		msgs = append(msgs, snap.BuildCategoryPaths()...)
		msgs = append(msgs, snap.CreateShopifyCollections(o.config.Calculator.Collection)...)
	}

	if !opts.DryRun {
		if err := o.PersistSnapshot(ctx, snap); err != nil {
			return msgs, err
		}
		o.recordRun(ctx, "link", "postgres", len(msgs), "Ran link passes", started)
		_ = o.store.Save()
	}
	return msgs, nil
}

// CheckRelevancy evaluates every entity in the catalog and reports warnings,
// errors, and relevancy flags that disagree with the evaluation
func (o *Orchestrator) CheckRelevancy(ctx context.Context) ([]string, error) {
	snap, err := o.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var msgs []string
	report := func(label string, entity fmt.Stringer, relevant bool, res relevancy.Result) {
		for _, w := range res.Warnings {
			msgs = append(msgs, messages.UpToDate(label, entity, "warning: "+w))
		}
		for _, e := range res.Errors {
			msgs = append(msgs, messages.Error(label, entity, errors.New(e)))
		}
		if !relevant && res.MayBeRelevant && !res.HasErrors() {
			msgs = append(msgs, messages.UpToDate(label, entity, "may be relevant"))
		}
	}

	for _, m := range snap.PremierManufacturers {
		report(m.EntityLabel(), m, m.IsRelevant, relevancy.CheckPremierManufacturer(m))
	}
	for _, p := range snap.PremierProducts {
		report(p.EntityLabel(), p, p.IsRelevant, relevancy.CheckPremierProduct(p))
	}
	for _, b := range snap.SemaBrands {
		report(b.EntityLabel(), b, b.IsRelevant, relevancy.CheckSemaBrand(b))
		for _, d := range b.Datasets {
			report(d.EntityLabel(), d, d.IsRelevant, relevancy.CheckSemaDataset(d))
		}
	}
	for _, c := range snap.SemaCategories {
		report(c.EntityLabel(), c, c.IsRelevant, relevancy.CheckSemaCategory(c))
	}
	for _, p := range snap.SemaProducts {
		report(p.EntityLabel(), p, p.IsRelevant, relevancy.CheckSemaProduct(p))
	}
	for _, p := range snap.ShopifyProducts {
		report(p.EntityLabel(), p, p.IsRelevant, relevancy.CheckShopifyProduct(p))
	}
	for _, c := range snap.ShopifyCollections {
		report(c.EntityLabel(), c, c.IsRelevant, relevancy.CheckShopifyCollection(c))
	}
	for _, v := range snap.Vendors {
		report(v.EntityLabel(), v, v.IsRelevant, relevancy.CheckVendor(v))
	}
	for _, item := range snap.Items {
		report(item.EntityLabel(), item, item.IsRelevant, relevancy.CheckItem(item))
	}
	for _, path := range snap.CategoryPaths {
		report(path.EntityLabel(), path, path.IsRelevant, relevancy.CheckCategoryPath(path))
	}

	if len(msgs) == 0 {
		msgs = append(msgs, messages.ClassUpToDate("Catalog"))
	}
	return msgs, nil
}

// MarkRelevancy runs the bulk relevancy action over a selection. Kind names
// an entity class; an empty id list selects every entity of that class.
func (o *Orchestrator) MarkRelevancy(ctx context.Context, kind string, ids []string, target bool) ([]string, error) {
	entities, err := o.selectEntities(ctx, kind, ids)
	if err != nil {
		return nil, err
	}

	saver := actions.SaverFunc(func(ctx context.Context, entity actions.Entity) error {
		switch e := entity.(type) {
		case *models.Vendor:
			return o.linkRepo.SetVendorRelevance(ctx, e.ID, e.IsRelevant)
		case *models.Item:
			return o.linkRepo.SetItemRelevance(ctx, e.ID, e.IsRelevant)
		case *models.CategoryPath:
			return o.linkRepo.SetCategoryPathRelevance(ctx, e.ID, e.IsRelevant)
		case *models.PremierManufacturer:
			return o.premierRepo.SetManufacturerRelevance(ctx, e.ID, e.IsRelevant)
		case *models.PremierProduct:
			return o.premierRepo.SetProductRelevance(ctx, e.PremierPartNumber, e.IsRelevant)
		case *models.SemaBrand:
			return o.semaRepo.SetBrandRelevance(ctx, e.BrandID, e.IsRelevant)
		case *models.SemaDataset:
			return o.semaRepo.SetDatasetRelevance(ctx, e.DatasetID, e.IsRelevant)
		case *models.SemaCategory:
			return o.semaRepo.SetCategoryRelevance(ctx, e.CategoryID, e.IsRelevant)
		case *models.SemaProduct:
			return o.semaRepo.SetProductRelevance(ctx, e.ProductID, e.IsRelevant)
		case *models.ShopifyProduct:
			return o.shopifyRepo.SetProductRelevance(ctx, e.ID, e.IsRelevant)
		case *models.ShopifyCollection:
			return o.shopifyRepo.SetCollectionRelevance(ctx, e.ID, e.IsRelevant)
		}
		return fmt.Errorf("unsupported entity type %T", entity)
	})

	return actions.MarkRelevant(ctx, entities, target, saver), nil
}

// selectEntities loads an entity class and filters it by id
func (o *Orchestrator) selectEntities(ctx context.Context, kind string, ids []string) ([]actions.Entity, error) {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	keep := func(id string) bool {
		return len(selected) == 0 || selected[id]
	}

	var entities []actions.Entity
	switch kind {
	case "vendors":
		vendors, err := o.linkRepo.GetVendors(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range vendors {
			if keep(v.ID) || keep(v.Slug) {
				entities = append(entities, v)
			}
		}
	case "items":
		items, err := o.linkRepo.GetItems(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if keep(item.ID) {
				entities = append(entities, item)
			}
		}
	case "paths":
		paths, err := o.linkRepo.GetCategoryPaths(ctx)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			if keep(path.ID) {
				entities = append(entities, path)
			}
		}
	case "manufacturers":
		manufacturers, err := o.premierRepo.GetManufacturers(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range manufacturers {
			if keep(m.ID) || keep(m.Slug) {
				entities = append(entities, m)
			}
		}
	case "premier-products":
		products, err := o.premierRepo.GetProducts(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			if keep(p.PremierPartNumber) {
				entities = append(entities, p)
			}
		}
	case "brands":
		brands, err := o.semaRepo.GetBrands(ctx)
		if err != nil {
			return nil, err
		}
		for _, b := range brands {
			if keep(b.BrandID) {
				entities = append(entities, b)
			}
		}
	case "datasets":
		brands, err := o.semaRepo.GetBrands(ctx)
		if err != nil {
			return nil, err
		}
		for _, b := range brands {
			for _, d := range b.Datasets {
				if keep(strconv.Itoa(d.DatasetID)) {
					entities = append(entities, d)
				}
			}
		}
	case "categories":
		categories, err := o.semaRepo.GetCategories(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range categories {
			if keep(strconv.Itoa(c.CategoryID)) {
				entities = append(entities, c)
			}
		}
	case "sema-products":
		products, err := o.semaRepo.GetProducts(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			if keep(strconv.Itoa(p.ProductID)) || keep(p.PartNumber) {
				entities = append(entities, p)
			}
		}
	case "shopify-products":
		products, err := o.shopifyRepo.GetProducts(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			if keep(p.ID) {
				entities = append(entities, p)
			}
		}
	case "collections":
		collections, err := o.shopifyRepo.GetCollections(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range collections {
			if keep(c.ID) || keep(c.Title) {
				entities = append(entities, c)
			}
		}
	default:
		return nil, fmt.Errorf("unknown entity kind: %s", kind)
	}
	return entities, nil
}

// CalcOptions configures a calculator pass
type CalcOptions struct {
	DryRun bool
	SKUs   []string
}

// Calculate re-derives the calculated storefront fields for every linked
// item and category path, persisting the records that changed
func (o *Orchestrator) Calculate(ctx context.Context, opts CalcOptions) ([]string, error) {
	snap, err := o.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	skus := make(map[string]bool, len(opts.SKUs))
	for _, sku := range opts.SKUs {
		skus[sku] = true
	}

	var msgs []string
	for _, item := range snap.Items {
		product := item.ShopifyProduct
		if product == nil {
			continue
		}
		if len(skus) > 0 {
			variant := product.FirstVariant()
			if variant == nil || !skus[variant.SKU] {
				continue
			}
		}

		calc := calculator.NewProduct(item, o.config.Calculator.Product)
		changed := calc.Apply(product)
		if len(changed) == 0 {
			msgs = append(msgs, messages.UpToDate("Shopify Product", product, "already calculated"))
			continue
		}
		if !opts.DryRun {
			if err := o.shopifyRepo.UpsertProduct(ctx, product); err != nil {
				msgs = append(msgs, messages.Error("Shopify Product", product, err))
				continue
			}
		}
		msgs = append(msgs, messages.UpdateSuccess("Shopify Product", product,
			strings.Join(changed, ", ")+" updated"))
	}

	// Collections are shared between paths; recalculate each once
	calculated := make(map[string]bool)
	for _, path := range snap.CategoryPaths {
		calc := calculator.NewCollection(path, o.config.Calculator.Collection)
		levels := []struct {
			level      int
			collection *models.ShopifyCollection
		}{
			{1, path.ShopifyRootCollection},
			{2, path.ShopifyBranchCollection},
			{3, path.ShopifyLeafCollection},
		}
		for _, l := range levels {
			if l.collection == nil || calculated[l.collection.ID] {
				continue
			}
			calculated[l.collection.ID] = true
			changed := calc.Apply(l.collection, l.level)
			if len(changed) == 0 {
				msgs = append(msgs, messages.UpToDate("Shopify Collection", l.collection, "already calculated"))
				continue
			}
			if !opts.DryRun {
				if err := o.shopifyRepo.UpsertCollection(ctx, l.collection); err != nil {
					msgs = append(msgs, messages.Error("Shopify Collection", l.collection, err))
					continue
				}
			}
			msgs = append(msgs, messages.UpdateSuccess("Shopify Collection", l.collection,
				strings.Join(changed, ", ")+" updated"))
		}
	}

	if len(msgs) == 0 {
		msgs = append(msgs, messages.ClassUpToDate("Shopify Product"))
	}
	return msgs, nil
}

// PushOptions configures a storefront push
type PushOptions struct {
	Products    bool
	Collections bool
	SKUs        []string
	Force       bool // push even when the state snapshot says unchanged
	DryRun      bool
}

// PushResult contains the results of a storefront push
type PushResult struct {
	Products    *output.ExportResult
	Collections *output.ExportResult
	Skipped     int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Push sends relevant products and collections to the Shopify admin API,
// skipping records unchanged since the last push
func (o *Orchestrator) Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	result := &PushResult{StartedAt: time.Now()}

	if err := o.shopify.Connect(ctx); err != nil {
		return nil, fmt.Errorf("shopify: %w", err)
	}

	exportOpts := output.ExportOptions{
		OnlyRelevant: true,
		SKUs:         opts.SKUs,
		DryRun:       opts.DryRun,
	}

	if opts.Products {
		products, err := o.shopifyRepo.GetProducts(ctx)
		if err != nil {
			return nil, err
		}
		toPush := make([]*models.ShopifyProduct, 0, len(products))
		for _, p := range products {
			if !opts.Force && !o.store.ProductNeedsPush(p) {
				result.Skipped++
				continue
			}
			toPush = append(toPush, p)
		}

		exportResult, err := o.shopify.ExportProducts(ctx, toPush, exportOpts)
		if err != nil {
			return nil, err
		}
		result.Products = exportResult

		if exportResult.Success && !opts.DryRun {
			for _, p := range toPush {
				// The adapter fills in ProductID on creates
				if err := o.shopifyRepo.UpsertProduct(ctx, p); err != nil {
					continue
				}
				o.store.MarkProductPushed(p)
			}
		}
	}

	if opts.Collections {
		collections, err := o.shopifyRepo.GetCollections(ctx)
		if err != nil {
			return nil, err
		}
		toPush := make([]*models.ShopifyCollection, 0, len(collections))
		for _, c := range collections {
			if !opts.Force && !o.store.CollectionNeedsPush(c) {
				result.Skipped++
				continue
			}
			toPush = append(toPush, c)
		}

		exportResult, err := o.shopify.ExportCollections(ctx, toPush, exportOpts)
		if err != nil {
			return nil, err
		}
		result.Collections = exportResult

		if exportResult.Success && !opts.DryRun {
			for _, c := range toPush {
				if err := o.shopifyRepo.UpsertCollection(ctx, c); err != nil {
					continue
				}
				o.store.MarkCollectionPushed(c)
			}
		}
	}

	if !opts.DryRun {
		pushed := 0
		if result.Products != nil {
			pushed += result.Products.ProductsExported
		}
		if result.Collections != nil {
			pushed += result.Collections.CollectionsExported
		}
		o.recordRun(ctx, "push", "shopify", pushed,
			fmt.Sprintf("Pushed %d records, skipped %d unchanged", pushed, result.Skipped),
			result.StartedAt)
		if err := o.store.Save(); err != nil {
			return result, err
		}
	}

	result.CompletedAt = time.Now()
	return result, nil
}

// PipelineOptions configures a full orchestrated run
type PipelineOptions struct {
	RefreshPremier  bool
	ImportSema      bool
	IncludeVehicles bool
	IncludeHTML     bool
	Link            bool
	Calculate       bool
	Push            bool
	DryRun          bool
}

// PipelineResult contains the results of a full run
type PipelineResult struct {
	Refresh     *RefreshResult
	SemaImport  *SemaImportResult
	LinkMsgs    []string
	CalcMsgs    []string
	Push        *PushResult
	StartedAt   time.Time
	CompletedAt time.Time
}

// RunPipeline executes the orchestrated import, link, calculate, push run
func (o *Orchestrator) RunPipeline(ctx context.Context, opts PipelineOptions) (*PipelineResult, error) {
	result := &PipelineResult{StartedAt: time.Now()}

	if opts.RefreshPremier {
		refresh, err := o.RefreshPremier(ctx, RefreshOptions{
			Inventory: true,
			Pricing:   true,
		})
		if err != nil {
			return result, fmt.Errorf("premier refresh: %w", err)
		}
		result.Refresh = refresh
	}

	if opts.ImportSema {
		semaResult, err := o.ImportSema(ctx, SemaImportOptions{
			IncludeVehicles: opts.IncludeVehicles,
			IncludeHTML:     opts.IncludeHTML,
		})
		if err != nil {
			return result, fmt.Errorf("sema import: %w", err)
		}
		result.SemaImport = semaResult
	}

	if opts.Link {
		msgs, err := o.Link(ctx, LinkOptions{
			Vendors: true,
			Items:   true,
			Paths:   true,
			DryRun:  opts.DryRun,
		})
		result.LinkMsgs = msgs
		if err != nil {
			return result, fmt.Errorf("link: %w", err)
		}
	}

	if opts.Calculate {
		msgs, err := o.Calculate(ctx, CalcOptions{DryRun: opts.DryRun})
		result.CalcMsgs = msgs
		if err != nil {
			return result, fmt.Errorf("calculate: %w", err)
		}
	}

	if opts.Push {
		push, err := o.Push(ctx, PushOptions{
			Products:    true,
			Collections: true,
			DryRun:      opts.DryRun,
		})
		if err != nil {
			return result, fmt.Errorf("push: %w", err)
		}
		result.Push = push
	}

	result.CompletedAt = time.Now()
	return result, nil
}
