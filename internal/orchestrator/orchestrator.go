// Package orchestrator coordinates the sync pipeline: importing the Premier
// and SEMA catalogs, maintaining the link entities, recalculating storefront
// fields, and pushing to Shopify.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ecommercejockey/jockey/internal/config"
	"github.com/ecommercejockey/jockey/internal/database"
	"github.com/ecommercejockey/jockey/internal/database/clickhouse"
	"github.com/ecommercejockey/jockey/internal/database/postgres"
	"github.com/ecommercejockey/jockey/internal/linker"
	"github.com/ecommercejockey/jockey/internal/output"
	"github.com/ecommercejockey/jockey/internal/output/file"
	shopifyout "github.com/ecommercejockey/jockey/internal/output/shopify"
	"github.com/ecommercejockey/jockey/internal/source"
	"github.com/ecommercejockey/jockey/internal/source/premier"
	"github.com/ecommercejockey/jockey/internal/source/sema"
	"github.com/ecommercejockey/jockey/internal/state"
	"github.com/ecommercejockey/jockey/pkg/models"
)

// Orchestrator coordinates the sync pipeline
type Orchestrator struct {
	config *config.Config
	store  *state.Store

	pg *postgres.Client
	ch *clickhouse.Client

	premierRepo database.PremierRepository
	semaRepo    database.SemaRepository
	shopifyRepo database.ShopifyRepository
	linkRepo    database.LinkRepository
	syncRuns    *postgres.SyncRunRepo

	premier *premier.Connector
	sema    *sema.Connector
	shopify *shopifyout.Adapter

	sources *source.Registry
	outputs *output.Registry
}

// New creates a new orchestrator
func New(cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		config: cfg,
		store:  state.NewStore(""),
	}
}

// Initialize connects to PostgreSQL, builds the repositories, and constructs
// the source connectors and storefront adapter. Connectors authenticate
// lazily, the first time an operation needs them.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	// Missing state just means starting fresh
	_ = o.store.Load()

	pgCfg := postgres.ConfigFromEnv(
		o.config.Database.Postgres.UsernameEnv,
		o.config.Database.Postgres.PasswordEnv,
	)
	if o.config.Database.Postgres.Host != "" {
		pgCfg.Host = o.config.Database.Postgres.Host
	}
	if o.config.Database.Postgres.Port != 0 {
		pgCfg.Port = o.config.Database.Postgres.Port
	}
	if o.config.Database.Postgres.Database != "" {
		pgCfg.Database = o.config.Database.Postgres.Database
	}
	if o.config.Database.Postgres.SSLMode != "" {
		pgCfg.SSLMode = o.config.Database.Postgres.SSLMode
	}

	o.pg = postgres.NewClient(pgCfg)
	if err := o.pg.Connect(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	o.premierRepo = postgres.NewPremierRepo(o.pg)
	o.semaRepo = postgres.NewSemaRepo(o.pg)
	o.shopifyRepo = postgres.NewShopifyRepo(o.pg)
	o.linkRepo = postgres.NewLinkRepo(o.pg)
	o.syncRuns = postgres.NewSyncRunRepo(o.pg)

	o.premier = premier.NewConnector(premier.Config{
		BaseURL:   o.config.Sources.Premier.BaseURL,
		APIKeyEnv: o.config.Sources.Premier.APIKeyEnv,
	})
	o.sema = sema.NewConnector(sema.Config{
		BaseURL:     o.config.Sources.Sema.BaseURL,
		UsernameEnv: o.config.Sources.Sema.UsernameEnv,
		PasswordEnv: o.config.Sources.Sema.PasswordEnv,
	})
	o.shopify = shopifyout.NewAdapter(shopifyout.Config{
		Store:     o.config.Shopify.Store,
		APIKeyEnv: o.config.Shopify.APIKeyEnv,
	})

	o.sources = source.NewRegistry()
	_ = o.sources.Register(o.premier)
	_ = o.sources.Register(o.sema)

	o.outputs = output.NewRegistry()
	_ = o.outputs.Register(o.shopify)
	_ = o.outputs.Register(file.NewJSONAdapter(file.JSONConfig{Pretty: true}))
	_ = o.outputs.Register(file.NewCSVAdapter(file.CSVConfig{}))

	return nil
}

// InitObservations connects the ClickHouse observation sink. Separate from
// Initialize because only distributor refreshes and history queries need it.
func (o *Orchestrator) InitObservations(ctx context.Context) error {
	if o.ch != nil {
		return nil
	}

	chCfg := clickhouse.ConfigFromEnv(
		o.config.Database.ClickHouse.UsernameEnv,
		o.config.Database.ClickHouse.PasswordEnv,
	)
	if o.config.Database.ClickHouse.Host != "" {
		chCfg.Host = o.config.Database.ClickHouse.Host
	}
	if o.config.Database.ClickHouse.Port != 0 {
		chCfg.Port = o.config.Database.ClickHouse.Port
	}
	if o.config.Database.ClickHouse.Database != "" {
		chCfg.Database = o.config.Database.ClickHouse.Database
	}
	chCfg.Secure = o.config.Database.ClickHouse.Secure

	ch := clickhouse.NewClient(chCfg)
	if err := ch.Connect(ctx); err != nil {
		return fmt.Errorf("clickhouse: %w", err)
	}
	if err := ch.InitSchema(ctx); err != nil {
		return fmt.Errorf("clickhouse schema: %w", err)
	}

	o.ch = ch
	return nil
}

// Close cleans up all resources
func (o *Orchestrator) Close() error {
	if o.premier != nil {
		o.premier.Close()
	}
	if o.sema != nil {
		o.sema.Close()
	}
	if o.shopify != nil {
		o.shopify.Close()
	}
	if o.ch != nil {
		o.ch.Close()
	}
	if o.pg != nil {
		o.pg.Close()
	}
	return nil
}

// Store returns the push-state store
func (o *Orchestrator) Store() *state.Store {
	return o.store
}

// Postgres returns the PostgreSQL client
func (o *Orchestrator) Postgres() *postgres.Client {
	return o.pg
}

// Observations returns the ClickHouse client, nil unless InitObservations ran
func (o *Orchestrator) Observations() *clickhouse.Client {
	return o.ch
}

// PremierRepo returns the Premier repository
func (o *Orchestrator) PremierRepo() database.PremierRepository { return o.premierRepo }

// SemaRepo returns the SEMA repository
func (o *Orchestrator) SemaRepo() database.SemaRepository { return o.semaRepo }

// ShopifyRepo returns the storefront mirror repository
func (o *Orchestrator) ShopifyRepo() database.ShopifyRepository { return o.shopifyRepo }

// LinkRepo returns the link repository
func (o *Orchestrator) LinkRepo() database.LinkRepository { return o.linkRepo }

// SyncRuns returns the pipeline run log
func (o *Orchestrator) SyncRuns() *postgres.SyncRunRepo { return o.syncRuns }

// Sources returns the registry of vendor API connectors
func (o *Orchestrator) Sources() *source.Registry { return o.sources }

// Outputs returns the registry of storefront output adapters
func (o *Orchestrator) Outputs() *output.Registry { return o.outputs }

// Export writes the storefront catalog through a named output adapter.
// Use the file adapters for review exports and "shopify" for a live push.
func (o *Orchestrator) Export(ctx context.Context, adapterName string, opts output.ExportOptions) (*output.ExportResult, *output.ExportResult, error) {
	adapter, err := o.outputs.Get(adapterName)
	if err != nil {
		return nil, nil, err
	}
	if err := adapter.Connect(ctx); err != nil {
		return nil, nil, err
	}

	products, err := o.shopifyRepo.GetProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	productResult, err := adapter.ExportProducts(ctx, products, opts)
	if err != nil {
		return productResult, nil, err
	}

	collections, err := o.shopifyRepo.GetCollections(ctx)
	if err != nil {
		return productResult, nil, err
	}
	collectionResult, err := adapter.ExportCollections(ctx, collections, opts)
	if err != nil {
		return productResult, collectionResult, err
	}

	return productResult, collectionResult, nil
}

// recordRun logs an operation to the state history and, when the database is
// connected, to the durable run log
func (o *Orchestrator) recordRun(ctx context.Context, action, source string, count int, details string, startedAt time.Time) {
	o.store.AddHistory(action, source, count, details)
	if o.syncRuns == nil {
		return
	}
	completed := time.Now()
	run := &database.SyncRun{
		Action:      action,
		Source:      source,
		Count:       count,
		Details:     details,
		StartedAt:   startedAt,
		CompletedAt: &completed,
	}
	_ = o.syncRuns.Add(ctx, run)
}

// Snapshot is a loaded catalog plus the storefront records reachable from it.
// All cross-references share pointer instances so the linker's identity
// matching works across record types.
type Snapshot struct {
	linker.Catalog

	ShopifyVendors  []*models.ShopifyVendor
	ShopifyProducts []*models.ShopifyProduct

	// Pre-existing link IDs, to tell creates from updates when persisting
	existingVendors map[string]bool
	existingItems   map[string]bool
	existingPaths   map[string]bool
}

// LoadSnapshot loads the full catalog from PostgreSQL into one consistent
// in-memory graph. Each repository stitches its own sub-graph, so records
// loaded through different repositories are re-pointed at the instances
// loaded here.
func (o *Orchestrator) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		existingVendors: make(map[string]bool),
		existingItems:   make(map[string]bool),
		existingPaths:   make(map[string]bool),
	}

	manufacturers, err := o.premierRepo.GetManufacturers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load manufacturers: %w", err)
	}
	manufacturersByID := make(map[string]*models.PremierManufacturer)
	for _, m := range manufacturers {
		manufacturersByID[m.ID] = m
	}
	snap.PremierManufacturers = manufacturers

	premierProducts, err := o.premierRepo.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load premier products: %w", err)
	}
	premierByPart := make(map[string]*models.PremierProduct)
	for _, p := range premierProducts {
		if p.Manufacturer != nil {
			if m, ok := manufacturersByID[p.Manufacturer.ID]; ok {
				p.Manufacturer = m
			}
		}
		premierByPart[p.PremierPartNumber] = p
	}
	snap.PremierProducts = premierProducts

	brands, err := o.semaRepo.GetBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("load brands: %w", err)
	}
	brandsByID := make(map[string]*models.SemaBrand)
	datasetsByID := make(map[int]*models.SemaDataset)
	for _, b := range brands {
		brandsByID[b.BrandID] = b
		for _, d := range b.Datasets {
			datasetsByID[d.DatasetID] = d
		}
	}
	snap.SemaBrands = brands

	categories, err := o.semaRepo.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	categoriesByID := make(map[int]*models.SemaCategory)
	for _, c := range categories {
		categoriesByID[c.CategoryID] = c
	}
	snap.SemaCategories = categories

	semaProducts, err := o.semaRepo.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sema products: %w", err)
	}
	semaByID := make(map[int]*models.SemaProduct)
	for _, p := range semaProducts {
		if p.Dataset != nil {
			if d, ok := datasetsByID[p.Dataset.DatasetID]; ok {
				p.Dataset = d
			}
		}
		for i, c := range p.Categories {
			if shared, ok := categoriesByID[c.CategoryID]; ok {
				p.Categories[i] = shared
			}
		}
		semaByID[p.ProductID] = p
	}
	snap.SemaProducts = semaProducts

	shopifyVendors, err := o.shopifyRepo.GetVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shopify vendors: %w", err)
	}
	shopifyVendorsByID := make(map[string]*models.ShopifyVendor)
	for _, v := range shopifyVendors {
		shopifyVendorsByID[v.ID] = v
	}
	snap.ShopifyVendors = shopifyVendors

	shopifyProducts, err := o.shopifyRepo.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shopify products: %w", err)
	}
	shopifyProductsByID := make(map[string]*models.ShopifyProduct)
	for _, p := range shopifyProducts {
		if p.Vendor != nil {
			if v, ok := shopifyVendorsByID[p.Vendor.ID]; ok {
				p.Vendor = v
			}
		}
		shopifyProductsByID[p.ID] = p
	}
	snap.ShopifyProducts = shopifyProducts

	collections, err := o.shopifyRepo.GetCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}
	collectionsByID := make(map[string]*models.ShopifyCollection)
	for _, c := range collections {
		collectionsByID[c.ID] = c
	}
	snap.ShopifyCollections = collections

	vendors, err := o.linkRepo.GetVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}
	for _, v := range vendors {
		if v.PremierManufacturer != nil {
			if m, ok := manufacturersByID[v.PremierManufacturer.ID]; ok {
				v.PremierManufacturer = m
			}
		}
		if v.SemaBrand != nil {
			if b, ok := brandsByID[v.SemaBrand.BrandID]; ok {
				v.SemaBrand = b
			}
		}
		if v.ShopifyVendor != nil {
			if sv, ok := shopifyVendorsByID[v.ShopifyVendor.ID]; ok {
				v.ShopifyVendor = sv
			}
		}
		snap.existingVendors[v.ID] = true
	}
	snap.Vendors = vendors

	items, err := o.linkRepo.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	for _, item := range items {
		if item.PremierProduct != nil {
			if p, ok := premierByPart[item.PremierProduct.PremierPartNumber]; ok {
				item.PremierProduct = p
			}
		}
		if item.SemaProduct != nil {
			if p, ok := semaByID[item.SemaProduct.ProductID]; ok {
				item.SemaProduct = p
			}
		}
		if item.ShopifyProduct != nil {
			if p, ok := shopifyProductsByID[item.ShopifyProduct.ID]; ok {
				item.ShopifyProduct = p
			}
		}
		snap.existingItems[item.ID] = true
	}
	snap.Items = items

	paths, err := o.linkRepo.GetCategoryPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("load category paths: %w", err)
	}
	for _, path := range paths {
		repointCategory(&path.SemaRootCategory, categoriesByID)
		repointCategory(&path.SemaBranchCategory, categoriesByID)
		repointCategory(&path.SemaLeafCategory, categoriesByID)
		repointCollection(&path.ShopifyRootCollection, collectionsByID)
		repointCollection(&path.ShopifyBranchCollection, collectionsByID)
		repointCollection(&path.ShopifyLeafCollection, collectionsByID)
		snap.existingPaths[path.ID] = true
	}
	snap.CategoryPaths = paths

	return snap, nil
}

func repointCategory(target **models.SemaCategory, byID map[int]*models.SemaCategory) {
	if *target == nil {
		return
	}
	if c, ok := byID[(*target).CategoryID]; ok {
		*target = c
	}
}

func repointCollection(target **models.ShopifyCollection, byID map[string]*models.ShopifyCollection) {
	if *target == nil {
		return
	}
	if c, ok := byID[(*target).ID]; ok {
		*target = c
	}
}

// PersistSnapshot writes back every record the linker may have created or
// re-linked. Storefront records are upserted; link records are created or
// updated depending on whether they existed when the snapshot was loaded.
func (o *Orchestrator) PersistSnapshot(ctx context.Context, snap *Snapshot) error {
	// Storefront vendors first, products and collections reference them
	seenVendors := make(map[string]bool)
	for _, v := range snap.ShopifyVendors {
		seenVendors[v.ID] = true
	}
	for _, vendor := range snap.Vendors {
		sv := vendor.ShopifyVendor
		if sv == nil || seenVendors[sv.ID] {
			continue
		}
		seenVendors[sv.ID] = true
		if err := o.shopifyRepo.UpsertVendor(ctx, sv); err != nil {
			return fmt.Errorf("persist shopify vendor %s: %w", sv.Name, err)
		}
	}

	seenProducts := make(map[string]bool)
	for _, p := range snap.ShopifyProducts {
		seenProducts[p.ID] = true
	}
	for _, item := range snap.Items {
		sp := item.ShopifyProduct
		if sp == nil || seenProducts[sp.ID] {
			continue
		}
		seenProducts[sp.ID] = true
		if err := o.shopifyRepo.UpsertProduct(ctx, sp); err != nil {
			return fmt.Errorf("persist shopify product %s: %w", sp.ID, err)
		}
	}

	// Parents before children so the self-reference FK holds
	for _, collection := range snap.ShopifyCollections {
		if collection.Parent != nil {
			continue
		}
		if err := o.shopifyRepo.UpsertCollection(ctx, collection); err != nil {
			return fmt.Errorf("persist collection %s: %w", collection.Title, err)
		}
	}
	for _, collection := range snap.ShopifyCollections {
		if collection.Parent == nil || collection.Parent.Parent != nil {
			continue
		}
		if err := o.shopifyRepo.UpsertCollection(ctx, collection); err != nil {
			return fmt.Errorf("persist collection %s: %w", collection.Title, err)
		}
	}
	for _, collection := range snap.ShopifyCollections {
		if collection.Parent == nil || collection.Parent.Parent == nil {
			continue
		}
		if err := o.shopifyRepo.UpsertCollection(ctx, collection); err != nil {
			return fmt.Errorf("persist collection %s: %w", collection.Title, err)
		}
	}

	for _, vendor := range snap.Vendors {
		var err error
		if snap.existingVendors[vendor.ID] {
			err = o.linkRepo.UpdateVendor(ctx, vendor)
		} else {
			err = o.linkRepo.CreateVendor(ctx, vendor)
		}
		if err != nil {
			return fmt.Errorf("persist vendor %s: %w", vendor.Slug, err)
		}
	}

	for _, item := range snap.Items {
		var err error
		if snap.existingItems[item.ID] {
			err = o.linkRepo.UpdateItem(ctx, item)
		} else {
			err = o.linkRepo.CreateItem(ctx, item)
		}
		if err != nil {
			return fmt.Errorf("persist item %s: %w", item, err)
		}
	}

	for _, path := range snap.CategoryPaths {
		var err error
		if snap.existingPaths[path.ID] {
			err = o.linkRepo.UpdateCategoryPath(ctx, path)
		} else {
			err = o.linkRepo.CreateCategoryPath(ctx, path)
		}
		if err != nil {
			return fmt.Errorf("persist category path %s: %w", path, err)
		}
	}

	return nil
}
