package database

import (
	"context"
	"time"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// PremierRepository defines the interface for Premier catalog data access
type PremierRepository interface {
	UpsertManufacturer(ctx context.Context, manufacturer *models.PremierManufacturer) error
	GetManufacturers(ctx context.Context) ([]*models.PremierManufacturer, error)

	UpsertProduct(ctx context.Context, product *models.PremierProduct) error
	GetProducts(ctx context.Context) ([]*models.PremierProduct, error)
	UpdateInventory(ctx context.Context, partNumber string, quantities map[string]int) error
	UpdatePricing(ctx context.Context, partNumber string, prices map[string]float64) error

	SetManufacturerRelevance(ctx context.Context, id string, relevant bool) error
	SetProductRelevance(ctx context.Context, partNumber string, relevant bool) error
}

// SemaRepository defines the interface for SEMA catalog data access
type SemaRepository interface {
	UpsertBrand(ctx context.Context, brand *models.SemaBrand) error
	GetBrands(ctx context.Context) ([]*models.SemaBrand, error)

	UpsertDataset(ctx context.Context, dataset *models.SemaDataset, brandID string) error
	UpsertVehicle(ctx context.Context, vehicle models.SemaVehicle) error
	SetDatasetVehicles(ctx context.Context, datasetID int, vehicleIDs []int) error

	UpsertCategory(ctx context.Context, category *models.SemaCategory) error
	SetCategoryParents(ctx context.Context, categoryID int, parentIDs []int) error
	GetCategories(ctx context.Context) ([]*models.SemaCategory, error)

	UpsertProduct(ctx context.Context, product *models.SemaProduct, datasetID int) error
	SetProductCategories(ctx context.Context, productID int, categoryIDs []int) error
	SetProductVehicles(ctx context.Context, productID int, vehicleIDs []int) error
	UpdateProductHTML(ctx context.Context, productID int, html string) error
	GetProducts(ctx context.Context) ([]*models.SemaProduct, error)

	SetBrandRelevance(ctx context.Context, brandID string, relevant bool) error
	SetDatasetRelevance(ctx context.Context, datasetID int, relevant bool) error
	SetCategoryRelevance(ctx context.Context, categoryID int, relevant bool) error
	SetProductRelevance(ctx context.Context, productID int, relevant bool) error
	SetVehicleRelevance(ctx context.Context, vehicleID int, relevant bool) error
}

// ShopifyRepository defines the interface for storefront mirror data access
type ShopifyRepository interface {
	UpsertVendor(ctx context.Context, vendor *models.ShopifyVendor) error
	GetVendors(ctx context.Context) ([]*models.ShopifyVendor, error)

	UpsertProduct(ctx context.Context, product *models.ShopifyProduct) error
	GetProducts(ctx context.Context) ([]*models.ShopifyProduct, error)

	UpsertCollection(ctx context.Context, collection *models.ShopifyCollection) error
	GetCollections(ctx context.Context) ([]*models.ShopifyCollection, error)

	SetProductRelevance(ctx context.Context, id string, relevant bool) error
	SetCollectionRelevance(ctx context.Context, id string, relevant bool) error
}

// LinkRepository defines the interface for the internal link models
type LinkRepository interface {
	CreateVendor(ctx context.Context, vendor *models.Vendor) error
	UpdateVendor(ctx context.Context, vendor *models.Vendor) error
	GetVendors(ctx context.Context) ([]*models.Vendor, error)

	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItems(ctx context.Context) ([]*models.Item, error)

	CreateCategoryPath(ctx context.Context, path *models.CategoryPath) error
	UpdateCategoryPath(ctx context.Context, path *models.CategoryPath) error
	GetCategoryPaths(ctx context.Context) ([]*models.CategoryPath, error)

	SetVendorRelevance(ctx context.Context, id string, relevant bool) error
	SetItemRelevance(ctx context.Context, id string, relevant bool) error
	SetCategoryPathRelevance(ctx context.Context, id string, relevant bool) error
}

// QueryOptions represents options for list queries
type QueryOptions struct {
	Limit        int
	Offset       int
	OrderBy      string
	OrderDir     string // "ASC" or "DESC"
	OnlyRelevant bool
}

// SyncRun records a pipeline run in the history log
type SyncRun struct {
	ID          int64      `json:"id,omitempty"`
	Action      string     `json:"action"`
	Source      string     `json:"source"`
	Count       int        `json:"count"`
	Details     string     `json:"details,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
