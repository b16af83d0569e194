package output

import (
	"context"
	"time"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// ExportOptions configures export behavior
type ExportOptions struct {
	OnlyRelevant  bool     // Only export relevant records
	IncludeImages bool     // Include image uploads
	SKUs          []string // Specific SKUs to export
	DryRun        bool     // Preview without actually exporting
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Destination         string // Where data was exported
	ProductsExported    int    // Number of products exported
	CollectionsExported int    // Number of collections exported
	ImagesExported      int    // Number of images exported
	Success             bool
	Error               error
	StartedAt           time.Time
	CompletedAt         time.Time
	Details             string // Human-readable details
}

// Adapter defines the interface for storefront output adapters
type Adapter interface {
	// Name returns the adapter's unique identifier
	Name() string

	// Connect establishes connection to the output destination
	Connect(ctx context.Context) error

	// Close cleans up any resources
	Close() error

	// ExportProducts pushes products to the destination
	ExportProducts(ctx context.Context, products []*models.ShopifyProduct, opts ExportOptions) (*ExportResult, error)

	// ExportCollections pushes smart collections to the destination
	ExportCollections(ctx context.Context, collections []*models.ShopifyCollection, opts ExportOptions) (*ExportResult, error)

	// Test verifies connectivity to the destination
	Test(ctx context.Context) error
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct {
	name      string
	connected bool
}

// NewBaseAdapter creates a new base adapter
func NewBaseAdapter(name string) *BaseAdapter {
	return &BaseAdapter{
		name: name,
	}
}

func (b *BaseAdapter) Name() string {
	return b.name
}

func (b *BaseAdapter) IsConnected() bool {
	return b.connected
}

func (b *BaseAdapter) SetConnected(connected bool) {
	b.connected = connected
}
