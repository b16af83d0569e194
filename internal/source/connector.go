package source

import (
	"context"
)

// Capability represents a specific feature a connector supports
type Capability string

const (
	CapabilityFetchManufacturers Capability = "fetch_manufacturers"
	CapabilityFetchBrands        Capability = "fetch_brands"
	CapabilityFetchDatasets      Capability = "fetch_datasets"
	CapabilityFetchCategories    Capability = "fetch_categories"
	CapabilityFetchProducts      Capability = "fetch_products"
	CapabilityFetchVehicles      Capability = "fetch_vehicles"
	CapabilityFetchInventory     Capability = "fetch_inventory"
	CapabilityFetchPricing       Capability = "fetch_pricing"
	CapabilityFetchHTML          Capability = "fetch_html"
)

// Connector defines the interface for vendor API connectors
type Connector interface {
	// Name returns the connector's unique identifier
	Name() string

	// Capabilities returns the list of features this connector supports
	Capabilities() []Capability

	// Connect establishes a session with the vendor API
	// This should validate credentials and retrieve any tokens
	Connect(ctx context.Context) error

	// Close cleans up any resources
	Close() error

	// Test performs a connectivity and credentials test
	Test(ctx context.Context) error
}

// HasCapability checks if a connector supports a specific capability
func HasCapability(c Connector, cap Capability) bool {
	for _, capability := range c.Capabilities() {
		if capability == cap {
			return true
		}
	}
	return false
}

// BaseConnector provides common functionality for connectors
type BaseConnector struct {
	name         string
	capabilities []Capability
	connected    bool
}

// NewBaseConnector creates a new base connector with common fields
func NewBaseConnector(name string, caps []Capability) *BaseConnector {
	return &BaseConnector{
		name:         name,
		capabilities: caps,
	}
}

func (b *BaseConnector) Name() string {
	return b.name
}

func (b *BaseConnector) Capabilities() []Capability {
	return b.capabilities
}

func (b *BaseConnector) IsConnected() bool {
	return b.connected
}

func (b *BaseConnector) SetConnected(connected bool) {
	b.connected = connected
}
