// Package file provides file-based output adapters for exporting the
// storefront catalog to JSON and CSV for review before a push.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ecommercejockey/jockey/internal/output"
	"github.com/ecommercejockey/jockey/pkg/models"
)

const JSONAdapterName = "json"

// JSONConfig holds JSON file output configuration
type JSONConfig struct {
	OutputDir string // Directory for output files
	Pretty    bool   // Pretty-print JSON
}

// JSONAdapter implements the output.Adapter interface for JSON files
type JSONAdapter struct {
	*output.BaseAdapter
	config JSONConfig
}

// NewJSONAdapter creates a new JSON file adapter
func NewJSONAdapter(cfg JSONConfig) *JSONAdapter {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output/export"
	}

	return &JSONAdapter{
		BaseAdapter: output.NewBaseAdapter(JSONAdapterName),
		config:      cfg,
	}
}

// Connect creates the output directory
func (a *JSONAdapter) Connect(ctx context.Context) error {
	if err := os.MkdirAll(a.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	a.SetConnected(true)
	return nil
}

// Close cleans up resources
func (a *JSONAdapter) Close() error {
	a.SetConnected(false)
	return nil
}

// Test verifies the output directory is writable
func (a *JSONAdapter) Test(ctx context.Context) error {
	testFile := filepath.Join(a.config.OutputDir, ".test")
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	f.Close()
	os.Remove(testFile)
	return nil
}

// ExportProducts exports products to a JSON file
func (a *JSONAdapter) ExportProducts(ctx context.Context, products []*models.ShopifyProduct, opts output.ExportOptions) (*output.ExportResult, error) {
	result := &output.ExportResult{
		StartedAt: time.Now(),
	}

	if !a.IsConnected() {
		if err := a.Connect(ctx); err != nil {
			result.Error = err
			return result, err
		}
	}

	filtered := filterProducts(products, opts)

	if opts.DryRun {
		result.ProductsExported = len(filtered)
		result.Success = true
		result.Details = fmt.Sprintf("Dry run: would export %d products", len(filtered))
		result.CompletedAt = time.Now()
		return result, nil
	}

	timestamp := time.Now().Format("2006-01-02_150405")
	filename := filepath.Join(a.config.OutputDir, fmt.Sprintf("products_%s.json", timestamp))

	envelope := struct {
		Version    string                   `json:"version"`
		ExportedAt time.Time                `json:"exported_at"`
		Count      int                      `json:"count"`
		Products   []*models.ShopifyProduct `json:"products"`
	}{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(filtered),
		Products:   filtered,
	}

	if err := a.writeJSON(filename, envelope); err != nil {
		result.Error = err
		return result, err
	}

	result.Destination = filename
	result.ProductsExported = len(filtered)
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d products to %s", len(filtered), filename)
	result.CompletedAt = time.Now()

	return result, nil
}

// ExportCollections exports smart collections to a JSON file
func (a *JSONAdapter) ExportCollections(ctx context.Context, collections []*models.ShopifyCollection, opts output.ExportOptions) (*output.ExportResult, error) {
	result := &output.ExportResult{
		StartedAt: time.Now(),
	}

	if !a.IsConnected() {
		if err := a.Connect(ctx); err != nil {
			result.Error = err
			return result, err
		}
	}

	filtered := filterCollections(collections, opts)

	if opts.DryRun {
		result.CollectionsExported = len(filtered)
		result.Success = true
		result.Details = fmt.Sprintf("Dry run: would export %d collections", len(filtered))
		result.CompletedAt = time.Now()
		return result, nil
	}

	timestamp := time.Now().Format("2006-01-02_150405")
	filename := filepath.Join(a.config.OutputDir, fmt.Sprintf("collections_%s.json", timestamp))

	envelope := struct {
		Version     string                      `json:"version"`
		ExportedAt  time.Time                   `json:"exported_at"`
		Count       int                         `json:"count"`
		Collections []*models.ShopifyCollection `json:"collections"`
	}{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Count:       len(filtered),
		Collections: filtered,
	}

	if err := a.writeJSON(filename, envelope); err != nil {
		result.Error = err
		return result, err
	}

	result.Destination = filename
	result.CollectionsExported = len(filtered)
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d collections to %s", len(filtered), filename)
	result.CompletedAt = time.Now()

	return result, nil
}

func (a *JSONAdapter) writeJSON(filename string, v interface{}) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if a.config.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

func filterProducts(products []*models.ShopifyProduct, opts output.ExportOptions) []*models.ShopifyProduct {
	filtered := products
	if opts.OnlyRelevant {
		filtered = make([]*models.ShopifyProduct, 0)
		for _, p := range products {
			if p.IsRelevant {
				filtered = append(filtered, p)
			}
		}
	}
	if len(opts.SKUs) > 0 {
		skuSet := make(map[string]bool)
		for _, sku := range opts.SKUs {
			skuSet[sku] = true
		}
		temp := make([]*models.ShopifyProduct, 0)
		for _, p := range filtered {
			if v := p.FirstVariant(); v != nil && skuSet[v.SKU] {
				temp = append(temp, p)
			}
		}
		filtered = temp
	}
	return filtered
}

func filterCollections(collections []*models.ShopifyCollection, opts output.ExportOptions) []*models.ShopifyCollection {
	if !opts.OnlyRelevant {
		return collections
	}
	filtered := make([]*models.ShopifyCollection, 0)
	for _, c := range collections {
		if c.IsRelevant {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
