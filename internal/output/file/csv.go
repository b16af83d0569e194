package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ecommercejockey/jockey/internal/output"
	"github.com/ecommercejockey/jockey/pkg/models"
)

const CSVAdapterName = "csv"

// CSVConfig holds CSV file output configuration
type CSVConfig struct {
	OutputDir string // Directory for output files
}

// CSVAdapter implements the output.Adapter interface for CSV files
type CSVAdapter struct {
	*output.BaseAdapter
	config CSVConfig
}

// NewCSVAdapter creates a new CSV file adapter
func NewCSVAdapter(cfg CSVConfig) *CSVAdapter {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output/export"
	}

	return &CSVAdapter{
		BaseAdapter: output.NewBaseAdapter(CSVAdapterName),
		config:      cfg,
	}
}

// Connect creates the output directory
func (a *CSVAdapter) Connect(ctx context.Context) error {
	if err := os.MkdirAll(a.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	a.SetConnected(true)
	return nil
}

// Close cleans up resources
func (a *CSVAdapter) Close() error {
	a.SetConnected(false)
	return nil
}

// Test verifies the output directory is writable
func (a *CSVAdapter) Test(ctx context.Context) error {
	testFile := filepath.Join(a.config.OutputDir, ".test")
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	f.Close()
	os.Remove(testFile)
	return nil
}

// ExportProducts exports products to a CSV file
func (a *CSVAdapter) ExportProducts(ctx context.Context, products []*models.ShopifyProduct, opts output.ExportOptions) (*output.ExportResult, error) {
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
	filename := filepath.Join(a.config.OutputDir, fmt.Sprintf("products_%s.csv", timestamp))

	f, err := os.Create(filename)
	if err != nil {
		result.Error = err
		return result, err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{
		"SKU", "Title", "Vendor", "Type", "Tags",
		"Price", "Cost", "Weight", "Weight Unit",
		"Published", "Relevant", "Image Src",
	}
	if err := writer.Write(header); err != nil {
		result.Error = err
		return result, err
	}

	imagesExported := 0
	for _, p := range filtered {
		row := productRow(p)
		if err := writer.Write(row); err != nil {
			result.Error = err
			return result, err
		}
		imagesExported += len(p.Images)
	}

	result.Destination = filename
	result.ProductsExported = len(filtered)
	result.ImagesExported = imagesExported
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d products to %s", len(filtered), filename)
	result.CompletedAt = time.Now()

	return result, nil
}

// ExportCollections exports smart collections to a CSV file
func (a *CSVAdapter) ExportCollections(ctx context.Context, collections []*models.ShopifyCollection, opts output.ExportOptions) (*output.ExportResult, error) {
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
	filename := filepath.Join(a.config.OutputDir, fmt.Sprintf("collections_%s.csv", timestamp))

	f, err := os.Create(filename)
	if err != nil {
		result.Error = err
		return result, err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{
		"Title", "Parent", "Tags", "Rules", "Sort Order",
		"Published", "Relevant",
	}
	if err := writer.Write(header); err != nil {
		result.Error = err
		return result, err
	}

	for _, c := range filtered {
		row := collectionRow(c)
		if err := writer.Write(row); err != nil {
			result.Error = err
			return result, err
		}
	}

	result.Destination = filename
	result.CollectionsExported = len(filtered)
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d collections to %s", len(filtered), filename)
	result.CompletedAt = time.Now()

	return result, nil
}

func productRow(p *models.ShopifyProduct) []string {
	vendor := ""
	if p.Vendor != nil {
		vendor = p.Vendor.Name
	}
	sku := ""
	price := ""
	cost := ""
	weight := ""
	weightUnit := ""
	if v := p.FirstVariant(); v != nil {
		sku = v.SKU
		price = strconv.FormatFloat(v.Price, 'f', 2, 64)
		cost = strconv.FormatFloat(v.Cost, 'f', 2, 64)
		weight = strconv.FormatFloat(v.Weight, 'f', -1, 64)
		weightUnit = v.WeightUnit
	}
	imageSrc := ""
	if len(p.Images) > 0 {
		imageSrc = p.Images[0].Src
	}

	return []string{
		sku,
		p.Title,
		vendor,
		p.ProductType,
		strings.Join(p.Tags, ", "),
		price,
		cost,
		weight,
		weightUnit,
		strconv.FormatBool(p.IsPublished),
		strconv.FormatBool(p.IsRelevant),
		imageSrc,
	}
}

func collectionRow(c *models.ShopifyCollection) []string {
	parent := ""
	if c.Parent != nil {
		parent = c.Parent.Title
	}
	rules := make([]string, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, fmt.Sprintf("%s %s %s", r.Column, r.Relation, r.Condition))
	}

	return []string{
		c.Title,
		parent,
		strings.Join(c.Tags, ", "),
		strings.Join(rules, "; "),
		c.SortOrder,
		strconv.FormatBool(c.IsPublished),
		strconv.FormatBool(c.IsRelevant),
	}
}
