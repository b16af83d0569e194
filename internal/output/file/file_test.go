package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommercejockey/jockey/internal/output"
	"github.com/ecommercejockey/jockey/pkg/models"
)

func exportProducts() []*models.ShopifyProduct {
	return []*models.ShopifyProduct{
		{
			ID:          "sp1",
			Title:       "Wrangler Tire",
			Vendor:      &models.ShopifyVendor{ID: "sv1", Name: "Goodyear Tire"},
			ProductType: models.ProductTypeAutomotive,
			Tags:        []string{"vendor:goodyear-tire", "category:tires"},
			IsRelevant:  true,
			Variants: []*models.ShopifyVariant{{
				Title:      models.DefaultVariantTitle,
				SKU:        "GY-100",
				Price:      60,
				Cost:       50,
				Weight:     12.5,
				WeightUnit: models.WeightUnitLB,
			}},
			Images: []models.ShopifyImage{{Src: "https://img/gy-100.jpg", Position: 1}},
		},
		{
			ID:    "sp2",
			Title: "Not Ready Yet",
			Variants: []*models.ShopifyVariant{{
				Title: models.DefaultVariantTitle,
				SKU:   "GY-200",
			}},
		},
	}
}

func findExport(t *testing.T, dir, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}

func TestJSONExportProducts(t *testing.T) {
	dir := t.TempDir()
	adapter := NewJSONAdapter(JSONConfig{OutputDir: dir, Pretty: true})

	result, err := adapter.ExportProducts(context.Background(), exportProducts(), output.ExportOptions{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ProductsExported)

	data, err := os.ReadFile(findExport(t, dir, "products_*.json"))
	require.NoError(t, err)

	var envelope struct {
		Version  string                   `json:"version"`
		Count    int                      `json:"count"`
		Products []*models.ShopifyProduct `json:"products"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "1.0", envelope.Version)
	assert.Equal(t, 2, envelope.Count)
	require.Len(t, envelope.Products, 2)
	assert.Equal(t, "Wrangler Tire", envelope.Products[0].Title)
	assert.Equal(t, "GY-100", envelope.Products[0].Variants[0].SKU)
}

func TestJSONExportOnlyRelevant(t *testing.T) {
	dir := t.TempDir()
	adapter := NewJSONAdapter(JSONConfig{OutputDir: dir})

	result, err := adapter.ExportProducts(context.Background(), exportProducts(),
		output.ExportOptions{OnlyRelevant: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProductsExported)
}

func TestJSONExportBySKU(t *testing.T) {
	dir := t.TempDir()
	adapter := NewJSONAdapter(JSONConfig{OutputDir: dir})

	result, err := adapter.ExportProducts(context.Background(), exportProducts(),
		output.ExportOptions{SKUs: []string{"GY-200"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProductsExported)
}

func TestJSONExportDryRun(t *testing.T) {
	dir := t.TempDir()
	adapter := NewJSONAdapter(JSONConfig{OutputDir: dir})

	result, err := adapter.ExportProducts(context.Background(), exportProducts(),
		output.ExportOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ProductsExported)

	matches, err := filepath.Glob(filepath.Join(dir, "products_*.json"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCSVExportProducts(t *testing.T) {
	dir := t.TempDir()
	adapter := NewCSVAdapter(CSVConfig{OutputDir: dir})

	result, err := adapter.ExportProducts(context.Background(), exportProducts(), output.ExportOptions{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ProductsExported)
	assert.Equal(t, 1, result.ImagesExported)

	f, err := os.Open(findExport(t, dir, "products_*.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "SKU", rows[0][0])
	assert.Equal(t, []string{
		"GY-100", "Wrangler Tire", "Goodyear Tire", models.ProductTypeAutomotive,
		"vendor:goodyear-tire, category:tires",
		"60.00", "50.00", "12.5", "lb",
		"false", "true", "https://img/gy-100.jpg",
	}, rows[1])
}

func TestCSVExportCollections(t *testing.T) {
	dir := t.TempDir()
	adapter := NewCSVAdapter(CSVConfig{OutputDir: dir})

	root := &models.ShopifyCollection{ID: "c1", Title: "Wheels & Tires", IsRelevant: true}
	branch := &models.ShopifyCollection{
		ID:        "c2",
		Title:     "Wheels & Tires // Tires",
		Parent:    root,
		Tags:      []string{"category:wheels-tires", "category:tires"},
		Rules:     []models.ShopifyCollectionRule{{Column: "tag", Relation: "equals", Condition: "category:tires"}},
		SortOrder: models.SortBestSelling,
	}

	result, err := adapter.ExportCollections(context.Background(),
		[]*models.ShopifyCollection{root, branch}, output.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.CollectionsExported)

	f, err := os.Open(findExport(t, dir, "collections_*.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Wheels & Tires // Tires", "Wheels & Tires",
		"category:wheels-tires, category:tires",
		"tag equals category:tires",
		models.SortBestSelling, "false", "false",
	}, rows[2])
}

func TestAdapterConnectAndTest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "export")
	adapter := NewJSONAdapter(JSONConfig{OutputDir: dir})

	require.NoError(t, adapter.Connect(context.Background()))
	assert.True(t, adapter.IsConnected())
	require.NoError(t, adapter.Test(context.Background()))

	require.NoError(t, adapter.Close())
	assert.False(t, adapter.IsConnected())
}
