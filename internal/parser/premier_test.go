package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeed(t *testing.T) {
	feed := strings.Join([]string{
		"Premier Part Number,Vendor Part Number,Description,Manufacturer,UPC,Part Status,Weight,Cost CAD,Cost USD,Image",
		`GY-100,100,Wrangler All-Terrain,Goodyear Tire,012345678905,Active,12.5,"$1,250.00",980.00,https://img/gy-100.jpg`,
		"GY-200,200,Wrangler Mud-Terrain,Goodyear Tire,012345678912,Active,14,1300.00,1020.00,",
		"HK-10,10,Brake Pads,Hawk,,Discontinued,3.2,89.99,,https://img/hk-10.jpg",
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(feed))
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Products, 3)

	first := result.Products[0]
	assert.Equal(t, "GY-100", first.PremierPartNumber)
	assert.Equal(t, "100", first.VendorPartNumber)
	assert.Equal(t, "Wrangler All-Terrain", first.Description)
	assert.Equal(t, "012345678905", first.UPC)
	assert.Equal(t, "Active", first.PartStatus)
	assert.Equal(t, 12.5, first.Weight)
	assert.Equal(t, 1250.0, first.CostCAD)
	assert.Equal(t, 980.0, first.CostUSD)
	assert.Equal(t, "https://img/gy-100.jpg", first.PrimaryImage)

	// Rows from the same manufacturer share one record
	require.Len(t, result.Manufacturers, 2)
	assert.Equal(t, "Goodyear Tire", result.Manufacturers[0].Name)
	assert.Same(t, result.Manufacturers[0], result.Products[0].Manufacturer)
	assert.Same(t, result.Manufacturers[0], result.Products[1].Manufacturer)
	assert.Equal(t, "Hawk", result.Products[2].Manufacturer.Name)
}

func TestParseAlternateHeaders(t *testing.T) {
	feed := strings.Join([]string{
		"ItemNumber,Mfr Part Number,Part Description,Brand,Barcode,Status,Shipping Weight,Cost,Retail",
		"GY-100,100,Wrangler,Goodyear Tire,012345678905,Active,12.5,980.00,1599.99",
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	product := result.Products[0]
	assert.Equal(t, "GY-100", product.PremierPartNumber)
	assert.Equal(t, "100", product.VendorPartNumber)
	assert.Equal(t, "Wrangler", product.Description)
	assert.Equal(t, 980.0, product.CostUSD)
	assert.Equal(t, 1599.99, product.MSRPUSD)
}

func TestParseStripsBOM(t *testing.T) {
	feed := "\uFEFFpart_number,description\nGY-100,Wrangler\n"

	result, err := NewParser().Parse(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "GY-100", result.Products[0].PremierPartNumber)
}

func TestParseDuplicatePartNumbers(t *testing.T) {
	feed := strings.Join([]string{
		"part_number,description",
		"GY-100,Wrangler",
		"GY-100,Wrangler again",
		"GY-200,Other",
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(feed))
	require.NoError(t, err)
	assert.Len(t, result.Products, 2)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "duplicate part GY-100")
}

func TestParseSkipsBlankRows(t *testing.T) {
	feed := "part_number,description\nGY-100,Wrangler\n\n,missing part number\nGY-200,Other\n"

	result, err := NewParser().Parse(strings.NewReader(feed))
	require.NoError(t, err)
	assert.Len(t, result.Products, 2)
	assert.Empty(t, result.Errors)
}

func TestParseMissingPartNumberColumn(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader("description,manufacturer\nWrangler,Goodyear\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a part number column")
}

func TestParseBadFloatsFallBackToZero(t *testing.T) {
	feed := "part_number,weight,cost_usd\nGY-100,n/a,call\n"

	result, err := NewParser().Parse(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Zero(t, result.Products[0].Weight)
	assert.Zero(t, result.Products[0].CostUSD)
}
