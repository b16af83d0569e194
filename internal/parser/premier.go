// Package parser reads the Premier distributor feed CSV into catalog
// records. The feed is the bulk entry point for the product catalog;
// inventory and pricing refreshes then keep the imported rows current
// through the API.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// ParseResult contains the results of parsing a Premier feed file
type ParseResult struct {
	Manufacturers []*models.PremierManufacturer
	Products      []*models.PremierProduct
	Errors        []string
}

// Parser handles parsing of Premier feed CSV files
type Parser struct {
	// Column indices, detected from the header
	colPartNumber       int
	colVendorPartNumber int
	colDescription      int
	colManufacturer     int
	colUPC              int
	colPartStatus       int
	colWeight           int
	colCostCAD          int
	colCostUSD          int
	colJobberCAD        int
	colJobberUSD        int
	colMSRPCAD          int
	colMSRPUSD          int
	colMAPCAD           int
	colMAPUSD           int
	colImage            int
}

// NewParser creates a new Premier feed parser
func NewParser() *Parser {
	return &Parser{
		colPartNumber:       -1,
		colVendorPartNumber: -1,
		colDescription:      -1,
		colManufacturer:     -1,
		colUPC:              -1,
		colPartStatus:       -1,
		colWeight:           -1,
		colCostCAD:          -1,
		colCostUSD:          -1,
		colJobberCAD:        -1,
		colJobberUSD:        -1,
		colMSRPCAD:          -1,
		colMSRPUSD:          -1,
		colMAPCAD:           -1,
		colMAPUSD:           -1,
		colImage:            -1,
	}
}

// ParseFile parses a Premier feed CSV file
func (p *Parser) ParseFile(filePath string) (*ParseResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Parse parses Premier feed CSV data from a reader
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	p.mapHeader(header)

	if p.colPartNumber < 0 {
		return nil, fmt.Errorf("feed is missing a part number column")
	}

	result := &ParseResult{}
	manufacturers := make(map[string]*models.PremierManufacturer)
	seenParts := make(map[string]bool)
	lineNum := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNum, err))
			lineNum++
			continue
		}
		lineNum++

		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}

		partNumber := p.field(row, p.colPartNumber)
		if partNumber == "" {
			continue
		}
		if seenParts[partNumber] {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: duplicate part %s", lineNum, partNumber))
			continue
		}
		seenParts[partNumber] = true

		product := &models.PremierProduct{
			PremierPartNumber: partNumber,
			VendorPartNumber:  p.field(row, p.colVendorPartNumber),
			Description:       p.field(row, p.colDescription),
			UPC:               p.field(row, p.colUPC),
			PartStatus:        p.field(row, p.colPartStatus),
			PrimaryImage:      p.field(row, p.colImage),
			Weight:            p.float(row, p.colWeight),
			CostCAD:           p.float(row, p.colCostCAD),
			CostUSD:           p.float(row, p.colCostUSD),
			JobberCAD:         p.float(row, p.colJobberCAD),
			JobberUSD:         p.float(row, p.colJobberUSD),
			MSRPCAD:           p.float(row, p.colMSRPCAD),
			MSRPUSD:           p.float(row, p.colMSRPUSD),
			MAPCAD:            p.float(row, p.colMAPCAD),
			MAPUSD:            p.float(row, p.colMAPUSD),
		}

		if name := p.field(row, p.colManufacturer); name != "" {
			manufacturer, ok := manufacturers[name]
			if !ok {
				manufacturer = &models.PremierManufacturer{Name: name}
				manufacturers[name] = manufacturer
				result.Manufacturers = append(result.Manufacturers, manufacturer)
			}
			product.Manufacturer = manufacturer
		}

		result.Products = append(result.Products, product)
	}

	return result, nil
}

// mapHeader detects column positions, accepting a few header spellings seen
// in Premier exports
func (p *Parser) mapHeader(header []string) {
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		name = strings.ReplaceAll(name, " ", "_")
		switch name {
		case "premier_part_number", "part_number", "itemnumber", "item_number":
			p.colPartNumber = i
		case "vendor_part_number", "vendor_part_num", "mfr_part_number":
			p.colVendorPartNumber = i
		case "description", "part_description":
			p.colDescription = i
		case "manufacturer", "manufacturer_name", "brand":
			p.colManufacturer = i
		case "upc", "upc_code", "barcode":
			p.colUPC = i
		case "part_status", "status":
			p.colPartStatus = i
		case "weight", "shipping_weight":
			p.colWeight = i
		case "cost_cad":
			p.colCostCAD = i
		case "cost_usd", "cost":
			p.colCostUSD = i
		case "jobber_cad":
			p.colJobberCAD = i
		case "jobber_usd", "jobber":
			p.colJobberUSD = i
		case "msrp_cad", "retail_cad":
			p.colMSRPCAD = i
		case "msrp_usd", "msrp", "retail":
			p.colMSRPUSD = i
		case "map_cad":
			p.colMAPCAD = i
		case "map_usd", "map":
			p.colMAPUSD = i
		case "image", "image_url", "primary_image":
			p.colImage = i
		}
	}
}

func (p *Parser) field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (p *Parser) float(row []string, idx int) float64 {
	raw := p.field(row, idx)
	if raw == "" {
		return 0
	}
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
