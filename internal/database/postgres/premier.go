package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// Warehouse inventory columns keyed by the update field names produced by
// the Premier connector
var inventoryColumns = map[string]string{
	"inventory_ab": "inventory_ab",
	"inventory_po": "inventory_po",
	"inventory_ut": "inventory_ut",
	"inventory_ky": "inventory_ky",
	"inventory_tx": "inventory_tx",
	"inventory_ca": "inventory_ca",
	"inventory_wa": "inventory_wa",
	"inventory_co": "inventory_co",
}

// Pricing columns keyed by the update field names produced by the Premier
// connector
var pricingColumns = map[string]string{
	"cost_cad":   "cost_cad",
	"cost_usd":   "cost_usd",
	"jobber_cad": "jobber_cad",
	"jobber_usd": "jobber_usd",
	"msrp_cad":   "msrp_cad",
	"msrp_usd":   "msrp_usd",
	"map_cad":    "map_cad",
	"map_usd":    "map_usd",
}

// PremierRepo implements the PremierRepository interface for PostgreSQL
type PremierRepo struct {
	client *Client
}

// NewPremierRepo creates a new PostgreSQL Premier repository
func NewPremierRepo(client *Client) *PremierRepo {
	return &PremierRepo{client: client}
}

// UpsertManufacturer inserts or updates a manufacturer by name
func (r *PremierRepo) UpsertManufacturer(ctx context.Context, manufacturer *models.PremierManufacturer) error {
	if manufacturer.ID == "" {
		manufacturer.ID = uuid.New().String()
	}

	query := `
		INSERT INTO premier_manufacturers (id, name, slug, primary_image, is_relevant, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			slug = EXCLUDED.slug,
			primary_image = EXCLUDED.primary_image,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.client.pool.QueryRow(ctx, query,
		manufacturer.ID, manufacturer.Name, manufacturer.Slug,
		manufacturer.PrimaryImage, manufacturer.IsRelevant, time.Now(),
	).Scan(&manufacturer.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert manufacturer: %w", err)
	}

	return nil
}

// GetManufacturers retrieves all manufacturers ordered by name
func (r *PremierRepo) GetManufacturers(ctx context.Context) ([]*models.PremierManufacturer, error) {
	query := `
		SELECT id, name, slug, primary_image, is_relevant
		FROM premier_manufacturers
		ORDER BY name
	`

	rows, err := r.client.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query manufacturers: %w", err)
	}
	defer rows.Close()

	var manufacturers []*models.PremierManufacturer
	for rows.Next() {
		var m models.PremierManufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.Slug, &m.PrimaryImage, &m.IsRelevant); err != nil {
			return nil, fmt.Errorf("failed to scan manufacturer: %w", err)
		}
		manufacturers = append(manufacturers, &m)
	}

	return manufacturers, rows.Err()
}

// UpsertProduct inserts or updates a product by Premier part number
func (r *PremierRepo) UpsertProduct(ctx context.Context, product *models.PremierProduct) error {
	if product.Manufacturer == nil || product.Manufacturer.ID == "" {
		return fmt.Errorf("product %s has no manufacturer", product.PremierPartNumber)
	}

	query := `
		INSERT INTO premier_products (
			premier_part_number, vendor_part_number, description, manufacturer_id,
			upc, part_status, weight, primary_image, is_relevant, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (premier_part_number) DO UPDATE SET
			vendor_part_number = EXCLUDED.vendor_part_number,
			description = EXCLUDED.description,
			manufacturer_id = EXCLUDED.manufacturer_id,
			upc = EXCLUDED.upc,
			part_status = EXCLUDED.part_status,
			weight = EXCLUDED.weight,
			primary_image = EXCLUDED.primary_image,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.client.pool.Exec(ctx, query,
		product.PremierPartNumber, product.VendorPartNumber, product.Description,
		product.Manufacturer.ID, product.UPC, product.PartStatus, product.Weight,
		product.PrimaryImage, product.IsRelevant, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// GetProducts retrieves all products with their manufacturers
func (r *PremierRepo) GetProducts(ctx context.Context) ([]*models.PremierProduct, error) {
	query := `
		SELECT
			p.premier_part_number, p.vendor_part_number, p.description,
			p.upc, p.part_status, p.weight, p.primary_image,
			p.cost_cad, p.cost_usd, p.jobber_cad, p.jobber_usd,
			p.msrp_cad, p.msrp_usd, p.map_cad, p.map_usd,
			p.inventory_ab, p.inventory_po, p.inventory_ut, p.inventory_ky,
			p.inventory_tx, p.inventory_ca, p.inventory_wa, p.inventory_co,
			p.is_relevant,
			m.id, m.name, m.slug, m.primary_image, m.is_relevant
		FROM premier_products p
		JOIN premier_manufacturers m ON m.id = p.manufacturer_id
		ORDER BY p.premier_part_number
	`

	rows, err := r.client.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	manufacturers := make(map[string]*models.PremierManufacturer)
	var products []*models.PremierProduct
	for rows.Next() {
		p, err := scanPremierProduct(rows)
		if err != nil {
			return nil, err
		}
		// Share one manufacturer instance across its products
		if existing, ok := manufacturers[p.Manufacturer.ID]; ok {
			p.Manufacturer = existing
		} else {
			manufacturers[p.Manufacturer.ID] = p.Manufacturer
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func scanPremierProduct(row pgx.Row) (*models.PremierProduct, error) {
	var p models.PremierProduct
	var m models.PremierManufacturer

	err := row.Scan(
		&p.PremierPartNumber, &p.VendorPartNumber, &p.Description,
		&p.UPC, &p.PartStatus, &p.Weight, &p.PrimaryImage,
		&p.CostCAD, &p.CostUSD, &p.JobberCAD, &p.JobberUSD,
		&p.MSRPCAD, &p.MSRPUSD, &p.MAPCAD, &p.MAPUSD,
		&p.InventoryAB, &p.InventoryPO, &p.InventoryUT, &p.InventoryKY,
		&p.InventoryTX, &p.InventoryCA, &p.InventoryWA, &p.InventoryCO,
		&p.IsRelevant,
		&m.ID, &m.Name, &m.Slug, &m.PrimaryImage, &m.IsRelevant,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	p.Manufacturer = &m
	return &p, nil
}

// UpdateInventory updates warehouse quantities for a product. Unknown field
// names are rejected.
func (r *PremierRepo) UpdateInventory(ctx context.Context, partNumber string, quantities map[string]int) error {
	for field, quantity := range quantities {
		column, ok := inventoryColumns[field]
		if !ok {
			return fmt.Errorf("unknown inventory field: %s", field)
		}

		query := fmt.Sprintf(
			"UPDATE premier_products SET %s = $1, updated_at = $2 WHERE premier_part_number = $3",
			column,
		)
		if _, err := r.client.pool.Exec(ctx, query, quantity, time.Now(), partNumber); err != nil {
			return fmt.Errorf("failed to update inventory: %w", err)
		}
	}
	return nil
}

// UpdatePricing updates currency pricing for a product. Unknown field names
// are rejected.
func (r *PremierRepo) UpdatePricing(ctx context.Context, partNumber string, prices map[string]float64) error {
	for field, price := range prices {
		column, ok := pricingColumns[field]
		if !ok {
			return fmt.Errorf("unknown pricing field: %s", field)
		}

		query := fmt.Sprintf(
			"UPDATE premier_products SET %s = $1, updated_at = $2 WHERE premier_part_number = $3",
			column,
		)
		if _, err := r.client.pool.Exec(ctx, query, price, time.Now(), partNumber); err != nil {
			return fmt.Errorf("failed to update pricing: %w", err)
		}
	}
	return nil
}

// SetManufacturerRelevance updates a manufacturer's relevancy flag
func (r *PremierRepo) SetManufacturerRelevance(ctx context.Context, id string, relevant bool) error {
	tag, err := r.client.pool.Exec(ctx,
		"UPDATE premier_manufacturers SET is_relevant = $1, updated_at = $2 WHERE id = $3",
		relevant, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update manufacturer relevance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("manufacturer not found: %s", id)
	}
	return nil
}

// SetProductRelevance updates a product's relevancy flag
func (r *PremierRepo) SetProductRelevance(ctx context.Context, partNumber string, relevant bool) error {
	tag, err := r.client.pool.Exec(ctx,
		"UPDATE premier_products SET is_relevant = $1, updated_at = $2 WHERE premier_part_number = $3",
		relevant, time.Now(), partNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update product relevance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product not found: %s", partNumber)
	}
	return nil
}
