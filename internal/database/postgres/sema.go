package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// SemaRepo implements the SemaRepository interface for PostgreSQL
type SemaRepo struct {
	client *Client
}

// NewSemaRepo creates a new PostgreSQL SEMA repository
func NewSemaRepo(client *Client) *SemaRepo {
	return &SemaRepo{client: client}
}

// UpsertBrand inserts or updates a brand by AAIA brand ID
func (r *SemaRepo) UpsertBrand(ctx context.Context, brand *models.SemaBrand) error {
	query := `
		INSERT INTO sema_brands (brand_id, name, primary_image, is_authorized, is_relevant, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (brand_id) DO UPDATE SET
			name = EXCLUDED.name,
			primary_image = EXCLUDED.primary_image,
			is_authorized = EXCLUDED.is_authorized,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.client.pool.Exec(ctx, query,
		brand.BrandID, brand.Name, brand.PrimaryImageURL,
		brand.IsAuthorized, brand.IsRelevant, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert brand: %w", err)
	}
	return nil
}

// GetBrands retrieves all brands with their datasets and dataset vehicles
func (r *SemaRepo) GetBrands(ctx context.Context) ([]*models.SemaBrand, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT brand_id, name, primary_image, is_authorized, is_relevant
		FROM sema_brands
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.SemaBrand)
	var brands []*models.SemaBrand
	for rows.Next() {
		var b models.SemaBrand
		if err := rows.Scan(&b.BrandID, &b.Name, &b.PrimaryImageURL, &b.IsAuthorized, &b.IsRelevant); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		byID[b.BrandID] = &b
		brands = append(brands, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	datasets, err := r.getDatasets(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range datasets {
		brand, ok := byID[entry.brandID]
		if !ok {
			continue
		}
		entry.dataset.Brand = brand
		brand.Datasets = append(brand.Datasets, entry.dataset)
	}

	return brands, nil
}

type datasetEntry struct {
	dataset *models.SemaDataset
	brandID string
}

func (r *SemaRepo) getDatasets(ctx context.Context) ([]datasetEntry, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT dataset_id, name, brand_id, is_authorized, is_relevant
		FROM sema_datasets
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*models.SemaDataset)
	var entries []datasetEntry
	for rows.Next() {
		var d models.SemaDataset
		var brandID string
		if err := rows.Scan(&d.DatasetID, &d.Name, &brandID, &d.IsAuthorized, &d.IsRelevant); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		byID[d.DatasetID] = &d
		entries = append(entries, datasetEntry{dataset: &d, brandID: brandID})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach dataset-level vehicle fitments
	vehicleRows, err := r.client.pool.Query(ctx, `
		SELECT dv.dataset_id, v.vehicle_id, v.base_vehicle_id, v.is_relevant
		FROM sema_dataset_vehicles dv
		JOIN sema_vehicles v ON v.vehicle_id = dv.vehicle_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset vehicles: %w", err)
	}
	defer vehicleRows.Close()

	for vehicleRows.Next() {
		var datasetID int
		var v models.SemaVehicle
		if err := vehicleRows.Scan(&datasetID, &v.VehicleID, &v.BaseVehicleID, &v.IsRelevant); err != nil {
			return nil, fmt.Errorf("failed to scan dataset vehicle: %w", err)
		}
		if d, ok := byID[datasetID]; ok {
			d.Vehicles = append(d.Vehicles, v)
		}
	}

	return entries, vehicleRows.Err()
}

// UpsertDataset inserts or updates a dataset by dataset ID
func (r *SemaRepo) UpsertDataset(ctx context.Context, dataset *models.SemaDataset, brandID string) error {
	query := `
		INSERT INTO sema_datasets (dataset_id, name, brand_id, is_authorized, is_relevant, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (dataset_id) DO UPDATE SET
			name = EXCLUDED.name,
			brand_id = EXCLUDED.brand_id,
			is_authorized = EXCLUDED.is_authorized,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.client.pool.Exec(ctx, query,
		dataset.DatasetID, dataset.Name, brandID,
		dataset.IsAuthorized, dataset.IsRelevant, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert dataset: %w", err)
	}
	return nil
}

// UpsertVehicle inserts or updates a vehicle by vehicle ID
func (r *SemaRepo) UpsertVehicle(ctx context.Context, vehicle models.SemaVehicle) error {
	query := `
		INSERT INTO sema_vehicles (vehicle_id, base_vehicle_id, is_relevant)
		VALUES ($1, $2, $3)
		ON CONFLICT (vehicle_id) DO UPDATE SET
			base_vehicle_id = EXCLUDED.base_vehicle_id
	`

	_, err := r.client.pool.Exec(ctx, query,
		vehicle.VehicleID, vehicle.BaseVehicleID, vehicle.IsRelevant,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle: %w", err)
	}
	return nil
}

// SetDatasetVehicles replaces a dataset's vehicle fitment links
func (r *SemaRepo) SetDatasetVehicles(ctx context.Context, datasetID int, vehicleIDs []int) error {
	return r.replaceLinks(ctx, "sema_dataset_vehicles", "dataset_id", "vehicle_id", datasetID, vehicleIDs)
}

// UpsertCategory inserts or updates a category by category ID
func (r *SemaRepo) UpsertCategory(ctx context.Context, category *models.SemaCategory) error {
	query := `
		INSERT INTO sema_categories (category_id, name, level, is_relevant, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (category_id) DO UPDATE SET
			name = EXCLUDED.name,
			level = EXCLUDED.level,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.client.pool.Exec(ctx, query,
		category.CategoryID, category.Name, category.Level, category.IsRelevant, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}

// SetCategoryParents replaces a category's parent links
func (r *SemaRepo) SetCategoryParents(ctx context.Context, categoryID int, parentIDs []int) error {
	return r.replaceLinks(ctx, "sema_category_parents", "category_id", "parent_id", categoryID, parentIDs)
}

// GetCategories retrieves all categories with parent/child links resolved
func (r *SemaRepo) GetCategories(ctx context.Context) ([]*models.SemaCategory, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT category_id, name, level, is_relevant
		FROM sema_categories
		ORDER BY level, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*models.SemaCategory)
	var categories []*models.SemaCategory
	for rows.Next() {
		var c models.SemaCategory
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Level, &c.IsRelevant); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		byID[c.CategoryID] = &c
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	parentRows, err := r.client.pool.Query(ctx,
		"SELECT category_id, parent_id FROM sema_category_parents")
	if err != nil {
		return nil, fmt.Errorf("failed to query category parents: %w", err)
	}
	defer parentRows.Close()

	for parentRows.Next() {
		var categoryID, parentID int
		if err := parentRows.Scan(&categoryID, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan category parent: %w", err)
		}
		child, childOK := byID[categoryID]
		parent, parentOK := byID[parentID]
		if childOK && parentOK {
			child.Parents = append(child.Parents, parent)
			parent.Children = append(parent.Children, child)
		}
	}

	return categories, parentRows.Err()
}

// UpsertProduct inserts or updates a product by product ID
func (r *SemaRepo) UpsertProduct(ctx context.Context, product *models.SemaProduct, datasetID int) error {
	descJSON, err := json.Marshal(product.DescriptionPiesAttributes)
	if err != nil {
		return fmt.Errorf("failed to serialize description attributes: %w", err)
	}
	assetsJSON, err := json.Marshal(product.DigitalAssetsPiesAttributes)
	if err != nil {
		return fmt.Errorf("failed to serialize digital asset attributes: %w", err)
	}

	query := `
		INSERT INTO sema_products (
			product_id, part_number, dataset_id, html,
			description_pies_attributes, digital_assets_pies_attributes,
			is_relevant, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id) DO UPDATE SET
			part_number = EXCLUDED.part_number,
			dataset_id = EXCLUDED.dataset_id,
			description_pies_attributes = EXCLUDED.description_pies_attributes,
			digital_assets_pies_attributes = EXCLUDED.digital_assets_pies_attributes,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.client.pool.Exec(ctx, query,
		product.ProductID, product.PartNumber, datasetID, product.HTML,
		descJSON, assetsJSON, product.IsRelevant, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// SetProductCategories replaces a product's category links
func (r *SemaRepo) SetProductCategories(ctx context.Context, productID int, categoryIDs []int) error {
	return r.replaceLinks(ctx, "sema_product_categories", "product_id", "category_id", productID, categoryIDs)
}

// SetProductVehicles replaces a product's vehicle fitment links
func (r *SemaRepo) SetProductVehicles(ctx context.Context, productID int, vehicleIDs []int) error {
	return r.replaceLinks(ctx, "sema_product_vehicles", "product_id", "vehicle_id", productID, vehicleIDs)
}

// UpdateProductHTML stores the merchandising HTML for a product
func (r *SemaRepo) UpdateProductHTML(ctx context.Context, productID int, html string) error {
	tag, err := r.client.pool.Exec(ctx,
		"UPDATE sema_products SET html = $1, updated_at = $2 WHERE product_id = $3",
		html, time.Now(), productID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product HTML: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product not found: %d", productID)
	}
	return nil
}

// GetProducts retrieves all products with datasets, categories, and vehicle
// fitments resolved
func (r *SemaRepo) GetProducts(ctx context.Context) ([]*models.SemaProduct, error) {
	brands, err := r.GetBrands(ctx)
	if err != nil {
		return nil, err
	}
	datasetsByID := make(map[int]*models.SemaDataset)
	for _, b := range brands {
		for _, d := range b.Datasets {
			datasetsByID[d.DatasetID] = d
		}
	}

	categories, err := r.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	categoriesByID := make(map[int]*models.SemaCategory)
	for _, c := range categories {
		categoriesByID[c.CategoryID] = c
	}

	rows, err := r.client.pool.Query(ctx, `
		SELECT product_id, part_number, dataset_id, html,
			description_pies_attributes, digital_assets_pies_attributes, is_relevant
		FROM sema_products
		ORDER BY part_number
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*models.SemaProduct)
	var products []*models.SemaProduct
	for rows.Next() {
		var p models.SemaProduct
		var datasetID int
		var descJSON, assetsJSON []byte
		if err := rows.Scan(&p.ProductID, &p.PartNumber, &datasetID, &p.HTML,
			&descJSON, &assetsJSON, &p.IsRelevant); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if err := json.Unmarshal(descJSON, &p.DescriptionPiesAttributes); err != nil {
			return nil, fmt.Errorf("failed to parse description attributes: %w", err)
		}
		if err := json.Unmarshal(assetsJSON, &p.DigitalAssetsPiesAttributes); err != nil {
			return nil, fmt.Errorf("failed to parse digital asset attributes: %w", err)
		}
		p.Dataset = datasetsByID[datasetID]
		byID[p.ProductID] = &p
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach category links
	categoryRows, err := r.client.pool.Query(ctx,
		"SELECT product_id, category_id FROM sema_product_categories")
	if err != nil {
		return nil, fmt.Errorf("failed to query product categories: %w", err)
	}
	defer categoryRows.Close()

	for categoryRows.Next() {
		var productID, categoryID int
		if err := categoryRows.Scan(&productID, &categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan product category: %w", err)
		}
		p, pOK := byID[productID]
		c, cOK := categoriesByID[categoryID]
		if pOK && cOK {
			p.Categories = append(p.Categories, c)
		}
	}
	if err := categoryRows.Err(); err != nil {
		return nil, err
	}

	// Attach product-level vehicle fitments
	vehicleRows, err := r.client.pool.Query(ctx, `
		SELECT pv.product_id, v.vehicle_id, v.base_vehicle_id, v.is_relevant
		FROM sema_product_vehicles pv
		JOIN sema_vehicles v ON v.vehicle_id = pv.vehicle_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product vehicles: %w", err)
	}
	defer vehicleRows.Close()

	for vehicleRows.Next() {
		var productID int
		var v models.SemaVehicle
		if err := vehicleRows.Scan(&productID, &v.VehicleID, &v.BaseVehicleID, &v.IsRelevant); err != nil {
			return nil, fmt.Errorf("failed to scan product vehicle: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Vehicles = append(p.Vehicles, v)
		}
	}

	return products, vehicleRows.Err()
}

// SetBrandRelevance updates a brand's relevancy flag
func (r *SemaRepo) SetBrandRelevance(ctx context.Context, brandID string, relevant bool) error {
	return r.setRelevance(ctx,
		"UPDATE sema_brands SET is_relevant = $1, updated_at = $2 WHERE brand_id = $3",
		relevant, brandID)
}

// SetDatasetRelevance updates a dataset's relevancy flag
func (r *SemaRepo) SetDatasetRelevance(ctx context.Context, datasetID int, relevant bool) error {
	return r.setRelevance(ctx,
		"UPDATE sema_datasets SET is_relevant = $1, updated_at = $2 WHERE dataset_id = $3",
		relevant, datasetID)
}

// SetCategoryRelevance updates a category's relevancy flag
func (r *SemaRepo) SetCategoryRelevance(ctx context.Context, categoryID int, relevant bool) error {
	return r.setRelevance(ctx,
		"UPDATE sema_categories SET is_relevant = $1, updated_at = $2 WHERE category_id = $3",
		relevant, categoryID)
}

// SetProductRelevance updates a product's relevancy flag
func (r *SemaRepo) SetProductRelevance(ctx context.Context, productID int, relevant bool) error {
	return r.setRelevance(ctx,
		"UPDATE sema_products SET is_relevant = $1, updated_at = $2 WHERE product_id = $3",
		relevant, productID)
}

// SetVehicleRelevance updates a vehicle's relevancy flag
func (r *SemaRepo) SetVehicleRelevance(ctx context.Context, vehicleID int, relevant bool) error {
	tag, err := r.client.pool.Exec(ctx,
		"UPDATE sema_vehicles SET is_relevant = $1 WHERE vehicle_id = $2",
		relevant, vehicleID,
	)
	if err != nil {
		return fmt.Errorf("failed to update relevance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vehicle not found: %d", vehicleID)
	}
	return nil
}

func (r *SemaRepo) setRelevance(ctx context.Context, query string, relevant bool, id interface{}) error {
	tag, err := r.client.pool.Exec(ctx, query, relevant, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update relevance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record not found: %v", id)
	}
	return nil
}

// replaceLinks rewrites a join table's rows for one owner in a transaction
func (r *SemaRepo) replaceLinks(ctx context.Context, table, ownerColumn, linkColumn string, ownerID int, linkIDs []int) error {
	tx, err := r.client.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, ownerColumn)
	if _, err := tx.Exec(ctx, deleteQuery, ownerID); err != nil {
		return fmt.Errorf("failed to clear links: %w", err)
	}

	insertQuery := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		table, ownerColumn, linkColumn,
	)
	for _, linkID := range linkIDs {
		if _, err := tx.Exec(ctx, insertQuery, ownerID, linkID); err != nil {
			return fmt.Errorf("failed to insert link: %w", err)
		}
	}

	return tx.Commit(ctx)
}
