package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// LinkRepo implements the LinkRepository interface for PostgreSQL. List
// methods resolve the linked Premier, SEMA, and Shopify records through the
// sibling repositories so callers get a fully stitched object graph.
type LinkRepo struct {
	client  *Client
	premier *PremierRepo
	sema    *SemaRepo
	shopify *ShopifyRepo
}

// NewLinkRepo creates a new PostgreSQL link repository
func NewLinkRepo(client *Client) *LinkRepo {
	return &LinkRepo{
		client:  client,
		premier: NewPremierRepo(client),
		sema:    NewSemaRepo(client),
		shopify: NewShopifyRepo(client),
	}
}

// CreateVendor inserts a new vendor link
func (r *LinkRepo) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	if vendor.ID == "" {
		vendor.ID = uuid.New().String()
	}

	query := `
		INSERT INTO vendors (
			id, slug, premier_manufacturer_id, sema_brand_id, shopify_vendor_id,
			is_relevant, relevancy_exception, notes, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.client.pool.Exec(ctx, query,
		vendor.ID, vendor.Slug,
		premierManufacturerID(vendor), semaBrandID(vendor), shopifyVendorID(vendor),
		vendor.IsRelevant, vendor.RelevancyException, vendor.Notes, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	return nil
}

// UpdateVendor updates an existing vendor link
func (r *LinkRepo) UpdateVendor(ctx context.Context, vendor *models.Vendor) error {
	query := `
		UPDATE vendors SET
			slug = $1, premier_manufacturer_id = $2, sema_brand_id = $3,
			shopify_vendor_id = $4, is_relevant = $5, relevancy_exception = $6,
			notes = $7, updated_at = $8
		WHERE id = $9
	`

	tag, err := r.client.pool.Exec(ctx, query,
		vendor.Slug,
		premierManufacturerID(vendor), semaBrandID(vendor), shopifyVendorID(vendor),
		vendor.IsRelevant, vendor.RelevancyException, vendor.Notes, time.Now(), vendor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vendor not found: %s", vendor.ID)
	}
	return nil
}

// GetVendors retrieves all vendor links with their sides resolved
func (r *LinkRepo) GetVendors(ctx context.Context) ([]*models.Vendor, error) {
	manufacturers, err := r.premier.GetManufacturers(ctx)
	if err != nil {
		return nil, err
	}
	manufacturersByID := make(map[string]*models.PremierManufacturer)
	for _, m := range manufacturers {
		manufacturersByID[m.ID] = m
	}

	brands, err := r.sema.GetBrands(ctx)
	if err != nil {
		return nil, err
	}
	brandsByID := make(map[string]*models.SemaBrand)
	for _, b := range brands {
		brandsByID[b.BrandID] = b
	}

	shopifyVendors, err := r.shopify.GetVendors(ctx)
	if err != nil {
		return nil, err
	}
	shopifyVendorsByID := make(map[string]*models.ShopifyVendor)
	for _, v := range shopifyVendors {
		shopifyVendorsByID[v.ID] = v
	}

	rows, err := r.client.pool.Query(ctx, `
		SELECT id, slug, premier_manufacturer_id, sema_brand_id, shopify_vendor_id,
			is_relevant, relevancy_exception, notes
		FROM vendors
		ORDER BY slug
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*models.Vendor
	for rows.Next() {
		var v models.Vendor
		var manufacturerID, brandID, shopifyVendorID *string
		err := rows.Scan(&v.ID, &v.Slug, &manufacturerID, &brandID, &shopifyVendorID,
			&v.IsRelevant, &v.RelevancyException, &v.Notes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		if manufacturerID != nil {
			v.PremierManufacturer = manufacturersByID[*manufacturerID]
		}
		if brandID != nil {
			v.SemaBrand = brandsByID[*brandID]
		}
		if shopifyVendorID != nil {
			v.ShopifyVendor = shopifyVendorsByID[*shopifyVendorID]
		}
		vendors = append(vendors, &v)
	}
	return vendors, rows.Err()
}

// CreateItem inserts a new item link
func (r *LinkRepo) CreateItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO items (
			id, premier_product_id, sema_product_id, shopify_product_id,
			is_relevant, relevancy_exception, notes, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.client.pool.Exec(ctx, query,
		item.ID, premierProductID(item), semaProductID(item), shopifyProductID(item),
		item.IsRelevant, item.RelevancyException, item.Notes, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// UpdateItem updates an existing item link
func (r *LinkRepo) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items SET
			premier_product_id = $1, sema_product_id = $2, shopify_product_id = $3,
			is_relevant = $4, relevancy_exception = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`

	tag, err := r.client.pool.Exec(ctx, query,
		premierProductID(item), semaProductID(item), shopifyProductID(item),
		item.IsRelevant, item.RelevancyException, item.Notes, time.Now(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item not found: %s", item.ID)
	}
	return nil
}

// GetItems retrieves all item links with their sides resolved
func (r *LinkRepo) GetItems(ctx context.Context) ([]*models.Item, error) {
	premierProducts, err := r.premier.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	premierByPart := make(map[string]*models.PremierProduct)
	for _, p := range premierProducts {
		premierByPart[p.PremierPartNumber] = p
	}

	semaProducts, err := r.sema.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	semaByID := make(map[int]*models.SemaProduct)
	for _, p := range semaProducts {
		semaByID[p.ProductID] = p
	}

	shopifyProducts, err := r.shopify.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	shopifyByID := make(map[string]*models.ShopifyProduct)
	for _, p := range shopifyProducts {
		shopifyByID[p.ID] = p
	}

	rows, err := r.client.pool.Query(ctx, `
		SELECT id, premier_product_id, sema_product_id, shopify_product_id,
			is_relevant, relevancy_exception, notes
		FROM items
		ORDER BY premier_product_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		var item models.Item
		var premierID, shopifyID *string
		var semaID *int
		err := rows.Scan(&item.ID, &premierID, &semaID, &shopifyID,
			&item.IsRelevant, &item.RelevancyException, &item.Notes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if premierID != nil {
			item.PremierProduct = premierByPart[*premierID]
		}
		if semaID != nil {
			item.SemaProduct = semaByID[*semaID]
		}
		if shopifyID != nil {
			item.ShopifyProduct = shopifyByID[*shopifyID]
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// CreateCategoryPath inserts a new category path link
func (r *LinkRepo) CreateCategoryPath(ctx context.Context, path *models.CategoryPath) error {
	if path.ID == "" {
		path.ID = uuid.New().String()
	}

	query := `
		INSERT INTO category_paths (
			id, sema_root_category_id, sema_branch_category_id, sema_leaf_category_id,
			shopify_root_collection_id, shopify_branch_collection_id, shopify_leaf_collection_id,
			is_relevant, relevancy_exception, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.client.pool.Exec(ctx, query,
		path.ID,
		categoryID(path.SemaRootCategory), categoryID(path.SemaBranchCategory), categoryID(path.SemaLeafCategory),
		collectionID(path.ShopifyRootCollection), collectionID(path.ShopifyBranchCollection), collectionID(path.ShopifyLeafCollection),
		path.IsRelevant, path.RelevancyException, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create category path: %w", err)
	}
	return nil
}

// UpdateCategoryPath updates an existing category path link
func (r *LinkRepo) UpdateCategoryPath(ctx context.Context, path *models.CategoryPath) error {
	query := `
		UPDATE category_paths SET
			sema_root_category_id = $1, sema_branch_category_id = $2, sema_leaf_category_id = $3,
			shopify_root_collection_id = $4, shopify_branch_collection_id = $5, shopify_leaf_collection_id = $6,
			is_relevant = $7, relevancy_exception = $8, updated_at = $9
		WHERE id = $10
	`

	tag, err := r.client.pool.Exec(ctx, query,
		categoryID(path.SemaRootCategory), categoryID(path.SemaBranchCategory), categoryID(path.SemaLeafCategory),
		collectionID(path.ShopifyRootCollection), collectionID(path.ShopifyBranchCollection), collectionID(path.ShopifyLeafCollection),
		path.IsRelevant, path.RelevancyException, time.Now(), path.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category path not found: %s", path.ID)
	}
	return nil
}

// GetCategoryPaths retrieves all category path links with their sides resolved
func (r *LinkRepo) GetCategoryPaths(ctx context.Context) ([]*models.CategoryPath, error) {
	categories, err := r.sema.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	categoriesByID := make(map[int]*models.SemaCategory)
	for _, c := range categories {
		categoriesByID[c.CategoryID] = c
	}

	collections, err := r.shopify.GetCollections(ctx)
	if err != nil {
		return nil, err
	}
	collectionsByID := make(map[string]*models.ShopifyCollection)
	for _, c := range collections {
		collectionsByID[c.ID] = c
	}

	rows, err := r.client.pool.Query(ctx, `
		SELECT id, sema_root_category_id, sema_branch_category_id, sema_leaf_category_id,
			shopify_root_collection_id, shopify_branch_collection_id, shopify_leaf_collection_id,
			is_relevant, relevancy_exception
		FROM category_paths
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category paths: %w", err)
	}
	defer rows.Close()

	var paths []*models.CategoryPath
	for rows.Next() {
		var p models.CategoryPath
		var rootCat, branchCat, leafCat *int
		var rootCol, branchCol, leafCol *string
		err := rows.Scan(&p.ID, &rootCat, &branchCat, &leafCat,
			&rootCol, &branchCol, &leafCol,
			&p.IsRelevant, &p.RelevancyException)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category path: %w", err)
		}
		if rootCat != nil {
			p.SemaRootCategory = categoriesByID[*rootCat]
		}
		if branchCat != nil {
			p.SemaBranchCategory = categoriesByID[*branchCat]
		}
		if leafCat != nil {
			p.SemaLeafCategory = categoriesByID[*leafCat]
		}
		if rootCol != nil {
			p.ShopifyRootCollection = collectionsByID[*rootCol]
		}
		if branchCol != nil {
			p.ShopifyBranchCollection = collectionsByID[*branchCol]
		}
		if leafCol != nil {
			p.ShopifyLeafCollection = collectionsByID[*leafCol]
		}
		paths = append(paths, &p)
	}
	return paths, rows.Err()
}

// SetVendorRelevance updates a vendor link's relevancy flag
func (r *LinkRepo) SetVendorRelevance(ctx context.Context, id string, relevant bool) error {
	return r.setRelevance(ctx, "vendors", id, relevant)
}

// SetItemRelevance updates an item link's relevancy flag
func (r *LinkRepo) SetItemRelevance(ctx context.Context, id string, relevant bool) error {
	return r.setRelevance(ctx, "items", id, relevant)
}

// SetCategoryPathRelevance updates a category path link's relevancy flag
func (r *LinkRepo) SetCategoryPathRelevance(ctx context.Context, id string, relevant bool) error {
	return r.setRelevance(ctx, "category_paths", id, relevant)
}

func (r *LinkRepo) setRelevance(ctx context.Context, table, id string, relevant bool) error {
	query := fmt.Sprintf(
		"UPDATE %s SET is_relevant = $1, updated_at = $2 WHERE id = $3", table)
	tag, err := r.client.pool.Exec(ctx, query, relevant, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update relevance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}

func premierManufacturerID(v *models.Vendor) *string {
	if v.PremierManufacturer == nil || v.PremierManufacturer.ID == "" {
		return nil
	}
	return &v.PremierManufacturer.ID
}

func semaBrandID(v *models.Vendor) *string {
	if v.SemaBrand == nil || v.SemaBrand.BrandID == "" {
		return nil
	}
	return &v.SemaBrand.BrandID
}

func shopifyVendorID(v *models.Vendor) *string {
	if v.ShopifyVendor == nil || v.ShopifyVendor.ID == "" {
		return nil
	}
	return &v.ShopifyVendor.ID
}

func premierProductID(i *models.Item) *string {
	if i.PremierProduct == nil || i.PremierProduct.PremierPartNumber == "" {
		return nil
	}
	return &i.PremierProduct.PremierPartNumber
}

func semaProductID(i *models.Item) *int {
	if i.SemaProduct == nil || i.SemaProduct.ProductID == 0 {
		return nil
	}
	return &i.SemaProduct.ProductID
}

func shopifyProductID(i *models.Item) *string {
	if i.ShopifyProduct == nil || i.ShopifyProduct.ID == "" {
		return nil
	}
	return &i.ShopifyProduct.ID
}

func categoryID(c *models.SemaCategory) *int {
	if c == nil || c.CategoryID == 0 {
		return nil
	}
	return &c.CategoryID
}

func collectionID(c *models.ShopifyCollection) *string {
	if c == nil || c.ID == "" {
		return nil
	}
	return &c.ID
}
