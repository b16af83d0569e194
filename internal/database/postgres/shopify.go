package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecommercejockey/jockey/pkg/models"
)

// ShopifyRepo implements the ShopifyRepository interface for PostgreSQL.
// Variants, images, metafields, and collection rules are stored as JSONB
// documents on their owning row.
type ShopifyRepo struct {
	client *Client
}

// NewShopifyRepo creates a new PostgreSQL Shopify repository
func NewShopifyRepo(client *Client) *ShopifyRepo {
	return &ShopifyRepo{client: client}
}

// UpsertVendor inserts or updates a vendor by name
func (r *ShopifyRepo) UpsertVendor(ctx context.Context, vendor *models.ShopifyVendor) error {
	if vendor.ID == "" {
		vendor.ID = uuid.New().String()
	}

	query := `
		INSERT INTO shopify_vendors (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	if err := r.client.pool.QueryRow(ctx, query, vendor.ID, vendor.Name).Scan(&vendor.ID); err != nil {
		return fmt.Errorf("failed to upsert vendor: %w", err)
	}
	return nil
}

// GetVendors retrieves all vendors ordered by name
func (r *ShopifyRepo) GetVendors(ctx context.Context) ([]*models.ShopifyVendor, error) {
	rows, err := r.client.pool.Query(ctx, "SELECT id, name FROM shopify_vendors ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*models.ShopifyVendor
	for rows.Next() {
		var v models.ShopifyVendor
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, &v)
	}
	return vendors, rows.Err()
}

// UpsertProduct inserts or updates a product
func (r *ShopifyRepo) UpsertProduct(ctx context.Context, product *models.ShopifyProduct) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	variantsJSON, err := json.Marshal(product.Variants)
	if err != nil {
		return fmt.Errorf("failed to serialize variants: %w", err)
	}
	imagesJSON, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to serialize images: %w", err)
	}
	metafieldsJSON, err := json.Marshal(product.Metafields)
	if err != nil {
		return fmt.Errorf("failed to serialize metafields: %w", err)
	}

	var vendorID *string
	if product.Vendor != nil && product.Vendor.ID != "" {
		vendorID = &product.Vendor.ID
	}

	var productID *int64
	if product.ProductID != 0 {
		productID = &product.ProductID
	}

	query := `
		INSERT INTO shopify_products (
			id, product_id, title, body_html, vendor_id, product_type,
			is_published, published_scope, tags, seo_title, seo_description,
			variants, images, metafields, is_relevant, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			title = EXCLUDED.title,
			body_html = EXCLUDED.body_html,
			vendor_id = EXCLUDED.vendor_id,
			product_type = EXCLUDED.product_type,
			is_published = EXCLUDED.is_published,
			published_scope = EXCLUDED.published_scope,
			tags = EXCLUDED.tags,
			seo_title = EXCLUDED.seo_title,
			seo_description = EXCLUDED.seo_description,
			variants = EXCLUDED.variants,
			images = EXCLUDED.images,
			metafields = EXCLUDED.metafields,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.client.pool.Exec(ctx, query,
		product.ID, productID, product.Title, product.BodyHTML, vendorID,
		product.ProductType, product.IsPublished, product.Scope, product.Tags,
		product.SEOTitle, product.SEODesc,
		variantsJSON, imagesJSON, metafieldsJSON, product.IsRelevant, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// GetProducts retrieves all products with their vendors
func (r *ShopifyRepo) GetProducts(ctx context.Context) ([]*models.ShopifyProduct, error) {
	vendors, err := r.GetVendors(ctx)
	if err != nil {
		return nil, err
	}
	vendorsByID := make(map[string]*models.ShopifyVendor)
	for _, v := range vendors {
		vendorsByID[v.ID] = v
	}

	rows, err := r.client.pool.Query(ctx, `
		SELECT id, product_id, title, body_html, vendor_id, product_type,
			is_published, published_scope, tags, seo_title, seo_description,
			variants, images, metafields, is_relevant
		FROM shopify_products
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.ShopifyProduct
	for rows.Next() {
		var p models.ShopifyProduct
		var productID *int64
		var vendorID *string
		var variantsJSON, imagesJSON, metafieldsJSON []byte

		err := rows.Scan(&p.ID, &productID, &p.Title, &p.BodyHTML, &vendorID,
			&p.ProductType, &p.IsPublished, &p.Scope, &p.Tags, &p.SEOTitle, &p.SEODesc,
			&variantsJSON, &imagesJSON, &metafieldsJSON, &p.IsRelevant)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		if productID != nil {
			p.ProductID = *productID
		}
		if vendorID != nil {
			p.Vendor = vendorsByID[*vendorID]
		}
		if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
			return nil, fmt.Errorf("failed to parse variants: %w", err)
		}
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, fmt.Errorf("failed to parse images: %w", err)
		}
		if err := json.Unmarshal(metafieldsJSON, &p.Metafields); err != nil {
			return nil, fmt.Errorf("failed to parse metafields: %w", err)
		}

		products = append(products, &p)
	}
	return products, rows.Err()
}

// UpsertCollection inserts or updates a collection
func (r *ShopifyRepo) UpsertCollection(ctx context.Context, collection *models.ShopifyCollection) error {
	if collection.ID == "" {
		collection.ID = uuid.New().String()
	}

	rulesJSON, err := json.Marshal(collection.Rules)
	if err != nil {
		return fmt.Errorf("failed to serialize rules: %w", err)
	}
	metafieldsJSON, err := json.Marshal(collection.Metafields)
	if err != nil {
		return fmt.Errorf("failed to serialize metafields: %w", err)
	}

	var parentID *string
	if collection.Parent != nil && collection.Parent.ID != "" {
		parentID = &collection.Parent.ID
	}

	var collectionID *int64
	if collection.CollectionID != 0 {
		collectionID = &collection.CollectionID
	}

	query := `
		INSERT INTO shopify_collections (
			id, collection_id, title, body_html, image_src, image_alt,
			is_published, published_scope, tags, rules, disjunctive,
			sort_order, parent_id, metafields, is_relevant, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			collection_id = EXCLUDED.collection_id,
			title = EXCLUDED.title,
			body_html = EXCLUDED.body_html,
			image_src = EXCLUDED.image_src,
			image_alt = EXCLUDED.image_alt,
			is_published = EXCLUDED.is_published,
			published_scope = EXCLUDED.published_scope,
			tags = EXCLUDED.tags,
			rules = EXCLUDED.rules,
			disjunctive = EXCLUDED.disjunctive,
			sort_order = EXCLUDED.sort_order,
			parent_id = EXCLUDED.parent_id,
			metafields = EXCLUDED.metafields,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.client.pool.Exec(ctx, query,
		collection.ID, collectionID, collection.Title, collection.BodyHTML,
		collection.ImageSrc, collection.ImageAlt, collection.IsPublished,
		collection.Scope, collection.Tags, rulesJSON, collection.Disjunctive,
		collection.SortOrder, parentID, metafieldsJSON, collection.IsRelevant, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert collection: %w", err)
	}
	return nil
}

// GetCollections retrieves all collections with parent pointers resolved
func (r *ShopifyRepo) GetCollections(ctx context.Context) ([]*models.ShopifyCollection, error) {
	rows, err := r.client.pool.Query(ctx, `
		SELECT id, collection_id, title, body_html, image_src, image_alt,
			is_published, published_scope, tags, rules, disjunctive,
			sort_order, parent_id, metafields, is_relevant
		FROM shopify_collections
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.ShopifyCollection)
	parents := make(map[string]string)
	var collections []*models.ShopifyCollection
	for rows.Next() {
		var c models.ShopifyCollection
		var collectionID *int64
		var parentID *string
		var rulesJSON, metafieldsJSON []byte

		err := rows.Scan(&c.ID, &collectionID, &c.Title, &c.BodyHTML,
			&c.ImageSrc, &c.ImageAlt, &c.IsPublished, &c.Scope, &c.Tags,
			&rulesJSON, &c.Disjunctive, &c.SortOrder, &parentID,
			&metafieldsJSON, &c.IsRelevant)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}

		if collectionID != nil {
			c.CollectionID = *collectionID
		}
		if parentID != nil {
			parents[c.ID] = *parentID
		}
		if err := json.Unmarshal(rulesJSON, &c.Rules); err != nil {
			return nil, fmt.Errorf("failed to parse rules: %w", err)
		}
		if err := json.Unmarshal(metafieldsJSON, &c.Metafields); err != nil {
			return nil, fmt.Errorf("failed to parse metafields: %w", err)
		}

		byID[c.ID] = &c
		collections = append(collections, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for childID, parentID := range parents {
		if parent, ok := byID[parentID]; ok {
			byID[childID].Parent = parent
		}
	}

	return collections, nil
}

// SetProductRelevance updates a product's relevancy flag
func (r *ShopifyRepo) SetProductRelevance(ctx context.Context, id string, relevant bool) error {
	tag, err := r.client.pool.Exec(ctx,
		"UPDATE shopify_products SET is_relevant = $1, updated_at = $2 WHERE id = $3",
		relevant, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update product relevance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product not found: %s", id)
	}
	return nil
}

// SetCollectionRelevance updates a collection's relevancy flag
func (r *ShopifyRepo) SetCollectionRelevance(ctx context.Context, id string, relevant bool) error {
	tag, err := r.client.pool.Exec(ctx,
		"UPDATE shopify_collections SET is_relevant = $1, updated_at = $2 WHERE id = $3",
		relevant, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update collection relevance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("collection not found: %s", id)
	}
	return nil
}
