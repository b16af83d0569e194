package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ecommercejockey/jockey/internal/output"
	"github.com/ecommercejockey/jockey/pkg/models"
)

const (
	AdapterName = "shopify"
	apiVersion  = "2024-01"
)

// Config holds Shopify output configuration
type Config struct {
	Store     string // Store name (e.g., "jockey" for jockey.myshopify.com)
	APIKey    string // API access token
	APIKeyEnv string // Environment variable name for API key
}

// Adapter implements the output.Adapter interface for Shopify
type Adapter struct {
	*output.BaseAdapter
	config  Config
	client  *http.Client
	baseURL string
}

// NewAdapter creates a new Shopify output adapter
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{
		BaseAdapter: output.NewBaseAdapter(AdapterName),
		config:      cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Connect establishes connection to Shopify API
func (a *Adapter) Connect(ctx context.Context) error {
	// Resolve API key from environment if needed
	apiKey := a.config.APIKey
	if apiKey == "" && a.config.APIKeyEnv != "" {
		apiKey = os.Getenv(a.config.APIKeyEnv)
	}
	if apiKey == "" {
		return fmt.Errorf("shopify API key not configured")
	}
	a.config.APIKey = apiKey

	store := a.config.Store
	if store == "" {
		return fmt.Errorf("shopify store name not configured")
	}
	a.baseURL = fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", store, apiVersion)

	return a.Test(ctx)
}

// Close cleans up resources
func (a *Adapter) Close() error {
	a.SetConnected(false)
	return nil
}

// Test verifies connectivity to Shopify API
func (a *Adapter) Test(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", a.baseURL+"/shop.json", nil)
	if err != nil {
		return err
	}

	req.Header.Set("X-Shopify-Access-Token", a.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Shopify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shopify API error (status %d): %s", resp.StatusCode, string(body))
	}

	a.SetConnected(true)
	return nil
}

// ExportProducts creates or updates products in Shopify
func (a *Adapter) ExportProducts(ctx context.Context, products []*models.ShopifyProduct, opts output.ExportOptions) (*output.ExportResult, error) {
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
		result.Details = fmt.Sprintf("Dry run: would push %d products to Shopify", len(filtered))
		result.CompletedAt = time.Now()
		return result, nil
	}

	pushed := 0
	imagesPushed := 0
	var lastError error

	for _, p := range filtered {
		newImages, err := a.pushProduct(ctx, p, opts)
		if err != nil {
			lastError = err
			continue
		}
		pushed++
		imagesPushed += newImages
	}

	result.Destination = a.config.Store + ".myshopify.com"
	result.ProductsExported = pushed
	result.ImagesExported = imagesPushed
	result.Success = lastError == nil
	result.Error = lastError
	result.Details = fmt.Sprintf("Pushed %d/%d products to Shopify", pushed, len(filtered))
	result.CompletedAt = time.Now()

	return result, nil
}

// ExportCollections creates or updates smart collections in Shopify
func (a *Adapter) ExportCollections(ctx context.Context, collections []*models.ShopifyCollection, opts output.ExportOptions) (*output.ExportResult, error) {
	result := &output.ExportResult{
		StartedAt: time.Now(),
	}

	if !a.IsConnected() {
		if err := a.Connect(ctx); err != nil {
			result.Error = err
			return result, err
		}
	}

	filtered := collections
	if opts.OnlyRelevant {
		filtered = make([]*models.ShopifyCollection, 0)
		for _, c := range collections {
			if c.IsRelevant {
				filtered = append(filtered, c)
			}
		}
	}

	if opts.DryRun {
		result.CollectionsExported = len(filtered)
		result.Success = true
		result.Details = fmt.Sprintf("Dry run: would push %d collections to Shopify", len(filtered))
		result.CompletedAt = time.Now()
		return result, nil
	}

	pushed := 0
	var lastError error

	for _, c := range filtered {
		if err := a.pushCollection(ctx, c); err != nil {
			lastError = err
			continue
		}
		pushed++
	}

	result.Destination = a.config.Store + ".myshopify.com"
	result.CollectionsExported = pushed
	result.Success = lastError == nil
	result.Error = lastError
	result.Details = fmt.Sprintf("Pushed %d/%d collections to Shopify", pushed, len(filtered))
	result.CompletedAt = time.Now()

	return result, nil
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

// pushProduct creates or updates a single product in Shopify. Products
// without a Shopify product ID are created, existing ones updated.
func (a *Adapter) pushProduct(ctx context.Context, product *models.ShopifyProduct, opts output.ExportOptions) (int, error) {
	payload := productPayload{
		Product: apiProduct{
			ID:             product.ProductID,
			Title:          product.Title,
			BodyHTML:       product.BodyHTML,
			ProductType:    product.ProductType,
			PublishedScope: product.Scope,
			Tags:           strings.Join(product.Tags, ", "),
		},
	}
	if product.Vendor != nil {
		payload.Product.Vendor = product.Vendor.Name
	}

	for _, v := range product.Variants {
		payload.Product.Variants = append(payload.Product.Variants, apiVariant{
			ID:         v.VariantID,
			Title:      v.Title,
			SKU:        v.SKU,
			Barcode:    v.Barcode,
			Price:      formatPrice(v.Price),
			Weight:     v.Weight,
			WeightUnit: v.WeightUnit,
			Grams:      v.Grams,
			Taxable:    v.IsTaxable,
		})
	}

	imagesPushed := 0
	if opts.IncludeImages {
		for _, img := range product.Images {
			payload.Product.Images = append(payload.Product.Images, apiImage{
				ID:       img.ImageID,
				Src:      img.Src,
				Position: img.Position,
				Alt:      img.Alt,
			})
			if img.ImageID == 0 {
				imagesPushed++
			}
		}
	}

	var method, url string
	if product.ProductID == 0 {
		method = "POST"
		url = a.baseURL + "/products.json"
	} else {
		method = "PUT"
		url = fmt.Sprintf("%s/products/%d.json", a.baseURL, product.ProductID)
	}

	var created productPayload
	if err := a.doJSON(ctx, method, url, payload, &created); err != nil {
		return 0, err
	}
	if product.ProductID == 0 && created.Product.ID != 0 {
		product.ProductID = created.Product.ID
	}

	// Metafields are a separate resource under the product
	if product.ProductID != 0 {
		for _, mf := range product.Metafields {
			if err := a.pushMetafield(ctx, product.ProductID, mf); err != nil {
				return imagesPushed, err
			}
		}
	}

	return imagesPushed, nil
}

// pushCollection creates or updates a smart collection in Shopify
func (a *Adapter) pushCollection(ctx context.Context, collection *models.ShopifyCollection) error {
	payload := collectionPayload{
		SmartCollection: apiCollection{
			ID:             collection.CollectionID,
			Title:          collection.Title,
			BodyHTML:       collection.BodyHTML,
			PublishedScope: collection.Scope,
			Disjunctive:    collection.Disjunctive,
			SortOrder:      collection.SortOrder,
		},
	}
	for _, rule := range collection.Rules {
		payload.SmartCollection.Rules = append(payload.SmartCollection.Rules, apiCollectionRule{
			Column:    rule.Column,
			Relation:  rule.Relation,
			Condition: rule.Condition,
		})
	}

	var method, url string
	if collection.CollectionID == 0 {
		method = "POST"
		url = a.baseURL + "/smart_collections.json"
	} else {
		method = "PUT"
		url = fmt.Sprintf("%s/smart_collections/%d.json", a.baseURL, collection.CollectionID)
	}

	var created collectionPayload
	if err := a.doJSON(ctx, method, url, payload, &created); err != nil {
		return err
	}
	if collection.CollectionID == 0 && created.SmartCollection.ID != 0 {
		collection.CollectionID = created.SmartCollection.ID
	}

	if collection.CollectionID != 0 {
		for _, mf := range collection.Metafields {
			if err := a.pushCollectionMetafield(ctx, collection.CollectionID, mf); err != nil {
				return err
			}
		}
	}

	return nil
}

func (a *Adapter) pushMetafield(ctx context.Context, productID int64, mf models.ShopifyMetafield) error {
	url := fmt.Sprintf("%s/products/%d/metafields.json", a.baseURL, productID)
	return a.doJSON(ctx, "POST", url, metafieldPayload{
		Metafield: apiMetafield{
			Namespace: mf.Namespace,
			Key:       mf.Key,
			Value:     mf.Value,
			Type:      metafieldAPIType(mf.ValueType),
		},
	}, nil)
}

func (a *Adapter) pushCollectionMetafield(ctx context.Context, collectionID int64, mf models.ShopifyMetafield) error {
	url := fmt.Sprintf("%s/collections/%d/metafields.json", a.baseURL, collectionID)
	return a.doJSON(ctx, "POST", url, metafieldPayload{
		Metafield: apiMetafield{
			Namespace: mf.Namespace,
			Key:       mf.Key,
			Value:     mf.Value,
			Type:      metafieldAPIType(mf.ValueType),
		},
	}, nil)
}

// doJSON performs a request with a JSON payload and optionally decodes the
// response
func (a *Adapter) doJSON(ctx context.Context, method, url string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("X-Shopify-Access-Token", a.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shopify API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}

func formatPrice(price float64) string {
	if price == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", price)
}

func metafieldAPIType(valueType string) string {
	switch valueType {
	case models.MetafieldTypeInteger:
		return "number_integer"
	case models.MetafieldTypeJSON:
		return "json"
	default:
		return "single_line_text_field"
	}
}

// Shopify API types
type productPayload struct {
	Product apiProduct `json:"product"`
}

type apiProduct struct {
	ID             int64        `json:"id,omitempty"`
	Title          string       `json:"title,omitempty"`
	BodyHTML       string       `json:"body_html,omitempty"`
	Vendor         string       `json:"vendor,omitempty"`
	ProductType    string       `json:"product_type,omitempty"`
	PublishedScope string       `json:"published_scope,omitempty"`
	Tags           string       `json:"tags,omitempty"`
	Variants       []apiVariant `json:"variants,omitempty"`
	Images         []apiImage   `json:"images,omitempty"`
}

type apiVariant struct {
	ID         int64   `json:"id,omitempty"`
	Title      string  `json:"title,omitempty"`
	SKU        string  `json:"sku,omitempty"`
	Barcode    string  `json:"barcode,omitempty"`
	Price      string  `json:"price,omitempty"`
	Weight     float64 `json:"weight,omitempty"`
	WeightUnit string  `json:"weight_unit,omitempty"`
	Grams      int     `json:"grams,omitempty"`
	Taxable    bool    `json:"taxable"`
}

type apiImage struct {
	ID       int64  `json:"id,omitempty"`
	Src      string `json:"src"`
	Position int    `json:"position,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

type metafieldPayload struct {
	Metafield apiMetafield `json:"metafield"`
}

type apiMetafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

type collectionPayload struct {
	SmartCollection apiCollection `json:"smart_collection"`
}

type apiCollection struct {
	ID             int64               `json:"id,omitempty"`
	Title          string              `json:"title"`
	BodyHTML       string              `json:"body_html,omitempty"`
	PublishedScope string              `json:"published_scope,omitempty"`
	Disjunctive    bool                `json:"disjunctive"`
	SortOrder      string              `json:"sort_order,omitempty"`
	Rules          []apiCollectionRule `json:"rules,omitempty"`
}

type apiCollectionRule struct {
	Column    string `json:"column"`
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}
