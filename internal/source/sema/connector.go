package sema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ecommercejockey/jockey/internal/source"
)

const (
	ConnectorName  = "sema"
	DefaultBaseURL = "https://sdc.semadatacoop.org/sdcapi"

	// The SDC API answers 409 when the rate limit is exceeded
	rateLimitRetries = 13
	rateLimitDelay   = 5 * time.Second
)

// Config holds SEMA Data Co-op API connection configuration
type Config struct {
	BaseURL     string // API base URL
	Username    string // SDC username
	Password    string // SDC password
	UsernameEnv string // Environment variable for username
	PasswordEnv string // Environment variable for password
}

// Connector implements the source.Connector interface for the SEMA Data
// Co-op API. The API uses two tokens: a session token passed with every
// lookup/export call and a separate content token for the HTML content
// endpoint. Responses carrying "Invalid token" refresh the relevant token
// and retry once.
type Connector struct {
	*source.BaseConnector
	config       Config
	client       *http.Client
	token        string
	contentToken string
}

// NewConnector creates a new SEMA connector
func NewConnector(cfg Config) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Connector{
		BaseConnector: source.NewBaseConnector(
			ConnectorName,
			[]source.Capability{
				source.CapabilityFetchBrands,
				source.CapabilityFetchDatasets,
				source.CapabilityFetchCategories,
				source.CapabilityFetchProducts,
				source.CapabilityFetchVehicles,
				source.CapabilityFetchHTML,
			},
		),
		config: cfg,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// BrandDataset pairs a brand with one of its datasets
type BrandDataset struct {
	AAIABrandID string `json:"AAIABrandId"`
	BrandName   string `json:"BrandName"`
	DatasetID   int    `json:"DatasetId"`
	DatasetName string `json:"DatasetName"`
}

// Category is a node in the SDC category tree
type Category struct {
	ParentID   int        `json:"ParentId"`
	CategoryID int        `json:"CategoryId"`
	Name       string     `json:"Name"`
	Categories []Category `json:"Categories"`
}

// PiesAttribute is a single PIES attribute of a product
type PiesAttribute struct {
	PiesName    string  `json:"PiesName"`
	PiesSegment string  `json:"PiesSegment"`
	Value       *string `json:"Value"`
}

// Product is a product row from the lookup/products endpoint
type Product struct {
	ProductID      int             `json:"ProductId"`
	PartNumber     string          `json:"PartNumber"`
	PiesAttributes []PiesAttribute `json:"PiesAttributes"`
}

// BrandVehicle is a vehicle row from the vehiclesbybrand endpoint
type BrandVehicle struct {
	AAIABrandID   string `json:"AAIA_BrandID"`
	BrandName     string `json:"BrandName"`
	VehicleID     int    `json:"VehicleID"`
	BaseVehicleID int    `json:"BaseVehicleID"`
	Year          int    `json:"Year"`
	MakeName      string `json:"MakeName"`
	ModelName     string `json:"ModelName"`
	SubmodelName  string `json:"SubmodelName"`
}

// PartVehicles groups fitment vehicles by part number
type PartVehicles struct {
	PartNumber string    `json:"PartNumber"`
	Vehicles   []Vehicle `json:"Vehicles"`
}

// Vehicle is a fitment vehicle row
type Vehicle struct {
	VehicleID     int    `json:"VehicleID"`
	BaseVehicleID int    `json:"BaseVehicleID"`
	Year          int    `json:"Year"`
	MakeName      string `json:"MakeName"`
	ModelName     string `json:"ModelName"`
	SubmodelName  string `json:"SubmodelName"`
}

// Connect retrieves the session and content tokens
func (c *Connector) Connect(ctx context.Context) error {
	if err := c.retrieveToken(ctx); err != nil {
		return err
	}
	if err := c.retrieveContentToken(ctx); err != nil {
		return err
	}
	c.SetConnected(true)
	return nil
}

// Close cleans up resources
func (c *Connector) Close() error {
	c.token = ""
	c.contentToken = ""
	c.SetConnected(false)
	return nil
}

// Test verifies connectivity and credentials
func (c *Connector) Test(ctx context.Context) error {
	return c.retrieveToken(ctx)
}

// FetchBrandDatasets retrieves all authorized brand datasets
func (c *Connector) FetchBrandDatasets(ctx context.Context) ([]BrandDataset, error) {
	params := url.Values{}
	var body struct {
		apiEnvelope
		BrandDatasets []BrandDataset `json:"BrandDatasets"`
	}
	if err := c.getWithToken(ctx, "/export/branddatasets", params, &body); err != nil {
		return nil, err
	}
	return body.BrandDatasets, nil
}

// FetchCategories retrieves the category tree for a dataset
func (c *Connector) FetchCategories(ctx context.Context, datasetIDs []int) ([]Category, error) {
	payload := map[string]interface{}{
		"branddatasetids": datasetIDs,
	}
	var body struct {
		apiEnvelope
		Categories []Category `json:"Categories"`
	}
	if err := c.postWithToken(ctx, "/lookup/categories", payload, &body); err != nil {
		return nil, err
	}
	return body.Categories, nil
}

// FetchProducts retrieves products for a dataset with the requested PIES
// segments included
func (c *Connector) FetchProducts(ctx context.Context, datasetIDs []int, piesSegments []string) ([]Product, error) {
	payload := map[string]interface{}{
		"branddatasetids": datasetIDs,
		"piesSegments":    piesSegments,
	}
	var body struct {
		apiEnvelope
		Products []Product `json:"Products"`
	}
	if err := c.postWithToken(ctx, "/lookup/products", payload, &body); err != nil {
		return nil, err
	}
	return body.Products, nil
}

// FetchVehiclesByBrand retrieves all vehicle rows for brand datasets
func (c *Connector) FetchVehiclesByBrand(ctx context.Context, datasetIDs []int) ([]BrandVehicle, error) {
	payload := map[string]interface{}{
		"branddatasetids": datasetIDs,
	}
	var body struct {
		apiEnvelope
		BrandVehicles []BrandVehicle `json:"BrandVehicles"`
	}
	if err := c.postWithToken(ctx, "/lookup/vehiclesbybrand", payload, &body); err != nil {
		return nil, err
	}
	return body.BrandVehicles, nil
}

// FetchVehiclesByProduct retrieves fitment vehicles grouped by part number
func (c *Connector) FetchVehiclesByProduct(ctx context.Context, datasetID int, partNumbers []string) ([]PartVehicles, error) {
	payload := map[string]interface{}{
		"branddatasetid": datasetID,
		"partNumbers":    partNumbers,
		"groupByPart":    "true",
	}
	var body struct {
		apiEnvelope
		Parts []PartVehicles `json:"Parts"`
	}
	if err := c.postWithToken(ctx, "/lookup/vehiclesbyproduct", payload, &body); err != nil {
		return nil, err
	}
	return body.Parts, nil
}

// FetchProductHTML retrieves the merchandising HTML snippet for a product,
// stripped of header and footer
func (c *Connector) FetchProductHTML(ctx context.Context, productID int) (string, error) {
	if c.contentToken == "" {
		if err := c.retrieveContentToken(ctx); err != nil {
			return "", err
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		reqURL := fmt.Sprintf("%s/content/product?contenttoken=%s&productid=%d&stripHeaderFooter=true",
			c.config.BaseURL, url.QueryEscape(c.contentToken), productID)

		body, status, err := c.doWithRateLimit(ctx, "GET", reqURL, nil)
		if err != nil {
			return "", err
		}
		if status != http.StatusOK {
			return "", fmt.Errorf("SEMA API error (status %d): %s", status, string(body))
		}

		html := strings.TrimSpace(string(body))
		if strings.Contains(html, "Invalid token") {
			if attempt == 0 {
				// Content token expired, refresh and retry once
				if err := c.retrieveContentToken(ctx); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("SEMA authentication failed: invalid content token")
		}
		return html, nil
	}

	return "", fmt.Errorf("SEMA content request failed after token refresh")
}

// apiEnvelope is the common success wrapper of SDC JSON responses
type apiEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e apiEnvelope) envelope() apiEnvelope { return e }

type enveloped interface {
	envelope() apiEnvelope
}

// retrieveToken retrieves a session token
func (c *Connector) retrieveToken(ctx context.Context) error {
	username := c.config.Username
	if username == "" && c.config.UsernameEnv != "" {
		username = os.Getenv(c.config.UsernameEnv)
	}
	password := c.config.Password
	if password == "" && c.config.PasswordEnv != "" {
		password = os.Getenv(c.config.PasswordEnv)
	}
	if username == "" || password == "" {
		return fmt.Errorf("SEMA credentials not configured (set %s and %s environment variables)",
			c.config.UsernameEnv, c.config.PasswordEnv)
	}

	reqURL := fmt.Sprintf("%s/token/get?userName=%s&password=%s",
		c.config.BaseURL, url.QueryEscape(username), url.QueryEscape(password))

	body, status, err := c.doWithRateLimit(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to SEMA: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("SEMA API error (status %d): %s", status, string(body))
	}

	var resp struct {
		apiEnvelope
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("JSON decode error: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("SEMA authentication failed: %s", messageOrDefault(resp.Message))
	}
	if resp.Token == "" {
		return fmt.Errorf("SEMA authentication failed: empty token")
	}

	c.token = resp.Token
	return nil
}

// retrieveContentToken retrieves the content token used by the HTML endpoint
func (c *Connector) retrieveContentToken(ctx context.Context) error {
	if c.token == "" {
		if err := c.retrieveToken(ctx); err != nil {
			return err
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		reqURL := fmt.Sprintf("%s/token/getcontenttoken?token=%s",
			c.config.BaseURL, url.QueryEscape(c.token))

		body, status, err := c.doWithRateLimit(ctx, "GET", reqURL, nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("SEMA API error (status %d): %s", status, string(body))
		}

		var resp struct {
			apiEnvelope
			ContentToken string `json:"contenttoken"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("JSON decode error: %w", err)
		}
		if resp.Success && resp.Message == "Invalid token" {
			if attempt == 0 {
				if err := c.retrieveToken(ctx); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("SEMA authentication failed: invalid token")
		}
		if !resp.Success {
			return fmt.Errorf("SEMA API error: %s", messageOrDefault(resp.Message))
		}

		c.contentToken = resp.ContentToken
		return nil
	}

	return fmt.Errorf("SEMA content token request failed after token refresh")
}

// getWithToken performs a token-authenticated GET with invalid-token retry
func (c *Connector) getWithToken(ctx context.Context, path string, params url.Values, out enveloped) error {
	if c.token == "" {
		if err := c.retrieveToken(ctx); err != nil {
			return err
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		params.Set("token", c.token)
		reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, params.Encode())

		body, status, err := c.doWithRateLimit(ctx, "GET", reqURL, nil)
		if err != nil {
			return err
		}

		retry, err := c.checkEnvelope(ctx, body, status, out, attempt == 0)
		if err != nil {
			return err
		}
		if retry {
			continue
		}
		return nil
	}

	return fmt.Errorf("SEMA request failed after token refresh")
}

// postWithToken performs a token-authenticated POST with invalid-token retry
func (c *Connector) postWithToken(ctx context.Context, path string, payload map[string]interface{}, out enveloped) error {
	if c.token == "" {
		if err := c.retrieveToken(ctx); err != nil {
			return err
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		payload["token"] = c.token
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		reqURL := c.config.BaseURL + path
		body, status, err := c.doWithRateLimit(ctx, "POST", reqURL, data)
		if err != nil {
			return err
		}

		retry, err := c.checkEnvelope(ctx, body, status, out, attempt == 0)
		if err != nil {
			return err
		}
		if retry {
			continue
		}
		return nil
	}

	return fmt.Errorf("SEMA request failed after token refresh")
}

// checkEnvelope decodes a JSON response and handles the invalid-token
// convention. Returns retry=true when the token was refreshed and the
// request should be repeated.
func (c *Connector) checkEnvelope(ctx context.Context, body []byte, status int, out enveloped, mayRetry bool) (bool, error) {
	if status != http.StatusOK {
		return false, fmt.Errorf("SEMA API error (status %d): %s", status, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("JSON decode error: %w", err)
	}

	env := out.envelope()
	if env.Success && env.Message == "Invalid token" {
		if mayRetry {
			if err := c.retrieveToken(ctx); err != nil {
				return false, err
			}
			return true, nil
		}
		return false, fmt.Errorf("SEMA authentication failed: invalid token")
	}
	if !env.Success {
		return false, fmt.Errorf("SEMA API error: %s", messageOrDefault(env.Message))
	}

	return false, nil
}

// doWithRateLimit performs a request, waiting and retrying on 409
func (c *Connector) doWithRateLimit(ctx context.Context, method, reqURL string, payload []byte) ([]byte, int, error) {
	for attempt := 0; attempt < rateLimitRetries; attempt++ {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("SEMA request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, 0, err
		}

		if resp.StatusCode == http.StatusConflict {
			// Rate limit exceeded, wait before retrying
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(rateLimitDelay):
			}
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("SEMA rate limit exceeded after %d retries", rateLimitRetries)
}

func messageOrDefault(message string) string {
	if message == "" {
		return "bad request"
	}
	return message
}
