package premier

import (
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
	ConnectorName    = "premier"
	DefaultBaseURL   = "https://api.premierwd.com/api/v5"
	DefaultChunkSize = 50
)

// Config holds Premier API connection configuration
type Config struct {
	BaseURL   string // API base URL
	APIKey    string // Premier API key
	APIKeyEnv string // Environment variable for API key
}

// Connector implements the source.Connector interface for the Premier API.
// Premier issues short-lived session tokens; requests that come back 401
// refresh the token and retry once.
type Connector struct {
	*source.BaseConnector
	config       Config
	client       *http.Client
	sessionToken string
}

// NewConnector creates a new Premier connector
func NewConnector(cfg Config) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Connector{
		BaseConnector: source.NewBaseConnector(
			ConnectorName,
			[]source.Capability{
				source.CapabilityFetchInventory,
				source.CapabilityFetchPricing,
			},
		),
		config: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// InventoryItem represents a single warehouse quantity for a part
type InventoryItem struct {
	WarehouseCode     string `json:"warehouseCode"`
	QuantityAvailable int    `json:"quantityAvailable"`
}

// PartInventory groups warehouse quantities by Premier part number
type PartInventory struct {
	ItemNumber string          `json:"itemNumber"`
	Inventory  []InventoryItem `json:"inventory"`
}

// PricingItem represents pricing for a part in a single currency
type PricingItem struct {
	Currency string  `json:"currency"`
	Cost     float64 `json:"cost"`
	Jobber   float64 `json:"jobber"`
	Map      float64 `json:"map"`
	Retail   float64 `json:"retail"`
}

// PartPricing groups currency pricing by Premier part number
type PartPricing struct {
	ItemNumber string        `json:"itemNumber"`
	Pricing    []PricingItem `json:"pricing"`
}

// Connect retrieves a session token from the Premier API
func (c *Connector) Connect(ctx context.Context) error {
	if err := c.retrieveToken(ctx); err != nil {
		return err
	}
	c.SetConnected(true)
	return nil
}

// Close cleans up resources
func (c *Connector) Close() error {
	c.sessionToken = ""
	c.SetConnected(false)
	return nil
}

// Test verifies connectivity and credentials
func (c *Connector) Test(ctx context.Context) error {
	return c.retrieveToken(ctx)
}

// retrieveToken exchanges the API key for a session token
func (c *Connector) retrieveToken(ctx context.Context) error {
	apiKey := c.config.APIKey
	if apiKey == "" && c.config.APIKeyEnv != "" {
		apiKey = os.Getenv(c.config.APIKeyEnv)
	}
	if apiKey == "" {
		return fmt.Errorf("Premier API key not configured (set %s environment variable)",
			c.config.APIKeyEnv)
	}

	reqURL := fmt.Sprintf("%s/authenticate?apiKey=%s", c.config.BaseURL, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Premier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("Premier authentication failed: invalid API key")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Premier API error (status %d): %s", resp.StatusCode, string(body))
	}

	var auth struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return fmt.Errorf("JSON decode error: %w", err)
	}
	if auth.SessionToken == "" {
		return fmt.Errorf("Premier authentication failed: empty session token")
	}

	c.sessionToken = auth.SessionToken
	return nil
}

// FetchInventory retrieves warehouse inventory for up to DefaultChunkSize
// part numbers per request
func (c *Connector) FetchInventory(ctx context.Context, partNumbers []string) ([]PartInventory, error) {
	var results []PartInventory
	for _, chunk := range chunkPartNumbers(partNumbers, DefaultChunkSize) {
		var chunkResults []PartInventory
		if err := c.getJSON(ctx, "/inventory", chunk, &chunkResults); err != nil {
			return nil, err
		}
		results = append(results, chunkResults...)
	}
	return results, nil
}

// FetchPricing retrieves currency pricing for up to DefaultChunkSize
// part numbers per request
func (c *Connector) FetchPricing(ctx context.Context, partNumbers []string) ([]PartPricing, error) {
	var results []PartPricing
	for _, chunk := range chunkPartNumbers(partNumbers, DefaultChunkSize) {
		var chunkResults []PartPricing
		if err := c.getJSON(ctx, "/pricing", chunk, &chunkResults); err != nil {
			return nil, err
		}
		results = append(results, chunkResults...)
	}
	return results, nil
}

// getJSON performs an authenticated GET and decodes the response.
// A 401 refreshes the session token and retries the request once.
func (c *Connector) getJSON(ctx context.Context, path string, partNumbers []string, out interface{}) error {
	if c.sessionToken == "" {
		if err := c.retrieveToken(ctx); err != nil {
			return err
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		reqURL := fmt.Sprintf("%s%s?itemNumbers=%s",
			c.config.BaseURL, path, url.QueryEscape(strings.Join(partNumbers, ",")))
		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("Premier request failed: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			if attempt == 0 {
				// Session token expired, refresh and retry once
				if err := c.retrieveToken(ctx); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("Premier authentication failed: invalid session token")
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("Premier API error (status %d): %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("JSON decode error: %w", err)
		}
		return nil
	}

	return fmt.Errorf("Premier request failed after token refresh")
}

// chunkPartNumbers splits part numbers into request-sized chunks
func chunkPartNumbers(partNumbers []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]string
	for start := 0; start < len(partNumbers); start += size {
		end := start + size
		if end > len(partNumbers) {
			end = len(partNumbers)
		}
		chunks = append(chunks, partNumbers[start:end])
	}
	return chunks
}

// ParseInventoryUpdate maps warehouse quantities onto the inventory field
// names keyed by the first two letters of the warehouse code
func ParseInventoryUpdate(items []InventoryItem) map[string]int {
	update := make(map[string]int, len(items))
	for _, item := range items {
		if len(item.WarehouseCode) < 2 {
			continue
		}
		field := "inventory_" + strings.ToLower(item.WarehouseCode[:2])
		update[field] = item.QuantityAvailable
	}
	return update
}

// ParsePricingUpdate maps currency pricing onto field names suffixed by
// currency, with retail reported as MSRP
func ParsePricingUpdate(items []PricingItem) map[string]float64 {
	update := make(map[string]float64, len(items)*4)
	for _, item := range items {
		currency := strings.ToLower(item.Currency)
		if currency == "" {
			continue
		}
		update["cost_"+currency] = item.Cost
		update["jobber_"+currency] = item.Jobber
		update["map_"+currency] = item.Map
		update["msrp_"+currency] = item.Retail
	}
	return update
}
