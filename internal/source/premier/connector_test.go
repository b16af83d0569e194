package premier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePremier stands in for the Premier API: /authenticate issues
// incrementing tokens and the data endpoints check the Bearer header.
type fakePremier struct {
	apiKey        string
	tokenCount    int
	expireFirst   bool
	inventoryReqs []string
}

func (f *fakePremier) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/authenticate", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != f.apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.tokenCount++
		json.NewEncoder(w).Encode(map[string]string{
			"sessionToken": fmt.Sprintf("token-%d", f.tokenCount),
		})
	})

	authorized := func(r *http.Request) bool {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if f.expireFirst && token == "token-1" {
			return false
		}
		return strings.HasPrefix(token, "token-")
	}

	mux.HandleFunc("/inventory", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		items := r.URL.Query().Get("itemNumbers")
		f.inventoryReqs = append(f.inventoryReqs, items)

		var results []PartInventory
		for _, part := range strings.Split(items, ",") {
			results = append(results, PartInventory{
				ItemNumber: part,
				Inventory: []InventoryItem{
					{WarehouseCode: "AB02", QuantityAvailable: 4},
					{WarehouseCode: "ON01", QuantityAvailable: 12},
				},
			})
		}
		json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("/pricing", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var results []PartPricing
		for _, part := range strings.Split(r.URL.Query().Get("itemNumbers"), ",") {
			results = append(results, PartPricing{
				ItemNumber: part,
				Pricing: []PricingItem{
					{Currency: "CAD", Cost: 50, Jobber: 65, Map: 70, Retail: 80},
					{Currency: "USD", Cost: 38, Jobber: 49, Map: 53, Retail: 61},
				},
			})
		}
		json.NewEncoder(w).Encode(results)
	})

	return mux
}

func newTestConnector(t *testing.T, fake *fakePremier) *Connector {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	return NewConnector(Config{BaseURL: server.URL, APIKey: fake.apiKey})
}

func TestConnect(t *testing.T) {
	connector := newTestConnector(t, &fakePremier{apiKey: "good-key"})

	require.NoError(t, connector.Connect(context.Background()))
	assert.True(t, connector.IsConnected())

	require.NoError(t, connector.Close())
	assert.False(t, connector.IsConnected())
}

func TestConnectBadKey(t *testing.T) {
	fake := &fakePremier{apiKey: "good-key"}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	connector := NewConnector(Config{BaseURL: server.URL, APIKey: "wrong"})
	err := connector.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API key")
}

func TestConnectMissingKey(t *testing.T) {
	connector := NewConnector(Config{BaseURL: "http://unused", APIKeyEnv: "JOCKEY_TEST_MISSING_KEY"})
	err := connector.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOCKEY_TEST_MISSING_KEY")
}

func TestFetchInventory(t *testing.T) {
	fake := &fakePremier{apiKey: "good-key"}
	connector := newTestConnector(t, fake)
	require.NoError(t, connector.Connect(context.Background()))

	results, err := connector.FetchInventory(context.Background(), []string{"GY-100", "GY-200"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "GY-100", results[0].ItemNumber)
	assert.Equal(t, 4, results[0].Inventory[0].QuantityAvailable)
}

func TestFetchInventoryChunks(t *testing.T) {
	fake := &fakePremier{apiKey: "good-key"}
	connector := newTestConnector(t, fake)
	require.NoError(t, connector.Connect(context.Background()))

	parts := make([]string, DefaultChunkSize+3)
	for i := range parts {
		parts[i] = fmt.Sprintf("GY-%03d", i)
	}

	results, err := connector.FetchInventory(context.Background(), parts)
	require.NoError(t, err)
	assert.Len(t, results, len(parts))

	require.Len(t, fake.inventoryReqs, 2)
	assert.Len(t, strings.Split(fake.inventoryReqs[0], ","), DefaultChunkSize)
	assert.Len(t, strings.Split(fake.inventoryReqs[1], ","), 3)
}

func TestFetchPricing(t *testing.T) {
	connector := newTestConnector(t, &fakePremier{apiKey: "good-key"})
	require.NoError(t, connector.Connect(context.Background()))

	results, err := connector.FetchPricing(context.Background(), []string{"GY-100"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 50.0, results[0].Pricing[0].Cost)
	assert.Equal(t, "USD", results[0].Pricing[1].Currency)
}

func TestExpiredTokenRefreshesOnce(t *testing.T) {
	fake := &fakePremier{apiKey: "good-key", expireFirst: true}
	connector := newTestConnector(t, fake)
	require.NoError(t, connector.Connect(context.Background()))
	assert.Equal(t, 1, fake.tokenCount)

	results, err := connector.FetchInventory(context.Background(), []string{"GY-100"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, fake.tokenCount)
}

func TestChunkPartNumbers(t *testing.T) {
	assert.Nil(t, chunkPartNumbers(nil, 50))

	chunks := chunkPartNumbers([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunks)
}

func TestParseInventoryUpdate(t *testing.T) {
	update := ParseInventoryUpdate([]InventoryItem{
		{WarehouseCode: "AB02", QuantityAvailable: 4},
		{WarehouseCode: "ON01", QuantityAvailable: 12},
		{WarehouseCode: "X", QuantityAvailable: 9},
	})
	assert.Equal(t, map[string]int{"inventory_ab": 4, "inventory_on": 12}, update)
}

func TestParsePricingUpdate(t *testing.T) {
	update := ParsePricingUpdate([]PricingItem{
		{Currency: "CAD", Cost: 50, Jobber: 65, Map: 70, Retail: 80},
		{Currency: "", Cost: 1},
	})
	assert.Equal(t, map[string]float64{
		"cost_cad":   50,
		"jobber_cad": 65,
		"map_cad":    70,
		"msrp_cad":   80,
	}, update)
}
