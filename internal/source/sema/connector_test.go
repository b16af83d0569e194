package sema

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSDC stands in for the SEMA Data Co-op API. Tokens are issued with
// incrementing counters; expireFirst makes the first session token invalid
// for data calls so the refresh path gets exercised.
type fakeSDC struct {
	username     string
	password     string
	tokenCount   int
	contentCount int
	expireFirst  bool
}

func (f *fakeSDC) validToken(token string) bool {
	if token == "" {
		return false
	}
	if f.expireFirst && token == "token-1" {
		return false
	}
	return true
}

func (f *fakeSDC) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/token/get", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("userName") != f.username || r.URL.Query().Get("password") != f.password {
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		f.tokenCount++
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"token":   fmt.Sprintf("token-%d", f.tokenCount),
		})
	})

	mux.HandleFunc("/token/getcontenttoken", func(w http.ResponseWriter, r *http.Request) {
		if !f.validToken(r.URL.Query().Get("token")) {
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Invalid token"})
			return
		}
		f.contentCount++
		json.NewEncoder(w).Encode(map[string]any{
			"success":      true,
			"contenttoken": fmt.Sprintf("content-%d", f.contentCount),
		})
	})

	mux.HandleFunc("/export/branddatasets", func(w http.ResponseWriter, r *http.Request) {
		if !f.validToken(r.URL.Query().Get("token")) {
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Invalid token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"BrandDatasets": []BrandDataset{
				{AAIABrandID: "BDZV", BrandName: "Goodyear Tire", DatasetID: 1, DatasetName: "Tires 2026"},
				{AAIABrandID: "BDZV", BrandName: "Goodyear Tire", DatasetID: 2, DatasetName: "Wheels 2026"},
			},
		})
	})

	mux.HandleFunc("/lookup/products", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		token, _ := payload["token"].(string)
		if !f.validToken(token) {
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Invalid token"})
			return
		}
		short := "Wrangler Tire"
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"Products": []Product{{
				ProductID:  900,
				PartNumber: "100",
				PiesAttributes: []PiesAttribute{
					{PiesName: "Product Description - Short", PiesSegment: "C10_SHO_EN", Value: &short},
					{PiesName: "Missing", PiesSegment: "C10_EXT_EN", Value: nil},
				},
			}},
		})
	})

	mux.HandleFunc("/lookup/vehiclesbyproduct", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		token, _ := payload["token"].(string)
		if !f.validToken(token) {
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Invalid token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"Parts": []PartVehicles{{
				PartNumber: "100",
				Vehicles: []Vehicle{
					{VehicleID: 11, BaseVehicleID: 101, Year: 2020, MakeName: "Jeep", ModelName: "Wrangler"},
				},
			}},
		})
	})

	mux.HandleFunc("/content/product", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("contenttoken")
		if f.expireFirst && token == "content-1" {
			fmt.Fprint(w, "Invalid token")
			return
		}
		fmt.Fprintf(w, "<div>product %s</div>", r.URL.Query().Get("productid"))
	})

	return mux
}

func newTestConnector(t *testing.T, fake *fakeSDC) *Connector {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	return NewConnector(Config{
		BaseURL:  server.URL,
		Username: fake.username,
		Password: fake.password,
	})
}

func TestConnect(t *testing.T) {
	fake := &fakeSDC{username: "user", password: "pass"}
	connector := newTestConnector(t, fake)

	require.NoError(t, connector.Connect(context.Background()))
	assert.True(t, connector.IsConnected())
	assert.Equal(t, 1, fake.tokenCount)
	assert.Equal(t, 1, fake.contentCount)

	require.NoError(t, connector.Close())
	assert.False(t, connector.IsConnected())
}

func TestConnectBadCredentials(t *testing.T) {
	fake := &fakeSDC{username: "user", password: "pass"}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	connector := NewConnector(Config{BaseURL: server.URL, Username: "user", Password: "wrong"})
	err := connector.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestConnectMissingCredentials(t *testing.T) {
	connector := NewConnector(Config{
		BaseURL:     "http://unused",
		UsernameEnv: "JOCKEY_TEST_MISSING_USER",
		PasswordEnv: "JOCKEY_TEST_MISSING_PASS",
	})
	err := connector.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOCKEY_TEST_MISSING_USER")
}

func TestFetchBrandDatasets(t *testing.T) {
	connector := newTestConnector(t, &fakeSDC{username: "user", password: "pass"})
	require.NoError(t, connector.Connect(context.Background()))

	datasets, err := connector.FetchBrandDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "BDZV", datasets[0].AAIABrandID)
	assert.Equal(t, "Tires 2026", datasets[0].DatasetName)
	assert.Equal(t, 2, datasets[1].DatasetID)
}

func TestFetchProducts(t *testing.T) {
	connector := newTestConnector(t, &fakeSDC{username: "user", password: "pass"})
	require.NoError(t, connector.Connect(context.Background()))

	products, err := connector.FetchProducts(context.Background(), []int{1}, []string{"C10_SHO_EN"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 900, products[0].ProductID)
	assert.Equal(t, "100", products[0].PartNumber)

	attrs := products[0].PiesAttributes
	require.Len(t, attrs, 2)
	assert.Equal(t, "Wrangler Tire", *attrs[0].Value)
	assert.Nil(t, attrs[1].Value)
}

func TestFetchVehiclesByProduct(t *testing.T) {
	connector := newTestConnector(t, &fakeSDC{username: "user", password: "pass"})
	require.NoError(t, connector.Connect(context.Background()))

	parts, err := connector.FetchVehiclesByProduct(context.Background(), 1, []string{"100"})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "100", parts[0].PartNumber)
	assert.Equal(t, 101, parts[0].Vehicles[0].BaseVehicleID)
}

func TestExpiredTokenRefreshesOnce(t *testing.T) {
	fake := &fakeSDC{username: "user", password: "pass", expireFirst: true}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	connector := NewConnector(Config{BaseURL: server.URL, Username: "user", Password: "pass"})

	// First session token is rejected by data calls; the connector must
	// refresh and repeat the request transparently.
	require.NoError(t, connector.Test(context.Background()))
	assert.Equal(t, 1, fake.tokenCount)

	datasets, err := connector.FetchBrandDatasets(context.Background())
	require.NoError(t, err)
	assert.Len(t, datasets, 2)
	assert.Equal(t, 2, fake.tokenCount)
}

func TestFetchProductHTML(t *testing.T) {
	connector := newTestConnector(t, &fakeSDC{username: "user", password: "pass"})
	require.NoError(t, connector.Connect(context.Background()))

	html, err := connector.FetchProductHTML(context.Background(), 900)
	require.NoError(t, err)
	assert.Equal(t, "<div>product 900</div>", html)
}

func TestFetchProductHTMLRefreshesContentToken(t *testing.T) {
	fake := &fakeSDC{username: "user", password: "pass", expireFirst: true}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	connector := NewConnector(Config{BaseURL: server.URL, Username: "user", Password: "pass"})

	html, err := connector.FetchProductHTML(context.Background(), 900)
	require.NoError(t, err)
	assert.Equal(t, "<div>product 900</div>", html)
}
