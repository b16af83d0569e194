package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommercejockey/jockey/internal/calculator"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.premierwd.com/api/v5", cfg.Sources.Premier.BaseURL)
	assert.Equal(t, "PREMIER_API_KEY", cfg.Sources.Premier.APIKeyEnv)
	assert.Equal(t, "jockey", cfg.Shopify.Store)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, calculator.OptionSemaDescriptionSho, cfg.Calculator.Product.TitleOption)
}

func TestSaveToLoadFromRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Shopify.Store = "my-shop"
	cfg.Sources.Sema.UsernameEnv = "MY_SEMA_USER"
	cfg.Database.Postgres.Host = "db.internal"
	cfg.Calculator.Product.PriceMarkup = 1.35
	require.NoError(t, SaveTo(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "my-shop", loaded.Shopify.Store)
	assert.Equal(t, "MY_SEMA_USER", loaded.Sources.Sema.UsernameEnv)
	assert.Equal(t, "db.internal", loaded.Database.Postgres.Host)
	assert.Equal(t, 1.35, loaded.Calculator.Product.PriceMarkup)
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := `
shopify:
  store: my-shop
  api_key_env: MY_SHOPIFY_KEY
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "my-shop", cfg.Shopify.Store)
	assert.Equal(t, "MY_SHOPIFY_KEY", cfg.Shopify.APIKeyEnv)
	// Missing sections fall back to the defaults
	assert.Equal(t, "https://sdc.semadatacoop.org/sdcapi", cfg.Sources.Sema.BaseURL)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, 9000, cfg.Database.ClickHouse.Port)
	assert.Equal(t, 1.2, cfg.Calculator.Product.PriceMarkup)
	assert.Equal(t, calculator.OptionSemaCategoryTags, cfg.Calculator.Collection.TitleOption)
}

func TestLoadFromRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shopify: [not: a: map"), 0644))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
