package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ecommercejockey/jockey/internal/calculator"
)

const (
	DefaultConfigDir  = ".jockey"
	DefaultConfigFile = "config.yaml"
)

// Config represents the application configuration
type Config struct {
	Sources    SourcesConfig    `yaml:"sources"`
	Shopify    ShopifyConfig    `yaml:"shopify"`
	Database   DatabaseConfig   `yaml:"database,omitempty"`
	Calculator CalculatorConfig `yaml:"calculator,omitempty"`
}

// SourcesConfig contains configuration for the upstream vendor APIs
type SourcesConfig struct {
	Premier PremierConfig `yaml:"premier"`
	Sema    SemaConfig    `yaml:"sema"`
}

// PremierConfig holds Premier API settings
type PremierConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
}

// SemaConfig holds SEMA Data Co-op API settings
type SemaConfig struct {
	BaseURL     string `yaml:"base_url"`
	UsernameEnv string `yaml:"username_env"` // Environment variable for username
	PasswordEnv string `yaml:"password_env"` // Environment variable for password
}

// ShopifyConfig holds storefront settings
type ShopifyConfig struct {
	Store     string `yaml:"store"`       // Store name (e.g., "jockey")
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// PostgresConfig holds PostgreSQL settings
type PostgresConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	SSLMode     string `yaml:"ssl_mode"`
}

// ClickHouseConfig holds ClickHouse settings for observation history
type ClickHouseConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	Secure      bool   `yaml:"secure"`
}

// CalculatorConfig holds the default source options for derived fields
type CalculatorConfig struct {
	Product    calculator.Config           `yaml:"product"`
	Collection calculator.CollectionConfig `yaml:"collection"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			Premier: PremierConfig{
				BaseURL:   "https://api.premierwd.com/api/v5",
				APIKeyEnv: "PREMIER_API_KEY",
			},
			Sema: SemaConfig{
				BaseURL:     "https://sdc.semadatacoop.org/sdcapi",
				UsernameEnv: "SEMA_USERNAME",
				PasswordEnv: "SEMA_PASSWORD",
			},
		},
		Shopify: ShopifyConfig{
			Store:     "jockey",
			APIKeyEnv: "SHOPIFY_API_KEY",
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:        "localhost",
				Port:        5432,
				Database:    "jockey",
				UsernameEnv: "POSTGRES_USER",
				PasswordEnv: "POSTGRES_PASSWORD",
				SSLMode:     "prefer",
			},
			ClickHouse: ClickHouseConfig{
				Host:        "localhost",
				Port:        9000,
				Database:    "jockey",
				UsernameEnv: "CLICKHOUSE_USERNAME",
				PasswordEnv: "CLICKHOUSE_PASSWORD",
				Secure:      false,
			},
		},
		Calculator: CalculatorConfig{
			Product:    calculator.DefaultConfig(),
			Collection: calculator.DefaultCollectionConfig(),
		},
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the configuration from the config file
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	return &config, nil
}

// Save writes the configuration to the config file
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return SaveTo(config, configPath)
}

// SaveTo writes the configuration to a specific path
func SaveTo(config *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Init creates a new config file with defaults
func Init() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	return Save(DefaultConfig())
}

// Exists checks if the config file exists
func Exists() bool {
	configPath, err := GetConfigPath()
	if err != nil {
		return false
	}

	_, err = os.Stat(configPath)
	return err == nil
}

// applyDefaults fills in missing values with defaults
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Sources.Premier.BaseURL == "" {
		config.Sources.Premier.BaseURL = defaults.Sources.Premier.BaseURL
	}
	if config.Sources.Sema.BaseURL == "" {
		config.Sources.Sema.BaseURL = defaults.Sources.Sema.BaseURL
	}
	if config.Database.Postgres.Port == 0 {
		config.Database.Postgres.Port = defaults.Database.Postgres.Port
	}
	if config.Database.ClickHouse.Port == 0 {
		config.Database.ClickHouse.Port = defaults.Database.ClickHouse.Port
	}
	if config.Calculator.Product.TitleOption == "" {
		config.Calculator.Product = defaults.Calculator.Product
	}
	if config.Calculator.Collection.TitleOption == "" {
		config.Calculator.Collection = defaults.Calculator.Collection
	}
}

// Set updates a specific config value
func Set(key, value string) error {
	config, err := Load()
	if err != nil {
		return err
	}

	switch key {
	case "sources.premier.base_url":
		config.Sources.Premier.BaseURL = value
	case "sources.premier.api_key_env":
		config.Sources.Premier.APIKeyEnv = value
	case "sources.sema.base_url":
		config.Sources.Sema.BaseURL = value
	case "sources.sema.username_env":
		config.Sources.Sema.UsernameEnv = value
	case "sources.sema.password_env":
		config.Sources.Sema.PasswordEnv = value
	case "shopify.store":
		config.Shopify.Store = value
	case "shopify.api_key_env":
		config.Shopify.APIKeyEnv = value
	case "database.postgres.host":
		config.Database.Postgres.Host = value
	case "database.postgres.database":
		config.Database.Postgres.Database = value
	case "database.postgres.username_env":
		config.Database.Postgres.UsernameEnv = value
	case "database.postgres.password_env":
		config.Database.Postgres.PasswordEnv = value
	case "database.clickhouse.host":
		config.Database.ClickHouse.Host = value
	case "database.clickhouse.database":
		config.Database.ClickHouse.Database = value
	case "calculator.product.title_option":
		config.Calculator.Product.TitleOption = calculator.Option(value)
	case "calculator.product.body_html_option":
		config.Calculator.Product.BodyHTMLOption = calculator.Option(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return Save(config)
}

// Get retrieves a specific config value
func Get(key string) (string, error) {
	config, err := Load()
	if err != nil {
		return "", err
	}

	switch key {
	case "sources.premier.base_url":
		return config.Sources.Premier.BaseURL, nil
	case "sources.premier.api_key_env":
		return config.Sources.Premier.APIKeyEnv, nil
	case "sources.sema.base_url":
		return config.Sources.Sema.BaseURL, nil
	case "sources.sema.username_env":
		return config.Sources.Sema.UsernameEnv, nil
	case "sources.sema.password_env":
		return config.Sources.Sema.PasswordEnv, nil
	case "shopify.store":
		return config.Shopify.Store, nil
	case "shopify.api_key_env":
		return config.Shopify.APIKeyEnv, nil
	case "database.postgres.host":
		return config.Database.Postgres.Host, nil
	case "database.postgres.database":
		return config.Database.Postgres.Database, nil
	case "database.postgres.username_env":
		return config.Database.Postgres.UsernameEnv, nil
	case "database.postgres.password_env":
		return config.Database.Postgres.PasswordEnv, nil
	case "database.clickhouse.host":
		return config.Database.ClickHouse.Host, nil
	case "database.clickhouse.database":
		return config.Database.ClickHouse.Database, nil
	case "calculator.product.title_option":
		return string(config.Calculator.Product.TitleOption), nil
	case "calculator.product.body_html_option":
		return string(config.Calculator.Product.BodyHTMLOption), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}
