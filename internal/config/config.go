// Package config provides configuration management.
package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Pricing contains calculator configuration
	Pricing PricingConfig `json:"pricing" yaml:"pricing"`

	// Cache contains quote cache configuration
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Database contains partner/workflow storage configuration
	Database DatabaseConfig `json:"database" yaml:"database"`

	// Events contains workflow event publishing configuration
	Events EventsConfig `json:"events" yaml:"events"`

	// Auth contains token configuration
	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP settings
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`

	// Mode is the gin mode (debug, release, test)
	Mode string `json:"mode" yaml:"mode"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is the settlement currency
	Currency types.Currency `json:"currency" yaml:"currency"`

	// TaxRate is the fraction of revenue withheld as tax
	TaxRate decimal.Decimal `json:"tax_rate" yaml:"tax_rate"`

	// SPTFeePerItem is the fixed per-item handling fee
	SPTFeePerItem decimal.Decimal `json:"spt_fee_per_item" yaml:"spt_fee_per_item"`

	// DeductSPTFee subtracts the handling fee from gross profit
	DeductSPTFee bool `json:"deduct_spt_fee" yaml:"deduct_spt_fee"`

	// CatalogPath is an optional YAML tier catalog; built-in tiers when empty
	CatalogPath string `json:"catalog_path,omitempty" yaml:"catalog_path,omitempty"`

	// FeeSchedulePath is an optional YAML fee schedule; built-in tables when empty
	FeeSchedulePath string `json:"fee_schedule_path,omitempty" yaml:"fee_schedule_path,omitempty"`
}

// CacheConfig contains cache-related settings
type CacheConfig struct {
	// Enabled enables quote caching
	Enabled bool `json:"enabled" yaml:"enabled"`

	// RedisAddr selects Redis; an in-memory cache is used when empty
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`

	// TTLSeconds is how long to cache a quote
	TTLSeconds int `json:"ttl_seconds" yaml:"ttl_seconds"`
}

// TTL returns the cache TTL as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// DatabaseConfig contains storage settings
type DatabaseConfig struct {
	// Driver is "memory" or "postgres"
	Driver string `json:"driver" yaml:"driver"`

	DSN          string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	MaxOpenConns int    `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns" yaml:"max_idle_conns"`
}

// EventsConfig contains RabbitMQ settings
type EventsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	AMQPURL string `json:"amqp_url,omitempty" yaml:"amqp_url,omitempty"`
	Queue   string `json:"queue" yaml:"queue"`
}

// AuthConfig contains JWT settings
type AuthConfig struct {
	JWTSecret       string `json:"jwt_secret" yaml:"jwt_secret"`
	Issuer          string `json:"issuer" yaml:"issuer"`
	TokenTTLMinutes int    `json:"token_ttl_minutes" yaml:"token_ttl_minutes"`
}

const (
	// DevJWTSecret is the built-in signing secret, accepted only in debug mode
	DevJWTSecret = "change-me"

	// MinJWTSecretLen is the shortest HS256 secret accepted outside debug mode
	MinJWTSecretLen = 32
)

// WeakSecret reports whether the signing secret is the built-in one or too
// short to resist guessing
func (a AuthConfig) WeakSecret() bool {
	return a.JWTSecret == DevJWTSecret || len(a.JWTSecret) < MinJWTSecretLen
}

// TokenTTL returns the token lifetime
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Pricing: PricingConfig{
			Currency:      types.CurrencyUZS,
			TaxRate:       decimal.RequireFromString("0.03"),
			SPTFeePerItem: decimal.NewFromInt(2000),
			DeductSPTFee:  false,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 900,
		},
		Database: DatabaseConfig{
			Driver:       "memory",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Events: EventsConfig{
			Enabled: false,
			Queue:   "biznes.workflow_events",
		},
		Auth: AuthConfig{
			JWTSecret:       DevJWTSecret,
			Issuer:          "biznesyordam",
			TokenTTLMinutes: 60 * 24,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. YAML is used for .yaml/.yml files,
// JSON otherwise. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Config("failed to decode "+path, err)
	}

	return config, nil
}

// ApplyEnv overrides secrets and endpoints from BIZNES_* variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BIZNES_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("BIZNES_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
		c.Database.Driver = "postgres"
	}
	if v := os.Getenv("BIZNES_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("BIZNES_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = n
		}
	}
	if v := os.Getenv("BIZNES_AMQP_URL"); v != "" {
		c.Events.AMQPURL = v
		c.Events.Enabled = true
	}
	if v := os.Getenv("BIZNES_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	one := decimal.NewFromInt(1)
	if c.Pricing.TaxRate.IsNegative() || c.Pricing.TaxRate.GreaterThan(one) {
		return errors.Config("pricing.tax_rate must be within [0,1]", nil)
	}
	if c.Pricing.SPTFeePerItem.IsNegative() {
		return errors.Config("pricing.spt_fee_per_item must not be negative", nil)
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.Config("database.dsn is required for the postgres driver", nil)
		}
	default:
		return errors.Config("unsupported database.driver: "+c.Database.Driver, nil)
	}
	if c.Events.Enabled && c.Events.AMQPURL == "" {
		return errors.Config("events.amqp_url is required when events are enabled", nil)
	}
	if c.Auth.JWTSecret == "" {
		return errors.Config("auth.jwt_secret is required", nil)
	}
	if c.Auth.WeakSecret() && c.Server.Mode != "debug" {
		return errors.Newf(errors.TypeConfig,
			"auth.jwt_secret must be at least %d bytes and not the built-in value outside debug mode; set BIZNES_JWT_SECRET",
			MinJWTSecretLen)
	}
	if c.Cache.TTLSeconds < 0 {
		return errors.Config("cache.ttl_seconds must not be negative", nil)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Write prints the configuration as YAML with secrets masked
func (c *Config) Write(w io.Writer) error {
	masked := *c
	if masked.Auth.JWTSecret != "" {
		masked.Auth.JWTSecret = "***"
	}
	if masked.Cache.RedisPassword != "" {
		masked.Cache.RedisPassword = "***"
	}
	if masked.Database.DSN != "" {
		masked.Database.DSN = "***"
	}
	if masked.Events.AMQPURL != "" {
		masked.Events.AMQPURL = "***"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return err
	}
	return enc.Close()
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
