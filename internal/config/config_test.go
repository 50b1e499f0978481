package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestDefaultNeedsSecretOutsideDebug(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); !errors.IsType(err, errors.TypeConfig) {
		t.Fatalf("release mode with the built-in secret should fail, got %v", err)
	}

	cfg.Server.Mode = "debug"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("debug mode should accept the built-in secret: %v", err)
	}

	cfg = Default()
	cfg.Auth.JWTSecret = strongSecret
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with a real secret should validate: %v", err)
	}
}

func TestApplyEnvSecretSatisfiesValidate(t *testing.T) {
	t.Setenv("BIZNES_JWT_SECRET", strongSecret)
	cfg := Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biznes.yaml")
	data := `
server:
  addr: ":9090"
pricing:
  tax_rate: "0.05"
  deduct_spt_fee: true
database:
  driver: postgres
  dsn: postgres://localhost/biznes
auth:
  jwt_secret: 0123456789abcdef0123456789abcdef
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Server.Addr)
	}
	if !cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("expected tax 0.05, got %s", cfg.Pricing.TaxRate)
	}
	if !cfg.Pricing.DeductSPTFee {
		t.Error("expected deduct_spt_fee to be set")
	}
	// untouched keys keep their defaults
	if !cfg.Pricing.SPTFeePerItem.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected default SPT fee, got %s", cfg.Pricing.SPTFeePerItem)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biznes.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.IsType(err, errors.TypeConfig) {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"cfg.json", "cfg.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := Default()
			cfg.Cache.TTLSeconds = 42
			if err := cfg.Save(path); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if loaded.Cache.TTLSeconds != 42 {
				t.Errorf("expected ttl 42, got %d", loaded.Cache.TTLSeconds)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tax above one", func(c *Config) { c.Pricing.TaxRate = decimal.NewFromInt(3) }},
		{"negative spt", func(c *Config) { c.Pricing.SPTFeePerItem = decimal.NewFromInt(-1) }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }},
		{"events without url", func(c *Config) { c.Events.Enabled = true }},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"built-in secret in release", func(c *Config) { c.Auth.JWTSecret = DevJWTSecret }},
		{"short secret in release", func(c *Config) { c.Auth.JWTSecret = "s3cret" }},
		{"short secret in test mode", func(c *Config) {
			c.Auth.JWTSecret = "s3cret"
			c.Server.Mode = "test"
		}},
		{"negative ttl", func(c *Config) { c.Cache.TTLSeconds = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.JWTSecret = strongSecret
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("expected CONFIG_ERROR, got %v", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BIZNES_DATABASE_DSN", "postgres://db/biznes")
	t.Setenv("BIZNES_AMQP_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("BIZNES_REDIS_DB", "3")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if !cfg.Events.Enabled {
		t.Error("expected events to be enabled")
	}
	if cfg.Cache.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Cache.RedisDB)
	}
}

func TestWriteMasksSecrets(t *testing.T) {
	cfg := Default()
	cfg.Database.DSN = "postgres://user:hunter2@db/biznes"

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "change-me") {
		t.Errorf("secrets leaked:\n%s", out)
	}
	if cfg.Auth.JWTSecret != "change-me" {
		t.Error("Write must not modify the receiver")
	}
}
