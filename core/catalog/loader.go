package catalog

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

//go:embed tiers.yaml
var defaultTiersYAML []byte

type catalogFile struct {
	Tiers []Tier `yaml:"tiers"`
}

// Parse builds a validated catalog from a YAML document
func Parse(data []byte) (*Catalog, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Config("failed to decode tier catalog", err)
	}
	if len(doc.Tiers) == 0 {
		return nil, errors.Config("tier catalog is empty", nil)
	}

	c := NewCatalog()
	for _, t := range doc.Tiers {
		if err := c.Register(t); err != nil {
			return nil, errors.Config("invalid tier catalog", err)
		}
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads a catalog from path
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("failed to read tier catalog "+path, err)
	}
	return Parse(data)
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := Parse(defaultTiersYAML)
	if err != nil {
		panic("built-in tier catalog is invalid: " + err.Error())
	}
	return c
}

// Load returns the catalog at path, or the built-in catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
