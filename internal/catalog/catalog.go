// Package catalog maps a user's country to the backend databases used for
// guideline and drug lookups.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFallback is used when a catalog does not name a fallback database
const DefaultFallback = "english"

//go:embed default.yaml
var defaultCatalog []byte

// Country is one catalog entry
type Country struct {
	Code       string `yaml:"-" json:"code"`
	Name       string `yaml:"name" json:"name"`
	Guidelines string `yaml:"guidelines" json:"guidelines"`
	Drugs      string `yaml:"drugs" json:"drugs"`
}

// Catalog is the parsed country/database mapping
type Catalog struct {
	Fallback  string              `yaml:"fallback"`
	Countries map[string]*Country `yaml:"countries"`
}

// Default returns the catalog embedded in the binary
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path returns the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and normalizes country codes to lower case
func Parse(data []byte) (*Catalog, error) {
	var raw Catalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		Fallback:  strings.TrimSpace(raw.Fallback),
		Countries: make(map[string]*Country, len(raw.Countries)),
	}
	if c.Fallback == "" {
		c.Fallback = DefaultFallback
	}
	for code, country := range raw.Countries {
		if country == nil {
			return nil, fmt.Errorf("parse catalog: country %q has no entry", code)
		}
		code = normalize(code)
		country.Code = code
		c.Countries[code] = country
	}
	return c, nil
}

// FallbackDatabase is retried when a lookup against a country database fails
func (c *Catalog) FallbackDatabase() string {
	return c.Fallback
}

// GuidelineDatabase returns the guideline database for a country code
func (c *Catalog) GuidelineDatabase(country string) string {
	if e, ok := c.Countries[normalize(country)]; ok && e.Guidelines != "" {
		return e.Guidelines
	}
	return c.Fallback
}

// DrugDatabase returns the drug database for a country code
func (c *Catalog) DrugDatabase(country string) string {
	if e, ok := c.Countries[normalize(country)]; ok && e.Drugs != "" {
		return e.Drugs
	}
	return c.Fallback
}

// Known reports whether the country code has an entry
func (c *Catalog) Known(country string) bool {
	_, ok := c.Countries[normalize(country)]
	return ok
}

// List returns every country sorted by name
func (c *Catalog) List() []Country {
	out := make([]Country, 0, len(c.Countries))
	for _, e := range c.Countries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
