package geo

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// City is one entry of the location catalog. State carries the full state
// name on capital entries (the choropleth feed is keyed by it) and may be
// empty on plain city entries. Station is an INMET automatic station code
// when one is configured for the city.
type City struct {
	Name      string  `yaml:"name" json:"name"`
	State     string  `yaml:"state,omitempty" json:"state,omitempty"`
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
	Station   string  `yaml:"inmet_station,omitempty" json:"inmetStation,omitempty"`
}

// Key returns a canonical string for indexing this city in caches and maps.
func (c City) Key() string {
	return normalizeName(c.Name) + ":" + strings.ToLower(c.State)
}

// Catalog is the set of selectable cities plus the state capitals backing
// the per-state totals. Loaded once at startup and read-only afterwards.
type Catalog struct {
	cities   []City
	capitals []City
	byName   map[string]City
}

type catalogFile struct {
	Cities   []City `yaml:"cities"`
	Capitals []City `yaml:"capitals"`
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	return NewCatalog(file.Cities, file.Capitals)
}

// NewCatalog builds a catalog from in-memory entries.
func NewCatalog(cities, capitals []City) (*Catalog, error) {
	c := &Catalog{
		cities:   cities,
		capitals: capitals,
		byName:   make(map[string]City, len(cities)+len(capitals)),
	}

	// Capitals first so a city entry for the same place wins the lookup;
	// city entries may carry extras like an INMET station.
	for _, capital := range capitals {
		if capital.Name == "" {
			return nil, fmt.Errorf("catalog capital entry missing name")
		}
		c.byName[normalizeName(capital.Name)] = capital
	}
	for _, city := range cities {
		if city.Name == "" {
			return nil, fmt.Errorf("catalog city entry missing name")
		}
		c.byName[normalizeName(city.Name)] = city
	}
	return c, nil
}

// Find looks a city up by name, ignoring case and accents, so that
// "sao paulo" matches "São Paulo".
func (c *Catalog) Find(name string) (City, bool) {
	city, ok := c.byName[normalizeName(name)]
	return city, ok
}

// Cities returns the selectable city list in catalog order.
func (c *Catalog) Cities() []City {
	return c.cities
}

// Capitals returns the state capital list in catalog order.
func (c *Catalog) Capitals() []City {
	return c.capitals
}

// stripAccents removes combining marks after NFD decomposition, turning
// "Goiânia" into "Goiania".
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeName(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
