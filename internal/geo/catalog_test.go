package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFind(t *testing.T) {
	catalog, err := NewCatalog(
		[]City{
			{Name: "São Paulo", State: "São Paulo", Latitude: -23.55, Longitude: -46.63, Station: "A701"},
			{Name: "Poços de Caldas", State: "Minas Gerais", Latitude: -21.79, Longitude: -46.56},
		},
		[]City{{Name: "Goiânia", State: "Goiás", Latitude: -16.69, Longitude: -49.26}},
	)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"exact", "São Paulo", "São Paulo"},
		{"lowercase", "são paulo", "São Paulo"},
		{"accent free", "sao paulo", "São Paulo"},
		{"mixed folding", "POCOS DE CALDAS", "Poços de Caldas"},
		{"extra whitespace", "  sao   paulo ", "São Paulo"},
		{"capital entry", "goiania", "Goiânia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, ok := catalog.Find(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.want, city.Name)
		})
	}

	t.Run("unknown city", func(t *testing.T) {
		_, ok := catalog.Find("Atlantis")
		assert.False(t, ok)
	})

	t.Run("city entry wins over capital with the same name", func(t *testing.T) {
		catalog, err := NewCatalog(
			[]City{{Name: "São Paulo", Station: "A701", Latitude: -23.55, Longitude: -46.63}},
			[]City{{Name: "São Paulo", Latitude: -23.55, Longitude: -46.63}},
		)
		require.NoError(t, err)

		city, ok := catalog.Find("sao paulo")
		require.True(t, ok)
		assert.Equal(t, "A701", city.Station)
	})
}

func TestNewCatalog_MissingName(t *testing.T) {
	_, err := NewCatalog([]City{{Latitude: 1, Longitude: 2}}, nil)
	require.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.yaml")
	data := `
cities:
  - name: Curitiba
    state: Paraná
    latitude: -25.4284
    longitude: -49.2733
    inmet_station: A807
capitals:
  - name: Curitiba
    state: Paraná
    latitude: -25.4284
    longitude: -49.2733
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, catalog.Cities(), 1)
	assert.Len(t, catalog.Capitals(), 1)

	city, ok := catalog.Find("curitiba")
	require.True(t, ok)
	assert.Equal(t, "A807", city.Station)
	assert.InDelta(t, -25.4284, city.Latitude, 1e-9)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
