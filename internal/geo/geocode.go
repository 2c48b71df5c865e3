package geo

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kelvins/geocoder"

	"github.com/chuvadata/precip-aggregation/internal/store"
)

// ErrGeocodingDisabled is returned when no geocoder API key is configured.
var ErrGeocodingDisabled = errors.New("geocoding is not configured")

// CityResolver finds coordinates for cities missing from the catalog.
type CityResolver interface {
	Resolve(name string) (City, error)
}

// Resolver resolves city names through the Google geocoding API.
type Resolver struct {
	enabled bool
}

// NewResolver configures the geocoding backend. An empty API key disables
// resolution; every Resolve call then fails with ErrGeocodingDisabled.
func NewResolver(apiKey string) *Resolver {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &Resolver{enabled: apiKey != ""}
}

func (r *Resolver) Resolve(name string) (City, error) {
	if !r.enabled {
		return City{}, ErrGeocodingDisabled
	}

	location, err := geocoder.Geocoding(geocoder.Address{
		City:    name,
		Country: "Brazil",
	})
	if err != nil {
		return City{}, fmt.Errorf("geocode %q: %w", name, err)
	}

	return City{
		Name:      name,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}, nil
}

// CachedResolver memoizes successful resolutions so repeated queries for the
// same off-catalog city do not re-hit the geocoding API.
type CachedResolver struct {
	inner CityResolver
	cache *store.TTLCache[City]
}

// NewCachedResolver wraps a resolver with a TTL memo.
func NewCachedResolver(inner CityResolver, ttl time.Duration, clock clockwork.Clock) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: store.NewTTLCache[City](ttl, clock),
	}
}

func (r *CachedResolver) Resolve(name string) (City, error) {
	key := normalizeName(name)
	if city, ok := r.cache.Get(key); ok {
		return city, nil
	}
	city, err := r.inner.Resolve(name)
	if err != nil {
		return City{}, err
	}
	r.cache.Put(key, city)
	return city, nil
}
