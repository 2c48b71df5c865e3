package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries every process-level setting. Values come from the
// environment (optionally seeded from a .env file); the city catalog lives
// in its own YAML file referenced by CitiesFile.
type AppConfig struct {
	Port string

	// CitiesFile is the YAML location catalog (cities + state capitals).
	CitiesFile string

	// Timezone is the civil timezone applied to offset-less timestamps and
	// to all partitioning and rollup boundaries.
	Timezone *time.Location

	// Aggregation window defaults, overridable per request.
	PastDays       int
	ForecastDays   int
	TrailingMonths int
	StateDays      int

	// HourlyProviders is the ordered failover chain, e.g.
	// "openmeteo,inmet,wttr".
	HourlyProviders []string

	// Result cache TTLs. Monthly and state rollups change slowly and get a
	// longer default.
	CacheTTL        time.Duration
	MonthlyCacheTTL time.Duration

	// RefreshInterval controls the cache-warming scheduler; zero disables it.
	RefreshInterval time.Duration

	// HTTPTimeout bounds each outbound provider request.
	HTTPTimeout time.Duration

	GoogleWeatherAPIKey string
	GeocoderAPIKey      string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment with defaults matching the
// original dashboards: São Paulo civil time, 7 past + 2 forecast days,
// 12 trailing months, 5-minute cache.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:                getenvDefault("PORT", "8080"),
		CitiesFile:          getenvDefault("CITIES_FILE", "configs/cities.yaml"),
		PastDays:            getenvInt("PAST_DAYS", 7),
		ForecastDays:        getenvInt("FORECAST_DAYS", 2),
		TrailingMonths:      getenvInt("TRAILING_MONTHS", 12),
		StateDays:           getenvInt("STATE_DAYS", 7),
		GoogleWeatherAPIKey: os.Getenv("GOOGLE_WEATHER_API_KEY"),
		GeocoderAPIKey:      os.Getenv("GEOCODER_API_KEY"),
		LogLevel:            getenvDefault("LOG_LEVEL", "info"),
		LogFormat:           getenvDefault("LOG_FORMAT", "json"),
	}

	tzName := getenvDefault("TIMEZONE", "America/Sao_Paulo")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}
	cfg.Timezone = tz

	for _, name := range strings.Split(getenvDefault("HOURLY_PROVIDERS", "openmeteo,inmet,wttr"), ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name != "" {
			cfg.HourlyProviders = append(cfg.HourlyProviders, name)
		}
	}
	if len(cfg.HourlyProviders) == 0 {
		return nil, fmt.Errorf("HOURLY_PROVIDERS must name at least one provider")
	}

	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MonthlyCacheTTL, err = getenvDuration("MONTHLY_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if cfg.PastDays < 1 || cfg.PastDays > 14 {
		return nil, fmt.Errorf("PAST_DAYS must be between 1 and 14, got %d", cfg.PastDays)
	}
	if cfg.ForecastDays < 0 || cfg.ForecastDays > 2 {
		return nil, fmt.Errorf("FORECAST_DAYS must be between 0 and 2, got %d", cfg.ForecastDays)
	}
	if cfg.TrailingMonths < 1 || cfg.TrailingMonths > 24 {
		return nil, fmt.Errorf("TRAILING_MONTHS must be between 1 and 24, got %d", cfg.TrailingMonths)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
