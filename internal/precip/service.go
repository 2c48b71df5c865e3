package precip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chuvadata/precip-aggregation/internal/geo"
	"github.com/chuvadata/precip-aggregation/internal/observability"
	"github.com/chuvadata/precip-aggregation/internal/store"
)

var (
	// ErrUnknownCity is returned when a city is neither in the catalog nor
	// resolvable through geocoding.
	ErrUnknownCity = errors.New("unknown city")

	// ErrUpstream is returned when every configured provider failed for a
	// request.
	ErrUpstream = errors.New("upstream providers unavailable")
)

// DefaultCacheTTL is used for any result cache the caller did not supply.
const DefaultCacheTTL = 5 * time.Minute

// Providers bundles the upstream sources the service draws from. Hourly
// providers form an ordered failover chain; Archive serves long-range daily
// sums for monthly rollups, Recent short-range daily sums for state totals.
type Providers struct {
	Hourly  []HourlyProvider
	Archive DailyProvider
	Recent  DailyProvider
}

// Caches are the injected TTL memos, keyed by location and window.
type Caches struct {
	Hourly  *store.TTLCache[Outlook]
	Monthly *store.TTLCache[MonthlySummary]
	States  *store.TTLCache[StateSummary]
}

// Settings carries the aggregation defaults applied when a request does not
// override them.
type Settings struct {
	Timezone       *time.Location
	PastDays       int
	ForecastDays   int
	TrailingMonths int
	StateDays      int
}

// Outlook is the hourly observed/forecast view for one city, ready for a
// line chart with a solid observed segment and a dashed forecast segment.
type Outlook struct {
	City        string    `json:"city"`
	State       string    `json:"state,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
	Source      string    `json:"source"`
	Observed    Series    `json:"observed"`
	Forecast    Series    `json:"forecast"`
	Latest      *Sample   `json:"latest,omitempty"`
	Intensity   Intensity `json:"intensity"`
	Precip24hMM float64   `json:"precip24hMm"`
	DroppedRows int       `json:"droppedRows,omitempty"`
}

// MonthlySummary is the trailing monthly totals for one city.
type MonthlySummary struct {
	City   string         `json:"city"`
	State  string         `json:"state,omitempty"`
	Source string         `json:"source"`
	Months []MonthlyTotal `json:"months"`
}

// StateTotal is the accumulated precipitation at one state's capital.
type StateTotal struct {
	State   string  `json:"state"`
	Capital string  `json:"capital"`
	TotalMM float64 `json:"totalMm"`
}

// StateSummary is the per-state accumulation feed for the country heatmap.
type StateSummary struct {
	Days        int          `json:"days"`
	GeneratedAt time.Time    `json:"generatedAt"`
	States      []StateTotal `json:"states"`
}

// OutlookRequest parameterizes HourlyOutlook. Zero PastDays and negative
// ForecastDays mean the configured defaults; ForecastDays of 0 is a valid
// request for no forecast hours. Refresh invalidates the cached result
// before fetching.
type OutlookRequest struct {
	City         string
	PastDays     int
	ForecastDays int
	Refresh      bool
}

// MonthlyRequest parameterizes MonthlyTotals.
type MonthlyRequest struct {
	City    string
	Months  int
	Refresh bool
}

// StateTotalsRequest parameterizes StateTotals.
type StateTotalsRequest struct {
	Days    int
	Refresh bool
}

// Service orchestrates city resolution, provider fetches, normalization,
// and caching. All methods are safe for concurrent use.
type Service struct {
	catalog   *geo.Catalog
	resolver  geo.CityResolver
	providers Providers
	caches    Caches
	settings  Settings
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService creates a Service. A nil resolver disables geocoding fallback;
// nil caches, clock, logger, and metrics get working defaults so tests can
// pass only what they exercise.
func NewService(
	catalog *geo.Catalog,
	resolver geo.CityResolver,
	providers Providers,
	caches Caches,
	settings Settings,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	if settings.Timezone == nil {
		settings.Timezone = time.UTC
	}
	if settings.PastDays <= 0 {
		settings.PastDays = 7
	}
	if settings.ForecastDays < 0 {
		settings.ForecastDays = 2
	}
	if settings.TrailingMonths <= 0 {
		settings.TrailingMonths = 12
	}
	if settings.StateDays <= 0 {
		settings.StateDays = 7
	}
	if caches.Hourly == nil {
		caches.Hourly = store.NewTTLCache[Outlook](DefaultCacheTTL, clock)
	}
	if caches.Monthly == nil {
		caches.Monthly = store.NewTTLCache[MonthlySummary](DefaultCacheTTL, clock)
	}
	if caches.States == nil {
		caches.States = store.NewTTLCache[StateSummary](DefaultCacheTTL, clock)
	}

	return &Service{
		catalog:   catalog,
		resolver:  resolver,
		providers: providers,
		caches:    caches,
		settings:  settings,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// HourlyOutlook builds the observed/forecast hourly view for a city,
// serving from cache when a live entry exists.
func (s *Service) HourlyOutlook(ctx context.Context, req OutlookRequest) (Outlook, error) {
	city, err := s.resolveCity(req.City)
	if err != nil {
		return Outlook{}, err
	}

	pastDays := req.PastDays
	if pastDays <= 0 {
		pastDays = s.settings.PastDays
	}
	forecastDays := req.ForecastDays
	if forecastDays < 0 {
		forecastDays = s.settings.ForecastDays
	}

	key := fmt.Sprintf("hourly:%s:p%d:f%d", city.Key(), pastDays, forecastDays)
	if req.Refresh {
		s.caches.Hourly.Invalidate(key)
	} else if cached, ok := s.caches.Hourly.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues("hourly", "hit").Inc()
		return cached, nil
	}
	s.metrics.CacheLookups.WithLabelValues("hourly", "miss").Inc()

	cols, source, err := s.fetchHourly(ctx, city, pastDays, forecastDays)
	if err != nil {
		return Outlook{}, err
	}

	series, dropped, err := Normalize(cols.Times, cols.Values, s.settings.Timezone)
	if err != nil {
		return Outlook{}, fmt.Errorf("normalize %s columns: %w", source, err)
	}
	s.recordDropped(source, city.Name, dropped)

	now := s.clock.Now().In(s.settings.Timezone)
	observed, forecast := Partition(series, now)

	outlook := Outlook{
		City:        city.Name,
		State:       city.State,
		GeneratedAt: now,
		Source:      source,
		Observed:    observed,
		Forecast:    forecast,
		Intensity:   IntensityNone,
		Precip24hMM: WindowTotal(series, now, 24*time.Hour),
		DroppedRows: len(dropped),
	}
	if latest, ok := LatestObserved(series, now); ok {
		outlook.Latest = &latest
		outlook.Intensity = ClassifyIntensity(latest.Value)
	}

	s.caches.Hourly.Put(key, outlook)
	return outlook, nil
}

// MonthlyTotals builds the trailing monthly precipitation sums for a city
// from the archive daily provider.
func (s *Service) MonthlyTotals(ctx context.Context, req MonthlyRequest) (MonthlySummary, error) {
	city, err := s.resolveCity(req.City)
	if err != nil {
		return MonthlySummary{}, err
	}

	months := req.Months
	if months <= 0 {
		months = s.settings.TrailingMonths
	}

	key := fmt.Sprintf("monthly:%s:m%d", city.Key(), months)
	if req.Refresh {
		s.caches.Monthly.Invalidate(key)
	} else if cached, ok := s.caches.Monthly.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues("monthly", "hit").Inc()
		return cached, nil
	}
	s.metrics.CacheLookups.WithLabelValues("monthly", "miss").Inc()

	if s.providers.Archive == nil {
		return MonthlySummary{}, fmt.Errorf("%w: no archive provider configured", ErrUpstream)
	}

	// Fetch daily sums from the start of the oldest wanted month so the
	// rollup has every bucket covered, current partial month included.
	now := s.clock.Now().In(s.settings.Timezone)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.settings.Timezone)
	start := monthStart.AddDate(0, -(months - 1), 0)

	cols, err := s.fetchDaily(ctx, s.providers.Archive, city, start, now)
	if err != nil {
		return MonthlySummary{}, err
	}

	series, dropped, err := Normalize(cols.Times, cols.Values, s.settings.Timezone)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("normalize %s columns: %w", s.providers.Archive.Name(), err)
	}
	s.recordDropped(s.providers.Archive.Name(), city.Name, dropped)

	summary := MonthlySummary{
		City:   city.Name,
		State:  city.State,
		Source: s.providers.Archive.Name(),
		Months: MonthlyRollup(series, s.settings.Timezone, months),
	}
	s.caches.Monthly.Put(key, summary)
	return summary, nil
}

// StateTotals accumulates the trailing daily precipitation at every state
// capital. Capitals are independent units of work and are fetched
// concurrently; a failed state is omitted from the result rather than
// failing the whole request.
func (s *Service) StateTotals(ctx context.Context, req StateTotalsRequest) (StateSummary, error) {
	days := req.Days
	if days <= 0 {
		days = s.settings.StateDays
	}

	key := fmt.Sprintf("states:d%d", days)
	if req.Refresh {
		s.caches.States.Invalidate(key)
	} else if cached, ok := s.caches.States.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues("states", "hit").Inc()
		return cached, nil
	}
	s.metrics.CacheLookups.WithLabelValues("states", "miss").Inc()

	if s.providers.Recent == nil {
		return StateSummary{}, fmt.Errorf("%w: no daily provider configured", ErrUpstream)
	}
	capitals := s.catalog.Capitals()
	if len(capitals) == 0 {
		return StateSummary{}, errors.New("catalog has no state capitals")
	}

	now := s.clock.Now().In(s.settings.Timezone)
	start := now.AddDate(0, 0, -days)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		states []StateTotal
	)
	for _, capital := range capitals {
		capital := capital
		wg.Add(1)
		go func() {
			defer wg.Done()

			cols, err := s.fetchDaily(ctx, s.providers.Recent, capital, start, now)
			if err != nil {
				s.logger.Warn("state fetch failed", "state", capital.State, "capital", capital.Name, "error", err)
				return
			}

			series, dropped, err := Normalize(cols.Times, cols.Values, s.settings.Timezone)
			if err != nil {
				s.logger.Warn("state normalize failed", "state", capital.State, "error", err)
				return
			}
			s.recordDropped(s.providers.Recent.Name(), capital.Name, dropped)

			var total float64
			for _, sample := range series {
				total += sample.Value
			}

			mu.Lock()
			states = append(states, StateTotal{State: capital.State, Capital: capital.Name, TotalMM: total})
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(states) == 0 {
		return StateSummary{}, fmt.Errorf("%w: every state fetch failed", ErrUpstream)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].State < states[j].State
	})

	summary := StateSummary{Days: days, GeneratedAt: now, States: states}
	s.caches.States.Put(key, summary)
	return summary, nil
}

// resolveCity finds a city in the catalog, falling back to geocoding when
// one is configured.
func (s *Service) resolveCity(name string) (geo.City, error) {
	if name == "" {
		return geo.City{}, fmt.Errorf("%w: empty city name", ErrUnknownCity)
	}
	if city, ok := s.catalog.Find(name); ok {
		return city, nil
	}
	if s.resolver == nil {
		return geo.City{}, fmt.Errorf("%w: %s", ErrUnknownCity, name)
	}

	city, err := s.resolver.Resolve(name)
	if err != nil {
		if !errors.Is(err, geo.ErrGeocodingDisabled) {
			s.logger.Warn("geocoding failed", "city", name, "error", err)
		}
		return geo.City{}, fmt.Errorf("%w: %s", ErrUnknownCity, name)
	}
	return city, nil
}

// fetchHourly walks the hourly provider chain in order and returns the
// first successful result together with the provider's name.
func (s *Service) fetchHourly(ctx context.Context, city geo.City, pastDays, forecastDays int) (RawColumns, string, error) {
	if len(s.providers.Hourly) == 0 {
		return RawColumns{}, "", fmt.Errorf("%w: no hourly providers configured", ErrUpstream)
	}

	var lastErr error
	for _, p := range s.providers.Hourly {
		began := s.clock.Now()
		cols, err := p.FetchHourly(ctx, city, pastDays, forecastDays)
		s.metrics.ProviderDuration.WithLabelValues(p.Name()).Observe(s.clock.Now().Sub(began).Seconds())

		if err != nil {
			s.metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
			s.logger.Warn("hourly provider failed", "provider", p.Name(), "city", city.Name, "error", err)
			lastErr = err
			continue
		}
		s.metrics.ProviderRequests.WithLabelValues(p.Name(), "success").Inc()
		return cols, p.Name(), nil
	}
	return RawColumns{}, "", fmt.Errorf("%w: %v", ErrUpstream, lastErr)
}

func (s *Service) fetchDaily(ctx context.Context, p DailyProvider, city geo.City, start, end time.Time) (RawColumns, error) {
	began := s.clock.Now()
	cols, err := p.FetchDaily(ctx, city, start, end)
	s.metrics.ProviderDuration.WithLabelValues(p.Name()).Observe(s.clock.Now().Sub(began).Seconds())

	if err != nil {
		s.metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
		return RawColumns{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.metrics.ProviderRequests.WithLabelValues(p.Name(), "success").Inc()
	return cols, nil
}

func (s *Service) recordDropped(source, city string, dropped []ParseError) {
	if len(dropped) == 0 {
		return
	}
	s.metrics.RowsDropped.WithLabelValues(source).Add(float64(len(dropped)))
	s.logger.Warn("dropped malformed rows",
		"source", source, "city", city, "rows", len(dropped), "first", dropped[0].Error())
}
