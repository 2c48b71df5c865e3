package precip

import (
	"context"
	"time"

	"github.com/chuvadata/precip-aggregation/internal/geo"
)

// HourlyProvider abstracts an upstream source of hourly precipitation
// (e.g. Open-Meteo, INMET, wttr.in, Google Weather). Implementations return
// raw columns exactly as the wire carries them; normalization happens in the
// core. Providers that cannot serve a city (missing station code, missing
// API key) return an error so the failover chain can move on.
type HourlyProvider interface {
	Name() string
	FetchHourly(ctx context.Context, city geo.City, pastDays, forecastDays int) (RawColumns, error)
}

// DailyProvider abstracts a source of daily precipitation sums over a date
// range, feeding the monthly rollup and the per-state totals.
type DailyProvider interface {
	Name() string
	FetchDaily(ctx context.Context, city geo.City, start, end time.Time) (RawColumns, error)
}
