package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/chuvadata/precip-aggregation/internal/geo"
	"github.com/chuvadata/precip-aggregation/internal/precip"
)

// OpenMeteoArchive serves long-range daily precipitation sums from the
// Open-Meteo ERA5 reanalysis archive, feeding the monthly rollups. The
// archive trails real time by a few days, which the rollup tolerates since
// months are never zero padded.
type OpenMeteoArchive struct {
	name     string
	baseURL  string
	timezone string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewOpenMeteoArchive(client *http.Client, timezone string) *OpenMeteoArchive {
	return &OpenMeteoArchive{
		name:     "openmeteo-archive",
		baseURL:  "https://archive-api.open-meteo.com/v1/era5",
		timezone: timezone,
		httpCfg:  defaultHTTPConfig(client),
		circuit:  newCircuit("openmeteo-archive"),
	}
}

func (p *OpenMeteoArchive) Name() string {
	return p.name
}

// FetchDaily retrieves daily precipitation sums between start and end.
func (p *OpenMeteoArchive) FetchDaily(ctx context.Context, city geo.City, start, end time.Time) (precip.RawColumns, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(city.Latitude))
	values.Set("longitude", formatCoord(city.Longitude))
	values.Set("daily", "precipitation_sum")
	values.Set("start_date", start.Format("2006-01-02"))
	values.Set("end_date", end.Format("2006-01-02"))
	values.Set("timezone", p.timezone)

	var payload openMeteoPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return precip.RawColumns{}, fmt.Errorf("openmeteo archive fetch: %w", err)
	}
	if payload.Error {
		return precip.RawColumns{}, fmt.Errorf("openmeteo archive fetch: %s", payload.Reason)
	}

	return precip.RawColumns{
		Times:  payload.Daily.Time,
		Values: payload.Daily.PrecipitationSum,
	}, nil
}
