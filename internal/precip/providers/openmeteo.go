package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/chuvadata/precip-aggregation/internal/geo"
	"github.com/chuvadata/precip-aggregation/internal/precip"
)

// OpenMeteo serves hourly precipitation and short-range daily sums from the
// Open-Meteo forecast API. It needs no API key and is the primary source in
// the hourly failover chain.
type OpenMeteo struct {
	name     string
	baseURL  string
	timezone string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewOpenMeteo creates the forecast-API client. timezone is the IANA name
// sent upstream so hourly timestamps come back as civil local time.
func NewOpenMeteo(client *http.Client, timezone string) *OpenMeteo {
	return &OpenMeteo{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		timezone: timezone,
		httpCfg:  defaultHTTPConfig(client),
		circuit:  newCircuit("openmeteo"),
	}
}

func (p *OpenMeteo) Name() string {
	return p.name
}

// openMeteoPayload covers both the hourly and the daily response shapes.
// Precipitation values may be null for hours the model has not produced.
type openMeteoPayload struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Precipitation []*float64 `json:"precipitation"`
	} `json:"hourly"`
	Daily struct {
		Time             []string   `json:"time"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// FetchHourly retrieves pastDays of observed plus forecastDays of predicted
// hourly precipitation for the city's coordinates.
func (p *OpenMeteo) FetchHourly(ctx context.Context, city geo.City, pastDays, forecastDays int) (precip.RawColumns, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(city.Latitude))
	values.Set("longitude", formatCoord(city.Longitude))
	values.Set("hourly", "precipitation")
	values.Set("past_days", strconv.Itoa(pastDays))
	values.Set("forecast_days", strconv.Itoa(forecastDays))
	values.Set("timezone", p.timezone)

	var payload openMeteoPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return precip.RawColumns{}, fmt.Errorf("openmeteo hourly fetch: %w", err)
	}
	if payload.Error {
		return precip.RawColumns{}, fmt.Errorf("openmeteo hourly fetch: %s", payload.Reason)
	}

	return precip.RawColumns{
		Times:  payload.Hourly.Time,
		Values: payload.Hourly.Precipitation,
	}, nil
}

// FetchDaily retrieves daily precipitation sums for the trailing window
// ending at end. The forecast API only reaches back 92 days; longer ranges
// belong to the archive provider.
func (p *OpenMeteo) FetchDaily(ctx context.Context, city geo.City, start, end time.Time) (precip.RawColumns, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(city.Latitude))
	values.Set("longitude", formatCoord(city.Longitude))
	values.Set("daily", "precipitation_sum")
	values.Set("start_date", start.Format("2006-01-02"))
	values.Set("end_date", end.Format("2006-01-02"))
	values.Set("timezone", p.timezone)

	var payload openMeteoPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return precip.RawColumns{}, fmt.Errorf("openmeteo daily fetch: %w", err)
	}
	if payload.Error {
		return precip.RawColumns{}, fmt.Errorf("openmeteo daily fetch: %s", payload.Reason)
	}

	return precip.RawColumns{
		Times:  payload.Daily.Time,
		Values: payload.Daily.PrecipitationSum,
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
