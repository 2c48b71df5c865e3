package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/chuvadata/precip-aggregation/internal/geo"
	"github.com/chuvadata/precip-aggregation/internal/precip"
)

// Google Weather caps history lookups at 24 hours and forecast lookups at
// 240 hours per request.
const (
	googleMaxHistoryHours  = 24
	googleMaxForecastHours = 240
)

// GoogleWeather serves hourly QPF (quantitative precipitation forecast) from
// the Google Weather API. It needs an API key; without one the constructor
// still works but every fetch fails so the chain falls through.
type GoogleWeather struct {
	name    string
	baseURL string
	apiKey  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewGoogleWeather(client *http.Client, apiKey string) *GoogleWeather {
	return &GoogleWeather{
		name:    "googleweather",
		baseURL: "https://weather.googleapis.com/v1",
		apiKey:  apiKey,
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("googleweather"),
	}
}

func (p *GoogleWeather) Name() string {
	return p.name
}

// googleHour is one history or forecast hour. QPF quantity is absent for
// hours without precipitation data.
type googleHour struct {
	Interval struct {
		StartTime string `json:"startTime"`
	} `json:"interval"`
	Precipitation struct {
		QPF struct {
			Quantity *float64 `json:"quantity"`
		} `json:"qpf"`
	} `json:"precipitation"`
}

type googlePayload struct {
	HistoryHours  []googleHour `json:"historyHours"`
	ForecastHours []googleHour `json:"forecastHours"`
}

// FetchHourly combines a history lookup and a forecast lookup into one raw
// column pair. History is hard-capped upstream at 24 hours regardless of
// pastDays.
func (p *GoogleWeather) FetchHourly(ctx context.Context, city geo.City, pastDays, forecastDays int) (precip.RawColumns, error) {
	if p.apiKey == "" {
		return precip.RawColumns{}, fmt.Errorf("googleweather: no API key configured")
	}

	historyHours := min(pastDays*24, googleMaxHistoryHours)
	forecastHours := min(forecastDays*24, googleMaxForecastHours)

	var cols precip.RawColumns

	if historyHours > 0 {
		var payload googlePayload
		if err := getJSON(ctx, p.httpCfg, p.circuit, p.lookupURL("history", city, historyHours), &payload); err != nil {
			return precip.RawColumns{}, fmt.Errorf("googleweather history fetch: %w", err)
		}
		appendGoogleHours(&cols, payload.HistoryHours)
	}

	if forecastHours > 0 {
		var payload googlePayload
		if err := getJSON(ctx, p.httpCfg, p.circuit, p.lookupURL("forecast", city, forecastHours), &payload); err != nil {
			return precip.RawColumns{}, fmt.Errorf("googleweather forecast fetch: %w", err)
		}
		appendGoogleHours(&cols, payload.ForecastHours)
	}

	return cols, nil
}

func (p *GoogleWeather) lookupURL(kind string, city geo.City, hours int) string {
	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("location.latitude", formatCoord(city.Latitude))
	values.Set("location.longitude", formatCoord(city.Longitude))
	values.Set("hours", strconv.Itoa(hours))
	values.Set("pageSize", strconv.Itoa(hours))
	return fmt.Sprintf("%s/%s/hours:lookup?%s", p.baseURL, kind, values.Encode())
}

// appendGoogleHours copies hour intervals into the columns. Start times are
// RFC 3339 with offset; the core converts them to the target timezone. An
// absent QPF quantity becomes a null value.
func appendGoogleHours(cols *precip.RawColumns, hours []googleHour) {
	for _, h := range hours {
		cols.Times = append(cols.Times, h.Interval.StartTime)
		cols.Values = append(cols.Values, h.Precipitation.QPF.Quantity)
	}
}
