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

// Wttr serves 3-hourly precipitation from wttr.in's j1 JSON format. It only
// covers today plus two forecast days, so it is the last hourly fallback:
// better a short forecast-biased series than no data at all.
type Wttr struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWttr(client *http.Client) *Wttr {
	return &Wttr{
		name:    "wttr",
		baseURL: "https://wttr.in",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("wttr"),
	}
}

func (p *Wttr) Name() string {
	return p.name
}

type wttrPayload struct {
	Weather []struct {
		Date   string `json:"date"`
		Hourly []struct {
			Time     string `json:"time"`
			PrecipMM string `json:"precipMM"`
		} `json:"hourly"`
	} `json:"weather"`
}

// FetchHourly retrieves the 3-hourly series for the city's coordinates.
// pastDays and forecastDays are ignored; wttr.in always returns its fixed
// three-day window.
func (p *Wttr) FetchHourly(ctx context.Context, city geo.City, _, _ int) (precip.RawColumns, error) {
	query := fmt.Sprintf("%s,%s", formatCoord(city.Latitude), formatCoord(city.Longitude))
	u := fmt.Sprintf("%s/%s?format=j1", p.baseURL, url.PathEscape(query))

	var payload wttrPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return precip.RawColumns{}, fmt.Errorf("wttr fetch: %w", err)
	}

	return wttrColumns(payload), nil
}

// wttrColumns flattens the per-day hourly blocks. The hour field is local
// civil time encoded as "0", "300", ... "2100"; the timestamp is emitted
// without an offset so the core reads it in the target timezone. Rows whose
// hour or precipMM cannot be read are dropped at the boundary.
func wttrColumns(payload wttrPayload) precip.RawColumns {
	var cols precip.RawColumns
	for _, day := range payload.Weather {
		for _, h := range day.Hourly {
			n, err := strconv.Atoi(h.Time)
			if err != nil || n < 0 || n > 2359 {
				continue
			}
			mm, err := strconv.ParseFloat(h.PrecipMM, 64)
			if err != nil {
				continue
			}
			v := mm
			cols.Times = append(cols.Times, fmt.Sprintf("%sT%02d:%02d", day.Date, n/100, n%100))
			cols.Values = append(cols.Values, &v)
		}
	}
	return cols
}
