package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/chuvadata/precip-aggregation/internal/geo"
	"github.com/chuvadata/precip-aggregation/internal/precip"
)

// Inmet serves hourly station measurements from INMET, Brazil's national
// meteorology institute. It only covers cities with a configured automatic
// station code and only serves history, never forecast hours, so it sits
// behind Open-Meteo in the failover chain.
type Inmet struct {
	name    string
	baseURL string
	clock   clockwork.Clock
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewInmet(client *http.Client, clock clockwork.Clock) *Inmet {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Inmet{
		name:    "inmet",
		baseURL: "https://apitempo.inmet.gov.br/estacao",
		clock:   clock,
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("inmet"),
	}
}

func (p *Inmet) Name() string {
	return p.name
}

// inmetRow is one hourly measurement. Every field arrives as a string;
// CHUVA is millimetres of rain and may be null or empty when the station
// did not report.
type inmetRow struct {
	Date string  `json:"DT_MEDICAO"`
	Hour string  `json:"HR_MEDICAO"`
	Rain *string `json:"CHUVA"`
}

// FetchHourly retrieves pastDays of station measurements. forecastDays is
// ignored; INMET has no forecast endpoint.
func (p *Inmet) FetchHourly(ctx context.Context, city geo.City, pastDays, _ int) (precip.RawColumns, error) {
	if city.Station == "" {
		return precip.RawColumns{}, fmt.Errorf("inmet: no station configured for %s", city.Name)
	}

	end := p.clock.Now().UTC()
	start := end.AddDate(0, 0, -pastDays)
	u := fmt.Sprintf("%s/%s/%s/%s",
		p.baseURL, start.Format("2006-01-02"), end.Format("2006-01-02"), city.Station)

	var rows []inmetRow
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &rows); err != nil {
		return precip.RawColumns{}, fmt.Errorf("inmet fetch %s: %w", city.Station, err)
	}

	return inmetColumns(rows), nil
}

// inmetColumns reduces station rows to raw columns. HR_MEDICAO is "HHMM" in
// UTC, so the timestamp is built with an explicit Z offset and the core
// converts it to the target timezone. A null or empty CHUVA becomes a null
// value; a CHUVA string that is not a number drops the row here, at the
// boundary.
func inmetColumns(rows []inmetRow) precip.RawColumns {
	cols := precip.RawColumns{
		Times:  make([]string, 0, len(rows)),
		Values: make([]*float64, 0, len(rows)),
	}
	for _, row := range rows {
		hour := row.Hour
		if len(hour) != 4 {
			continue
		}

		var value *float64
		if row.Rain != nil {
			s := strings.TrimSpace(*row.Rain)
			if s != "" {
				mm, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
				if err != nil {
					continue
				}
				value = &mm
			}
		}

		cols.Times = append(cols.Times, fmt.Sprintf("%sT%s:%s:00Z", row.Date, hour[:2], hour[2:]))
		cols.Values = append(cols.Values, value)
	}
	return cols
}
