package precip

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	errEmptyTimestamp = errors.New("empty timestamp")
	errNegativeValue  = errors.New("negative precipitation")
)

// civilLayouts are the offset-less shapes upstream APIs emit. Open-Meteo
// returns minute precision when a timezone is requested, daily endpoints
// return bare dates.
var civilLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalize turns two raw columns into a Series in loc. Timestamps without a
// UTC offset are read as civil local time in loc; timestamps with an offset
// are converted to loc. A nil or NaN value counts as 0 mm. Rows with an
// unparseable timestamp or a negative value are dropped and reported as
// ParseErrors; the returned error is non-nil only for structural misuse,
// when the two columns differ in length.
//
// The result is sorted ascending by time. When the input repeats a
// timestamp, the first occurrence wins.
func Normalize(times []string, values []*float64, loc *time.Location) (Series, []ParseError, error) {
	if len(times) != len(values) {
		return nil, nil, fmt.Errorf("column length mismatch: %d times vs %d values", len(times), len(values))
	}
	if loc == nil {
		loc = time.UTC
	}

	series := make(Series, 0, len(times))
	var dropped []ParseError

	for i := range times {
		ts, err := parseTimestamp(times[i], loc)
		if err != nil {
			dropped = append(dropped, ParseError{Index: i, Field: "time", Value: times[i], Err: err})
			continue
		}

		var v float64
		if values[i] != nil {
			v = *values[i]
		}
		if math.IsNaN(v) {
			v = 0
		}
		if v < 0 {
			dropped = append(dropped, ParseError{
				Index: i,
				Field: "value",
				Value: strconv.FormatFloat(v, 'g', -1, 64),
				Err:   errNegativeValue,
			})
			continue
		}

		series = append(series, Sample{Time: ts, Value: v})
	}

	// Stable sort keeps input order among equal timestamps, so the
	// first-occurrence-wins rule below holds.
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Time.Before(series[j].Time)
	})

	return dedupSorted(series), dropped, nil
}

// parseTimestamp accepts RFC 3339 timestamps and the offset-less civil
// layouts above. Offset-less input is interpreted in loc.
func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errEmptyTimestamp
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range civilLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// dedupSorted collapses runs of equal timestamps in an already-sorted series,
// keeping the earliest occurrence of each.
func dedupSorted(s Series) Series {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, sample := range s[1:] {
		if sample.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, sample)
	}
	return out
}
