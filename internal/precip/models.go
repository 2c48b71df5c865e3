package precip

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sample is a single precipitation measurement or prediction.
// Value is millimetres for the hour (or day, for daily sources) ending at Time
// and is never negative once a series has been normalized.
type Sample struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is a sequence of samples sorted ascending by time with no duplicate
// timestamps. Gaps are allowed; sources may omit hours. A Series is built
// fresh per query and never mutated afterwards.
type Series []Sample

// Intensity is the three-stage rain classification used by every dashboard
// consumer of this service.
type Intensity string

const (
	IntensityNone   Intensity = "none"
	IntensityMild   Intensity = "mild"
	IntensityStrong Intensity = "strong"
)

// Rain intensity thresholds in millimetres. Every caller classifies with the
// same pair; the bands are inclusive on their lower side.
const (
	NoneMaxMM = 0.0
	MildMaxMM = 2.0
)

// MonthDate is a first-of-month civil date that marshals as YYYY-MM-DD.
type MonthDate struct {
	time.Time
}

func (d MonthDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *MonthDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d MonthDate) String() string {
	return d.Format("2006-01-02")
}

// MonthlyTotal is the precipitation sum for one calendar month.
type MonthlyTotal struct {
	Month   MonthDate `json:"time"`
	TotalMM float64   `json:"value"`
}

// RawColumns is the boundary shape every provider reduces its wire payload
// to: two equal-length columns of timestamp strings and optional values.
// A nil value is a null from the upstream API and is treated as 0 mm.
type RawColumns struct {
	Times  []string
	Values []*float64
}

// ParseError records one raw row dropped during normalization. Dropped rows
// are non-fatal; the rest of the series is still produced.
type ParseError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d: bad %s %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}
