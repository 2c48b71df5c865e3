package precip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestNormalize_ValidRows(t *testing.T) {
	tz, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	series, dropped, err := Normalize(
		[]string{"2024-01-01T00:00", "2024-01-01T01:00", "2024-02-15T10:00"},
		[]*float64{fptr(1.0), fptr(2.0), fptr(5.0)},
		tz,
	)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, series, 3)

	// Offset-less timestamps are read as civil local time in tz.
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, tz), series[0].Time)
	assert.Equal(t, 1.0, series[0].Value)
	assert.Equal(t, time.Date(2024, 2, 15, 10, 0, 0, 0, tz), series[2].Time)
}

func TestNormalize_ColumnLengthMismatch(t *testing.T) {
	_, _, err := Normalize([]string{"2024-01-01T00:00"}, nil, time.UTC)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")
}

func TestNormalize_MalformedRowsDropped(t *testing.T) {
	series, dropped, err := Normalize(
		[]string{"2024-01-01T00:00", "not-a-time", "2024-01-01T02:00"},
		[]*float64{fptr(1.0), fptr(2.0), fptr(3.0)},
		time.UTC,
	)
	require.NoError(t, err)
	require.Len(t, dropped, 1)
	assert.Equal(t, 1, dropped[0].Index)
	assert.Equal(t, "time", dropped[0].Field)

	// Valid rows survive in their original relative order.
	require.Len(t, series, 2)
	assert.Equal(t, 1.0, series[0].Value)
	assert.Equal(t, 3.0, series[1].Value)
}

func TestNormalize_NegativeValueDropped(t *testing.T) {
	series, dropped, err := Normalize(
		[]string{"2024-01-01T00:00", "2024-01-01T01:00"},
		[]*float64{fptr(-0.5), fptr(1.5)},
		time.UTC,
	)
	require.NoError(t, err)
	require.Len(t, dropped, 1)
	assert.Equal(t, "value", dropped[0].Field)
	require.Len(t, series, 1)
	assert.Equal(t, 1.5, series[0].Value)
}

func TestNormalize_NullValueIsZero(t *testing.T) {
	series, dropped, err := Normalize(
		[]string{"2024-01-01T00:00"},
		[]*float64{nil},
		time.UTC,
	)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, series, 1)
	assert.Equal(t, 0.0, series[0].Value)
}

func TestNormalize_SortsAndDeduplicates(t *testing.T) {
	series, dropped, err := Normalize(
		[]string{"2024-01-01T02:00", "2024-01-01T00:00", "2024-01-01T02:00"},
		[]*float64{fptr(2.0), fptr(1.0), fptr(9.0)},
		time.UTC,
	)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, series, 2)
	assert.True(t, series[0].Time.Before(series[1].Time))
	// First occurrence of the repeated hour wins.
	assert.Equal(t, 2.0, series[1].Value)
}

func TestNormalize_OffsetTimestampsConverted(t *testing.T) {
	tz, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	series, dropped, err := Normalize(
		[]string{"2024-01-01T12:00:00Z"},
		[]*float64{fptr(1.0)},
		tz,
	)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, series, 1)

	// São Paulo is UTC-3: noon UTC is 09:00 local.
	assert.Equal(t, 9, series[0].Time.Hour())
	assert.Equal(t, tz, series[0].Time.Location())
}

func TestNormalize_BareDates(t *testing.T) {
	series, dropped, err := Normalize(
		[]string{"2024-01-01", "2024-01-02"},
		[]*float64{fptr(3.0), fptr(4.0)},
		time.UTC,
	)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, series, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series[1].Time)
}

func TestNormalize_EmptyInput(t *testing.T) {
	series, dropped, err := Normalize(nil, nil, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Empty(t, series)
}
