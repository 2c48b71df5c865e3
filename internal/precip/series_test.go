package precip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlySeries(start time.Time, values ...float64) Series {
	s := make(Series, 0, len(values))
	for i, v := range values {
		s = append(s, Sample{Time: start.Add(time.Duration(i) * time.Hour), Value: v})
	}
	return s
}

func TestPartition(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 1, 2, 3, 4)

	t.Run("splits strictly after ref, ties observed", func(t *testing.T) {
		observed, forecast := Partition(s, start.Add(time.Hour))
		require.Len(t, observed, 2)
		require.Len(t, forecast, 2)
		// The sample exactly at ref is observed.
		assert.Equal(t, 2.0, observed[1].Value)
		assert.Equal(t, 3.0, forecast[0].Value)
	})

	t.Run("concatenation reconstructs the series", func(t *testing.T) {
		for hour := -1; hour <= 4; hour++ {
			observed, forecast := Partition(s, start.Add(time.Duration(hour)*time.Hour))
			assert.Equal(t, s, append(observed[:len(observed):len(observed)], forecast...))
		}
	})

	t.Run("ref before all samples", func(t *testing.T) {
		observed, forecast := Partition(s, start.Add(-time.Hour))
		assert.Empty(t, observed)
		assert.Len(t, forecast, len(s))
	})

	t.Run("ref after all samples", func(t *testing.T) {
		observed, forecast := Partition(s, start.Add(24*time.Hour))
		assert.Len(t, observed, len(s))
		assert.Empty(t, forecast)
	})

	t.Run("empty series", func(t *testing.T) {
		observed, forecast := Partition(nil, start)
		assert.Empty(t, observed)
		assert.Empty(t, forecast)
	})
}

func TestLatestObserved(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 1, 2, 3)

	t.Run("last sample at or before ref", func(t *testing.T) {
		sample, ok := LatestObserved(s, start.Add(time.Hour))
		require.True(t, ok)
		assert.Equal(t, 2.0, sample.Value)
	})

	t.Run("falls back to globally latest when all forecast", func(t *testing.T) {
		sample, ok := LatestObserved(s, start.Add(-time.Hour))
		require.True(t, ok)
		assert.Equal(t, 3.0, sample.Value)
	})

	t.Run("empty series has no latest", func(t *testing.T) {
		_, ok := LatestObserved(nil, start)
		assert.False(t, ok)
	})
}

func TestWindowTotal(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 1, 2, 3, 4, 5)
	ref := start.Add(3 * time.Hour)

	// Window is half open: (ref-2h, ref], so hours 2 and 3 count.
	assert.Equal(t, 7.0, WindowTotal(s, ref, 2*time.Hour))
	// Future samples never count.
	assert.Equal(t, 10.0, WindowTotal(s, ref, 24*time.Hour))
	assert.Equal(t, 0.0, WindowTotal(nil, ref, time.Hour))
}
