package precip

import (
	"sort"
	"time"
)

// Partition splits s at ref. A sample belongs to forecast iff its timestamp
// is strictly after ref; a sample exactly at ref is observed. Both halves are
// sub-slices of s, so appending forecast to observed reconstructs s.
func Partition(s Series, ref time.Time) (observed, forecast Series) {
	i := sort.Search(len(s), func(i int) bool {
		return s[i].Time.After(ref)
	})
	return s[:i], s[i:]
}

// LatestObserved returns the last sample at or before ref. When every sample
// lies after ref it falls back to the globally latest sample, so a series
// that is all forecast still yields a headline value. The bool is false only
// for an empty series.
func LatestObserved(s Series, ref time.Time) (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	observed, _ := Partition(s, ref)
	if len(observed) > 0 {
		return observed[len(observed)-1], true
	}
	return s[len(s)-1], true
}

// WindowTotal sums the samples inside the half-open window (ref-window, ref].
// Used for the accumulated last-24h headline.
func WindowTotal(s Series, ref time.Time, window time.Duration) float64 {
	start := ref.Add(-window)
	var total float64
	for _, sample := range s {
		if sample.Time.After(start) && !sample.Time.After(ref) {
			total += sample.Value
		}
	}
	return total
}
