package precip

import (
	"math"
	"sort"
	"time"
)

// MonthlyRollup groups s by calendar month in loc and sums each month's
// precipitation, returning at most the trailing trailingMonths entries in
// ascending month order. Months with no samples are absent, never zero
// padded; NaN values count as 0. The result depends only on the multiset of
// samples, not their order.
func MonthlyRollup(s Series, loc *time.Location, trailingMonths int) []MonthlyTotal {
	if trailingMonths <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	totals := make(map[time.Time]float64)
	for _, sample := range s {
		v := sample.Value
		if math.IsNaN(v) {
			v = 0
		}
		t := sample.Time.In(loc)
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		totals[month] += v
	}

	months := make([]time.Time, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})

	if len(months) > trailingMonths {
		months = months[len(months)-trailingMonths:]
	}

	out := make([]MonthlyTotal, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlyTotal{Month: MonthDate{m}, TotalMM: totals[m]})
	}
	return out
}
