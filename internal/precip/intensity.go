package precip

import "math"

// ClassifyIntensity maps an hourly precipitation value to the three-stage
// rain label. The 0 and 2 mm thresholds are shared across every consumer and
// each band is inclusive on its lower side: exactly 0 is none, exactly 2 is
// still mild.
func ClassifyIntensity(mm float64) Intensity {
	switch {
	case math.IsNaN(mm), mm <= NoneMaxMM:
		return IntensityNone
	case mm <= MildMaxMM:
		return IntensityMild
	default:
		return IntensityStrong
	}
}
