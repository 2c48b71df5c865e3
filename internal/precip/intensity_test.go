package precip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntensity(t *testing.T) {
	tests := []struct {
		name string
		mm   float64
		want Intensity
	}{
		{"zero is none", 0.0, IntensityNone},
		{"negative is none", -1.0, IntensityNone},
		{"just above zero is mild", 0.01, IntensityMild},
		{"exactly two is mild", 2.0, IntensityMild},
		{"just above two is strong", 2.01, IntensityStrong},
		{"heavy rain is strong", 40.0, IntensityStrong},
		{"NaN is none", math.NaN(), IntensityNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntensity(tt.mm))
		})
	}
}
