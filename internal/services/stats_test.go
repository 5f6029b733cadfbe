package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "empty", values: nil, p: 50, want: 0},
		{name: "single value", values: []float64{7}, p: 50, want: 7},
		{name: "median of odd count", values: []float64{3, 1, 2}, p: 50, want: 2},
		{name: "median interpolates", values: []float64{1, 2, 3, 4}, p: 50, want: 2.5},
		{name: "below range clamps to min", values: []float64{1, 2, 3}, p: -5, want: 1},
		{name: "above range clamps to max", values: []float64{1, 2, 3}, p: 120, want: 3},
		{name: "fifth percentile", values: []float64{-0.1, 0.1, 0.1}, p: 5, want: -0.08},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, percentile(tt.values, tt.p), 1e-9)
		})
	}
}

func TestMean(t *testing.T) {
	assert.Zero(t, mean(nil))
	assert.InDelta(t, 2.0, mean([]float64{1, 2, 3}), 1e-9)
}

func TestSampleStdDev(t *testing.T) {
	assert.Zero(t, sampleStdDev(nil))
	assert.Zero(t, sampleStdDev([]float64{5}))
	// Sample variance of {2, 4, 4, 4, 5, 5, 7, 9} is 32/7.
	assert.InDelta(t, 2.13809, sampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-4)
}

func TestNormInvCDF(t *testing.T) {
	assert.InDelta(t, 0.0, normInvCDF(0.5), 1e-9)
	assert.InDelta(t, 1.6449, normInvCDF(0.95), 1e-3)
	assert.InDelta(t, -1.6449, normInvCDF(0.05), 1e-3)
	assert.InDelta(t, 1.9600, normInvCDF(0.975), 1e-3)
}

func TestClip(t *testing.T) {
	assert.Equal(t, 1.0, clip(0.5, 1, 2))
	assert.Equal(t, 2.0, clip(3.5, 1, 2))
	assert.Equal(t, 1.5, clip(1.5, 1, 2))
}
