package backtest

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/quantdesk/quantdesk-go/internal/models"
)

// Series is a bar sequence annotated with precomputed indicator columns.
// Columns are aligned with the bars; positions without enough history hold
// NaN.
type Series struct {
	Bars    []models.PriceBar
	columns map[string][]float64
}

// NewSeries wraps bars into an annotatable series.
func NewSeries(bars []models.PriceBar) *Series {
	return &Series{
		Bars:    bars,
		columns: make(map[string][]float64),
	}
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Bars)
}

// SetColumn attaches a bar-aligned indicator column. The column must have the
// same length as the bar sequence.
func (s *Series) SetColumn(name string, values []float64) {
	s.columns[name] = values
}

// Value returns the column value at index i. The second return is false when
// the column is missing, the index is out of range, or the value is NaN
// (insufficient history).
func (s *Series) Value(name string, i int) (float64, bool) {
	col, ok := s.columns[name]
	if !ok || i < 0 || i >= len(col) {
		return 0, false
	}
	if math.IsNaN(col[i]) {
		return 0, false
	}
	return col[i], true
}

// Closes returns the closing prices of all bars.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}
	return closes
}

// smaColumn computes a simple moving average of the input and re-aligns it
// with the input: the indicator's warm-up positions are padded with NaN so
// that out[i] covers the window ending at i.
func smaColumn(values []float64, period int) []float64 {
	sma := trend.NewSmaWithPeriod[float64](period)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	return padWarmup(out, len(values))
}

func nan() float64 {
	return math.NaN()
}

// padWarmup left-pads an indicator output with NaN up to length n.
func padWarmup(out []float64, n int) []float64 {
	padded := make([]float64, n)
	offset := n - len(out)
	for i := 0; i < offset; i++ {
		padded[i] = math.NaN()
	}
	copy(padded[offset:], out)
	return padded
}

// rollingStd computes the population standard deviation over a trailing
// window, NaN while the window is not yet full.
func rollingStd(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		window := values[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)
		variance := 0.0
		for _, v := range window {
			variance += (v - mean) * (v - mean)
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out
}
