package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

func barsFromCloses(closes []float64) []models.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, price := range closes {
		bars[i] = models.PriceBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1000,
		}
	}
	return bars
}

// collectSignals annotates the series and sweeps every index.
func collectSignals(t *testing.T, st Strategy, closes []float64) map[int]SignalKind {
	t.Helper()
	series := NewSeries(barsFromCloses(closes))
	st.Annotate(series)

	signals := make(map[int]SignalKind)
	for i := 0; i < series.Len(); i++ {
		if signal, ok := st.GenerateSignal(i, series); ok {
			signals[i] = signal
		}
	}
	return signals
}

func TestNewStrategy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     models.StrategyConfig
		want    string
		wantErr bool
	}{
		{
			name: "empty name defaults to sma crossover",
			cfg:  models.StrategyConfig{},
			want: StrategySMACrossover,
		},
		{
			name: "explicit sma crossover",
			cfg:  models.StrategyConfig{Name: StrategySMACrossover, FastWindow: 10, SlowWindow: 30},
			want: StrategySMACrossover,
		},
		{
			name: "momentum",
			cfg:  models.StrategyConfig{Name: StrategyMomentum, FastWindow: 10},
			want: StrategyMomentum,
		},
		{
			name: "mean reversion",
			cfg:  models.StrategyConfig{Name: StrategyMeanReversion, SlowWindow: 30},
			want: StrategyMeanReversion,
		},
		{
			name:    "unknown name",
			cfg:     models.StrategyConfig{Name: "turtle"},
			wantErr: true,
		},
		{
			name:    "fast window not below slow window",
			cfg:     models.StrategyConfig{Name: StrategySMACrossover, FastWindow: 50, SlowWindow: 20},
			wantErr: true,
		},
		{
			name:    "equal windows",
			cfg:     models.StrategyConfig{Name: StrategySMACrossover, FastWindow: 20, SlowWindow: 20},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewStrategy(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *utils.ConfigurationError
				assert.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Name())
		})
	}
}

func TestSMACrossoverDefaults(t *testing.T) {
	st, err := NewSMACrossoverStrategy(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, st.fastWindow)
	assert.Equal(t, 50, st.slowWindow)
}

func TestSMACrossoverSignals(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   map[int]SignalKind
	}{
		{
			name:   "upward cross fires buy",
			closes: []float64{10, 10, 10, 10, 30, 30},
			want:   map[int]SignalKind{4: SignalBuy},
		},
		{
			name:   "downward cross fires sell",
			closes: []float64{30, 30, 30, 30, 10, 10},
			want:   map[int]SignalKind{4: SignalSell},
		},
		{
			name:   "flat series never crosses",
			closes: []float64{10, 10, 10, 10, 10, 10},
			want:   map[int]SignalKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewSMACrossoverStrategy(2, 3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, collectSignals(t, st, tt.closes))
		})
	}
}

func TestSMACrossoverInsufficientHistory(t *testing.T) {
	// 49 bars against a 50-bar slow window: the slow SMA never fills, so no
	// signal may fire at any index.
	closes := make([]float64, 49)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}

	st, err := NewSMACrossoverStrategy(20, 50)
	require.NoError(t, err)

	signals := collectSignals(t, st, closes)
	assert.Empty(t, signals)
}

func TestMomentumSignals(t *testing.T) {
	st, err := NewMomentumStrategy(2)
	require.NoError(t, err)

	signals := collectSignals(t, st, []float64{10, 10, 10, 12, 12, 9})
	assert.Equal(t, map[int]SignalKind{3: SignalBuy, 5: SignalSell}, signals)
}

func TestMomentumLookbackValidation(t *testing.T) {
	_, err := NewMomentumStrategy(1)
	require.Error(t, err)

	st, err := NewMomentumStrategy(0)
	require.NoError(t, err)
	assert.Equal(t, 20, st.lookback)
}

func TestMeanReversionSignals(t *testing.T) {
	st, err := NewMeanReversionStrategy(3)
	require.NoError(t, err)

	signals := collectSignals(t, st, []float64{10, 11, 10, 11, 7, 10, 13})
	assert.Equal(t, map[int]SignalKind{3: SignalSell, 4: SignalBuy, 5: SignalSell}, signals)
}

func TestMeanReversionWindowValidation(t *testing.T) {
	_, err := NewMeanReversionStrategy(2)
	require.Error(t, err)

	st, err := NewMeanReversionStrategy(0)
	require.NoError(t, err)
	assert.Equal(t, 50, st.window)
}

func TestSeriesValue(t *testing.T) {
	series := NewSeries(barsFromCloses([]float64{1, 2, 3}))
	series.SetColumn("col", []float64{nan(), 2.5, 3.5})

	_, ok := series.Value("missing", 0)
	assert.False(t, ok)

	_, ok = series.Value("col", -1)
	assert.False(t, ok)

	_, ok = series.Value("col", 3)
	assert.False(t, ok)

	_, ok = series.Value("col", 0)
	assert.False(t, ok, "NaN warmup positions report no value")

	v, ok := series.Value("col", 1)
	require.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestSmaColumnAlignment(t *testing.T) {
	values := []float64{2, 4, 6, 8, 10}
	col := smaColumn(values, 3)

	require.Len(t, col, len(values))
	for i := 0; i < 2; i++ {
		assert.True(t, math.IsNaN(col[i]), "index %d should be NaN", i)
	}
	assert.InDelta(t, 4.0, col[2], 1e-9)
	assert.InDelta(t, 6.0, col[3], 1e-9)
	assert.InDelta(t, 8.0, col[4], 1e-9)
}
