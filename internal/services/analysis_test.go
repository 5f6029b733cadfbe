package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

func analysisBars(n int) []models.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, n)
	for i := range bars {
		price := float64(i + 1)
		bars[i] = models.PriceBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      price,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price,
			Volume:    5000,
		}
	}
	return bars
}

func testAnalysisService(bars []models.PriceBar) *AnalysisService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAnalysisService(&mapBarProvider{bySymbol: map[string][]models.PriceBar{"AAPL": bars}}, logger)
}

func seriesByName(series []models.IndicatorSeries) map[string]models.IndicatorSeries {
	byName := make(map[string]models.IndicatorSeries, len(series))
	for _, s := range series {
		byName[s.Name] = s
	}
	return byName
}

func TestComputeIndicatorsSMA(t *testing.T) {
	bars := analysisBars(60)
	svc := testAnalysisService(bars)

	resp, err := svc.ComputeIndicators(context.Background(), "aapl",
		bars[0].Timestamp, bars[len(bars)-1].Timestamp, []string{"sma_20"})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, "daily", resp.Frequency)
	require.Len(t, resp.Indicators, 1)

	sma := resp.Indicators[0]
	assert.Equal(t, "SMA_20", sma.Name)
	// A 20-bar window over 60 bars leaves 41 aligned points.
	require.Len(t, sma.Points, 41)
	// First full window covers closes 1..20, mean 10.5, aligned to bar 20.
	first := sma.Points[0]
	assert.Equal(t, bars[19].Timestamp, first.Timestamp)
	assert.InDelta(t, 10.5, first.Value.InexactFloat64(), 1e-9)
	last := sma.Points[len(sma.Points)-1]
	assert.Equal(t, bars[59].Timestamp, last.Timestamp)
	assert.InDelta(t, 50.5, last.Value.InexactFloat64(), 1e-9)
}

func TestComputeIndicatorsSelection(t *testing.T) {
	bars := analysisBars(80)
	svc := testAnalysisService(bars)

	resp, err := svc.ComputeIndicators(context.Background(), "AAPL",
		bars[0].Timestamp, bars[len(bars)-1].Timestamp,
		[]string{"SMA_20", "EMA_20", "RSI_14", "MACD", "BBANDS_20", "UNKNOWN_INDICATOR"})
	require.NoError(t, err)

	byName := seriesByName(resp.Indicators)
	for _, name := range []string{
		"SMA_20", "EMA_20", "RSI_14", "MACD", "MACD_SIGNAL", "MACD_HIST",
		"BBANDS_MID", "BBANDS_UPPER", "BBANDS_LOWER",
	} {
		series, ok := byName[name]
		require.True(t, ok, "missing series %s", name)
		assert.NotEmpty(t, series.Points, "empty series %s", name)
	}
	// The unrecognized name is silently ignored.
	assert.Len(t, byName, 9)

	// Monotonically rising closes keep RSI pinned at its ceiling.
	for _, point := range byName["RSI_14"].Points {
		assert.LessOrEqual(t, point.Value.InexactFloat64(), 100.0)
		assert.GreaterOrEqual(t, point.Value.InexactFloat64(), 0.0)
	}
}

func TestComputeIndicatorsBollingerBands(t *testing.T) {
	bars := analysisBars(40)
	svc := testAnalysisService(bars)

	resp, err := svc.ComputeIndicators(context.Background(), "AAPL",
		bars[0].Timestamp, bars[len(bars)-1].Timestamp, []string{"BBANDS_20"})
	require.NoError(t, err)

	byName := seriesByName(resp.Indicators)
	mid := byName["BBANDS_MID"].Points
	upper := byName["BBANDS_UPPER"].Points
	lower := byName["BBANDS_LOWER"].Points
	require.Equal(t, len(mid), len(upper))
	require.Equal(t, len(mid), len(lower))

	for i := range mid {
		assert.Greater(t, upper[i].Value.InexactFloat64(), mid[i].Value.InexactFloat64())
		assert.Less(t, lower[i].Value.InexactFloat64(), mid[i].Value.InexactFloat64())
	}
}

func TestComputeIndicatorsNoData(t *testing.T) {
	svc := testAnalysisService(nil)

	_, err := svc.ComputeIndicators(context.Background(), "AAPL",
		time.Now().AddDate(0, -1, 0), time.Now(), []string{"SMA_20"})
	require.Error(t, err)
	var dataErr *utils.DataUnavailableError
	assert.ErrorAs(t, err, &dataErr)
}
