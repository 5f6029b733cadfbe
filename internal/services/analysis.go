package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/marketdata"
	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

// AnalysisService computes technical-indicator overlays for a symbol's daily
// bars.
type AnalysisService struct {
	provider marketdata.BarProvider
	logger   *logrus.Logger
}

// NewAnalysisService creates an AnalysisService over the given bar provider.
func NewAnalysisService(provider marketdata.BarProvider, logger *logrus.Logger) *AnalysisService {
	return &AnalysisService{
		provider: provider,
		logger:   logger,
	}
}

// ComputeIndicators fetches daily bars and computes the requested indicator
// series. Unrecognized indicator names are ignored; an empty bar range is a
// data error.
func (s *AnalysisService) ComputeIndicators(ctx context.Context, symbol string, start, end time.Time, indicators []string) (*models.TechnicalAnalysisResponse, error) {
	bars, err := s.provider.DailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, utils.NewDataUnavailableErrorf("no market data available for %s", symbol)
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	selected := make(map[string]bool)
	for _, name := range indicators {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name != "" {
			selected[name] = true
		}
	}

	var series []models.IndicatorSeries

	if selected["SMA_20"] {
		sma := trend.NewSmaWithPeriod[float64](20)
		values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes)))
		series = append(series, s.toSeries("SMA_20", bars, values))
	}

	if selected["EMA_20"] {
		ema := trend.NewEmaWithPeriod[float64](20)
		values := helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
		series = append(series, s.toSeries("EMA_20", bars, values))
	}

	if selected["RSI_14"] {
		rsi := momentum.NewRsiWithPeriod[float64](14)
		values := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
		series = append(series, s.toSeries("RSI_14", bars, values))
	}

	if selected["MACD"] {
		macd := trend.NewMacd[float64]()
		macdLine, signalLine := macd.Compute(helper.SliceToChan(closes))
		macdValues := helper.ChanToSlice(macdLine)
		signalValues := helper.ChanToSlice(signalLine)

		n := min(len(macdValues), len(signalValues))
		histogram := make([]float64, n)
		for i := 0; i < n; i++ {
			histogram[i] = macdValues[len(macdValues)-n+i] - signalValues[len(signalValues)-n+i]
		}

		series = append(series,
			s.toSeries("MACD", bars, macdValues),
			s.toSeries("MACD_SIGNAL", bars, signalValues),
			s.toSeries("MACD_HIST", bars, histogram),
		)
	}

	if selected["BBANDS_20"] {
		const period = 20
		sma := trend.NewSmaWithPeriod[float64](period)
		basis := helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes)))

		upper := make([]float64, len(basis))
		lower := make([]float64, len(basis))
		for i := range basis {
			window := closes[i : i+period]
			std := standardDeviation(window, basis[i])
			upper[i] = basis[i] + 2*std
			lower[i] = basis[i] - 2*std
		}

		series = append(series,
			s.toSeries("BBANDS_MID", bars, basis),
			s.toSeries("BBANDS_UPPER", bars, upper),
			s.toSeries("BBANDS_LOWER", bars, lower),
		)
	}

	s.logger.WithFields(logrus.Fields{
		"symbol":     symbol,
		"bars":       len(bars),
		"indicators": len(series),
	}).Info("Computed technical indicators")

	return &models.TechnicalAnalysisResponse{
		Symbol:      strings.ToUpper(symbol),
		Source:      "Alpaca",
		Frequency:   "daily",
		LastUpdated: time.Now().UTC(),
		Bars:        bars,
		Indicators:  series,
	}, nil
}

// toSeries aligns an indicator output with the tail of the bar sequence; the
// indicator's warm-up positions produce no points.
func (s *AnalysisService) toSeries(name string, bars []models.PriceBar, values []float64) models.IndicatorSeries {
	offset := len(bars) - len(values)
	points := make([]models.IndicatorPoint, 0, len(values))
	for i, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		points = append(points, models.IndicatorPoint{
			Timestamp: bars[offset+i].Timestamp,
			Value:     decimal.NewFromFloat(value),
		})
	}
	return models.IndicatorSeries{Name: name, Points: points}
}

// standardDeviation computes the population standard deviation of a window
// around a known mean.
func standardDeviation(window []float64, mean float64) float64 {
	if len(window) == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(window)))
}
