package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/marketdata"
	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

// RiskService computes portfolio Value-at-Risk and return correlations over a
// basket of symbols.
type RiskService struct {
	provider marketdata.BarProvider
	logger   *logrus.Logger
}

// NewRiskService creates a RiskService over the given bar provider.
func NewRiskService(provider marketdata.BarProvider, logger *logrus.Logger) *RiskService {
	return &RiskService{
		provider: provider,
		logger:   logger,
	}
}

// ComputeRiskMetrics fetches aligned close returns for the requested symbols
// and derives historical and parametric VaR plus the correlation matrix.
func (s *RiskService) ComputeRiskMetrics(ctx context.Context, req models.RiskMetricsRequest) (*models.RiskMetricsResponse, error) {
	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		return nil, utils.NewConfigurationErrorf("invalid start date %q: expected YYYY-MM-DD", req.Start)
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		return nil, utils.NewConfigurationErrorf("invalid end date %q: expected YYYY-MM-DD", req.End)
	}

	confidence := req.ConfidenceLevel
	if confidence == 0 {
		confidence = 0.95
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, utils.NewConfigurationError("confidence_level must be between 0 and 1")
	}
	horizon := req.HorizonDays
	if horizon == 0 {
		horizon = 1
	}

	symbols := make([]string, len(req.Symbols))
	for i, symbol := range req.Symbols {
		symbols[i] = strings.ToUpper(strings.TrimSpace(symbol))
	}

	weights, err := normalizeWeights(req.Weights, len(symbols))
	if err != nil {
		return nil, err
	}

	returns, err := s.alignedReturns(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}
	if len(returns) == 0 || len(returns[0]) < 2 {
		return nil, utils.NewDataUnavailableError("not enough overlapping market data to compute returns")
	}

	observations := len(returns[0])
	portfolioReturns := make([]float64, observations)
	for t := 0; t < observations; t++ {
		for i := range symbols {
			portfolioReturns[t] += returns[i][t] * weights[i]
		}
	}

	horizonScale := math.Sqrt(float64(horizon))

	historicalVaR := -percentile(portfolioReturns, (1-confidence)*100) * horizonScale

	meanDaily := mean(portfolioReturns)
	stdDaily := sampleStdDev(portfolioReturns)
	zScore := math.Abs(normInvCDF(1 - confidence))
	parametricVaR := -(meanDaily - zScore*stdDaily) * horizonScale

	cells := correlationMatrix(symbols, returns)

	s.logger.WithFields(logrus.Fields{
		"symbols":      len(symbols),
		"observations": observations,
	}).Info("Computed risk metrics")

	return &models.RiskMetricsResponse{
		Symbols:           symbols,
		ConfidenceLevel:   confidence,
		HorizonDays:       horizon,
		HistoricalVaR:     historicalVaR,
		ParametricVaR:     parametricVaR,
		CorrelationMatrix: cells,
	}, nil
}

// alignedReturns fetches each symbol's daily closes, intersects the trading
// dates common to all symbols, and computes simple returns per symbol over
// the shared dates.
func (s *RiskService) alignedReturns(ctx context.Context, symbols []string, start, end time.Time) ([][]float64, error) {
	closesByDate := make([]map[string]float64, len(symbols))
	for i, symbol := range symbols {
		bars, err := s.provider.DailyBars(ctx, symbol, start, end)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			return nil, utils.NewDataUnavailableErrorf("no market data available for %s", symbol)
		}
		byDate := make(map[string]float64, len(bars))
		for _, bar := range bars {
			byDate[bar.Timestamp.Format("2006-01-02")] = bar.Close
		}
		closesByDate[i] = byDate
	}

	var sharedDates []string
	for date := range closesByDate[0] {
		shared := true
		for _, byDate := range closesByDate[1:] {
			if _, ok := byDate[date]; !ok {
				shared = false
				break
			}
		}
		if shared {
			sharedDates = append(sharedDates, date)
		}
	}
	sort.Strings(sharedDates)

	if len(sharedDates) < 2 {
		return nil, utils.NewDataUnavailableError("not enough overlapping market data to compute returns")
	}

	returns := make([][]float64, len(symbols))
	for i := range symbols {
		series := make([]float64, 0, len(sharedDates)-1)
		for t := 1; t < len(sharedDates); t++ {
			prev := closesByDate[i][sharedDates[t-1]]
			current := closesByDate[i][sharedDates[t]]
			if prev == 0 {
				series = append(series, 0)
				continue
			}
			series = append(series, current/prev-1)
		}
		returns[i] = series
	}
	return returns, nil
}

// normalizeWeights validates the optional weight vector and scales it to sum
// to one; a nil vector yields equal weights.
func normalizeWeights(weights []float64, n int) ([]float64, error) {
	if len(weights) == 0 {
		equal := make([]float64, n)
		for i := range equal {
			equal[i] = 1 / float64(n)
		}
		return equal, nil
	}
	if len(weights) != n {
		return nil, utils.NewConfigurationError("weights length must equal symbols length")
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return nil, utils.NewConfigurationError("weights sum cannot be zero")
	}
	normalized := make([]float64, n)
	for i, w := range weights {
		normalized[i] = w / total
	}
	return normalized, nil
}

// correlationMatrix computes pairwise Pearson correlations of the return
// series.
func correlationMatrix(symbols []string, returns [][]float64) []models.CorrelationCell {
	cells := make([]models.CorrelationCell, 0, len(symbols)*len(symbols))
	for i := range symbols {
		for j := range symbols {
			cells = append(cells, models.CorrelationCell{
				Row:   symbols[i],
				Col:   symbols[j],
				Value: pearson(returns[i], returns[j]),
			})
		}
	}
	return cells
}

func pearson(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n < 2 {
		return 0
	}
	meanA := mean(a[:n])
	meanB := mean(b[:n])
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
