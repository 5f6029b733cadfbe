package backtest

import (
	"math"

	"github.com/quantdesk/quantdesk-go/internal/models"
)

// TearSheetParams carries the constants of the performance derivation. The
// annualization factor is threaded explicitly rather than read from ambient
// configuration.
type TearSheetParams struct {
	// PeriodsPerYear is the number of bars assumed per year when annualizing
	// returns and volatility.
	PeriodsPerYear int
}

// DefaultTearSheetParams returns the standard daily-bar parameters: 252
// trading days per year.
func DefaultTearSheetParams() TearSheetParams {
	return TearSheetParams{PeriodsPerYear: 252}
}

// MaxDrawdown walks the equity curve tracking the running peak and returns
// the magnitude of the deepest peak-to-trough decline as a fraction of the
// peak. An empty curve has zero drawdown.
func MaxDrawdown(curve []models.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Equity
	drawdown := 0.0
	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		current := 0.0
		if peak != 0 {
			current = (point.Equity - peak) / peak
		}
		if current < drawdown {
			drawdown = current
		}
	}
	return math.Abs(drawdown)
}

// BuildTearSheet derives the performance statistics from a finished equity
// curve and trade log. With fewer than two equity points every statistic is
// zero except the trade count.
func BuildTearSheet(curve []models.EquityPoint, trades []models.Trade, params TearSheetParams) models.TearSheet {
	if len(curve) < 2 {
		return models.TearSheet{TradeCount: len(trades)}
	}

	start := curve[0].Equity
	end := curve[len(curve)-1].Equity
	totalReturn := 0.0
	if start != 0 {
		totalReturn = (end - start) / start
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	meanReturn := 0.0
	for _, r := range returns {
		meanReturn += r
	}
	meanReturn /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - meanReturn) * (r - meanReturn)
	}
	variance /= float64(len(returns))
	volatility := math.Sqrt(variance)

	periods := float64(params.PeriodsPerYear)
	annualizedReturn := math.Pow(1+meanReturn, periods) - 1
	annualizedVolatility := volatility * math.Sqrt(periods)

	sharpeRatio := 0.0
	if annualizedVolatility > 0 {
		sharpeRatio = annualizedReturn / annualizedVolatility
	}

	largestDrawdown := MaxDrawdown(curve)
	calmarRatio := 0.0
	if largestDrawdown > 0 {
		calmarRatio = annualizedReturn / largestDrawdown
	}

	// Only SELL trades realize PnL; BUY trades always record zero.
	realized := 0
	wins := 0
	for _, trade := range trades {
		if trade.PnL == 0 {
			continue
		}
		realized++
		if trade.PnL > 0 {
			wins++
		}
	}
	winRate := 0.0
	if realized > 0 {
		winRate = float64(wins) / float64(realized)
	}

	return models.TearSheet{
		TotalReturn:          totalReturn,
		AnnualizedReturn:     annualizedReturn,
		AnnualizedVolatility: annualizedVolatility,
		SharpeRatio:          sharpeRatio,
		MaxDrawdown:          largestDrawdown,
		CalmarRatio:          calmarRatio,
		WinRate:              winRate,
		TradeCount:           len(trades),
	}
}
