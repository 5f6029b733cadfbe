package models

import "time"

// PriceBar represents one daily OHLCV observation for a symbol. Bars in a
// series are strictly ordered by timestamp.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// StrategyConfig selects and parameterizes the signal-generation strategy.
type StrategyConfig struct {
	Name       string `json:"name"`
	FastWindow int    `json:"fast_window" binding:"omitempty,gte=2,lte=200"`
	SlowWindow int    `json:"slow_window" binding:"omitempty,gte=3,lte=400"`
}

// BacktestRequest describes a single backtest run.
type BacktestRequest struct {
	Symbol         string         `json:"symbol" binding:"required,min=1,max=20"`
	Start          string         `json:"start" binding:"required"`
	End            string         `json:"end" binding:"required"`
	InitialCapital float64        `json:"initial_capital" binding:"omitempty,gt=0"`
	TradeSize      int            `json:"trade_size" binding:"omitempty,gte=1"`
	Strategy       StrategyConfig `json:"strategy"`
}

// Trade is one executed fill recorded in the trade log. BUY trades always
// carry a zero PnL; SELL trades carry the realized profit or loss against
// the most recent entry price.
type Trade struct {
	Timestamp time.Time `json:"timestamp"`
	Side      string    `json:"side"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	PnL       float64   `json:"pnl"`
}

// EquityPoint is one mark-to-market valuation of the portfolio, sampled once
// per processed bar.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// TearSheet bundles the risk/return statistics derived from a finished
// equity curve and trade log.
type TearSheet struct {
	TotalReturn          float64 `json:"total_return"`
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	CalmarRatio          float64 `json:"calmar_ratio"`
	WinRate              float64 `json:"win_rate"`
	TradeCount           int     `json:"trade_count"`
}

// BacktestResponse is the full report for one backtest run.
type BacktestResponse struct {
	Symbol         string        `json:"symbol"`
	Strategy       string        `json:"strategy"`
	InitialCapital float64       `json:"initial_capital"`
	FinalEquity    float64       `json:"final_equity"`
	TearSheet      TearSheet     `json:"tear_sheet"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
	Trades         []Trade       `json:"trades"`
}

// BacktestRunRecord is the persisted summary of a completed run.
type BacktestRunRecord struct {
	ID             string    `json:"id" db:"id"`
	Symbol         string    `json:"symbol" db:"symbol"`
	Strategy       string    `json:"strategy" db:"strategy"`
	InitialCapital float64   `json:"initial_capital" db:"initial_capital"`
	FinalEquity    float64   `json:"final_equity" db:"final_equity"`
	TotalReturn    float64   `json:"total_return" db:"total_return"`
	TradeCount     int       `json:"trade_count" db:"trade_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
