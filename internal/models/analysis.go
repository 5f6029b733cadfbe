package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndicatorPoint is one timestamped indicator value.
type IndicatorPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// IndicatorSeries is a named indicator sampled over a bar series.
type IndicatorSeries struct {
	Name   string           `json:"name"`
	Points []IndicatorPoint `json:"points"`
}

// TechnicalAnalysisResponse carries the OHLCV window and the requested
// indicator overlays for one symbol.
type TechnicalAnalysisResponse struct {
	Symbol      string            `json:"symbol"`
	Source      string            `json:"source"`
	Frequency   string            `json:"frequency"`
	LastUpdated time.Time         `json:"last_updated"`
	Bars        []PriceBar        `json:"ohlcv"`
	Indicators  []IndicatorSeries `json:"indicators"`
}
