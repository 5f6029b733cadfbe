package models

// RiskMetricsRequest asks for portfolio Value-at-Risk and correlation over a
// basket of symbols. Weights are optional; when omitted the portfolio is
// equal-weighted.
type RiskMetricsRequest struct {
	Symbols         []string  `json:"symbols" binding:"required,min=1"`
	Start           string    `json:"start" binding:"required"`
	End             string    `json:"end" binding:"required"`
	ConfidenceLevel float64   `json:"confidence_level" binding:"omitempty,gt=0,lt=1"`
	HorizonDays     int       `json:"horizon_days" binding:"omitempty,gte=1"`
	Weights         []float64 `json:"weights,omitempty"`
}

// CorrelationCell is one entry of the pairwise return-correlation matrix.
type CorrelationCell struct {
	Row   string  `json:"row"`
	Col   string  `json:"col"`
	Value float64 `json:"value"`
}

// RiskMetricsResponse reports historical and parametric VaR plus the return
// correlation matrix.
type RiskMetricsResponse struct {
	Symbols           []string          `json:"symbols"`
	ConfidenceLevel   float64           `json:"confidence_level"`
	HorizonDays       int               `json:"horizon_days"`
	HistoricalVaR     float64           `json:"historical_var"`
	ParametricVaR     float64           `json:"parametric_var"`
	CorrelationMatrix []CorrelationCell `json:"correlation_matrix"`
}
