package models

// DcfStage is one growth stage of a multi-stage DCF projection.
type DcfStage struct {
	Years      int     `json:"years" binding:"required,gte=1"`
	GrowthRate float64 `json:"growth_rate"`
}

// DcfRequest describes a discounted-cash-flow valuation.
type DcfRequest struct {
	Ticker            string     `json:"ticker" binding:"required,min=1,max=20"`
	BaseFCF           float64    `json:"base_fcf" binding:"required"`
	NetDebt           float64    `json:"net_debt"`
	SharesOutstanding float64    `json:"shares_outstanding" binding:"required,gt=0"`
	WACC              float64    `json:"wacc" binding:"required,gt=0,lt=1"`
	TerminalGrowth    float64    `json:"terminal_growth_rate"`
	Stages            []DcfStage `json:"stages" binding:"required,min=1,dive"`

	WACCSensitivity           []float64 `json:"wacc_sensitivity,omitempty"`
	TerminalGrowthSensitivity []float64 `json:"terminal_growth_sensitivity,omitempty"`

	MonteCarloRuns    int     `json:"monte_carlo_runs" binding:"omitempty,gte=1,lte=100000"`
	MonteCarloSeed    int64   `json:"monte_carlo_seed"`
	WACCStdDev        float64 `json:"wacc_std_dev"`
	TerminalGrowthStd float64 `json:"terminal_growth_std_dev"`
	StageGrowthStdDev float64 `json:"growth_std_dev"`
}

// DcfProjectedCashFlow is one discounted projection year.
type DcfProjectedCashFlow struct {
	Year           int     `json:"year"`
	ProjectedFCF   float64 `json:"projected_fcf"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// DcfSensitivityPoint is one cell of the WACC x terminal-growth grid.
type DcfSensitivityPoint struct {
	WACC                   float64 `json:"wacc"`
	TerminalGrowthRate     float64 `json:"terminal_growth_rate"`
	IntrinsicValuePerShare float64 `json:"intrinsic_value_per_share"`
}

// DcfUncertaintySummary summarizes the Monte Carlo valuation distribution.
type DcfUncertaintySummary struct {
	Runs               int     `json:"runs"`
	IntrinsicValueP5   float64 `json:"intrinsic_value_p5"`
	IntrinsicValueP50  float64 `json:"intrinsic_value_p50"`
	IntrinsicValueP95  float64 `json:"intrinsic_value_p95"`
	EnterpriseValueP5  float64 `json:"enterprise_value_p5"`
	EnterpriseValueP50 float64 `json:"enterprise_value_p50"`
	EnterpriseValueP95 float64 `json:"enterprise_value_p95"`
}

// DcfResponse is the full valuation report.
type DcfResponse struct {
	Ticker                  string                 `json:"ticker"`
	EnterpriseValue         float64                `json:"enterprise_value"`
	EquityValue             float64                `json:"equity_value"`
	IntrinsicValuePerShare  float64                `json:"intrinsic_value_per_share"`
	TerminalValue           float64                `json:"terminal_value"`
	DiscountedTerminalValue float64                `json:"discounted_terminal_value"`
	ProjectedCashFlows      []DcfProjectedCashFlow `json:"projected_cash_flows"`
	Sensitivity             []DcfSensitivityPoint  `json:"sensitivity"`
	Uncertainty             *DcfUncertaintySummary `json:"uncertainty,omitempty"`
}
