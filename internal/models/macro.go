package models

import "time"

// MacroDashboardRequest asks for a dashboard of macroeconomic series over a
// date range. A nil series list falls back to the default indicator set.
type MacroDashboardRequest struct {
	Start     string   `json:"start" binding:"required"`
	End       string   `json:"end" binding:"required"`
	SeriesIDs []string `json:"series_ids,omitempty"`
}

// MacroPoint is one observation of a macro series with derived statistics.
// YoYChange and ZScore are nil where the window is too short to compute them.
type MacroPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Value         float64   `json:"value"`
	YoYChange     *float64  `json:"yoy_change,omitempty"`
	ZScore        *float64  `json:"z_score,omitempty"`
	RecessionFlag int       `json:"recession_flag"`
}

// MacroSeries is one fetched economic series with its annotated points.
type MacroSeries struct {
	SeriesID string       `json:"series_id"`
	Label    string       `json:"label"`
	Source   string       `json:"source"`
	Points   []MacroPoint `json:"points"`
}

// MacroDashboardResponse carries the requested series plus their pairwise
// correlations over shared observation dates.
type MacroDashboardResponse struct {
	Start             string            `json:"start"`
	End               string            `json:"end"`
	Series            []MacroSeries     `json:"series"`
	CorrelationMatrix []CorrelationCell `json:"correlation_matrix"`
}
