package services

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/marketdata"
	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

// recessionSeriesID is the NBER recession indicator used to flag points.
const recessionSeriesID = "USREC"

// defaultMacroSeries maps the default dashboard series to display labels.
var defaultMacroSeries = map[string]string{
	"GDP":      "Real GDP",
	"CPIAUCSL": "CPI All Urban Consumers",
	"UNRATE":   "Unemployment Rate",
	"FEDFUNDS": "Fed Funds Effective Rate",
	"INDPRO":   "Industrial Production Index",
}

// defaultMacroOrder keeps the dashboard series in a stable order.
var defaultMacroOrder = []string{"GDP", "CPIAUCSL", "UNRATE", "FEDFUNDS", "INDPRO"}

// MacroService assembles a dashboard of macroeconomic series with YoY and
// z-score annotations plus cross-series correlations.
type MacroService struct {
	fetcher marketdata.SeriesFetcher
	logger  *logrus.Logger
}

// NewMacroService creates a MacroService over the given series fetcher.
func NewMacroService(fetcher marketdata.SeriesFetcher, logger *logrus.Logger) *MacroService {
	return &MacroService{
		fetcher: fetcher,
		logger:  logger,
	}
}

type macroObservation struct {
	date  string
	value float64
}

// BuildDashboard fetches the requested series (or the default set), annotates
// each point, and correlates the series over their shared dates. Series with
// no usable observations are dropped rather than failing the dashboard.
func (s *MacroService) BuildDashboard(ctx context.Context, req models.MacroDashboardRequest) (*models.MacroDashboardResponse, error) {
	if _, err := time.Parse("2006-01-02", req.Start); err != nil {
		return nil, utils.NewConfigurationErrorf("invalid start date %q: expected YYYY-MM-DD", req.Start)
	}
	if _, err := time.Parse("2006-01-02", req.End); err != nil {
		return nil, utils.NewConfigurationErrorf("invalid end date %q: expected YYYY-MM-DD", req.End)
	}

	chosen := make([]string, 0, len(req.SeriesIDs))
	if len(req.SeriesIDs) == 0 {
		chosen = append(chosen, defaultMacroOrder...)
	} else {
		for _, id := range req.SeriesIDs {
			chosen = append(chosen, strings.ToUpper(strings.TrimSpace(id)))
		}
	}

	recessionByDate, err := s.fetchRecessionFlags(ctx, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	collection := []models.MacroSeries{}
	valuesByID := make(map[string][]macroObservation)
	var collectedIDs []string

	for _, seriesID := range chosen {
		raw, err := s.fetcher.FetchSeries(ctx, seriesID, req.Start, req.End)
		if err != nil {
			return nil, err
		}

		rows := parseObservations(raw)
		if len(rows) == 0 {
			continue
		}

		label := seriesID
		if known, ok := defaultMacroSeries[seriesID]; ok {
			label = known
		}

		collection = append(collection, models.MacroSeries{
			SeriesID: seriesID,
			Label:    label,
			Source:   "FRED",
			Points:   buildMacroPoints(rows, recessionByDate),
		})
		valuesByID[seriesID] = rows
		collectedIDs = append(collectedIDs, seriesID)
	}

	s.logger.WithFields(logrus.Fields{
		"requested": len(chosen),
		"collected": len(collection),
	}).Info("Built macro dashboard")

	return &models.MacroDashboardResponse{
		Start:             req.Start,
		End:               req.End,
		Series:            collection,
		CorrelationMatrix: macroCorrelations(collectedIDs, valuesByID),
	}, nil
}

// fetchRecessionFlags loads the recession indicator and maps each date to its
// 0/1 flag.
func (s *MacroService) fetchRecessionFlags(ctx context.Context, start, end string) (map[string]int, error) {
	raw, err := s.fetcher.FetchSeries(ctx, recessionSeriesID, start, end)
	if err != nil {
		return nil, err
	}
	flags := make(map[string]int, len(raw))
	for _, obs := range raw {
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		flags[obs.Date] = int(value)
	}
	return flags, nil
}

// parseObservations keeps usable observations sorted by date. FRED reports
// missing values as ".".
func parseObservations(raw []marketdata.FredObservation) []macroObservation {
	rows := make([]macroObservation, 0, len(raw))
	for _, obs := range raw {
		if obs.Value == "" || obs.Value == "." {
			continue
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		if _, err := time.Parse("2006-01-02", obs.Date); err != nil {
			continue
		}
		rows = append(rows, macroObservation{date: obs.Date, value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].date < rows[j].date })
	return rows
}

// buildMacroPoints annotates each observation with its year-over-year change
// (12 observations back) and its z-score against the whole window.
func buildMacroPoints(rows []macroObservation, recessionByDate map[string]int) []models.MacroPoint {
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.value
	}

	m := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	std := math.Sqrt(variance / float64(len(values)))

	points := make([]models.MacroPoint, len(rows))
	for i, row := range rows {
		ts, _ := time.Parse("2006-01-02", row.date)

		point := models.MacroPoint{
			Timestamp:     ts.UTC(),
			Value:         row.value,
			RecessionFlag: recessionByDate[row.date],
		}

		if i >= 12 && values[i-12] != 0 {
			yoy := (row.value/values[i-12] - 1) * 100
			point.YoYChange = &yoy
		}

		z := 0.0
		if std > 0 {
			z = (row.value - m) / std
		}
		point.ZScore = &z

		points[i] = point
	}
	return points
}

// macroCorrelations intersects the series on shared dates and computes the
// pairwise Pearson matrix.
func macroCorrelations(ids []string, valuesByID map[string][]macroObservation) []models.CorrelationCell {
	if len(ids) == 0 {
		return []models.CorrelationCell{}
	}

	byDate := make(map[string]map[string]float64, len(ids))
	for _, id := range ids {
		dated := make(map[string]float64, len(valuesByID[id]))
		for _, row := range valuesByID[id] {
			dated[row.date] = row.value
		}
		byDate[id] = dated
	}

	var sharedDates []string
	for date := range byDate[ids[0]] {
		shared := true
		for _, id := range ids[1:] {
			if _, ok := byDate[id][date]; !ok {
				shared = false
				break
			}
		}
		if shared {
			sharedDates = append(sharedDates, date)
		}
	}
	sort.Strings(sharedDates)

	aligned := make(map[string][]float64, len(ids))
	for _, id := range ids {
		series := make([]float64, len(sharedDates))
		for t, date := range sharedDates {
			series[t] = byDate[id][date]
		}
		aligned[id] = series
	}

	cells := make([]models.CorrelationCell, 0, len(ids)*len(ids))
	for _, row := range ids {
		for _, col := range ids {
			cells = append(cells, models.CorrelationCell{
				Row:   row,
				Col:   col,
				Value: pearson(aligned[row], aligned[col]),
			})
		}
	}
	return cells
}
