package services

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

// DcfService performs multi-stage discounted-cash-flow valuations with a
// sensitivity grid and a seeded Monte Carlo uncertainty summary.
type DcfService struct {
	logger *logrus.Logger
}

// NewDcfService creates a DcfService.
func NewDcfService(logger *logrus.Logger) *DcfService {
	return &DcfService{logger: logger}
}

type dcfValues struct {
	enterpriseValue         float64
	equityValue             float64
	intrinsicValuePerShare  float64
	discountedTerminalValue float64
	projected               []models.DcfProjectedCashFlow
}

// ComputeDcf runs the base valuation, the WACC x terminal-growth sensitivity
// grid, and the Monte Carlo sampling. The Monte Carlo generator is seeded
// from the request so results are reproducible.
func (s *DcfService) ComputeDcf(req models.DcfRequest) (*models.DcfResponse, error) {
	stageGrowth := make([]float64, len(req.Stages))
	for i, stage := range req.Stages {
		stageGrowth[i] = stage.GrowthRate
	}

	base, err := computeDcfValues(req, req.WACC, req.TerminalGrowth, stageGrowth)
	if err != nil {
		return nil, err
	}

	finalFCF := req.BaseFCF
	if len(base.projected) > 0 {
		finalFCF = base.projected[len(base.projected)-1].ProjectedFCF
	}
	terminalValue := finalFCF * (1 + req.TerminalGrowth) / (req.WACC - req.TerminalGrowth)

	sensitivity := s.sensitivityGrid(req, stageGrowth)

	var uncertainty *models.DcfUncertaintySummary
	if req.MonteCarloRuns > 0 {
		uncertainty = s.monteCarlo(req, stageGrowth)
	}

	s.logger.WithFields(logrus.Fields{
		"ticker":           req.Ticker,
		"projection_years": len(base.projected),
		"monte_carlo_runs": req.MonteCarloRuns,
	}).Info("Computed DCF valuation")

	return &models.DcfResponse{
		Ticker:                  strings.ToUpper(req.Ticker),
		EnterpriseValue:         base.enterpriseValue,
		EquityValue:             base.equityValue,
		IntrinsicValuePerShare:  base.intrinsicValuePerShare,
		TerminalValue:           terminalValue,
		DiscountedTerminalValue: base.discountedTerminalValue,
		ProjectedCashFlows:      base.projected,
		Sensitivity:             sensitivity,
		Uncertainty:             uncertainty,
	}, nil
}

func (s *DcfService) sensitivityGrid(req models.DcfRequest, stageGrowth []float64) []models.DcfSensitivityPoint {
	waccGrid := req.WACCSensitivity
	if len(waccGrid) == 0 {
		waccGrid = []float64{req.WACC}
	}
	growthGrid := req.TerminalGrowthSensitivity
	if len(growthGrid) == 0 {
		growthGrid = []float64{req.TerminalGrowth}
	}

	var points []models.DcfSensitivityPoint
	for _, wacc := range sortedUnique(waccGrid) {
		if wacc <= 0 || wacc >= 1 {
			continue
		}
		for _, growth := range sortedUnique(growthGrid) {
			if growth < 0 || growth >= 1 || growth >= wacc {
				continue
			}
			candidate, err := computeDcfValues(req, wacc, growth, stageGrowth)
			if err != nil {
				continue
			}
			points = append(points, models.DcfSensitivityPoint{
				WACC:                   wacc,
				TerminalGrowthRate:     growth,
				IntrinsicValuePerShare: candidate.intrinsicValuePerShare,
			})
		}
	}
	return points
}

func (s *DcfService) monteCarlo(req models.DcfRequest, stageGrowth []float64) *models.DcfUncertaintySummary {
	seed := req.MonteCarloSeed
	if seed == 0 {
		seed = 42
	}
	rng := rand.New(rand.NewSource(seed))

	intrinsicValues := make([]float64, 0, req.MonteCarloRuns)
	enterpriseValues := make([]float64, 0, req.MonteCarloRuns)

	for run := 0; run < req.MonteCarloRuns; run++ {
		sampledWACC := clip(rng.NormFloat64()*req.WACCStdDev+req.WACC, 0.005, 0.99)
		sampledGrowth := clip(rng.NormFloat64()*req.TerminalGrowthStd+req.TerminalGrowth, 0, sampledWACC-0.001)

		sampledStages := make([]float64, len(stageGrowth))
		for i, growth := range stageGrowth {
			sampledStages[i] = clip(rng.NormFloat64()*req.StageGrowthStdDev+growth, -0.95, 1.5)
		}

		sampled, err := computeDcfValues(req, sampledWACC, sampledGrowth, sampledStages)
		if err != nil {
			continue
		}
		intrinsicValues = append(intrinsicValues, sampled.intrinsicValuePerShare)
		enterpriseValues = append(enterpriseValues, sampled.enterpriseValue)
	}

	if len(intrinsicValues) == 0 {
		return nil
	}

	return &models.DcfUncertaintySummary{
		Runs:               req.MonteCarloRuns,
		IntrinsicValueP5:   percentile(intrinsicValues, 5),
		IntrinsicValueP50:  percentile(intrinsicValues, 50),
		IntrinsicValueP95:  percentile(intrinsicValues, 95),
		EnterpriseValueP5:  percentile(enterpriseValues, 5),
		EnterpriseValueP50: percentile(enterpriseValues, 50),
		EnterpriseValueP95: percentile(enterpriseValues, 95),
	}
}

// computeDcfValues projects and discounts cash flows through all stages and
// the terminal value.
func computeDcfValues(req models.DcfRequest, wacc, terminalGrowth float64, stageGrowth []float64) (dcfValues, error) {
	if terminalGrowth >= wacc {
		return dcfValues{}, utils.NewConfigurationError("terminal_growth_rate must be less than wacc")
	}
	if req.SharesOutstanding <= 0 {
		return dcfValues{}, utils.NewConfigurationError("shares_outstanding must be positive")
	}

	var projected []models.DcfProjectedCashFlow
	currentFCF := req.BaseFCF
	year := 0
	presentValueSum := 0.0

	for i, stage := range req.Stages {
		growth := stageGrowth[i]
		for y := 0; y < stage.Years; y++ {
			year++
			currentFCF *= 1 + growth
			discountFactor := pow1p(wacc, year)
			presentValue := currentFCF / discountFactor
			presentValueSum += presentValue
			projected = append(projected, models.DcfProjectedCashFlow{
				Year:           year,
				ProjectedFCF:   currentFCF,
				DiscountFactor: discountFactor,
				PresentValue:   presentValue,
			})
		}
	}

	terminalValue := currentFCF * (1 + terminalGrowth) / (wacc - terminalGrowth)
	discountedTerminalValue := terminalValue / pow1p(wacc, year)

	enterpriseValue := presentValueSum + discountedTerminalValue
	equityValue := enterpriseValue - req.NetDebt
	intrinsicValuePerShare := equityValue / req.SharesOutstanding

	return dcfValues{
		enterpriseValue:         enterpriseValue,
		equityValue:             equityValue,
		intrinsicValuePerShare:  intrinsicValuePerShare,
		discountedTerminalValue: discountedTerminalValue,
		projected:               projected,
	}, nil
}

// pow1p computes (1+rate)^years.
func pow1p(rate float64, years int) float64 {
	result := 1.0
	for i := 0; i < years; i++ {
		result *= 1 + rate
	}
	return result
}

func sortedUnique(values []float64) []float64 {
	seen := make(map[float64]bool, len(values))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
