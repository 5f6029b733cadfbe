package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/quantdesk/quantdesk-go/internal/marketdata"
	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

const (
	mlModelName       = "LinearLagModel"
	minMlObservations = 30
)

// MlService trains a baseline linear model that predicts the next daily
// return from the preceding lagged returns.
type MlService struct {
	provider marketdata.BarProvider
	logger   *logrus.Logger
}

// NewMlService creates an MlService over the given bar provider.
func NewMlService(provider marketdata.BarProvider, logger *logrus.Logger) *MlService {
	return &MlService{
		provider: provider,
		logger:   logger,
	}
}

// TrainBaseline fits ordinary least squares on lagged close returns, holding
// out the tail of the sample for out-of-sample error metrics.
func (s *MlService) TrainBaseline(ctx context.Context, req models.MlTrainRequest) (*models.MlTrainResponse, error) {
	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		return nil, utils.NewConfigurationErrorf("invalid start date %q: expected YYYY-MM-DD", req.Start)
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		return nil, utils.NewConfigurationErrorf("invalid end date %q: expected YYYY-MM-DD", req.End)
	}

	lags := req.Lags
	if lags == 0 {
		lags = 5
	}
	if lags < 2 || lags > 30 {
		return nil, utils.NewConfigurationError("lags must be between 2 and 30")
	}

	ratio := req.TrainRatio
	if ratio == 0 {
		ratio = 0.8
	}
	if ratio <= 0.5 || ratio >= 0.95 {
		return nil, utils.NewConfigurationError("train_ratio must be between 0.5 and 0.95 exclusive")
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	bars, err := s.provider.DailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, utils.NewDataUnavailableErrorf("no market data available for %s", symbol)
	}

	returns := make([]float64, 0, len(bars)-1)
	returnTimes := make([]time.Time, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		returns = append(returns, bars[i].Close/bars[i-1].Close-1)
		returnTimes = append(returnTimes, bars[i].Timestamp)
	}

	observations := len(returns) - lags
	if observations < minMlObservations {
		return nil, utils.NewDataUnavailableErrorf(
			"insufficient observations for training: need %d, have %d", minMlObservations, observations)
	}

	features := make([][]float64, observations)
	targets := make([]float64, observations)
	timestamps := make([]time.Time, observations)
	for i := 0; i < observations; i++ {
		idx := i + lags
		features[i] = returns[idx-lags : idx]
		targets[i] = returns[idx]
		timestamps[i] = returnTimes[idx]
	}

	split := int(float64(observations) * ratio)
	coefficients, intercept, err := fitLinearRegression(features[:split], targets[:split])
	if err != nil {
		return nil, fmt.Errorf("training baseline model for %s: %w", symbol, err)
	}

	testFeatures := features[split:]
	testTargets := targets[split:]
	testTimes := timestamps[split:]

	predictions := make([]models.MlPredictionPoint, len(testTargets))
	var sumSq, sumAbs float64
	for i, row := range testFeatures {
		predicted := intercept
		for j, c := range coefficients {
			predicted += c * row[j]
		}
		residual := testTargets[i] - predicted
		sumSq += residual * residual
		sumAbs += math.Abs(residual)
		predictions[i] = models.MlPredictionPoint{
			Timestamp: testTimes[i],
			Actual:    testTargets[i],
			Predicted: predicted,
		}
	}

	mse := sumSq / float64(len(testTargets))
	rmse := math.Sqrt(mse)
	mae := sumAbs / float64(len(testTargets))

	testMean := mean(testTargets)
	var ssTot float64
	for _, v := range testTargets {
		ssTot += (v - testMean) * (v - testMean)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - sumSq/ssTot
	}

	s.logger.WithFields(logrus.Fields{
		"symbol":     symbol,
		"lags":       lags,
		"train_size": split,
		"test_size":  len(testTargets),
		"rmse":       rmse,
	}).Info("Trained baseline return model")

	return &models.MlTrainResponse{
		Symbol:       symbol,
		ModelName:    mlModelName,
		Lags:         lags,
		TrainSize:    split,
		TestSize:     len(testTargets),
		MSE:          mse,
		RMSE:         rmse,
		MAE:          mae,
		R2:           r2,
		Coefficients: coefficients,
		Intercept:    intercept,
		Predictions:  predictions,
	}, nil
}

// fitLinearRegression solves least squares for y = intercept + X*beta via QR.
// An ill-conditioned design matrix is tolerated the way a pseudo-inverse
// would tolerate it.
func fitLinearRegression(features [][]float64, targets []float64) ([]float64, float64, error) {
	rows := len(features)
	cols := len(features[0]) + 1

	data := make([]float64, rows*cols)
	for i, row := range features {
		data[i*cols] = 1
		copy(data[i*cols+1:(i+1)*cols], row)
	}
	x := mat.NewDense(rows, cols, data)
	y := mat.NewVecDense(rows, targets)

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, 0, err
		}
	}

	coefficients := make([]float64, cols-1)
	for j := range coefficients {
		coefficients[j] = beta.AtVec(j + 1)
	}
	return coefficients, beta.AtVec(0), nil
}
