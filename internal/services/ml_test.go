package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

// cyclingBars builds n daily bars whose returns repeat the given cycle, so a
// lagged linear model can recover the pattern exactly.
func cyclingBars(n int, cycle []float64) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		if i > 0 {
			price *= 1 + cycle[(i-1)%len(cycle)]
		}
		bars[i] = models.PriceBar{
			Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1000,
		}
	}
	return bars
}

func testMlService(bySymbol map[string][]models.PriceBar) *MlService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewMlService(&mapBarProvider{bySymbol: bySymbol}, logger)
}

func TestTrainBaselineRecoversLinearPattern(t *testing.T) {
	// Returns cycle through three values, so with two lags every target is an
	// exact affine function of its features.
	service := testMlService(map[string][]models.PriceBar{
		"MSFT": cyclingBars(63, []float64{0.1, 0.02, -0.05}),
	})

	response, err := service.TrainBaseline(context.Background(), models.MlTrainRequest{
		Symbol:     "msft",
		Start:      "2024-01-01",
		End:        "2024-03-31",
		Lags:       2,
		TrainRatio: 0.8,
	})
	require.NoError(t, err)

	assert.Equal(t, "MSFT", response.Symbol)
	assert.Equal(t, "LinearLagModel", response.ModelName)
	assert.Equal(t, 2, response.Lags)
	// 62 returns minus 2 lags leaves 60 observations split 48/12.
	assert.Equal(t, 48, response.TrainSize)
	assert.Equal(t, 12, response.TestSize)
	assert.Len(t, response.Coefficients, 2)
	require.Len(t, response.Predictions, 12)

	assert.Less(t, response.RMSE, 1e-8)
	assert.Less(t, response.MAE, 1e-8)
	assert.Greater(t, response.R2, 0.9999)
	for _, point := range response.Predictions {
		assert.InDelta(t, point.Actual, point.Predicted, 1e-8)
	}
}

func TestTrainBaselineDefaults(t *testing.T) {
	service := testMlService(map[string][]models.PriceBar{
		"MSFT": cyclingBars(63, []float64{0.01, -0.01, 0.02}),
	})

	response, err := service.TrainBaseline(context.Background(), models.MlTrainRequest{
		Symbol: "MSFT",
		Start:  "2024-01-01",
		End:    "2024-03-31",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, response.Lags)
	assert.Len(t, response.Coefficients, 5)
	// 62 returns minus 5 lags leaves 57 observations.
	assert.Equal(t, 57, response.TrainSize+response.TestSize)
}

func TestTrainBaselineValidation(t *testing.T) {
	service := testMlService(map[string][]models.PriceBar{
		"MSFT": cyclingBars(63, []float64{0.01, -0.01, 0.02}),
	})

	cases := []struct {
		name string
		req  models.MlTrainRequest
	}{
		{"bad start date", models.MlTrainRequest{Symbol: "MSFT", Start: "yesterday", End: "2024-03-31"}},
		{"bad end date", models.MlTrainRequest{Symbol: "MSFT", Start: "2024-01-01", End: "soon"}},
		{"lags too small", models.MlTrainRequest{Symbol: "MSFT", Start: "2024-01-01", End: "2024-03-31", Lags: 1}},
		{"lags too large", models.MlTrainRequest{Symbol: "MSFT", Start: "2024-01-01", End: "2024-03-31", Lags: 31}},
		{"train ratio too high", models.MlTrainRequest{Symbol: "MSFT", Start: "2024-01-01", End: "2024-03-31", TrainRatio: 0.95}},
		{"train ratio too low", models.MlTrainRequest{Symbol: "MSFT", Start: "2024-01-01", End: "2024-03-31", TrainRatio: 0.4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.TrainBaseline(context.Background(), tc.req)
			var configErr *utils.ConfigurationError
			assert.ErrorAs(t, err, &configErr)
		})
	}
}

func TestTrainBaselineInsufficientData(t *testing.T) {
	t.Run("no bars", func(t *testing.T) {
		service := testMlService(map[string][]models.PriceBar{})
		_, err := service.TrainBaseline(context.Background(), models.MlTrainRequest{
			Symbol: "MSFT", Start: "2024-01-01", End: "2024-03-31",
		})
		var dataErr *utils.DataUnavailableError
		assert.ErrorAs(t, err, &dataErr)
	})

	t.Run("too few observations", func(t *testing.T) {
		service := testMlService(map[string][]models.PriceBar{
			"MSFT": cyclingBars(20, []float64{0.01, -0.01}),
		})
		_, err := service.TrainBaseline(context.Background(), models.MlTrainRequest{
			Symbol: "MSFT", Start: "2024-01-01", End: "2024-03-31",
		})
		var dataErr *utils.DataUnavailableError
		assert.ErrorAs(t, err, &dataErr)
	})
}
