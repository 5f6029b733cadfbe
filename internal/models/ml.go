package models

import "time"

// MlTrainRequest asks for a baseline return-forecasting model to be trained
// on a symbol's daily close returns. Zero-valued optional fields take their
// defaults at training time (5 lags, 0.8 train ratio).
type MlTrainRequest struct {
	Symbol     string  `json:"symbol" binding:"required,min=1,max=20"`
	Start      string  `json:"start" binding:"required"`
	End        string  `json:"end" binding:"required"`
	Lags       int     `json:"lags" binding:"omitempty,gte=2,lte=30"`
	TrainRatio float64 `json:"train_ratio" binding:"omitempty,gt=0.5,lt=0.95"`
}

// MlPredictionPoint pairs an out-of-sample actual return with the model's
// prediction for the same day.
type MlPredictionPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// MlTrainResponse reports the fitted coefficients and out-of-sample error
// metrics of a baseline lagged-return model.
type MlTrainResponse struct {
	Symbol       string              `json:"symbol"`
	ModelName    string              `json:"model_name"`
	Lags         int                 `json:"lags"`
	TrainSize    int                 `json:"train_size"`
	TestSize     int                 `json:"test_size"`
	MSE          float64             `json:"mse"`
	RMSE         float64             `json:"rmse"`
	MAE          float64             `json:"mae"`
	R2           float64             `json:"r2"`
	Coefficients []float64           `json:"coefficients"`
	Intercept    float64             `json:"intercept"`
	Predictions  []MlPredictionPoint `json:"predictions"`
}
