package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/database"
	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

// BacktestEngine runs one backtest per request.
type BacktestEngine interface {
	Run(ctx context.Context, req models.BacktestRequest) (*models.BacktestResponse, error)
}

// RunStore persists completed run summaries.
type RunStore interface {
	SaveRun(ctx context.Context, record models.BacktestRunRecord) error
	ListRuns(ctx context.Context, limit int) ([]models.BacktestRunRecord, error)
}

// BacktestHandler exposes the backtest engine over HTTP.
type BacktestHandler struct {
	engine BacktestEngine
	store  RunStore
	logger *logrus.Logger
}

// NewBacktestHandler creates a BacktestHandler. The store may be nil; run
// persistence is then skipped.
func NewBacktestHandler(engine BacktestEngine, store RunStore, logger *logrus.Logger) *BacktestHandler {
	return &BacktestHandler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// RunBacktest handles POST /backtest/run. Configuration and data errors map
// to 400; everything else is a 500.
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.engine.Run(c.Request.Context(), req)
	if err != nil {
		if isClientError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Backtest run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run backtest"})
		return
	}

	if h.store != nil {
		record := models.BacktestRunRecord{
			ID:             uuid.New().String(),
			Symbol:         response.Symbol,
			Strategy:       response.Strategy,
			InitialCapital: response.InitialCapital,
			FinalEquity:    response.FinalEquity,
			TotalReturn:    response.TearSheet.TotalReturn,
			TradeCount:     response.TearSheet.TradeCount,
		}
		if err := h.store.SaveRun(c.Request.Context(), record); err != nil {
			// Persistence is best-effort; the report is still returned.
			h.logger.WithError(err).Warn("Failed to persist backtest run")
		}
	}

	c.JSON(http.StatusOK, response)
}

// ListRuns handles GET /backtest/runs.
func (h *BacktestHandler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []models.BacktestRunRecord{}})
		return
	}

	records, err := h.store.ListRuns(c.Request.Context(), 50)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list backtest runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list backtest runs"})
		return
	}
	if records == nil {
		records = []models.BacktestRunRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": records})
}

// isClientError reports whether the error should surface as a bad request.
func isClientError(err error) bool {
	var configErr *utils.ConfigurationError
	var dataErr *utils.DataUnavailableError
	return errors.As(err, &configErr) || errors.As(err, &dataErr)
}

var _ RunStore = (*database.BacktestRepository)(nil)
