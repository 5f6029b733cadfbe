package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/services"
)

// AnalysisHandler exposes the technical-indicator service over HTTP.
type AnalysisHandler struct {
	service *services.AnalysisService
	logger  *logrus.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(service *services.AnalysisService, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// GetIndicators handles GET /analysis/indicators.
func (h *AnalysisHandler) GetIndicators(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}

	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be a YYYY-MM-DD date"})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be a YYYY-MM-DD date"})
		return
	}

	indicators := strings.Split(c.DefaultQuery("indicators", "SMA_20"), ",")

	response, err := h.service.ComputeIndicators(c.Request.Context(), symbol, start, end, indicators)
	if err != nil {
		if isClientError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Indicator computation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute indicators"})
		return
	}

	c.JSON(http.StatusOK, response)
}
