package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/services"
)

// RiskHandler exposes portfolio risk metrics over HTTP.
type RiskHandler struct {
	service *services.RiskService
	logger  *logrus.Logger
}

// NewRiskHandler creates a RiskHandler.
func NewRiskHandler(service *services.RiskService, logger *logrus.Logger) *RiskHandler {
	return &RiskHandler{
		service: service,
		logger:  logger,
	}
}

// ComputeMetrics handles POST /risk/metrics.
func (h *RiskHandler) ComputeMetrics(c *gin.Context) {
	var req models.RiskMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.ComputeRiskMetrics(c.Request.Context(), req)
	if err != nil {
		if isClientError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Risk metrics computation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute risk metrics"})
		return
	}

	c.JSON(http.StatusOK, response)
}
