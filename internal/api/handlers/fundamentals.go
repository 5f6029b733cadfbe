package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/services"
)

// FundamentalsHandler exposes the DCF valuation engine over HTTP.
type FundamentalsHandler struct {
	service *services.DcfService
	logger  *logrus.Logger
}

// NewFundamentalsHandler creates a FundamentalsHandler.
func NewFundamentalsHandler(service *services.DcfService, logger *logrus.Logger) *FundamentalsHandler {
	return &FundamentalsHandler{
		service: service,
		logger:  logger,
	}
}

// ComputeDcf handles POST /fundamentals/dcf.
func (h *FundamentalsHandler) ComputeDcf(c *gin.Context) {
	var req models.DcfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.ComputeDcf(req)
	if err != nil {
		if isClientError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("DCF computation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute DCF valuation"})
		return
	}

	c.JSON(http.StatusOK, response)
}
