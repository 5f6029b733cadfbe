package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/services"
)

// MlHandler exposes baseline return-model training over HTTP.
type MlHandler struct {
	service *services.MlService
	logger  *logrus.Logger
}

// NewMlHandler creates an MlHandler.
func NewMlHandler(service *services.MlService, logger *logrus.Logger) *MlHandler {
	return &MlHandler{
		service: service,
		logger:  logger,
	}
}

// TrainBaseline handles POST /ml/train-baseline.
func (h *MlHandler) TrainBaseline(c *gin.Context) {
	var req models.MlTrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.TrainBaseline(c.Request.Context(), req)
	if err != nil {
		if isClientError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Baseline model training failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to train baseline model"})
		return
	}

	c.JSON(http.StatusOK, response)
}
