package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/services"
)

// MacroHandler exposes the macroeconomic dashboard over HTTP.
type MacroHandler struct {
	service *services.MacroService
	logger  *logrus.Logger
}

// NewMacroHandler creates a MacroHandler.
func NewMacroHandler(service *services.MacroService, logger *logrus.Logger) *MacroHandler {
	return &MacroHandler{
		service: service,
		logger:  logger,
	}
}

// Dashboard handles POST /macro/dashboard.
func (h *MacroHandler) Dashboard(c *gin.Context) {
	var req models.MacroDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.BuildDashboard(c.Request.Context(), req)
	if err != nil {
		if isClientError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Macro dashboard build failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build macro dashboard"})
		return
	}

	c.JSON(http.StatusOK, response)
}
