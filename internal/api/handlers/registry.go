package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/models"
)

// RegistryStore lists and upserts data-registry entries.
type RegistryStore interface {
	ListRegistryEntries(ctx context.Context) ([]models.DataRegistryEntry, error)
	UpsertRegistryEntry(ctx context.Context, entry models.DataRegistryEntry) error
}

// RegistryHandler exposes the data registry over HTTP.
type RegistryHandler struct {
	store  RegistryStore
	logger *logrus.Logger
}

// NewRegistryHandler creates a RegistryHandler.
func NewRegistryHandler(store RegistryStore, logger *logrus.Logger) *RegistryHandler {
	return &RegistryHandler{
		store:  store,
		logger: logger,
	}
}

// ListEntries handles GET /data/registry.
func (h *RegistryHandler) ListEntries(c *gin.Context) {
	entries, err := h.store.ListRegistryEntries(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list registry entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list registry entries"})
		return
	}
	if entries == nil {
		entries = []models.DataRegistryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(entries), "items": entries})
}

// UpsertEntryRequest is the payload for registering a tracked series.
type UpsertEntryRequest struct {
	Identifier  string   `json:"ticker_or_series_id" binding:"required,min=1,max=64"`
	Source      string   `json:"source" binding:"required"`
	Frequency   string   `json:"frequency"`
	LatestValue *float64 `json:"latest_value,omitempty"`
	Points      int      `json:"points"`
}

// UpsertEntry handles POST /data/registry.
func (h *RegistryHandler) UpsertEntry(c *gin.Context) {
	var req UpsertEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := models.DataRegistryEntry{
		Identifier:  req.Identifier,
		Source:      req.Source,
		Frequency:   req.Frequency,
		LatestValue: req.LatestValue,
		Points:      req.Points,
	}
	if err := h.store.UpsertRegistryEntry(c.Request.Context(), entry); err != nil {
		h.logger.WithError(err).Error("Failed to upsert registry entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert registry entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
