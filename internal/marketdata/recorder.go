package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/models"
)

// RegistryStore records fetched series in the data registry.
type RegistryStore interface {
	UpsertRegistryEntry(ctx context.Context, entry models.DataRegistryEntry) error
}

// RecordingProvider upserts a data-registry entry after every successful
// non-empty fetch, so the registry catalogs what has actually been pulled.
// Registry failures are logged and never fail the fetch.
type RecordingProvider struct {
	inner    BarProvider
	registry RegistryStore
	source   string
	logger   *logrus.Logger
}

// NewRecordingProvider wraps the given provider with registry recording.
func NewRecordingProvider(inner BarProvider, registry RegistryStore, source string, logger *logrus.Logger) *RecordingProvider {
	return &RecordingProvider{
		inner:    inner,
		registry: registry,
		source:   source,
		logger:   logger,
	}
}

// DailyBars fetches through the inner provider and records the series in the
// registry when bars came back.
func (p *RecordingProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	bars, err := p.inner.DailyBars(ctx, symbol, start, end)
	if err != nil || len(bars) == 0 {
		return bars, err
	}

	if p.registry != nil {
		latest := bars[len(bars)-1].Close
		entry := models.DataRegistryEntry{
			Identifier:  strings.ToUpper(strings.TrimSpace(symbol)),
			Source:      p.source,
			Frequency:   "daily",
			LatestValue: &latest,
			Points:      len(bars),
		}
		if err := p.registry.UpsertRegistryEntry(ctx, entry); err != nil {
			p.logger.WithError(err).WithField("symbol", entry.Identifier).Warn("Failed to record registry entry")
		}
	}

	return bars, nil
}
