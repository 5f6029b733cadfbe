package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/config"
	"github.com/quantdesk/quantdesk-go/internal/models"
)

// AlpacaProvider fetches daily OHLCV bars from the Alpaca market-data API.
type AlpacaProvider struct {
	client *marketdata.Client
	feed   string
	logger *logrus.Logger
}

// NewAlpacaProvider creates a provider configured with the given credentials.
func NewAlpacaProvider(cfg config.AlpacaConfig, logger *logrus.Logger) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.DataURL != "" {
		opts.BaseURL = cfg.DataURL
	}

	feed := cfg.Feed
	if feed == "" {
		feed = "iex"
	}

	return &AlpacaProvider{
		client: marketdata.NewClient(opts),
		feed:   feed,
		logger: logger,
	}
}

// DailyBars fetches daily bars for the symbol over [start, end], normalized
// and ordered by timestamp. The result may be empty; callers decide whether
// an empty range is an error.
func (p *AlpacaProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	alpacaBars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      marketdata.Feed(p.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching daily bars for %s: %w", symbol, err)
	}

	bars := make([]models.PriceBar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, models.PriceBar{
			Timestamp: ab.Timestamp.UTC(),
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    float64(ab.Volume),
		})
	}

	normalized := NormalizeBars(bars)

	p.logger.WithFields(logrus.Fields{
		"symbol":  symbol,
		"fetched": len(bars),
		"kept":    len(normalized),
	}).Debug("Fetched daily bars")

	return normalized, nil
}
