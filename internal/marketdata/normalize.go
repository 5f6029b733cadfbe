package marketdata

import (
	"math"
	"sort"

	"github.com/quantdesk/quantdesk-go/internal/models"
)

// NormalizeBars sorts bars by timestamp, drops unusable observations and
// deduplicates timestamps, keeping the last bar seen for a duplicate. A bar
// is unusable when any price is non-positive or any field is not finite, or
// volume is negative.
func NormalizeBars(bars []models.PriceBar) []models.PriceBar {
	clean := make([]models.PriceBar, 0, len(bars))
	for _, bar := range bars {
		if !validBar(bar) {
			continue
		}
		clean = append(clean, bar)
	}

	sort.SliceStable(clean, func(i, j int) bool {
		return clean[i].Timestamp.Before(clean[j].Timestamp)
	})

	deduped := clean[:0]
	for _, bar := range clean {
		if n := len(deduped); n > 0 && deduped[n-1].Timestamp.Equal(bar.Timestamp) {
			deduped[n-1] = bar
			continue
		}
		deduped = append(deduped, bar)
	}
	return deduped
}

func validBar(bar models.PriceBar) bool {
	for _, price := range []float64{bar.Open, bar.High, bar.Low, bar.Close} {
		if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return false
		}
	}
	if bar.Volume < 0 || math.IsNaN(bar.Volume) || math.IsInf(bar.Volume, 0) {
		return false
	}
	return !bar.Timestamp.IsZero()
}
