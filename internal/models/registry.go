package models

import "time"

// DataRegistryEntry tracks one known data series (ticker or series id) and
// when it was last refreshed. Entries are upserted after successful fetches.
type DataRegistryEntry struct {
	ID          int64     `json:"id" db:"id"`
	Identifier  string    `json:"ticker_or_series_id" db:"identifier"`
	Source      string    `json:"source" db:"source"`
	Frequency   string    `json:"frequency" db:"frequency"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
	LatestValue *float64  `json:"latest_value,omitempty" db:"latest_value"`
	Points      int       `json:"points" db:"points"`
}
