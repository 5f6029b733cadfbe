package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quantdesk/quantdesk-go/internal/models"
)

// DatabasePool defines the interface for database pool operations. It allows
// both the real pgx pool and mock pools in tests.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// BacktestRepository persists completed backtest-run summaries and
// data-registry entries.
type BacktestRepository struct {
	pool DatabasePool
}

// NewBacktestRepository creates a new repository over the given pool.
func NewBacktestRepository(pool DatabasePool) *BacktestRepository {
	return &BacktestRepository{
		pool: pool,
	}
}

// SaveRun records the summary of one completed backtest run.
func (r *BacktestRepository) SaveRun(ctx context.Context, record models.BacktestRunRecord) error {
	query := `
		INSERT INTO backtest_runs (id, symbol, strategy, initial_capital, final_equity, total_return, trade_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Symbol,
		record.Strategy,
		record.InitialCapital,
		record.FinalEquity,
		record.TotalReturn,
		record.TradeCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent backtest-run summaries, newest first.
func (r *BacktestRepository) ListRuns(ctx context.Context, limit int) ([]models.BacktestRunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, symbol, strategy, initial_capital, final_equity, total_return, trade_count, created_at
		FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list backtest runs: %w", err)
	}
	defer rows.Close()

	var records []models.BacktestRunRecord
	for rows.Next() {
		var record models.BacktestRunRecord
		if err := rows.Scan(
			&record.ID,
			&record.Symbol,
			&record.Strategy,
			&record.InitialCapital,
			&record.FinalEquity,
			&record.TotalReturn,
			&record.TradeCount,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backtest run: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// UpsertRegistryEntry inserts or refreshes a data-registry entry keyed by
// identifier and source.
func (r *BacktestRepository) UpsertRegistryEntry(ctx context.Context, entry models.DataRegistryEntry) error {
	query := `
		INSERT INTO data_registry (identifier, source, frequency, last_updated, latest_value, points)
		VALUES ($1, $2, $3, NOW(), $4, $5)
		ON CONFLICT (identifier, source)
		DO UPDATE SET
			frequency = EXCLUDED.frequency,
			last_updated = NOW(),
			latest_value = EXCLUDED.latest_value,
			points = EXCLUDED.points
	`

	_, err := r.pool.Exec(ctx, query,
		entry.Identifier,
		entry.Source,
		entry.Frequency,
		entry.LatestValue,
		entry.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert registry entry: %w", err)
	}
	return nil
}

// ListRegistryEntries returns all registry entries ordered by identifier.
func (r *BacktestRepository) ListRegistryEntries(ctx context.Context) ([]models.DataRegistryEntry, error) {
	query := `
		SELECT id, identifier, source, frequency, last_updated, latest_value, points
		FROM data_registry
		ORDER BY identifier
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry entries: %w", err)
	}
	defer rows.Close()

	var entries []models.DataRegistryEntry
	for rows.Next() {
		var entry models.DataRegistryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Identifier,
			&entry.Source,
			&entry.Frequency,
			&entry.LastUpdated,
			&entry.LatestValue,
			&entry.Points,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registry entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
