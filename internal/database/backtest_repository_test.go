package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk-go/internal/models"
)

// MockPoolAdapter wraps pgxmock.PgxPoolIface to implement DatabasePool interface
type MockPoolAdapter struct {
	mock pgxmock.PgxPoolIface
}

func NewMockPoolAdapter(mock pgxmock.PgxPoolIface) DatabasePool {
	return &MockPoolAdapter{mock: mock}
}

func (m *MockPoolAdapter) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.mock.QueryRow(ctx, sql, args...)
}

func (m *MockPoolAdapter) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	result, err := m.mock.Exec(ctx, sql, args...)
	if err == nil {
		rows := result.RowsAffected()
		return pgconn.NewCommandTag(fmt.Sprintf("INSERT %d", rows)), nil
	}
	return pgconn.CommandTag{}, err
}

func (m *MockPoolAdapter) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return m.mock.Query(ctx, sql, args...)
}

func newMockRepository(t *testing.T) (*BacktestRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewBacktestRepository(NewMockPoolAdapter(mock)), mock
}

func TestBacktestRepository_SaveRun(t *testing.T) {
	repo, mock := newMockRepository(t)

	record := models.BacktestRunRecord{
		ID:             "a3c1a2d4-0000-0000-0000-000000000001",
		Symbol:         "AAPL",
		Strategy:       "sma_crossover",
		InitialCapital: 100000,
		FinalEquity:    103000,
		TotalReturn:    0.03,
		TradeCount:     2,
	}

	mock.ExpectExec("INSERT INTO backtest_runs").
		WithArgs(record.ID, record.Symbol, record.Strategy, record.InitialCapital,
			record.FinalEquity, record.TotalReturn, record.TradeCount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.SaveRun(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBacktestRepository_SaveRunError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("INSERT INTO backtest_runs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := repo.SaveRun(context.Background(), models.BacktestRunRecord{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save backtest run")
}

func TestBacktestRepository_ListRuns(t *testing.T) {
	repo, mock := newMockRepository(t)

	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "symbol", "strategy", "initial_capital", "final_equity", "total_return", "trade_count", "created_at",
	}).
		AddRow("run-2", "MSFT", "momentum", 100000.0, 98000.0, -0.02, 4, createdAt).
		AddRow("run-1", "AAPL", "sma_crossover", 100000.0, 103000.0, 0.03, 2, createdAt.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM backtest_runs").
		WithArgs(10).
		WillReturnRows(rows)

	records, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run-2", records[0].ID)
	assert.Equal(t, "MSFT", records[0].Symbol)
	assert.Equal(t, 4, records[0].TradeCount)
	assert.Equal(t, "sma_crossover", records[1].Strategy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBacktestRepository_ListRunsDefaultLimit(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT (.+) FROM backtest_runs").
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "symbol", "strategy", "initial_capital", "final_equity", "total_return", "trade_count", "created_at",
		}))

	records, err := repo.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBacktestRepository_UpsertRegistryEntry(t *testing.T) {
	repo, mock := newMockRepository(t)

	latest := 108.9
	entry := models.DataRegistryEntry{
		Identifier:  "AAPL",
		Source:      "Alpaca",
		Frequency:   "daily",
		LatestValue: &latest,
		Points:      120,
	}

	mock.ExpectExec("INSERT INTO data_registry").
		WithArgs(entry.Identifier, entry.Source, entry.Frequency, entry.LatestValue, entry.Points).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.UpsertRegistryEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBacktestRepository_ListRegistryEntries(t *testing.T) {
	repo, mock := newMockRepository(t)

	latest := 424.5
	updated := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "identifier", "source", "frequency", "last_updated", "latest_value", "points",
	}).
		AddRow(int64(1), "AAPL", "Alpaca", "daily", updated, &latest, 120).
		AddRow(int64(2), "SPY", "Alpaca", "daily", updated, (*float64)(nil), 0)

	mock.ExpectQuery("SELECT (.+) FROM data_registry").
		WillReturnRows(rows)

	entries, err := repo.ListRegistryEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "AAPL", entries[0].Identifier)
	require.NotNil(t, entries[0].LatestValue)
	assert.Equal(t, 424.5, *entries[0].LatestValue)
	assert.Nil(t, entries[1].LatestValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
