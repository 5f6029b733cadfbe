package backtest

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

const dateLayout = "2006-01-02"

// BarProvider supplies an ordered-by-timestamp sequence of daily price bars
// for a symbol and date range.
type BarProvider interface {
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)
}

// ledger is the portfolio state of one run: cash, position size and the most
// recent entry price. It is mutated exclusively by fill handling and owned by
// a single Run invocation.
type ledger struct {
	cash       float64
	position   int
	entryPrice float64
}

// applyBuyFill debits cash and credits the position. A fill whose cost
// exceeds available cash is dropped silently; that is policy, not an error.
func (l *ledger) applyBuyFill(ts time.Time, quantity int, price float64) (models.Trade, bool) {
	cost := price * float64(quantity)
	if cost > l.cash {
		return models.Trade{}, false
	}
	l.cash -= cost
	l.position += quantity
	l.entryPrice = price
	return models.Trade{
		Timestamp: ts,
		Side:      string(SignalBuy),
		Quantity:  quantity,
		Price:     price,
		PnL:       0,
	}, true
}

// applySellFill credits cash and debits the position, realizing PnL against
// the entry price. A fill exceeding the held position is dropped silently.
func (l *ledger) applySellFill(ts time.Time, quantity int, price float64) (models.Trade, bool) {
	if l.position < quantity {
		return models.Trade{}, false
	}
	l.cash += price * float64(quantity)
	l.position -= quantity
	return models.Trade{
		Timestamp: ts,
		Side:      string(SignalSell),
		Quantity:  quantity,
		Price:     price,
		PnL:       (price - l.entryPrice) * float64(quantity),
	}, true
}

// equity marks the portfolio to market at the given closing price.
func (l *ledger) equity(closePrice float64) float64 {
	return l.cash + float64(l.position)*closePrice
}

// Runner replays historical bars through a strategy, applying the resulting
// orders under a close-price execution model, and assembles the final report.
type Runner struct {
	provider BarProvider
	logger   *logrus.Logger
	params   TearSheetParams
}

// NewRunner creates a Runner backed by the given bar provider.
func NewRunner(provider BarProvider, logger *logrus.Logger, params TearSheetParams) *Runner {
	return &Runner{
		provider: provider,
		logger:   logger,
		params:   params,
	}
}

// Run executes one backtest. Strategy construction and data availability are
// validated before any portfolio state is mutated, so a failed run never
// yields a partial report. Each call owns its state; concurrent Run calls do
// not share anything mutable.
func (r *Runner) Run(ctx context.Context, req models.BacktestRequest) (*models.BacktestResponse, error) {
	start, err := time.Parse(dateLayout, req.Start)
	if err != nil {
		return nil, utils.NewConfigurationErrorf("invalid start date %q: expected YYYY-MM-DD", req.Start)
	}
	end, err := time.Parse(dateLayout, req.End)
	if err != nil {
		return nil, utils.NewConfigurationErrorf("invalid end date %q: expected YYYY-MM-DD", req.End)
	}
	if !end.After(start) {
		return nil, utils.NewConfigurationError("end date must be after start date")
	}
	if req.InitialCapital == 0 {
		req.InitialCapital = 100000
	}
	if req.TradeSize == 0 {
		req.TradeSize = 100
	}
	if req.InitialCapital < 0 {
		return nil, utils.NewConfigurationError("initial_capital must be positive")
	}
	if req.TradeSize < 1 {
		return nil, utils.NewConfigurationError("trade_size must be at least 1")
	}

	strategy, err := NewStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	bars, err := r.provider.DailyBars(ctx, req.Symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, utils.NewDataUnavailableError("no market data available for requested range")
	}

	r.logger.WithFields(logrus.Fields{
		"symbol":   req.Symbol,
		"strategy": strategy.Name(),
		"bars":     len(bars),
	}).Info("Starting backtest run")

	series := NewSeries(bars)
	strategy.Annotate(series)

	book := ledger{cash: req.InitialCapital}
	trades := make([]models.Trade, 0)
	equityCurve := make([]models.EquityPoint, 0, len(bars))

	for i, bar := range bars {
		queue := eventQueue{}
		queue.push(barEvent(bar))

		if kind, ok := strategy.GenerateSignal(i, series); ok {
			queue.push(signalEvent(bar.Timestamp, kind))
		}

		for !queue.empty() {
			e, _ := queue.pop()
			switch e.kind {
			case eventBar:
				// Seed event; its effects are the signal already enqueued
				// and the equity sample taken after the queue drains.
			case eventSignal:
				if e.signal == SignalBuy && book.position == 0 {
					queue.push(orderEvent(e.timestamp, SignalBuy, req.TradeSize))
				} else if e.signal == SignalSell && book.position > 0 {
					// Sell signals always liquidate the full position.
					queue.push(orderEvent(e.timestamp, SignalSell, book.position))
				}
			case eventOrder:
				queue.push(fillEvent(e.timestamp, e.side, e.quantity, bar.Close))
			case eventFill:
				var trade models.Trade
				var applied bool
				if e.side == SignalBuy {
					trade, applied = book.applyBuyFill(e.timestamp, e.quantity, e.price)
				} else {
					trade, applied = book.applySellFill(e.timestamp, e.quantity, e.price)
				}
				if applied {
					trades = append(trades, trade)
				}
			}
		}

		equityCurve = append(equityCurve, models.EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    book.equity(bar.Close),
		})
	}

	// Force liquidation of any open position at the last close so the
	// reported final equity reflects an all-cash state.
	if book.position > 0 {
		lastBar := bars[len(bars)-1]
		quantity := book.position
		if trade, applied := book.applySellFill(lastBar.Timestamp, quantity, lastBar.Close); applied {
			trades = append(trades, trade)
		}
		equityCurve[len(equityCurve)-1] = models.EquityPoint{
			Timestamp: equityCurve[len(equityCurve)-1].Timestamp,
			Equity:    book.cash,
		}
	}

	tearSheet := BuildTearSheet(equityCurve, trades, r.params)

	finalEquity := req.InitialCapital
	if len(equityCurve) > 0 {
		finalEquity = equityCurve[len(equityCurve)-1].Equity
	}

	r.logger.WithFields(logrus.Fields{
		"symbol":       req.Symbol,
		"final_equity": finalEquity,
		"trades":       len(trades),
	}).Info("Backtest run finished")

	return &models.BacktestResponse{
		Symbol:         strings.ToUpper(req.Symbol),
		Strategy:       strategy.Name(),
		InitialCapital: req.InitialCapital,
		FinalEquity:    finalEquity,
		TearSheet:      tearSheet,
		EquityCurve:    equityCurve,
		Trades:         trades,
	}, nil
}
