package backtest

import (
	"math"

	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/utils"
)

// Strategy names accepted by NewStrategy.
const (
	StrategySMACrossover  = "sma_crossover"
	StrategyMomentum      = "momentum"
	StrategyMeanReversion = "mean_reversion"
)

// Strategy generates directional signals from an annotated bar series. A
// strategy holds only its configuration; it carries no mutable state between
// calls.
type Strategy interface {
	// Name returns the configured strategy name.
	Name() string
	// Annotate attaches the indicator columns the strategy reads.
	Annotate(s *Series)
	// GenerateSignal inspects the series at index i and returns a signal, or
	// false when no signal fires.
	GenerateSignal(i int, s *Series) (SignalKind, bool)
}

// NewStrategy builds the strategy selected by the configuration. Unknown
// names and invalid window parameters are configuration errors.
func NewStrategy(cfg models.StrategyConfig) (Strategy, error) {
	name := cfg.Name
	if name == "" {
		name = StrategySMACrossover
	}
	switch name {
	case StrategySMACrossover:
		return NewSMACrossoverStrategy(cfg.FastWindow, cfg.SlowWindow)
	case StrategyMomentum:
		return NewMomentumStrategy(cfg.FastWindow)
	case StrategyMeanReversion:
		return NewMeanReversionStrategy(cfg.SlowWindow)
	default:
		return nil, utils.NewConfigurationErrorf("unknown strategy %q", name)
	}
}

// SMACrossoverStrategy signals on crossings of a fast simple moving average
// over a slow one.
type SMACrossoverStrategy struct {
	fastWindow int
	slowWindow int
}

// NewSMACrossoverStrategy validates the window pair and returns the strategy.
func NewSMACrossoverStrategy(fastWindow, slowWindow int) (*SMACrossoverStrategy, error) {
	if fastWindow == 0 {
		fastWindow = 20
	}
	if slowWindow == 0 {
		slowWindow = 50
	}
	if fastWindow >= slowWindow {
		return nil, utils.NewConfigurationError("fast_window must be smaller than slow_window")
	}
	return &SMACrossoverStrategy{fastWindow: fastWindow, slowWindow: slowWindow}, nil
}

func (st *SMACrossoverStrategy) Name() string { return StrategySMACrossover }

// Annotate attaches the fast and slow SMA columns of the closing price.
func (st *SMACrossoverStrategy) Annotate(s *Series) {
	closes := s.Closes()
	s.SetColumn("sma_fast", smaColumn(closes, st.fastWindow))
	s.SetColumn("sma_slow", smaColumn(closes, st.slowWindow))
}

// GenerateSignal fires BUY on an upward cross of the fast SMA over the slow
// and SELL on a downward cross. A tie at the previous bar counts as "not yet
// crossed", so only a genuine cross triggers.
func (st *SMACrossoverStrategy) GenerateSignal(i int, s *Series) (SignalKind, bool) {
	if i < st.slowWindow {
		return "", false
	}

	currentFast, ok1 := s.Value("sma_fast", i)
	currentSlow, ok2 := s.Value("sma_slow", i)
	previousFast, ok3 := s.Value("sma_fast", i-1)
	previousSlow, ok4 := s.Value("sma_slow", i-1)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return "", false
	}

	if previousFast <= previousSlow && currentFast > currentSlow {
		return SignalBuy, true
	}
	if previousFast >= previousSlow && currentFast < currentSlow {
		return SignalSell, true
	}
	return "", false
}

// MomentumStrategy signals on the rate of change of the closing price over a
// lookback window crossing zero.
type MomentumStrategy struct {
	lookback int
}

// NewMomentumStrategy validates the lookback and returns the strategy.
func NewMomentumStrategy(lookback int) (*MomentumStrategy, error) {
	if lookback == 0 {
		lookback = 20
	}
	if lookback < 2 {
		return nil, utils.NewConfigurationError("momentum lookback must be at least 2 bars")
	}
	return &MomentumStrategy{lookback: lookback}, nil
}

func (st *MomentumStrategy) Name() string { return StrategyMomentum }

// Annotate attaches the rate-of-change column.
func (st *MomentumStrategy) Annotate(s *Series) {
	closes := s.Closes()
	roc := make([]float64, len(closes))
	for i := range roc {
		if i < st.lookback || closes[i-st.lookback] == 0 {
			roc[i] = nan()
			continue
		}
		roc[i] = closes[i]/closes[i-st.lookback] - 1
	}
	s.SetColumn("roc", roc)
}

// GenerateSignal fires BUY when momentum turns positive and SELL when it
// turns negative.
func (st *MomentumStrategy) GenerateSignal(i int, s *Series) (SignalKind, bool) {
	if i < st.lookback+1 {
		return "", false
	}
	current, ok1 := s.Value("roc", i)
	previous, ok2 := s.Value("roc", i-1)
	if !ok1 || !ok2 {
		return "", false
	}
	if previous <= 0 && current > 0 {
		return SignalBuy, true
	}
	if previous >= 0 && current < 0 {
		return SignalSell, true
	}
	return "", false
}

// MeanReversionStrategy signals on the closing price's z-score against a
// rolling mean/stddev band: BUY when the price dips below the lower band,
// SELL when it reverts back to the mean.
type MeanReversionStrategy struct {
	window int
	entryZ float64
}

// NewMeanReversionStrategy validates the window and returns the strategy.
func NewMeanReversionStrategy(window int) (*MeanReversionStrategy, error) {
	if window == 0 {
		window = 50
	}
	if window < 3 {
		return nil, utils.NewConfigurationError("mean reversion window must be at least 3 bars")
	}
	return &MeanReversionStrategy{window: window, entryZ: 1.0}, nil
}

func (st *MeanReversionStrategy) Name() string { return StrategyMeanReversion }

// Annotate attaches the z-score column of the close against the rolling band.
func (st *MeanReversionStrategy) Annotate(s *Series) {
	closes := s.Closes()
	mean := smaColumn(closes, st.window)
	std := rollingStd(closes, st.window)
	zscore := make([]float64, len(closes))
	for i := range zscore {
		if math.IsNaN(std[i]) || math.IsNaN(mean[i]) || std[i] == 0 {
			zscore[i] = nan()
			continue
		}
		zscore[i] = (closes[i] - mean[i]) / std[i]
	}
	s.SetColumn("zscore", zscore)
}

// GenerateSignal fires BUY when the z-score crosses below the entry band and
// SELL when it crosses back above zero.
func (st *MeanReversionStrategy) GenerateSignal(i int, s *Series) (SignalKind, bool) {
	if i < st.window {
		return "", false
	}
	current, ok1 := s.Value("zscore", i)
	previous, ok2 := s.Value("zscore", i-1)
	if !ok1 || !ok2 {
		return "", false
	}
	if previous >= -st.entryZ && current < -st.entryZ {
		return SignalBuy, true
	}
	if previous <= 0 && current > 0 {
		return SignalSell, true
	}
	return "", false
}
