// Package engine replays labeled bar series through the position lifecycle
// and risk gates to produce trade records, a capital curve, and diagnostics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"SwingLab/internal/classifier"
	"SwingLab/internal/collector"
	"SwingLab/internal/model"
	"SwingLab/internal/position"
	"SwingLab/internal/risk"
)

// Config selects the engine's behaviour: exit-rule set, cost model, sizing
// rule. One configurable engine replaces variant-specific code paths.
type Config struct {
	InitialCapital  float64
	CostRate        float64 // per-side transaction cost, fraction of notional
	TrainSplit      float64 // leading fraction of bars used for training
	MinHistoryBars  int     // instruments with fewer bars are skipped
	HistoryDays     int     // bars requested from the data provider
	RSIEntryCeiling float64 // entries blocked at or above this RSI

	Limits risk.Limits
	Exit   position.ExitRules
}

// DefaultConfig returns the standard 5-year swing-trade configuration.
func DefaultConfig() Config {
	return Config{
		InitialCapital:  100000,
		CostRate:        0.002,
		TrainSplit:      0.8,
		MinHistoryBars:  40,
		HistoryDays:     1250,
		RSIEntryCeiling: 70,
		Limits:          risk.DefaultLimits(),
		Exit:            position.DefaultExitRules(),
	}
}

// Result is the complete output of a batch run.
type Result struct {
	PortfolioHistory []model.PortfolioSnapshot
	Trades           []model.TradeRecord
	Diagnostics      *model.Diagnostics
}

// Engine orchestrates per-instrument replays. Instruments are processed
// sequentially: capital compounds across trades and across instruments, so
// the order of capital mutations is part of the result.
type Engine struct {
	cfg       Config
	collector *collector.Collector
	trainer   classifier.Trainer
	cache     *SeriesCache // optional, supplied by the caller
}

// New creates an Engine. cache may be nil to disable memoization.
func New(cfg Config, col *collector.Collector, trainer classifier.Trainer, cache *SeriesCache) *Engine {
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = 100000
	}
	if cfg.TrainSplit <= 0 || cfg.TrainSplit >= 1 {
		cfg.TrainSplit = 0.8
	}
	if cfg.MinHistoryBars <= 0 {
		cfg.MinHistoryBars = 40
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 1250
	}
	if cfg.RSIEntryCeiling <= 0 {
		cfg.RSIEntryCeiling = 70
	}
	if trainer == nil {
		trainer = classifier.CentroidTrainer{}
	}
	return &Engine{cfg: cfg, collector: col, trainer: trainer, cache: cache}
}

// Run backtests every ticker in order. Per-ticker failures are recorded as
// skip diagnostics and never abort the batch; only an empty ticker list is a
// caller error.
func (e *Engine) Run(ctx context.Context, tickers []string) (*Result, error) {
	if len(tickers) == 0 {
		return nil, errors.New("no tickers provided")
	}

	res := &Result{Diagnostics: model.NewDiagnostics()}
	rm := risk.NewManager(e.cfg.InitialCapital, e.cfg.Limits)
	cash := e.cfg.InitialCapital

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := e.loadSeries(ctx, ticker)
		if err != nil {
			e.skip(res, ticker, err.Error())
			continue
		}
		if err := e.runTicker(series, rm, &cash, res); err != nil {
			e.skip(res, ticker, err.Error())
		}
	}
	return res, nil
}

func (e *Engine) loadSeries(ctx context.Context, ticker string) (*model.BarSeries, error) {
	if e.cache != nil {
		if series, ok := e.cache.Get(ticker, e.cfg.HistoryDays); ok {
			return series, nil
		}
	}
	series, err := e.collector.Collect(ctx, ticker, e.cfg.HistoryDays)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Put(ticker, e.cfg.HistoryDays, series)
	}
	return series, nil
}

func (e *Engine) skip(res *Result, ticker, reason string) {
	log.Printf("[WARN] skipping %s: %s", ticker, reason)
	res.Diagnostics.Skipped = append(res.Diagnostics.Skipped, model.SkipNote{Ticker: ticker, Reason: reason})
}

// runTicker replays one instrument's test partition day by day.
func (e *Engine) runTicker(series *model.BarSeries, rm *risk.Manager, cash *float64, res *Result) error {
	bars := series.Bars
	if len(bars) < e.cfg.MinHistoryBars {
		return fmt.Errorf("%d bars, need %d: %w", len(bars), e.cfg.MinHistoryBars, model.ErrInsufficientHistory)
	}

	// Chronological split; the classifier never sees test rows.
	split := int(float64(len(bars)) * e.cfg.TrainSplit)
	train, test := bars[:split], bars[split:]

	mdl, err := e.trainer.Train(train)
	if err != nil {
		return err
	}

	preds := make([]model.Label, len(test))
	for i := range test {
		preds[i] = mdl.Predict(test[i].Features())
		res.Diagnostics.PredictedSignalCounts[preds[i]]++
	}
	res.Diagnostics.TestSliceLength += len(test)

	// The engine exclusively owns every position it opens.
	open := make(map[string]*position.Position, 1)

	for i := range test {
		bar := &test[i]
		rm.ResetDailyTracking()

		// Exits run before entries, one position per ticker.
		if pos, ok := open[series.Ticker]; ok {
			if _, closed := pos.Step(bar.Date, bar.Close); closed {
				e.settle(pos, rm, cash, res)
				delete(open, series.Ticker)
			}
		}

		// New entry on a BUY prediction when filters and sizing allow.
		if preds[i] == model.SignalBuy {
			if _, exists := open[series.Ticker]; !exists && e.entryAllowed(bar) {
				if pos := e.tryOpen(series.Ticker, bar, rm, cash); pos != nil {
					open[series.Ticker] = pos
				}
			}
		}

		// Daily snapshot: cash plus mark-to-market of open positions.
		value := *cash
		for _, pos := range open {
			value += pos.MarketValue(bar.Close)
		}
		res.PortfolioHistory = append(res.PortfolioHistory, model.PortfolioSnapshot{
			Date:           bar.Date,
			Capital:        *cash,
			PortfolioValue: value,
		})
	}

	// Liquidate whatever is still open at the last bar so capital is never
	// stranded in a dead replay.
	if len(test) > 0 {
		last := &test[len(test)-1]
		for _, pos := range open {
			pos.Close(last.Date, last.Close, model.ExitEndOfData)
			e.settle(pos, rm, cash, res)
			delete(open, pos.Ticker)
		}
	}
	return nil
}

// entryAllowed applies the entry quality filters: not overbought, and
// trading above the 10-day trend average.
func (e *Engine) entryAllowed(bar *model.Bar) bool {
	if bar.RSI >= e.cfg.RSIEntryCeiling {
		return false
	}
	if bar.Close <= bar.EMA10 {
		return false
	}
	return true
}

// tryOpen requests a sized entry from the risk manager and debits cash.
// A rejection is silent by design: blocked entries are normal operation.
func (e *Engine) tryOpen(ticker string, bar *model.Bar, rm *risk.Manager, cash *float64) *position.Position {
	size, _ := rm.CalculatePositionSize(bar.Close)
	if size == nil {
		return nil
	}
	entryCost := size.PositionValue * (1 + e.cfg.CostRate)
	if entryCost > *cash {
		return nil
	}
	*cash -= entryCost
	return position.New(ticker, bar.Date, bar.Close, size.Quantity, e.cfg.Exit)
}

// settle books a closed position: cash receives the net proceeds, the risk
// manager absorbs the realized P&L, and the trade record is appended.
func (e *Engine) settle(pos *position.Position, rm *risk.Manager, cash *float64, res *Result) {
	proceeds := pos.MarketValue(pos.ExitPrice) * (1 - e.cfg.CostRate)
	*cash += proceeds

	entryValue := pos.MarketValue(pos.EntryPrice)
	exitValue := pos.MarketValue(pos.ExitPrice)
	costs := (entryValue + exitValue) * e.cfg.CostRate
	netPnL := pos.PnL - costs

	rm.UpdatePosition(risk.TradeResult{
		Ticker:     pos.Ticker,
		PnL:        netPnL,
		EntryValue: entryValue,
		ExitValue:  exitValue,
		Reason:     pos.ExitReason,
		ClosedAt:   pos.ExitDate,
	})

	netReturnPct := pos.PnLPct - 2*e.cfg.CostRate*100
	res.Trades = append(res.Trades, model.TradeRecord{
		Stock:      pos.Ticker,
		Date:       pos.EntryDate,
		Signal:     model.SignalBuy,
		Entry:      round2(pos.EntryPrice),
		Exit:       round2(pos.ExitPrice),
		ReturnPct:  round2(netReturnPct),
		ExitDate:   pos.ExitDate,
		ExitReason: pos.ExitReason,
	})
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
