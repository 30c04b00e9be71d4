package recorder

import (
	"time"

	"SwingLab/internal/model"
)

// CycleEvent records one live-cycle trade attempt outcome.
type CycleEvent struct {
	Ticker     string
	Status     string // executed, rejected, no_action, error
	Action     string // OPEN_BUY, CLOSE_LONG
	Price      float64
	Quantity   int
	PnL        float64
	ExitReason string
	Reason     string
	At         time.Time
}

// RunSummary aggregates one completed backtest run.
type RunSummary struct {
	Tickers        int
	Trades         int
	FinalCapital   float64
	TotalReturnPct float64
	CAGRPct        float64
	SharpeRatio    float64
	MaxDrawdownPct float64
	WinRatePct     float64
}

// Recorder persists trades, daily snapshots and run history for analysis.
type Recorder interface {
	RecordTrade(tr *model.TradeRecord) error
	RecordSnapshot(snap *model.PortfolioSnapshot) error
	RecordCycleEvent(evt *CycleEvent) error
	RecordRunSummary(sum *RunSummary) error
	Close() error
}
