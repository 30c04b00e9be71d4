// Package paper runs the live-mode variant of the engine: the same position
// and risk primitives, driven by on-demand price queries instead of a
// replayed bar slice. Every trade is virtual; no orders leave the process.
package paper

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"SwingLab/internal/collector"
	"SwingLab/internal/model"
	"SwingLab/internal/position"
	"SwingLab/internal/risk"
)

// Status classifies the outcome of one trade attempt.
type Status string

const (
	StatusExecuted Status = "executed"
	StatusRejected Status = "rejected"
	StatusNoAction Status = "no_action"
	StatusError    Status = "error"
)

// Actions recorded on executed results.
const (
	ActionOpenBuy   = "OPEN_BUY"
	ActionCloseLong = "CLOSE_LONG"
)

// Result is the typed outcome of one trade attempt or exit check. PnL fields
// are meaningful only when Action is CLOSE_LONG.
type Result struct {
	Status     Status           `json:"status"`
	Ticker     string           `json:"ticker"`
	PositionID string           `json:"position_id,omitempty"`
	Action     string           `json:"action,omitempty"`
	Price      float64          `json:"price,omitempty"`
	Quantity   int              `json:"quantity,omitempty"`
	Value      float64          `json:"value,omitempty"`
	PnL        float64          `json:"pnl,omitempty"`
	PnLPct     float64          `json:"pnl_pct,omitempty"`
	ExitReason model.ExitReason `json:"exit_reason,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	At         time.Time        `json:"at"`
}

// OpenPosition is a read-only view of one live position.
type OpenPosition struct {
	ID         string    `json:"id"`
	Ticker     string    `json:"ticker"`
	EntryDate  time.Time `json:"entry_date"`
	EntryPrice float64   `json:"entry_price"`
	Quantity   int       `json:"quantity"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
}

// PositionMark is an OpenPosition marked to a live price.
type PositionMark struct {
	OpenPosition
	CurrentPrice     float64 `json:"current_price"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
}

// PortfolioStatus is the live portfolio view: the risk state plus the open
// book marked to market.
type PortfolioStatus struct {
	risk.Status
	ActivePositions int            `json:"active_positions"`
	UnrealizedPnL   float64        `json:"unrealized_pnl"`
	Positions       []PositionMark `json:"positions"`
}

// Config parameterizes a System.
type Config struct {
	Exit         position.ExitRules
	CostRate     float64       // per-side transaction cost fraction
	FetchTimeout time.Duration // applied to each live price lookup
}

// DefaultConfig matches the backtest defaults with a 10s fetch timeout.
func DefaultConfig() Config {
	return Config{
		Exit:         position.DefaultExitRules(),
		CostRate:     0.002,
		FetchTimeout: 10 * time.Second,
	}
}

type openPosition struct {
	id  string
	pos *position.Position
}

// System holds the live book. All mutations are serialized through its mutex
// so the cron scheduler and the command poller can share one instance.
type System struct {
	mu      sync.Mutex
	cfg     Config
	fetcher collector.Fetcher
	rm      *risk.Manager

	positions map[string]*openPosition
	history   []Result
}

// NewSystem creates a System around a fetcher and a shared risk manager.
func NewSystem(cfg Config, fetcher collector.Fetcher, rm *risk.Manager) *System {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	if cfg.Exit == (position.ExitRules{}) {
		cfg.Exit = position.DefaultExitRules()
	}
	return &System{
		cfg:       cfg,
		fetcher:   fetcher,
		rm:        rm,
		positions: make(map[string]*openPosition),
	}
}

// currentPrice fetches the latest price under the per-fetch timeout.
func (s *System) currentPrice(ctx context.Context, ticker string) (float64, error) {
	fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	price, err := s.fetcher.FetchCurrentPrice(fctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", model.ErrPriceFetch, ticker, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: %s: non-positive price %.4f", model.ErrPriceFetch, ticker, price)
	}
	return price, nil
}

// ExecuteTrade attempts one virtual trade for a signal. The outcome is always
// a typed Result; rejections carry a reason and never an error.
func (s *System) ExecuteTrade(ctx context.Context, ticker string, signal model.Label) Result {
	now := time.Now()

	if allowed, reason := s.rm.CheckTradeAllowed(); !allowed {
		return s.record(Result{Status: StatusRejected, Ticker: ticker, Reason: reason, At: now})
	}

	price, err := s.currentPrice(ctx, ticker)
	if err != nil {
		return s.record(Result{Status: StatusError, Ticker: ticker, Reason: err.Error(), At: now})
	}

	switch signal {
	case model.SignalHold:
		return s.record(Result{Status: StatusNoAction, Ticker: ticker, Price: price, Reason: "HOLD signal", At: now})
	case model.SignalBuy:
		return s.openLong(ticker, price, now)
	case model.SignalSell:
		return s.closeLong(ticker, price, now, model.ExitSignalSell)
	default:
		return s.record(Result{Status: StatusError, Ticker: ticker, Reason: fmt.Sprintf("unknown signal %q", signal), At: now})
	}
}

func (s *System) openLong(ticker string, price float64, now time.Time) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.positions[ticker]; exists {
		return s.recordLocked(Result{Status: StatusRejected, Ticker: ticker, Price: price, Reason: "position already open", At: now})
	}

	size, reason := s.rm.CalculatePositionSize(price)
	if size == nil {
		return s.recordLocked(Result{Status: StatusRejected, Ticker: ticker, Price: price, Reason: reason, At: now})
	}

	op := &openPosition{
		id:  uuid.NewString(),
		pos: position.New(ticker, now, price, size.Quantity, s.cfg.Exit),
	}
	s.positions[ticker] = op

	log.Printf("[INFO] paper: opened %s qty=%d @ %.2f stop=%.2f target=%.2f",
		ticker, size.Quantity, price, op.pos.StopLoss, op.pos.TakeProfit)

	return s.recordLocked(Result{
		Status:     StatusExecuted,
		Ticker:     ticker,
		PositionID: op.id,
		Action:     ActionOpenBuy,
		Price:      price,
		Quantity:   size.Quantity,
		Value:      size.PositionValue,
		At:         now,
	})
}

func (s *System) closeLong(ticker string, price float64, now time.Time, reason model.ExitReason) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, exists := s.positions[ticker]
	if !exists {
		return s.recordLocked(Result{Status: StatusRejected, Ticker: ticker, Price: price, Reason: "no open position", At: now})
	}
	delete(s.positions, ticker)

	op.pos.Close(now, price, reason)
	return s.recordLocked(s.settleLocked(op, now))
}

// settleLocked books a closed position into the risk manager and builds the
// executed Result. Callers hold mu and have already removed the position.
func (s *System) settleLocked(op *openPosition, now time.Time) Result {
	pos := op.pos
	entryValue := pos.MarketValue(pos.EntryPrice)
	exitValue := pos.MarketValue(pos.ExitPrice)
	costs := (entryValue + exitValue) * s.cfg.CostRate
	netPnL := pos.PnL - costs

	s.rm.UpdatePosition(risk.TradeResult{
		Ticker:     pos.Ticker,
		PnL:        netPnL,
		EntryValue: entryValue,
		ExitValue:  exitValue,
		Reason:     pos.ExitReason,
		ClosedAt:   pos.ExitDate,
	})

	log.Printf("[INFO] paper: closed %s @ %.2f reason=%s pnl=%.2f", pos.Ticker, pos.ExitPrice, pos.ExitReason, netPnL)

	return Result{
		Status:     StatusExecuted,
		Ticker:     pos.Ticker,
		PositionID: op.id,
		Action:     ActionCloseLong,
		Price:      pos.ExitPrice,
		Quantity:   pos.Quantity,
		Value:      exitValue,
		PnL:        netPnL,
		PnLPct:     pos.PnLPct - 2*s.cfg.CostRate*100,
		ExitReason: pos.ExitReason,
		At:         now,
	}
}

// CheckExits fetches a live price for every open position and applies the
// standard exit conditions. A failed fetch skips that position until the next
// cycle. Returned results cover only positions that closed.
func (s *System) CheckExits(ctx context.Context) []Result {
	var closed []Result
	for _, ticker := range s.openTickers() {
		price, err := s.currentPrice(ctx, ticker)
		if err != nil {
			log.Printf("[WARN] paper: %v, skipping this cycle", err)
			continue
		}

		s.mu.Lock()
		op, exists := s.positions[ticker]
		if !exists {
			s.mu.Unlock()
			continue
		}
		now := time.Now()
		if _, fired := op.pos.Step(now, price); fired {
			delete(s.positions, ticker)
			closed = append(closed, s.recordLocked(s.settleLocked(op, now)))
		}
		s.mu.Unlock()
	}
	return closed
}

// RunCycle performs one full live cycle: exit checks for the open book, then
// one entry evaluation per watched ticker. Cancellation is honored between
// tickers; a single ticker's fetch failure never aborts the cycle.
func (s *System) RunCycle(ctx context.Context, signals map[string]model.Label) []Result {
	results := s.CheckExits(ctx)

	tickers := make([]string, 0, len(signals))
	for t := range signals {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		if ctx.Err() != nil {
			log.Printf("[WARN] paper: cycle cancelled after %d results", len(results))
			break
		}
		results = append(results, s.ExecuteTrade(ctx, ticker, signals[ticker]))
	}
	return results
}

// openTickers snapshots the open book's tickers in a stable order.
func (s *System) openTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickers := make([]string, 0, len(s.positions))
	for t := range s.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// OpenPositions returns a read-only snapshot of the live book.
func (s *System) OpenPositions() []OpenPosition {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]OpenPosition, 0, len(s.positions))
	for _, op := range s.positions {
		out = append(out, OpenPosition{
			ID:         op.id,
			Ticker:     op.pos.Ticker,
			EntryDate:  op.pos.EntryDate,
			EntryPrice: op.pos.EntryPrice,
			Quantity:   op.pos.Quantity,
			StopLoss:   op.pos.StopLoss,
			TakeProfit: op.pos.TakeProfit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Status returns the risk state plus the open book marked to live prices.
// Positions whose price fetch fails are listed unmarked (CurrentPrice 0) and
// excluded from the unrealized total.
func (s *System) Status(ctx context.Context) PortfolioStatus {
	open := s.OpenPositions()

	status := PortfolioStatus{
		Status:          s.rm.PortfolioStatus(),
		ActivePositions: len(open),
	}
	for _, p := range open {
		mark := PositionMark{OpenPosition: p}
		if price, err := s.currentPrice(ctx, p.Ticker); err == nil {
			entryValue := float64(p.Quantity) * p.EntryPrice
			mark.CurrentPrice = price
			mark.UnrealizedPnL = float64(p.Quantity)*price - entryValue
			mark.UnrealizedPnLPct = mark.UnrealizedPnL / entryValue * 100
			status.UnrealizedPnL += mark.UnrealizedPnL
		}
		status.Positions = append(status.Positions, mark)
	}
	return status
}

// ResetDaily zeroes the risk manager's daily P&L tracking. Call at the start
// of each trading day.
func (s *System) ResetDaily() {
	s.rm.ResetDailyTracking()
}

// History returns the n most recent results, oldest first.
func (s *System) History(n int) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || len(s.history) == 0 {
		return nil
	}
	if n > len(s.history) {
		n = len(s.history)
	}
	out := make([]Result, n)
	copy(out, s.history[len(s.history)-n:])
	return out
}

func (s *System) record(r Result) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked(r)
}

func (s *System) recordLocked(r Result) Result {
	s.history = append(s.history, r)
	return r
}
