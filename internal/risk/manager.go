package risk

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"SwingLab/internal/model"
)

// Limits holds the risk parameters that gate and size trades.
type Limits struct {
	MaxPositionSizePct float64 // max fraction of capital per position
	MaxDailyLossPct    float64 // daily loss circuit breaker, vs initial capital
	MaxDrawdownPct     float64 // run-level drawdown circuit breaker
	StopLossPct        float64 // stop distance from entry
	RiskPerTradePct    float64 // fraction of capital risked per trade
}

// DefaultLimits mirrors the live-trading defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionSizePct: 0.20,
		MaxDailyLossPct:    0.05,
		MaxDrawdownPct:     0.15,
		StopLossPct:        0.05,
		RiskPerTradePct:    0.02,
	}
}

// PositionSize is a granted sizing request.
type PositionSize struct {
	Quantity         int
	EntryPrice       float64
	PositionValue    float64
	StopLossPrice    float64
	MaxLoss          float64
	CapitalAtRiskPct float64
}

// TradeResult is the realized outcome of one closed trade, the only input
// through which capital mutates.
type TradeResult struct {
	Ticker     string           `json:"ticker"`
	PnL        float64          `json:"pnl"` // net of transaction costs
	EntryValue float64          `json:"entry_value"`
	ExitValue  float64          `json:"exit_value"`
	Reason     model.ExitReason `json:"reason"`
	ClosedAt   time.Time        `json:"closed_at"`
}

// Status is a snapshot of the portfolio-level risk state.
type Status struct {
	InitialCapital      float64 `json:"initial_capital"`
	CurrentCapital      float64 `json:"current_capital"`
	PeakCapital         float64 `json:"peak_capital"`
	TotalPnL            float64 `json:"total_pnl"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	CurrentDrawdownPct  float64 `json:"current_drawdown_pct"`
	DailyPnL            float64 `json:"daily_pnl"`
	TotalTrades         int     `json:"total_trades"`
	MaxDrawdownExceeded bool    `json:"max_drawdown_exceeded"`
	DailyLossExceeded   bool    `json:"daily_loss_exceeded"`
}

// Manager tracks capital, peak capital and P&L, and gates and sizes new
// trades. All mutations are serialized through its mutex so the backtest
// engine, the live scheduler and the command poller can share one instance.
type Manager struct {
	mu     sync.Mutex
	limits Limits

	initialCapital float64
	currentCapital float64
	peakCapital    float64
	dailyPnL       float64
	totalPnL       float64
	trades         []TradeResult

	stateFile string // optional JSON persistence for live mode
}

// NewManager creates a Manager with a fresh capital state.
func NewManager(initialCapital float64, limits Limits) *Manager {
	return &Manager{
		limits:         limits,
		initialCapital: initialCapital,
		currentCapital: initialCapital,
		peakCapital:    initialCapital,
	}
}

// NewPersistentManager creates a Manager that restores its state from
// stateFile if present and saves after every mutation.
func NewPersistentManager(initialCapital float64, limits Limits, stateFile string) (*Manager, error) {
	state, err := LoadState(stateFile)
	if err != nil {
		return nil, fmt.Errorf("load risk state: %w", err)
	}
	if state.InitialCapital == 0 {
		state.InitialCapital = initialCapital
		state.CurrentCapital = initialCapital
		state.PeakCapital = initialCapital
	}
	m := &Manager{
		limits:         limits,
		initialCapital: state.InitialCapital,
		currentCapital: state.CurrentCapital,
		peakCapital:    state.PeakCapital,
		dailyPnL:       state.DailyPnL,
		totalPnL:       state.TotalPnL,
		trades:         state.Trades,
		stateFile:      stateFile,
	}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// drawdown computes the current peak-to-capital decline. Callers hold mu.
func (m *Manager) drawdown() float64 {
	if m.peakCapital == 0 {
		return 0
	}
	return (m.peakCapital - m.currentCapital) / m.peakCapital
}

// dailyLossExceeded reports whether today's realized loss has hit the daily
// circuit breaker. Callers hold mu.
func (m *Manager) dailyLossExceeded() bool {
	return m.dailyPnL < -m.limits.MaxDailyLossPct*m.initialCapital
}

// CheckTradeAllowed applies the drawdown and daily-loss gates without sizing.
func (m *Manager) CheckTradeAllowed() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dd := m.drawdown(); dd >= m.limits.MaxDrawdownPct {
		return false, fmt.Sprintf("max drawdown exceeded: %.2f%%", dd*100)
	}
	if m.dailyLossExceeded() {
		return false, fmt.Sprintf("daily loss limit exceeded: %.2f", m.dailyPnL)
	}
	return true, "OK"
}

// CalculatePositionSize sizes a new long entry. A nil result means the trade
// is rejected; the reason string says why.
func (m *Manager) CalculatePositionSize(entryPrice float64) (*PositionSize, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entryPrice <= 0 {
		return nil, "entry price must be positive"
	}
	if dd := m.drawdown(); dd >= m.limits.MaxDrawdownPct {
		return nil, fmt.Sprintf("max drawdown exceeded: %.2f%%", dd*100)
	}
	if m.dailyLossExceeded() {
		return nil, fmt.Sprintf("daily loss limit exceeded: %.2f", m.dailyPnL)
	}

	capitalAtRisk := m.currentCapital * m.limits.RiskPerTradePct
	stopDistance := entryPrice * m.limits.StopLossPct
	quantity := int(capitalAtRisk / stopDistance)

	// Clamp to the per-position capital cap.
	maxByCapital := int(m.currentCapital * m.limits.MaxPositionSizePct / entryPrice)
	if quantity > maxByCapital {
		quantity = maxByCapital
	}
	if quantity < 1 {
		return nil, "position too small for current capital"
	}

	positionValue := float64(quantity) * entryPrice
	stopLossPrice := entryPrice * (1 - m.limits.StopLossPct)
	maxLoss := math.Abs(positionValue - float64(quantity)*stopLossPrice)

	return &PositionSize{
		Quantity:         quantity,
		EntryPrice:       entryPrice,
		PositionValue:    positionValue,
		StopLossPrice:    stopLossPrice,
		MaxLoss:          maxLoss,
		CapitalAtRiskPct: maxLoss / m.currentCapital * 100,
	}, "OK"
}

// UpdatePosition applies a realized trade outcome. This is the single
// serialization point for all capital mutations.
func (m *Manager) UpdatePosition(tr TradeResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalPnL += tr.PnL
	m.dailyPnL += tr.PnL
	m.currentCapital += tr.PnL
	if m.currentCapital > m.peakCapital {
		m.peakCapital = m.currentCapital
	}
	m.trades = append(m.trades, tr)

	if err := m.save(); err != nil {
		log.Printf("[ERROR] save risk state: %v", err)
	}
}

// ResetDailyTracking zeroes the daily P&L. Call at the start of each trading
// day.
func (m *Manager) ResetDailyTracking() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dailyPnL = 0
	if err := m.save(); err != nil {
		log.Printf("[ERROR] save risk state: %v", err)
	}
}

// PortfolioStatus returns a snapshot of the risk state.
func (m *Manager) PortfolioStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	dd := m.drawdown()
	return Status{
		InitialCapital:      m.initialCapital,
		CurrentCapital:      m.currentCapital,
		PeakCapital:         m.peakCapital,
		TotalPnL:            m.totalPnL,
		TotalReturnPct:      (m.currentCapital - m.initialCapital) / m.initialCapital * 100,
		CurrentDrawdownPct:  dd * 100,
		DailyPnL:            m.dailyPnL,
		TotalTrades:         len(m.trades),
		MaxDrawdownExceeded: dd >= m.limits.MaxDrawdownPct,
		DailyLossExceeded:   m.dailyLossExceeded(),
	}
}

// CurrentCapital returns the current equity.
func (m *Manager) CurrentCapital() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentCapital
}

// Limits returns the configured risk parameters.
func (m *Manager) Limits() Limits { return m.limits }

// RecentTrades returns the n most recent trade results.
func (m *Manager) RecentTrades(n int) []TradeResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || len(m.trades) == 0 {
		return nil
	}
	if n > len(m.trades) {
		n = len(m.trades)
	}
	out := make([]TradeResult, n)
	copy(out, m.trades[len(m.trades)-n:])
	return out
}

func (m *Manager) save() error {
	if m.stateFile == "" {
		return nil
	}
	return SaveState(m.stateFile, &State{
		InitialCapital: m.initialCapital,
		CurrentCapital: m.currentCapital,
		PeakCapital:    m.peakCapital,
		DailyPnL:       m.dailyPnL,
		TotalPnL:       m.totalPnL,
		Trades:         m.trades,
	})
}
