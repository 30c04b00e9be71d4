// Package position implements the lifecycle of a single open trade: trailing
// stop, take-profit, and the fixed-priority exit evaluation shared by the
// backtest engine and the paper trader.
package position

import (
	"time"

	"SwingLab/internal/model"
)

// ExitRules parameterizes the exit condition set.
type ExitRules struct {
	TakeProfitPct  float64 // fixed target above entry
	StopLossPct    float64 // initial stop distance below entry
	TrailStop      bool    // enable the trailing stop ratchet
	TrailPct       float64 // trail distance below peak
	MinHoldDays    int     // early-profit exits unlock after this many days
	EarlyProfitPct float64 // unrealized profit (percent) for an early exit
	MaxHoldDays    int     // unconditional time-based exit
}

// DefaultExitRules matches the 10–20 day swing-trade window.
func DefaultExitRules() ExitRules {
	return ExitRules{
		TakeProfitPct:  0.10,
		StopLossPct:    0.07,
		TrailStop:      true,
		TrailPct:       0.04,
		MinHoldDays:    10,
		EarlyProfitPct: 2.0,
		MaxHoldDays:    20,
	}
}

// Position is one open trade's mutable state. It is owned exclusively by the
// engine that created it and becomes immutable once closed.
type Position struct {
	Ticker          string
	EntryDate       time.Time
	EntryPrice      float64
	Quantity        int
	InitialStopLoss float64
	StopLoss        float64 // non-decreasing once trailing is engaged
	TakeProfit      float64 // fixed at entry
	PeakPrice       float64 // ratchet max of prices seen since entry
	Rules           ExitRules

	Status     model.PositionStatus
	ExitDate   time.Time
	ExitPrice  float64
	ExitReason model.ExitReason
	PnL        float64
	PnLPct     float64
}

// New opens a position at the given entry.
func New(ticker string, entryDate time.Time, entryPrice float64, quantity int, rules ExitRules) *Position {
	stop := entryPrice * (1 - rules.StopLossPct)
	return &Position{
		Ticker:          ticker,
		EntryDate:       entryDate,
		EntryPrice:      entryPrice,
		Quantity:        quantity,
		InitialStopLoss: stop,
		StopLoss:        stop,
		TakeProfit:      entryPrice * (1 + rules.TakeProfitPct),
		PeakPrice:       entryPrice,
		Rules:           rules,
		Status:          model.StatusOpen,
	}
}

// UpdateTrailingStop ratchets the peak price and, if trailing is enabled,
// raises the stop to TrailPct below the peak. The stop only ever goes up.
func (p *Position) UpdateTrailingStop(price float64) {
	if price > p.PeakPrice {
		p.PeakPrice = price
		if p.Rules.TrailStop {
			newStop := p.PeakPrice * (1 - p.Rules.TrailPct)
			if newStop > p.StopLoss {
				p.StopLoss = newStop
			}
		}
	}
}

// DaysHeld returns the calendar days between entry and asOf.
func (p *Position) DaysHeld(asOf time.Time) int {
	return int(asOf.Sub(p.EntryDate).Hours() / 24)
}

// ProfitPct returns the unrealized profit percentage at the given price.
func (p *Position) ProfitPct(price float64) float64 {
	return (price - p.EntryPrice) / p.EntryPrice * 100
}

// evaluateExit checks the exit conditions in fixed priority order. Only the
// first matching condition applies.
func (p *Position) evaluateExit(date time.Time, price float64) (model.ExitReason, bool) {
	if price >= p.TakeProfit {
		return model.ExitTakeProfit, true
	}
	if price <= p.StopLoss {
		return model.ExitStopLoss, true
	}
	daysHeld := p.DaysHeld(date)
	if daysHeld >= p.Rules.MinHoldDays && p.ProfitPct(price) > p.Rules.EarlyProfitPct {
		return model.ExitEarlyProfit, true
	}
	if daysHeld >= p.Rules.MaxHoldDays {
		return model.ExitTimeBased, true
	}
	return "", false
}

// Step advances the position by one observed price: the trailing stop updates
// first, then the exit conditions fire in priority order. When one fires the
// position closes with that reason and true is returned.
func (p *Position) Step(date time.Time, price float64) (model.ExitReason, bool) {
	if p.Status != model.StatusOpen {
		return p.ExitReason, false
	}
	p.UpdateTrailingStop(price)
	reason, fired := p.evaluateExit(date, price)
	if !fired {
		return "", false
	}
	p.Close(date, price, reason)
	return reason, true
}

// Close finalizes the position. Further Steps are no-ops.
func (p *Position) Close(date time.Time, price float64, reason model.ExitReason) {
	if p.Status != model.StatusOpen {
		return
	}
	p.Status = model.StatusClosed
	p.ExitDate = date
	p.ExitPrice = price
	p.ExitReason = reason
	p.PnL = (price - p.EntryPrice) * float64(p.Quantity)
	p.PnLPct = p.ProfitPct(price)
}

// MarketValue returns the position's mark-to-market value at a price.
func (p *Position) MarketValue(price float64) float64 {
	return float64(p.Quantity) * price
}
