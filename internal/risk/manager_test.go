package risk

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"SwingLab/internal/model"
)

func TestCalculatePositionSize_Sizing(t *testing.T) {
	m := NewManager(100000, DefaultLimits())

	// capital_at_risk = 100000*0.02 = 2000; stop_distance = 100*0.05 = 5;
	// risk quantity = 400, clamped by capital cap 100000*0.20/100 = 200.
	size, reason := m.CalculatePositionSize(100)
	if size == nil {
		t.Fatalf("expected sized entry, got rejection: %s", reason)
	}
	if size.Quantity != 200 {
		t.Errorf("expected clamped quantity 200, got %d", size.Quantity)
	}
	if size.PositionValue != 20000 {
		t.Errorf("expected position value 20000, got %.2f", size.PositionValue)
	}
	if size.StopLossPrice != 95 {
		t.Errorf("expected stop at 95, got %.2f", size.StopLossPrice)
	}
	if math.Abs(size.MaxLoss-1000) > 1e-9 {
		t.Errorf("expected max loss 1000, got %.2f", size.MaxLoss)
	}
	if math.Abs(size.CapitalAtRiskPct-1.0) > 1e-9 {
		t.Errorf("expected 1%% capital at risk, got %.2f", size.CapitalAtRiskPct)
	}
}

func TestCalculatePositionSize_RejectsTinyPosition(t *testing.T) {
	m := NewManager(1000, DefaultLimits())
	// Capital cap: 1000*0.20/5000 < 1 share.
	if size, _ := m.CalculatePositionSize(5000); size != nil {
		t.Errorf("expected rejection for sub-share position, got %+v", size)
	}
}

func TestDrawdownGate(t *testing.T) {
	m := NewManager(100000, DefaultLimits())

	// Realize a 16k loss: current 84000, peak 100000, drawdown 16% >= 15%.
	m.UpdatePosition(TradeResult{Ticker: "X", PnL: -16000, Reason: model.ExitStopLoss, ClosedAt: time.Now()})
	m.ResetDailyTracking() // isolate the drawdown gate from the daily gate

	if size, reason := m.CalculatePositionSize(100); size != nil {
		t.Errorf("expected no-size at 16%% drawdown, got %+v", size)
	} else if reason == "OK" {
		t.Error("expected a rejection reason")
	}
	if allowed, _ := m.CheckTradeAllowed(); allowed {
		t.Error("CheckTradeAllowed should agree with CalculatePositionSize")
	}

	st := m.PortfolioStatus()
	if !st.MaxDrawdownExceeded {
		t.Error("status should flag max drawdown exceeded")
	}
	if math.Abs(st.CurrentDrawdownPct-16) > 1e-9 {
		t.Errorf("expected 16%% drawdown, got %.2f", st.CurrentDrawdownPct)
	}
}

func TestDailyLossGate(t *testing.T) {
	m := NewManager(100000, DefaultLimits())

	// Lose 5001 today: below -5% of initial capital.
	m.UpdatePosition(TradeResult{PnL: -5001, Reason: model.ExitStopLoss})
	if allowed, reason := m.CheckTradeAllowed(); allowed {
		t.Errorf("expected daily loss gate to trip, got allowed (%s)", reason)
	}

	// A new day clears the gate (drawdown 5.001% is under the 15% limit).
	m.ResetDailyTracking()
	if allowed, reason := m.CheckTradeAllowed(); !allowed {
		t.Errorf("expected trading allowed after daily reset, got %s", reason)
	}
}

func TestPeakCapitalRatchet(t *testing.T) {
	m := NewManager(100000, DefaultLimits())

	m.UpdatePosition(TradeResult{PnL: 5000})
	if st := m.PortfolioStatus(); st.PeakCapital != 105000 {
		t.Errorf("expected peak 105000, got %.2f", st.PeakCapital)
	}
	m.UpdatePosition(TradeResult{PnL: -3000})
	st := m.PortfolioStatus()
	if st.PeakCapital != 105000 {
		t.Errorf("peak must never decrease, got %.2f", st.PeakCapital)
	}
	if st.CurrentCapital != 102000 {
		t.Errorf("expected capital 102000, got %.2f", st.CurrentCapital)
	}
	if st.TotalTrades != 2 {
		t.Errorf("expected 2 trades logged, got %d", st.TotalTrades)
	}
}

func TestPersistentManager_Roundtrip(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "risk_state.json")

	m, err := NewPersistentManager(50000, DefaultLimits(), stateFile)
	if err != nil {
		t.Fatalf("new persistent manager: %v", err)
	}
	m.UpdatePosition(TradeResult{Ticker: "INFY.NS", PnL: 1234, Reason: model.ExitTakeProfit})

	restored, err := NewPersistentManager(50000, DefaultLimits(), stateFile)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	st := restored.PortfolioStatus()
	if st.CurrentCapital != 51234 {
		t.Errorf("expected restored capital 51234, got %.2f", st.CurrentCapital)
	}
	if st.TotalTrades != 1 {
		t.Errorf("expected restored trade log, got %d trades", st.TotalTrades)
	}
	if got := restored.RecentTrades(5); len(got) != 1 || got[0].Ticker != "INFY.NS" {
		t.Errorf("unexpected recent trades: %+v", got)
	}
}
