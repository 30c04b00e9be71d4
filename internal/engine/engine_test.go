package engine

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"SwingLab/internal/classifier"
	"SwingLab/internal/collector"
	"SwingLab/internal/model"
)

// constantModel always predicts the same label, isolating the engine's
// position lifecycle from classifier behaviour.
type constantModel struct{ label model.Label }

func (m constantModel) Predict(model.FeatureVector) model.Label { return m.label }
func (m constantModel) Name() string                            { return "constant" }

type constantTrainer struct{ label model.Label }

func (t constantTrainer) Train([]model.Bar) (classifier.Model, error) {
	return constantModel{t.label}, nil
}

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// risingSeries builds a hand-enriched series: the test partition rises
// dailyDriftPct per day and every bar passes the entry filters.
func risingSeries(ticker string, total int, dailyDriftPct float64) *model.BarSeries {
	bars := make([]model.Bar, total)
	price := 100.0
	for i := range bars {
		bars[i] = model.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   price,
			High:   price * 1.002,
			Low:    price * 0.998,
			Close:  price,
			Volume: 1000000,
			RSI:    50,            // well under the ceiling
			EMA10:  price * 0.99,  // close stays above the trend average
			EMA20:  price * 0.98,
			MACD:   1,
		}
		price *= 1 + dailyDriftPct/100
	}
	return &model.BarSeries{Ticker: ticker, Bars: bars, FetchedAt: time.Now()}
}

func newTestEngine(cfg Config, cache *SeriesCache, trainer classifier.Trainer) *Engine {
	col := collector.NewCollector(&collector.MockFetcher{Price: 100})
	return New(cfg, col, trainer, cache)
}

func TestRun_EmptyTickerListIsCallerError(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil, constantTrainer{model.SignalHold})
	if _, err := e.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty ticker list")
	}
}

func TestRun_EndToEndTakeProfit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryDays = 250
	cache := NewSeriesCache()

	// 250 bars at +1%/day: the 80/20 split leaves a 50-day test slice.
	series := risingSeries("TEST.NS", 250, 1.0)
	cache.Put("TEST.NS", cfg.HistoryDays, series)

	e := newTestEngine(cfg, cache, constantTrainer{model.SignalBuy})
	res, err := e.Run(context.Background(), []string{"TEST.NS"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(res.Trades) == 0 {
		t.Fatal("expected at least one trade")
	}
	first := res.Trades[0]

	// The first position opens on the first test day.
	testStart := series.Bars[200].Date
	if !first.Date.Equal(testStart) {
		t.Errorf("expected entry on first test day %v, got %v", testStart, first.Date)
	}
	if first.ExitReason != model.ExitTakeProfit {
		t.Errorf("expected TAKE_PROFIT, got %s", first.ExitReason)
	}

	// At +1%/day the 10%% target is crossed on day 10.
	held := int(first.ExitDate.Sub(first.Date).Hours() / 24)
	if held < 9 || held > 11 {
		t.Errorf("expected close near day 10, got day %d", held)
	}

	// Return%% is the gross move minus twice the cost rate.
	gross := (first.Exit - first.Entry) / first.Entry * 100
	want := gross - 2*cfg.CostRate*100
	if math.Abs(first.ReturnPct-want) > 0.02 {
		t.Errorf("expected Return%% ≈ %.2f, got %.2f", want, first.ReturnPct)
	}
	if first.ReturnPct < 9.5 || first.ReturnPct > 11 {
		t.Errorf("expected ≈10%% net return, got %.2f", first.ReturnPct)
	}

	// One snapshot per simulated day.
	if len(res.PortfolioHistory) != 50 {
		t.Errorf("expected 50 daily snapshots, got %d", len(res.PortfolioHistory))
	}
	if res.Diagnostics.TestSliceLength != 50 {
		t.Errorf("expected test slice length 50, got %d", res.Diagnostics.TestSliceLength)
	}
	if got := res.Diagnostics.PredictedSignalCounts[model.SignalBuy]; got != 50 {
		t.Errorf("expected 50 BUY predictions, got %d", got)
	}

	// Every close in a rising market is a take-profit, except perhaps the
	// final forced liquidation.
	for _, tr := range res.Trades {
		if tr.ExitReason != model.ExitTakeProfit && tr.ExitReason != model.ExitEndOfData {
			t.Errorf("unexpected exit reason %s", tr.ExitReason)
		}
	}

	// The capital curve rises with the compounding trades.
	firstSnap := res.PortfolioHistory[0]
	lastSnap := res.PortfolioHistory[len(res.PortfolioHistory)-1]
	if lastSnap.PortfolioValue <= firstSnap.PortfolioValue {
		t.Errorf("expected growing portfolio value, got %.2f -> %.2f",
			firstSnap.PortfolioValue, lastSnap.PortfolioValue)
	}
}

func TestRun_SkipsShortHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryDays = 250
	cache := NewSeriesCache()
	cache.Put("SHORT.NS", cfg.HistoryDays, risingSeries("SHORT.NS", 20, 0.5))

	e := newTestEngine(cfg, cache, constantTrainer{model.SignalBuy})
	res, err := e.Run(context.Background(), []string{"SHORT.NS"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Diagnostics.Skipped) != 1 {
		t.Fatalf("expected 1 skipped ticker, got %d", len(res.Diagnostics.Skipped))
	}
	note := res.Diagnostics.Skipped[0]
	if note.Ticker != "SHORT.NS" || !strings.Contains(note.Reason, "insufficient") {
		t.Errorf("unexpected skip note: %+v", note)
	}
	if len(res.Trades) != 0 {
		t.Errorf("skipped ticker must not trade, got %d trades", len(res.Trades))
	}
}

func TestRun_SkipsSingleClassTraining(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryDays = 250
	cache := NewSeriesCache()

	series := risingSeries("FLAT.NS", 100, 0.0)
	for i := range series.Bars {
		series.Bars[i].Signal = model.SignalHold
		series.Bars[i].HasSignal = true
	}
	cache.Put("FLAT.NS", cfg.HistoryDays, series)

	// Real trainer: single-class data must fail training and skip.
	e := newTestEngine(cfg, cache, classifier.CentroidTrainer{})
	res, err := e.Run(context.Background(), []string{"FLAT.NS"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Diagnostics.Skipped) != 1 {
		t.Fatalf("expected 1 skipped ticker, got %d", len(res.Diagnostics.Skipped))
	}
	if !strings.Contains(res.Diagnostics.Skipped[0].Reason, "training") {
		t.Errorf("expected a training-failure reason, got %q", res.Diagnostics.Skipped[0].Reason)
	}
}

func TestRun_OneTickerFailureDoesNotAbortBatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryDays = 250
	cache := NewSeriesCache()
	cache.Put("SHORT.NS", cfg.HistoryDays, risingSeries("SHORT.NS", 10, 0.5))
	cache.Put("GOOD.NS", cfg.HistoryDays, risingSeries("GOOD.NS", 250, 1.0))

	e := newTestEngine(cfg, cache, constantTrainer{model.SignalBuy})
	res, err := e.Run(context.Background(), []string{"SHORT.NS", "GOOD.NS"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Diagnostics.Skipped) != 1 {
		t.Errorf("expected 1 skip, got %d", len(res.Diagnostics.Skipped))
	}
	if len(res.Trades) == 0 {
		t.Error("healthy ticker should still produce trades")
	}
}

func TestRun_HoldSignalNeverTrades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryDays = 250
	cache := NewSeriesCache()
	cache.Put("TEST.NS", cfg.HistoryDays, risingSeries("TEST.NS", 250, 1.0))

	e := newTestEngine(cfg, cache, constantTrainer{model.SignalHold})
	res, err := e.Run(context.Background(), []string{"TEST.NS"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Trades) != 0 {
		t.Errorf("HOLD-only predictions must not trade, got %d trades", len(res.Trades))
	}
	// Snapshots still record every day with flat capital.
	if len(res.PortfolioHistory) != 50 {
		t.Fatalf("expected 50 snapshots, got %d", len(res.PortfolioHistory))
	}
	for _, snap := range res.PortfolioHistory {
		if snap.PortfolioValue != cfg.InitialCapital {
			t.Fatalf("idle capital must stay at %.0f, got %.2f", cfg.InitialCapital, snap.PortfolioValue)
		}
	}
}

func TestRun_EntryFilterBlocksOverboughtRSI(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryDays = 250
	cache := NewSeriesCache()

	series := risingSeries("HOT.NS", 250, 1.0)
	for i := range series.Bars {
		series.Bars[i].RSI = 75 // overbought every day
	}
	cache.Put("HOT.NS", cfg.HistoryDays, series)

	e := newTestEngine(cfg, cache, constantTrainer{model.SignalBuy})
	res, err := e.Run(context.Background(), []string{"HOT.NS"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Trades) != 0 {
		t.Errorf("RSI filter should block every entry, got %d trades", len(res.Trades))
	}
}

func TestRun_DrawdownGateBlocksEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryDays = 250
	// A tiny drawdown limit trips after the first losing trade.
	cfg.Limits.MaxDrawdownPct = 0.001
	cache := NewSeriesCache()

	// Falling market: the first position stops out, then the gate holds.
	series := risingSeries("DOWN.NS", 250, -1.0)
	cache.Put("DOWN.NS", cfg.HistoryDays, series)

	e := newTestEngine(cfg, cache, constantTrainer{model.SignalBuy})
	res, err := e.Run(context.Background(), []string{"DOWN.NS"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected one trade before the gate closes, got %d", len(res.Trades))
	}
	if got := res.Trades[0].ExitReason; got != model.ExitStopLoss {
		t.Errorf("exit reason = %q, want %q", got, model.ExitStopLoss)
	}
}

func TestSeriesCache(t *testing.T) {
	cache := NewSeriesCache()
	s := risingSeries("A.NS", 10, 0.1)
	cache.Put("A.NS", 250, s)

	if got, ok := cache.Get("A.NS", 250); !ok || got != s {
		t.Error("expected cache hit")
	}
	if _, ok := cache.Get("A.NS", 500); ok {
		t.Error("different period must miss")
	}

	cache.Put("B.NS", 250, risingSeries("B.NS", 10, 0.1))
	cache.Invalidate("A.NS")
	if _, ok := cache.Get("A.NS", 250); ok {
		t.Error("invalidated ticker must miss")
	}
	if _, ok := cache.Get("B.NS", 250); !ok {
		t.Error("other tickers must survive invalidation")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d", cache.Len())
	}
}
