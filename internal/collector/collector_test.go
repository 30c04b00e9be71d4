package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"SwingLab/internal/model"
)

func flatSeries(n int, close float64) *model.BarSeries {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: 1000000,
		}
	}
	return &model.BarSeries{Ticker: "TEST.NS", Bars: bars}
}

func TestLabelSignals_Thresholds(t *testing.T) {
	// 40 flat bars at 100; selected forward bars are moved so each asserted
	// index sees a controlled 15-bar forward return. The comparisons are
	// strict, so a forward return of exactly +/-5% stays HOLD.
	series := flatSeries(40, 100)
	series.Bars[15].Close = 106 // bar 0: +6%
	series.Bars[16].Close = 94  // bar 1: -6%
	series.Bars[17].Close = 105 // bar 2: exactly +5%
	series.Bars[18].Close = 95  // bar 3: exactly -5%

	LabelSignals(series)

	tests := []struct {
		name string
		idx  int
		want model.Label
	}{
		{"above buy threshold", 0, model.SignalBuy},
		{"below sell threshold", 1, model.SignalSell},
		{"exactly +5% is HOLD", 2, model.SignalHold},
		{"exactly -5% is HOLD", 3, model.SignalHold},
		{"flat forward return", 4, model.SignalHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := series.Bars[tt.idx]
			if !b.HasSignal {
				t.Fatalf("bar %d: expected a label", tt.idx)
			}
			if b.Signal != tt.want {
				t.Errorf("bar %d: got %s, want %s", tt.idx, b.Signal, tt.want)
			}
		})
	}
}

func TestLabelSignals_TrailingBarsUnlabeled(t *testing.T) {
	series := flatSeries(40, 100)
	LabelSignals(series)

	// The last bar with a complete forward window is index 24 (24+15 = 39).
	if !series.Bars[24].HasSignal {
		t.Error("expected last bar with a full forward window to carry a label")
	}
	for i := 25; i < 40; i++ {
		if series.Bars[i].HasSignal {
			t.Errorf("bar %d: trailing bar must not carry a label", i)
		}
	}
}

func TestLabelSignals_ShortSeries(t *testing.T) {
	// Shorter than the forward horizon: nothing gets labeled.
	series := flatSeries(labelHorizonBars, 100)
	LabelSignals(series)
	for i, b := range series.Bars {
		if b.HasSignal {
			t.Errorf("bar %d: expected no label on a series shorter than the horizon", i)
		}
	}
}

func TestEnrich_FillsIndicatorColumns(t *testing.T) {
	series := flatSeries(60, 100)
	if err := Enrich(series); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := series.Bars[len(series.Bars)-1]
	// On a constant series both EMAs equal the price and the MACD line is
	// zero. RSI holds the neutral warmup default until smoothing starts,
	// then a loss-free series sits at the ceiling.
	if series.Bars[5].RSI != 50 {
		t.Errorf("warmup RSI = %.2f, want 50", series.Bars[5].RSI)
	}
	if last.RSI != 100 {
		t.Errorf("loss-free series RSI = %.2f, want 100", last.RSI)
	}
	if math.Abs(last.EMA10-100) > 1e-9 || math.Abs(last.EMA20-100) > 1e-9 {
		t.Errorf("flat series EMAs = %.4f / %.4f, want 100", last.EMA10, last.EMA20)
	}
	if math.Abs(last.MACD) > 1e-9 {
		t.Errorf("flat series MACD = %.6f, want 0", last.MACD)
	}
}

func TestCollect_EnrichesAndLabels(t *testing.T) {
	fetcher := &MockFetcher{DailyData: flatSeries(60, 100).Bars}
	c := NewCollector(fetcher)

	series, err := c.Collect(context.Background(), "TEST.NS", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Ticker != "TEST.NS" {
		t.Errorf("expected ticker TEST.NS, got %s", series.Ticker)
	}
	if len(series.Bars) != 60 {
		t.Fatalf("expected 60 bars, got %d", len(series.Bars))
	}
	if !series.Bars[0].HasSignal {
		t.Error("expected the first bar to carry a label after Collect")
	}
	if series.Bars[0].EMA10 == 0 {
		t.Error("expected indicator columns to be filled after Collect")
	}
}

func TestCollect_EmptySeriesFails(t *testing.T) {
	fetcher := &MockFetcher{DailyData: []model.Bar{}}
	c := NewCollector(fetcher)

	_, err := c.Collect(context.Background(), "TEST.NS", 60)
	if !errors.Is(err, model.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}
