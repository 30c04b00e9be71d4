package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"SwingLab/internal/calculator"
	"SwingLab/internal/model"
)

// Signal labeling: a bar is labeled by its forward return over the swing
// horizon. ±5% over 15 trading days marks BUY/SELL, anything between is HOLD.
const (
	labelHorizonBars   = 15
	labelBuyThreshold  = 5.0
	labelSellThreshold = -5.0
)

// Collector fetches raw bars and enriches them with indicator columns and
// training labels.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches daily bars for one ticker and computes all indicator and
// label columns. Fails with ErrDataUnavailable when the fetcher returns an
// empty series.
func (c *Collector) Collect(ctx context.Context, ticker string, days int) (*model.BarSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, ticker, days)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for %s: %w", ticker, model.ErrDataUnavailable)
	}

	series := &model.BarSeries{Ticker: ticker, Bars: bars, FetchedAt: time.Now()}
	if err := Enrich(series); err != nil {
		return nil, fmt.Errorf("enrich %s: %w", ticker, err)
	}
	LabelSignals(series)
	return series, nil
}

// CollectBatch fetches and enriches several tickers concurrently, fully
// materializing all data before any simulation begins. A failed ticker is
// logged and omitted; it never fails the batch.
func (c *Collector) CollectBatch(ctx context.Context, tickers []string, days int) map[string]*model.BarSeries {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]*model.BarSeries, len(tickers))
	)
	for _, ticker := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			series, err := c.Collect(ctx, ticker, days)
			if err != nil {
				log.Printf("[WARN] collect %s: %v", ticker, err)
				return
			}
			mu.Lock()
			out[ticker] = series
			mu.Unlock()
		}(ticker)
	}
	wg.Wait()
	return out
}

// Enrich fills the indicator columns (RSI, EMA10, EMA20, MACD) in place.
func Enrich(series *model.BarSeries) error {
	closes := series.Closes()

	rsi, err := calculator.CalculateRSISeries(closes, 14)
	if err != nil {
		return fmt.Errorf("rsi: %w", err)
	}
	ema10, err := calculator.CalculateEMASeries(closes, 10)
	if err != nil {
		return fmt.Errorf("ema10: %w", err)
	}
	ema20, err := calculator.CalculateEMASeries(closes, 20)
	if err != nil {
		return fmt.Errorf("ema20: %w", err)
	}
	macd, err := calculator.CalculateMACDSeries(closes)
	if err != nil {
		return fmt.Errorf("macd: %w", err)
	}

	for i := range series.Bars {
		series.Bars[i].RSI = rsi[i]
		series.Bars[i].EMA10 = ema10[i]
		series.Bars[i].EMA20 = ema20[i]
		series.Bars[i].MACD = macd[i]
	}
	return nil
}

// LabelSignals assigns the training label to every bar whose forward window
// fits inside the series. Trailing bars keep HasSignal=false.
func LabelSignals(series *model.BarSeries) {
	bars := series.Bars
	for i := range bars {
		j := i + labelHorizonBars
		if j >= len(bars) {
			bars[i].HasSignal = false
			continue
		}
		futureReturn := (bars[j].Close - bars[i].Close) / bars[i].Close * 100
		switch {
		case futureReturn > labelBuyThreshold:
			bars[i].Signal = model.SignalBuy
		case futureReturn < labelSellThreshold:
			bars[i].Signal = model.SignalSell
		default:
			bars[i].Signal = model.SignalHold
		}
		bars[i].HasSignal = true
	}
}
