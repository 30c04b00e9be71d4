package model

import "time"

// Bar is one trading day's candlestick enriched with indicator columns and,
// once labeled, the training signal for that day.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	// Indicator columns, filled by the collector.
	RSI   float64
	EMA10 float64
	EMA20 float64
	MACD  float64

	// Signal is the label derived from the 15-day forward return.
	// HasSignal is false for bars whose forward window extends past the
	// end of the series; such bars are excluded from training.
	Signal    Label
	HasSignal bool
}

// BarSeries holds one instrument's ordered daily bars.
type BarSeries struct {
	Ticker    string
	Bars      []Bar
	FetchedAt time.Time
}

// Closes extracts the close column.
func (s *BarSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// FeatureVector is the per-day input to the signal classifier.
type FeatureVector struct {
	RSI   float64
	EMA10 float64
	EMA20 float64
	MACD  float64
}

// Features returns the bar's classifier input.
func (b *Bar) Features() FeatureVector {
	return FeatureVector{RSI: b.RSI, EMA10: b.EMA10, EMA20: b.EMA20, MACD: b.MACD}
}
