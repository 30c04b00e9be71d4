package collector

import (
	"context"
	"time"

	"SwingLab/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.Bar
	// PriceErr makes FetchCurrentPrice fail, simulating a dead feed.
	PriceErr error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.Bar, error) {
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return GenerateMockBars(m.Price, days, 0.001), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, _ string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	if len(m.DailyData) > 0 {
		return m.DailyData[len(m.DailyData)-1].Close, nil
	}
	return m.Price, nil
}

// GenerateMockBars builds a daily series compounding at dailyDrift per bar,
// one bar per calendar day ending yesterday.
func GenerateMockBars(basePrice float64, count int, dailyDrift float64) []model.Bar {
	bars := make([]model.Bar, count)
	p := basePrice
	for i := 0; i < count; i++ {
		bars[i] = model.Bar{
			Date:   time.Now().AddDate(0, 0, -(count - i)).Truncate(24 * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
		p *= 1 + dailyDrift
	}
	return bars
}
