package collector

import (
	"context"

	"SwingLab/internal/model"
)

// Fetcher defines the interface for retrieving market data.
type Fetcher interface {
	// FetchDailyBars returns up to `days` ordered daily bars for the symbol.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error)
	// FetchCurrentPrice returns the latest traded price for the symbol.
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
