package model

import "errors"

// Failure taxonomy for batch runs. Per-ticker failures wrap one of these and
// skip the ticker; they never abort the remaining batch.
var (
	// ErrDataUnavailable: empty or malformed bar series.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrInsufficientHistory: series shorter than the minimum bar count.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrModelTraining: fewer than two signal classes in the training slice.
	ErrModelTraining = errors.New("model training failed")
	// ErrPriceFetch: live price lookup failed; the ticker is retried next cycle.
	ErrPriceFetch = errors.New("price fetch failed")
)
