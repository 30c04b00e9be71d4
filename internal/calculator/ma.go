package calculator

import "errors"

// CalculateSMA computes the simple moving average of the most recent `period`
// prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMASeries computes the exponential moving average for every bar.
// The first period-1 slots are backfilled with the running SMA so callers get
// one value per input price; from index period-1 on it is the standard EMA
// with multiplier 2/(period+1).
func CalculateEMASeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(prices) == 0 {
		return nil, errors.New("no prices provided")
	}
	out := make([]float64, len(prices))
	mult := 2.0 / (float64(period) + 1.0)

	sum := 0.0
	for i, p := range prices {
		if i < period {
			sum += p
			out[i] = sum / float64(i+1)
			continue
		}
		out[i] = (p-out[i-1])*mult + out[i-1]
	}
	return out, nil
}
