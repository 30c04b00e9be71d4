package calculator

import "errors"

// CalculateRSI computes the Wilder-smoothed RSI over the given period for the
// final bar. Returns 50.0 if fewer than period+1 prices are available.
func CalculateRSI(prices []float64, period int) (float64, error) {
	series, err := CalculateRSISeries(prices, period)
	if err != nil {
		return 0, err
	}
	if len(series) == 0 {
		return 50.0, nil
	}
	return series[len(series)-1], nil
}

// CalculateRSISeries computes the Wilder-smoothed RSI for every bar. The
// first period slots default to 50 (neutral) while the smoothing warms up.
func CalculateRSISeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = 50.0
	}
	if len(prices) < period+1 {
		return out, nil
	}

	// Initial averages over the first `period` changes.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	// Wilder smoothing for the remaining bars.
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
