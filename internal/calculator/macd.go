package calculator

// MACD periods (standard 12/26 convergence-divergence).
const (
	macdFastPeriod = 12
	macdSlowPeriod = 26
)

// CalculateMACDSeries computes the MACD line (fast EMA minus slow EMA) for
// every bar.
func CalculateMACDSeries(prices []float64) ([]float64, error) {
	fast, err := CalculateEMASeries(prices, macdFastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := CalculateEMASeries(prices, macdSlowPeriod)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(prices))
	for i := range prices {
		out[i] = fast[i] - slow[i]
	}
	return out, nil
}
