// Package metrics turns return series and trade lists into scalar
// performance statistics. Everything here is a pure function.
package metrics

import (
	"math"

	"SwingLab/internal/model"
)

// PeriodsPerYear annualizes daily return series.
const PeriodsPerYear = 252

// Performance summarizes a period return series.
type Performance struct {
	TotalReturnPct float64
	CAGRPct        float64
	SharpeRatio    float64
	MaxDrawdownPct float64
}

// TradeStats aggregates a trade list.
type TradeStats struct {
	TotalTrades   int
	BuyTrades     int
	SellTrades    int
	WinRatePct    float64
	AvgGainPct    float64
	AvgLossPct    float64
	BestTradePct  float64
	WorstTradePct float64
}

// CalculateMetrics computes performance figures from a period return series.
// An empty series yields all zeros; a zero-variance series yields Sharpe 0.
func CalculateMetrics(returns []float64) Performance {
	if len(returns) == 0 {
		return Performance{}
	}

	compounded := 1.0
	for _, r := range returns {
		compounded *= 1 + r
	}
	totalReturn := (compounded - 1) * 100

	n := float64(len(returns))
	cagr := 0.0
	if compounded > 0 {
		cagr = (math.Pow(compounded, PeriodsPerYear/n) - 1) * 100
	}

	sharpe := 0.0
	if sd := stdDev(returns); sd != 0 {
		sharpe = math.Sqrt(PeriodsPerYear) * mean(returns) / sd
	}

	// Max drawdown over the cumulative growth curve.
	cumulative := 1.0
	runningMax := 1.0
	minDrawdown := 0.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > runningMax {
			runningMax = cumulative
		}
		if dd := cumulative/runningMax - 1; dd < minDrawdown {
			minDrawdown = dd
		}
	}

	return Performance{
		TotalReturnPct: round2(totalReturn),
		CAGRPct:        round2(cagr),
		SharpeRatio:    round2(sharpe),
		MaxDrawdownPct: round2(minDrawdown * 100),
	}
}

// AnalyzeTrades aggregates a trade list. Trades with a non-finite return are
// excluded from every statistic; the cleaned detail list is returned
// alongside the summary so the two always agree. Empty input yields
// {TotalTrades: 0} and an empty detail list, not an error.
func AnalyzeTrades(trades []model.TradeRecord) (TradeStats, []model.TradeRecord) {
	detail := make([]model.TradeRecord, 0, len(trades))
	for _, tr := range trades {
		if math.IsNaN(tr.ReturnPct) || math.IsInf(tr.ReturnPct, 0) {
			continue
		}
		detail = append(detail, tr)
	}
	if len(detail) == 0 {
		return TradeStats{}, detail
	}

	stats := TradeStats{
		TotalTrades:   len(detail),
		BestTradePct:  math.Inf(-1),
		WorstTradePct: math.Inf(1),
	}
	var wins, losses int
	var gainSum, lossSum float64
	for _, tr := range detail {
		switch tr.Signal {
		case model.SignalBuy:
			stats.BuyTrades++
		case model.SignalSell:
			stats.SellTrades++
		}
		if tr.ReturnPct > 0 {
			wins++
			gainSum += tr.ReturnPct
		} else if tr.ReturnPct < 0 {
			losses++
			lossSum += tr.ReturnPct
		}
		if tr.ReturnPct > stats.BestTradePct {
			stats.BestTradePct = tr.ReturnPct
		}
		if tr.ReturnPct < stats.WorstTradePct {
			stats.WorstTradePct = tr.ReturnPct
		}
	}

	stats.WinRatePct = round2(float64(wins) / float64(stats.TotalTrades) * 100)
	if wins > 0 {
		stats.AvgGainPct = round2(gainSum / float64(wins))
	}
	if losses > 0 {
		stats.AvgLossPct = round2(lossSum / float64(losses))
	}
	stats.BestTradePct = round2(stats.BestTradePct)
	stats.WorstTradePct = round2(stats.WorstTradePct)
	return stats, detail
}

// DailyReturns derives the period return series from a portfolio value curve.
func DailyReturns(history []model.PortfolioSnapshot) []float64 {
	if len(history) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].PortfolioValue
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, history[i].PortfolioValue/prev-1)
	}
	return returns
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev is the sample standard deviation (n-1 denominator); 0 for fewer
// than two values.
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
