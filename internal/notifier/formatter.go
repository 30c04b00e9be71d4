package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"SwingLab/internal/metrics"
	"SwingLab/internal/paper"
	"SwingLab/internal/risk"
)

func money(v float64) string {
	return "₹" + humanize.CommafWithDigits(v, 2)
}

// FormatBacktestReport formats a completed backtest run into a Telegram message.
func FormatBacktestReport(perf metrics.Performance, stats metrics.TradeStats, tickers int, finalCapital float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>SwingLab Backtest</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Tickers: %d | Trades: %d\n", tickers, stats.TotalTrades))
	b.WriteString(fmt.Sprintf("Final capital: %s\n\n", money(finalCapital)))

	b.WriteString("📈 <b>Performance:</b>\n")
	b.WriteString(fmt.Sprintf("  Total return: %+.2f%%\n", perf.TotalReturnPct))
	b.WriteString(fmt.Sprintf("  CAGR: %+.2f%%\n", perf.CAGRPct))
	b.WriteString(fmt.Sprintf("  Sharpe: %.2f\n", perf.SharpeRatio))
	b.WriteString(fmt.Sprintf("  Max drawdown: %.2f%%\n\n", perf.MaxDrawdownPct))

	if stats.TotalTrades > 0 {
		b.WriteString("🎯 <b>Trades:</b>\n")
		b.WriteString(fmt.Sprintf("  Win rate: %.1f%%\n", stats.WinRatePct))
		b.WriteString(fmt.Sprintf("  Avg gain: %+.2f%% | Avg loss: %+.2f%%\n", stats.AvgGainPct, stats.AvgLossPct))
		b.WriteString(fmt.Sprintf("  Best: %+.2f%% | Worst: %+.2f%%\n", stats.BestTradePct, stats.WorstTradePct))
	}

	return b.String()
}

// FormatPortfolioStatus formats the live portfolio view for display.
func FormatPortfolioStatus(st paper.PortfolioStatus) string {
	var b strings.Builder

	b.WriteString("💼 <b>Portfolio Status</b>\n\n")
	b.WriteString(fmt.Sprintf("Capital: %s (start %s)\n", money(st.CurrentCapital), money(st.InitialCapital)))
	b.WriteString(fmt.Sprintf("Peak: %s\n", money(st.PeakCapital)))
	b.WriteString(fmt.Sprintf("Total P&L: %s (%+.2f%%)\n", money(st.TotalPnL), st.TotalReturnPct))
	b.WriteString(fmt.Sprintf("Daily P&L: %s\n", money(st.DailyPnL)))
	b.WriteString(fmt.Sprintf("Drawdown: %.2f%%\n", st.CurrentDrawdownPct))
	b.WriteString(fmt.Sprintf("Closed trades: %d | Open positions: %d\n", st.TotalTrades, st.ActivePositions))
	if st.ActivePositions > 0 {
		b.WriteString(fmt.Sprintf("Unrealized P&L: %s\n", money(st.UnrealizedPnL)))
	}

	if st.MaxDrawdownExceeded {
		b.WriteString("\n⛔ Max drawdown exceeded, new entries blocked\n")
	}
	if st.DailyLossExceeded {
		b.WriteString("⛔ Daily loss limit exceeded, new entries blocked\n")
	}

	return b.String()
}

// FormatPositions formats the open book marked to market.
func FormatPositions(marks []paper.PositionMark) string {
	if len(marks) == 0 {
		return "No open positions."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📂 <b>Open Positions</b> (%d)\n\n", len(marks)))
	for _, m := range marks {
		b.WriteString(fmt.Sprintf("<b>%s</b> ×%d\n", m.Ticker, m.Quantity))
		b.WriteString(fmt.Sprintf("  entry %.2f on %s\n", m.EntryPrice, m.EntryDate.Format("2006-01-02")))
		b.WriteString(fmt.Sprintf("  stop %.2f | target %.2f\n", m.StopLoss, m.TakeProfit))
		if m.CurrentPrice > 0 {
			b.WriteString(fmt.Sprintf("  now %.2f, P&L %s (%+.2f%%)\n", m.CurrentPrice, money(m.UnrealizedPnL), m.UnrealizedPnLPct))
		} else {
			b.WriteString("  price unavailable\n")
		}
	}
	return b.String()
}

// FormatTrades formats recent closed trades from the risk manager log.
func FormatTrades(trades []risk.TradeResult) string {
	if len(trades) == 0 {
		return "No closed trades yet."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧾 <b>Recent Trades</b> (%d)\n\n", len(trades)))
	for _, tr := range trades {
		b.WriteString(fmt.Sprintf("%s  %s  %s  %s\n",
			tr.ClosedAt.Format("01-02"), tr.Ticker, tr.Reason, money(tr.PnL)))
	}
	return b.String()
}

// FormatCycleResults summarizes one live cycle. No-action results are counted
// but not itemized.
func FormatCycleResults(results []paper.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔄 <b>Cycle</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))

	var executed, rejected, errored, held int
	for _, r := range results {
		switch r.Status {
		case paper.StatusExecuted:
			executed++
			if r.Action == paper.ActionCloseLong {
				b.WriteString(fmt.Sprintf("✅ %s %s @ %.2f, P&L %s (%s)\n",
					r.Action, r.Ticker, r.Price, money(r.PnL), r.ExitReason))
			} else {
				b.WriteString(fmt.Sprintf("✅ %s %s ×%d @ %.2f\n", r.Action, r.Ticker, r.Quantity, r.Price))
			}
		case paper.StatusRejected:
			rejected++
			b.WriteString(fmt.Sprintf("🚫 %s: %s\n", r.Ticker, r.Reason))
		case paper.StatusError:
			errored++
			b.WriteString(fmt.Sprintf("⚠️ %s: %s\n", r.Ticker, r.Reason))
		case paper.StatusNoAction:
			held++
		}
	}

	b.WriteString(fmt.Sprintf("\nexecuted %d | rejected %d | held %d | errors %d\n",
		executed, rejected, held, errored))
	return b.String()
}
