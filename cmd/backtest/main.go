package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"SwingLab/internal/classifier"
	"SwingLab/internal/collector"
	"SwingLab/internal/config"
	"SwingLab/internal/engine"
	"SwingLab/internal/metrics"
	"SwingLab/internal/model"
	"SwingLab/internal/notifier"
	"SwingLab/internal/position"
	"SwingLab/internal/recorder"
	"SwingLab/internal/risk"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		cfgPath  = flag.String("config", "configs/config.yaml", "path to config file")
		tickers  = flag.String("tickers", "", "comma-separated tickers (overrides watchlist)")
		mockData = flag.Bool("mock", false, "use generated mock data instead of live fetch")
	)
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	watchlist := cfg.Watchlist
	if *tickers != "" {
		watchlist = nil
		for _, t := range strings.Split(*tickers, ",") {
			if t = strings.TrimSpace(t); t != "" {
				watchlist = append(watchlist, t)
			}
		}
	}

	var fetcher collector.Fetcher
	if *mockData {
		fetcher = &collector.MockFetcher{Price: 100}
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	eng := engine.New(engineConfig(cfg), collector.NewCollector(fetcher), classifier.CentroidTrainer{}, engine.NewSeriesCache())

	res, err := eng.Run(context.Background(), watchlist)
	if err != nil {
		log.Fatalf("[FATAL] backtest: %v", err)
	}

	perf := metrics.CalculateMetrics(metrics.DailyReturns(res.PortfolioHistory))
	stats, _ := metrics.AnalyzeTrades(res.Trades)

	finalCapital := cfg.Capital.Initial
	if n := len(res.PortfolioHistory); n > 0 {
		finalCapital = res.PortfolioHistory[n-1].PortfolioValue
	}

	printReport(watchlist, res, perf, stats, finalCapital)
	record(cfg.Database.SQLitePath, watchlist, res, perf, stats, finalCapital)
}

func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		InitialCapital: cfg.Capital.Initial,
		CostRate:       cfg.Capital.CostRate,
		TrainSplit:     cfg.Backtest.TrainSplit,
		MinHistoryBars: cfg.Backtest.MinHistoryBars,
		HistoryDays:    cfg.Backtest.HistoryDays,
		Limits: risk.Limits{
			MaxPositionSizePct: cfg.Risk.MaxPositionSizePct,
			MaxDailyLossPct:    cfg.Risk.MaxDailyLossPct,
			MaxDrawdownPct:     cfg.Risk.MaxDrawdownPct,
			StopLossPct:        cfg.Risk.StopLossPct,
			RiskPerTradePct:    cfg.Risk.RiskPerTradePct,
		},
		Exit: position.ExitRules{
			TakeProfitPct:  cfg.Exit.TakeProfitPct,
			StopLossPct:    cfg.Exit.StopLossPct,
			TrailStop:      *cfg.Exit.TrailStop,
			TrailPct:       cfg.Exit.TrailPct,
			MinHoldDays:    cfg.Exit.MinHoldDays,
			EarlyProfitPct: cfg.Exit.EarlyProfitPct,
			MaxHoldDays:    cfg.Exit.MaxHoldDays,
		},
	}
}

func printReport(watchlist []string, res *engine.Result, perf metrics.Performance, stats metrics.TradeStats, finalCapital float64) {
	fmt.Println(strings.TrimSpace(stripHTML(notifier.FormatBacktestReport(perf, stats, len(watchlist), finalCapital))))

	if len(res.Trades) > 0 {
		fmt.Println("\nTrades:")
		for _, tr := range res.Trades {
			fmt.Printf("  %-12s %s  %8.2f -> %8.2f  %+6.2f%%  %s\n",
				tr.Stock, tr.Date.Format("2006-01-02"), tr.Entry, tr.Exit, tr.ReturnPct, tr.ExitReason)
		}
	}

	d := res.Diagnostics
	fmt.Printf("\nDiagnostics: %d test bars, predictions BUY=%d HOLD=%d SELL=%d\n",
		d.TestSliceLength,
		d.PredictedSignalCounts[model.SignalBuy],
		d.PredictedSignalCounts[model.SignalHold],
		d.PredictedSignalCounts[model.SignalSell])
	for _, s := range d.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.Ticker, s.Reason)
	}
}

func record(dbPath string, watchlist []string, res *engine.Result, perf metrics.Performance, stats metrics.TradeStats, finalCapital float64) {
	if dbPath == "" {
		return
	}
	rec, err := recorder.NewSQLiteRecorder(dbPath)
	if err != nil {
		log.Printf("[WARN] sqlite recorder unavailable, results not persisted: %v", err)
		return
	}
	defer rec.Close()

	for i := range res.Trades {
		if err := rec.RecordTrade(&res.Trades[i]); err != nil {
			log.Printf("[ERROR] record trade: %v", err)
		}
	}
	for i := range res.PortfolioHistory {
		if err := rec.RecordSnapshot(&res.PortfolioHistory[i]); err != nil {
			log.Printf("[ERROR] record snapshot: %v", err)
		}
	}
	if err := rec.RecordRunSummary(&recorder.RunSummary{
		Tickers:        len(watchlist),
		Trades:         stats.TotalTrades,
		FinalCapital:   finalCapital,
		TotalReturnPct: perf.TotalReturnPct,
		CAGRPct:        perf.CAGRPct,
		SharpeRatio:    perf.SharpeRatio,
		MaxDrawdownPct: perf.MaxDrawdownPct,
		WinRatePct:     stats.WinRatePct,
	}); err != nil {
		log.Printf("[ERROR] record run summary: %v", err)
	}
}

// stripHTML drops the Telegram formatting tags for terminal output.
func stripHTML(s string) string {
	r := strings.NewReplacer("<b>", "", "</b>", "")
	return r.Replace(s)
}
