package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SwingLab/internal/classifier"
	"SwingLab/internal/collector"
	"SwingLab/internal/config"
	"SwingLab/internal/notifier"
	"SwingLab/internal/paper"
	"SwingLab/internal/position"
	"SwingLab/internal/recorder"
	"SwingLab/internal/risk"
	"SwingLab/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SwingLab paper trader starting...")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	fetcher := collector.NewYahooFetcher(cfg.Proxy)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher)

	// Capital survives restarts through the risk state file.
	rm, err := risk.NewPersistentManager(cfg.Capital.Initial, risk.Limits{
		MaxPositionSizePct: cfg.Risk.MaxPositionSizePct,
		MaxDailyLossPct:    cfg.Risk.MaxDailyLossPct,
		MaxDrawdownPct:     cfg.Risk.MaxDrawdownPct,
		StopLossPct:        cfg.Risk.StopLossPct,
		RiskPerTradePct:    cfg.Risk.RiskPerTradePct,
	}, cfg.Risk.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init risk manager: %v", err)
	}

	ps := paper.NewSystem(paper.Config{
		Exit: position.ExitRules{
			TakeProfitPct:  cfg.Exit.TakeProfitPct,
			StopLossPct:    cfg.Exit.StopLossPct,
			TrailStop:      *cfg.Exit.TrailStop,
			TrailPct:       cfg.Exit.TrailPct,
			MinHoldDays:    cfg.Exit.MinHoldDays,
			EarlyProfitPct: cfg.Exit.EarlyProfitPct,
			MaxHoldDays:    cfg.Exit.MaxHoldDays,
		},
		CostRate:     cfg.Capital.CostRate,
		FetchTimeout: 15 * time.Second,
	}, fetcher, rm)

	var (
		n  notifier.Notifier = notifier.NoopNotifier{}
		tn *notifier.TelegramNotifier
	)
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[WARN] Telegram not configured, running log-only")
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, classifier.CentroidTrainer{}, ps, rm, n, rec,
		cfg.Watchlist, cfg.Backtest.HistoryDays)
	if err := sched.RegisterAll(cfg.Schedule.CycleCron, cfg.Schedule.DailyResetCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing trading cycle now")
		go sched.RunCycleNow()
	}

	log.Println("[INFO] paper trader is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] paper trader stopped")
}
