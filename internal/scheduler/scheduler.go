// Package scheduler drives the live paper trader: a cron-timed trading cycle
// over the watchlist, a daily risk reset, and Telegram command handling.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"SwingLab/internal/classifier"
	"SwingLab/internal/collector"
	"SwingLab/internal/model"
	"SwingLab/internal/notifier"
	"SwingLab/internal/paper"
	"SwingLab/internal/recorder"
	"SwingLab/internal/risk"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Trainer   classifier.Trainer
	Paper     *paper.System
	Risk      *risk.Manager
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context

	Watchlist   []string
	HistoryDays int
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, trainer classifier.Trainer,
	ps *paper.System, rm *risk.Manager, n notifier.Notifier, rec recorder.Recorder,
	watchlist []string, historyDays int) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Collector:   col,
		Trainer:     trainer,
		Paper:       ps,
		Risk:        rm,
		Notifier:    n,
		Recorder:    rec,
		Ctx:         ctx,
		Watchlist:   watchlist,
		HistoryDays: historyDays,
	}
}

// RegisterAll registers the trading cycle and the daily reset task.
func (s *Scheduler) RegisterAll(cycleCron, dailyResetCron string) error {
	if _, err := s.Cron.AddFunc(cycleCron, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	if _, err := s.Cron.AddFunc(dailyResetCron, s.dailyReset); err != nil {
		return fmt.Errorf("register daily reset: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunCycleNow executes the trading cycle immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunCycleNow() {
	s.cycleTask()
}

// signalFor computes the current signal for one ticker: collect and enrich
// its history, train a model on the labeled rows, and predict from the
// latest bar's features with the rule model as fallback.
func (s *Scheduler) signalFor(ticker string) (model.Label, error) {
	series, err := s.Collector.Collect(s.Ctx, ticker, s.HistoryDays)
	if err != nil {
		return model.SignalHold, err
	}
	if len(series.Bars) == 0 {
		return model.SignalHold, fmt.Errorf("%w: %s", model.ErrDataUnavailable, ticker)
	}

	members := []classifier.Model{}
	if trained, err := s.Trainer.Train(series.Bars); err != nil {
		log.Printf("[WARN] %s: training failed (%v), using rule fallback", ticker, err)
	} else {
		members = append(members, trained)
	}
	members = append(members, classifier.RuleModel{})

	latest := series.Bars[len(series.Bars)-1]
	pred, ok := classifier.NewChain(members...).Predict(latest.Features())
	if !ok {
		return model.SignalHold, nil
	}
	return pred.Label, nil
}

func (s *Scheduler) cycleTask() {
	log.Printf("[INFO] running trading cycle over %d tickers", len(s.Watchlist))

	signals := make(map[string]model.Label, len(s.Watchlist))
	for _, ticker := range s.Watchlist {
		if s.Ctx.Err() != nil {
			log.Println("[WARN] cycle cancelled during signal collection")
			return
		}
		sig, err := s.signalFor(ticker)
		if err != nil {
			log.Printf("[WARN] %s: no signal this cycle: %v", ticker, err)
			continue
		}
		signals[ticker] = sig
	}

	results := s.Paper.RunCycle(s.Ctx, signals)
	for i := range results {
		r := &results[i]
		if err := s.Recorder.RecordCycleEvent(&recorder.CycleEvent{
			Ticker:     r.Ticker,
			Status:     string(r.Status),
			Action:     r.Action,
			Price:      r.Price,
			Quantity:   r.Quantity,
			PnL:        r.PnL,
			ExitReason: string(r.ExitReason),
			Reason:     r.Reason,
			At:         r.At,
		}); err != nil {
			log.Printf("[ERROR] record cycle event: %v", err)
		}
	}

	s.trySend(notifier.FormatCycleResults(results))
}

func (s *Scheduler) dailyReset() {
	s.Paper.ResetDaily()
	log.Println("[INFO] daily P&L tracking reset")

	status := s.Paper.Status(s.Ctx)
	if err := s.Recorder.RecordSnapshot(&model.PortfolioSnapshot{
		Date:           time.Now().Truncate(24 * time.Hour),
		Capital:        status.CurrentCapital,
		PortfolioValue: status.CurrentCapital + status.UnrealizedPnL,
	}); err != nil {
		log.Printf("[ERROR] record snapshot: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch strings.TrimSpace(command) {
	case "/status":
		return notifier.FormatPortfolioStatus(s.Paper.Status(s.Ctx))
	case "/positions":
		return notifier.FormatPositions(s.Paper.Status(s.Ctx).Positions)
	case "/trades":
		return notifier.FormatTrades(s.Risk.RecentTrades(10))
	case "/cycle":
		go s.cycleTask()
		return "Cycle started."
	default:
		return "Commands:\n• /status\n• /positions\n• /trades\n• /cycle"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
