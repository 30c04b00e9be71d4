package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Watchlist []string `yaml:"watchlist"`

	Capital struct {
		Initial  float64 `yaml:"initial"`
		CostRate float64 `yaml:"cost_rate"`
	} `yaml:"capital"`

	Risk struct {
		MaxPositionSizePct float64 `yaml:"max_position_size_pct"`
		MaxDailyLossPct    float64 `yaml:"max_daily_loss_pct"`
		MaxDrawdownPct     float64 `yaml:"max_drawdown_pct"`
		StopLossPct        float64 `yaml:"stop_loss_pct"`
		RiskPerTradePct    float64 `yaml:"risk_per_trade_pct"`
		StateFile          string  `yaml:"state_file"`
	} `yaml:"risk"`

	Exit struct {
		TakeProfitPct  float64 `yaml:"take_profit_pct"`
		StopLossPct    float64 `yaml:"stop_loss_pct"`
		TrailStop      *bool   `yaml:"trail_stop"`
		TrailPct       float64 `yaml:"trail_pct"`
		MinHoldDays    int     `yaml:"min_hold_days"`
		EarlyProfitPct float64 `yaml:"early_profit_pct"`
		MaxHoldDays    int     `yaml:"max_hold_days"`
	} `yaml:"exit"`

	Backtest struct {
		HistoryDays    int     `yaml:"history_days"`
		TrainSplit     float64 `yaml:"train_split"`
		MinHistoryBars int     `yaml:"min_history_bars"`
	} `yaml:"backtest"`

	Schedule struct {
		CycleCron      string `yaml:"cycle_cron"`
		DailyResetCron string `yaml:"daily_reset_cron"`
	} `yaml:"schedule"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SWINGLAB_WATCHLIST"); v != "" {
		cfg.Watchlist = nil
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Watchlist = append(cfg.Watchlist, t)
			}
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		var capital float64
		if _, err := fmt.Sscanf(v, "%f", &capital); err == nil {
			cfg.Capital.Initial = capital
		}
	}
	if v := os.Getenv("CRON_CYCLE"); v != "" {
		cfg.Schedule.CycleCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []string{"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS"}
	}
	if cfg.Capital.Initial == 0 {
		cfg.Capital.Initial = 100000
	}
	if cfg.Capital.CostRate == 0 {
		cfg.Capital.CostRate = 0.002
	}
	if cfg.Risk.MaxPositionSizePct == 0 {
		cfg.Risk.MaxPositionSizePct = 0.20
	}
	if cfg.Risk.MaxDailyLossPct == 0 {
		cfg.Risk.MaxDailyLossPct = 0.05
	}
	if cfg.Risk.MaxDrawdownPct == 0 {
		cfg.Risk.MaxDrawdownPct = 0.15
	}
	if cfg.Risk.StopLossPct == 0 {
		cfg.Risk.StopLossPct = 0.05
	}
	if cfg.Risk.RiskPerTradePct == 0 {
		cfg.Risk.RiskPerTradePct = 0.02
	}
	if cfg.Risk.StateFile == "" {
		cfg.Risk.StateFile = "data/risk_state.json"
	}
	if cfg.Exit.TakeProfitPct == 0 {
		cfg.Exit.TakeProfitPct = 0.10
	}
	if cfg.Exit.StopLossPct == 0 {
		cfg.Exit.StopLossPct = 0.07
	}
	if cfg.Exit.TrailStop == nil {
		t := true
		cfg.Exit.TrailStop = &t
	}
	if cfg.Exit.TrailPct == 0 {
		cfg.Exit.TrailPct = 0.04
	}
	if cfg.Exit.MinHoldDays == 0 {
		cfg.Exit.MinHoldDays = 10
	}
	if cfg.Exit.EarlyProfitPct == 0 {
		cfg.Exit.EarlyProfitPct = 2.0
	}
	if cfg.Exit.MaxHoldDays == 0 {
		cfg.Exit.MaxHoldDays = 20
	}
	if cfg.Backtest.HistoryDays == 0 {
		cfg.Backtest.HistoryDays = 1250
	}
	if cfg.Backtest.TrainSplit == 0 {
		cfg.Backtest.TrainSplit = 0.8
	}
	if cfg.Backtest.MinHistoryBars == 0 {
		cfg.Backtest.MinHistoryBars = 40
	}
	if cfg.Schedule.CycleCron == "" {
		// Weekdays at 15:45 IST, shortly before NSE close.
		cfg.Schedule.CycleCron = "0 45 15 * * 1-5"
	}
	if cfg.Schedule.DailyResetCron == "" {
		cfg.Schedule.DailyResetCron = "0 0 9 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/swinglab.db"
	}

	return cfg, nil
}

// Validate checks field ranges. Telegram credentials are optional; the live
// runner degrades to log-only notification without them.
func (c *Config) Validate() error {
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	if c.Capital.Initial <= 0 {
		return fmt.Errorf("capital.initial must be positive")
	}
	if c.Capital.CostRate < 0 || c.Capital.CostRate >= 0.1 {
		return fmt.Errorf("capital.cost_rate must be in [0, 0.1)")
	}
	if c.Risk.MaxPositionSizePct <= 0 || c.Risk.MaxPositionSizePct > 1 {
		return fmt.Errorf("risk.max_position_size_pct must be in (0, 1]")
	}
	if c.Risk.MaxDrawdownPct <= 0 || c.Risk.MaxDrawdownPct > 1 {
		return fmt.Errorf("risk.max_drawdown_pct must be in (0, 1]")
	}
	if c.Risk.StopLossPct <= 0 || c.Risk.StopLossPct >= 1 {
		return fmt.Errorf("risk.stop_loss_pct must be in (0, 1)")
	}
	if c.Backtest.TrainSplit <= 0 || c.Backtest.TrainSplit >= 1 {
		return fmt.Errorf("backtest.train_split must be in (0, 1)")
	}
	if c.Exit.MinHoldDays >= c.Exit.MaxHoldDays {
		return fmt.Errorf("exit.min_hold_days must be below exit.max_hold_days")
	}
	return nil
}
