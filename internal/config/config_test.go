package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Capital.Initial != 100000 {
		t.Errorf("initial capital = %v, want 100000", cfg.Capital.Initial)
	}
	if cfg.Risk.MaxDrawdownPct != 0.15 {
		t.Errorf("max drawdown = %v, want 0.15", cfg.Risk.MaxDrawdownPct)
	}
	if cfg.Exit.MaxHoldDays != 20 {
		t.Errorf("max hold days = %v, want 20", cfg.Exit.MaxHoldDays)
	}
	if cfg.Exit.TrailStop == nil || !*cfg.Exit.TrailStop {
		t.Error("trailing stop must default on")
	}
	if len(cfg.Watchlist) == 0 {
		t.Error("watchlist must have a default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
watchlist: [AAA.NS, BBB.NS]
capital:
  initial: 500000
  cost_rate: 0.001
risk:
  max_drawdown_pct: 0.25
exit:
  trail_stop: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Watchlist) != 2 || cfg.Watchlist[0] != "AAA.NS" {
		t.Errorf("watchlist = %v", cfg.Watchlist)
	}
	if cfg.Capital.Initial != 500000 {
		t.Errorf("initial capital = %v, want 500000", cfg.Capital.Initial)
	}
	if cfg.Risk.MaxDrawdownPct != 0.25 {
		t.Errorf("max drawdown = %v, want 0.25", cfg.Risk.MaxDrawdownPct)
	}
	if cfg.Exit.TrailStop == nil || *cfg.Exit.TrailStop {
		t.Error("trail_stop: false must survive default filling")
	}
	// Unset sections still get defaults.
	if cfg.Exit.TakeProfitPct != 0.10 {
		t.Errorf("take profit = %v, want 0.10", cfg.Exit.TakeProfitPct)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SWINGLAB_WATCHLIST", "X.NS, Y.NS")
	t.Setenv("INITIAL_CAPITAL", "250000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Watchlist) != 2 || cfg.Watchlist[1] != "Y.NS" {
		t.Errorf("watchlist = %v, want [X.NS Y.NS]", cfg.Watchlist)
	}
	if cfg.Capital.Initial != 250000 {
		t.Errorf("initial capital = %v, want 250000", cfg.Capital.Initial)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty watchlist", func(c *Config) { c.Watchlist = nil }},
		{"negative capital", func(c *Config) { c.Capital.Initial = -1 }},
		{"cost rate too high", func(c *Config) { c.Capital.CostRate = 0.5 }},
		{"drawdown over 1", func(c *Config) { c.Risk.MaxDrawdownPct = 1.5 }},
		{"bad train split", func(c *Config) { c.Backtest.TrainSplit = 1.0 }},
		{"hold window inverted", func(c *Config) { c.Exit.MinHoldDays = 30 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
