package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"SwingLab/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the trader writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			signal      TEXT,
			entry_date  INTEGER,
			entry_price REAL,
			exit_date   INTEGER,
			exit_price  REAL,
			return_pct  REAL,
			exit_reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades(ticker)`,

		`CREATE TABLE IF NOT EXISTS daily_snapshots (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			snapshot_date   INTEGER NOT NULL,
			capital         REAL,
			portfolio_value REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_date ON daily_snapshots(snapshot_date)`,

		`CREATE TABLE IF NOT EXISTS cycle_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			status      TEXT,
			action      TEXT,
			price       REAL,
			quantity    INTEGER,
			pnl         REAL,
			exit_reason TEXT,
			reason      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_ts ON cycle_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS run_summaries (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			tickers          INTEGER,
			trades           INTEGER,
			final_capital    REAL,
			total_return_pct REAL,
			cagr_pct         REAL,
			sharpe_ratio     REAL,
			max_drawdown_pct REAL,
			win_rate_pct     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON run_summaries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(tr *model.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(timestamp, ticker, signal, entry_date, entry_price, exit_date, exit_price, return_pct, exit_reason)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), tr.Stock, string(tr.Signal),
		tr.Date.Unix(), tr.Entry, tr.ExitDate.Unix(), tr.Exit,
		tr.ReturnPct, string(tr.ExitReason),
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshot(snap *model.PortfolioSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO daily_snapshots
		(timestamp, snapshot_date, capital, portfolio_value)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), snap.Date.Unix(), snap.Capital, snap.PortfolioValue,
	)
	return err
}

func (r *SQLiteRecorder) RecordCycleEvent(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycle_events
		(timestamp, ticker, status, action, price, quantity, pnl, exit_reason, reason)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		evt.At.Unix(), evt.Ticker, evt.Status, evt.Action,
		evt.Price, evt.Quantity, evt.PnL, evt.ExitReason, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordRunSummary(sum *RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO run_summaries
		(timestamp, tickers, trades, final_capital, total_return_pct, cagr_pct, sharpe_ratio, max_drawdown_pct, win_rate_pct)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), sum.Tickers, sum.Trades, sum.FinalCapital,
		sum.TotalReturnPct, sum.CAGRPct, sum.SharpeRatio,
		sum.MaxDrawdownPct, sum.WinRatePct,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
