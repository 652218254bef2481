package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"PortfolioSentinel/internal/model"
)

// SQLiteRecorder persists funding history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while
	// the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS funding_cycles (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			equity         REAL,
			cash           REAL,
			buying_power   REAL,
			daily_funding  REAL,
			funding_today  REAL,
			days_elapsed   INTEGER,
			days_remaining INTEGER,
			order_count    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON funding_cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    INTEGER NOT NULL,
			timestamp   INTEGER NOT NULL,
			order_id    TEXT,
			symbol      TEXT,
			amount      REAL,
			limit_price REAL,
			qty         INTEGER,
			FOREIGN KEY (cycle_id) REFERENCES funding_cycles(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_ts ON orders(timestamp)`,

		`CREATE TABLE IF NOT EXISTS account_snapshots (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			equity       REAL,
			cash         REAL,
			buying_power REAL,
			invested     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON account_snapshots(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCycle stores one completed funding cycle together with its orders.
func (r *SQLiteRecorder) RecordCycle(rec *model.CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.Time.Unix()
	res, err := r.db.Exec(`INSERT INTO funding_cycles
		(timestamp, equity, cash, buying_power, daily_funding, funding_today,
		 days_elapsed, days_remaining, order_count)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		ts, rec.Equity, rec.Cash, rec.BuyingPower,
		rec.DailyFunding, rec.FundingToday,
		rec.DaysElapsed, rec.DaysRemaining, len(rec.Orders),
	)
	if err != nil {
		return err
	}
	cycleID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, o := range rec.Orders {
		if _, err := r.db.Exec(`INSERT INTO orders
			(cycle_id, timestamp, order_id, symbol, amount, limit_price, qty)
			VALUES (?,?,?,?,?,?,?)`,
			cycleID, ts, o.OrderID, o.Symbol, o.Amount, o.LimitPrice, o.Qty,
		); err != nil {
			return err
		}
	}
	return nil
}

// RecordAccountSnapshot stores the account figures for trend reporting.
func (r *SQLiteRecorder) RecordAccountSnapshot(acct model.AccountSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO account_snapshots
		(timestamp, equity, cash, buying_power, invested)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), acct.Equity, acct.Cash, acct.BuyingPower, acct.Invested(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
