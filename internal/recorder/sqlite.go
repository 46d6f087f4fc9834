package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"DrawdownSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			period           TEXT,
			symbol_count     INTEGER,
			fg_score         REAL,
			fg_rating        TEXT,
			fg_prev_close    REAL,
			fg_error         TEXT,
			delivered        INTEGER,
			message_id       TEXT,
			delivery_error   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON report_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS symbol_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           INTEGER NOT NULL REFERENCES report_runs(id),
			timestamp        INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			period           TEXT,
			samples          INTEGER,
			peak_price       REAL,
			current_price    REAL,
			drawdown_pct     REAL,
			max_drawdown_pct REAL,
			signal           TEXT,
			ma_window        INTEGER,
			ma_value         REAL,
			ma_diff_pct      REAL,
			ma_position      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON symbol_snapshots(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordReport stores one run row and a snapshot row per symbol in a single transaction.
func (r *SQLiteRecorder) RecordReport(rep *model.DailyReport, delivery model.DeliveryResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rep.GeneratedAt.Unix()
	sent := rep.Sentiment

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO report_runs
		(timestamp, period, symbol_count, fg_score, fg_rating, fg_prev_close, fg_error,
		 delivered, message_id, delivery_error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		ts, string(rep.Period), len(rep.Symbols),
		nullFloat(sent.Score), string(sent.Rating), nullFloat(sent.PreviousClose), sent.Error,
		delivery.OK, delivery.MessageID, delivery.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, s := range rep.Symbols {
		var (
			window   int
			maValue  sql.NullFloat64
			maDiff   sql.NullFloat64
			position string
		)
		if s.Trend != nil {
			window = s.Trend.Window
			maValue = nullFloat(s.Trend.MAValue)
			maDiff = nullFloat(s.Trend.DiffPct)
			position = string(s.Trend.Position)
		}
		if _, err := tx.Exec(`INSERT INTO symbol_snapshots
			(run_id, timestamp, symbol, period, samples, peak_price, current_price,
			 drawdown_pct, max_drawdown_pct, signal, ma_window, ma_value, ma_diff_pct, ma_position)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			runID, ts, s.Symbol, string(rep.Period), s.Samples,
			s.Drawdown.PeakPrice, s.Drawdown.CurrentPrice, s.Drawdown.DrawdownPct, s.MaxDrawdownPct,
			s.Signal.String(), window, maValue, maDiff, position,
		); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", s.Symbol, err)
		}
	}

	return tx.Commit()
}

// History returns the most recent snapshots of symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]SymbolSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, period, peak_price, current_price,
			drawdown_pct, max_drawdown_pct, signal, ma_value, ma_diff_pct
		FROM symbol_snapshots WHERE symbol = ?
		ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []SymbolSnapshot
	for rows.Next() {
		var (
			ts      int64
			period  string
			snap    SymbolSnapshot
			maValue sql.NullFloat64
			maDiff  sql.NullFloat64
		)
		if err := rows.Scan(&ts, &period, &snap.PeakPrice, &snap.CurrentPrice,
			&snap.DrawdownPct, &snap.MaxDrawdownPct, &snap.Signal, &maValue, &maDiff); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		snap.RecordedAt = time.Unix(ts, 0)
		snap.Period = model.Period(period)
		if maValue.Valid {
			v := maValue.Float64
			snap.MAValue = &v
		}
		if maDiff.Valid {
			v := maDiff.Float64
			snap.MADiffPct = &v
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
