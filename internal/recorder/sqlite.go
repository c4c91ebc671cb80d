package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists dashboard history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stats_snapshots (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			commodity  TEXT NOT NULL,
			current    REAL,
			average    REAL,
			highest    REAL,
			lowest     REAL,
			last_date  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_commodity_ts ON stats_snapshots(commodity, timestamp)`,

		`CREATE TABLE IF NOT EXISTS prediction_requests (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			commodity   TEXT NOT NULL,
			months      INTEGER NOT NULL,
			dates       TEXT,
			predictions TEXT,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_ts ON prediction_requests(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(ctx context.Context, snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := snap.TakenAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO stats_snapshots
		(timestamp, commodity, current, average, highest, lowest, last_date)
		VALUES (?,?,?,?,?,?,?)`,
		ts.Unix(), snap.Commodity,
		snap.Stats.Current, snap.Stats.Average, snap.Stats.Highest, snap.Stats.Lowest,
		snap.LastDate,
	)
	return err
}

// RecordPrediction stores rec, assigning a fresh ID when it has none.
func (r *SQLiteRecorder) RecordPrediction(ctx context.Context, rec *PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	ts := rec.RequestedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	dates, err := json.Marshal(rec.Dates)
	if err != nil {
		return fmt.Errorf("marshal dates: %w", err)
	}
	preds, err := json.Marshal(rec.Predictions)
	if err != nil {
		return fmt.Errorf("marshal predictions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO prediction_requests
		(id, timestamp, commodity, months, dates, predictions, error)
		VALUES (?,?,?,?,?,?,?)`,
		rec.ID, ts.Unix(), rec.Commodity, rec.Months, string(dates), string(preds), rec.Err,
	)
	return err
}

// RecentSnapshots returns up to limit snapshots for commodity, newest first.
func (r *SQLiteRecorder) RecentSnapshots(ctx context.Context, commodity string, limit int) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT timestamp, current, average, highest, lowest, last_date
		FROM stats_snapshots WHERE commodity = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, commodity, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var ts int64
		s := Snapshot{Commodity: commodity}
		if err := rows.Scan(&ts, &s.Stats.Current, &s.Stats.Average, &s.Stats.Highest, &s.Stats.Lowest, &s.LastDate); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.TakenAt = time.Unix(ts, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
