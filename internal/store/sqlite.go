package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"agriprice/internal/model"
)

// SQLiteStore persists the price dataset to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS commodities (
			name     TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS prices (
			commodity TEXT NOT NULL REFERENCES commodities(name),
			date      TEXT NOT NULL,
			price     REAL NOT NULL,
			PRIMARY KEY (commodity, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Commodities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM commodities ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query commodities: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan commodity: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Series(ctx context.Context, commodity string) (*model.Series, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM commodities WHERE name = ?`, commodity).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("lookup commodity: %w", err)
	}
	if exists == 0 {
		return nil, ErrUnknownCommodity
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, price FROM prices WHERE commodity = ? ORDER BY date`, commodity)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	series := &model.Series{Commodity: commodity}
	for rows.Next() {
		var date string
		var price float64
		if err := rows.Scan(&date, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		d, err := time.Parse(model.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		series.Points = append(series.Points, model.PricePoint{Date: d, Price: price})
	}
	return series, rows.Err()
}

// ReplaceAll swaps the stored dataset for ds in a single transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, ds *model.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prices`); err != nil {
		return fmt.Errorf("clear prices: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM commodities`); err != nil {
		return fmt.Errorf("clear commodities: %w", err)
	}

	insertPrice, err := tx.PrepareContext(ctx, `INSERT INTO prices (commodity, date, price) VALUES (?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insertPrice.Close()

	points := 0
	for i, series := range ds.Series {
		if _, err := tx.ExecContext(ctx, `INSERT INTO commodities (name, position) VALUES (?,?)`, series.Commodity, i); err != nil {
			return fmt.Errorf("insert commodity %s: %w", series.Commodity, err)
		}
		for _, p := range series.Points {
			if _, err := insertPrice.ExecContext(ctx, series.Commodity, p.Date.Format(model.DateLayout), p.Price); err != nil {
				return fmt.Errorf("insert price %s %s: %w", series.Commodity, p.Date.Format(model.DateLayout), err)
			}
			points++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Info("dataset replaced", zap.Int("commodities", len(ds.Series)), zap.Int("points", points))
	return nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite store")
	return s.db.Close()
}
