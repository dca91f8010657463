package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.KlineRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

var _ ports.KlineRepository = (*Repository)(nil)

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/klines.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %w", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %w", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY between them.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS klines (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		open_time INTEGER NOT NULL, -- unix milliseconds
		close_time INTEGER NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (symbol, interval, open_time)
	);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to execute schema initialization: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveKlines inserts or replaces klines in a single transaction and returns
// the number written.
func (r *Repository) SaveKlines(ctx context.Context, klines []*domain.Kline) (int, error) {
	if len(klines) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %w", ports.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	const query = `
	INSERT OR REPLACE INTO klines (symbol, interval, open_time, close_time, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prepare insert: %w", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for _, k := range klines {
		if k.Symbol == "" || k.Interval == "" {
			return 0, fmt.Errorf("%w: kline at %s has no symbol or interval", ports.ErrInvalidRequest, k.OpenTime.Format(time.RFC3339))
		}
		if _, err := stmt.ExecContext(ctx,
			k.Symbol, k.Interval, k.OpenTime.UnixMilli(), k.CloseTime.UnixMilli(),
			k.Open, k.High, k.Low, k.Close, k.Volume); err != nil {
			return 0, fmt.Errorf("%w: failed to insert kline %s %s %d: %w",
				ports.ErrQueryFailed, k.Symbol, k.Interval, k.OpenTime.UnixMilli(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit klines: %w", ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Klines saved", map[string]interface{}{
		"symbol": klines[0].Symbol,
		"count":  len(klines),
	})
	return len(klines), nil
}

// LoadKlines returns the klines matching q in ascending open time. With a
// positive Limit only the most recent Limit klines are returned.
func (r *Repository) LoadKlines(ctx context.Context, q ports.KlineQuery) ([]*domain.Kline, error) {
	if q.Symbol == "" || q.Interval == "" {
		return nil, fmt.Errorf("%w: symbol and interval are required", ports.ErrInvalidRequest)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT symbol, interval, open_time, close_time, open, high, low, close, volume
	FROM klines WHERE symbol = ? AND interval = ?`)
	args := []interface{}{q.Symbol, q.Interval}
	if !q.Start.IsZero() {
		sb.WriteString(" AND open_time >= ?")
		args = append(args, q.Start.UnixMilli())
	}
	if !q.End.IsZero() {
		sb.WriteString(" AND open_time <= ?")
		args = append(args, q.End.UnixMilli())
	}
	sb.WriteString(" ORDER BY open_time DESC")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query klines for %s %s: %w", ports.ErrQueryFailed, q.Symbol, q.Interval, err)
	}
	defer rows.Close()

	var klines []*domain.Kline
	for rows.Next() {
		k, err := scanKline(rows)
		if err != nil {
			return nil, err
		}
		klines = append(klines, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating klines: %w", ports.ErrQueryFailed, err)
	}

	// Rows come newest first so LIMIT keeps the latest bars.
	for i, j := 0, len(klines)-1; i < j; i, j = i+1, j-1 {
		klines[i], klines[j] = klines[j], klines[i]
	}
	return klines, nil
}

// Symbols lists the stored series.
func (r *Repository) Symbols(ctx context.Context) ([]ports.SeriesKey, error) {
	const query = `SELECT DISTINCT symbol, interval FROM klines ORDER BY symbol, interval`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list series: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var keys []ports.SeriesKey
	for rows.Next() {
		var key ports.SeriesKey
		if err := rows.Scan(&key.Symbol, &key.Interval); err != nil {
			return nil, fmt.Errorf("%w: failed to scan series key: %w", ports.ErrQueryFailed, err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanKline(s scanner) (*domain.Kline, error) {
	var k domain.Kline
	var openMs, closeMs int64
	if err := s.Scan(&k.Symbol, &k.Interval, &openMs, &closeMs, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume); err != nil {
		return nil, fmt.Errorf("%w: failed to scan kline: %w", ports.ErrQueryFailed, err)
	}
	k.OpenTime = time.UnixMilli(openMs).UTC()
	k.CloseTime = time.UnixMilli(closeMs).UTC()
	return &k, nil
}
