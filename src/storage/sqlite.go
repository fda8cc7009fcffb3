package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"market-cache/src/helpers"
	"market-cache/src/logger"
	"market-cache/src/models"

	_ "modernc.org/sqlite"
)

// SQLite caps bound parameters per statement.
const sqliteMaxVars = 32000

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, fmt.Errorf("sqlite: db_path is required")
	}
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		d.Logger.Warning("Failed to set busy timeout: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

// createTables is idempotent; cached history survives restarts.
func (d *SQLiteDB) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_history (
			symbol     TEXT NOT NULL,
			date       TEXT NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL NOT NULL,
			volume     REAL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_date ON price_history(date)`,
	}
	for _, s := range stmts {
		if _, err := d.DB.Exec(s); err != nil {
			return fmt.Errorf("failed to create price_history: %w", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// ResolveUniverse only accepts plain symbols; table references need Postgres.
func (d *SQLiteDB) ResolveUniverse(_ context.Context, raw []string) ([]string, error) {
	for _, entry := range raw {
		if _, ok := ParseTableRef(entry); ok {
			return nil, &helpers.ConfigurationError{MarketCacheError: helpers.MarketCacheError{
				Message: fmt.Sprintf("universe entry %q is a table reference; only the postgres backend can expand it", entry),
			}}
		}
	}
	return UniqueSymbols(raw), nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) UpsertPriceBars(ctx context.Context, bars []models.MPriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewDatabaseError("begin upsert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (symbol, date, open, high, low, close, volume, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return helpers.NewDatabaseError("prepare upsert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Unix()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, now); err != nil {
			return helpers.NewDatabaseError(fmt.Sprintf("upsert %s %s", b.Symbol, b.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewDatabaseError("commit upsert", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DeletePriceBars(ctx context.Context, symbols []string) (int64, error) {
	if len(symbols) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf("DELETE FROM price_history WHERE symbol IN (%s)", placeholders(len(symbols)))
	res, err := d.DB.ExecContext(ctx, query, toArgs(symbols)...)
	if err != nil {
		return 0, helpers.NewDatabaseError("delete price_history", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) QueryPriceBars(ctx context.Context, symbols []string, startDate string, limit int) ([]models.MPriceBar, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	if len(symbols)+2 > sqliteMaxVars {
		return nil, helpers.NewValidationError("too many symbols in one query: %d", len(symbols))
	}

	query := fmt.Sprintf(`
		SELECT symbol, date, open, high, low, close, volume
		FROM price_history
		WHERE symbol IN (%s) AND date >= ?
		ORDER BY date ASC, symbol ASC
		LIMIT ?`, placeholders(len(symbols)))

	args := append(toArgs(symbols), startDate, limit)
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, helpers.NewDatabaseError("query price_history", err)
	}
	defer rows.Close()

	var bars []models.MPriceBar
	for rows.Next() {
		var b models.MPriceBar
		var open, high, low, volume sql.NullFloat64
		if err := rows.Scan(&b.Symbol, &b.Date, &open, &high, &low, &b.Close, &volume); err != nil {
			return nil, helpers.NewDatabaseError("scan price_history", err)
		}
		b.Open, b.High, b.Low, b.Volume = open.Float64, high.Float64, low.Float64, volume.Float64
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("iterate price_history", err)
	}
	return bars, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(symbols []string) []interface{} {
	args := make([]interface{}, len(symbols))
	for i, s := range symbols {
		args[i] = s
	}
	return args
}
