package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"market-cache/src/helpers"
	"market-cache/src/logger"
	"market-cache/src/models"

	"github.com/lib/pq"
)

const defaultPostgresSchema = "market_cache"

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, fmt.Errorf("postgres: db_connection_string is required")
	}

	schema := cfg.Storage.Schema
	if schema == "" {
		schema = defaultPostgresSchema
	}
	if !identRegex.MatchString(schema) {
		return nil, fmt.Errorf("postgres: invalid schema name %q", schema)
	}

	return &PostgresDB{
		Config: cfg,
		Schema: schema,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s"."price_history" (
				symbol     TEXT NOT NULL,
				date       DATE NOT NULL,
				open       DOUBLE PRECISION,
				high       DOUBLE PRECISION,
				low        DOUBLE PRECISION,
				close      DOUBLE PRECISION NOT NULL,
				volume     DOUBLE PRECISION,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (symbol, date)
			)`, d.Schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_price_history_date ON "%s"."price_history"(date)`, d.Schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s"."symbols" (
				symbol     TEXT PRIMARY KEY,
				type       TEXT,
				ref_schema TEXT,
				ref_table  TEXT,
				ref_field  TEXT,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`, d.Schema),
	}
	for _, s := range stmts {
		if _, err := d.DB.Exec(s); err != nil {
			return fmt.Errorf("failed to create tables in %s: %w", d.Schema, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) UpsertPriceBars(ctx context.Context, bars []models.MPriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewDatabaseError("begin upsert", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."price_history" (symbol, date, open, high, low, close, volume, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			updated_at = EXCLUDED.updated_at
	`, d.Schema)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return helpers.NewDatabaseError("prepare upsert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
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

func (d *PostgresDB) DeletePriceBars(ctx context.Context, symbols []string) (int64, error) {
	if len(symbols) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM "%s"."price_history" WHERE symbol = ANY($1)`, d.Schema)
	res, err := d.DB.ExecContext(ctx, query, pq.Array(symbols))
	if err != nil {
		return 0, helpers.NewDatabaseError("delete price_history", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) QueryPriceBars(ctx context.Context, symbols []string, startDate string, limit int) ([]models.MPriceBar, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT symbol, to_char(date, 'YYYY-MM-DD'), open, high, low, close, volume
		FROM "%s"."price_history"
		WHERE symbol = ANY($1) AND date >= $2::date
		ORDER BY date ASC, symbol ASC
		LIMIT $3`, d.Schema)

	rows, err := d.DB.QueryContext(ctx, query, pq.Array(symbols), startDate, limit)
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

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
