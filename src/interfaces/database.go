package interfaces

import (
	"context"

	"market-cache/src/models"
)

// -----------------------------------------------------------------------------
// IPriceStore defines the contract for the durable price cache.
// -----------------------------------------------------------------------------

type IPriceStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// ResolveUniverse expands configured universe entries into plain symbols.
	ResolveUniverse(ctx context.Context, raw []string) ([]string, error)

	// -----------------------------------------------------------------------------

	// UpsertPriceBars writes bars keyed on (symbol, date); an existing row is replaced.
	UpsertPriceBars(ctx context.Context, bars []models.MPriceBar) error

	// -----------------------------------------------------------------------------

	// DeletePriceBars removes every cached row for the given symbols.
	DeletePriceBars(ctx context.Context, symbols []string) (int64, error)

	// -----------------------------------------------------------------------------

	// QueryPriceBars returns rows with symbol in symbols and date >= startDate,
	// ordered by date ascending and capped at limit rows.
	QueryPriceBars(ctx context.Context, symbols []string, startDate string, limit int) ([]models.MPriceBar, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
