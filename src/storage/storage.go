package storage

import (
	"fmt"
	"regexp"
	"strings"

	"market-cache/src/interfaces"
	"market-cache/src/logger"
	"market-cache/src/models"
)

// tableRefRegex matches a universe entry of the form schema.table.field.
var tableRefRegex = regexp.MustCompile(`^(\w+)\.(\w+)\.(\w+)$`)

var identRegex = regexp.MustCompile(`^\w+$`)

// TableRef points at a column holding symbols.
type TableRef struct {
	Schema string
	Table  string
	Field  string
}

// ParseTableRef reports whether entry is a schema.table.field reference.
// Exchange-qualified tickers like "TCS.NS" have a single separator and never match.
func ParseTableRef(entry string) (TableRef, bool) {
	m := tableRefRegex.FindStringSubmatch(entry)
	if len(m) != 4 {
		return TableRef{}, false
	}
	return TableRef{Schema: m[1], Table: m[2], Field: m[3]}, true
}

// -----------------------------------------------------------------------------

// UniqueSymbols trims, drops blanks and de-duplicates, keeping first-seen order.
func UniqueSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// -----------------------------------------------------------------------------

// NewPriceStore picks the backend named by storage.db_type. SQLite is the default.
func NewPriceStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IPriceStore, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		return NewPostgresDB(cfg, log.Named("PostgresDB"))
	case "sqlite", "":
		return NewSQLiteDB(cfg, log.Named("SQLiteDB"))
	default:
		return nil, fmt.Errorf("unsupported db_type %q", cfg.Storage.DBType)
	}
}
