package storage

import (
	"context"
	"fmt"
	"time"

	"market-cache/src/helpers"
)

// Info: universe expansion and symbol registry, Postgres only

// SymbolMetadata is one row of the symbols registry.
type SymbolMetadata struct {
	Symbol    string
	Type      string // "classic" or "postgres_ref"
	RefSchema string
	RefTable  string
	RefField  string
}

// -----------------------------------------------------------------------------

// ResolveUniverse expands schema.table.field entries into the symbols stored in
// that column, registers every entry, and returns the de-duplicated list.
func (d *PostgresDB) ResolveUniverse(ctx context.Context, raw []string) ([]string, error) {
	var resolved []string
	var registry []SymbolMetadata

	for _, entry := range raw {
		ref, ok := ParseTableRef(entry)
		if !ok {
			resolved = append(resolved, entry)
			registry = append(registry, SymbolMetadata{Symbol: entry, Type: "classic"})
			continue
		}

		registry = append(registry, SymbolMetadata{
			Symbol:    entry,
			Type:      "postgres_ref",
			RefSchema: ref.Schema,
			RefTable:  ref.Table,
			RefField:  ref.Field,
		})

		loaded, err := d.GetSymbolsFromTable(ctx, ref)
		if err != nil {
			return nil, helpers.NewDatabaseError(fmt.Sprintf("load symbols from %s", entry), err)
		}
		resolved = append(resolved, loaded...)
	}

	if err := d.RegisterSymbols(ctx, registry); err != nil {
		d.Logger.Warning("Failed to register universe symbols: %v", err)
	}

	return UniqueSymbols(resolved), nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) RegisterSymbols(ctx context.Context, symbols []SymbolMetadata) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."symbols" (symbol, type, ref_schema, ref_table, ref_field, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol) DO UPDATE SET
			type = EXCLUDED.type,
			ref_schema = EXCLUDED.ref_schema,
			ref_table = EXCLUDED.ref_table,
			ref_field = EXCLUDED.ref_field,
			updated_at = EXCLUDED.updated_at
	`, d.Schema)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range symbols {
		if _, err := stmt.ExecContext(ctx, s.Symbol, s.Type, s.RefSchema, s.RefTable, s.RefField, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// symbolsFromTableQuery selects one text column in a stable order, so universe
// index k names the same symbol in every process. Identifiers are \w+ only,
// so quoting them is enough.
func symbolsFromTableQuery(ref TableRef) string {
	return fmt.Sprintf(`SELECT DISTINCT "%s" FROM "%s"."%s" WHERE "%s" IS NOT NULL ORDER BY "%s" ASC`,
		ref.Field, ref.Schema, ref.Table, ref.Field, ref.Field)
}

// GetSymbolsFromTable reads one text column, sorted ascending.
func (d *PostgresDB) GetSymbolsFromTable(ctx context.Context, ref TableRef) ([]string, error) {
	rows, err := d.DB.QueryContext(ctx, symbolsFromTableQuery(ref))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}
