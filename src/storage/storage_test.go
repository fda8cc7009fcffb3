package storage

import (
	"testing"

	"market-cache/src/logger"
	"market-cache/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableRef(t *testing.T) {
	ref, ok := ParseTableRef("public.watchlist.ticker")
	require.True(t, ok)
	assert.Equal(t, TableRef{Schema: "public", Table: "watchlist", Field: "ticker"}, ref)

	for _, s := range []string{"TCS.NS", "AAPL", "a.b.c.d", "bad-name.t.f"} {
		_, ok := ParseTableRef(s)
		assert.False(t, ok, s)
	}
}

func TestNewPriceStoreSelectsBackend(t *testing.T) {
	log := logger.NewLogger("StorageTest")

	cfg := &models.MConfig{}
	cfg.Storage.DBPath = "cache.db"
	store, err := NewPriceStore(cfg, log)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteDB{}, store)

	cfg.Storage.DBType = "postgres"
	cfg.Storage.DBConnectionString = "postgres://localhost/cache?sslmode=disable"
	store, err = NewPriceStore(cfg, log)
	require.NoError(t, err)
	pg := store.(*PostgresDB)
	assert.Equal(t, defaultPostgresSchema, pg.Schema)

	cfg.Storage.Schema = "bad schema"
	_, err = NewPriceStore(cfg, log)
	assert.Error(t, err)

	cfg.Storage.DBType = "mongo"
	_, err = NewPriceStore(cfg, log)
	assert.Error(t, err)
}

func TestSymbolsFromTableQueryIsOrdered(t *testing.T) {
	q := symbolsFromTableQuery(TableRef{Schema: "public", Table: "watchlist", Field: "ticker"})

	assert.Equal(t,
		`SELECT DISTINCT "ticker" FROM "public"."watchlist" WHERE "ticker" IS NOT NULL ORDER BY "ticker" ASC`, q)
}
