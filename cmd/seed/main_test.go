package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"market-cache/src/logger"
	"market-cache/src/mocks"
	"market-cache/src/models"
	"market-cache/src/seeder"
	"market-cache/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func fp(v float64) *float64 { return &v }

func newSeeder(t *testing.T, universe ...string) (*seeder.Seeder, *mocks.MockIQuoteClient) {
	t.Helper()
	cfg := &models.MConfig{}
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "seed.db")
	cfg.Seeder.Universe = universe
	cfg.Seeder.BatchSize = 2
	cfg.Seeder.MaxBatchSize = 5
	cfg.Seeder.RequestDelayMs = -1

	log := logger.NewLogger("SeedCLITest")
	store, err := storage.NewSQLiteDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })

	quotes := mocks.NewMockIQuoteClient(gomock.NewController(t))
	return seeder.NewSeeder(cfg, store, quotes, log), quotes
}

func oneDay(_ context.Context, symbol, _, _ string) (*models.MQuoteHistory, error) {
	return &models.MQuoteHistory{Symbol: symbol, Dates: []string{"2024-01-02"}, Close: []*float64{fp(1)}}, nil
}

func summaries(t *testing.T, out string) []models.MSeedSummary {
	t.Helper()
	var list []models.MSeedSummary
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var s models.MSeedSummary
		require.NoError(t, json.Unmarshal([]byte(line), &s), line)
		list = append(list, s)
	}
	return list
}

// -----------------------------------------------------------------------------

func TestWalkCursorPrintsEveryBatch(t *testing.T) {
	sd, quotes := newSeeder(t, "A", "B", "C")
	quotes.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(oneDay).Times(2)

	var out bytes.Buffer
	require.NoError(t, walkCursor(t.Context(), sd, &out, 1, 0, false, false))

	list := summaries(t, out.String())
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].BatchStart)
	assert.Equal(t, 3, list[0].BatchEnd)
	assert.Nil(t, list[0].NextBatch)
}

func TestWalkCursorOnce(t *testing.T) {
	sd, quotes := newSeeder(t, "A", "B", "C")
	quotes.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(oneDay).Times(1)

	var out bytes.Buffer
	require.NoError(t, walkCursor(t.Context(), sd, &out, 0, 1, false, true))

	list := summaries(t, out.String())
	require.Len(t, list, 1)
	require.NotNil(t, list[0].NextBatch)
	assert.Equal(t, 1, *list[0].NextBatch)
}

func TestWalkCursorPrintsInterruptedBatch(t *testing.T) {
	sd, quotes := newSeeder(t, "A", "B")
	sd.Config.Seeder.RequestDelayMs = 0
	ctx, cancel := context.WithCancel(t.Context())
	sd.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	quotes.EXPECT().FetchHistory(gomock.Any(), "A", gomock.Any(), gomock.Any()).DoAndReturn(oneDay)

	var out bytes.Buffer
	err := walkCursor(ctx, sd, &out, 0, 0, false, false)
	assert.ErrorIs(t, err, context.Canceled)

	list := summaries(t, out.String())
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Processed)
}
