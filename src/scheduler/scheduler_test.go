package scheduler

import (
	"context"
	"path/filepath"
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

func newSweeper(t *testing.T, universe ...string) (*SeedSweeper, *mocks.MockIQuoteClient) {
	t.Helper()
	cfg := &models.MConfig{}
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "sweep.db")
	cfg.Seeder.Universe = universe
	cfg.Seeder.BatchSize = 2
	cfg.Seeder.MaxBatchSize = 5
	cfg.Seeder.RequestDelayMs = -1
	cfg.Seeder.SweepCron = "30 18 * * 1-5"

	log := logger.NewLogger("SweepTest")
	store, err := storage.NewSQLiteDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })

	quotes := mocks.NewMockIQuoteClient(gomock.NewController(t))
	sd := seeder.NewSeeder(cfg, store, quotes, log)

	sw := NewSeedSweeper(cfg, sd, log)
	t.Cleanup(sw.Stop)
	return sw, quotes
}

// weekdayOnly maps every exchange to a Mon-Fri UTC calendar.
func weekdayOnly(symbol string) *TradingCalendar {
	mic, _ := MICForSymbol(symbol)
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: time.UTC}
}

// -----------------------------------------------------------------------------

func TestMICForSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		mic    string
	}{
		{"RELIANCE.NS", "xnse"},
		{"tcs.ns", "xnse"},
		{"SBIN.BO", "xbom"},
		{"2330.TW", "xtai"},
		{"7203.T", "xtks"},
		{"AAPL", "xnys"},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			mic, _ := MICForSymbol(tt.symbol)
			assert.Equal(t, tt.mic, mic)
		})
	}
}

func TestFallbackCalendarSkipsWeekends(t *testing.T) {
	tc := &TradingCalendar{Fallback: true, Timezone: time.UTC}

	assert.True(t, tc.IsTradingDay(time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)))  // Friday
	assert.False(t, tc.IsTradingDay(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))) // Saturday
	assert.False(t, tc.IsTradingDay(time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC))) // Sunday
}

func TestNYSECalendarHoliday(t *testing.T) {
	tc := GetCalendar("AAPL")
	require.NotNil(t, tc)

	assert.False(t, tc.IsTradingDay(time.Date(2024, 12, 25, 15, 0, 0, 0, time.UTC)))
	assert.True(t, tc.IsTradingDay(time.Date(2024, 12, 24, 15, 0, 0, 0, time.UTC)))
}

func TestMarketCalendarsDedupeByExchange(t *testing.T) {
	mc := NewMarketCalendars([]string{"RELIANCE.NS", "TCS.NS", "SBIN.BO"}, logger.NewLogger("SweepTest"))
	assert.Len(t, mc.Calendars, 2)
}

// -----------------------------------------------------------------------------

func TestRunNowSeedsWholeUniverse(t *testing.T) {
	sw, quotes := newSweeper(t, "A.NS", "B.NS", "C.NS")
	sw.Calendars.Lookup = weekdayOnly
	sw.Now = func() time.Time { return time.Date(2024, 6, 14, 13, 0, 0, 0, time.UTC) }

	quotes.EXPECT().
		FetchHistory(gomock.Any(), gomock.Any(), "5y", "1d").
		DoAndReturn(func(_ context.Context, symbol, _, _ string) (*models.MQuoteHistory, error) {
			return &models.MQuoteHistory{
				Symbol: symbol,
				Dates:  []string{"2024-06-13"},
				Open:   []*float64{fp(1)},
				High:   []*float64{fp(1)},
				Low:    []*float64{fp(1)},
				Close:  []*float64{fp(1)},
				Volume: []*float64{fp(10)},
			}, nil
		}).
		Times(3)

	summaries, err := sw.RunNow(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 2, summaries[0].Processed)
	assert.Equal(t, 1, summaries[1].Processed)
	assert.Nil(t, summaries[1].NextBatch)
}

func TestRunNowSkipsClosedDay(t *testing.T) {
	sw, _ := newSweeper(t, "A.NS")
	sw.Calendars.Lookup = weekdayOnly
	sw.Now = func() time.Time { return time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC) }

	// no FetchHistory expectation: any call fails the test
	summaries, err := sw.RunNow(context.Background())
	require.NoError(t, err)
	assert.Nil(t, summaries)
}

func TestRegisterRejectsBadCronExpression(t *testing.T) {
	sw, _ := newSweeper(t, "A.NS")
	sw.Config.Seeder.SweepCron = "not a cron"
	assert.Error(t, sw.Register())

	sw.Config.Seeder.SweepCron = "30 18 * * 1-5"
	require.NoError(t, sw.Register())
	assert.Len(t, sw.Cron.Entries(), 1)
}

func TestRunNowRemapsCalendarsAfterUniverseChange(t *testing.T) {
	sw, _ := newSweeper(t, "A.NS")
	sw.Calendars.Lookup = weekdayOnly
	sw.Now = func() time.Time { return time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC) }

	_, err := sw.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"xnse"}, sw.Calendars.Exchanges())

	_, err = sw.Seeder.SetUniverse(context.Background(), []string{"B.BO"})
	require.NoError(t, err)

	_, err = sw.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"xbom"}, sw.Calendars.Exchanges())
}

func TestCalendarSymbolPinsExchange(t *testing.T) {
	sw, _ := newSweeper(t, "A.NS", "AAPL")
	sw.Config.Seeder.CalendarSymbol = "SBIN.BO"
	sw.Calendars.Lookup = weekdayOnly
	sw.Now = func() time.Time { return time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC) }

	_, err := sw.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"xbom"}, sw.Calendars.Exchanges())
}
