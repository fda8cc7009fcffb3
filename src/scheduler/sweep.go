package scheduler

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"market-cache/src/logger"
	"market-cache/src/models"
	"market-cache/src/seeder"

	"github.com/robfig/cron/v3"
)

// SeedSweeper re-seeds the whole universe on a cron schedule, skipping days
// on which none of the tracked exchanges trade.
type SeedSweeper struct {
	Config    *models.MConfig
	Seeder    *seeder.Seeder
	Cron      *cron.Cron
	Calendars *MarketCalendars
	Logger    *logger.Logger
	Now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	mapMu  sync.Mutex
	mapped []string // symbol list Calendars was last built from
}

// -----------------------------------------------------------------------------

func NewSeedSweeper(cfg *models.MConfig, sd *seeder.Seeder, l *logger.Logger) *SeedSweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &SeedSweeper{
		Config: cfg,
		Seeder: sd,
		Cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{l}),
			cron.SkipIfStillRunning(cronLogger{l}),
		)),
		Calendars: &MarketCalendars{
			Calendars: make(map[string]*TradingCalendar),
			Lookup:    GetCalendar,
			Logger:    l,
		},
		Logger: l,
		Now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// -----------------------------------------------------------------------------

// Register schedules the sweep using the configured 5-field cron expression.
func (s *SeedSweeper) Register() error {
	expr := s.Config.Seeder.SweepCron
	if _, err := s.Cron.AddFunc(expr, func() {
		if _, err := s.RunNow(s.ctx); err != nil {
			s.Logger.Error("Sweep failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to register sweep %q: %w", expr, err)
	}
	s.Logger.Info("Registered universe sweep: %s", expr)
	return nil
}

func (s *SeedSweeper) Start() {
	s.Logger.Info("Starting sweep scheduler")
	s.Cron.Start()
}

// Stop cancels a running sweep and waits for the job to return.
func (s *SeedSweeper) Stop() {
	s.once.Do(func() {
		s.Logger.Info("Stopping sweep scheduler")
		s.cancel()
		<-s.Cron.Stop().Done()
	})
}

// -----------------------------------------------------------------------------

// RunNow performs one sweep. It returns nil summaries when the day is skipped.
func (s *SeedSweeper) RunNow(ctx context.Context) ([]*models.MSeedSummary, error) {
	universe, err := s.Seeder.LoadUniverse(ctx)
	if err != nil {
		return nil, err
	}

	cals := s.calendars(universe)
	now := s.Now()
	if !cals.AnyTradingDay(now) {
		s.Logger.Info("Skipping sweep: no tracked market trades on %s", now.Format("2006-01-02"))
		return nil, nil
	}

	started := time.Now()
	summaries, err := s.Seeder.SeedAll(ctx, 0)

	seeded, failed := 0, 0
	for _, sum := range summaries {
		seeded += sum.Processed
		failed += sum.Failed
	}
	s.Logger.Info("Sweep done in %s: %d batches, %d seeded, %d failed",
		time.Since(started).Round(time.Millisecond), len(summaries), seeded, failed)

	return summaries, err
}

// -----------------------------------------------------------------------------

// calendars remaps the exchange set whenever the resolved universe changes,
// so a universe swapped at runtime gates the next sweep.
func (s *SeedSweeper) calendars(universe []string) *MarketCalendars {
	symbols := universe
	if cs := s.Config.Seeder.CalendarSymbol; cs != "" {
		symbols = []string{cs}
	}

	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	if s.mapped == nil || !slices.Equal(s.mapped, symbols) {
		s.Calendars.MapSymbols(symbols)
		s.mapped = slices.Clone(symbols)
	}
	return s.Calendars
}

// -----------------------------------------------------------------------------

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	l *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
