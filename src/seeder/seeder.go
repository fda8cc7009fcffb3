package seeder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-cache/src/helpers"
	"market-cache/src/interfaces"
	"market-cache/src/logger"
	"market-cache/src/models"
)

const (
	DefaultBatchSize      = 10
	DefaultMaxBatchSize   = 100
	DefaultRequestDelayMs = 200
	DefaultHistoryRange   = "5y"
	DefaultInterval       = "1d"
)

// -----------------------------------------------------------------------------

// Seeder copies upstream daily history into the price store, one universe
// slice per call. Upstream calls inside a batch are sequential and spaced by
// the configured delay. Batches may run concurrently; the upsert key keeps
// overlapping writes consistent.
type Seeder struct {
	Config    *models.MConfig
	Store     interfaces.IPriceStore
	Quotes    interfaces.IQuoteClient
	Exchanger interfaces.IDataExchanger
	Logger    *logger.Logger

	// Sleep waits between upstream calls; tests swap it out.
	Sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	universe []string
	last     *models.MSeedSummary
}

// -----------------------------------------------------------------------------

func NewSeeder(cfg *models.MConfig, store interfaces.IPriceStore, quotes interfaces.IQuoteClient, log *logger.Logger) *Seeder {
	return &Seeder{
		Config: cfg,
		Store:  store,
		Quotes: quotes,
		Logger: log,
		Sleep:  sleepCtx,
	}
}

// SetExchanger attaches the progress feed.
func (s *Seeder) SetExchanger(ex interfaces.IDataExchanger) {
	s.Exchanger = ex
}

// -----------------------------------------------------------------------------

// LoadUniverse resolves the configured universe once. Later calls reuse it.
func (s *Seeder) LoadUniverse(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUniverseLocked(ctx)
}

func (s *Seeder) loadUniverseLocked(ctx context.Context) ([]string, error) {
	if s.universe != nil {
		return s.universe, nil
	}
	symbols, err := s.Store.ResolveUniverse(ctx, s.Config.Seeder.Universe)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}
	if symbols == nil {
		symbols = []string{}
	}
	s.universe = symbols
	s.Logger.Info("Universe resolved: %d symbols", len(symbols))
	return symbols, nil
}

// SetUniverse resolves raw and swaps it in. On error the current universe stays.
func (s *Seeder) SetUniverse(ctx context.Context, raw []string) ([]string, error) {
	symbols, err := s.Store.ResolveUniverse(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}
	if len(symbols) == 0 {
		return nil, helpers.NewValidationError("universe resolved to zero symbols")
	}

	s.mu.Lock()
	s.universe = symbols
	s.mu.Unlock()
	s.Logger.Info("Universe replaced: %d symbols", len(symbols))
	return symbols, nil
}

// UniverseSize is the resolved universe length, or 0 before resolution.
func (s *Seeder) UniverseSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.universe)
}

// LastSummary returns the most recent batch result, or nil.
func (s *Seeder) LastSummary() *models.MSeedSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// -----------------------------------------------------------------------------

// SeedBatch seeds universe[batchStart : min(batchStart+batchSize, N)].
// Validation failures are returned before any I/O. Per-symbol failures are
// collected in the summary and never abort the batch. On cancellation the
// partial summary is returned with the error; rows it counts are already stored.
func (s *Seeder) SeedBatch(ctx context.Context, req models.MSeedRequest) (*models.MSeedSummary, error) {
	universe, err := s.LoadUniverse(ctx)
	if err != nil {
		return nil, err
	}

	start, size, clearFirst, err := s.resolveRequest(req, len(universe))
	if err != nil {
		return nil, err
	}

	total := len(universe)
	end := start + size
	if end > total {
		end = total
	}
	batch := universe[start:end]

	summary := &models.MSeedSummary{
		BatchStart:  start,
		BatchEnd:    end,
		TotalStocks: total,
		Errors:      []models.MSymbolError{},
	}
	if end < total {
		next := end
		summary.NextBatch = &next
	}

	s.Logger.Info("Seeding batch [%d, %d) of %d", start, end, total)

	if clearFirst && len(batch) > 0 {
		n, err := s.Store.DeletePriceBars(ctx, batch)
		if err != nil {
			return nil, err
		}
		summary.Cleared = true
		s.Logger.Info("Cleared %d cached rows for %d symbols", n, len(batch))
	}

	delay := time.Duration(s.requestDelayMs()) * time.Millisecond
	for i, symbol := range batch {
		days, err := s.seedSymbol(ctx, symbol)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, models.MSymbolError{Symbol: symbol, Error: err.Error()})
			s.Logger.Warning("Seed %s failed: %v", symbol, err)
		} else {
			summary.Processed++
			summary.TotalDays += days
			s.Logger.Debug("Seeded %s: %d days", symbol, days)
		}

		if i < len(batch)-1 && delay > 0 {
			if err := s.Sleep(ctx, delay); err != nil {
				summary.FinishedAt = time.Now().UTC().Unix()
				s.Logger.Warning("Batch [%d, %d) interrupted after %d symbols: %v", start, end, i+1, err)
				return summary, err
			}
		}
	}

	summary.FinishedAt = time.Now().UTC().Unix()
	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()
	s.Logger.Info("Batch [%d, %d) done: processed=%d failed=%d days=%d", start, end, summary.Processed, summary.Failed, summary.TotalDays)

	if s.Exchanger != nil {
		s.Exchanger.Broadcast(models.MSeedProgress{
			Type:      "UPDATE",
			Summary:   summary,
			Universe:  total,
			Timestamp: summary.FinishedAt,
		})
	}

	return summary, nil
}

// -----------------------------------------------------------------------------

// SeedAll follows nextBatch from start until the universe is exhausted.
func (s *Seeder) SeedAll(ctx context.Context, start int) ([]*models.MSeedSummary, error) {
	var out []*models.MSeedSummary
	cursor := &start
	for cursor != nil {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		summary, err := s.SeedBatch(ctx, models.MSeedRequest{BatchStart: cursor})
		if summary != nil {
			out = append(out, summary)
		}
		if err != nil {
			return out, err
		}
		cursor = summary.NextBatch
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *Seeder) resolveRequest(req models.MSeedRequest, total int) (start, size int, clearFirst bool, err error) {
	size = s.Config.Seeder.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	maxSize := s.Config.Seeder.MaxBatchSize
	if maxSize <= 0 {
		maxSize = DefaultMaxBatchSize
	}

	if req.BatchStart != nil {
		start = *req.BatchStart
	}
	if req.BatchSize != nil {
		size = *req.BatchSize
	}
	if req.ClearFirst != nil {
		clearFirst = *req.ClearFirst
	}

	switch {
	case start < 0:
		err = helpers.NewValidationError("batchStart must be >= 0, got %d", start)
	case start > total:
		err = helpers.NewValidationError("batchStart %d is beyond the universe size %d", start, total)
	case size <= 0:
		err = helpers.NewValidationError("batchSize must be > 0, got %d", size)
	case size > maxSize:
		err = helpers.NewValidationError("batchSize %d exceeds the maximum of %d", size, maxSize)
	}
	return start, size, clearFirst, err
}

func (s *Seeder) requestDelayMs() int {
	if s.Config.Seeder.RequestDelayMs < 0 {
		return 0
	}
	if s.Config.Seeder.RequestDelayMs == 0 {
		return DefaultRequestDelayMs
	}
	return s.Config.Seeder.RequestDelayMs
}

// -----------------------------------------------------------------------------

// seedSymbol fetches one symbol and upserts its usable rows. It returns the
// number of rows written.
func (s *Seeder) seedSymbol(ctx context.Context, symbol string) (int, error) {
	rangeStr := s.Config.QuoteProvider.HistoryRange
	if rangeStr == "" {
		rangeStr = DefaultHistoryRange
	}
	interval := s.Config.QuoteProvider.Interval
	if interval == "" {
		interval = DefaultInterval
	}

	history, err := s.Quotes.FetchHistory(ctx, symbol, rangeStr, interval)
	if err != nil {
		return 0, err
	}

	bars := BarsFromHistory(symbol, history)
	if len(bars) == 0 {
		return 0, fmt.Errorf("no usable close prices for %s", symbol)
	}

	if err := s.Store.UpsertPriceBars(ctx, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// BarsFromHistory keeps the rows that have a close. Other missing fields become 0.
func BarsFromHistory(symbol string, h *models.MQuoteHistory) []models.MPriceBar {
	if h == nil {
		return nil
	}
	bars := make([]models.MPriceBar, 0, len(h.Dates))
	for i, date := range h.Dates {
		closeVal := at(h.Close, i)
		if closeVal == nil {
			continue
		}
		bars = append(bars, models.MPriceBar{
			Symbol: symbol,
			Date:   date,
			Open:   deref(at(h.Open, i)),
			High:   deref(at(h.High, i)),
			Low:    deref(at(h.Low, i)),
			Close:  *closeVal,
			Volume: deref(at(h.Volume, i)),
		})
	}
	return bars
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// -----------------------------------------------------------------------------

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
