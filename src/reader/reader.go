package reader

import (
	"context"
	"strings"
	"time"

	"market-cache/src/helpers"
	"market-cache/src/interfaces"
	"market-cache/src/logger"
	"market-cache/src/models"
	"market-cache/src/storage"
)

const (
	// DefaultMaxRows overrides the small implicit page size most stores apply.
	DefaultMaxRows = 100000
	DefaultRange   = "1y"
	Source         = "db_cache"
	MissingMessage = "No data in cache"
)

// RangeYears maps accepted range values to a look-back in years.
var RangeYears = map[string]int{
	"1y": 1,
	"2y": 2,
	"3y": 3,
	"5y": 5,
}

// -----------------------------------------------------------------------------

// Reader serves cached history. It never calls upstream; a miss is reported
// per symbol and left for the seeder to fill.
type Reader struct {
	Store   interfaces.IPriceStore
	MaxRows int
	Logger  *logger.Logger
	Now     func() time.Time
}

// -----------------------------------------------------------------------------

func NewReader(cfg *models.MConfig, store interfaces.IPriceStore, log *logger.Logger) *Reader {
	maxRows := cfg.Reader.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Reader{
		Store:   store,
		MaxRows: maxRows,
		Logger:  log,
		Now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

// ResolveRange returns the applied range and its start date relative to now.
// Unknown values fall back to one year.
func ResolveRange(rangeStr string, now time.Time) (string, string) {
	applied := strings.ToLower(strings.TrimSpace(rangeStr))
	years, ok := RangeYears[applied]
	if !ok {
		applied, years = DefaultRange, RangeYears[DefaultRange]
	}
	return applied, now.UTC().AddDate(-years, 0, 0).Format("2006-01-02")
}

// -----------------------------------------------------------------------------

func (r *Reader) Read(ctx context.Context, req models.MPriceHistoryRequest) (*models.MPriceHistoryResponse, error) {
	symbols := storage.UniqueSymbols(req.Symbols)
	if len(symbols) == 0 {
		return nil, helpers.NewValidationError("symbols must be a non-empty list")
	}

	applied, startDate := ResolveRange(req.Range, r.Now())

	rows, err := r.Store.QueryPriceBars(ctx, symbols, startDate, r.MaxRows)
	if err != nil {
		return nil, err
	}
	if len(rows) >= r.MaxRows {
		r.Logger.Warning("Cache read hit the %d row cap for %d symbols since %s; result truncated", r.MaxRows, len(symbols), startDate)
	}

	data := make(map[string][]models.MBarPoint, len(symbols))
	for _, row := range rows {
		data[row.Symbol] = append(data[row.Symbol], models.MBarPoint{
			Date:   row.Date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	errs := []models.MSymbolError{}
	for _, s := range symbols {
		if len(data[s]) == 0 {
			delete(data, s)
			errs = append(errs, models.MSymbolError{Symbol: s, Error: MissingMessage})
		}
	}

	r.Logger.Debug("Cache read: %d hits, %d misses (range %s)", len(data), len(errs), applied)

	return &models.MPriceHistoryResponse{
		Data:      data,
		Errors:    errs,
		Range:     applied,
		StartDate: startDate,
		Source:    Source,
	}, nil
}
