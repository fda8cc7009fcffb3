package scheduler

import (
	"sync"
	"time"

	"market-cache/src/logger"
)

// MarketCalendars holds one TradingCalendar per distinct exchange in the universe.
type MarketCalendars struct {
	Calendars map[string]*TradingCalendar // keyed by MIC
	Lookup    func(symbol string) *TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketCalendars(symbols []string, l *logger.Logger) *MarketCalendars {
	mc := &MarketCalendars{
		Calendars: make(map[string]*TradingCalendar),
		Lookup:    GetCalendar,
		Logger:    l,
	}
	if len(symbols) > 0 {
		mc.MapSymbols(symbols)
	}
	return mc
}

// -----------------------------------------------------------------------------

// MapSymbols rebuilds the calendar set for a new symbol list.
func (mc *MarketCalendars) MapSymbols(symbols []string) {
	lookup := mc.Lookup
	if lookup == nil {
		lookup = GetCalendar
	}

	cals := make(map[string]*TradingCalendar)
	for _, symbol := range symbols {
		mic, _ := MICForSymbol(symbol)
		if _, ok := cals[mic]; ok {
			continue
		}
		cals[mic] = lookup(symbol)
	}

	mc.mu.Lock()
	mc.Calendars = cals
	mc.mu.Unlock()

	mc.Logger.Info("Mapped %d symbols to %d exchange calendars", len(symbols), len(cals))
}

// -----------------------------------------------------------------------------

// Exchanges lists the MICs currently tracked.
func (mc *MarketCalendars) Exchanges() []string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	mics := make([]string, 0, len(mc.Calendars))
	for mic := range mc.Calendars {
		mics = append(mics, mic)
	}
	return mics
}

// AnyTradingDay reports whether at least one tracked exchange trades on t's local date.
func (mc *MarketCalendars) AnyTradingDay(t time.Time) bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	for _, cal := range mc.Calendars {
		if cal.IsTradingDay(t) {
			return true
		}
	}
	return false
}
