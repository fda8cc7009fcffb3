package scheduler

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// market is a Yahoo-style suffix mapped to its ISO 10383 MIC and timezone.
type market struct {
	suffix string
	mic    string
	tz     string
}

// Ordered longest-suffix-first where suffixes overlap (".TW" before ".T").
var markets = []market{
	{".NS", "xnse", "Asia/Kolkata"},
	{".BO", "xbom", "Asia/Kolkata"},
	{".L", "xlon", "Europe/London"},
	{".PA", "xpar", "Europe/Paris"},
	{".DE", "xfra", "Europe/Berlin"},
	{".AS", "xams", "Europe/Amsterdam"},
	{".BR", "xbru", "Europe/Brussels"},
	{".MI", "xmil", "Europe/Rome"},
	{".MC", "xmad", "Europe/Madrid"},
	{".ST", "xsto", "Europe/Stockholm"},
	{".CO", "xcse", "Europe/Copenhagen"},
	{".HE", "xhel", "Europe/Helsinki"},
	{".VI", "xwbo", "Europe/Vienna"},
	{".SW", "xswx", "Europe/Zurich"},
	{".TO", "xtse", "America/Toronto"},
	{".TW", "xtai", "Asia/Taipei"},
	{".V", "xtsx", "America/Toronto"},
	{".T", "xtks", "Asia/Tokyo"},
	{".HK", "xhkg", "Asia/Hong_Kong"},
	{".AX", "xasx", "Australia/Sydney"},
	{".KS", "xkrx", "Asia/Seoul"},
	{".SS", "xshg", "Asia/Shanghai"},
	{".SZ", "xshe", "Asia/Shanghai"},
}

const (
	defaultMIC = "xnys"
	defaultTZ  = "America/New_York"
)

// -----------------------------------------------------------------------------

// TradingCalendar answers trading-day questions for one exchange using
// scmhub/calendar, or a Mon-Fri rule when the library has no calendar for it.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// MICForSymbol maps a symbol's exchange suffix to a MIC. Unsuffixed symbols are NYSE.
func MICForSymbol(symbol string) (mic, tz string) {
	upper := strings.ToUpper(symbol)
	for _, m := range markets {
		if strings.HasSuffix(upper, m.suffix) {
			return m.mic, m.tz
		}
	}
	return defaultMIC, defaultTZ
}

// -----------------------------------------------------------------------------

func GetCalendar(symbol string) *TradingCalendar {
	mic, tz := MICForSymbol(symbol)

	if cal := calendar.GetCalendar(mic); cal != nil {
		return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback || tc.Calendar == nil {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}
