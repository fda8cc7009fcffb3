package models

// MPriceBar is one OHLCV row for one symbol on one calendar date.
// (Symbol, Date) is the natural key of the price cache.
type MPriceBar struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"` // YYYY-MM-DD, exchange-local
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"` // adjusted close when the provider has one
	Volume float64 `json:"volume"`
}

// MBarPoint is a PriceBar without its symbol, as served to readers.
type MBarPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// -----------------------------------------------------------------------------

// MQuoteHistory is the parsed upstream chart response for one symbol.
// Close entries are nil where the provider sent null.
type MQuoteHistory struct {
	Symbol    string
	Dates     []string
	Open      []*float64
	High      []*float64
	Low       []*float64
	Close     []*float64
	Volume    []*float64
	Currency  string
	Timezone  string
	FetchedAt int64
}
