package broker

import (
	"strings"

	"market-cache/src/models"
)

// DefaultExchangeSuffixes qualifies exchange-native tickers for the quote provider.
var DefaultExchangeSuffixes = map[string]string{
	"NSE": ".NS",
	"BSE": ".BO",
}

const DefaultSuffix = ".NS"

// -----------------------------------------------------------------------------

// Normalizer maps broker-native holdings to MHolding. It does no I/O.
type Normalizer struct {
	Suffixes      map[string]string
	DefaultSuffix string
}

func NewNormalizer(cfg *models.MConfig) *Normalizer {
	n := &Normalizer{
		Suffixes:      DefaultExchangeSuffixes,
		DefaultSuffix: DefaultSuffix,
	}
	if len(cfg.Brokers.ExchangeSuffixes) > 0 {
		n.Suffixes = make(map[string]string, len(cfg.Brokers.ExchangeSuffixes))
		for k, v := range cfg.Brokers.ExchangeSuffixes {
			n.Suffixes[strings.ToUpper(k)] = v
		}
	}
	if cfg.Brokers.DefaultSuffix != "" {
		n.DefaultSuffix = cfg.Brokers.DefaultSuffix
	}
	return n
}

// -----------------------------------------------------------------------------

// QualifySymbol appends the exchange suffix unless the symbol already has one.
func (n *Normalizer) QualifySymbol(symbol, exchange string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	if suffix, ok := n.Suffixes[strings.ToUpper(exchange)]; ok {
		return symbol + suffix
	}
	return symbol + n.DefaultSuffix
}

// -----------------------------------------------------------------------------

func (n *Normalizer) Normalize(h models.MBrokerHolding) models.MHolding {
	out := models.MHolding{
		Symbol:           n.QualifySymbol(h.TradingSymbol, h.Exchange),
		TradingSymbol:    h.TradingSymbol,
		Name:             h.Name,
		Quantity:         h.Quantity,
		AvgBuyPrice:      h.AvgPrice,
		CurrentPrice:     h.LastPrice,
		ISIN:             h.ISIN,
		Exchange:         h.Exchange,
		DayChange:        h.DayChange,
		DayChangePercent: h.DayChangePercent,
	}
	if out.Name == "" {
		out.Name = h.TradingSymbol
	}

	if h.CurrentValue != nil {
		out.CurrentValue = *h.CurrentValue
	} else {
		out.CurrentValue = h.Quantity * h.LastPrice
	}

	if h.PnL != nil {
		out.PnL = *h.PnL
	} else {
		out.PnL = (h.LastPrice - h.AvgPrice) * h.Quantity
	}

	// avg <= 0 would divide by zero
	if h.AvgPrice > 0 {
		out.PnLPercent = (h.LastPrice - h.AvgPrice) / h.AvgPrice * 100
	}

	return out
}

func (n *Normalizer) NormalizeAll(native []models.MBrokerHolding) []models.MHolding {
	out := make([]models.MHolding, 0, len(native))
	for _, h := range native {
		out = append(out, n.Normalize(h))
	}
	return out
}
