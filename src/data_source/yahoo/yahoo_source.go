package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"market-cache/src/helpers"
	"market-cache/src/interfaces"
	"market-cache/src/logger"
	"market-cache/src/models"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooFinanceSource reads daily history from the Yahoo v8 chart endpoint.
type YahooFinanceSource struct {
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooFinanceSource {
	base := cfg.QuoteProvider.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &YahooFinanceSource{
		BaseURL: strings.TrimRight(base, "/"),
		Network: netMgr,
		Logger:  logger.NewLogger("YahooFinanceSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchHistory fetches one chart window for a symbol.
func (s *YahooFinanceSource) FetchHistory(ctx context.Context, symbol, rangeStr, interval string) (*models.MQuoteHistory, error) {
	params := map[string]string{
		"interval":       interval,
		"range":          rangeStr,
		"includePrePost": "false",
		"events":         "div,splits",
	}

	endpoint := fmt.Sprintf("%s/%s", s.BaseURL, url.PathEscape(symbol))

	respBytes, err := s.Network.Get(ctx, endpoint, params, nil)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				Symbol               string `json:"symbol"`
				ExchangeName         string `json:"exchangeName"`
				Gmtoffset            int64  `json:"gmtoffset"`
				Timezone             string `json:"timezone"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				DataGranularity      string `json:"dataGranularity"`
				Range                string `json:"range"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"` // pointers carry null
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, data []byte) (*models.MQuoteHistory, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed for %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, helpers.NewUpstreamError(
			fmt.Sprintf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description), 0, string(data))
	}

	if len(resp.Chart.Result) == 0 {
		return nil, helpers.NewUpstreamError(fmt.Sprintf("no result in response for %s", symbol), 0, "")
	}

	result := resp.Chart.Result[0]
	n := len(result.Timestamp)
	if n == 0 {
		return nil, helpers.NewUpstreamError(fmt.Sprintf("no timestamps in response for %s", symbol), 0, "")
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, helpers.NewUpstreamError(fmt.Sprintf("no quote data in response for %s", symbol), 0, "")
	}
	quote := result.Indicators.Quote[0]

	// Alignment check
	if len(quote.Close) != n || len(quote.Open) != n || len(quote.High) != n ||
		len(quote.Low) != n || len(quote.Volume) != n {
		s.Logger.Warning("Data alignment error for %s: mismatched array lengths", symbol)
		return nil, fmt.Errorf("data alignment error for %s", symbol)
	}

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == n {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	history := &models.MQuoteHistory{
		Symbol:    symbol,
		Dates:     make([]string, n),
		Open:      quote.Open,
		High:      quote.High,
		Low:       quote.Low,
		Close:     make([]*float64, n),
		Volume:    quote.Volume,
		Currency:  result.Meta.Currency,
		Timezone:  result.Meta.ExchangeTimezoneName,
		FetchedAt: time.Now().Unix(),
	}

	offset := result.Meta.Gmtoffset
	for i, ts := range result.Timestamp {
		// exchange-local calendar date
		history.Dates[i] = time.Unix(ts+offset, 0).UTC().Format("2006-01-02")

		history.Close[i] = quote.Close[i]
		if adj != nil && adj[i] != nil {
			history.Close[i] = adj[i]
		}
	}

	s.Logger.Debug("Fetched %s: %d rows [%s -> %s]", symbol, n, history.Dates[0], history.Dates[n-1])
	return history, nil
}
