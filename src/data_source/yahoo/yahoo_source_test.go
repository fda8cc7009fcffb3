package yahoo

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"market-cache/src/helpers"
	"market-cache/src/logger"
	"market-cache/src/models"
	"market-cache/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"currency": "INR", "symbol": "RELIANCE.NS", "gmtoffset": 19800, "exchangeTimezoneName": "Asia/Kolkata"},
      "timestamp": [1704166200, 1704252600, 1704339000],
      "indicators": {
        "quote": [{
          "open":   [100.0, 101.0, null],
          "high":   [102.0, 103.0, null],
          "low":    [99.0, 100.0, null],
          "close":  [101.0, 102.0, null],
          "volume": [1000, 2000, null]
        }],
        "adjclose": [{"adjclose": [100.5, null, null]}]
      }
    }],
    "error": null
  }
}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *YahooFinanceSource {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &models.MConfig{
		Network:       models.MNetworkConfig{RequestTimeout: 5},
		QuoteProvider: models.MQuoteProviderConfig{BaseURL: srv.URL + "/v8/finance/chart"},
	}
	return NewYahooFinanceSource(cfg, network.NewNetworkManager(cfg, logger.NewLogger("Test")))
}

func TestFetchHistoryParsesAlignedArrays(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/RELIANCE.NS", r.URL.Path)
		assert.Equal(t, "5y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(chartFixture))
	})

	h, err := src.FetchHistory(t.Context(), "RELIANCE.NS", "5y", "1d")
	require.NoError(t, err)

	require.Len(t, h.Dates, 3)
	// 1704166200 is 2024-01-02 03:30 UTC, 09:00 IST
	assert.Equal(t, "2024-01-02", h.Dates[0])
	assert.Equal(t, "INR", h.Currency)

	// adjusted close wins where present, raw close fills the gap, null stays null
	require.NotNil(t, h.Close[0])
	assert.Equal(t, 100.5, *h.Close[0])
	require.NotNil(t, h.Close[1])
	assert.Equal(t, 102.0, *h.Close[1])
	assert.Nil(t, h.Close[2])
}

func TestFetchHistoryProviderError(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := src.FetchHistory(t.Context(), "GONE.NS", "5y", "1d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol may be delisted")

	var upstream *helpers.UpstreamError
	assert.True(t, errors.As(err, &upstream))
}

func TestFetchHistoryEmptyTimestamps(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
	})

	_, err := src.FetchHistory(t.Context(), "EMPTY.NS", "5y", "1d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no timestamps")
}

func TestFetchHistoryMisalignedArrays(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{},"timestamp":[1,2],"indicators":{"quote":[{"open":[1],"high":[1],"low":[1],"close":[1],"volume":[1]}]}}]}}`))
	})

	_, err := src.FetchHistory(t.Context(), "BAD.NS", "5y", "1d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alignment")
}
