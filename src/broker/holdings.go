package broker

import (
	"encoding/json"
	"errors"
	"fmt"

	"market-cache/src/helpers"
	"market-cache/src/models"
)

// holdingRow covers the holdings payloads of both supported brokers.
type holdingRow struct {
	TradingSymbol       string   `json:"tradingsymbol"`
	TradingSymbolAlt    string   `json:"trading_symbol"`
	CompanyName         string   `json:"company_name"`
	Exchange            string   `json:"exchange"`
	ISIN                string   `json:"isin"`
	Quantity            float64  `json:"quantity"`
	AveragePrice        float64  `json:"average_price"`
	LastPrice           float64  `json:"last_price"`
	CurrentValue        *float64 `json:"current_value"`
	PnL                 *float64 `json:"pnl"`
	DayChange           *float64 `json:"day_change"`
	DayChangePercentage *float64 `json:"day_change_percentage"`
}

type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	ErrorType string          `json:"error_type"`
}

// -----------------------------------------------------------------------------

// DecodeHoldings parses a {status, data:[...]} holdings body.
func DecodeHoldings(body []byte) ([]models.MBrokerHolding, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode holdings envelope: %w", err)
	}
	if env.Status != "" && env.Status != "success" {
		return nil, fmt.Errorf("holdings status %q: %s", env.Status, env.Message)
	}

	var rows []holdingRow
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			return nil, fmt.Errorf("decode holdings data: %w", err)
		}
	}

	out := make([]models.MBrokerHolding, 0, len(rows))
	for _, r := range rows {
		symbol := r.TradingSymbol
		if symbol == "" {
			symbol = r.TradingSymbolAlt
		}
		out = append(out, models.MBrokerHolding{
			TradingSymbol:    symbol,
			Name:             r.CompanyName,
			Exchange:         r.Exchange,
			ISIN:             r.ISIN,
			Quantity:         r.Quantity,
			AvgPrice:         r.AveragePrice,
			LastPrice:        r.LastPrice,
			CurrentValue:     r.CurrentValue,
			PnL:              r.PnL,
			DayChange:        r.DayChange,
			DayChangePercent: r.DayChangePercentage,
		})
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// DecodeToken reads an access token from either a bare object or a
// {status, data:{...}} envelope. A missing access_token yields ok=false.
func DecodeToken(body []byte) (models.MAccessToken, bool) {
	var tok models.MAccessToken
	if err := json.Unmarshal(body, &tok); err == nil && tok.AccessToken != "" {
		return tok, true
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Data) == 0 {
		return models.MAccessToken{}, false
	}
	tok = models.MAccessToken{}
	if err := json.Unmarshal(env.Data, &tok); err != nil || tok.AccessToken == "" {
		return models.MAccessToken{}, false
	}
	return tok, true
}

// -----------------------------------------------------------------------------

// WrapHoldingsError turns a failed holdings GET into a HoldingsFetchError,
// keeping the upstream status and body when there was a response.
func WrapHoldingsError(err error) error {
	var up *helpers.UpstreamError
	if errors.As(err, &up) {
		return helpers.NewHoldingsFetchError(up.Status, up.Body, err)
	}
	return helpers.NewHoldingsFetchError(0, "", err)
}
