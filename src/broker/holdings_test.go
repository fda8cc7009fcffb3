package broker

import (
	"testing"

	"market-cache/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHoldings(t *testing.T) {
	body := []byte(`{"status":"success","data":[
		{"tradingsymbol":"INFY","exchange":"NSE","isin":"INE009A01021","quantity":4,"average_price":1400.5,"last_price":1500,"pnl":398,"day_change":-3,"day_change_percentage":-0.2},
		{"trading_symbol":"HDFCBANK","company_name":"HDFC Bank","exchange":"BSE","quantity":2,"average_price":0,"last_price":1600}
	]}`)

	rows, err := DecodeHoldings(body)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "INFY", rows[0].TradingSymbol)
	assert.Equal(t, 1400.5, rows[0].AvgPrice)
	require.NotNil(t, rows[0].PnL)
	assert.Equal(t, 398.0, *rows[0].PnL)
	assert.Equal(t, -0.2, *rows[0].DayChangePercent)

	assert.Equal(t, "HDFCBANK", rows[1].TradingSymbol)
	assert.Equal(t, "HDFC Bank", rows[1].Name)
	assert.Nil(t, rows[1].PnL)
}

func TestDecodeHoldingsRejectsErrorStatus(t *testing.T) {
	_, err := DecodeHoldings([]byte(`{"status":"error","message":"Invalid token","error_type":"TokenException"}`))
	assert.Error(t, err)

	_, err = DecodeHoldings([]byte(`<html>`))
	assert.Error(t, err)

	rows, err := DecodeHoldings([]byte(`{"status":"success","data":null}`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeToken(t *testing.T) {
	tok, ok := DecodeToken([]byte(`{"access_token":"abc","user_id":"U1","email":"u@example.com"}`))
	require.True(t, ok)
	assert.Equal(t, "U1", tok.UserID)

	tok, ok = DecodeToken([]byte(`{"status":"success","data":{"access_token":"xyz","user_id":"AB1234","user_name":"Trader"}}`))
	require.True(t, ok)
	assert.Equal(t, "xyz", tok.AccessToken)
	assert.Equal(t, "Trader", tok.UserName)

	_, ok = DecodeToken([]byte(`{"status":"success","data":{}}`))
	assert.False(t, ok)
	_, ok = DecodeToken([]byte(`{"error":"invalid_grant"}`))
	assert.False(t, ok)
}

func TestWrapHoldingsErrorKeepsUpstreamStatus(t *testing.T) {
	err := WrapHoldingsError(helpers.NewUpstreamError("bad status: 403", 403, `{"status":"error"}`))

	var hErr *helpers.HoldingsFetchError
	require.ErrorAs(t, err, &hErr)
	assert.Equal(t, 403, hErr.Status)
	assert.Equal(t, `{"status":"error"}`, hErr.Body)
}
