package models

import "fmt"

// MBrokerCredential is the short-lived artifact a broker hands back after login.
// Only one of Code / RequestToken is set depending on the broker flow.
type MBrokerCredential struct {
	Code         string
	RequestToken string
}

// String never prints the secret material.
func (c MBrokerCredential) String() string {
	return fmt.Sprintf("MBrokerCredential{code:%t, request_token:%t}", c.Code != "", c.RequestToken != "")
}

// MAccessToken is the broker session returned by a token exchange.
type MAccessToken struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	UserName    string `json:"user_name,omitempty"`
}

func (t MAccessToken) String() string {
	return fmt.Sprintf("MAccessToken{user_id:%s, access_token:[redacted]}", t.UserID)
}

// -----------------------------------------------------------------------------

// MBrokerHolding is a broker-native holding row after decoding.
// Pointer fields are the ones a broker may omit.
type MBrokerHolding struct {
	TradingSymbol    string
	Name             string
	Exchange         string
	ISIN             string
	Quantity         float64
	AvgPrice         float64
	LastPrice        float64
	CurrentValue     *float64
	PnL              *float64
	DayChange        *float64
	DayChangePercent *float64
}

// MHolding is the canonical, broker-agnostic holding.
type MHolding struct {
	Symbol           string   `json:"symbol"`
	TradingSymbol    string   `json:"tradingSymbol"`
	Name             string   `json:"name"`
	Quantity         float64  `json:"quantity"`
	AvgBuyPrice      float64  `json:"avgBuyPrice"`
	CurrentPrice     float64  `json:"currentPrice"`
	CurrentValue     float64  `json:"currentValue"`
	PnL              float64  `json:"pnl"`
	PnLPercent       float64  `json:"pnlPercent"`
	ISIN             string   `json:"isin"`
	Exchange         string   `json:"exchange"`
	DayChange        *float64 `json:"dayChange,omitempty"`
	DayChangePercent *float64 `json:"dayChangePercent,omitempty"`
}

// MBrokerLinkResult is what a successful broker login returns to the caller.
type MBrokerLinkResult struct {
	Broker      string     `json:"broker"`
	AccessToken string     `json:"access_token"`
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	Holdings    []MHolding `json:"holdings"`
}

// -----------------------------------------------------------------------------

// MAuthCodeRequest is the body of the authorization-code login endpoint.
type MAuthCodeRequest struct {
	Code string `json:"code"`
}

// MChecksumRequest is the body of the checksum login endpoint.
type MChecksumRequest struct {
	Action       string `json:"action"`
	RequestToken string `json:"request_token"`
}
