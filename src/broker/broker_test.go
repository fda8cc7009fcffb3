package broker

import (
	"context"
	"errors"
	"testing"

	"market-cache/src/helpers"
	"market-cache/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBroker struct {
	validateErr error
	exchangeErr error
	holdingsErr error
	exchanged   bool
	holdings    []models.MBrokerHolding
}

func (s *stubBroker) Name() string { return "stub" }

func (s *stubBroker) Validate(models.MBrokerCredential) error { return s.validateErr }

func (s *stubBroker) ExchangeToken(context.Context, models.MBrokerCredential) (*models.MAccessToken, error) {
	s.exchanged = true
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return &models.MAccessToken{AccessToken: "tok", UserID: "U1", Email: "u@example.com"}, nil
}

func (s *stubBroker) FetchHoldings(context.Context, *models.MAccessToken) ([]models.MBrokerHolding, error) {
	return s.holdings, s.holdingsErr
}

func TestLinkNormalizesHoldings(t *testing.T) {
	b := &stubBroker{holdings: []models.MBrokerHolding{{TradingSymbol: "TCS", Exchange: "NSE", Quantity: 1, AvgPrice: 10, LastPrice: 12}}}

	res, err := Link(t.Context(), b, models.MBrokerCredential{Code: "c"}, NewNormalizer(&models.MConfig{}))
	require.NoError(t, err)
	assert.Equal(t, "stub", res.Broker)
	assert.Equal(t, "tok", res.AccessToken)
	assert.Equal(t, "U1", res.UserID)
	require.Len(t, res.Holdings, 1)
	assert.Equal(t, "TCS.NS", res.Holdings[0].Symbol)
}

func TestLinkStopsOnValidationBeforeNetwork(t *testing.T) {
	b := &stubBroker{validateErr: helpers.NewValidationError("code is required")}

	_, err := Link(t.Context(), b, models.MBrokerCredential{}, NewNormalizer(&models.MConfig{}))
	assert.Error(t, err)
	assert.False(t, b.exchanged)
}

func TestLinkKeepsErrorKinds(t *testing.T) {
	n := NewNormalizer(&models.MConfig{})

	_, err := Link(t.Context(), &stubBroker{exchangeErr: helpers.NewTokenExchangeError(401, "denied")}, models.MBrokerCredential{}, n)
	var tErr *helpers.TokenExchangeError
	assert.ErrorAs(t, err, &tErr)

	_, err = Link(t.Context(), &stubBroker{holdingsErr: helpers.NewHoldingsFetchError(500, "", errors.New("boom"))}, models.MBrokerCredential{}, n)
	var hErr *helpers.HoldingsFetchError
	assert.ErrorAs(t, err, &hErr)
	assert.False(t, errors.As(err, &tErr))
}

func TestCredentialAndTokenRedact(t *testing.T) {
	cred := models.MBrokerCredential{Code: "secret-code"}
	assert.NotContains(t, cred.String(), "secret-code")

	tok := models.MAccessToken{AccessToken: "secret-token", UserID: "U1"}
	assert.NotContains(t, tok.String(), "secret-token")
}
