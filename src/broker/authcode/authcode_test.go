package authcode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"market-cache/src/broker"
	"market-cache/src/helpers"
	"market-cache/src/logger"
	"market-cache/src/mocks"
	"market-cache/src/models"
	"market-cache/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfig() models.MAuthCodeBrokerConfig {
	return models.MAuthCodeBrokerConfig{
		Enabled:      true,
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURI:  "https://app.example.com/callback",
		TokenURL:     "https://broker.test/token",
		HoldingsURL:  "https://broker.test/holdings",
	}
}

func TestValidateRequiresCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := NewBroker(testConfig(), mocks.NewMockINetworkManager(ctrl), logger.NewLogger("AuthCodeTest"))

	var vErr *helpers.ValidationError
	assert.ErrorAs(t, b.Validate(models.MBrokerCredential{Code: "  "}), &vErr)
	assert.NoError(t, b.Validate(models.MBrokerCredential{Code: "abc"}))

	b.Config.ClientSecret = ""
	var cErr *helpers.ConfigurationError
	assert.ErrorAs(t, b.Validate(models.MBrokerCredential{Code: "abc"}), &cErr)
}

func TestExchangeTokenPostsAuthorizationCodeForm(t *testing.T) {
	ctrl := gomock.NewController(t)
	netMgr := mocks.NewMockINetworkManager(ctrl)
	b := NewBroker(testConfig(), netMgr, logger.NewLogger("AuthCodeTest"))

	netMgr.EXPECT().
		PostForm(gomock.Any(), "https://broker.test/token", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, form url.Values, _ map[string]string) (int, []byte, error) {
			assert.Equal(t, "abc", form.Get("code"))
			assert.Equal(t, "client", form.Get("client_id"))
			assert.Equal(t, "secret", form.Get("client_secret"))
			assert.Equal(t, "https://app.example.com/callback", form.Get("redirect_uri"))
			assert.Equal(t, "authorization_code", form.Get("grant_type"))
			return http.StatusOK, []byte(`{"access_token":"tok","user_id":"U1","email":"u@example.com"}`), nil
		})

	tok, err := b.ExchangeToken(t.Context(), models.MBrokerCredential{Code: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, "u@example.com", tok.Email)
}

func TestExchangeTokenWithoutAccessTokenCarriesRawBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	netMgr := mocks.NewMockINetworkManager(ctrl)
	b := NewBroker(testConfig(), netMgr, logger.NewLogger("AuthCodeTest"))

	raw := `{"status":"error","errors":[{"errorCode":"UDAPI100057","message":"Invalid Auth code"}]}`
	netMgr.EXPECT().PostForm(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(http.StatusOK, []byte(raw), nil)

	_, err := b.ExchangeToken(t.Context(), models.MBrokerCredential{Code: "abc"})
	var tErr *helpers.TokenExchangeError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, raw, tErr.Body)

	status, resp := helpers.NewErrorHandler(logger.NewLogger("AuthCodeTest")).Classify(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, raw, resp.Details)
}

func TestExchangeTokenNon2xxKeepsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	netMgr := mocks.NewMockINetworkManager(ctrl)
	b := NewBroker(testConfig(), netMgr, logger.NewLogger("AuthCodeTest"))

	netMgr.EXPECT().PostForm(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(http.StatusUnauthorized, []byte(`{"error":"invalid_client"}`), nil)

	_, err := b.ExchangeToken(t.Context(), models.MBrokerCredential{Code: "abc"})
	var tErr *helpers.TokenExchangeError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusUnauthorized, tErr.Status)
}

func TestLinkAgainstBrokerServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			assert.Equal(t, http.MethodPost, r.Method)
			fmt.Fprint(w, `{"access_token":"tok-1","user_id":"U9","email":"u9@example.com"}`)
		case "/holdings":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"status":"success","data":[{"tradingsymbol":"RELIANCE","exchange":"NSE","quantity":3,"average_price":2000,"last_price":2500}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.TokenURL = srv.URL + "/token"
	cfg.HoldingsURL = srv.URL + "/holdings"
	log := logger.NewLogger("AuthCodeTest")
	b := NewBroker(cfg, network.NewNetworkManager(&models.MConfig{}, log), log)

	res, err := broker.Link(t.Context(), b, models.MBrokerCredential{Code: "abc"}, broker.NewNormalizer(&models.MConfig{}))
	require.NoError(t, err)
	assert.Equal(t, "authcode", res.Broker)
	assert.Equal(t, "U9", res.UserID)
	require.Len(t, res.Holdings, 1)
	assert.Equal(t, "RELIANCE.NS", res.Holdings[0].Symbol)
	assert.Equal(t, 7500.0, res.Holdings[0].CurrentValue)
	assert.Equal(t, 1500.0, res.Holdings[0].PnL)
	assert.InDelta(t, 25.0, res.Holdings[0].PnLPercent, 1e-9)
}

func TestHoldingsFailureIsDistinct(t *testing.T) {
	ctrl := gomock.NewController(t)
	netMgr := mocks.NewMockINetworkManager(ctrl)
	b := NewBroker(testConfig(), netMgr, logger.NewLogger("AuthCodeTest"))

	netMgr.EXPECT().Get(gomock.Any(), "https://broker.test/holdings", gomock.Nil(), gomock.Any()).
		Return(nil, helpers.NewUpstreamError("bad status: 401", 401, "expired"))

	_, err := b.FetchHoldings(t.Context(), &models.MAccessToken{AccessToken: "tok"})
	var hErr *helpers.HoldingsFetchError
	require.ErrorAs(t, err, &hErr)
	assert.Equal(t, 401, hErr.Status)
}
