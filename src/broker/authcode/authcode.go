package authcode

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"market-cache/src/broker"
	"market-cache/src/helpers"
	"market-cache/src/interfaces"
	"market-cache/src/logger"
	"market-cache/src/models"
)

const (
	Name               = "authcode"
	DefaultTokenURL    = "https://api.upstox.com/v2/login/authorization/token"
	DefaultHoldingsURL = "https://api.upstox.com/v2/portfolio/long-term-holdings"
)

// -----------------------------------------------------------------------------

// Broker redeems an OAuth authorization code and reads holdings with the
// resulting bearer token.
type Broker struct {
	Config  models.MAuthCodeBrokerConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

func NewBroker(cfg models.MAuthCodeBrokerConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *Broker {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.HoldingsURL == "" {
		cfg.HoldingsURL = DefaultHoldingsURL
	}
	return &Broker{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

func (b *Broker) Name() string { return Name }

// -----------------------------------------------------------------------------

func (b *Broker) Validate(cred models.MBrokerCredential) error {
	if strings.TrimSpace(cred.Code) == "" {
		return helpers.NewValidationError("code is required")
	}
	if b.Config.ClientID == "" || b.Config.ClientSecret == "" || b.Config.RedirectURI == "" {
		return &helpers.ConfigurationError{MarketCacheError: helpers.MarketCacheError{
			Message: "authcode broker is missing client_id, client_secret or redirect_uri",
		}}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (b *Broker) ExchangeToken(ctx context.Context, cred models.MBrokerCredential) (*models.MAccessToken, error) {
	form := url.Values{
		"code":          {cred.Code},
		"client_id":     {b.Config.ClientID},
		"client_secret": {b.Config.ClientSecret},
		"redirect_uri":  {b.Config.RedirectURI},
		"grant_type":    {"authorization_code"},
	}

	status, body, err := b.Network.PostForm(ctx, b.Config.TokenURL, form, map[string]string{"Api-Version": "2.0"})
	if err != nil {
		return nil, &helpers.UpstreamError{MarketCacheError: helpers.MarketCacheError{Message: "token endpoint unreachable", Cause: err}}
	}
	if status < 200 || status > 299 {
		b.Logger.Warning("Token exchange rejected with status %d", status)
		return nil, helpers.NewTokenExchangeError(status, string(body))
	}

	tok, ok := broker.DecodeToken(body)
	if !ok {
		b.Logger.Warning("Token exchange returned %d without access_token", status)
		return nil, helpers.NewTokenExchangeError(status, string(body))
	}

	b.Logger.Info("Token exchange succeeded for %s", tok)
	return &tok, nil
}

// -----------------------------------------------------------------------------

func (b *Broker) FetchHoldings(ctx context.Context, token *models.MAccessToken) ([]models.MBrokerHolding, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token.AccessToken,
		"Api-Version":   "2.0",
	}

	body, err := b.Network.Get(ctx, b.Config.HoldingsURL, nil, headers)
	if err != nil {
		return nil, broker.WrapHoldingsError(err)
	}

	holdings, err := broker.DecodeHoldings(body)
	if err != nil {
		return nil, helpers.NewHoldingsFetchError(http.StatusOK, string(body), err)
	}
	return holdings, nil
}
