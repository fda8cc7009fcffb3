package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
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
	Name               = "checksum"
	DefaultLoginURL    = "https://kite.zerodha.com/connect/login"
	DefaultTokenURL    = "https://api.kite.trade/session/token"
	DefaultHoldingsURL = "https://api.kite.trade/portfolio/holdings"
	apiVersion         = "3"
)

// Actions accepted by HandleAction.
const (
	ActionGetAuthURL    = "get_auth_url"
	ActionExchangeToken = "exchange_token"
)

// -----------------------------------------------------------------------------

// Broker signs the request token with a checksum of the api key, token and
// secret, then reads holdings with the composite "apiKey:accessToken" credential.
type Broker struct {
	Config  models.MChecksumBrokerConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

func NewBroker(cfg models.MChecksumBrokerConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *Broker {
	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
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

// Checksum is hex(sha256(apiKey + requestToken + apiSecret)) with no delimiter.
func Checksum(apiKey, requestToken, apiSecret string) string {
	sum := sha256.Sum256([]byte(apiKey + requestToken + apiSecret))
	return hex.EncodeToString(sum[:])
}

// AuthURL is the login page for the configured api key. It makes no network call.
func (b *Broker) AuthURL() (string, error) {
	if b.Config.APIKey == "" {
		return "", b.missingConfig()
	}
	u, err := url.Parse(b.Config.LoginURL)
	if err != nil {
		return "", helpers.NewValidationError("invalid login_url: %v", err)
	}
	q := u.Query()
	q.Set("v", apiVersion)
	q.Set("api_key", b.Config.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// -----------------------------------------------------------------------------

// HandleAction dispatches the single entry point. get_auth_url returns
// {"login_url": ...}; exchange_token returns the linked holdings.
func (b *Broker) HandleAction(ctx context.Context, action, requestToken string, n *broker.Normalizer) (interface{}, error) {
	switch strings.TrimSpace(action) {
	case ActionGetAuthURL:
		loginURL, err := b.AuthURL()
		if err != nil {
			return nil, err
		}
		return map[string]string{"login_url": loginURL}, nil
	case ActionExchangeToken:
		result, err := broker.Link(ctx, b, models.MBrokerCredential{RequestToken: requestToken}, n)
		if err != nil {
			return nil, err
		}
		return result, nil
	case "":
		return nil, helpers.NewValidationError("action is required")
	default:
		return nil, helpers.NewValidationError("unknown action %q", action)
	}
}

// -----------------------------------------------------------------------------

func (b *Broker) Validate(cred models.MBrokerCredential) error {
	if strings.TrimSpace(cred.RequestToken) == "" {
		return helpers.NewValidationError("request_token is required")
	}
	if b.Config.APIKey == "" || b.Config.APISecret == "" {
		return b.missingConfig()
	}
	return nil
}

// -----------------------------------------------------------------------------

func (b *Broker) ExchangeToken(ctx context.Context, cred models.MBrokerCredential) (*models.MAccessToken, error) {
	form := url.Values{
		"api_key":       {b.Config.APIKey},
		"request_token": {cred.RequestToken},
		"checksum":      {Checksum(b.Config.APIKey, cred.RequestToken, b.Config.APISecret)},
	}

	status, body, err := b.Network.PostForm(ctx, b.Config.TokenURL, form, map[string]string{"X-Kite-Version": apiVersion})
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
		"Authorization":  "token " + b.Config.APIKey + ":" + token.AccessToken,
		"X-Kite-Version": apiVersion,
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

func (b *Broker) missingConfig() error {
	return &helpers.ConfigurationError{MarketCacheError: helpers.MarketCacheError{
		Message: "checksum broker is missing api_key or api_secret",
	}}
}
