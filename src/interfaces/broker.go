package interfaces

import (
	"context"

	"market-cache/src/models"
)

// -----------------------------------------------------------------------------
// IBroker is one broker's credential -> token -> holdings protocol.
// -----------------------------------------------------------------------------

type IBroker interface {
	Name() string

	// Validate rejects a credential before any network call is made.
	Validate(cred models.MBrokerCredential) error

	// ExchangeToken redeems the short-lived credential for an access token.
	ExchangeToken(ctx context.Context, cred models.MBrokerCredential) (*models.MAccessToken, error)

	// FetchHoldings reads the broker-native holdings for an authenticated session.
	FetchHoldings(ctx context.Context, token *models.MAccessToken) ([]models.MBrokerHolding, error)
}
