package broker

import (
	"context"

	"market-cache/src/interfaces"
	"market-cache/src/models"
)

// Link runs one broker login end to end: validate, exchange the credential,
// read holdings, normalize. The token is handed back and never stored.
func Link(ctx context.Context, b interfaces.IBroker, cred models.MBrokerCredential, n *Normalizer) (*models.MBrokerLinkResult, error) {
	if err := b.Validate(cred); err != nil {
		return nil, err
	}

	token, err := b.ExchangeToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	native, err := b.FetchHoldings(ctx, token)
	if err != nil {
		return nil, err
	}

	return &models.MBrokerLinkResult{
		Broker:      b.Name(),
		AccessToken: token.AccessToken,
		UserID:      token.UserID,
		Email:       token.Email,
		Holdings:    n.NormalizeAll(native),
	}, nil
}
