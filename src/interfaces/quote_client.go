package interfaces

import (
	"context"

	"market-cache/src/models"
)

// IQuoteClient issues range/interval queries against an upstream time-series provider.
//
//go:generate mockgen -package=mocks -destination=../mocks/mock_quote_client.go -source=quote_client.go IQuoteClient
type IQuoteClient interface {
	Name() string

	// FetchHistory returns index-aligned OHLCV arrays for one symbol.
	// A provider error object or an empty timestamp array is returned as an error.
	FetchHistory(ctx context.Context, symbol, rangeStr, interval string) (*models.MQuoteHistory, error)
}
