package interfaces

import (
	"context"
	"net/url"
)

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for upstream HTTP calls.
// -----------------------------------------------------------------------------
//
//go:generate mockgen -package=mocks -destination=../mocks/mock_network_manager.go -source=network_manager.go INetworkManager
type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters and headers.
	// Returns the response body as bytes, or an *helpers.UpstreamError on non-2xx.
	Get(ctx context.Context, url string, params map[string]string, headers map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// PostForm submits a form-encoded POST and returns the status code and body.
	// Non-2xx statuses are not treated as errors so callers can decide.
	PostForm(ctx context.Context, url string, form url.Values, headers map[string]string) (int, []byte, error)
}
