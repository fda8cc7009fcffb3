package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"market-cache/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type MarketCacheError struct {
	Message string
	Cause   error
}

func (e *MarketCacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MarketCacheError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As at the boundaries
type ConfigurationError struct{ MarketCacheError }
type DatabaseError struct{ MarketCacheError }
type ValidationError struct{ MarketCacheError }

// UpstreamError is a non-success answer (or unusable payload) from a provider.
type UpstreamError struct {
	MarketCacheError
	Status int
	Body   string
}

// TokenExchangeError means the broker refused to issue an access token.
type TokenExchangeError struct {
	MarketCacheError
	Status int
	Body   string
}

// HoldingsFetchError means login succeeded but holdings could not be read.
type HoldingsFetchError struct {
	MarketCacheError
	Status int
	Body   string
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{MarketCacheError{Message: fmt.Sprintf(format, args...)}}
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{MarketCacheError{Message: message, Cause: cause}}
}

func NewUpstreamError(message string, status int, body string) error {
	return &UpstreamError{MarketCacheError: MarketCacheError{Message: message}, Status: status, Body: body}
}

func NewTokenExchangeError(status int, body string) error {
	return &TokenExchangeError{MarketCacheError: MarketCacheError{Message: "token exchange failed"}, Status: status, Body: body}
}

func NewHoldingsFetchError(status int, body string, cause error) error {
	return &HoldingsFetchError{MarketCacheError: MarketCacheError{Message: "holdings fetch failed", Cause: cause}, Status: status, Body: body}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorResponse is the JSON body written for a failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status,omitempty"`
}

type ErrorHandler struct {
	Logger *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

// Classify maps an error to an HTTP status and response body.
func (e *ErrorHandler) Classify(err error) (int, ErrorResponse) {
	var validation *ValidationError
	var tokenErr *TokenExchangeError
	var holdingsErr *HoldingsFetchError
	var upstream *UpstreamError
	var dbErr *DatabaseError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorResponse{Error: validation.Error()}
	case errors.As(err, &tokenErr):
		code := http.StatusBadRequest
		if tokenErr.Status >= 400 {
			code = tokenErr.Status
		}
		return code, ErrorResponse{Error: tokenErr.Error(), Details: tokenErr.Body, Status: tokenErr.Status}
	case errors.As(err, &holdingsErr):
		code := http.StatusBadGateway
		if holdingsErr.Status >= 400 {
			code = holdingsErr.Status
		}
		return code, ErrorResponse{Error: holdingsErr.Error(), Details: holdingsErr.Body, Status: holdingsErr.Status}
	case errors.As(err, &upstream):
		return http.StatusBadGateway, ErrorResponse{Error: upstream.Error(), Details: upstream.Body, Status: upstream.Status}
	case errors.As(err, &dbErr):
		return http.StatusInternalServerError, ErrorResponse{Error: dbErr.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
