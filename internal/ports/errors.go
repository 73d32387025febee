package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Price Provider Errors
	ErrMissingData         = errors.New("price provider returned no data for ticker")
	ErrMalformedData       = errors.New("price provider returned incomplete or non-tabular data")
	ErrProviderUnavailable = errors.New("price provider API is unavailable")
	ErrRateLimited         = errors.New("API rate limit exceeded")
	ErrConnectionFailed    = errors.New("failed to connect to the price provider")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")
)
