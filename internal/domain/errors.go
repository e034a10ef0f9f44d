package domain

import "errors"

var (
	// ErrTransportTimeout is returned when the API call exceeds its deadline
	ErrTransportTimeout = errors.New("rakumart API request timed out")

	// ErrTransportNetwork is returned for connection failures and non-2xx responses
	ErrTransportNetwork = errors.New("rakumart API network error")

	// ErrResponseDecode is returned when the response body is not JSON
	ErrResponseDecode = errors.New("rakumart API response is not valid JSON")

	// ErrAPILogicalFailure is returned when the envelope reports success=false
	ErrAPILogicalFailure = errors.New("rakumart API reported failure")

	// ErrInvalidCredentials is returned when the envelope carries the
	// invalid-credentials code
	ErrInvalidCredentials = errors.New("rakumart API rejected credentials")

	// ErrUnexpectedEnvelope is returned when the payload is missing at its
	// documented location
	ErrUnexpectedEnvelope = errors.New("unexpected rakumart API response structure")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoResult is returned by services when an operation produced no data
	ErrNoResult = errors.New("no result")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)

// IsNoResult reports whether err is one of the failures that callers treat
// as an empty answer rather than a crash.
func IsNoResult(err error) bool {
	return errors.Is(err, ErrNoResult) ||
		errors.Is(err, ErrTransportTimeout) ||
		errors.Is(err, ErrTransportNetwork) ||
		errors.Is(err, ErrResponseDecode) ||
		errors.Is(err, ErrAPILogicalFailure) ||
		errors.Is(err, ErrUnexpectedEnvelope)
}
