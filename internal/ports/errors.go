package ports

import "errors"

// Standard application-level errors.
// Stages wrap these with context; callers classify them with errors.Is.
var (
	// Analysis Errors
	ErrMissingColumn        = errors.New("required price field is missing")
	ErrInsufficientData     = errors.New("insufficient data")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrInsufficientLevels   = errors.New("insufficient price levels")
	ErrNoQualifyingBar      = errors.New("no bar satisfies the exit condition")
	ErrInvalidTrade         = errors.New("invalid trade")
	ErrUnorderedSeries      = errors.New("bar open times are not strictly increasing")

	// General Errors
	ErrUnknown         = errors.New("unknown error occurred")
	ErrInvalidRequest  = errors.New("invalid request parameters or format")
	ErrNotFound        = errors.New("resource not found")
	ErrTimeout         = errors.New("operation timed out")
	ErrContextCanceled = errors.New("operation canceled via context")

	// Market Data Errors
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrMissingColumn, "missing_column"},
	{ErrInsufficientData, "insufficient_data"},
	{ErrInvalidConfiguration, "invalid_configuration"},
	{ErrDivisionByZero, "division_by_zero"},
	{ErrInsufficientLevels, "insufficient_levels"},
	{ErrNoQualifyingBar, "no_qualifying_bar"},
	{ErrInvalidTrade, "invalid_trade"},
	{ErrUnorderedSeries, "unordered_series"},
	{ErrInvalidRequest, "invalid_request"},
	{ErrNotFound, "not_found"},
	{ErrTimeout, "timeout"},
	{ErrContextCanceled, "canceled"},
	{ErrConnectionFailed, "connection_failed"},
	{ErrRateLimited, "rate_limited"},
	{ErrAuthenticationFailed, "authentication_failed"},
	{ErrDBConnection, "db_connection"},
	{ErrQueryFailed, "query_failed"},
}

// ErrorKind returns a stable name for the first standard error wrapped by err.
// It returns "" for nil and "unknown" for unclassified errors.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
