package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Market data error codes
const (
	CodeExchangeUnavailable Code = "EXCHANGE_UNAVAILABLE"
	CodeExchangeAPIError    Code = "EXCHANGE_API_ERROR"
	CodeMalformedPair       Code = "MALFORMED_PAIR"
	CodeMalformedPrice      Code = "MALFORMED_PRICE"
	CodePriceNotFound       Code = "PRICE_NOT_FOUND"
	CodeEmptySnapshot       Code = "EMPTY_SNAPSHOT"
)

// Query error codes
const (
	CodeHoldingsLoadFailed Code = "HOLDINGS_LOAD_FAILED"
	CodeInvalidHolding     Code = "INVALID_HOLDING"
	CodeUnknownCommand     Code = "UNKNOWN_COMMAND"
	CodeInvalidDepth       Code = "INVALID_DEPTH"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
