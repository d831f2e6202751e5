package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeExchangeUnavailable: "Exchange data unavailable",
	CodeExchangeAPIError:    "Exchange API returned an error",
	CodeMalformedPair:       "Malformed trade pair record",
	CodeMalformedPrice:      "Malformed price record",
	CodePriceNotFound:       "Could not query price",
	CodeEmptySnapshot:       "Market snapshot is empty",

	CodeHoldingsLoadFailed: "Failed to load holdings from file",
	CodeInvalidHolding:     "Invalid holding entry",
	CodeUnknownCommand:     "Unknown command",
	CodeInvalidDepth:       "Invalid chain search depth",

	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
