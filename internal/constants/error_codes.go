package constants

// Analytics error codes returned by the page-level pipelines.

// Input errors
const (
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeUnknownTable     = "UNKNOWN_TABLE"
	ErrCodeUnknownQuery     = "UNKNOWN_QUERY"
	ErrCodeInvalidQuery     = "INVALID_QUERY"
)

// Data errors
const (
	ErrCodeNoData        = "NO_DATA"
	ErrCodeColumnMissing = "COLUMN_MISSING"
)

// Execution errors
const (
	ErrCodeQueryFailed   = "QUERY_FAILED"
	ErrCodeQueryTimeout  = "QUERY_TIMEOUT"
	ErrCodeExportFailed  = "EXPORT_FAILED"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// ErrorMessages holds the human-readable message for each error code.
var ErrorMessages = map[string]string{
	ErrCodeInvalidParameter: "One or more request parameters are invalid",
	ErrCodeUnknownTable:     "The requested table does not exist",
	ErrCodeUnknownQuery:     "The requested predefined query does not exist",
	ErrCodeInvalidQuery:     "Only a single read-only SELECT statement is allowed",

	ErrCodeNoData:        "No data available",
	ErrCodeColumnMissing: "A required column is missing from the source table",

	ErrCodeQueryFailed:   "The query could not be executed",
	ErrCodeQueryTimeout:  "The query took too long and was cancelled",
	ErrCodeExportFailed:  "The result could not be exported",
	ErrCodeUnauthorized:  "Missing or invalid admin token",
	ErrCodeRateLimited:   "Rate limit exceeded. Please try again later",
	ErrCodeInternalError: "An unexpected error occurred",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
