package errors

const (
	HttpInternalError          = "internal_error"
	HttpInvalidJsonError       = "invalid_json"
	HttpInvalidPayloadError    = "invalid_payload_format"
	HttpValidationError        = "validation_error"
	HttpInvalidDateFormatError = "invalid_date_format"
	HttpInvalidRangeError      = "invalid_range"
	HttpTransientStoreError    = "transient_store_error"
	HttpAggregationFailure     = "aggregation_failure"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
