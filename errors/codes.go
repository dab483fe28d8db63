package errors

// ErrorCode is the machine-readable code carried in every error response.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable means the engine cannot take work right now.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed means the engine could not be reached at all.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout means the call exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited means too many calls are in flight.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Request errors
const (
	// ErrCodeInvalidInput means the request was malformed.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField means a required form field was absent.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodePayloadTooLarge means the upload exceeded the configured body limit.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	// ErrCodeNotFound means no route matched.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeMethodNotAllowed means the route exists for other methods.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// Authentication errors
const (
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
)

// Internal errors
const (
	// ErrCodeInternal is the catch-all for unexpected failures.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeTranscriptionFailed means the engine ran but reported an error.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable:  true,
	ErrCodeConnectionFailed:    true,
	ErrCodeTimeout:             true,
	ErrCodeRateLimited:         true,
	ErrCodeTranscriptionFailed: false,
	ErrCodeInternal:            false,
}

// IsRetryableCode reports whether a client may reasonably retry after code.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
