package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON body of a failed request. Error holds the
// human-readable message so clients that only look at "error" still get text.
type ErrorResponse struct {
	OK        bool           `json:"ok"`
	Error     string         `json:"error"`
	Code      ErrorCode      `json:"code"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts e into the body sent to clients.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		OK:        false,
		Error:     e.Message,
		Code:      e.Code,
		Retryable: e.Retryable,
		Details:   e.Details,
	}
}

// AsAppError unwraps err to an *AppError if one is in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap returns err as an *AppError, wrapping anything else as Internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
