package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status used when the error reaches the HTTP surface.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Detail returns a string detail, or "" when absent.
func (e *AppError) Detail(key string) string {
	if v, ok := e.Details[key].(string); ok {
		return v
	}
	return ""
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Pipeline constructors ---

// ConversionFailed reports an audio transcoding failure.
func ConversionFailed(reason string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConversionFailed, Message: fmt.Sprintf("audio conversion failed: %s", reason),
		HTTPStatus: http.StatusUnprocessableEntity, Cause: cause,
	}
}

// TranscriptionFailed reports a speech provider failure. Reason is one of
// the Reason* constants and is kept in Details["reason"].
func TranscriptionFailed(reason string, retryable bool, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: "speech recognition failed",
		HTTPStatus: http.StatusBadGateway, Retryable: retryable,
		Details: map[string]any{"reason": reason}, Cause: cause,
	}
}

// Transcription failure reasons.
const (
	ReasonAuth        = "auth"
	ReasonQuota       = "quota"
	ReasonNetwork     = "network"
	ReasonCircuitOpen = "circuit_open"
	ReasonBadRequest  = "bad_request"
)

// DownloadFailed reports a failure fetching an attachment from the transport.
func DownloadFailed(fileID string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDownloadFailed, Message: "could not download attachment",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"file_id": fileID}, Cause: cause,
	}
}

// QuotaExceeded reports that the global audio budget has been used up.
func QuotaExceeded(usedMinutes, limitMinutes float64) *AppError {
	return &AppError{
		Code: ErrCodeQuotaExceeded, Message: fmt.Sprintf("audio quota reached: %.2f/%.0f minutes", usedMinutes, limitMinutes),
		HTTPStatus: http.StatusTooManyRequests,
		Details:    map[string]any{"used_minutes": usedMinutes, "limit_minutes": limitMinutes},
	}
}

// --- Common constructors ---

// ServiceUnavailable creates a new AppError for a service that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ConfigInvalid creates a new AppError for a configuration that cannot be used.
func ConfigInvalid(field, reason string) *AppError {
	return &AppError{
		Code: ErrCodeConfigInvalid, Message: fmt.Sprintf("%s: %s", field, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// DatabaseError creates a new AppError for a database error.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "A database error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
	}
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
