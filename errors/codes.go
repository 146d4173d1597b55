package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline errors, one per failing stage of a voice message.
const (
	// ErrCodeConversionFailed indicates the audio could not be transcoded.
	ErrCodeConversionFailed ErrorCode = "CONVERSION_FAILED"
	// ErrCodeTranscriptionFailed indicates the speech provider rejected or failed the request.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeDownloadFailed indicates the attachment could not be fetched from the transport.
	ErrCodeDownloadFailed ErrorCode = "DOWNLOAD_FAILED"
	// ErrCodeQuotaExceeded indicates the global audio budget is used up.
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
)

// Availability errors (retryable)
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
)

// Input and configuration errors
const (
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// Internal errors
const (
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeDatabaseError:      true,
	ErrCodeDownloadFailed:     true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
