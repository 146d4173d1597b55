package google

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/kbukum/voicescribe/errors"
)

// classify maps a Speech API error to TRANSCRIPTION_FAILED with a reason.
// Only transient codes are marked retryable.
func classify(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.TranscriptionFailed(apperrors.ReasonNetwork, false, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.TranscriptionFailed(apperrors.ReasonNetwork, true, err)
	}

	code := status.Code(err)
	var appErr *apperrors.AppError
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		appErr = apperrors.TranscriptionFailed(apperrors.ReasonAuth, false, err)
	case codes.ResourceExhausted:
		appErr = apperrors.TranscriptionFailed(apperrors.ReasonQuota, true, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
		appErr = apperrors.TranscriptionFailed(apperrors.ReasonNetwork, true, err)
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		appErr = apperrors.TranscriptionFailed(apperrors.ReasonBadRequest, false, err)
	default:
		appErr = apperrors.TranscriptionFailed(apperrors.ReasonNetwork, false, err)
	}
	return appErr.WithDetail("grpc_code", code.String())
}

// fromChain converts errors raised by the resilience chain itself.
func fromChain(err error) error {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return classify(err)
	}
	switch appErr.Code {
	case apperrors.ErrCodeServiceUnavailable:
		if appErr.Detail("reason") == apperrors.ReasonCircuitOpen {
			return apperrors.TranscriptionFailed(apperrors.ReasonCircuitOpen, true, err)
		}
		return apperrors.TranscriptionFailed(apperrors.ReasonNetwork, true, err)
	case apperrors.ErrCodeTimeout:
		return apperrors.TranscriptionFailed(apperrors.ReasonNetwork, true, err)
	}
	return err
}

// countsAsFailure reports whether err trips the circuit breaker. Only
// transient errors do.
func countsAsFailure(err error) bool {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return true
	}
	return appErr.Retryable
}
