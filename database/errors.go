package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/voicescribe/errors"
)

// IsBusyError reports whether err is SQLite lock contention that a retry
// may resolve.
func IsBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range []string{"database is locked", "database table is locked", "sqlite_busy"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsNotFoundError checks if the error is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDatabase converts a database error to an AppError with code
// DATABASE_ERROR. Lock contention stays retryable; everything else is not.
func FromDatabase(err error, op string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	appErr := apperrors.DatabaseError(err).WithDetail("operation", op)
	appErr.Retryable = IsBusyError(err)
	return appErr
}
