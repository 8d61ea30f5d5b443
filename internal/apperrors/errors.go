// Package apperrors defines the error taxonomy shared by the data layer:
// validation errors, translated integrity violations, and the transient
// connectivity classification used by the retry wrapper.
package apperrors

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"gorm.io/gorm"
)

// ValidationError signals malformed input or a violated business invariant.
// It rolls back the active transaction and is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a ValidationError from a format string.
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIntegrity reports whether err is a storage-level uniqueness violation.
func IsIntegrity(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate")
}

// TranslateIntegrity maps a uniqueness-constraint violation to a
// human-readable ValidationError. The low-level message is inspected for the
// offending column so duplicate usernames and emails get field-specific
// messages; anything else falls back to a generic one. Non-integrity errors
// are returned unchanged.
func TranslateIntegrity(err error, entityType string) error {
	if err == nil || !IsIntegrity(err) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "username"):
		return NewValidation("a %s with this username already exists", entityType)
	case strings.Contains(msg, "email"):
		return NewValidation("a %s with this email address already exists", entityType)
	default:
		return NewValidation("this %s already exists", entityType)
	}
}

var transientSubstrings = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"bad connection",
	"i/o timeout",
	"database is locked",
	"too many connections",
	"the database system is starting up",
}

// IsTransient reports whether err looks like a transient connectivity failure
// worth retrying. Validation and integrity errors are never transient.
func IsTransient(err error) bool {
	if err == nil || IsValidation(err) || IsIntegrity(err) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range transientSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
