// Package httperr maps HTTP status codes returned by the artifact store to
// workspace error codes.
package httperr

import (
	"net/http"

	"github.com/jmgilman/go/errors"
)

// Code returns the error code for an HTTP status.
func Code(statusCode int) errors.ErrorCode {
	switch statusCode {
	case http.StatusNotFound:
		return errors.CodeNotFound
	case http.StatusUnauthorized:
		return errors.CodeUnauthorized
	case http.StatusForbidden:
		return errors.CodeForbidden
	case http.StatusConflict:
		return errors.CodeConflict
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return errors.CodeInvalidInput
	case http.StatusTooManyRequests:
		return errors.CodeRateLimit
	default:
		if statusCode >= 500 {
			return errors.CodeNetwork
		}
		return errors.CodeInternal
	}
}

// Wrap wraps err with the code derived from statusCode.
// Returns nil if err is nil.
func Wrap(err error, statusCode int, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, Code(statusCode), message)
}
