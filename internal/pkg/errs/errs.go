/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go
error interface and carries a business code, a user-friendly message, and the
HTTP status to report it with.
*/
package errs

import (
	"fmt"
	"net/http"

	"pulsechat/internal/pkg/logx"
)

// CustomError is the error type used throughout the application. It pairs a
// business code with the HTTP status used when the error surfaces on the REST
// side; WebSocket routing logs it and moves on.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the HTTP status code corresponding to this error.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError returns a fresh *CustomError for a predefined error code. An
// unknown code is itself an internal fault and degrades to ErrUnknown.
func NewError(code int) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("no errorMap entry for code %d", code),
			"Unknown error code requested",
			"requested_code", code,
		)
		templateErr = errorMap[ErrUnknown]
	}

	if templateErr.Status == 0 {
		templateErr.Status = http.StatusOK
	}

	return &templateErr
}
