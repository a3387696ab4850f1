/*
Package errs provides the application error type and its business error codes.

This file defines CustomError, which implements the error interface and carries a business
code, a client-facing message and the HTTP status the code is answered with. NewError is
the only constructor handlers should use.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"dmchat/internal/pkg/logx"
)

// CustomError is the error type handlers return to HTTP clients.
// It pairs a business code with a user-facing message and an HTTP status, and is
// rendered into the response envelope by resp.RespondError.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the HTTP status code answered for this error.
	Status int
}

// Error implements the error interface. The string includes the business code,
// the HTTP status and the message, and is meant for logs rather than clients.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// Is reports whether target is a *CustomError with the same business code.
// NewError returns a fresh instance on every call, so errors.Is compares codes
// rather than pointers.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && t.Code == e.Code
}

// NewError builds a new *CustomError from a code registered in errorMap.
// For ErrUnknown an underlying error may be passed as the first detail; it is
// logged and never shown to the client. For other codes details are printf
// arguments for the message template. Unregistered codes fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &unknownErr
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	if code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(
				originalErr,
				"Handling ErrUnknown with underlying error",
			)
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
				"code", code,
			)
		}
	}

	return &customErr
}
