package claimgate

import (
	"errors"
	"net/http"
)

// Code identifies every user-facing failure the gate can surface. Anything
// the collaborators return that is not recognized maps to CodeInternal with
// a generic message; the gate never leaks raw store errors.
type Code string

const (
	CodeTenantNotFound     Code = "tenant-not-found"
	CodeClaimConflict      Code = "claim-conflict"
	CodeInvalidCredentials Code = "invalid-credentials"
	CodeEmailNotConfirmed  Code = "email-not-confirmed"
	CodePasswordMismatch   Code = "password-mismatch"
	CodeWeakPassword       Code = "weak-password"
	CodeResetRequestFailed Code = "reset-request-failed"
	CodeInternal           Code = "internal"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

func gateErr(code Code, msg string) *Error { return &Error{Code: code, Message: msg} }

// AsError unwraps a gate error, mapping anything else to the generic
// fallback.
func AsError(err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return gateErr(CodeInternal, "something went wrong, try again")
}

// Status maps taxonomy codes to HTTP statuses.
func (e *Error) Status() int {
	switch e.Code {
	case CodeTenantNotFound:
		return http.StatusNotFound
	case CodeClaimConflict:
		return http.StatusConflict
	case CodeInvalidCredentials, CodeEmailNotConfirmed:
		return http.StatusUnauthorized
	case CodePasswordMismatch, CodeWeakPassword:
		return http.StatusBadRequest
	case CodeResetRequestFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
