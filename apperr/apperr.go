// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code shared by the gateway and the CLI.
type Code string

const (
	CodeMalformedCode          Code = "MALFORMED_CODE"
	CodeScanFormatUnrecognized Code = "SCAN_FORMAT_UNRECOGNIZED"
	CodeNoCode                 Code = "NO_CODE"
	CodeLegacyCodeTranslated   Code = "LEGACY_CODE_TRANSLATED"
	CodeJoinNotFound           Code = "JOIN_NOT_FOUND"
	CodeJoinAlreadyMember      Code = "JOIN_ALREADY_MEMBER"
	CodeAuthRequired           Code = "AUTH_REQUIRED"
	CodeNetworkFailure         Code = "NETWORK_FAILURE"
	CodeCameraUnavailable      Code = "CAMERA_UNAVAILABLE"
	CodeJoinInProgress         Code = "JOIN_IN_PROGRESS"
	CodeUnauthorized           Code = "UNAUTHORIZED"
	CodeValidation             Code = "VALIDATION"
	CodeBackend                Code = "BACKEND"
)

// HTTPStatus returns the gateway status for a code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeMalformedCode, CodeScanFormatUnrecognized, CodeNoCode, CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeJoinNotFound:
		return http.StatusNotFound
	case CodeJoinAlreadyMember, CodeLegacyCodeTranslated:
		return http.StatusOK
	case CodeAuthRequired:
		return http.StatusAccepted
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeJoinInProgress:
		return http.StatusConflict
	case CodeNetworkFailure, CodeBackend:
		return http.StatusBadGateway
	case CodeCameraUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Recoverable reports whether the user can simply try again.
// Only JOIN_IN_PROGRESS signals a broken invariant.
func (c Code) Recoverable() bool {
	return c != CodeJoinInProgress
}

// Error is the single tagged error type of the join flow.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrMalformedCode          = &Error{Code: CodeMalformedCode, Message: "group code must be 6 digits"}
	ErrScanFormatUnrecognized = &Error{Code: CodeScanFormatUnrecognized, Message: "scanned code format not recognized"}
	ErrNoCode                 = &Error{Code: CodeNoCode, Message: "no group code found"}
	ErrJoinNotFound           = &Error{Code: CodeJoinNotFound, Message: "group not found"}
	ErrJoinAlreadyMember      = &Error{Code: CodeJoinAlreadyMember, Message: "already a member of this group"}
	ErrAuthRequired           = &Error{Code: CodeAuthRequired, Message: "sign in to join the group"}
	ErrNetworkFailure         = &Error{Code: CodeNetworkFailure, Message: "could not reach the server"}
	ErrCameraUnavailable      = &Error{Code: CodeCameraUnavailable, Message: "camera unavailable, enter the code manually"}
	ErrJoinInProgress         = &Error{Code: CodeJoinInProgress, Message: "a join is already in progress"}
	ErrUnauthorized           = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrValidation             = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrBackend                = &Error{Code: CodeBackend, Message: "backend request failed"}
)

// New creates an error with a custom message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error with a custom message around cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Validation returns a VALIDATION error carrying per-field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: fields}
}

// CodeOf extracts the code of err, or "" for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
