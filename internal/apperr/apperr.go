// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperr defines the error kinds surfaced by the API.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	InternalError Kind = iota
	ValidationError
	DuplicateEmail
	DuplicateSlug
	InvalidOrExpiredCode
	UserNotFound
	ProductNotFound
	AlreadyVerified
	InvalidCredentials
	AccountDeactivated
	EmailNotVerified
	AuthenticationRequired
	InvalidToken
	TokenExpired
	InsufficientPermissions
	CannotDeleteSelf
)

var kindInfo = map[Kind]struct {
	name      string
	status    int
	messageID string
}{
	InternalError:           {"InternalError", http.StatusInternalServerError, "error_internal"},
	ValidationError:         {"ValidationError", http.StatusBadRequest, "error_validation"},
	DuplicateEmail:          {"DuplicateEmail", http.StatusBadRequest, "error_duplicate_email"},
	DuplicateSlug:           {"DuplicateSlug", http.StatusBadRequest, "error_duplicate_slug"},
	InvalidOrExpiredCode:    {"InvalidOrExpiredCode", http.StatusBadRequest, "error_invalid_code"},
	UserNotFound:            {"UserNotFound", http.StatusNotFound, "error_user_not_found"},
	ProductNotFound:         {"ProductNotFound", http.StatusNotFound, "error_product_not_found"},
	AlreadyVerified:         {"AlreadyVerified", http.StatusBadRequest, "error_already_verified"},
	InvalidCredentials:      {"InvalidCredentials", http.StatusUnauthorized, "error_invalid_credentials"},
	AccountDeactivated:      {"AccountDeactivated", http.StatusForbidden, "error_account_deactivated"},
	EmailNotVerified:        {"EmailNotVerified", http.StatusForbidden, "error_email_not_verified"},
	AuthenticationRequired:  {"AuthenticationRequired", http.StatusUnauthorized, "error_authentication_required"},
	InvalidToken:            {"InvalidToken", http.StatusUnauthorized, "error_invalid_token"},
	TokenExpired:            {"TokenExpired", http.StatusUnauthorized, "error_token_expired"},
	InsufficientPermissions: {"InsufficientPermissions", http.StatusForbidden, "error_insufficient_permissions"},
	CannotDeleteSelf:        {"CannotDeleteSelf", http.StatusBadRequest, "error_cannot_delete_self"},
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "Unknown"
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	if info, ok := kindInfo[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// MessageID returns the translation ID of the kind's default message.
func (k Kind) MessageID() string {
	if info, ok := kindInfo[k]; ok {
		return info.messageID
	}
	return kindInfo[InternalError].messageID
}

// Error is an error carrying a Kind. Details and Fields are copied into the
// response body by the HTTP layer.
type Error struct { //nolint:govet // fieldalignment: readability over optimization
	Kind    Kind
	Message string
	Details []FieldError
	Fields  map[string]any
	Err     error
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.New(k))
// works on wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New returns an error of the given kind.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Wrap returns an error of the given kind wrapping err.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// WithMessage sets an explicit message, overriding the translated default.
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// With attaches an extra field to the response body.
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// KindOf returns the kind of err, or InternalError if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalError
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
