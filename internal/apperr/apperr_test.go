// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestKind_Status(t *testing.T) {
	tests := []struct {
		kind   apperr.Kind
		status int
	}{
		{apperr.ValidationError, http.StatusBadRequest},
		{apperr.DuplicateEmail, http.StatusBadRequest},
		{apperr.InvalidOrExpiredCode, http.StatusBadRequest},
		{apperr.UserNotFound, http.StatusNotFound},
		{apperr.AlreadyVerified, http.StatusBadRequest},
		{apperr.InvalidCredentials, http.StatusUnauthorized},
		{apperr.AccountDeactivated, http.StatusForbidden},
		{apperr.EmailNotVerified, http.StatusForbidden},
		{apperr.AuthenticationRequired, http.StatusUnauthorized},
		{apperr.InvalidToken, http.StatusUnauthorized},
		{apperr.TokenExpired, http.StatusUnauthorized},
		{apperr.InsufficientPermissions, http.StatusForbidden},
		{apperr.CannotDeleteSelf, http.StatusBadRequest},
		{apperr.InternalError, http.StatusInternalServerError},
		{apperr.Kind(999), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.kind.Status())
		})
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("login: %w", apperr.New(apperr.InvalidCredentials))

	assert.Equal(t, apperr.InvalidCredentials, apperr.KindOf(err))
	assert.Equal(t, apperr.InternalError, apperr.KindOf(errors.New("boom")))
	assert.Equal(t, apperr.InternalError, apperr.KindOf(nil))
}

func TestErrorsIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", apperr.New(apperr.UserNotFound).WithMessage("User not found"))

	assert.ErrorIs(t, err, apperr.New(apperr.UserNotFound))
	assert.NotErrorIs(t, err, apperr.New(apperr.DuplicateEmail))
	assert.True(t, apperr.IsKind(err, apperr.UserNotFound))
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("smtp down")
	err := apperr.Wrap(apperr.InternalError, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "InternalError: smtp down", err.Error())
}

func TestWith(t *testing.T) {
	err := apperr.New(apperr.EmailNotVerified).With("email", "a@example.com")

	assert.Equal(t, "a@example.com", err.Fields["email"])
}

func TestKind_MessageID(t *testing.T) {
	assert.Equal(t, "error_invalid_credentials", apperr.InvalidCredentials.MessageID())
	assert.Equal(t, "error_internal", apperr.Kind(999).MessageID())
}
