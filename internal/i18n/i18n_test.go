// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"

	"codeberg.org/nexastore/nexastore/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	require.NoError(t, i18n.Init())
	require.NoError(t, i18n.Init())
}

func TestT(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Invalid email or password", i18n.T(ctx, "error_invalid_credentials"))
}

func TestT_German(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.German)

	assert.Equal(t, "Anmeldung erforderlich", i18n.T(ctx, "error_authentication_required"))
}

func TestT_UnknownKeyPassesThrough(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Some literal text", i18n.T(ctx, "Some literal text"))
}

func TestT_NoLocaleContext(t *testing.T) {
	require.NoError(t, i18n.Init())

	assert.Equal(t, "Login successful", i18n.T(context.Background(), "login_success"))
}

func TestTData(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	result := i18n.TData(ctx, "email_code_text", map[string]any{"Code": "4821", "Minutes": 10})
	assert.Contains(t, result, "Your verification code is: 4821")
	assert.Contains(t, result, "expire in 10 minutes")
}

func TestTranslationsComplete(t *testing.T) {
	require.NoError(t, i18n.Init())

	en := i18n.WithLocale(context.Background(), language.English)
	de := i18n.WithLocale(context.Background(), language.German)

	for _, id := range []string{
		"error_internal", "error_validation", "error_duplicate_email", "error_invalid_code",
		"error_user_not_found", "error_already_verified", "error_account_deactivated",
		"error_email_not_verified", "error_insufficient_permissions", "error_cannot_delete_self",
		"signup_success", "reset_request_success", "email_code_subject", "email_purpose_signup",
	} {
		assert.NotEqual(t, id, i18n.T(en, id), "missing english %s", id)
		assert.NotEqual(t, id, i18n.T(de, id), "missing german %s", id)
	}
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		expected       language.Tag
		acceptLanguage string
	}{
		{language.English, "en"},
		{language.English, "en-US"},
		{language.German, "de"},
		{language.German, "de-DE"},
		{language.German, "de-AT"},
		{language.English, "fr"},
		{language.English, ""},
		{language.German, "de, en;q=0.9"},
		{language.English, "en, de;q=0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.acceptLanguage, func(t *testing.T) {
			tag := i18n.MatchLanguage(tt.acceptLanguage)
			base, _ := tag.Base()
			expected, _ := tt.expected.Base()
			assert.Equal(t, expected, base)
		})
	}
}

func TestWithLocale(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), i18n.MatchLanguage("de-AT"))

	assert.Equal(t, "de", i18n.GetLocale(ctx))
}

func TestGetLocale_Default(t *testing.T) {
	assert.Equal(t, "en", i18n.GetLocale(context.Background()))
}
