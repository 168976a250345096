// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/nexastore/nexastore/internal/config"
	"codeberg.org/nexastore/nexastore/internal/services/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validHashKey is a valid 32-byte hex-encoded key for testing
const validHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// validBlockKey is a valid 32-byte hex-encoded key for encryption testing
const validBlockKey = "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"

func newTestConfig() *config.SessionConfig {
	return &config.SessionConfig{
		CookieName: "token",
		MaxAge:     3600,
		HashKey:    validHashKey,
	}
}

func requestWith(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestNewManager(t *testing.T) {
	mgr, err := session.NewManager(newTestConfig(), false)

	require.NoError(t, err)
	assert.Equal(t, "token", mgr.Name())
}

func TestNewManager_WithBlockKey(t *testing.T) {
	cfg := newTestConfig()
	cfg.BlockKey = validBlockKey

	mgr, err := session.NewManager(cfg, true)

	require.NoError(t, err)
	assert.NotNil(t, mgr)
}

func TestNewManager_InvalidKeys(t *testing.T) {
	tests := []struct {
		name     string
		hashKey  string
		blockKey string
		msg      string
	}{
		{"hash not hex", "not-hex-encoded", "", "invalid session hash key"},
		{"hash too short", "0123456789abcdef", "", "must be 32 bytes"},
		{"block not hex", validHashKey, "not-hex-encoded", "invalid session block key"},
		{"block too short", validHashKey, "0123456789abcdef", "must be 32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			cfg.HashKey = tt.hashKey
			cfg.BlockKey = tt.blockKey

			_, err := session.NewManager(cfg, false)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewManager_DevMode_GeneratesKey(t *testing.T) {
	cfg := newTestConfig()
	cfg.HashKey = ""

	mgr, err := session.NewManager(cfg, false)

	require.NoError(t, err)
	cookie, err := mgr.Create("jwt")
	require.NoError(t, err)
	token, ok := mgr.Token(requestWith(cookie))
	assert.True(t, ok)
	assert.Equal(t, "jwt", token)
}

func TestCreate(t *testing.T) {
	mgr, err := session.NewManager(newTestConfig(), false)
	require.NoError(t, err)

	cookie, err := mgr.Create("header.payload.signature")

	require.NoError(t, err)
	assert.Equal(t, "token", cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.NotEqual(t, "header.payload.signature", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestCreate_SecureMode(t *testing.T) {
	mgr, err := session.NewManager(newTestConfig(), true)
	require.NoError(t, err)

	cookie, err := mgr.Create("jwt")

	require.NoError(t, err)
	assert.True(t, cookie.Secure)
}

func TestToken(t *testing.T) {
	cfg := newTestConfig()
	cfg.BlockKey = validBlockKey
	mgr, err := session.NewManager(cfg, false)
	require.NoError(t, err)

	cookie, err := mgr.Create("header.payload.signature")
	require.NoError(t, err)

	token, ok := mgr.Token(requestWith(cookie))

	assert.True(t, ok)
	assert.Equal(t, "header.payload.signature", token)
}

func TestToken_Rejected(t *testing.T) {
	mgr, err := session.NewManager(newTestConfig(), false)
	require.NoError(t, err)
	valid, err := mgr.Create("jwt")
	require.NoError(t, err)

	tampered := *valid
	tampered.Value = valid.Value[:len(valid.Value)-5] + "XXXXX"

	other, err := session.NewManager(&config.SessionConfig{CookieName: "token", MaxAge: 3600, HashKey: validBlockKey}, false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mgr    *session.Manager
		cookie *http.Cookie
	}{
		{"no cookie", mgr, nil},
		{"garbage", mgr, &http.Cookie{Name: "token", Value: "invalid-cookie-value"}},
		{"tampered", mgr, &tampered},
		{"different key", other, valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.mgr.Token(requestWith(tt.cookie))
			assert.False(t, ok)
		})
	}
}

func TestToken_Expired(t *testing.T) {
	cfg := newTestConfig()
	cfg.MaxAge = 1
	mgr, err := session.NewManager(cfg, false)
	require.NoError(t, err)

	cookie, err := mgr.Create("jwt")
	require.NoError(t, err)

	time.Sleep(2 * time.Second)

	_, ok := mgr.Token(requestWith(cookie))
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	mgr, err := session.NewManager(newTestConfig(), true)
	require.NoError(t, err)

	cookie := mgr.Clear()

	assert.Equal(t, "token", cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}
