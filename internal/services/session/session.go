// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session carries session tokens in a signed, httpOnly cookie.
package session

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"

	"codeberg.org/nexastore/nexastore/internal/config"
	"github.com/gorilla/securecookie"
)

const keyLength = 32

// Manager encodes session tokens into cookies and reads them back.
type Manager struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewManager creates a cookie manager. An empty hash key is replaced by a
// random key, which invalidates all cookies on restart.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		slog.Warn("cookie hash key not configured, generating a random one")
		hashKey = securecookie.GenerateRandomKey(keyLength)
	}

	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)

	return &Manager{
		codec:  codec,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		secure: secure,
	}, nil
}

func decodeKey(value, kind string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid session %s key: %w", kind, err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("invalid session %s key: must be %d bytes, got %d", kind, keyLength, len(key))
	}
	return key, nil
}

// Name returns the cookie name.
func (m *Manager) Name() string {
	return m.name
}

// Create returns a cookie carrying token.
func (m *Manager) Create(token string) (*http.Cookie, error) {
	encoded, err := m.codec.Encode(m.name, token)
	if err != nil {
		return nil, fmt.Errorf("encoding session cookie: %w", err)
	}
	return m.cookie(encoded, m.maxAge), nil
}

// Token returns the token carried by the request's cookie. Missing, tampered
// and expired cookies report false.
func (m *Manager) Token(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return "", false
	}

	var token string
	if err := m.codec.Decode(m.name, c.Value, &token); err != nil {
		return "", false
	}
	return token, token != ""
}

// Clear returns a cookie that removes the session cookie.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", -1)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
