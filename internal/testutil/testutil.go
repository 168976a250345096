// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"codeberg.org/nexastore/nexastore/internal/database"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/repository"
	"codeberg.org/nexastore/nexastore/internal/services/email"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of users created by NewTestUser.
const TestPassword = "correct-horse-battery"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// UserOption customizes a user created by NewTestUser.
type UserOption func(*models.User)

func WithRole(role models.Role) UserOption {
	return func(u *models.User) { u.Role = role }
}

func Unverified() UserOption {
	return func(u *models.User) { u.EmailVerified = false }
}

func Inactive() UserOption {
	return func(u *models.User) { u.IsActive = false }
}

// NewTestUser creates a verified, active USER with TestPassword.
func NewTestUser(t *testing.T, repo *repository.Repository, emailAddr string, opts ...UserOption) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:         emailAddr,
		PasswordHash:  string(hash),
		Name:          "Test User",
		Role:          models.RoleUser,
		EmailVerified: true,
		IsActive:      true,
	}
	for _, opt := range opts {
		opt(user)
	}

	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// LatestCode returns the plaintext of the newest code issued for (email, purpose).
func LatestCode(t *testing.T, repo *repository.Repository, emailAddr string, purpose models.CodePurpose) string {
	t.Helper()
	code, err := repo.LatestVerificationCode(context.Background(), emailAddr, purpose)
	require.NoError(t, err)
	return code.Code
}

// Mailer records outgoing messages instead of delivering them.
type Mailer struct {
	mu       sync.Mutex
	messages []email.Message
	Err      error // returned from Send when set
}

func (m *Mailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (m *Mailer) Messages() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.messages...)
}

// Last returns the most recent message, or the zero Message if none was sent.
func (m *Mailer) Last() email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return email.Message{}
	}
	return m.messages[len(m.messages)-1]
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
