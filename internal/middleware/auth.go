// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides the Echo middleware guarding the API.
package middleware

import (
	"net/http"
	"slices"
	"strings"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/auth"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/services/token"
	"github.com/labstack/echo/v4"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// CookieReader extracts the session token from a request's cookie.
type CookieReader interface {
	Token(r *http.Request) (string, bool)
}

// Authenticate rejects requests without a valid session token and stores
// the caller's identity in the request context. The cookie is preferred over
// the Authorization header.
func Authenticate(tokens TokenParser, cookies CookieReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := extractToken(c.Request(), cookies)
			if !ok {
				return apperr.New(apperr.AuthenticationRequired)
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				return err
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}

// OptionalAuth stores the caller's identity when a valid token is present and
// lets anonymous requests through.
func OptionalAuth(tokens TokenParser, cookies CookieReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := extractToken(c.Request(), cookies); ok {
				if claims, err := tokens.Parse(raw); err == nil {
					setIdentity(c, claims)
				}
			}
			return next(c)
		}
	}
}

// RequireRole admits only authenticated callers holding one of roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := auth.GetIdentity(c.Request().Context())
			if id == nil {
				return apperr.New(apperr.AuthenticationRequired)
			}
			if !slices.Contains(roles, id.Role) {
				return apperr.New(apperr.InsufficientPermissions)
			}
			return next(c)
		}
	}
}

func extractToken(r *http.Request, cookies CookieReader) (string, bool) {
	if raw, ok := cookies.Token(r); ok {
		return raw, true
	}
	// "Bearer <token>"; the scheme word is not checked
	fields := strings.Fields(r.Header.Get(echo.HeaderAuthorization))
	if len(fields) < 2 || fields[1] == "" {
		return "", false
	}
	return fields[1], true
}

func setIdentity(c echo.Context, claims *token.Claims) {
	ctx := auth.WithIdentity(c.Request().Context(), &auth.Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	})
	c.SetRequest(c.Request().WithContext(ctx))
}
