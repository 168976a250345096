// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides the caller identity and the authorization policy.
package auth

import (
	"context"

	"codeberg.org/nexastore/nexastore/internal/ctxkeys"
	"codeberg.org/nexastore/nexastore/internal/models"
)

// Identity is the authenticated caller, as asserted by a verified session token.
type Identity struct {
	UserID string
	Email  string
	Role   models.Role
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// WithIdentity stores the caller in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxkeys.Identity{}, id)
}

// GetIdentity returns the caller from the context, or nil if not authenticated.
func GetIdentity(ctx context.Context) *Identity {
	if id, ok := ctx.Value(ctxkeys.Identity{}).(*Identity); ok {
		return id
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated caller.
func IsAuthenticated(ctx context.Context) bool {
	return GetIdentity(ctx) != nil
}
