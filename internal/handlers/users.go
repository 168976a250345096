// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/auth"
	"codeberg.org/nexastore/nexastore/internal/i18n"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/services/users"
	"github.com/labstack/echo/v4"
)

// UserHandlers contains handlers for profile and user administration.
type UserHandlers struct {
	users *users.Service
}

func NewUsers(svc *users.Service) *UserHandlers {
	return &UserHandlers{users: svc}
}

// UpdateUserRequest is a partial user update. Role and isActive are ignored
// unless the caller is an admin.
type UpdateUserRequest struct {
	Name     *string      `json:"name" validate:"omitempty,min=2"`
	Email    *string      `json:"email" validate:"omitempty,email"`
	Password *string      `json:"password" validate:"omitempty,min=8"`
	Role     *models.Role `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	IsActive *bool        `json:"isActive"`
}

func (r UpdateUserRequest) changes() users.Changes {
	return users.Changes{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     r.Role,
		IsActive: r.IsActive,
	}
}

// Me returns the caller's profile.
func (h *UserHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	actor := auth.GetIdentity(ctx)

	user, err := h.users.Get(ctx, actor, actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user.Public()})
}

// UpdateMe updates the caller's profile.
func (h *UserHandlers) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	return h.update(c, auth.GetIdentity(ctx).UserID, "profile_updated")
}

// List returns a page of users. Query: page, limit, search, role.
func (h *UserHandlers) List(c echo.Context) error {
	var (
		p    users.ListParams
		role string
	)
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		String("search", &p.Search).
		String("role", &role).
		BindError()
	if err != nil {
		return apperr.Wrap(apperr.ValidationError, err).WithMessage("error_validation")
	}
	p.Role = models.Role(role)

	ctx := c.Request().Context()
	list, page, err := h.users.List(ctx, auth.GetIdentity(ctx), p)
	if err != nil {
		return err
	}

	out := make([]models.PublicUser, 0, len(list))
	for i := range list {
		out = append(out, list[i].Public())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"users":      out,
		"pagination": page,
	})
}

// Get returns one user.
func (h *UserHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.users.Get(ctx, auth.GetIdentity(ctx), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user.Public()})
}

// Update changes one user, including role and activation state.
func (h *UserHandlers) Update(c echo.Context) error {
	return h.update(c, c.Param("id"), "user_updated")
}

// Delete removes one user.
func (h *UserHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.users.Delete(ctx, auth.GetIdentity(ctx), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"message": i18n.T(ctx, "user_deleted")})
}

func (h *UserHandlers) update(c echo.Context, id, messageID string) error {
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.users.Update(ctx, auth.GetIdentity(ctx), id, req.changes())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": i18n.T(ctx, messageID),
		"user":    user.Public(),
	})
}
