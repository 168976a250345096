// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package users implements profile and account administration.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/auth"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/repository"
	authsvc "codeberg.org/nexastore/nexastore/internal/services/auth"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Service struct {
	repo   *repository.Repository
	hasher *authsvc.Hasher
}

func NewService(repo *repository.Repository, hasher *authsvc.Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Changes is a partial update. Nil fields are left untouched. Role and
// IsActive are honoured only for admin actors.
type Changes struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
	IsActive *bool
}

func (c Changes) privileged() bool {
	return c.Role != nil || c.IsActive != nil
}

// ListParams selects a page of users.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Role   models.Role
}

// Pagination describes a page within a result set.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Get returns the user with id, if actor may read it.
func (s *Service) Get(ctx context.Context, actor *auth.Identity, id string) (*models.User, error) {
	if err := auth.Authorize(actor, auth.UserTarget(id), auth.ActionRead).Err(); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// List returns a page of users matching p.
func (s *Service) List(ctx context.Context, actor *auth.Identity, p ListParams) ([]models.User, Pagination, error) {
	if err := auth.Authorize(actor, auth.UserTarget(""), auth.ActionList).Err(); err != nil {
		return nil, Pagination{}, err
	}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	p.Limit = min(p.Limit, MaxLimit)

	offset, ok := repository.PageOffset(p.Page, p.Limit)
	if !ok {
		return nil, Pagination{}, &apperr.Error{
			Kind:    apperr.ValidationError,
			Details: []apperr.FieldError{{Field: "page", Rule: "max", Message: "page is out of range"}},
		}
	}

	list, total, err := s.repo.ListUsers(ctx, repository.UserFilter{
		Search: p.Search,
		Role:   p.Role,
		Limit:  p.Limit,
		Offset: offset,
	})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list users: %w", err)
	}

	return list, Pagination{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (total + p.Limit - 1) / p.Limit,
	}, nil
}

// Update applies c to the user with id. Privileged fields from a non-admin
// actor are dropped. Changing the email requires re-verification.
func (s *Service) Update(ctx context.Context, actor *auth.Identity, id string, c Changes) (*models.User, error) {
	if err := auth.Authorize(actor, auth.UserTarget(id), auth.ActionUpdate).Err(); err != nil {
		return nil, err
	}
	if c.privileged() && !auth.Authorize(actor, auth.UserTarget(id), auth.ActionUpdatePrivileged).Allowed {
		slog.InfoContext(ctx, "privileged_fields_ignored", "user_id", id, "actor_id", actor.UserID)
		c.Role, c.IsActive = nil, nil
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Name != nil {
		user.Name = *c.Name
	}
	if c.Email != nil && *c.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *c.Email); err != nil {
			return nil, err
		}
		user.Email = *c.Email
		user.EmailVerified = false
	}
	if c.Password != nil {
		hash, err := s.hasher.Hash(*c.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if c.Role != nil {
		if !c.Role.Valid() {
			return nil, &apperr.Error{
				Kind:    apperr.ValidationError,
				Details: []apperr.FieldError{{Field: "role", Rule: "oneof", Message: "role must be USER or ADMIN"}},
			}
		}
		user.Role = *c.Role
	}
	if c.IsActive != nil {
		user.IsActive = *c.IsActive
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Wrap(apperr.DuplicateEmail, err).WithMessage("error_email_taken")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Wrap(apperr.UserNotFound, err)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.InfoContext(ctx, "user_updated", "user_id", user.ID, "actor_id", actor.UserID)
	return user, nil
}

// Delete removes the user with id and its verification codes.
func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id string) error {
	if err := auth.Authorize(actor, auth.UserTarget(id), auth.ActionDelete).Err(); err != nil {
		return err
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Wrap(apperr.UserNotFound, err)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.InfoContext(ctx, "user_deleted", "user_id", id, "actor_id", actor.UserID)
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(apperr.UserNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return apperr.New(apperr.DuplicateEmail).WithMessage("error_email_taken")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}
