// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"codeberg.org/nexastore/nexastore/internal/models"
	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, name, role, email_verified, is_active, created_at, updated_at, last_login_at`

// UserFilter narrows ListUsers.
type UserFilter struct {
	Search string      // case-insensitive substring of email or name
	Role   models.Role // exact match when set
	Limit  int
	Offset int
}

// CreateUser inserts a user. ID and timestamps are filled in when empty.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	_, err := r.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role,
		user.EmailVerified, user.IsActive, user.CreatedAt, user.UpdatedAt, user.LastLoginAt)
	return err
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users, newest first, and the total match count.
func (r *Repository) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, `(LOWER(email) LIKE ? OR LOWER(name) LIKE ?)`)
		args = append(args, pattern, pattern)
	}
	if f.Role != "" {
		where = append(where, `role = ?`)
		args = append(args, f.Role)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM users`+clause, args...); err != nil {
		return nil, 0, err
	}

	limit, offset := pageArgs(f.Limit, f.Offset)
	users := []models.User{}
	err := r.selectAll(ctx, &users,
		`SELECT `+userColumns+` FROM users`+clause+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateUser writes the mutable profile fields of user and bumps updated_at.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	n, err := r.exec(ctx,
		`UPDATE users SET email = ?, password_hash = ?, name = ?, role = ?, email_verified = ?,
		 is_active = ?, updated_at = ?, last_login_at = ? WHERE id = ?`,
		user.Email, user.PasswordHash, user.Name, user.Role, user.EmailVerified,
		user.IsActive, user.UpdatedAt, user.LastLoginAt, user.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	n, err := r.exec(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkEmailVerified flags the user's email as verified and records a login at now.
func (r *Repository) MarkEmailVerified(ctx context.Context, email string, now time.Time) error {
	n, err := r.exec(ctx,
		`UPDATE users SET email_verified = ?, last_login_at = ?, updated_at = ? WHERE email = ?`,
		true, now, now, email)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id string, now time.Time) error {
	_, err := r.exec(ctx, `UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`, now, now, id)
	return err
}

// DeleteUser removes a user together with the verification codes issued to
// their email address.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		user, err := tx.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.exec(ctx, `DELETE FROM verification_codes WHERE email = ?`, user.Email); err != nil {
			return err
		}
		_, err = tx.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
		return err
	})
}

// CountAdmins returns the number of admin users.
func (r *Repository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.get(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = ?`, models.RoleAdmin)
	return count, err
}
