// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package users_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/auth"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/repository"
	authsvc "codeberg.org/nexastore/nexastore/internal/services/auth"
	"codeberg.org/nexastore/nexastore/internal/services/users"
	"codeberg.org/nexastore/nexastore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setup(t *testing.T) (*users.Service, *repository.Repository) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return users.NewService(repo, authsvc.NewHasher(bcrypt.MinCost)), repo
}

func identity(u *models.User) *auth.Identity {
	return &auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }

func TestGet(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	jane := testutil.NewTestUser(t, repo, "jane@example.com")
	bob := testutil.NewTestUser(t, repo, "bob@example.com")
	admin := testutil.NewTestUser(t, repo, "admin@example.com", testutil.WithRole(models.RoleAdmin))

	got, err := svc.Get(ctx, identity(jane), jane.ID)
	require.NoError(t, err)
	assert.Equal(t, jane.Email, got.Email)

	_, err = svc.Get(ctx, identity(jane), bob.ID)
	assert.True(t, apperr.IsKind(err, apperr.InsufficientPermissions))

	got, err = svc.Get(ctx, identity(admin), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	_, err = svc.Get(ctx, identity(admin), "missing")
	assert.True(t, apperr.IsKind(err, apperr.UserNotFound))
}

func TestUpdate_SelfCannotChangePrivilegedFields(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	jane := testutil.NewTestUser(t, repo, "jane@example.com")

	got, err := svc.Update(ctx, identity(jane), jane.ID, users.Changes{
		Name:     ptr("Jane Roe"),
		Role:     ptr(models.RoleAdmin),
		IsActive: ptr(false),
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", got.Name)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.True(t, got.IsActive)

	stored, err := repo.GetUserByID(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.True(t, stored.IsActive)
}

func TestUpdate_AdminChangesPrivilegedFields(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	jane := testutil.NewTestUser(t, repo, "jane@example.com")
	admin := testutil.NewTestUser(t, repo, "admin@example.com", testutil.WithRole(models.RoleAdmin))

	got, err := svc.Update(ctx, identity(admin), jane.ID, users.Changes{
		Role:     ptr(models.RoleAdmin),
		IsActive: ptr(false),
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.False(t, got.IsActive)

	_, err = svc.Update(ctx, identity(admin), jane.ID, users.Changes{Role: ptr(models.Role("ROOT"))})
	assert.True(t, apperr.IsKind(err, apperr.ValidationError))

	_, err = svc.Update(ctx, identity(admin), "missing", users.Changes{Name: ptr("x")})
	assert.True(t, apperr.IsKind(err, apperr.UserNotFound))
}

func TestUpdate_EmailChange(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	jane := testutil.NewTestUser(t, repo, "jane@example.com")
	testutil.NewTestUser(t, repo, "bob@example.com")

	_, err := svc.Update(ctx, identity(jane), jane.ID, users.Changes{Email: ptr("bob@example.com")})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.DuplicateEmail))

	got, err := svc.Update(ctx, identity(jane), jane.ID, users.Changes{Email: ptr("jane.roe@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "jane.roe@example.com", got.Email)
	assert.False(t, got.EmailVerified)

	got, err = svc.Update(ctx, identity(jane), jane.ID, users.Changes{Email: ptr("jane.roe@example.com"), Name: ptr("Jane")})
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
}

func TestUpdate_Password(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	jane := testutil.NewTestUser(t, repo, "jane@example.com")

	_, err := svc.Update(ctx, identity(jane), jane.ID, users.Changes{Password: ptr("brand-new-password")})
	require.NoError(t, err)

	stored, err := repo.GetUserByID(ctx, jane.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new-password")))
}

func TestList(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	admin := testutil.NewTestUser(t, repo, "admin@example.com", testutil.WithRole(models.RoleAdmin))
	for i := range 12 {
		testutil.NewTestUser(t, repo, fmt.Sprintf("user%02d@example.com", i))
	}

	list, page, err := svc.List(ctx, identity(admin), users.ListParams{})
	require.NoError(t, err)
	assert.Len(t, list, users.DefaultLimit)
	assert.Equal(t, users.Pagination{Total: 13, Page: 1, Limit: 10, TotalPages: 2}, page)

	list, page, err = svc.List(ctx, identity(admin), users.ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 2, page.Page)

	list, _, err = svc.List(ctx, identity(admin), users.ListParams{Search: "USER01"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "user01@example.com", list[0].Email)

	list, page, err = svc.List(ctx, identity(admin), users.ListParams{Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, page.TotalPages)

	_, page, err = svc.List(ctx, identity(admin), users.ListParams{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, users.MaxLimit, page.Limit)
}

func TestList_PageOutOfRange(t *testing.T) {
	svc, repo := setup(t)
	admin := testutil.NewTestUser(t, repo, "admin@example.com", testutil.WithRole(models.RoleAdmin))

	_, _, err := svc.List(context.Background(), identity(admin), users.ListParams{Page: math.MaxInt, Limit: 10})
	require.True(t, apperr.IsKind(err, apperr.ValidationError))

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "page", appErr.Details[0].Field)
}

func TestList_RequiresAdmin(t *testing.T) {
	svc, repo := setup(t)
	jane := testutil.NewTestUser(t, repo, "jane@example.com")

	_, _, err := svc.List(context.Background(), identity(jane), users.ListParams{})
	assert.True(t, apperr.IsKind(err, apperr.InsufficientPermissions))
}

func TestDelete(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	jane := testutil.NewTestUser(t, repo, "jane@example.com")
	admin := testutil.NewTestUser(t, repo, "admin@example.com", testutil.WithRole(models.RoleAdmin))

	err := svc.Delete(ctx, identity(admin), admin.ID)
	assert.True(t, apperr.IsKind(err, apperr.CannotDeleteSelf))

	err = svc.Delete(ctx, identity(jane), admin.ID)
	assert.True(t, apperr.IsKind(err, apperr.InsufficientPermissions))

	require.NoError(t, svc.Delete(ctx, identity(admin), jane.ID))

	err = svc.Delete(ctx, identity(admin), jane.ID)
	assert.True(t, apperr.IsKind(err, apperr.UserNotFound))
}
