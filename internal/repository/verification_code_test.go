// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/repository"
	"codeberg.org/nexastore/nexastore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCode(email, code string, purpose models.CodePurpose, ttl time.Duration) *models.VerificationCode {
	return &models.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
}

func TestReplaceVerificationCode_InvalidatesSiblings(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	addr := "codes@example.com"

	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode(addr, "1111", models.PurposeSignup, time.Minute)))
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode(addr, "9999", models.PurposeResetPassword, time.Minute)))
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode(addr, "2222", models.PurposeSignup, time.Minute)))

	count, err := repo.CountVerificationCodes(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one code per purpose")

	latest, err := repo.LatestVerificationCode(ctx, addr, models.PurposeSignup)
	require.NoError(t, err)
	assert.Equal(t, "2222", latest.Code)

	ok, err := repo.ConsumeVerificationCode(ctx, addr, "1111", models.PurposeSignup, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok, "superseded code must not be accepted")

	ok, err = repo.ConsumeVerificationCode(ctx, addr, "9999", models.PurposeResetPassword, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok, "codes for other purposes are untouched")
}

func TestConsumeVerificationCode_SingleUse(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	addr := "once@example.com"
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode(addr, "4321", models.PurposeSignup, time.Minute)))

	ok, err := repo.ConsumeVerificationCode(ctx, addr, "4321", models.PurposeSignup, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeVerificationCode(ctx, addr, "4321", models.PurposeSignup, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeVerificationCode_Concurrent(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	addr := "race@example.com"
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode(addr, "5555", models.PurposeResetPassword, time.Minute)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ConsumeVerificationCode(ctx, addr, "5555", models.PurposeResetPassword, time.Now().UTC())
			if err == nil && ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestConsumeVerificationCode_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	addr := "late@example.com"
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode(addr, "1234", models.PurposeSignup, time.Minute)))

	ok, err := repo.ConsumeVerificationCode(ctx, addr, "1234", models.PurposeSignup, time.Now().UTC().Add(2*time.Minute))

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeVerificationCode_WrongInputs(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	addr := "wrong@example.com"
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode(addr, "1234", models.PurposeSignup, time.Minute)))
	now := time.Now().UTC()

	tests := []struct {
		name    string
		email   string
		code    string
		purpose models.CodePurpose
	}{
		{"wrong code", addr, "4321", models.PurposeSignup},
		{"wrong email", "other@example.com", "1234", models.PurposeSignup},
		{"wrong purpose", addr, "1234", models.PurposeResetPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := repo.ConsumeVerificationCode(ctx, tt.email, tt.code, tt.purpose, now)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestLatestVerificationCode_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.LatestVerificationCode(context.Background(), "none@example.com", models.PurposeSignup)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteExpiredVerificationCodes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode("expired@example.com", "1000", models.PurposeSignup, -time.Minute)))
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode("used@example.com", "2000", models.PurposeSignup, time.Minute)))
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode("live@example.com", "3000", models.PurposeSignup, time.Minute)))

	ok, err := repo.ConsumeVerificationCode(ctx, "used@example.com", "2000", models.PurposeSignup, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, ok)

	n, err := repo.DeleteExpiredVerificationCodes(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := repo.CountVerificationCodes(ctx, "live@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteVerificationCodes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode("a@example.com", "1000", models.PurposeSignup, time.Minute)))
	require.NoError(t, repo.ReplaceVerificationCode(ctx, newCode("a@example.com", "2000", models.PurposeResetPassword, time.Minute)))

	require.NoError(t, repo.DeleteVerificationCodes(ctx, "a@example.com"))

	count, err := repo.CountVerificationCodes(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)
}
