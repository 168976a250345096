// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/nexastore/nexastore/internal/models"
)

const codeColumns = `id, email, code, purpose, expires_at, verified, created_at`

// ReplaceVerificationCode deletes every code for (email, purpose) and stores
// code in its place, atomically.
func (r *Repository) ReplaceVerificationCode(ctx context.Context, code *models.VerificationCode) error {
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}

	return r.WithTx(ctx, func(tx *Repository) error {
		if _, err := tx.exec(ctx,
			`DELETE FROM verification_codes WHERE email = ? AND purpose = ?`,
			code.Email, code.Purpose); err != nil {
			return err
		}
		_, err := tx.exec(ctx,
			`INSERT INTO verification_codes (email, code, purpose, expires_at, verified, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			code.Email, code.Code, code.Purpose, code.ExpiresAt, false, code.CreatedAt)
		return err
	})
}

// ConsumeVerificationCode marks a matching, unexpired, unused code as used.
// It reports whether exactly one code was consumed; concurrent callers
// racing on the same code see at most one success.
func (r *Repository) ConsumeVerificationCode(ctx context.Context, email, code string, purpose models.CodePurpose, now time.Time) (bool, error) {
	n, err := r.exec(ctx,
		`UPDATE verification_codes SET verified = ?
		 WHERE email = ? AND code = ? AND purpose = ? AND verified = ? AND expires_at >= ?`,
		true, email, code, purpose, false, now)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// LatestVerificationCode returns the most recent code for (email, purpose).
func (r *Repository) LatestVerificationCode(ctx context.Context, email string, purpose models.CodePurpose) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.get(ctx, &code,
		`SELECT `+codeColumns+` FROM verification_codes
		 WHERE email = ? AND purpose = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		email, purpose)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// CountVerificationCodes returns how many codes exist for an email, any purpose.
func (r *Repository) CountVerificationCodes(ctx context.Context, email string) (int, error) {
	var count int
	err := r.get(ctx, &count, `SELECT COUNT(*) FROM verification_codes WHERE email = ?`, email)
	return count, err
}

// DeleteVerificationCodes removes all codes issued to an email address.
func (r *Repository) DeleteVerificationCodes(ctx context.Context, email string) error {
	_, err := r.exec(ctx, `DELETE FROM verification_codes WHERE email = ?`, email)
	return err
}

// DeleteExpiredVerificationCodes removes codes that expired before now or
// were already consumed, returning how many rows were deleted.
func (r *Repository) DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM verification_codes WHERE expires_at < ? OR verified = ?`, now, true)
}
