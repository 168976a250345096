// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// CodePurpose scopes a verification code to one workflow.
type CodePurpose string

const (
	PurposeSignup        CodePurpose = "SIGNUP"
	PurposeResetPassword CodePurpose = "RESET_PASSWORD"
	// PurposeLogin is reserved; no workflow issues it yet.
	PurposeLogin CodePurpose = "LOGIN"
)

// VerificationCode is a short-lived numeric code sent by email.
type VerificationCode struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64       `db:"id" json:"id"`
	Email     string      `db:"email" json:"email"`
	Code      string      `db:"code" json:"-"`
	Purpose   CodePurpose `db:"purpose" json:"purpose"`
	ExpiresAt time.Time   `db:"expires_at" json:"expiresAt"`
	Verified  bool        `db:"verified" json:"verified"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

// Expired reports whether the code is past its expiry at now.
func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
