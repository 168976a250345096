// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements the signup, verification, login and password reset
// workflows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/metrics"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/repository"
	"codeberg.org/nexastore/nexastore/internal/services/token"
	"codeberg.org/nexastore/nexastore/internal/services/verification"
)

// CodeMailer delivers verification codes.
type CodeMailer interface {
	SendVerificationCode(ctx context.Context, to, code string, purpose models.CodePurpose) error
}

type Service struct {
	repo   *repository.Repository
	codes  *verification.Service
	mailer CodeMailer
	tokens *token.Issuer
	hasher *Hasher
	now    func() time.Time
}

func NewService(
	repo *repository.Repository,
	codes *verification.Service,
	mailer CodeMailer,
	tokens *token.Issuer,
	hasher *Hasher,
) *Service {
	return &Service{
		repo:   repo,
		codes:  codes,
		mailer: mailer,
		tokens: tokens,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Hasher returns the password hasher used by the service.
func (s *Service) Hasher() *Hasher {
	return s.hasher
}

// SignupParams holds the parameters for user registration.
type SignupParams struct {
	Email    string
	Password string
	Name     string
}

// Session is the result of a successful login or verification.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Signup creates an unverified account and emails it a SIGNUP code. If the
// email cannot be delivered the account stays in place, so a resend can
// recover.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*models.User, error) {
	_, err := s.repo.GetUserByEmail(ctx, params.Email)
	if err == nil {
		metrics.AuthEvents.WithLabelValues("signup", "duplicate").Inc()
		return nil, apperr.New(apperr.DuplicateEmail)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        params.Email,
		PasswordHash: hash,
		Name:         params.Name,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	var code string
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		code, err = s.codes.WithStore(tx).Issue(ctx, user.Email, models.PurposeSignup)
		return err
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Wrap(apperr.DuplicateEmail, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, code, models.PurposeSignup); err != nil {
		metrics.AuthEvents.WithLabelValues("signup", "delivery_failed").Inc()
		return nil, err
	}

	metrics.AuthEvents.WithLabelValues("signup", "success").Inc()
	slog.InfoContext(ctx, "signup_success", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// VerifySignup redeems a SIGNUP code, marks the email verified and opens a
// session. Code redemption and the user update commit together.
func (s *Service) VerifySignup(ctx context.Context, email, code string) (*Session, error) {
	var user *models.User
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := s.codes.WithStore(tx).Consume(ctx, email, code, models.PurposeSignup); err != nil {
			return err
		}
		if err := tx.MarkEmailVerified(ctx, email, s.now()); err != nil {
			return err
		}
		var err error
		user, err = tx.GetUserByEmail(ctx, email)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(apperr.UserNotFound, err)
	}
	if err != nil {
		metrics.AuthEvents.WithLabelValues("verify", "failure").Inc()
		return nil, err
	}

	s.codes.Accepted(models.PurposeSignup)

	session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}

	metrics.AuthEvents.WithLabelValues("verify", "success").Inc()
	slog.InfoContext(ctx, "verify_success", "user_id", user.ID, "email", email)
	return session, nil
}

// ResendVerification issues a fresh SIGNUP code to an unverified account.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.UserNotFound, err)
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.EmailVerified {
		return apperr.New(apperr.AlreadyVerified)
	}

	code, err := s.codes.Issue(ctx, email, models.PurposeSignup)
	if err != nil {
		return err
	}
	if err := s.mailer.SendVerificationCode(ctx, email, code, models.PurposeSignup); err != nil {
		return err
	}

	slog.InfoContext(ctx, "verification_resent", "user_id", user.ID, "email", email)
	return nil
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.burn(password)
			s.loginFailed(ctx, email, "user_not_found")
			return nil, apperr.New(apperr.InvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		s.loginFailed(ctx, email, "deactivated")
		return nil, apperr.New(apperr.AccountDeactivated)
	}
	if !user.EmailVerified {
		s.loginFailed(ctx, email, "email_not_verified")
		return nil, apperr.New(apperr.EmailNotVerified).With("email", user.Email)
	}
	if !s.hasher.Matches(user.PasswordHash, password) {
		s.loginFailed(ctx, email, "invalid_password")
		return nil, apperr.New(apperr.InvalidCredentials)
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now

	session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}

	metrics.AuthEvents.WithLabelValues("login", "success").Inc()
	slog.InfoContext(ctx, "login_success", "user_id", user.ID, "email", email)
	return session, nil
}

func (s *Service) loginFailed(ctx context.Context, email, reason string) {
	metrics.AuthEvents.WithLabelValues("login", reason).Inc()
	slog.WarnContext(ctx, "login_failed", "email", email, "reason", reason)
}

// RequestPasswordReset emails a RESET_PASSWORD code if the account exists.
// Unknown emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		slog.InfoContext(ctx, "reset_requested_unknown", "email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	code, err := s.codes.Issue(ctx, email, models.PurposeResetPassword)
	if err != nil {
		return err
	}
	if err := s.mailer.SendVerificationCode(ctx, email, code, models.PurposeResetPassword); err != nil {
		return err
	}

	metrics.AuthEvents.WithLabelValues("reset_request", "success").Inc()
	slog.InfoContext(ctx, "reset_requested", "email", email)
	return nil
}

// ResetPassword redeems a RESET_PASSWORD code and replaces the password. It
// does not open a session.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := s.codes.WithStore(tx).Consume(ctx, email, code, models.PurposeResetPassword); err != nil {
			return err
		}
		user, err := tx.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		return tx.UpdateUserPassword(ctx, user.ID, hash)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.UserNotFound, err)
	}
	if err != nil {
		metrics.AuthEvents.WithLabelValues("reset", "failure").Inc()
		return err
	}

	s.codes.Accepted(models.PurposeResetPassword)
	metrics.AuthEvents.WithLabelValues("reset", "success").Inc()
	slog.InfoContext(ctx, "password_reset", "email", email)
	return nil
}

// EnsureAdmin makes sure an admin exists. When none does and credentials are
// given, the account for email is created or promoted.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	count, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &models.User{
			Email:         email,
			PasswordHash:  hash,
			Name:          "Administrator",
			Role:          models.RoleAdmin,
			EmailVerified: true,
			IsActive:      true,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to get user: %w", err)
	default:
		user.Role = models.RoleAdmin
		user.EmailVerified = true
		user.IsActive = true
		user.PasswordHash = hash
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to promote admin: %w", err)
		}
	}

	slog.InfoContext(ctx, "admin_ensured", "user_id", user.ID, "email", email)
	return nil
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	raw, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: raw, ExpiresAt: expiresAt, User: user}, nil
}
