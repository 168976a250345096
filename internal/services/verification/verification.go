// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package verification issues and redeems short numeric email codes.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/metrics"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/repository"
)

const (
	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 10 * time.Minute

	codeMin = 1000
	codeMax = 9999
)

// Service handles verification code generation and redemption.
type Service struct {
	repo *repository.Repository
	ttl  time.Duration
	now  func() time.Time
}

// NewService creates a new verification service. A non-positive ttl selects DefaultTTL.
func NewService(repo *repository.Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo: repo,
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// TTL returns the lifetime of issued codes.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// WithStore returns a copy of the service that runs against repo, typically
// one bound to a transaction.
func (s *Service) WithStore(repo *repository.Repository) *Service {
	clone := *s
	clone.repo = repo
	return &clone
}

// WithClock returns a copy of the service using now as its time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	clone := *s
	clone.now = now
	return &clone
}

// GenerateCode returns a uniformly random code in [1000, 9999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// Issue creates a fresh code for (email, purpose), invalidating every earlier
// code for the same pair. The plaintext code is returned for delivery.
func (s *Service) Issue(ctx context.Context, email string, purpose models.CodePurpose) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	now := s.now()
	record := &models.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.ReplaceVerificationCode(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}

	metrics.CodesIssued.WithLabelValues(string(purpose)).Inc()
	slog.Debug("code_issued", "email", email, "purpose", purpose)
	return code, nil
}

// Consume redeems a code. It fails with apperr.InvalidOrExpiredCode unless
// the code matches, is unexpired, and has not been used. Inside a transaction
// the redemption is only counted once the caller reports it through Accepted.
func (s *Service) Consume(ctx context.Context, email, code string, purpose models.CodePurpose) error {
	ok, err := s.repo.ConsumeVerificationCode(ctx, email, code, purpose, s.now())
	if err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	if !ok {
		metrics.CodesConsumed.WithLabelValues(string(purpose), "rejected").Inc()
		slog.Warn("code_rejected", "email", email, "purpose", purpose)
		return apperr.New(apperr.InvalidOrExpiredCode)
	}

	if !s.repo.InTx() {
		s.Accepted(purpose)
	}
	return nil
}

// Accepted counts a committed redemption.
func (s *Service) Accepted(purpose models.CodePurpose) {
	metrics.CodesConsumed.WithLabelValues(string(purpose), "accepted").Inc()
}

// Prune deletes expired and consumed codes.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpiredVerificationCodes(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune verification codes: %w", err)
	}
	return n, nil
}
