// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"

	"codeberg.org/nexastore/nexastore/internal/config"
	"codeberg.org/nexastore/nexastore/internal/handlers"
	"codeberg.org/nexastore/nexastore/internal/repository"
	authsvc "codeberg.org/nexastore/nexastore/internal/services/auth"
	"codeberg.org/nexastore/nexastore/internal/services/email"
	"codeberg.org/nexastore/nexastore/internal/services/products"
	"codeberg.org/nexastore/nexastore/internal/services/session"
	"codeberg.org/nexastore/nexastore/internal/services/token"
	"codeberg.org/nexastore/nexastore/internal/services/users"
	"codeberg.org/nexastore/nexastore/internal/services/verification"
	"github.com/labstack/echo/v4"
)

// Services bundles the application services built on one repository.
type Services struct {
	Repo     *repository.Repository
	Codes    *verification.Service
	Tokens   *token.Issuer
	Sessions *session.Manager
	Auth     *authsvc.Service
	Users    *users.Service
	Products *products.Service
}

// NewServices wires the services. sender delivers outgoing email.
func NewServices(cfg *config.Config, repo *repository.Repository, sender email.Sender) (*Services, error) {
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("jwt secret not configured, generating a random one; sessions end on restart")
	}
	tokens, err := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	sessions, err := session.NewManager(&cfg.Session, cfg.Server.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	codes := verification.NewService(repo, cfg.Auth.CodeTTL)
	hasher := authsvc.NewHasher(cfg.Auth.BcryptCost)

	return &Services{
		Repo:     repo,
		Codes:    codes,
		Tokens:   tokens,
		Sessions: sessions,
		Auth:     authsvc.NewService(repo, codes, email.NewService(sender, codes.TTL()), tokens, hasher),
		Users:    users.NewService(repo, hasher),
		Products: products.NewService(repo),
	}, nil
}

// NewEcho builds the Echo instance with middleware and routes.
func NewEcho(cfg *config.Config, svc *Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, cfg)
	setupRoutes(e, svc)
	return e
}
