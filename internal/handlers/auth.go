// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/i18n"
	"codeberg.org/nexastore/nexastore/internal/models"
	authsvc "codeberg.org/nexastore/nexastore/internal/services/auth"
	"codeberg.org/nexastore/nexastore/internal/services/session"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for the signup, login and reset workflows.
type AuthHandlers struct {
	auth     *authsvc.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(auth *authsvc.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{auth: auth, sessions: sessions}
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=4"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	Message string             `json:"message"`
	User    models.SessionUser `json:"user"`
	Token   string             `json:"token"`
}

// Signup registers an account and emails a verification code.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.auth.Signup(ctx, authsvc.SignupParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": i18n.T(ctx, "signup_success"),
		"userId":  user.ID,
		"email":   user.Email,
	})
}

// VerifySignup redeems a signup code and logs the user in.
func (h *AuthHandlers) VerifySignup(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.ValidationError, err).WithMessage("error_invalid_body")
	}
	if req.Email == "" || req.Code == "" {
		return apperr.New(apperr.ValidationError).WithMessage("error_code_fields_required")
	}

	sess, err := h.auth.VerifySignup(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.InvalidOrExpiredCode {
			return appErr.With("canResend", true)
		}
		return err
	}

	return h.openSession(c, sess, "verify_success")
}

// ResendVerification issues a new signup code.
func (h *AuthHandlers) ResendVerification(c echo.Context) error {
	var req EmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.auth.ResendVerification(ctx, req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": i18n.T(ctx, "resend_success"),
		"email":   req.Email,
	})
}

// Login checks credentials and sets the session cookie.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sess, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return h.openSession(c, sess, "login_success")
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server-side.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.JSON(http.StatusOK, map[string]any{
		"message": i18n.T(c.Request().Context(), "logout_success"),
	})
}

// RequestPasswordReset emails a reset code. The response never reveals
// whether the account exists.
func (h *AuthHandlers) RequestPasswordReset(c echo.Context) error {
	var req EmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.auth.RequestPasswordReset(ctx, req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": i18n.T(ctx, "reset_request_success"),
	})
}

// ResetPassword redeems a reset code and stores the new password.
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.auth.ResetPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": i18n.T(ctx, "reset_success"),
	})
}

func (h *AuthHandlers) openSession(c echo.Context, sess *authsvc.Session, messageID string) error {
	cookie, err := h.sessions.Create(sess.Token)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, SessionResponse{
		Message: i18n.T(c.Request().Context(), messageID),
		User:    sess.User.Session(),
		Token:   sess.Token,
	})
}
