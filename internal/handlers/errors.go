// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/i18n"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// hints are the secondary "message" shown with some errors.
var hints = map[apperr.Kind]string{
	apperr.InvalidOrExpiredCode: "error_invalid_code_hint",
	apperr.EmailNotVerified:     "error_email_not_verified_hint",
}

// ErrorHandler is the Echo HTTP error handler. Every error returned by a
// handler or middleware is rendered here.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if rerr := respondError(c, err); rerr != nil {
		slog.ErrorContext(c.Request().Context(), "failed to write error response", "error", rerr)
	}
}

// respondError maps err to a status code and a JSON body of the form
// {"error": ..., "message": ..., "details": [...], <extra fields>}.
func respondError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	var he *echo.HTTPError
	if errors.As(err, &he) && !isAppError(err) {
		return c.JSON(he.Code, map[string]any{"error": httpErrorText(c, he)})
	}

	appErr := toAppError(err)
	status := appErr.Kind.Status()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request_failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	msgID := appErr.Kind.MessageID()
	if appErr.Message != "" {
		msgID = appErr.Message
	}
	body := map[string]any{"error": i18n.T(ctx, msgID)}
	if hint, ok := hints[appErr.Kind]; ok {
		body["message"] = i18n.T(ctx, hint)
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	for k, v := range appErr.Fields {
		body[k] = v
	}

	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}
	return c.JSON(status, body)
}

func isAppError(err error) bool {
	var appErr *apperr.Error
	return errors.As(err, &appErr)
}

func toAppError(err error) *apperr.Error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		var ve validator.ValidationErrors
		if appErr.Kind == apperr.ValidationError && len(appErr.Details) == 0 && errors.As(err, &ve) {
			return validationError(ve)
		}
		return appErr
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return validationError(ve)
	}
	return apperr.Wrap(apperr.InternalError, err)
}

func httpErrorText(c echo.Context, he *echo.HTTPError) string {
	ctx := c.Request().Context()
	switch he.Code {
	case http.StatusNotFound:
		return i18n.T(ctx, "error_not_found")
	case http.StatusInternalServerError:
		return i18n.T(ctx, "error_internal")
	}
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return http.StatusText(he.Code)
}
