// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/nexastore/nexastore/internal/handlers"
	"codeberg.org/nexastore/nexastore/internal/metrics"
	"codeberg.org/nexastore/nexastore/internal/middleware"
	"codeberg.org/nexastore/nexastore/internal/models"
	"github.com/labstack/echo/v4"
)

func setupRoutes(e *echo.Echo, svc *Services) {
	h := handlers.New(svc.Repo)
	authH := handlers.NewAuth(svc.Auth, svc.Sessions)
	userH := handlers.NewUsers(svc.Users)
	productH := handlers.NewProducts(svc.Products)

	requireAuth := middleware.Authenticate(svc.Tokens, svc.Sessions)
	optionalAuth := middleware.OptionalAuth(svc.Tokens, svc.Sessions)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")

	u := api.Group("/users")
	u.POST("/signup", authH.Signup)
	u.POST("/verify-signup", authH.VerifySignup)
	u.POST("/resend-verification", authH.ResendVerification)
	u.POST("/login", authH.Login)
	u.POST("/logout", authH.Logout)
	u.POST("/reset-password/request", authH.RequestPasswordReset)
	u.POST("/reset-password", authH.ResetPassword)

	u.GET("/me", userH.Me, requireAuth)
	u.PATCH("/me", userH.UpdateMe, requireAuth)

	u.GET("", userH.List, requireAuth, requireAdmin)
	u.GET("/:id", userH.Get, requireAuth, requireAdmin)
	u.PATCH("/:id", userH.Update, requireAuth, requireAdmin)
	u.DELETE("/:id", userH.Delete, requireAuth, requireAdmin)

	p := api.Group("/products")
	p.GET("", productH.List, optionalAuth)
	p.GET("/:slug", productH.Get, optionalAuth)
	p.POST("", productH.Create, requireAuth, requireAdmin)
	p.PUT("/:id", productH.Update, requireAuth, requireAdmin)
	p.DELETE("/:id", productH.Delete, requireAuth, requireAdmin)
}
