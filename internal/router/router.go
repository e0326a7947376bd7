// Package router wires the HTTP route table. Paths are the legacy /api/*
// paths the existing frontend already calls; they must not change.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/handler"
	"github.com/planhub/planhub/internal/middleware"
)

// Handlers groups everything RegisterRoutes needs.
type Handlers struct {
	Auth          *handler.AuthHandler
	Plans         *handler.PlanHandler
	Profiles      *handler.ProfileHandler
	Social        *handler.SocialHandler
	Posts         *handler.PostHandler
	Notifications *handler.NotificationHandler
}

// RegisterRoutes registers the health check plus the full /api surface.
// jwtSecret verifies session tokens on protected routes; adminKey gates
// notification publishing; cache wraps the public notification feed when
// non-nil.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret, adminKey string, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Unauthenticated surface.
	api.POST("/signup", h.Auth.Signup)
	api.POST("/login", h.Auth.Login)
	if cache != nil {
		api.GET("/notifications", h.Notifications.List, cache)
	} else {
		api.GET("/notifications", h.Notifications.List)
	}

	// Administrative surface: publishing broadcasts requires the shared key.
	api.POST("/notification", h.Notifications.Publish, middleware.RequireAdminKey(adminKey))

	// Everything below requires a valid session token.
	auth := api.Group("", middleware.TokenAuth(jwtSecret))
	auth.POST("/plan", h.Plans.Create)
	auth.GET("/plan/today", h.Plans.Today)
	auth.GET("/plan/:id", h.Plans.GetOne)
	auth.PUT("/plan/:id", h.Plans.Edit)
	auth.PATCH("/plan/:id/complete", h.Plans.Complete)
	auth.GET("/myplans", h.Plans.Mine)

	auth.GET("/profile", h.Profiles.Me)
	auth.GET("/user/:id", h.Profiles.Public)
	auth.POST("/follow/:userId", h.Social.ToggleFollow)
	auth.GET("/users/search", h.Social.Search)

	auth.POST("/post", h.Posts.Create)
	auth.GET("/myposts", h.Posts.Mine)
}
