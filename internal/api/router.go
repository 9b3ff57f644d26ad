package api

import (
	"leaderboard/internal/middleware" // JWT and admin middleware
	"leaderboard/internal/service"    // Credential and token services

	"github.com/gin-gonic/gin" // Gin web framework
)

// NewRouter wires every route onto a gin engine
func NewRouter(creds *service.Credentials, guard *service.Guard, trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Set trusted proxies so ClientIP reports the real origin
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}

	// Public routes
	r.POST("/register", RegisterHandler(creds))      // Registration endpoint
	r.POST("/login", LoginHandler(creds, guard))     // Login endpoint
	r.GET("/leaderboard", LeaderboardHandler(creds)) // Leaderboard endpoint

	// Routes protected by a bearer token
	auth := middleware.JWTAuthMiddleware(guard)
	r.POST("/logout", auth, LogoutHandler(guard))             // Revoke the current token
	r.POST("/contribution", auth, ContributionHandler(creds)) // Record a contribution
	userGroup := r.Group("/user", auth)
	userGroup.GET("/activities", ActivitiesHandler(creds)) // Caller's contributions
	userGroup.GET("/profile", ProfileHandler(creds))       // Caller's record

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin", auth, middleware.AdminOnlyMiddleware())
	adminGroup.GET("/login-logs", ListLoginLogsHandler(creds))              // Login log endpoint
	adminGroup.GET("/users", ListUsersHandler(creds))                       // List users endpoint
	adminGroup.GET("/stats", StatsHandler(creds))                           // Dashboard counts
	adminGroup.POST("/recalculate-points", RecalculatePointsHandler(creds)) // Rebuild balances

	return r, nil
}
