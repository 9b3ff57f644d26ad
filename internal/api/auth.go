package api

import (
	"leaderboard/internal/middleware" // Authenticated principal
	"leaderboard/internal/service"    // Credential and token services
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	IsAdmin  bool   `json:"isAdmin"`                     // Optional role flag
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password"`                    // Empty passwords fail verification with 401
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	Token   string `json:"token"`   // Signed bearer token
	IsAdmin bool   `json:"isAdmin"` // Role the token was issued with
}

// RegisterHandler creates a user account
func RegisterHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if _, err := creds.Register(c.Request.Context(), req.Username, req.Password, req.IsAdmin); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
	}
}

// LoginHandler authenticates a user and returns a bearer token
func LoginHandler(creds *service.Credentials, guard *service.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := creds.VerifyLogin(c.Request.Context(), req.Username, req.Password, c.ClientIP())
		if err != nil {
			writeError(c, err)
			return
		}
		token, err := guard.Issue(user.Username, user.IsAdmin)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, IsAdmin: user.IsAdmin})
	}
}

// LogoutHandler revokes the token the request was made with
func LogoutHandler(guard *service.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := guard.Revoke(c.Request.Context(), p); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
