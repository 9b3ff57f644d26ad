package middleware

import (
	"errors"                       // Error classification
	"leaderboard/internal/service" // Token guard
	"net/http"                     // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// principalKey is the gin context key holding the authenticated caller
const principalKey = "principal"

// JWTAuthMiddleware validates the bearer token and stores the resolved principal
func JWTAuthMiddleware(guard *service.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := guard.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		switch {
		case errors.Is(err, service.ErrMissingToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is missing"})
			return
		case errors.Is(err, service.ErrAuth):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid"})
			return
		case err != nil:
			logrus.WithField("error", err.Error()).Error("Token check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Set(principalKey, p) // Store principal in context
		c.Next()               // Proceed to the next handler
	}
}

// Principal returns the caller stored by JWTAuthMiddleware
func Principal(c *gin.Context) (*service.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*service.Principal)
	return p, ok
}
