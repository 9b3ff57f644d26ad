package api

import (
	"leaderboard/internal/middleware" // Authenticated principal
	"leaderboard/internal/service"    // Credential service
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// ContributionRequest is the body of POST /contribution
type ContributionRequest struct {
	Activity string `json:"activity" binding:"required"`                        // What was done
	Points   *int64 `json:"points" binding:"required,min=-1000000,max=1000000"` // Points awarded; negative for penalties
}

// ContributionHandler records a contribution for the caller
func ContributionHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ContributionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		contrib, err := creds.RecordContribution(c.Request.Context(), p.User.Username, req.Activity, *req.Points)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Contribution added successfully", "contribution": contrib})
	}
}

// ActivitiesHandler lists the caller's contributions, newest first
func ActivitiesHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		out, err := creds.ListContributions(c.Request.Context(), p.User.Username)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// ProfileHandler returns the caller's live record
func ProfileHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		profile, err := creds.Profile(c.Request.Context(), p.User.Username)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// LeaderboardHandler ranks all users by points
func LeaderboardHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		board, err := creds.ListLeaderboard(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, board)
	}
}
