package api

import (
	"leaderboard/internal/service" // Credential service
	"leaderboard/internal/store"   // Pagination
	"net/http"                     // HTTP status codes
	"strconv"                      // String conversion

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// maxPageSize caps page_size on admin listings
const maxPageSize = 100

// parsePage reads optional page and page_size query parameters. Without
// page_size the whole listing is returned.
func parsePage(c *gin.Context) store.Page {
	p := store.Page{Number: 1}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Number = v // Set page if valid
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= maxPageSize {
		p.Size = v // Set page size if within limits
	}
	return p
}

// ListLoginLogsHandler returns login events, newest first
func ListLoginLogsHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := creds.ListLoginLogs(c.Request.Context(), parsePage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

// ListUsersHandler returns the full user roster
func ListUsersHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := creds.ListAllUsers(c.Request.Context(), parsePage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// StatsHandler returns user, contribution and active-user counts
func StatsHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := creds.Stats(c.Request.Context()) // Dashboard overview
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// RecalculatePointsHandler rebuilds balances from the contribution log
func RecalculatePointsHandler(creds *service.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := creds.RecalculatePoints(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		logrus.WithField("users", n).Info("Admin recalculated points")
		c.JSON(http.StatusOK, gin.H{"message": "Points recalculated", "users": n})
	}
}
