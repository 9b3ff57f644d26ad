package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"leaderboard/internal/domain"
	"leaderboard/internal/store"
	"leaderboard/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	maxUsernameLen = 64
	maxActivityLen = 255
)

// MaxPoints bounds a single contribution so a balance cannot overflow BIGINT
const MaxPoints = 1_000_000

// activeWindow is how far back the dashboard counts logins as active
const activeWindow = 7 * 24 * time.Hour

// dummyHash is compared against when the user does not exist so that unknown
// usernames cost the same bcrypt work as wrong passwords
var dummyHash = sync.OnceValue(func() string {
	h, _ := utils.HashPassword("not-a-real-password")
	return h
})

// UserStore is the persistence the credential service needs
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	AppendLoginLog(ctx context.Context, entry *domain.LoginLog) error
	RecordContribution(ctx context.Context, c *domain.Contribution) error
	ListUsersByPoints(ctx context.Context) ([]domain.User, error)
	ListUsers(ctx context.Context, p store.Page) ([]domain.User, error)
	ListContributions(ctx context.Context, username string) ([]domain.Contribution, error)
	ListLoginLogs(ctx context.Context, p store.Page) ([]domain.LoginLog, error)
	RecalculatePoints(ctx context.Context) (int64, error)
	Stats(ctx context.Context, since time.Time) (domain.Stats, error)
}

// Credentials owns user records: registration, login verification, points and
// the read models built on them
type Credentials struct {
	store    UserStore
	rdb      *redis.Client
	cacheTTL time.Duration
	now      func() time.Time
}

// NewCredentials builds the service. The leaderboard is cached in rdb for cacheTTL.
func NewCredentials(s UserStore, rdb *redis.Client, cacheTTL time.Duration) *Credentials {
	return &Credentials{
		store:    s,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with a zero balance
func (c *Credentials) Register(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLen {
		return nil, invalid("username must be 1-%d characters", maxUsernameLen)
	}
	if password == "" {
		return nil, invalid("password is required")
	}
	hash, err := utils.HashPassword(password) // Hash the password
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, invalid("password must be at most %d bytes", utils.MaxPasswordBytes) // Bcrypt input limit
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Username:     username, // Stored as given, lookups are case-sensitive
		PasswordHash: hash,     // Never the plain password
		IsAdmin:      isAdmin,  // Role flag
		CreatedAt:    c.now(),  // Creation timestamp
	}
	if err := c.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, fmt.Errorf("%w: username already exists", ErrConflict) // Duplicate username
		}
		return nil, err // Database error
	}
	logrus.WithFields(logrus.Fields{
		"username": username,
		"is_admin": isAdmin,
	}).Info("User registered")
	c.invalidateLeaderboard(ctx) // New user joins the board with zero points
	return user, nil
}

// VerifyLogin checks a username and password. On success a login log entry is
// appended; failing to write it does not change the outcome.
func (c *Credentials) VerifyLogin(ctx context.Context, username, password, origin string) (*domain.User, error) {
	user, err := c.store.FindUserByUsername(ctx, username) // Find user by username
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			utils.CheckPassword(dummyHash(), password) // Same cost as a wrong password
			return nil, ErrInvalidCredentials
		}
		return nil, err // Database error
	}
	if !utils.CheckPassword(user.PasswordHash, password) { // Constant-time comparison
		logrus.WithField("username", username).Warn("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	entry := &domain.LoginLog{Username: user.Username, Timestamp: c.now(), IPAddress: origin} // Login event
	if err := c.store.AppendLoginLog(ctx, entry); err != nil {
		logrus.WithFields(logrus.Fields{
			"username": user.Username,
			"error":    err.Error(),
		}).Error("Failed to append login log")
	}
	logrus.WithFields(logrus.Fields{
		"username": user.Username,
		"ip":       origin,
	}).Info("User logged in")
	return user, nil
}

// RecordContribution appends a contribution and adds its points to the balance.
// Negative points are penalties; they may not take the balance below zero.
func (c *Credentials) RecordContribution(ctx context.Context, username, activity string, points int64) (*domain.Contribution, error) {
	if activity == "" || utf8.RuneCountInString(activity) > maxActivityLen {
		return nil, invalid("activity must be 1-%d characters", maxActivityLen)
	}
	if points == 0 {
		return nil, invalid("points must be non-zero")
	}
	if points > MaxPoints || points < -MaxPoints {
		return nil, invalid("points must be between %d and %d", -MaxPoints, MaxPoints)
	}
	contrib := &domain.Contribution{
		Username:  username, // Owner, taken from the token
		Activity:  activity, // Free text description
		Points:    points,   // Signed delta
		Timestamp: c.now(),  // Server time
	}
	if err := c.store.RecordContribution(ctx, contrib); err != nil {
		switch {
		case errors.Is(err, store.ErrNegativeBalance):
			return nil, invalid("points would make the balance negative") // Nothing was written
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrInvalidToken // The token's user was deleted mid-request
		}
		return nil, err // Database error, transaction rolled back
	}
	logrus.WithFields(logrus.Fields{
		"username": username,
		"activity": activity,
		"points":   points,
	}).Info("Contribution recorded")
	c.invalidateLeaderboard(ctx)
	return contrib, nil
}

// ListLeaderboard returns every user ranked by points, reading through the cache.
// The generation is read before the database so that rows loaded before a
// concurrent write land under a generation that write has already retired.
func (c *Credentials) ListLeaderboard(ctx context.Context) ([]domain.UserSummary, error) {
	gen, err := utils.LeaderboardGeneration(ctx, c.rdb) // Current cache generation
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("Leaderboard cache unavailable")
		return c.loadLeaderboard(ctx) // Serve from the database only
	}
	key := utils.LeaderboardCacheKey(gen) // Cache key for this generation

	var cached []domain.UserSummary
	found, err := utils.GetCache(ctx, c.rdb, key, &cached) // Try the cache first
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("Leaderboard cache read failed")
	} else if found {
		return cached, nil // Cache hit
	}

	out, err := c.loadLeaderboard(ctx) // Cache miss, query the database
	if err != nil {
		return nil, err
	}
	if err := utils.SetCache(ctx, c.rdb, key, out, c.cacheTTL); err != nil {
		logrus.WithField("error", err.Error()).Warn("Leaderboard cache write failed")
	}
	return out, nil
}

func (c *Credentials) loadLeaderboard(ctx context.Context) ([]domain.UserSummary, error) {
	users, err := c.store.ListUsersByPoints(ctx) // Points desc, username asc
	if err != nil {
		return nil, err
	}
	return summarize(users), nil // Drop password hashes
}

// Profile returns the live projection of one user
func (c *Credentials) Profile(ctx context.Context, username string) (domain.UserSummary, error) {
	user, err := c.store.FindUserByUsername(ctx, username) // Live record, not the token
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.UserSummary{}, ErrInvalidToken // User deleted after login
		}
		return domain.UserSummary{}, err
	}
	return user.Summary(), nil
}

// ListAllUsers returns the user roster in creation order
func (c *Credentials) ListAllUsers(ctx context.Context, p store.Page) ([]domain.UserSummary, error) {
	users, err := c.store.ListUsers(ctx, p) // Id order, optionally paged
	if err != nil {
		return nil, err
	}
	return summarize(users), nil // Never expose hashes
}

// ListContributions returns a user's contributions, newest first
func (c *Credentials) ListContributions(ctx context.Context, username string) ([]domain.Contribution, error) {
	out, err := c.store.ListContributions(ctx, username) // Newest first
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Contribution{} // Encode as [] instead of null
	}
	return out, nil
}

// ListLoginLogs returns login events, newest first
func (c *Credentials) ListLoginLogs(ctx context.Context, p store.Page) ([]domain.LoginLog, error) {
	out, err := c.store.ListLoginLogs(ctx, p) // Newest first, optionally paged
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.LoginLog{} // Encode as [] instead of null
	}
	return out, nil
}

// RecalculatePoints rebuilds all balances from the contribution log
func (c *Credentials) RecalculatePoints(ctx context.Context) (int64, error) {
	n, err := c.store.RecalculatePoints(ctx) // Sum the contribution log per user
	if err != nil {
		return 0, err
	}
	logrus.WithField("users", n).Info("Points recalculated")
	c.invalidateLeaderboard(ctx) // Balances may have changed
	return n, nil
}

// Stats returns the admin dashboard overview. Users count as active when they
// logged in during the last seven days.
func (c *Credentials) Stats(ctx context.Context) (domain.Stats, error) {
	return c.store.Stats(ctx, c.now().Add(-activeWindow))
}

// invalidateLeaderboard retires the cached leaderboard. It runs after the write
// has committed, so it must not be cut short by the caller going away.
func (c *Credentials) invalidateLeaderboard(ctx context.Context) {
	ctx = context.WithoutCancel(ctx) // Survive a client disconnect
	if err := utils.BumpLeaderboardGeneration(ctx, c.rdb); err != nil {
		logrus.WithField("error", err.Error()).Warn("Leaderboard cache invalidation failed")
	}
}

// summarize projects users to their public fields
func summarize(users []domain.User) []domain.UserSummary {
	out := make([]domain.UserSummary, len(users)) // Non-nil, encodes as []
	for i, u := range users {
		out[i] = u.Summary()
	}
	return out
}
