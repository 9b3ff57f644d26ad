package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leaderboard/internal/domain"
	"leaderboard/internal/store"
	"leaderboard/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const bearerPrefix = "Bearer " // Exact, case-sensitive scheme

// UserFinder resolves a username to the live user record
type UserFinder interface {
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Principal is an authenticated caller
type Principal struct {
	User   *domain.User  // Live record, read on every request
	Claims *utils.Claims // Claims as issued
}

// Guard issues bearer tokens and turns Authorization headers back into principals
type Guard struct {
	users  UserFinder
	rdb    *redis.Client
	secret string
	ttl    time.Duration
}

// NewGuard builds a guard. A zero ttl issues tokens that never expire.
func NewGuard(users UserFinder, rdb *redis.Client, secret string, ttl time.Duration) *Guard {
	return &Guard{users: users, rdb: rdb, secret: secret, ttl: ttl} // Secret is never logged
}

// Issue signs a token for the identity and role
func (g *Guard) Issue(username string, isAdmin bool) (string, error) {
	token, _, err := utils.GenerateJWT(username, isAdmin, g.secret, g.ttl) // HS256 with a fresh jti
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate validates an Authorization header value of the form
// "Bearer <token>" and resolves it to the live user
func (g *Guard) Authenticate(ctx context.Context, header string) (*Principal, error) {
	if header == "" {
		return nil, ErrMissingToken // No Authorization header
	}
	raw, ok := strings.CutPrefix(header, bearerPrefix) // Strip "Bearer "
	if !ok || raw == "" {
		return nil, ErrInvalidToken // Wrong scheme or no token
	}
	claims, err := utils.ParseJWT(raw, g.secret) // Signature, algorithm and expiry
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ID != "" {
		revoked, err := utils.IsTokenRevoked(ctx, g.rdb, claims.ID) // Denylist lookup
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err) // Fail closed
		}
		if revoked {
			return nil, ErrInvalidToken // Logged out
		}
	}
	user, err := g.users.FindUserByUsername(ctx, claims.Username) // Resolve the live user
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidToken // User no longer exists
		}
		return nil, err // Database error
	}
	return &Principal{User: user, Claims: claims}, nil
}

// Revoke denylists the principal's token until it would have expired
func (g *Guard) Revoke(ctx context.Context, p *Principal) error {
	if p.Claims.ID == "" {
		return invalid("token cannot be revoked") // Nothing to key the denylist on
	}
	ttl := p.Claims.Remaining(time.Now()) // Zero keeps the entry forever
	if err := utils.RevokeToken(ctx, g.rdb, p.Claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"username": p.User.Username,
		"jti":      p.Claims.ID,
	}).Info("Token revoked")
	return nil
}

// RequireAdmin checks the live admin flag, not the role carried in the token
func RequireAdmin(user *domain.User) error {
	if user == nil || !user.IsAdmin {
		return ErrForbidden // Not an admin
	}
	return nil
}
