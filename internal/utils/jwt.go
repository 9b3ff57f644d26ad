package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Token ids
)

// ErrTokenInvalid is returned for any token that fails verification
var ErrTokenInvalid = errors.New("token is invalid")

// JWT Claims
type Claims struct {
	Username             string `json:"username"` // Who the token was issued to
	IsAdmin              bool   `json:"is_admin"` // Role at issuance time
	jwt.RegisteredClaims        // Standard JWT claims (jti, iat, exp)
}

// GenerateJWT creates a signed token for a user. A ttl of zero issues a token
// without an expiry claim.
func GenerateJWT(username string, isAdmin bool, secret string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	// Set token claims
	claims := &Claims{
		Username: username, // Custom claim for username
		IsAdmin:  isAdmin,  // Custom claim for role
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),        // Token id, used for revocation
			IssuedAt: jwt.NewNumericDate(now), // Issued at current time
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl)) // Token expires after ttl
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	signed, err := token.SignedString([]byte(secret))          // Sign the token with the secret
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseJWT parses and validates a token string. Only HS256 is accepted.
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuedAt())
	// Check for parsing errors
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Username != "" {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, ErrTokenInvalid
}

// Remaining reports how long the token stays valid; zero means it never expires
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return time.Millisecond // Already expired; keep a short-lived entry
}
