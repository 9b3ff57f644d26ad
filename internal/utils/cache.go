package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Generation number formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// LeaderboardGenKey counts leaderboard invalidations. Each generation caches
// under its own key, so a reader that loaded rows before a write can only
// fill a generation nobody reads anymore.
const LeaderboardGenKey = "leaderboard:gen"

// revokedPrefix namespaces revoked token ids
const revokedPrefix = "token:revoked:"

// LeaderboardCacheKey returns the key holding the leaderboard for a generation
func LeaderboardCacheKey(gen int64) string {
	return "leaderboard:" + strconv.FormatInt(gen, 10)
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// LeaderboardGeneration returns the current leaderboard generation, 0 if none
func LeaderboardGeneration(ctx context.Context, rdb *redis.Client) (int64, error) {
	gen, err := rdb.Get(ctx, LeaderboardGenKey).Int64() // Read the counter
	if err == redis.Nil {
		return 0, nil // Never invalidated
	}
	return gen, err
}

// BumpLeaderboardGeneration moves readers to a fresh generation
func BumpLeaderboardGeneration(ctx context.Context, rdb *redis.Client) error {
	return rdb.Incr(ctx, LeaderboardGenKey).Err() // Atomic increment
}

// RevokeToken puts a token id on the denylist. A zero ttl keeps it forever.
func RevokeToken(ctx context.Context, rdb *redis.Client, jti string, ttl time.Duration) error {
	return rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err() // Value is unused, presence is the flag
}

// IsTokenRevoked reports whether a token id is on the denylist
func IsTokenRevoked(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	n, err := rdb.Exists(ctx, revokedPrefix+jti).Result() // Check denylist
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
