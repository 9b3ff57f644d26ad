package config

import (
	"errors"  // For validation errors
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting lists
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort             string        // Application port
	DBUser              string        // Database user
	DBPassword          string        // Database password
	DBHost              string        // Database host
	DBPort              string        // Database port
	DBName              string        // Database name
	JWTSecret           string        // JWT secret key
	JWTTTL              time.Duration // Token lifetime, 0 means tokens never expire
	RedisAddr           string        // Redis server address
	RedisPass           string        // Redis password
	RedisDB             int           // Redis database number
	LeaderboardCacheTTL time.Duration // How long a cached leaderboard is served
	TrustedProxies      []string      // Proxies allowed to set the client IP
	AutoMigrate         bool          // Run schema migration on server start
	IsProd              bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:             getEnv("APP_PORT", "8080"),                           // Application port
		DBUser:              os.Getenv("DB_USER"),                                 // Database user
		DBPassword:          os.Getenv("DB_PASSWORD"),                             // Database password
		DBHost:              getEnv("DB_HOST", "127.0.0.1"),                       // Database host
		DBPort:              getEnv("DB_PORT", "3306"),                            // Database port
		DBName:              os.Getenv("DB_NAME"),                                 // Database name
		JWTSecret:           os.Getenv("JWT_SECRET"),                              // JWT secret key
		JWTTTL:              getDuration("JWT_TTL", 24*time.Hour),                 // Token lifetime
		RedisAddr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),               // Redis server address
		RedisPass:           os.Getenv("REDIS_PASS"),                              // Redis password
		RedisDB:             redisDB,                                              // Redis database number
		LeaderboardCacheTTL: getDuration("LEADERBOARD_CACHE_TTL", 60*time.Second), // Leaderboard cache lifetime
		TrustedProxies:      splitList(getEnv("TRUSTED_PROXIES", "127.0.0.1")),    // Trusted proxies
		AutoMigrate:         os.Getenv("AUTO_MIGRATE") == "true",                  // Migrate on start
		IsProd:              os.Getenv("IS_PROD") == "true",                       // Is production environment
	}
}

// Validate reports configuration that the server cannot start with
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWTTTL < 0 {
		return errors.New("JWT_TTL must not be negative")
	}
	return nil
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// getEnv returns the variable or a fallback when it is unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses a Go duration string such as "24h" or "0"
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback // Keep the default on a malformed value
	}
	return d
}

// splitList splits a comma separated list, dropping blanks
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
