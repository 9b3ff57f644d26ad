package domain

import "time"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"-"`                          // Primary key
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"` // Unique, case-sensitive username
	PasswordHash string    `gorm:"not null" json:"-"`                            // Bcrypt hash, never serialized
	IsAdmin      bool      `gorm:"not null;default:false" json:"isAdmin"`        // Role flag
	Points       int64     `gorm:"not null;default:0;index" json:"points"`       // Cumulative contribution points
	CreatedAt    time.Time `json:"createdAt"`                                    // Timestamp of creation
}

// Level thresholds, highest first
var levels = []struct {
	min  int64
	name string
}{
	{200, "Expert"},
	{100, "Advanced"},
	{50, "Intermediate"},
	{20, "Beginner"},
}

// Level returns the contribution level label for a point balance
func Level(points int64) string {
	for _, l := range levels {
		if points >= l.min {
			return l.name
		}
	}
	return "Newcomer"
}

// UserSummary is the public projection of a user; it never carries the hash
type UserSummary struct {
	Username  string    `json:"username"`  // Username
	IsAdmin   bool      `json:"isAdmin"`   // Role flag
	Points    int64     `json:"points"`    // Point balance
	Level     string    `json:"level"`     // Derived contribution level
	CreatedAt time.Time `json:"createdAt"` // Timestamp of creation
}

// Summary projects the user for API responses
func (u User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		Points:    u.Points,
		Level:     Level(u.Points),
		CreatedAt: u.CreatedAt,
	}
}
