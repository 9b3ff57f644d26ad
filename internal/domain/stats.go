package domain

import "time"

// Stats is the admin dashboard overview
type Stats struct {
	TotalUsers         int64     `json:"totalUsers"`         // Registered users
	TotalContributions int64     `json:"totalContributions"` // Recorded contributions
	ActiveUsers        int64     `json:"activeUsers"`        // Distinct users that logged in since ActiveSince
	ActiveSince        time.Time `json:"activeSince"`        // Start of the activity window
}
