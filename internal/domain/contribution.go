package domain

import "time"

// Contribution Model, immutable once created
type Contribution struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                       // Primary key
	Username  string    `gorm:"size:64;not null;index:idx_contrib_user_ts" json:"username"` // Owner, referenced by value
	Activity  string    `gorm:"size:255;not null" json:"activity"`                          // Free-text activity label
	Points    int64     `gorm:"not null" json:"points"`                                     // Points awarded (negative for penalties)
	Timestamp time.Time `gorm:"not null;index:idx_contrib_user_ts" json:"timestamp"`        // When it was recorded
}
