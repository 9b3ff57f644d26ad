package domain

import "time"

// LoginLog Model, append-only
type LoginLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`             // Primary key
	Username  string    `gorm:"size:64;not null" json:"username"` // Who logged in
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`  // When
	IPAddress string    `gorm:"size:64" json:"ipAddress"`         // Request origin
}
