package models

import "time"

// User represents an account that owns apps and subscriptions.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:varchar(150);not null;uniqueIndex"` // Unique login name derived at signup.
	Name     string `gorm:"type:varchar(255);not null;default:''"`  // Display name.
	Email    string `gorm:"type:varchar(254);index"`                // Email address, stored lower-case.
	Password string `gorm:"type:text;not null"`                     // Hashed password.

	IsActive bool `gorm:"not null;default:true"` // Whether the user can sign in.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
