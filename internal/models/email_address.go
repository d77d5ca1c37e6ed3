package models

import "time"

// EmailAddress records the email setup performed after signup.
type EmailAddress struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user.

	Email      string `gorm:"type:varchar(254);not null;index"`      // Address the confirmation was sent to.
	Primary    bool   `gorm:"not null;default:false"`                // Marks the primary address.
	Verified   bool   `gorm:"not null;default:false"`                // Set once the confirm key is redeemed.
	ConfirmKey string `gorm:"type:varchar(64);not null;uniqueIndex"` // Single-use confirmation key.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
