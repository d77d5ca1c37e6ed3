package models

import "time"

// Subscription links a user's app to a plan.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user.

	PlanID uint64 `gorm:"not null;index"`                                // Subscribed plan ID.
	Plan   *Plan  `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"` // Subscribed plan.

	AppID uint64 `gorm:"not null;index"`                               // Subscribed app ID.
	App   *App   `gorm:"foreignKey:AppID;constraint:OnDelete:CASCADE"` // Subscribed app.

	Active bool `gorm:"not null"` // Static activity flag; true unless the payload says otherwise.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
