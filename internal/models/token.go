package models

import "time"

// Token is the opaque API credential bound to a user. Each user has at most one.
type Token struct {
	Key string `gorm:"type:varchar(40);primaryKey"` // Opaque token value.

	UserID uint64 `gorm:"not null;uniqueIndex"`                          // Owning user ID.
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
