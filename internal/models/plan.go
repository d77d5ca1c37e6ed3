package models

import "time"

// Plan is a read-only catalog entry users can subscribe an app to.
type Plan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:varchar(20);not null"`   // Plan name.
	Description string `gorm:"type:text;not null"`          // Plan description.
	Price       Price  `gorm:"type:decimal(20,2);not null"` // Fixed-point price.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
