package models

import "time"

// AppType is the platform an app targets.
type AppType string

// AppType constants.
const (
	AppTypeMobile AppType = "MOBILE"
	AppTypeWeb    AppType = "WEB"
)

// AppTypes lists the accepted app types in display order.
var AppTypes = []AppType{AppTypeMobile, AppTypeWeb}

// AppFramework is the framework an app is built with.
type AppFramework string

// AppFramework constants.
const (
	AppFrameworkDjango      AppFramework = "DJANGO"
	AppFrameworkReactNative AppFramework = "REACT NATIVE"
)

// AppFrameworks lists the accepted frameworks in display order.
var AppFrameworks = []AppFramework{AppFrameworkDjango, AppFrameworkReactNative}

// App is a named resource owned by exactly one user.
type App struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string       `gorm:"type:varchar(50);not null"`                  // Display name.
	Description string       `gorm:"type:text;not null;default:''"`              // Free-form description.
	Type        AppType      `gorm:"type:varchar(12);not null;default:'WEB'"`    // Target platform.
	Framework   AppFramework `gorm:"type:varchar(12);not null;default:'DJANGO'"` // Framework tag.
	DomainName  string       `gorm:"type:varchar(50);not null;default:''"`       // Optional domain name.
	Screenshot  string       `gorm:"type:varchar(50);not null;default:''"`       // Optional screenshot URL.

	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
