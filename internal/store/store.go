// Package store provides the per-entity repositories backed by GORM.
package store

import (
	"fmt"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/db"
	"gorm.io/gorm"
)

// Stores bundles every repository built over one connection.
type Stores struct {
	Users         *GormUserStore
	Tokens        *GormTokenStore
	Apps          *GormAppStore
	Subscriptions *GormSubscriptionStore
	Plans         *GormPlanStore
}

// New constructs all repositories over conn.
func New(conn *gorm.DB) *Stores {
	return &Stores{
		Users:         NewGormUserStore(conn),
		Tokens:        NewGormTokenStore(conn),
		Apps:          NewGormAppStore(conn),
		Subscriptions: NewGormSubscriptionStore(conn),
		Plans:         NewGormPlanStore(conn),
	}
}

// translate maps a missing row to a not-found error and wraps everything else.
func translate(err error, entity, op string) error {
	if err == nil {
		return nil
	}
	if db.IsNotFound(err) {
		return apperr.NotFound(notFoundMessage(entity))
	}
	return fmt.Errorf("%s store: %s: %w", entity, op, err)
}

func notFoundMessage(entity string) string {
	return "No " + entity + " matches the given query."
}

func notInitialized(entity string) error {
	return fmt.Errorf("%s store: not initialized", entity)
}
