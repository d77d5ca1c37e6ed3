package store

import (
	"context"
	"fmt"
	"time"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionStore persists subscriptions. Lookups are scoped to the owning user.
type SubscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
	Get(ctx context.Context, id, userID uint64) (*models.Subscription, error)
	GetByApp(ctx context.Context, appID, userID uint64) (*models.Subscription, error)
	ListByUser(ctx context.Context, userID uint64) ([]models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
}

// GormSubscriptionStore implements SubscriptionStore.
type GormSubscriptionStore struct {
	db *gorm.DB
}

// NewGormSubscriptionStore constructs a GormSubscriptionStore.
func NewGormSubscriptionStore(conn *gorm.DB) *GormSubscriptionStore {
	return &GormSubscriptionStore{db: conn}
}

// Create inserts sub.
func (s *GormSubscriptionStore) Create(ctx context.Context, sub *models.Subscription) error {
	if s == nil || s.db == nil {
		return notInitialized("subscription")
	}
	if sub == nil {
		return fmt.Errorf("subscription store: subscription is nil")
	}
	if errCreate := s.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error; errCreate != nil {
		return fmt.Errorf("subscription store: create: %w", errCreate)
	}
	return nil
}

// Get loads the subscription id owned by userID.
func (s *GormSubscriptionStore) Get(ctx context.Context, id, userID uint64) (*models.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("subscription")
	}
	var sub models.Subscription
	errFind := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&sub).Error
	if errFind != nil {
		return nil, translate(errFind, "subscription", "get")
	}
	return &sub, nil
}

// GetByApp loads the subscription referencing appID. When several exist the
// oldest one is returned.
func (s *GormSubscriptionStore) GetByApp(ctx context.Context, appID, userID uint64) (*models.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("subscription")
	}
	var sub models.Subscription
	errFind := s.db.WithContext(ctx).
		Where("app_id = ? AND user_id = ?", appID, userID).
		Order("id ASC").
		First(&sub).Error
	if errFind != nil {
		return nil, translate(errFind, "subscription", "get by app")
	}
	return &sub, nil
}

// ListByUser returns the subscriptions owned by userID ordered by id.
func (s *GormSubscriptionStore) ListByUser(ctx context.Context, userID uint64) ([]models.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("subscription")
	}
	var subs []models.Subscription
	if errFind := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&subs).Error; errFind != nil {
		return nil, fmt.Errorf("subscription store: list: %w", errFind)
	}
	return subs, nil
}

// Update writes plan, app and active of sub and returns the stored row.
func (s *GormSubscriptionStore) Update(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("subscription")
	}
	if sub == nil {
		return nil, fmt.Errorf("subscription store: subscription is nil")
	}
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND user_id = ?", sub.ID, sub.UserID).
		Updates(map[string]any{
			"plan_id":    sub.PlanID,
			"app_id":     sub.AppID,
			"active":     sub.Active,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("subscription store: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(notFoundMessage("subscription"))
	}
	return s.Get(ctx, sub.ID, sub.UserID)
}
