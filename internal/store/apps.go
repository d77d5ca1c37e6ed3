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

// AppStore persists apps. Every lookup is scoped to the owning user.
type AppStore interface {
	Create(ctx context.Context, app *models.App) error
	Get(ctx context.Context, id, userID uint64) (*models.App, error)
	ListByUser(ctx context.Context, userID uint64) ([]models.App, error)
	Update(ctx context.Context, app *models.App) (*models.App, error)
	Delete(ctx context.Context, id, userID uint64) error
}

// GormAppStore implements AppStore.
type GormAppStore struct {
	db *gorm.DB
}

// NewGormAppStore constructs a GormAppStore.
func NewGormAppStore(conn *gorm.DB) *GormAppStore {
	return &GormAppStore{db: conn}
}

// Create inserts app.
func (s *GormAppStore) Create(ctx context.Context, app *models.App) error {
	if s == nil || s.db == nil {
		return notInitialized("app")
	}
	if app == nil {
		return fmt.Errorf("app store: app is nil")
	}
	if errCreate := s.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error; errCreate != nil {
		return fmt.Errorf("app store: create: %w", errCreate)
	}
	return nil
}

// Get loads the app id owned by userID.
func (s *GormAppStore) Get(ctx context.Context, id, userID uint64) (*models.App, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("app")
	}
	var app models.App
	errFind := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&app).Error
	if errFind != nil {
		return nil, translate(errFind, "app", "get")
	}
	return &app, nil
}

// ListByUser returns the apps owned by userID ordered by id.
func (s *GormAppStore) ListByUser(ctx context.Context, userID uint64) ([]models.App, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("app")
	}
	var apps []models.App
	if errFind := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&apps).Error; errFind != nil {
		return nil, fmt.Errorf("app store: list: %w", errFind)
	}
	return apps, nil
}

// Update writes the editable columns of app and returns the stored row.
func (s *GormAppStore) Update(ctx context.Context, app *models.App) (*models.App, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("app")
	}
	if app == nil {
		return nil, fmt.Errorf("app store: app is nil")
	}
	res := s.db.WithContext(ctx).Model(&models.App{}).
		Where("id = ? AND user_id = ?", app.ID, app.UserID).
		Updates(map[string]any{
			"name":        app.Name,
			"description": app.Description,
			"type":        app.Type,
			"framework":   app.Framework,
			"domain_name": app.DomainName,
			"screenshot":  app.Screenshot,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("app store: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(notFoundMessage("app"))
	}
	return s.Get(ctx, app.ID, app.UserID)
}

// Delete removes the app and its subscriptions in one transaction.
func (s *GormAppStore) Delete(ctx context.Context, id, userID uint64) error {
	if s == nil || s.db == nil {
		return notInitialized("app")
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if errCount := tx.Model(&models.App{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; errCount != nil {
			return errCount
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		if errSubs := tx.Where("app_id = ?", id).Delete(&models.Subscription{}).Error; errSubs != nil {
			return errSubs
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.App{}).Error
	})
	return translate(errTx, "app", "delete")
}
