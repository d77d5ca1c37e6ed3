package store

import (
	"context"
	"fmt"

	"github.com/router-for-me/AppSubscriptions/internal/models"
	"gorm.io/gorm"
)

// PlanStore reads the plan catalog.
type PlanStore interface {
	List(ctx context.Context) ([]models.Plan, error)
	Get(ctx context.Context, id uint64) (*models.Plan, error)
	Exists(ctx context.Context, id uint64) (bool, error)
}

// GormPlanStore implements PlanStore.
type GormPlanStore struct {
	db *gorm.DB
}

// NewGormPlanStore constructs a GormPlanStore.
func NewGormPlanStore(conn *gorm.DB) *GormPlanStore {
	return &GormPlanStore{db: conn}
}

// List returns every plan ordered by id.
func (s *GormPlanStore) List(ctx context.Context) ([]models.Plan, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("plan")
	}
	var plans []models.Plan
	if errFind := s.db.WithContext(ctx).Order("id ASC").Find(&plans).Error; errFind != nil {
		return nil, fmt.Errorf("plan store: list: %w", errFind)
	}
	return plans, nil
}

// Get loads a plan by id.
func (s *GormPlanStore) Get(ctx context.Context, id uint64) (*models.Plan, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("plan")
	}
	var plan models.Plan
	if errFind := s.db.WithContext(ctx).First(&plan, id).Error; errFind != nil {
		return nil, translate(errFind, "plan", "get")
	}
	return &plan, nil
}

// Exists reports whether plan id is in the catalog.
func (s *GormPlanStore) Exists(ctx context.Context, id uint64) (bool, error) {
	if s == nil || s.db == nil {
		return false, notInitialized("plan")
	}
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Plan{}).Where("id = ?", id).Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("plan store: exists: %w", errCount)
	}
	return count > 0, nil
}
