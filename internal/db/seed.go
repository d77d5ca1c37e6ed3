package db

import (
	"fmt"
	"strings"

	"github.com/router-for-me/AppSubscriptions/internal/config"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"gorm.io/gorm"
)

// SeedPlans inserts configured catalog plans whose name is not present yet.
// It returns the number of plans created.
func SeedPlans(conn *gorm.DB, seeds []config.PlanSeed) (int, error) {
	if conn == nil {
		return 0, fmt.Errorf("db: nil connection")
	}
	created := 0
	for i, seed := range seeds {
		name := strings.TrimSpace(seed.Name)
		if name == "" {
			return created, fmt.Errorf("db: seed plan %d: missing name", i)
		}
		if len(name) > 20 {
			return created, fmt.Errorf("db: seed plan %q: name longer than 20 characters", name)
		}
		price, errPrice := models.ParsePrice(seed.Price)
		if errPrice != nil {
			return created, fmt.Errorf("db: seed plan %q: %w", name, errPrice)
		}

		var count int64
		if errCount := conn.Model(&models.Plan{}).Where("name = ?", name).Count(&count).Error; errCount != nil {
			return created, fmt.Errorf("db: seed plan %q: %w", name, errCount)
		}
		if count > 0 {
			continue
		}

		plan := models.Plan{
			Name:        name,
			Description: strings.TrimSpace(seed.Description),
			Price:       price,
		}
		if errCreate := conn.Create(&plan).Error; errCreate != nil {
			return created, fmt.Errorf("db: seed plan %q: %w", name, errCreate)
		}
		created++
	}
	return created, nil
}
