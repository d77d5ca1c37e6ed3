package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStore persists user accounts and their email setup records.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uint64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernamesTaken(ctx context.Context, candidates []string) (map[string]struct{}, error)
	CreateWithEmail(ctx context.Context, user *models.User, address *models.EmailAddress) error
	ConfirmEmail(ctx context.Context, key string) (*models.EmailAddress, error)
}

// GormUserStore implements UserStore.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore constructs a GormUserStore.
func NewGormUserStore(conn *gorm.DB) *GormUserStore {
	return &GormUserStore{db: conn}
}

// Create inserts user. Unique violations are returned wrapped so callers can
// detect them with db.IsUniqueViolation.
func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	if s == nil || s.db == nil {
		return notInitialized("user")
	}
	if user == nil {
		return fmt.Errorf("user store: user is nil")
	}
	if errCreate := s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; errCreate != nil {
		return fmt.Errorf("user store: create: %w", errCreate)
	}
	return nil
}

// Get loads a user by id.
func (s *GormUserStore) Get(ctx context.Context, id uint64) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("user")
	}
	var user models.User
	if errFind := s.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		return nil, translate(errFind, "user", "get")
	}
	return &user, nil
}

// GetByLogin loads a user by username or case-insensitive email.
func (s *GormUserStore) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("user")
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, apperr.NotFound(notFoundMessage("user"))
	}
	var user models.User
	errFind := s.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = ?", login, strings.ToLower(login)).
		Order("id ASC").
		First(&user).Error
	if errFind != nil {
		return nil, translate(errFind, "user", "get by login")
	}
	return &user, nil
}

// EmailExists reports whether any user already uses email.
func (s *GormUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if s == nil || s.db == nil {
		return false, notInitialized("user")
	}
	var count int64
	errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if errCount != nil {
		return false, fmt.Errorf("user store: email exists: %w", errCount)
	}
	return count > 0, nil
}

// UsernamesTaken returns the subset of candidates already in use, compared
// case-insensitively. Keys of the result are lower-case.
func (s *GormUserStore) UsernamesTaken(ctx context.Context, candidates []string) (map[string]struct{}, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("user")
	}
	taken := make(map[string]struct{})
	if len(candidates) == 0 {
		return taken, nil
	}
	lowered := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		lowered = append(lowered, strings.ToLower(candidate))
	}
	var names []string
	errPluck := s.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) IN ?", lowered).
		Pluck("username", &names).Error
	if errPluck != nil {
		return nil, fmt.Errorf("user store: usernames taken: %w", errPluck)
	}
	for _, name := range names {
		taken[strings.ToLower(name)] = struct{}{}
	}
	return taken, nil
}

// CreateWithEmail inserts user and its email setup record in one transaction.
func (s *GormUserStore) CreateWithEmail(ctx context.Context, user *models.User, address *models.EmailAddress) error {
	if s == nil || s.db == nil {
		return notInitialized("user")
	}
	if user == nil || address == nil {
		return fmt.Errorf("user store: user and email address are required")
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errUser := tx.Omit(clause.Associations).Create(user).Error; errUser != nil {
			return errUser
		}
		address.UserID = user.ID
		return tx.Omit(clause.Associations).Create(address).Error
	})
	if errTx != nil {
		return fmt.Errorf("user store: create with email: %w", errTx)
	}
	return nil
}

// ConfirmEmail marks the address holding key as verified.
func (s *GormUserStore) ConfirmEmail(ctx context.Context, key string) (*models.EmailAddress, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("user")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.NotFound(notFoundMessage("email address"))
	}
	var address models.EmailAddress
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := tx.Where("confirm_key = ?", key).First(&address).Error; errFind != nil {
			return errFind
		}
		if address.Verified {
			return nil
		}
		address.Verified = true
		return tx.Model(&address).Update("verified", true).Error
	})
	if errTx != nil {
		return nil, translate(errTx, "email address", "confirm")
	}
	return &address, nil
}
