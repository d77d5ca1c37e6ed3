package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/db"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenStore issues and resolves opaque API tokens.
type TokenStore interface {
	GetOrCreate(ctx context.Context, userID uint64, newKey func() (string, error)) (*models.Token, error)
	UserForKey(ctx context.Context, key string) (*models.User, error)
}

// GormTokenStore implements TokenStore.
type GormTokenStore struct {
	db *gorm.DB
}

// NewGormTokenStore constructs a GormTokenStore.
func NewGormTokenStore(conn *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: conn}
}

// GetOrCreate returns the user's token, creating one when none exists.
// A concurrent creation for the same user loses on the unique user_id index
// and falls back to the row that won.
func (s *GormTokenStore) GetOrCreate(ctx context.Context, userID uint64, newKey func() (string, error)) (*models.Token, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("token")
	}
	if newKey == nil {
		return nil, fmt.Errorf("token store: key generator is nil")
	}

	existing, errFind := s.findByUser(ctx, userID)
	if errFind == nil {
		return existing, nil
	}
	if !db.IsNotFound(errFind) {
		return nil, fmt.Errorf("token store: lookup: %w", errFind)
	}

	key, errKey := newKey()
	if errKey != nil {
		return nil, fmt.Errorf("token store: generate key: %w", errKey)
	}
	token := models.Token{Key: key, UserID: userID}
	errCreate := s.db.WithContext(ctx).Omit(clause.Associations).Create(&token).Error
	if errCreate == nil {
		return &token, nil
	}
	if !db.IsUniqueViolation(errCreate) {
		return nil, fmt.Errorf("token store: create: %w", errCreate)
	}

	winner, errRefind := s.findByUser(ctx, userID)
	if errRefind != nil {
		return nil, fmt.Errorf("token store: lookup after conflict: %w", errRefind)
	}
	return winner, nil
}

func (s *GormTokenStore) findByUser(ctx context.Context, userID uint64) (*models.Token, error) {
	var token models.Token
	if errFind := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error; errFind != nil {
		return nil, errFind
	}
	return &token, nil
}

// UserForKey resolves the user owning key.
func (s *GormTokenStore) UserForKey(ctx context.Context, key string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, notInitialized("token")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.NotFound(notFoundMessage("token"))
	}
	var token models.Token
	errFind := s.db.WithContext(ctx).Preload("User").Where(&models.Token{Key: key}).First(&token).Error
	if errFind != nil {
		return nil, translate(errFind, "token", "user for key")
	}
	return &token.User, nil
}
