package db

import (
	"fmt"

	"github.com/router-for-me/AppSubscriptions/internal/models"
	"gorm.io/gorm"
)

// MigrateOptions selects schema objects that depend on configuration.
type MigrateOptions struct {
	UniqueEmail bool // One account per case-insensitive, non-empty email.
}

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB, opts MigrateOptions) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	var errMigrate error
	switch dialect := DialectOf(conn); dialect {
	case SQLite:
		errMigrate = migrateSQLite(conn)
	case Postgres, "":
		errMigrate = migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", dialect)
	}
	if errMigrate != nil {
		return errMigrate
	}
	return migrateEmailIndex(conn, opts.UniqueEmail)
}

// allModels lists every persisted model in dependency order.
func allModels() []any {
	return []any{
		&models.User{},
		&models.EmailAddress{},
		&models.Token{},
		&models.Plan{},
		&models.App{},
		&models.Subscription{},
	}
}

// migratePostgres applies PostgreSQL schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(allModels()...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}

// migrateSQLite applies SQLite schema updates.
func migrateSQLite(conn *gorm.DB) error {
	if errPragma := conn.Exec("PRAGMA foreign_keys = ON").Error; errPragma != nil {
		return fmt.Errorf("db: enable foreign keys: %w", errPragma)
	}
	if errAutoMigrate := conn.AutoMigrate(allModels()...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}

// migrateEmailIndex keeps exactly one LOWER(email) index on users: unique
// when unique is set, plain otherwise. Both dialects accept the same DDL.
func migrateEmailIndex(conn *gorm.DB, unique bool) error {
	create := `CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`
	drop := `DROP INDEX IF EXISTS idx_users_email_unique`
	if unique {
		create = `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users (LOWER(email)) WHERE email <> ''`
		drop = `DROP INDEX IF EXISTS idx_users_email_lower`
	}
	if errDrop := conn.Exec(drop).Error; errDrop != nil {
		return fmt.Errorf("db: drop users email index: %w", errDrop)
	}
	if errCreate := conn.Exec(create).Error; errCreate != nil {
		return fmt.Errorf("db: create users email index: %w", errCreate)
	}
	return nil
}
