package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlitePragmas are appended to SQLite DSNs that do not set them.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
}

// IsPostgresDSN reports whether dsn targets PostgreSQL.
func IsPostgresDSN(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=")
}

// SQLiteDSN normalizes a SQLite path or DSN and adds the default pragmas.
func SQLiteDSN(path string) string {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		dsn = "appsubs.db"
	}
	if !strings.HasPrefix(strings.ToLower(dsn), "file:") {
		dsn = "file:" + dsn
	}
	params := make([]string, 0, len(sqlitePragmas))
	for _, pragma := range sqlitePragmas {
		name, _, _ := strings.Cut(strings.TrimPrefix(pragma, "_pragma="), "(")
		if strings.Contains(dsn, name) {
			continue
		}
		params = append(params, pragma)
	}
	if len(params) == 0 {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + strings.Join(params, "&")
}

// Open connects to the database named by dsn.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	cfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(gormLogLevel()),
	}

	var dialector gorm.Dialector
	switch DialectFor(trimmed) {
	case Postgres:
		dialector = postgres.Open(trimmed)
	default:
		dialector = sqlite.Open(SQLiteDSN(trimmed))
	}

	conn, errOpen := gorm.Open(dialector, cfg)
	if errOpen != nil {
		return nil, fmt.Errorf("db: open %s: %w", dialector.Name(), errOpen)
	}
	if DialectOf(conn) == SQLite {
		sqlDB, errDB := conn.DB()
		if errDB != nil {
			return nil, fmt.Errorf("db: sql handle: %w", errDB)
		}
		// SQLite serializes writers; one connection avoids SQLITE_BUSY under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	}
	return conn, nil
}

// gormLogLevel follows the process log level so SQL is only traced in debug.
func gormLogLevel() logger.LogLevel {
	if log.IsLevelEnabled(log.DebugLevel) {
		return logger.Info
	}
	return logger.Warn
}
