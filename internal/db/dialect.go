package db

import "gorm.io/gorm"

// Dialect names a supported database engine.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DialectFor reports which engine dsn targets. Anything that is not a
// PostgreSQL URL or keyword DSN is treated as a SQLite path.
func DialectFor(dsn string) Dialect {
	if IsPostgresDSN(dsn) {
		return Postgres
	}
	return SQLite
}

// DialectOf reports the engine behind an open connection, or "" for nil.
func DialectOf(conn *gorm.DB) Dialect {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return Dialect(conn.Dialector.Name())
}
