package db

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DSNInfo is a credential-free summary of a database DSN, safe to log.
type DSNInfo struct {
	Type        Dialect
	Host        string
	Port        int
	User        string
	Name        string
	SSLMode     string
	Path        string // SQLite file path.
	PasswordSet bool
}

// Fields returns the summary as log fields, omitting empty values.
func (i DSNInfo) Fields() map[string]any {
	fields := map[string]any{"db_type": string(i.Type)}
	if i.Type == SQLite {
		fields["db_path"] = i.Path
		return fields
	}
	if i.Host != "" {
		fields["db_host"] = i.Host
	}
	if i.Port > 0 {
		fields["db_port"] = i.Port
	}
	if i.Name != "" {
		fields["db_name"] = i.Name
	}
	if i.User != "" {
		fields["db_user"] = i.User
	}
	if i.SSLMode != "" {
		fields["db_sslmode"] = i.SSLMode
	}
	return fields
}

// DescribeDSN parses dsn into a DSNInfo. Keyword/value postgres DSNs
// ("host=... dbname=...") and bare SQLite paths are accepted as well as URLs.
func DescribeDSN(dsn string) (DSNInfo, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return DSNInfo{}, fmt.Errorf("db: empty dsn")
	}

	if DialectFor(trimmed) == SQLite {
		pathPart := trimmed
		if strings.HasPrefix(strings.ToLower(pathPart), "file:") {
			pathPart = pathPart[len("file:"):]
		}
		pathPart, _, _ = strings.Cut(pathPart, "?")
		return DSNInfo{Type: SQLite, Path: strings.TrimSpace(pathPart)}, nil
	}

	lowered := strings.ToLower(trimmed)
	if !strings.HasPrefix(lowered, "postgres://") && !strings.HasPrefix(lowered, "postgresql://") {
		return describeKeywordDSN(trimmed)
	}

	u, errParse := url.Parse(trimmed)
	if errParse != nil {
		return DSNInfo{}, fmt.Errorf("db: parse dsn: %w", errParse)
	}
	info := DSNInfo{
		Type:    Postgres,
		Host:    strings.TrimSpace(u.Hostname()),
		Port:    5432,
		Name:    strings.TrimSpace(strings.TrimPrefix(u.Path, "/")),
		SSLMode: strings.TrimSpace(u.Query().Get("sslmode")),
	}
	if rawPort := strings.TrimSpace(u.Port()); rawPort != "" {
		port, errPort := strconv.Atoi(rawPort)
		if errPort != nil {
			return DSNInfo{}, fmt.Errorf("db: parse port: %w", errPort)
		}
		info.Port = port
	}
	if u.User != nil {
		info.User = strings.TrimSpace(u.User.Username())
		_, info.PasswordSet = u.User.Password()
	}
	if info.SSLMode == "" {
		info.SSLMode = "disable"
	}
	return info, nil
}

func describeKeywordDSN(dsn string) (DSNInfo, error) {
	info := DSNInfo{Type: Postgres, Port: 5432, SSLMode: "disable"}
	for _, pair := range strings.Fields(dsn) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `'"`)
		switch strings.ToLower(key) {
		case "host":
			info.Host = value
		case "port":
			port, errPort := strconv.Atoi(value)
			if errPort != nil {
				return DSNInfo{}, fmt.Errorf("db: parse port: %w", errPort)
			}
			info.Port = port
		case "user":
			info.User = value
		case "dbname":
			info.Name = value
		case "sslmode":
			info.SSLMode = value
		case "password":
			info.PasswordSet = value != ""
		}
	}
	return info, nil
}
