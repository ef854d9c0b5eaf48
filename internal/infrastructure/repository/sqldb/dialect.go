package sqldb

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type dialect string

const (
	dialectSQLite   dialect = "sqlite"
	dialectPostgres dialect = "postgres"
)

const sqliteBusyTimeoutMillis = 5000

// location is a resolved storage location: which driver to load and the DSN
// handed to it.
type location struct {
	dialect  dialect
	dsn      string
	dbName   string
	inMemory bool
}

func (l location) driverName() string {
	return string(l.dialect)
}

func resolveLocation(raw string, disablePreparedBinaryResult bool) (location, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return location{}, fmt.Errorf("storage location is empty")
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return location{
			dialect: dialectPostgres,
			dsn:     normalizeDBURL(trimmed, disablePreparedBinaryResult),
			dbName:  dbNameFromURL(trimmed),
		}, nil
	case strings.HasPrefix(lower, "memory://"):
		return location{}, fmt.Errorf("location %q is served by the in-process repository", trimmed)
	case strings.HasPrefix(lower, "sqlite://"):
		return sqliteLocation(trimmed[len("sqlite://"):])
	case strings.HasPrefix(lower, "sqlite:"):
		return sqliteLocation(trimmed[len("sqlite:"):])
	case strings.HasPrefix(lower, "file:"):
		return sqliteLocation(trimmed[len("file:"):])
	case isKeyValueDSN(trimmed):
		return location{
			dialect: dialectPostgres,
			dsn:     trimmed,
			dbName:  dbNameFromURL(trimmed),
		}, nil
	default:
		return sqliteLocation(trimmed)
	}
}

func isKeyValueDSN(raw string) bool {
	for _, token := range strings.Fields(raw) {
		if strings.HasPrefix(token, "host=") || strings.HasPrefix(token, "dbname=") {
			return true
		}
	}
	return false
}

// sqliteLocation builds a modernc DSN from a path with an optional query. The
// default pragmas are only applied when the caller did not set any.
func sqliteLocation(pathAndQuery string) (location, error) {
	path, rawQuery, _ := strings.Cut(pathAndQuery, "?")
	path = strings.TrimSpace(path)
	if path == "" {
		return location{}, fmt.Errorf("sqlite location has no path")
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return location{}, fmt.Errorf("parse sqlite location query: %w", err)
	}

	inMemory := path == ":memory:" || query.Get("mode") == "memory"
	if len(query["_pragma"]) == 0 {
		query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeoutMillis))
		if !inMemory {
			query.Add("_pragma", "journal_mode(WAL)")
		}
	}
	if query.Get("_txlock") == "" {
		query.Set("_txlock", "immediate")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if inMemory {
		name = "memory"
	}

	return location{
		dialect:  dialectSQLite,
		dsn:      "file:" + path + "?" + query.Encode(),
		dbName:   name,
		inMemory: inMemory,
	}, nil
}

func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}
