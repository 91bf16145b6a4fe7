package table

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

var identRegEx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// GetDB opens an existing SQLite database. Missing files are an error
// rather than being created.
func GetDB(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("error locating database %s: %w", path, err)
	}
	conn, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return conn, nil
}

// ReadDB reads every row of a SQLite table. An empty name selects the
// first table in name order.
func ReadDB(path, name string) (*Table, error) {
	db, err := GetDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if name == "" {
		if name, err = firstTable(db); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if !identRegEx.MatchString(name) {
		return nil, fmt.Errorf("invalid table name: %q", name)
	}

	var found string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: table %q in %s", ErrSheetNotFound, name, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error checking table %q: %w", name, err)
	}

	rows, err := db.Query(`SELECT * FROM "` + name + `"`)
	if err != nil {
		return nil, fmt.Errorf("error querying table %q: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading columns of %q: %w", name, err)
	}

	t := New(cleanHeader(cols))
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error scanning row %d of %q: %w", t.Len()+1, name, err)
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = dbCell(v)
		}
		t.Append(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %q: %w", name, err)
	}

	return t, nil
}

func firstTable(db *sql.DB) (string, error) {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrEmpty
	}
	if err != nil {
		return "", fmt.Errorf("error listing tables: %w", err)
	}
	return name, nil
}

func dbCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return FormatNumber(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
