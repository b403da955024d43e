package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"scrolly/internal/record"

	_ "modernc.org/sqlite"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads rows from a table whose columns match Columns.
type SQLiteSource struct {
	path  string
	table string
}

func NewSQLiteSource(path, table string) (*SQLiteSource, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("data.path is required for sqlite sources")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		table = "records"
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid sqlite table name %q", table)
	}
	return &SQLiteSource{path: path, table: table}, nil
}

func (s *SQLiteSource) Name() string { return s.path + "#" + s.table }

func (s *SQLiteSource) Load(ctx context.Context) ([]record.RawRecord, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &LoadError{Source: s.Name(), Err: err}
	}
	defer db.Close()

	query := "SELECT " + strings.Join(Columns, ", ") + " FROM " + s.table
	rs, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &LoadError{Source: s.Name(), Err: err}
	}
	defer rs.Close()

	var rows []record.RawRecord
	for rs.Next() {
		var r record.RawRecord
		if err := rs.Scan(&r.Level, &r.Metric, &r.Region, &r.Period, &r.PeriodIndex, &r.Value); err != nil {
			return nil, &LoadError{Source: s.Name(), Err: err}
		}
		rows = append(rows, r)
	}
	if err := rs.Err(); err != nil {
		return nil, &LoadError{Source: s.Name(), Err: err}
	}
	return rows, nil
}
