// Package dataset loads raw rows from files, HTTP endpoints, and SQLite
// tables, and watches file sources for changes.
package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"scrolly/internal/record"
)

// Columns are the fields every source maps onto record.RawRecord.
var Columns = []string{"level", "metric", "region", "period", "period_index", "value"}

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	KindFile   = "file"
	KindHTTP   = "http"
	KindSQLite = "sqlite"
)

// Source yields the raw rows of one dataset.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]record.RawRecord, error)
}

// Config selects and parameterizes a Source.
type Config struct {
	Kind         string
	Path         string
	URL          string
	Format       string
	Table        string
	FetchTimeout time.Duration
}

// LoadError is the single fatal failure surfaced when a dataset cannot be
// read or parsed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Detail is the text shown in the diagnostic panel.
func (e *LoadError) Detail() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Open builds the Source described by cfg.
func Open(cfg Config) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", KindFile:
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, fmt.Errorf("data.path is required for file sources")
		}
		return NewFileSource(cfg.Path, cfg.Format)
	case KindHTTP:
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, fmt.Errorf("data.url is required for http sources")
		}
		return NewHTTPSource(cfg.URL, cfg.Format, cfg.FetchTimeout), nil
	case KindSQLite:
		return NewSQLiteSource(cfg.Path, cfg.Table)
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Kind)
	}
}

func resolveFormat(format, name string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}
	switch format {
	case FormatJSON, FormatCSV, FormatXLSX:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported data format %q", format)
	}
}

func decode(format string, data []byte) ([]record.RawRecord, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatCSV:
		return DecodeCSV(data)
	case FormatXLSX:
		return DecodeXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported data format %q", format)
	}
}

// columnKey canonicalizes a header cell: "Period Index" -> "period_index".
func columnKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "-", "_")
}

// rowFromCells maps header-aligned cells onto a RawRecord. Absent cells stay nil.
func rowFromCells(header map[string]int, cells []string) record.RawRecord {
	get := func(col string) any {
		i, ok := header[col]
		if !ok || i >= len(cells) {
			return nil
		}
		return cells[i]
	}
	return record.RawRecord{
		Level:       get("level"),
		Metric:      get("metric"),
		Region:      get("region"),
		Period:      get("period"),
		PeriodIndex: get("period_index"),
		Value:       get("value"),
	}
}

func headerIndex(cells []string) map[string]int {
	idx := make(map[string]int, len(cells))
	for i, h := range cells {
		key := columnKey(h)
		if _, dup := idx[key]; key == "" || dup {
			continue
		}
		idx[key] = i
	}
	return idx
}
