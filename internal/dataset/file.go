package dataset

import (
	"context"
	"os"

	"scrolly/internal/record"
)

// FileSource reads a local JSON, CSV, or XLSX file.
type FileSource struct {
	path   string
	format string
}

func NewFileSource(path, format string) (*FileSource, error) {
	format, err := resolveFormat(format, path)
	if err != nil {
		return nil, err
	}
	return &FileSource{path: path, format: format}, nil
}

func (s *FileSource) Name() string { return s.path }

// Path is the file watched for reloads.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Load(ctx context.Context) ([]record.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: s.path, Err: err}
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &LoadError{Source: s.path, Err: err}
	}
	rows, err := decode(s.format, data)
	if err != nil {
		return nil, &LoadError{Source: s.path, Err: err}
	}
	return rows, nil
}
