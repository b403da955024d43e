package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"scrolly/internal/record"
)

// DecodeCSV reads a header row followed by data rows. Short rows leave the
// missing columns absent.
func DecodeCSV(data []byte) ([]record.RawRecord, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	head, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: missing header row")
		}
		return nil, fmt.Errorf("csv header: %w", err)
	}
	header := headerIndex(head)
	var rows []record.RawRecord
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		rows = append(rows, rowFromCells(header, cells))
	}
	return rows, nil
}
