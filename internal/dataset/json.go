package dataset

import (
	"encoding/json"
	"fmt"

	"scrolly/internal/record"

	"github.com/tidwall/gjson"
)

// DecodeJSON reads a JSON array of row objects. Elements that are not
// objects are skipped.
func DecodeJSON(data []byte) ([]record.RawRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("root must be a JSON array of rows")
	}
	rows := make([]record.RawRecord, 0, len(root.Array()))
	root.ForEach(func(_, row gjson.Result) bool {
		if !row.IsObject() {
			return true
		}
		rows = append(rows, record.RawRecord{
			Level:       jsonField(row, "level"),
			Metric:      jsonField(row, "metric"),
			Region:      jsonField(row, "region"),
			Period:      jsonField(row, "period"),
			PeriodIndex: jsonField(row, "period_index"),
			Value:       jsonField(row, "value"),
		})
		return true
	})
	return rows, nil
}

func jsonField(row gjson.Result, name string) any {
	v := row.Get(gjson.Escape(name))
	if !v.Exists() {
		return nil
	}
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.String:
		return v.Str
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return v.Raw
	}
}
