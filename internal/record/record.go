// Package record normalizes raw dataset rows into typed records.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// RawRecord is one untyped input row. Any field may be nil (missing), blank,
// or hold a value of an unexpected kind.
type RawRecord struct {
	Level       any `json:"level"`
	Metric      any `json:"metric"`
	Region      any `json:"region"`
	Period      any `json:"period"`
	PeriodIndex any `json:"period_index"`
	Value       any `json:"value"`
}

// CleanRecord is the normalized form of a RawRecord. Level and Metric are
// canonical query keys.
type CleanRecord struct {
	Level       string `json:"level"`
	Metric      string `json:"metric"`
	Region      string `json:"region"`
	Period      string `json:"period"`
	PeriodIndex Number `json:"period_index"`
	Value       Number `json:"value"`
}

// Normalize never fails; invalid numeric input becomes an invalid Number.
func Normalize(raw RawRecord) CleanRecord {
	return CleanRecord{
		Level:       CanonicalKey(fieldString(raw.Level)),
		Metric:      CanonicalKey(fieldString(raw.Metric)),
		Region:      strings.TrimSpace(fieldString(raw.Region)),
		Period:      strings.TrimSpace(fieldString(raw.Period)),
		PeriodIndex: ToNumberOrInvalid(raw.PeriodIndex),
		Value:       ToNumberOrInvalid(raw.Value),
	}
}

// NormalizeAll normalizes rows in order.
func NormalizeAll(rows []RawRecord) []CleanRecord {
	out := make([]CleanRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, Normalize(r))
	}
	return out
}

// CanonicalKey trims and lower-cases a level or metric name.
func CanonicalKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Valid reports whether both numeric fields are usable as a series point.
func (r CleanRecord) Valid() bool {
	return r.PeriodIndex.Valid() && r.Value.Valid()
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
