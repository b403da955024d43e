package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric field that is either a finite float64 or explicitly invalid.
// The zero value is invalid.
type Number struct {
	value float64
	valid bool
}

// Invalid returns the invalid marker.
func Invalid() Number { return Number{} }

// Finite wraps v, returning Invalid when v is NaN or ±Inf.
func Finite(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{value: v, valid: true}
}

func (n Number) Valid() bool { return n.valid }

// Float64 returns the value and whether it is valid.
func (n Number) Float64() (float64, bool) { return n.value, n.valid }

func (n Number) String() string {
	if !n.valid {
		return "invalid"
	}
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = ToNumberOrInvalid(raw)
	return nil
}

// ToNumberOrInvalid coerces an untyped field. Missing, blank, "na" and "nan"
// inputs are invalid rather than zero.
func ToNumberOrInvalid(v any) Number {
	switch t := v.(type) {
	case nil:
		return Invalid()
	case Number:
		return t
	case float64:
		return Finite(t)
	case float32:
		return Finite(float64(t))
	case int:
		return Finite(float64(t))
	case int8:
		return Finite(float64(t))
	case int16:
		return Finite(float64(t))
	case int32:
		return Finite(float64(t))
	case int64:
		return Finite(float64(t))
	case uint:
		return Finite(float64(t))
	case uint8:
		return Finite(float64(t))
	case uint16:
		return Finite(float64(t))
	case uint32:
		return Finite(float64(t))
	case uint64:
		return Finite(float64(t))
	case json.Number:
		return parseNumber(string(t))
	case []byte:
		return parseNumber(string(t))
	case string:
		return parseNumber(t)
	default:
		return Invalid()
	}
}

func parseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Invalid()
	}
	switch strings.ToLower(s) {
	case "na", "nan":
		return Invalid()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Invalid()
	}
	return Finite(f)
}
