package chart

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prettify turns a snake_case key into a Title Case label. Display only.
func Prettify(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Title is the upper-cased level followed by the prettified metric.
func Title(level, metric string) string {
	lvl := strings.ToUpper(strings.TrimSpace(level))
	label := Prettify(metric)
	switch {
	case lvl == "":
		return label
	case label == "":
		return lvl
	default:
		return lvl + ": " + label
	}
}
