// Package selector implements exploratory-mode level/metric selection.
package selector

import (
	"scrolly/internal/record"
)

// Catalog is the part of the series index the selector reads.
type Catalog interface {
	Levels() []string
	Metrics(level string) []string
}

// Selection is the outcome of a selector event.
type Selection struct {
	Level   string   `json:"level"`
	Metric  string   `json:"metric"`
	Metrics []string `json:"metrics"`
}

// Controller picks default selections. It holds no selection state itself;
// the engine owns the ViewState.
type Controller struct {
	preferredLevel   string
	preferredMetrics []string
}

func New(preferredLevel string, preferredMetrics []string) *Controller {
	metrics := make([]string, 0, len(preferredMetrics))
	for _, m := range preferredMetrics {
		if m = record.CanonicalKey(m); m != "" {
			metrics = append(metrics, m)
		}
	}
	return &Controller{
		preferredLevel:   record.CanonicalKey(preferredLevel),
		preferredMetrics: metrics,
	}
}

// LevelChanged selects level and recomputes its metric options and default
// metric. A level without metrics yields an empty metric selection.
func (c *Controller) LevelChanged(cat Catalog, level string) Selection {
	level = record.CanonicalKey(level)
	options := cat.Metrics(level)
	return Selection{
		Level:   level,
		Metric:  c.DefaultMetric(options),
		Metrics: options,
	}
}

// MetricChanged returns the canonical metric key.
func (c *Controller) MetricChanged(metric string) string {
	return record.CanonicalKey(metric)
}

// DefaultMetric returns the first preferred metric present in options, else
// the first option, else "".
func (c *Controller) DefaultMetric(options []string) string {
	for _, pref := range c.preferredMetrics {
		for _, opt := range options {
			if opt == pref {
				return opt
			}
		}
	}
	if len(options) > 0 {
		return options[0]
	}
	return ""
}

// DefaultLevel returns the configured level when present, else the first level.
func (c *Controller) DefaultLevel(cat Catalog) string {
	levels := cat.Levels()
	for _, l := range levels {
		if l == c.preferredLevel {
			return l
		}
	}
	if len(levels) > 0 {
		return levels[0]
	}
	return ""
}
