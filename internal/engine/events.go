package engine

import (
	"scrolly/internal/chart"
	"scrolly/internal/narrative"
)

// Event is one input to Dispatch.
type Event interface {
	eventName() string
}

// ScrollUpdate is one scroll tick from the guided view.
type ScrollUpdate struct {
	Signals []narrative.Signal
}

// LevelChanged is a level selection in the exploratory view.
type LevelChanged struct {
	Level string
}

// MetricChanged is a metric selection in the exploratory view.
type MetricChanged struct {
	Metric string
}

// Resized reports a new surface size.
type Resized struct {
	Size chart.Size
}

// ModeSwitched hands the view to the other mode.
type ModeSwitched struct {
	Mode Mode
}

func (ScrollUpdate) eventName() string  { return "scroll" }
func (LevelChanged) eventName() string  { return "level" }
func (MetricChanged) eventName() string { return "metric" }
func (Resized) eventName() string       { return "resize" }
func (ModeSwitched) eventName() string  { return "mode" }
