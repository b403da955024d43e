// Package narrative holds the declared story steps and the scroll-driven
// step synchronizer.
package narrative

import (
	"errors"
	"fmt"
	"sort"

	"scrolly/internal/record"
)

var ErrInvalidStory = errors.New("invalid story")

// Step binds one scroll position to a fixed chart selection.
type Step struct {
	Index   int    `json:"index" yaml:"index"`
	Level   string `json:"level" yaml:"level"`
	Metric  string `json:"metric" yaml:"metric"`
	Caption string `json:"caption" yaml:"caption"`
	Element string `json:"element,omitempty" yaml:"element"`
}

// Story is the ordered, read-only step table.
type Story struct {
	title string
	steps []Step
}

// NewStory sorts steps by index and requires indices 0..N-1 without gaps.
// Level and metric are canonicalized so they match index keys.
func NewStory(title string, steps []Step) (Story, error) {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	for i := range sorted {
		if sorted[i].Index != i {
			return Story{}, fmt.Errorf("%w: step indices must be 0..%d, found %d at position %d",
				ErrInvalidStory, len(sorted)-1, sorted[i].Index, i)
		}
		sorted[i].Level = record.CanonicalKey(sorted[i].Level)
		sorted[i].Metric = record.CanonicalKey(sorted[i].Metric)
		if sorted[i].Element == "" {
			sorted[i].Element = fmt.Sprintf("step-%d", i)
		}
	}
	return Story{title: title, steps: sorted}, nil
}

func (s Story) Title() string { return s.title }

func (s Story) Len() int { return len(s.steps) }

// Step returns the step at index i.
func (s Story) Step(i int) (Step, bool) {
	if i < 0 || i >= len(s.steps) {
		return Step{}, false
	}
	return s.steps[i], true
}

// Steps returns a copy of the step table.
func (s Story) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}
