package chart

import "sync"

// Surface is the external drawing collaborator.
type Surface interface {
	Clear()
	Draw(Plan) error
}

// Present clears s before drawing plan so nothing accumulates across renders.
func Present(s Surface, plan Plan) error {
	s.Clear()
	return s.Draw(plan)
}

// Recorder keeps the most recently drawn plan. The HTTP layer serves it and
// the exporters redraw from it.
type Recorder struct {
	mu    sync.RWMutex
	plan  *Plan
	draws int
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Clear() {
	r.mu.Lock()
	r.plan = nil
	r.mu.Unlock()
}

func (r *Recorder) Draw(p Plan) error {
	r.mu.Lock()
	r.plan = &p
	r.draws++
	r.mu.Unlock()
	return nil
}

// Current returns the plan on the surface, if any.
func (r *Recorder) Current() (Plan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.plan == nil {
		return Plan{}, false
	}
	return *r.plan, true
}

// Draws counts Draw calls since creation.
func (r *Recorder) Draws() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.draws
}
