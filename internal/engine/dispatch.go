package engine

import (
	"fmt"

	"scrolly/internal/chart"
	"scrolly/internal/selector"
)

// Dispatch applies one event under the engine lock and returns the
// resulting ViewState. Events never interleave.
func (e *Engine) Dispatch(ev Event) (ViewState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gate(); err != nil {
		return e.state, err
	}
	var err error
	switch ev := ev.(type) {
	case ScrollUpdate:
		err = e.scroll(ev)
	case LevelChanged:
		err = e.levelChanged(ev)
	case MetricChanged:
		err = e.metricChanged(ev)
	case Resized:
		err = e.resized(ev)
	case ModeSwitched:
		err = e.modeSwitched(ev)
	default:
		err = fmt.Errorf("unknown event %T", ev)
	}
	if err != nil {
		log.Debugf("%s event rejected: %v", eventName(ev), err)
	}
	return e.state, err
}

func eventName(ev Event) string {
	if ev == nil {
		return "nil"
	}
	return ev.eventName()
}

func (e *Engine) allow(mode Mode) error {
	if e.arbitration == Exclusive && e.state.Mode != mode {
		return fmt.Errorf("%w: %s is active", ErrModeLocked, e.state.Mode)
	}
	return nil
}

func (e *Engine) scroll(ev ScrollUpdate) error {
	if err := e.allow(ModeGuided); err != nil {
		return err
	}
	next, dir := e.sync.Advance(e.state.ActiveStep, ev.Signals)
	if dir == nil {
		return nil
	}
	e.state.Mode = ModeGuided
	e.state.ActiveStep = next
	e.state.Level = dir.Step.Level
	e.state.Metric = dir.Step.Metric
	e.caption = dir.Step.Caption
	e.options = e.index.Metrics(e.state.Level)
	log.Debugf("step %d -> %s/%s", next, e.state.Level, e.state.Metric)
	e.commit()
	return nil
}

func (e *Engine) levelChanged(ev LevelChanged) error {
	if err := e.allow(ModeExploratory); err != nil {
		return err
	}
	sel := e.selector.LevelChanged(e.index, ev.Level)
	e.explore = sel
	e.applySelection(sel)
	e.commit()
	return nil
}

func (e *Engine) metricChanged(ev MetricChanged) error {
	if err := e.allow(ModeExploratory); err != nil {
		return err
	}
	if e.state.Mode != ModeExploratory {
		e.applySelection(e.explore)
	}
	e.explore.Metric = e.selector.MetricChanged(ev.Metric)
	e.state.Metric = e.explore.Metric
	e.commit()
	return nil
}

func (e *Engine) resized(ev Resized) error {
	if ev.Size.Width <= 0 || ev.Size.Height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSize, ev.Size.Width, ev.Size.Height)
	}
	e.size = ev.Size
	e.render()
	return nil
}

// modeSwitched restores the incoming mode's last selection: the active step
// for guided, the last level/metric pick for exploratory.
func (e *Engine) modeSwitched(ev ModeSwitched) error {
	if !ev.Mode.Valid() {
		return fmt.Errorf("unknown mode %q", ev.Mode)
	}
	if ev.Mode == e.state.Mode {
		return nil
	}
	e.state.Mode = ev.Mode
	switch ev.Mode {
	case ModeGuided:
		step, ok := e.sync.Story().Step(e.state.ActiveStep)
		if !ok {
			e.notify()
			return nil
		}
		e.state.Level, e.state.Metric = step.Level, step.Metric
		e.caption = step.Caption
		e.options = e.index.Metrics(step.Level)
	case ModeExploratory:
		e.applySelection(e.explore)
	}
	e.commit()
	return nil
}

func (e *Engine) applySelection(sel selector.Selection) {
	e.state.Mode = ModeExploratory
	e.state.Level = sel.Level
	e.state.Metric = sel.Metric
	e.options = sel.Metrics
	e.caption = ""
}

// commit notifies listeners of the new state and presents it.
func (e *Engine) commit() {
	e.notify()
	e.render()
}

func (e *Engine) notify() {
	for _, fn := range e.listeners {
		fn(e.state)
	}
}

func (e *Engine) render() {
	s := e.index.Query(e.state.Level, e.state.Metric)
	title := chart.Title(e.state.Level, e.state.Metric)
	plan := e.renderer.Render(s, title, e.caption, e.size)
	if err := chart.Present(e.surface, plan); err != nil {
		log.Warnf("present %s failed: %v", title, err)
	}
	e.plan, e.hasPlan = plan, true
	for _, fn := range e.observers {
		fn(Render{State: e.state, Plan: plan})
	}
}
