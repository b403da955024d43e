package narrative

// Inactive is the synchronizer state before any step has entered the viewport.
const Inactive = -1

// Signal reports one step element's viewport condition for a scroll tick.
// Entered is false for exit signals, which never move the state.
type Signal struct {
	Step    int  `json:"step"`
	Entered bool `json:"entered"`
}

// Directive asks for exactly one render of a step's binding.
type Directive struct {
	Step Step
}

// Synchronizer maps scroll ticks to story steps. It is sticky: once a step
// has fired, it never returns to Inactive.
type Synchronizer struct {
	story Story
}

func NewSynchronizer(story Story) *Synchronizer {
	return &Synchronizer{story: story}
}

func (s *Synchronizer) Story() Story { return s.story }

// Advance applies one scroll tick to the current state. Among entered
// signals with an in-range index the highest wins; a tick that resolves to
// the current state is a no-op and returns a nil directive.
func (s *Synchronizer) Advance(current int, tick []Signal) (int, *Directive) {
	target := Inactive
	for _, sig := range tick {
		if !sig.Entered || sig.Step < 0 || sig.Step >= s.story.Len() {
			continue
		}
		if sig.Step > target {
			target = sig.Step
		}
	}
	if target == Inactive || target == current {
		return current, nil
	}
	step, _ := s.story.Step(target)
	return target, &Directive{Step: step}
}
