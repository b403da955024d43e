package engine

import (
	"errors"

	"scrolly/internal/chart"
	"scrolly/internal/narrative"
)

var (
	ErrNotReady    = errors.New("data not ready")
	ErrLoadFailed  = errors.New("failed to load data")
	ErrModeLocked  = errors.New("event not allowed in current mode")
	ErrInvalidSize = errors.New("invalid surface size")
)

type Mode string

const (
	ModeGuided      Mode = "guided"
	ModeExploratory Mode = "exploratory"
)

func (m Mode) Valid() bool {
	return m == ModeGuided || m == ModeExploratory
}

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Caption is the user-facing text for a status.
func (s Status) Caption() string {
	switch s {
	case StatusReady:
		return "Data ready"
	case StatusFailed:
		return "Failed to load data"
	default:
		return "Loading data"
	}
}

// Arbitration decides how guided and exploratory events share the one ViewState.
type Arbitration string

const (
	// LastWriterWins lets any event take over the view.
	LastWriterWins Arbitration = "last_writer_wins"
	// Exclusive rejects events of the inactive mode with ErrModeLocked
	// until a ModeSwitched event.
	Exclusive Arbitration = "exclusive"
)

// ViewState is the single mutable state of the engine.
type ViewState struct {
	Mode       Mode   `json:"mode"`
	Level      string `json:"level"`
	Metric     string `json:"metric"`
	ActiveStep int    `json:"active_step"`
}

func initialState() ViewState {
	return ViewState{Mode: ModeExploratory, ActiveStep: narrative.Inactive}
}

// Report summarizes engine status for the status endpoint.
type Report struct {
	Status  Status `json:"status"`
	Caption string `json:"caption"`
	Detail  string `json:"detail,omitempty"`
	Source  string `json:"source"`
	Records int    `json:"records"`
	Levels  int    `json:"levels"`
}

// Render is handed to render observers after every presented plan.
type Render struct {
	State ViewState
	Plan  chart.Plan
}

// Listener is notified after every ViewState change.
type Listener func(ViewState)

// RenderObserver is notified after every presented plan.
type RenderObserver func(Render)
