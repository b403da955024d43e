// Package engine owns the ViewState. It gates queries on the dataset load,
// serializes events, and presents a fresh plan after every change.
package engine

import (
	"context"
	"fmt"
	"sync"

	"scrolly/internal/chart"
	"scrolly/internal/logger"
	"scrolly/internal/narrative"
	"scrolly/internal/record"
	"scrolly/internal/selector"
	"scrolly/internal/series"
)

var log = logger.With("engine")

// Source yields raw rows; dataset.Source satisfies it.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]record.RawRecord, error)
}

// DefaultSize is used until the first Resized event when Options.Size is unset.
var DefaultSize = chart.Size{Width: 820, Height: 420}

type Options struct {
	Story       narrative.Story
	Selector    *selector.Controller
	Renderer    *chart.Renderer
	Surface     chart.Surface
	Size        chart.Size
	Arbitration Arbitration
}

type Engine struct {
	src         Source
	sync        *narrative.Synchronizer
	selector    *selector.Controller
	renderer    *chart.Renderer
	surface     chart.Surface
	arbitration Arbitration

	mu        sync.Mutex
	status    Status
	loadErr   error
	index     *series.Index
	state     ViewState
	options   []string
	explore   selector.Selection
	caption   string
	size      chart.Size
	plan      chart.Plan
	hasPlan   bool
	listeners []Listener
	observers []RenderObserver
}

func New(src Source, opts Options) *Engine {
	if opts.Selector == nil {
		opts.Selector = selector.New("", nil)
	}
	if opts.Renderer == nil {
		opts.Renderer = chart.NewRenderer(chart.Options{})
	}
	if opts.Surface == nil {
		opts.Surface = chart.NewRecorder()
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Arbitration != Exclusive {
		opts.Arbitration = LastWriterWins
	}
	return &Engine{
		src:         src,
		sync:        narrative.NewSynchronizer(opts.Story),
		selector:    opts.Selector,
		renderer:    opts.Renderer,
		surface:     opts.Surface,
		arbitration: opts.Arbitration,
		status:      StatusLoading,
		state:       initialState(),
		size:        opts.Size,
	}
}

// OnChange registers fn for ViewState changes. Callbacks run while the
// engine lock is held and must not call back into the Engine.
func (e *Engine) OnChange(fn Listener) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// OnRender registers fn for presented plans, under the same rules as OnChange.
func (e *Engine) OnRender(fn RenderObserver) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.observers = append(e.observers, fn)
	e.mu.Unlock()
}

// Load reads the source once and builds the index. A failure is final: the
// engine stays failed and every later query returns ErrLoadFailed.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.status != StatusLoading {
		e.mu.Unlock()
		return fmt.Errorf("engine already loaded (status %s)", e.status)
	}
	e.mu.Unlock()

	ix, err := e.build(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.status = StatusFailed
		e.loadErr = err
		log.Errorf("load %s failed: %v", e.src.Name(), err)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	e.index = ix
	e.status = StatusReady
	log.Infof("loaded %d records, %d levels from %s", ix.Len(), len(ix.Levels()), e.src.Name())

	sel := e.selector.LevelChanged(ix, e.selector.DefaultLevel(ix))
	e.explore = sel
	e.options = sel.Metrics
	e.state.Level, e.state.Metric = sel.Level, sel.Metric
	e.commit()
	return nil
}

// Reload rebuilds the index from the source and re-renders the current view.
// A failed reload keeps the previous index.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	if err := e.gate(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	ix, err := e.build(ctx)
	if err != nil {
		log.Warnf("reload %s failed, keeping previous index: %v", e.src.Name(), err)
		return err
	}
	return e.Replace(ix)
}

// Replace swaps the index wholesale and re-renders the current view.
func (e *Engine) Replace(ix *series.Index) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gate(); err != nil {
		return err
	}
	e.index = ix
	e.options = ix.Metrics(e.state.Level)
	e.explore.Metrics = ix.Metrics(e.explore.Level)
	log.Infof("index replaced: %d records, %d levels", ix.Len(), len(ix.Levels()))
	e.render()
	return nil
}

func (e *Engine) build(ctx context.Context) (*series.Index, error) {
	rows, err := e.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return series.Build(record.NormalizeAll(rows)), nil
}

// gate must be called with e.mu held.
func (e *Engine) gate() error {
	switch e.status {
	case StatusReady:
		return nil
	case StatusFailed:
		return fmt.Errorf("%w: %w", ErrLoadFailed, e.loadErr)
	default:
		return ErrNotReady
	}
}

func (e *Engine) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := Report{Status: e.status, Caption: e.status.Caption(), Source: e.src.Name()}
	if e.loadErr != nil {
		r.Detail = e.loadErr.Error()
	}
	if e.index != nil {
		r.Records = e.index.Len()
		r.Levels = len(e.index.Levels())
	}
	return r
}

// LoadErr is the fatal load failure, if any.
func (e *Engine) LoadErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

func (e *Engine) Story() narrative.Story { return e.sync.Story() }

func (e *Engine) Levels() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gate(); err != nil {
		return nil, err
	}
	return e.index.Levels(), nil
}

func (e *Engine) Metrics(level string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gate(); err != nil {
		return nil, err
	}
	return e.index.Metrics(level), nil
}

func (e *Engine) Series(level, metric string) (series.Series, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gate(); err != nil {
		return nil, err
	}
	return e.index.Query(level, metric), nil
}

// Snapshot is the current view: state, metric options, and the presented plan.
type Snapshot struct {
	State   ViewState  `json:"state"`
	Options []string   `json:"metrics"`
	Plan    chart.Plan `json:"plan"`
	HasPlan bool       `json:"has_plan"`
}

func (e *Engine) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gate(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		State:   e.state,
		Options: append([]string(nil), e.options...),
		Plan:    e.plan,
		HasPlan: e.hasPlan,
	}, nil
}
