package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"scrolly/internal/chart"
	"scrolly/internal/narrative"
	"scrolly/internal/record"
	"scrolly/internal/selector"
	"scrolly/internal/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu   sync.Mutex
	rows []record.RawRecord
	err  error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(ctx context.Context) ([]record.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows, f.err
}

func (f *fakeSource) set(rows []record.RawRecord, err error) {
	f.mu.Lock()
	f.rows, f.err = rows, err
	f.mu.Unlock()
}

func colonyRows() []record.RawRecord {
	return []record.RawRecord{
		{Level: "State", Metric: "lost_colonies", Period: "2015 Q1", PeriodIndex: 0, Value: "1000"},
		{Level: "state", Metric: "lost_colonies", Period: "2015 Q2", PeriodIndex: 1, Value: ""},
		{Level: "state", Metric: "lost_colonies", Period: "2015 Q3", PeriodIndex: 2, Value: 1200.0},
		{Level: "state", Metric: "max_colonies", PeriodIndex: 0, Value: 5000},
		{Level: "county", Metric: "added_colonies", PeriodIndex: 0, Value: "7"},
	}
}

func testStory(t *testing.T) narrative.Story {
	t.Helper()
	story, err := narrative.NewStory("Colonies", []narrative.Step{
		{Index: 0, Level: "state", Metric: "lost_colonies", Caption: "Losses"},
		{Index: 1, Level: "state", Metric: "max_colonies", Caption: "Peak"},
		{Index: 2, Level: "county", Metric: "added_colonies", Caption: "Added"},
	})
	require.NoError(t, err)
	return story
}

func newEngine(t *testing.T, arb Arbitration) (*Engine, *chart.Recorder, *fakeSource) {
	t.Helper()
	src := &fakeSource{rows: colonyRows()}
	rec := chart.NewRecorder()
	e := New(src, Options{
		Story:       testStory(t),
		Selector:    selector.New("national", []string{"lost_colonies"}),
		Surface:     rec,
		Size:        chart.Size{Width: 800, Height: 400},
		Arbitration: arb,
	})
	return e, rec, src
}

func loaded(t *testing.T, arb Arbitration) (*Engine, *chart.Recorder, *fakeSource) {
	t.Helper()
	e, rec, src := newEngine(t, arb)
	require.NoError(t, e.Load(context.Background()))
	return e, rec, src
}

func enter(steps ...int) ScrollUpdate {
	var sigs []narrative.Signal
	for _, s := range steps {
		sigs = append(sigs, narrative.Signal{Step: s, Entered: true})
	}
	return ScrollUpdate{Signals: sigs}
}

func TestNotReadyBeforeLoad(t *testing.T) {
	e, rec, _ := newEngine(t, LastWriterWins)

	_, err := e.Levels()
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = e.Dispatch(enter(0))
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = e.Snapshot()
	assert.ErrorIs(t, err, ErrNotReady)

	r := e.Report()
	assert.Equal(t, StatusLoading, r.Status)
	assert.Equal(t, "Loading data", r.Caption)
	assert.Zero(t, rec.Draws())
}

func TestLoadFailureIsFinal(t *testing.T) {
	e, rec, src := newEngine(t, LastWriterWins)
	src.set(nil, errors.New("unexpected token"))

	err := e.Load(context.Background())
	require.ErrorIs(t, err, ErrLoadFailed)

	r := e.Report()
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "Failed to load data", r.Caption)
	assert.Equal(t, "unexpected token", r.Detail)

	_, err = e.Metrics("state")
	assert.ErrorIs(t, err, ErrLoadFailed)
	_, err = e.Dispatch(LevelChanged{Level: "state"})
	assert.ErrorIs(t, err, ErrLoadFailed)

	src.set(colonyRows(), nil)
	assert.ErrorIs(t, e.Reload(context.Background()), ErrLoadFailed, "no retry after a fatal load")
	assert.Error(t, e.Load(context.Background()))
	assert.Zero(t, rec.Draws())
}

func TestLoadSelectsInitialView(t *testing.T) {
	e, rec, _ := loaded(t, LastWriterWins)

	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, ViewState{Mode: ModeExploratory, Level: "county", Metric: "added_colonies", ActiveStep: narrative.Inactive}, snap.State)
	assert.Equal(t, []string{"added_colonies"}, snap.Options)
	assert.True(t, snap.HasPlan)
	assert.Equal(t, "COUNTY: Added Colonies", snap.Plan.Title)
	assert.Equal(t, 1, rec.Draws())

	levels, err := e.Levels()
	require.NoError(t, err)
	assert.Equal(t, []string{"county", "state"}, levels)

	r := e.Report()
	assert.Equal(t, StatusReady, r.Status)
	assert.Equal(t, 5, r.Records)
	assert.Equal(t, 2, r.Levels)
}

func TestBlankValueDropped(t *testing.T) {
	e, _, _ := loaded(t, LastWriterWins)
	s, err := e.Series("STATE", " Lost_Colonies ")
	require.NoError(t, err)
	assert.Equal(t, series.Series{{PeriodIndex: 0, Value: 1000}, {PeriodIndex: 2, Value: 1200}}, s)
}

func TestScrollRendersStepOnce(t *testing.T) {
	e, rec, _ := loaded(t, LastWriterWins)
	before := rec.Draws()

	st, err := e.Dispatch(enter(0))
	require.NoError(t, err)
	assert.Equal(t, ViewState{Mode: ModeGuided, Level: "state", Metric: "lost_colonies", ActiveStep: 0}, st)
	assert.Equal(t, before+1, rec.Draws())

	st, err = e.Dispatch(enter(0))
	require.NoError(t, err)
	assert.Equal(t, 0, st.ActiveStep)
	assert.Equal(t, before+1, rec.Draws(), "re-entering the active step is a no-op")

	plan, ok := rec.Current()
	require.True(t, ok)
	assert.Equal(t, "STATE: Lost Colonies", plan.Title)
	assert.Equal(t, "Losses", plan.Caption)
	assert.Len(t, plan.Points, 2)
}

func TestScrollTieBreakAndStickiness(t *testing.T) {
	cases := []struct {
		name  string
		ticks []ScrollUpdate
		want  int
	}{
		{"highest entered wins", []ScrollUpdate{enter(0, 2, 1)}, 2},
		{"exit never transitions", []ScrollUpdate{enter(1), {Signals: []narrative.Signal{{Step: 2, Entered: false}}}}, 1},
		{"out of range ignored", []ScrollUpdate{enter(7, -1)}, narrative.Inactive},
		{"sticky after empty tick", []ScrollUpdate{enter(1), {}}, 1},
		{"backwards scroll", []ScrollUpdate{enter(2), enter(0)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _, _ := loaded(t, LastWriterWins)
			var st ViewState
			for _, tick := range tc.ticks {
				var err error
				st, err = e.Dispatch(tick)
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, st.ActiveStep)
		})
	}
}

func TestAbsentLevelYieldsEmptySelection(t *testing.T) {
	e, rec, _ := loaded(t, LastWriterWins)

	st, err := e.Dispatch(LevelChanged{Level: "national"})
	require.NoError(t, err)
	assert.Equal(t, "national", st.Level)
	assert.Equal(t, "", st.Metric)

	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Options)

	plan, ok := rec.Current()
	require.True(t, ok)
	assert.True(t, plan.Empty)
	assert.Nil(t, plan.X)
	assert.NotEmpty(t, plan.Message)
}

func TestSelectorEvents(t *testing.T) {
	e, _, _ := loaded(t, LastWriterWins)

	st, err := e.Dispatch(LevelChanged{Level: " State "})
	require.NoError(t, err)
	assert.Equal(t, "lost_colonies", st.Metric, "preferred metric wins")

	st, err = e.Dispatch(MetricChanged{Metric: "Max_Colonies"})
	require.NoError(t, err)
	assert.Equal(t, ViewState{Mode: ModeExploratory, Level: "state", Metric: "max_colonies", ActiveStep: narrative.Inactive}, st)

	st, err = e.Dispatch(MetricChanged{Metric: "nope"})
	require.NoError(t, err, "unknown metrics render the empty state")
	snap, _ := e.Snapshot()
	assert.True(t, snap.Plan.Empty)
	assert.Equal(t, "nope", st.Metric)
}

func TestResize(t *testing.T) {
	e, rec, _ := loaded(t, LastWriterWins)
	before, _ := e.Snapshot()

	_, err := e.Dispatch(Resized{Size: chart.Size{Width: 0, Height: 300}})
	assert.ErrorIs(t, err, ErrInvalidSize)

	size := chart.Size{Width: 640, Height: 300}
	st, err := e.Dispatch(Resized{Size: size})
	require.NoError(t, err)
	assert.Equal(t, before.State, st)
	first, _ := rec.Current()
	assert.Equal(t, size, first.Size)

	_, err = e.Dispatch(Resized{Size: size})
	require.NoError(t, err)
	second, _ := rec.Current()
	assert.Equal(t, first, second)
}

func TestLastWriterWins(t *testing.T) {
	e, _, _ := loaded(t, LastWriterWins)

	_, err := e.Dispatch(enter(1))
	require.NoError(t, err)
	st, err := e.Dispatch(LevelChanged{Level: "county"})
	require.NoError(t, err)
	assert.Equal(t, ModeExploratory, st.Mode)
	assert.Equal(t, 1, st.ActiveStep)

	st, err = e.Dispatch(enter(1))
	require.NoError(t, err)
	assert.Equal(t, ModeExploratory, st.Mode, "same step does not re-fire")

	st, err = e.Dispatch(enter(2))
	require.NoError(t, err)
	assert.Equal(t, ModeGuided, st.Mode)
	assert.Equal(t, "county", st.Level)
}

func TestExclusiveArbitration(t *testing.T) {
	e, _, _ := loaded(t, Exclusive)

	_, err := e.Dispatch(enter(0))
	assert.ErrorIs(t, err, ErrModeLocked)

	st, err := e.Dispatch(ModeSwitched{Mode: ModeGuided})
	require.NoError(t, err)
	assert.Equal(t, ModeGuided, st.Mode)
	assert.Equal(t, "county", st.Level, "no active step keeps the current view")

	st, err = e.Dispatch(enter(1))
	require.NoError(t, err)
	assert.Equal(t, "max_colonies", st.Metric)

	_, err = e.Dispatch(LevelChanged{Level: "state"})
	assert.ErrorIs(t, err, ErrModeLocked)
	_, err = e.Dispatch(MetricChanged{Metric: "lost_colonies"})
	assert.ErrorIs(t, err, ErrModeLocked)

	st, err = e.Dispatch(ModeSwitched{Mode: ModeExploratory})
	require.NoError(t, err)
	assert.Equal(t, ViewState{Mode: ModeExploratory, Level: "county", Metric: "added_colonies", ActiveStep: 1}, st)

	st, err = e.Dispatch(ModeSwitched{Mode: ModeGuided})
	require.NoError(t, err)
	assert.Equal(t, "max_colonies", st.Metric, "guided restores the active step")

	_, err = e.Dispatch(ModeSwitched{Mode: "sideways"})
	assert.Error(t, err)
}

func TestReload(t *testing.T) {
	e, rec, src := loaded(t, LastWriterWins)
	_, err := e.Dispatch(LevelChanged{Level: "state"})
	require.NoError(t, err)

	rows := append(colonyRows(), record.RawRecord{Level: "state", Metric: "lost_colonies", PeriodIndex: 3, Value: 900})
	src.set(rows, nil)
	draws := rec.Draws()
	require.NoError(t, e.Reload(context.Background()))
	assert.Equal(t, draws+1, rec.Draws())
	plan, _ := rec.Current()
	assert.Len(t, plan.Points, 3)

	src.set(nil, errors.New("disk gone"))
	assert.Error(t, e.Reload(context.Background()))
	s, err := e.Series("state", "lost_colonies")
	require.NoError(t, err)
	assert.Len(t, s, 3, "failed reload keeps the previous index")
	assert.Equal(t, StatusReady, e.Report().Status)
}

func TestListenersAndObservers(t *testing.T) {
	e, _, _ := newEngine(t, LastWriterWins)
	var states []ViewState
	var renders []Render
	e.OnChange(func(s ViewState) { states = append(states, s) })
	e.OnRender(func(r Render) { renders = append(renders, r) })

	require.NoError(t, e.Load(context.Background()))
	_, err := e.Dispatch(enter(0))
	require.NoError(t, err)
	_, err = e.Dispatch(Resized{Size: chart.Size{Width: 500, Height: 300}})
	require.NoError(t, err)

	require.Len(t, states, 2, "resize changes no state")
	assert.Equal(t, "county", states[0].Level)
	assert.Equal(t, 0, states[1].ActiveStep)
	require.Len(t, renders, 3)
	assert.Equal(t, 500.0, renders[2].Plan.Size.Width)
}

func TestConcurrentDispatch(t *testing.T) {
	e, rec, _ := loaded(t, LastWriterWins)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = e.Dispatch(enter(i % 3))
				return
			}
			_, _ = e.Dispatch(LevelChanged{Level: "state"})
		}(i)
	}
	wg.Wait()

	snap, err := e.Snapshot()
	require.NoError(t, err)
	plan, ok := rec.Current()
	require.True(t, ok)
	assert.Equal(t, snap.Plan, plan)
	assert.Equal(t, chart.Title(snap.State.Level, snap.State.Metric), plan.Title)
}
