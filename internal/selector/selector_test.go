package selector

import (
	"testing"

	"scrolly/internal/record"
	"scrolly/internal/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Levels() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockCatalog) Metrics(level string) []string {
	return m.Called(level).Get(0).([]string)
}

func TestLevelChangedPrefersConfiguredMetric(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Metrics", "national").Return([]string{"added_colonies", "lost_colonies", "quarter_start_colonies"})
	ctl := New("national", []string{"missing_metric", "Quarter_Start_Colonies", "lost_colonies"})

	sel := ctl.LevelChanged(cat, " National ")
	assert.Equal(t, "national", sel.Level)
	assert.Equal(t, "quarter_start_colonies", sel.Metric)
	assert.Equal(t, []string{"added_colonies", "lost_colonies", "quarter_start_colonies"}, sel.Metrics)
	cat.AssertExpectations(t)
}

func TestLevelChangedFallsBackToFirstMetric(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Metrics", "regional").Return([]string{"b_metric", "c_metric"})
	ctl := New("", []string{"a_metric"})
	assert.Equal(t, "b_metric", ctl.LevelChanged(cat, "regional").Metric)
}

func TestLevelChangedAbsentLevel(t *testing.T) {
	ix := series.Build(record.NormalizeAll([]record.RawRecord{
		{Level: "regional", Metric: "lost_colonies", PeriodIndex: 1, Value: 2},
	}))
	ctl := New("national", []string{"lost_colonies"})
	var sel Selection
	assert.NotPanics(t, func() { sel = ctl.LevelChanged(ix, "national") })
	assert.Equal(t, "national", sel.Level)
	assert.Equal(t, "", sel.Metric)
	assert.Empty(t, sel.Metrics)
}

func TestDefaultLevel(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Levels").Return([]string{"national", "regional"})
	assert.Equal(t, "regional", New("Regional", nil).DefaultLevel(cat))
	assert.Equal(t, "national", New("state", nil).DefaultLevel(cat))

	empty := new(mockCatalog)
	empty.On("Levels").Return([]string{})
	assert.Equal(t, "", New("", nil).DefaultLevel(empty))
}

func TestMetricChangedCanonicalizes(t *testing.T) {
	assert.Equal(t, "lost_colonies", New("", nil).MetricChanged(" Lost_Colonies "))
}
