// Package series groups normalized records by (level, metric) and answers
// ordered series queries.
package series

import (
	"sort"

	"scrolly/internal/record"
)

// Point is one finite (period_index, value) pair.
type Point struct {
	PeriodIndex float64 `json:"period_index"`
	Value       float64 `json:"value"`
}

// Series is ordered by PeriodIndex, ties keep source order.
type Series []Point

type key struct {
	level  string
	metric string
}

// Index is immutable once built. Rebuild it when the source data changes.
type Index struct {
	groups  map[key][]record.CleanRecord
	metrics map[string]map[string]struct{}
	size    int
}

// Build groups records by their exact (level, metric) pair.
func Build(records []record.CleanRecord) *Index {
	ix := &Index{
		groups:  make(map[key][]record.CleanRecord),
		metrics: make(map[string]map[string]struct{}),
		size:    len(records),
	}
	for _, rec := range records {
		k := key{level: rec.Level, metric: rec.Metric}
		ix.groups[k] = append(ix.groups[k], rec)
		if rec.Level == "" || rec.Metric == "" {
			continue
		}
		set, ok := ix.metrics[rec.Level]
		if !ok {
			set = make(map[string]struct{})
			ix.metrics[rec.Level] = set
		}
		set[rec.Metric] = struct{}{}
	}
	return ix
}

// Len returns the number of records the index was built from.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.size
}

// Query returns the valid points for (level, metric) sorted by period index.
// Unknown pairs yield an empty series.
func (ix *Index) Query(level, metric string) Series {
	if ix == nil {
		return Series{}
	}
	recs := ix.groups[key{level: record.CanonicalKey(level), metric: record.CanonicalKey(metric)}]
	out := make(Series, 0, len(recs))
	for _, rec := range recs {
		x, okX := rec.PeriodIndex.Float64()
		y, okY := rec.Value.Float64()
		if !okX || !okY {
			continue
		}
		out = append(out, Point{PeriodIndex: x, Value: y})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodIndex < out[j].PeriodIndex })
	return out
}

// Levels returns the distinct levels, sorted.
func (ix *Index) Levels() []string {
	if ix == nil {
		return []string{}
	}
	out := make([]string, 0, len(ix.metrics))
	for level := range ix.metrics {
		out = append(out, level)
	}
	sort.Strings(out)
	return out
}

// Metrics returns the distinct metrics recorded at level, sorted. A metric is
// listed even when none of its points are valid.
func (ix *Index) Metrics(level string) []string {
	if ix == nil {
		return []string{}
	}
	set := ix.metrics[record.CanonicalKey(level)]
	out := make([]string, 0, len(set))
	for metric := range set {
		out = append(out, metric)
	}
	sort.Strings(out)
	return out
}

// HasLevel reports whether level appears in the data.
func (ix *Index) HasLevel(level string) bool {
	if ix == nil {
		return false
	}
	_, ok := ix.metrics[record.CanonicalKey(level)]
	return ok
}

// Bounds returns the min and max of values and period indices. ok is false for
// an empty series.
func (s Series) Bounds() (minX, maxX, minY, maxY float64, ok bool) {
	if len(s) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, maxX = s[0].PeriodIndex, s[len(s)-1].PeriodIndex
	minY, maxY = s[0].Value, s[0].Value
	for _, p := range s[1:] {
		if p.Value < minY {
			minY = p.Value
		}
		if p.Value > maxY {
			maxY = p.Value
		}
	}
	return minX, maxX, minY, maxY, true
}
