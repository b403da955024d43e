package chart

import (
	"strconv"

	"gonum.org/v1/plot"
)

// axisTicks asks gonum's default tick marker for ticks inside [lo, hi].
func axisTicks(lo, hi float64) []Tick {
	if lo == hi {
		return []Tick{{Value: lo, Label: strconv.FormatFloat(lo, 'g', -1, 64)}}
	}
	marks := plot.DefaultTicks{}.Ticks(lo, hi)
	out := make([]Tick, 0, len(marks))
	for _, m := range marks {
		out = append(out, Tick{Value: m.Value, Label: m.Label})
	}
	return out
}

func gonumTicks(ticks []Tick) plot.ConstantTicks {
	out := make(plot.ConstantTicks, 0, len(ticks))
	for _, t := range ticks {
		out = append(out, plot.Tick{Value: t.Value, Label: t.Label})
	}
	return out
}
