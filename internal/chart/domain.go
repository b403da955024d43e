package chart

import "math"

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// verticalDomain returns the padded and niced value domain. A single distinct
// value v never collapses: it is padded by zeroPad when v is 0, otherwise by
// padFraction*|v|.
func verticalDomain(minY, maxY, padFraction, zeroPad float64, count int) (float64, float64) {
	lo, hi := minY, maxY
	if lo == hi {
		pad := zeroPad
		if lo != 0 {
			pad = math.Abs(lo) * padFraction
		}
		lo, hi = lo-pad, hi+pad
	}
	nlo, nhi := nice(lo, hi, count)
	if math.IsInf(nlo, 0) || math.IsInf(nhi, 0) || math.IsNaN(nlo) || math.IsNaN(nhi) {
		return lo, hi
	}
	return nlo, nhi
}

// nice extends [start, stop] outward to round tick boundaries.
func nice(start, stop float64, count int) (float64, float64) {
	if stop < start {
		start, stop = stop, start
	}
	var prestep float64
	for iter := 0; iter < 10; iter++ {
		step := tickIncrement(start, stop, count)
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			return start, stop
		}
		prestep = step
	}
	return start, stop
}

// tickIncrement returns a positive step (>= 1 magnitude) or the negated
// inverse of a fractional step, so callers avoid float rounding on 0.1 etc.
func tickIncrement(start, stop float64, count int) float64 {
	if count <= 0 || stop <= start {
		return 0
	}
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	err := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}
