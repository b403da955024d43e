package chart

import (
	"math"
	"strconv"
	"strings"

	"scrolly/internal/series"
)

// Options tune the renderer. Zero fields take the defaults below.
type Options struct {
	Margin       Margins
	PadFraction  float64
	ZeroPad      float64
	NiceTicks    int
	EmptyMessage string
}

const (
	defaultPadFraction  = 0.05
	defaultZeroPad      = 1
	defaultNiceTicks    = 10
	defaultEmptyMessage = "No data available for this selection."
)

var defaultMargins = Margins{Top: 24, Right: 24, Bottom: 40, Left: 56}

// Renderer builds plans. It is stateless and safe to reuse.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	if opts.Margin == (Margins{}) {
		opts.Margin = defaultMargins
	}
	if opts.PadFraction <= 0 {
		opts.PadFraction = defaultPadFraction
	}
	if opts.ZeroPad <= 0 {
		opts.ZeroPad = defaultZeroPad
	}
	if opts.NiceTicks <= 0 {
		opts.NiceTicks = defaultNiceTicks
	}
	if strings.TrimSpace(opts.EmptyMessage) == "" {
		opts.EmptyMessage = defaultEmptyMessage
	}
	return &Renderer{opts: opts}
}

// Render builds the plan for s. An empty series yields an empty-state plan
// with no scales.
func (r *Renderer) Render(s series.Series, title, caption string, size Size) Plan {
	plan := Plan{
		Title:   title,
		Caption: caption,
		Size:    size,
		Margin:  r.opts.Margin,
	}
	minX, maxX, minY, maxY, ok := s.Bounds()
	if !ok {
		plan.Empty = true
		plan.Message = r.opts.EmptyMessage
		return plan
	}
	innerW := math.Max(0, size.Width-r.opts.Margin.Left-r.opts.Margin.Right)
	innerH := math.Max(0, size.Height-r.opts.Margin.Top-r.opts.Margin.Bottom)

	lo, hi := verticalDomain(minY, maxY, r.opts.PadFraction, r.opts.ZeroPad, r.opts.NiceTicks)
	x := Scale{Domain: [2]float64{minX, maxX}, Range: [2]float64{0, innerW}}
	y := Scale{Domain: [2]float64{lo, hi}, Range: [2]float64{innerH, 0}}
	plan.X, plan.Y = &x, &y
	plan.XTicks = axisTicks(minX, maxX)
	plan.YTicks = axisTicks(lo, hi)

	plan.Points = make([]PixelPoint, 0, len(s))
	var path strings.Builder
	for i, p := range s {
		px, py := x.Map(p.PeriodIndex), y.Map(p.Value)
		plan.Points = append(plan.Points, PixelPoint{PeriodIndex: p.PeriodIndex, Value: p.Value, X: px, Y: py})
		if i == 0 {
			path.WriteByte('M')
		} else {
			path.WriteByte('L')
		}
		path.WriteString(formatCoord(px))
		path.WriteByte(',')
		path.WriteString(formatCoord(py))
	}
	plan.Path = path.String()
	return plan
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
