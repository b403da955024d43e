// Package chart turns a series into a line-chart rendering plan and hands it
// to a drawing surface.
package chart

// Size is the drawing surface in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Scale maps a numeric domain linearly onto a pixel range.
type Scale struct {
	Domain [2]float64 `json:"domain"`
	Range  [2]float64 `json:"range"`
}

// Map projects v onto the range. A collapsed domain maps to the range centre.
func (s Scale) Map(v float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	r0, r1 := s.Range[0], s.Range[1]
	if d0 == d1 {
		return (r0 + r1) / 2
	}
	return r0 + (v-d0)/(d1-d0)*(r1-r0)
}

// Tick is an axis tick request; minor ticks carry no label.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// PixelPoint is a data point with its projected position inside the margins.
type PixelPoint struct {
	PeriodIndex float64 `json:"period_index"`
	Value       float64 `json:"value"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Plan is what a surface draws. When Empty is set only Title, Caption,
// Message and the surface size are meaningful.
type Plan struct {
	Empty   bool    `json:"empty"`
	Message string  `json:"message,omitempty"`
	Title   string  `json:"title"`
	Caption string  `json:"caption,omitempty"`
	Size    Size    `json:"size"`
	Margin  Margins `json:"margin"`

	X      *Scale       `json:"x,omitempty"`
	Y      *Scale       `json:"y,omitempty"`
	XTicks []Tick       `json:"x_ticks,omitempty"`
	YTicks []Tick       `json:"y_ticks,omitempty"`
	Points []PixelPoint `json:"points,omitempty"`
	Path   string       `json:"path,omitempty"`
}
