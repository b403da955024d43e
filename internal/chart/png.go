package chart

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const pixelsPerInch = 96

// WritePNG draws plan with gonum/plot. Empty plans produce a titled canvas
// carrying the empty-state message and no axes.
func WritePNG(w io.Writer, plan Plan) error {
	p := plot.New()
	p.Title.Text = plan.Title
	if plan.Caption != "" {
		p.Title.Text = plan.Title + "\n" + plan.Caption
	}
	if plan.Empty {
		p.Title.Text = plan.Title + "\n" + plan.Message
		p.HideAxes()
		return writePlot(w, p, plan.Size)
	}
	xys := make(plotter.XYs, len(plan.Points))
	for i, pt := range plan.Points {
		xys[i].X = pt.PeriodIndex
		xys[i].Y = pt.Value
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff}
	p.Add(plotter.NewGrid(), line)

	p.X.Min, p.X.Max = plan.X.Domain[0], plan.X.Domain[1]
	p.Y.Min, p.Y.Max = plan.Y.Domain[0], plan.Y.Domain[1]
	if len(plan.XTicks) > 0 {
		p.X.Tick.Marker = gonumTicks(plan.XTicks)
	}
	if len(plan.YTicks) > 0 {
		p.Y.Tick.Marker = gonumTicks(plan.YTicks)
	}
	return writePlot(w, p, plan.Size)
}

func writePlot(w io.Writer, p *plot.Plot, size Size) error {
	width := vg.Length(size.Width) * vg.Inch / pixelsPerInch
	height := vg.Length(size.Height) * vg.Inch / pixelsPerInch
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %.0fx%.0f", size.Width, size.Height)
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
