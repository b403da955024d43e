package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	colorBackground    = "#0b1221"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorLine          = "#fbbf24"
)

// WriteHTML renders plan as a standalone ECharts page.
func WriteHTML(w io.Writer, plan Plan) error {
	line := charts.NewLine()
	init := opts.Initialization{
		PageTitle:       plan.Title,
		Width:           fmt.Sprintf("%.0fpx", plan.Size.Width),
		Height:          fmt.Sprintf("%.0fpx", plan.Size.Height),
		BackgroundColor: colorBackground,
	}
	title := opts.Title{
		Title:         plan.Title,
		Subtitle:      plan.Caption,
		Left:          "left",
		TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
		SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
	}
	if plan.Empty {
		title.Subtitle = plan.Message
		line.SetGlobalOptions(
			charts.WithInitializationOpts(init),
			charts.WithTitleOpts(title),
			charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(false)}),
			charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(false)}),
		)
		return line.Render(w)
	}

	m := plan.Margin
	line.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(title),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{
			Top:    fmt.Sprintf("%.0f", m.Top),
			Right:  fmt.Sprintf("%.0f", m.Right),
			Bottom: fmt.Sprintf("%.0f", m.Bottom),
			Left:   fmt.Sprintf("%.0f", m.Left),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Min:       plan.X.Domain[0],
			Max:       plan.X.Domain[1],
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			Min:       plan.Y.Domain[0],
			Max:       plan.Y.Domain[1],
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	data := make([]opts.LineData, 0, len(plan.Points))
	for _, p := range plan.Points {
		data = append(data, opts.LineData{Value: []float64{p.PeriodIndex, p.Value}})
	}
	line.AddSeries(plan.Title, data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorLine, Width: 2}),
	)
	return line.Render(w)
}
