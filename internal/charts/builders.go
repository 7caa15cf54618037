package charts

import (
	"math"
	"time"

	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/timeline"
	"backend-pulsedash/internal/trimp"
	"backend-pulsedash/internal/vitals"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const chartTheme = "macarons"

// DailyHeartRateLine plots one day of heart rate samples on a time axis
// spanning the whole day. Null markers around silent stretches break the
// line, and a piecewise visual map paints each segment in its zone color.
func DailyHeartRateLine(day time.Time, points []timeline.Point) *charts.Line {
	line := newDailyLine("Heart rate", day)
	line.SetGlobalOptions(
		charts.WithVisualMapOpts(opts.VisualMap{
			Type:   "piecewise",
			Min:    40,
			Max:    220,
			Pieces: zonePieces(),
		}),
	)
	line.AddSeries("bpm", timePairs(points),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line
}

// DailySpO2Line plots the minute-averaged saturation series with dashed
// reference lines at the 95/90/88 desaturation thresholds.
func DailySpO2Line(day time.Time, points []timeline.Point) *charts.Line {
	line := newDailyLine("SpO2", day)
	line.SetGlobalOptions(
		charts.WithYAxisOpts(opts.YAxis{Min: 80, Max: 100}),
	)
	line.AddSeries("%", timePairs(points),
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithMarkLineNameYAxisItemOpts(
			opts.MarkLineNameYAxisItem{Name: "95", YAxis: 95},
			opts.MarkLineNameYAxisItem{Name: "90", YAxis: 90},
			opts.MarkLineNameYAxisItem{Name: "88", YAxis: 88},
		),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none", "none"},
			LineStyle: &opts.LineStyle{Type: "dashed"},
		}),
	)
	return line
}

// DailyBreathingLine plots the respiration series for one day.
func DailyBreathingLine(day time.Time, points []timeline.Point) *charts.Line {
	line := newDailyLine("Breathing rate", day)
	line.AddSeries("brpm", timePairs(points),
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)
	return line
}

// ActivityHeartRateLine plots an activity's samples against elapsed time.
// Labels come from the axis tick interval picked for the activity length, so
// a 45 minute run reads 0:00, 5:00, ... while a long hike reads 0:00, 1:00.
func ActivityHeartRateLine(name string, startedAt time.Time, points []timeline.Point, tickIntervalMin float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme}),
		charts.WithTitleOpts(opts.Title{
			Title:    name,
			Subtitle: startedAt.Format("2006-01-02 15:04"),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "cross",
			},
		}),
	)
	line.SetXAxis(elapsedLabels(startedAt, points, tickIntervalMin))
	line.AddSeries("bpm", lineValues(points),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line
}

// PeriodTRIMPBar renders the two-week load chart: one bar per day, stacked
// by heart rate zone in the zone colors.
func PeriodTRIMPBar(p calendar.Period, summaries []vitals.DaySummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Training load",
			Subtitle: p.Start.Format(time.DateOnly) + " to " + p.End.Format(time.DateOnly),
		}),
		charts.WithLegendOpts(opts.Legend{
			Bottom:  "bottom",
			Padding: 8,
			Show:    opts.Bool(true),
		}),
		charts.WithGridOpts(opts.Grid{Bottom: "20%"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "TRIMP"}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "shadow",
			},
		}),
	)

	labels := make([]string, len(summaries))
	for i, s := range summaries {
		labels[i] = s.Day.Format(time.DateOnly)
	}
	bar.SetXAxis(labels)

	for zi, zone := range trimp.Zones {
		data := make([]opts.BarData, len(summaries))
		for i, s := range summaries {
			var load float64
			if zi < len(s.Analysis.Zones) {
				load = s.Analysis.Zones[zi].TRIMP
			}
			data[i] = opts.BarData{Value: round1(load)}
		}
		bar.AddSeries(zone.Label, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: zone.Color}),
		)
	}
	return bar
}

// ZoneDistributionBar renders the minutes spent in each zone for one day as
// a horizontal bar chart, one bar per zone in its own color.
func ZoneDistributionBar(day time.Time, analysis trimp.Analysis) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Zone minutes",
			Subtitle: day.Format(time.DateOnly),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "minutes"}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "shadow",
			},
		}),
	)

	labels := make([]string, 0, len(trimp.Zones))
	data := make([]opts.BarData, 0, len(trimp.Zones))
	for _, z := range analysis.Zones {
		labels = append(labels, z.Zone.Label)
		data = append(data, opts.BarData{
			Value:     round1(z.Minutes),
			ItemStyle: &opts.ItemStyle{Color: z.Zone.Color},
		})
	}
	bar.SetXAxis(labels)
	bar.AddSeries("minutes", data)
	bar.XYReversal()
	return bar
}

func newDailyLine(title string, day time.Time) *charts.Line {
	marks := timeline.DailyTimeline(day)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: day.Format(time.DateOnly),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
			Min:  marks[0].UnixMilli(),
			Max:  marks[len(marks)-1].Add(time.Minute).UnixMilli(),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "cross",
			},
		}),
	)
	return line
}

// timePairs renders points as [epoch-ms, value] pairs for a time axis. Gap
// markers carry a null value so the drawn line breaks there.
func timePairs(points []timeline.Point) []opts.LineData {
	items := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		var v any
		if p.Value != nil {
			v = *p.Value
		}
		items = append(items, opts.LineData{Value: []any{p.At.UnixMilli(), v}})
	}
	return items
}

func lineValues(points []timeline.Point) []opts.LineData {
	items := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		if p.Value != nil {
			items = append(items, opts.LineData{Value: *p.Value})
			continue
		}
		items = append(items, opts.LineData{Value: nil})
	}
	return items
}

func elapsedLabels(start time.Time, points []timeline.Point, tickIntervalMin float64) []string {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = timeline.FormatElapsed(p.At.Sub(start), tickIntervalMin)
	}
	return labels
}

func zonePieces() []opts.Piece {
	pieces := make([]opts.Piece, 0, len(trimp.Zones))
	for _, z := range trimp.Zones {
		p := opts.Piece{Gte: float32(z.Low), Color: z.Color, Label: z.Label}
		if z.High < 999 {
			p.Lt = float32(z.High + 1)
		}
		pieces = append(pieces, p)
	}
	return pieces
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
