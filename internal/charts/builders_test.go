package charts

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/timeline"
	"backend-pulsedash/internal/trimp"
	"backend-pulsedash/internal/vitals"

	"github.com/go-echarts/go-echarts/v2/opts"
)

func pt(t *testing.T, hour, min int, v float64) timeline.Point {
	t.Helper()
	return timeline.Point{At: time.Date(2024, 3, 10, hour, min, 0, 0, time.UTC), Value: &v}
}

func gap(hour, min int) timeline.Point {
	return timeline.Point{At: time.Date(2024, 3, 10, hour, min, 0, 0, time.UTC)}
}

func TestDailyHeartRateLine(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	points := []timeline.Point{pt(t, 8, 0, 72), gap(8, 1), gap(8, 19), pt(t, 8, 20, 75)}

	line := DailyHeartRateLine(day, points)

	if len(line.MultiSeries) != 1 {
		t.Fatalf("series = %d", len(line.MultiSeries))
	}
	data, ok := line.MultiSeries[0].Data.([]opts.LineData)
	if !ok || len(data) != 4 {
		t.Fatalf("data = %#v", line.MultiSeries[0].Data)
	}
	pair := data[1].Value.([]any)
	if pair[1] != nil {
		t.Fatalf("gap marker should carry a null value, got %v", pair[1])
	}
	if line.XAxisList[0].Type != "time" {
		t.Fatalf("x axis type = %q", line.XAxisList[0].Type)
	}
	if got := line.XAxisList[0].Min; got != day.UnixMilli() {
		t.Fatalf("x axis min = %v", got)
	}
	if len(line.VisualMapList) != 1 || len(line.VisualMapList[0].Pieces) != len(trimp.Zones) {
		t.Fatalf("visual map = %+v", line.VisualMapList)
	}
}

func TestZonePieces(t *testing.T) {
	pieces := zonePieces()
	if pieces[0].Gte != 80 || pieces[0].Lt != 90 || pieces[0].Color != "#002040" {
		t.Fatalf("first piece = %+v", pieces[0])
	}
	last := pieces[len(pieces)-1]
	if last.Gte != 160 || last.Lt != 0 || last.Color != "#8b0000" {
		t.Fatalf("open-ended piece = %+v", last)
	}
}

func TestPeriodTRIMPBarStacksZones(t *testing.T) {
	p := calendar.PeriodContaining(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), true)
	summaries := make([]vitals.DaySummary, 14)
	for i := range summaries {
		summaries[i] = vitals.DaySummary{Day: p.Start.AddDate(0, 0, i)}
	}
	summaries[3].HasData = true
	summaries[3].Analysis = trimp.Analyze(series(8, 0, 125, 125, 135), trimp.DefaultParams)

	bar := PeriodTRIMPBar(p, summaries)

	if len(bar.MultiSeries) != len(trimp.Zones) {
		t.Fatalf("series = %d, want one per zone", len(bar.MultiSeries))
	}
	for _, s := range bar.MultiSeries {
		if s.Stack != "total" {
			t.Fatalf("series %q not stacked", s.Name)
		}
		data := s.Data.([]opts.BarData)
		if len(data) != 14 {
			t.Fatalf("series %q has %d bars", s.Name, len(data))
		}
	}
	loaded := bar.MultiSeries[4].Data.([]opts.BarData)
	if loaded[3].Value.(float64) <= 0 {
		t.Fatalf("day with samples has no 120-129 load: %v", loaded[3].Value)
	}
	if loaded[0].Value.(float64) != 0 {
		t.Fatalf("empty day should chart zero, got %v", loaded[0].Value)
	}
}

func TestZoneDistributionBarColorsPerZone(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	analysis := trimp.Analyze(series(8, 0, 85, 85, 152), trimp.DefaultParams)

	bar := ZoneDistributionBar(day, analysis)

	data := bar.MultiSeries[0].Data.([]opts.BarData)
	if len(data) != len(trimp.Zones) {
		t.Fatalf("bars = %d", len(data))
	}
	if data[0].ItemStyle.Color != "#002040" || data[8].ItemStyle.Color != "#8b0000" {
		t.Fatalf("bar colors = %q %q", data[0].ItemStyle.Color, data[8].ItemStyle.Color)
	}
	if data[0].Value.(float64) != 2 {
		t.Fatalf("80-89 minutes = %v", data[0].Value)
	}
}

func TestElapsedLabels(t *testing.T) {
	start := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	points := []timeline.Point{pt(t, 8, 0, 120), pt(t, 8, 5, 140), pt(t, 9, 5, 130)}

	labels := elapsedLabels(start, points, 5)
	if labels[0] != "0:00" || labels[1] != "0:05" || labels[2] != "1:05" {
		t.Fatalf("hour labels = %v", labels)
	}

	labels = elapsedLabels(start, points[:2], 1)
	if labels[1] != "5:00" {
		t.Fatalf("minute labels = %v", labels)
	}
}

func TestActivityHeartRateLineRenders(t *testing.T) {
	start := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	points := []timeline.Point{pt(t, 8, 0, 120), pt(t, 8, 5, 140)}

	line := ActivityHeartRateLine("Morning Run", start, points, 5)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Morning Run") {
		t.Fatalf("rendered chart missing the activity name")
	}
}

func TestDailySpO2LineRendersThresholds(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	line := DailySpO2Line(day, []timeline.Point{pt(t, 8, 0, 96), pt(t, 8, 1, 93)})

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"SpO2", "88"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered chart missing %q", want)
		}
	}
}

// series builds one sample per minute at the given heart rates.
func series(hour, min int, values ...float64) []timeline.Sample {
	samples := make([]timeline.Sample, len(values))
	base := time.Date(2024, 3, 10, hour, min, 0, 0, time.UTC)
	for i, v := range values {
		samples[i] = timeline.Sample{At: base.Add(time.Duration(i) * time.Minute), Value: v}
	}
	return samples
}
