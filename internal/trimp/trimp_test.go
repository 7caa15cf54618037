package trimp

import (
	"math"
	"testing"
	"time"

	"backend-pulsedash/internal/timeline"
)

func series(t *testing.T, step time.Duration, rates ...float64) []timeline.Sample {
	t.Helper()
	start := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	out := make([]timeline.Sample, len(rates))
	for i, hr := range rates {
		out[i] = timeline.Sample{At: start.Add(time.Duration(i) * step), Value: hr}
	}
	return out
}

func TestPerMinute(t *testing.T) {
	p := DefaultParams

	if got := p.PerMinute(79); got != 0 {
		t.Errorf("PerMinute(79) = %v, want 0 below the exercise threshold", got)
	}
	if got := p.PerMinute(48); got != 0 {
		t.Errorf("PerMinute(resting) = %v, want 0", got)
	}

	// One minute at 120 bpm: ratio = 72/119, load = ratio*0.64*e^(1.92*ratio).
	ratio := 72.0 / 119.0
	want := ratio * 0.64 * math.Exp(1.92*ratio)
	if got := p.PerMinute(120); math.Abs(got-want) > 1e-12 {
		t.Errorf("PerMinute(120) = %v, want %v", got, want)
	}

	if p.PerMinute(150) <= p.PerMinute(120) {
		t.Errorf("load must grow with heart rate")
	}
}

func TestReserveRatioClamp(t *testing.T) {
	p := DefaultParams
	if got := p.ReserveRatio(40); got != 0 {
		t.Errorf("ReserveRatio below resting = %v, want 0", got)
	}
	if got := p.ReserveRatio(167); got != 1 {
		t.Errorf("ReserveRatio at max = %v, want 1", got)
	}
	degenerate := Params{RestingHR: 60, MaxHR: 60}
	if got := degenerate.ReserveRatio(100); got != 0 {
		t.Errorf("degenerate params ratio = %v, want 0", got)
	}
}

func TestZoneFor(t *testing.T) {
	cases := []struct {
		hr    float64
		label string
		ok    bool
	}{
		{79, "", false},
		{79.9, "", false},
		{80, "80-89", true},
		{89.9, "80-89", true},
		{90, "90-99", true},
		{159, "150-159", true},
		{160, "160+", true},
		{205, "160+", true},
	}
	for _, c := range cases {
		z, ok := ZoneFor(c.hr)
		if ok != c.ok || z.Label != c.label {
			t.Errorf("ZoneFor(%v) = %q, %v; want %q, %v", c.hr, z.Label, ok, c.label, c.ok)
		}
	}
}

func TestAnalyzeBucketsAndTotals(t *testing.T) {
	samples := series(t, time.Minute, 72, 85, 92, 135, 135)

	a := Analyze(samples, DefaultParams)
	if a.TotalMinutes != 4 {
		t.Fatalf("TotalMinutes = %v, want 4 (72 bpm is below threshold)", a.TotalMinutes)
	}
	if len(a.Zones) != len(Zones) {
		t.Fatalf("zones = %d, want %d fixed bands", len(a.Zones), len(Zones))
	}

	byLabel := map[string]ZoneLoad{}
	for _, z := range a.Zones {
		byLabel[z.Zone.Label] = z
	}
	if byLabel["80-89"].Minutes != 1 || byLabel["90-99"].Minutes != 1 || byLabel["130-139"].Minutes != 2 {
		t.Errorf("zone minutes wrong: %+v", byLabel)
	}
	want := DefaultParams.PerMinute(85) + DefaultParams.PerMinute(92) + 2*DefaultParams.PerMinute(135)
	if math.Abs(a.TotalTRIMP-want) > 1e-9 {
		t.Errorf("TotalTRIMP = %v, want %v", a.TotalTRIMP, want)
	}
}

func TestAnalyzeDiscountsReadingAfterLongSilence(t *testing.T) {
	start := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	samples := []timeline.Sample{
		{At: start, Value: 120},
		{At: start.Add(1 * time.Second), Value: 125},
		{At: start.Add(401 * time.Second), Value: 130}, // 400s of silence
		{At: start.Add(402 * time.Second), Value: 135},
	}

	a := Analyze(samples, DefaultParams)
	if a.TotalMinutes != 3 {
		t.Fatalf("TotalMinutes = %v, want 3 (reading after the silence is discounted)", a.TotalMinutes)
	}

	// Exactly at the threshold the reading still counts.
	edge := []timeline.Sample{
		{At: start, Value: 120},
		{At: start.Add(300 * time.Second), Value: 125},
	}
	if a := Analyze(edge, DefaultParams); a.TotalMinutes != 2 {
		t.Fatalf("300s separation: TotalMinutes = %v, want 2", a.TotalMinutes)
	}
}

func TestAnalyzeFirstReadingAlwaysCounts(t *testing.T) {
	samples := series(t, time.Minute, 120)
	if a := Analyze(samples, DefaultParams); a.TotalMinutes != 1 {
		t.Fatalf("single reading: TotalMinutes = %v, want 1", a.TotalMinutes)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(nil, DefaultParams)
	if a.TotalTRIMP != 0 || a.TotalMinutes != 0 || a.LegacyScore != 0 {
		t.Fatalf("empty analysis has totals: %+v", a)
	}
	if a.ActivityType != Mixed {
		t.Fatalf("empty analysis type = %q, want %q", a.ActivityType, Mixed)
	}
	if len(a.Zones) != len(Zones) {
		t.Fatalf("empty analysis must still list all zones")
	}
}

func TestClassify(t *testing.T) {
	low := series(t, time.Minute, 95, 95, 95, 95, 95, 95, 95, 95, 100, 142)
	if a := Analyze(low, DefaultParams); a.ActivityType != LongLowIntensity {
		t.Errorf("steady low work classified %q", a.ActivityType)
	}

	high := series(t, time.Minute, 155, 158, 160, 162, 90)
	if a := Analyze(high, DefaultParams); a.ActivityType != ShortHighIntensity {
		t.Errorf("interval work classified %q", a.ActivityType)
	}

	mid := series(t, time.Minute, 125, 125, 125)
	if a := Analyze(mid, DefaultParams); a.ActivityType != Mixed {
		t.Errorf("mid-zone work classified %q", a.ActivityType)
	}
}

func TestLegacyScore(t *testing.T) {
	// Two minutes split evenly across weights 0.5 and 4.5 averages to 250.
	samples := series(t, time.Minute, 85, 165)
	a := Analyze(samples, DefaultParams)
	if math.Abs(a.LegacyScore-250) > 1e-9 {
		t.Fatalf("LegacyScore = %v, want 250", a.LegacyScore)
	}
}
