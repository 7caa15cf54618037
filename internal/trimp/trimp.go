// Package trimp computes Training Impulse, a per-minute exponential training
// load accumulated over heart rate samples and bucketed into 10 bpm zones.
package trimp

import (
	"math"
	"time"

	"backend-pulsedash/internal/timeline"
)

// Params are the personal heart rate bounds the load model is scaled by.
type Params struct {
	RestingHR int `json:"resting_hr"`
	MaxHR     int `json:"max_hr"`
}

// DefaultParams apply until a profile sets its own bounds.
var DefaultParams = Params{RestingHR: 48, MaxHR: 167}

const (
	// exerciseThreshold is the rate below which no load accrues.
	exerciseThreshold = 80

	// gapThreshold is the silence between readings beyond which the next
	// reading is treated as a watch-off artifact and contributes nothing.
	gapThreshold = 300 * time.Second
)

// Activity classifications derived from the zone split of a sample set.
const (
	LongLowIntensity   = "long_low_intensity"
	ShortHighIntensity = "short_high_intensity"
	Mixed              = "mixed"
)

// Zone is one presentation band of heart rates.
type Zone struct {
	Label  string  `json:"label"`
	Low    int     `json:"low"`
	High   int     `json:"high"`
	Color  string  `json:"color"`
	Weight float64 `json:"-"`
}

// Zones are the fixed bands every analysis reports, coldest to hottest.
var Zones = []Zone{
	{Label: "80-89", Low: 80, High: 89, Color: "#002040", Weight: 0.5},
	{Label: "90-99", Low: 90, High: 99, Color: "#1f77b4", Weight: 1.0},
	{Label: "100-109", Low: 100, High: 109, Color: "#7fb3d3", Weight: 1.5},
	{Label: "110-119", Low: 110, High: 119, Color: "#17becf", Weight: 2.0},
	{Label: "120-129", Low: 120, High: 129, Color: "#2ca02c", Weight: 2.5},
	{Label: "130-139", Low: 130, High: 139, Color: "#ff7f0e", Weight: 3.0},
	{Label: "140-149", Low: 140, High: 149, Color: "#ff6b35", Weight: 3.5},
	{Label: "150-159", Low: 150, High: 159, Color: "#d62728", Weight: 4.0},
	{Label: "160+", Low: 160, High: 999, Color: "#8b0000", Weight: 4.5},
}

// ZoneFor returns the band holding hr. Fractional rates bucket by their
// integer part. The second return is false below the exercise threshold.
func ZoneFor(hr float64) (Zone, bool) {
	v := int(hr)
	for _, z := range Zones {
		if v >= z.Low && v <= z.High {
			return z, true
		}
	}
	return Zone{}, false
}

// ReserveRatio is the fraction of the heart rate reserve hr sits at, clamped
// to zero at or below resting.
func (p Params) ReserveRatio(hr float64) float64 {
	reserve := float64(p.MaxHR - p.RestingHR)
	if hr <= float64(p.RestingHR) || reserve <= 0 {
		return 0
	}
	return (hr - float64(p.RestingHR)) / reserve
}

// PerMinute is the load earned by one minute spent at hr, using the
// exponential Banister model. Rates below the exercise threshold earn zero.
func (p Params) PerMinute(hr float64) float64 {
	if hr < exerciseThreshold {
		return 0
	}
	ratio := p.ReserveRatio(hr)
	return ratio * 0.64 * math.Exp(1.92*ratio)
}

// ZoneLoad is the time and load accumulated in one zone.
type ZoneLoad struct {
	Zone    Zone    `json:"zone"`
	Minutes float64 `json:"minutes"`
	TRIMP   float64 `json:"trimp"`
}

// Analysis is the full load breakdown of a sample set.
type Analysis struct {
	Zones        []ZoneLoad `json:"zones"`
	TotalMinutes float64    `json:"total_minutes"`
	TotalTRIMP   float64    `json:"total_trimp"`
	ActivityType string     `json:"activity_type"`
	LegacyScore  float64    `json:"legacy_score"`
}

// Analyze accumulates load over cleaned, time-ordered heart rate samples.
// Each reading stands for one minute at its rate, except readings that follow
// a silence longer than gapThreshold, which are discounted entirely; the
// first reading is never discounted. Zones always appear in fixed order even
// when empty.
func Analyze(samples []timeline.Sample, p Params) Analysis {
	loads := make([]ZoneLoad, len(Zones))
	for i, z := range Zones {
		loads[i] = ZoneLoad{Zone: z}
	}

	a := Analysis{Zones: loads}
	for i, s := range samples {
		if i > 0 && s.At.Sub(samples[i-1].At) > gapThreshold {
			continue
		}
		zone, ok := ZoneFor(s.Value)
		if !ok {
			continue
		}
		load := p.PerMinute(s.Value)
		for j := range a.Zones {
			if a.Zones[j].Zone.Label == zone.Label {
				a.Zones[j].Minutes++
				a.Zones[j].TRIMP += load
				break
			}
		}
		a.TotalMinutes++
		a.TotalTRIMP += load
	}

	a.ActivityType = classify(a.Zones)
	a.LegacyScore = legacyScore(a.Zones, a.TotalMinutes)
	return a
}

// classify splits the load into the four coldest and four hottest zones and
// names whichever side dominates the other by more than a factor of two.
func classify(zones []ZoneLoad) string {
	var low, high float64
	for _, z := range zones {
		switch {
		case z.Zone.High <= 119:
			low += z.TRIMP
		case z.Zone.Low >= 130:
			high += z.TRIMP
		}
	}
	switch {
	case low > high*2:
		return LongLowIntensity
	case high > low*2:
		return ShortHighIntensity
	default:
		return Mixed
	}
}

// legacyScore is the zone-weighted minute share kept for older clients.
func legacyScore(zones []ZoneLoad, totalMinutes float64) float64 {
	if totalMinutes == 0 {
		return 0
	}
	var score float64
	for _, z := range zones {
		score += z.Minutes / totalMinutes * z.Zone.Weight * 100
	}
	return score
}
