package timeline

import (
	"fmt"
	"math"
	"time"
)

// maxAxisTicks is the most labels a time axis can carry before they collide.
const maxAxisTicks = 23

// tickCandidates are the supported axis intervals in minutes, finest first.
var tickCandidates = []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600}

// DailyTimeline returns the 1440 minute marks of the civil day containing t,
// from 00:00 through 23:59, in t's location.
func DailyTimeline(t time.Time) []time.Time {
	start := DayStart(t)
	out := make([]time.Time, minutesPerDay)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Minute)
	}
	return out
}

// DayStart returns midnight of the civil day containing t, in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TickInterval picks the finest axis interval, in minutes, that keeps an
// activity of the given duration under the label budget. Durations too long
// for every candidate fall back to the coarsest one.
func TickInterval(durationMinutes float64) float64 {
	for _, interval := range tickCandidates {
		if math.Ceil(durationMinutes/interval)+1 <= maxAxisTicks {
			return interval
		}
	}
	return tickCandidates[len(tickCandidates)-1]
}

// FormatElapsed renders an offset from activity start as an axis label:
// minutes and seconds while the tick interval is sub-minute or one minute,
// hours and minutes beyond that.
func FormatElapsed(offset time.Duration, intervalMinutes float64) string {
	total := int(offset.Seconds())
	if total < 0 {
		total = 0
	}
	if intervalMinutes <= 1 {
		return fmt.Sprintf("%d:%02d", total/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/3600, total/60%60)
}
