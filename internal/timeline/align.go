package timeline

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	minutesPerDay = 24 * 60

	// DefaultGapThreshold is the separation between consecutive samples
	// beyond which the series is considered interrupted.
	DefaultGapThreshold = 5 * time.Minute
)

// CleanSeries decodes a raw upstream series and normalizes it. Both feed
// shapes are accepted, entries that fail to decode or fall outside the domain
// are dropped, and the result is sorted by timestamp with duplicates removed.
// Malformed JSON yields an empty series, never an error.
func CleanSeries(raw json.RawMessage, domain Domain) []Sample {
	var entries []rawSample
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	samples := make([]Sample, 0, len(entries))
	for _, e := range entries {
		if e.at == nil || e.value == nil {
			continue
		}
		samples = append(samples, Sample{At: *e.at, Value: *e.value})
	}
	return CleanSamples(samples, domain)
}

// CleanSamples filters already-decoded samples against the domain, sorts them
// by timestamp, and keeps the first sample of any duplicated timestamp. It is
// idempotent: cleaning a clean series returns it unchanged.
func CleanSamples(samples []Sample, domain Domain) []Sample {
	kept := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.At.IsZero() || !domain.Contains(s.Value) {
			continue
		}
		kept = append(kept, s)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].At.Before(kept[j].At) })

	out := kept[:0]
	for i, s := range kept {
		if i > 0 && s.At.Equal(out[len(out)-1].At) {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AveragePerMinute buckets samples into the 1440 minutes of the day starting
// at dayStart and averages each bucket. Resulting samples are stamped at the
// bucket midpoint (bucket start + 30s) so they plot centered on their minute.
// Samples outside the day are ignored. Empty buckets produce no sample.
func AveragePerMinute(samples []Sample, dayStart time.Time) []Sample {
	var (
		sums   [minutesPerDay]float64
		counts [minutesPerDay]int
	)
	for _, s := range samples {
		// Duration division truncates toward zero, so samples shortly
		// before dayStart would otherwise land in bucket 0.
		if s.At.Before(dayStart) {
			continue
		}
		idx := int(s.At.Sub(dayStart) / time.Minute)
		if idx >= minutesPerDay {
			continue
		}
		sums[idx] += s.Value
		counts[idx]++
	}

	var out []Sample
	for idx, n := range counts {
		if n == 0 {
			continue
		}
		out = append(out, Sample{
			At:    dayStart.Add(time.Duration(idx)*time.Minute + 30*time.Second),
			Value: sums[idx] / float64(n),
		})
	}
	return out
}

// SegmentGaps converts samples to plottable points, inserting a pair of gap
// markers wherever consecutive samples are separated by more than threshold.
// The markers sit one minute after the earlier sample and one minute before
// the later one, so the chart shows a hole spanning the silent interval
// instead of a line bridging it. When the two markers would touch or invert
// (gaps of two minutes or less) none are inserted. A threshold <= 0 selects
// DefaultGapThreshold. Input is assumed sorted, as CleanSamples leaves it.
func SegmentGaps(samples []Sample, threshold time.Duration) []Point {
	if threshold <= 0 {
		threshold = DefaultGapThreshold
	}

	out := make([]Point, 0, len(samples))
	for i, s := range samples {
		v := s.Value
		out = append(out, Point{At: s.At, Value: &v})

		if i+1 >= len(samples) {
			break
		}
		next := samples[i+1]
		if next.At.Sub(s.At) <= threshold {
			continue
		}
		first := s.At.Add(time.Minute)
		second := next.At.Add(-time.Minute)
		if !second.After(first) {
			continue
		}
		out = append(out, Point{At: first}, Point{At: second})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
