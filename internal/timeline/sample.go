// Package timeline turns the sparse, noisy sample series coming out of
// wearable exports into dense, gap-segmented series that can be handed to a
// chart surface without rendering artifacts. Everything in here is pure
// computation over values; malformed input is dropped, never reported.
package timeline

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Sample is one measurement on a series.
type Sample struct {
	At    time.Time `json:"timestamp"`
	Value float64   `json:"value"`
}

// Point is a plottable point. A nil Value is a gap marker: the chart surface
// must not connect it to its neighbors.
type Point struct {
	At    time.Time `json:"timestamp"`
	Value *float64  `json:"value"`
}

// Domain bounds the plausible values of one vital sign. Samples outside the
// domain are dropped during cleaning.
type Domain struct {
	Name         string
	Min          float64
	Max          float64
	MinExclusive bool
}

var (
	HeartRate     = Domain{Name: "heart_rate", Min: 0, Max: math.Inf(1), MinExclusive: true}
	SpO2          = Domain{Name: "spo2", Min: 0, Max: 100}
	BreathingRate = Domain{Name: "breathing_rate", Min: 0, Max: math.Inf(1), MinExclusive: true}
)

// Contains reports whether v is a plausible value for the domain.
func (d Domain) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if d.MinExclusive {
		if v <= d.Min {
			return false
		}
	} else if v < d.Min {
		return false
	}
	return v <= d.Max
}

// rawSample decodes one entry of an upstream series. The feed mixes two
// shapes for the same data: pair form [timestamp, value, ...] and object
// form {"timestamp": ..., "value": ...}. Anything unreadable leaves both
// fields nil and is dropped by CleanSeries.
type rawSample struct {
	at    *time.Time
	value *float64
}

func (r *rawSample) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) >= 2 {
			r.at = parseStamp(pair[0])
			r.value = parseNumber(pair[1])
		}
		return nil
	}

	var obj struct {
		Timestamp json.RawMessage `json:"timestamp"`
		Value     json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		r.at = parseStamp(obj.Timestamp)
		r.value = parseNumber(obj.Value)
	}
	return nil
}

// parseStamp reads a timestamp that is either an epoch-milliseconds number
// (the Connect export format) or an ISO date-time string.
func parseStamp(data json.RawMessage) *time.Time {
	if len(data) == 0 {
		return nil
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err == nil {
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			return nil
		}
		at := time.UnixMilli(int64(ms)).UTC()
		return &at
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if at, ok := ParseTime(s); ok {
		return &at
	}
	return nil
}

// ParseTime reads an ISO date-time string in the layouts the feeds use,
// treating zoneless stamps as UTC.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if at, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return at.UTC(), true
		}
	}
	return time.Time{}, false
}

// EncodePairs renders samples back into the upstream pair shape with
// epoch-millisecond timestamps. CleanSeries reads the result unchanged.
func EncodePairs(samples []Sample) json.RawMessage {
	pairs := make([][2]float64, len(samples))
	for i, s := range samples {
		pairs[i] = [2]float64{float64(s.At.UnixMilli()), s.Value}
	}
	raw, _ := json.Marshal(pairs)
	return raw
}

func parseNumber(data json.RawMessage) *float64 {
	if len(data) == 0 {
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	}

	// Occasionally the feed quotes numbers ("72").
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
