package collector

import (
	"encoding/json"
	"time"

	"backend-pulsedash/internal/timeline"
)

// Metric keys used by the activity details document.
const (
	metricTimestamp   = "directTimestamp"
	metricHeartRate   = "directHeartRate"
	metricRespiration = "directRespirationRate"
)

// DailyHeartRate is the wellness feed's heart rate document. The sample
// array stays raw JSON; cleaning happens in timeline at ingestion.
type DailyHeartRate struct {
	RestingHeartRate int             `json:"restingHeartRate"`
	HeartRateValues  json.RawMessage `json:"heartRateValues"`
}

// DailySpO2 is the daily pulse-ox document.
type DailySpO2 struct {
	AverageSpO2    float64         `json:"averageSpO2"`
	HourlyAverages json.RawMessage `json:"spO2HourlyAverages"`
}

// DailyRespiration is the daily breathing rate document.
type DailyRespiration struct {
	Values json.RawMessage `json:"respirationValuesArray"`
}

// UpstreamActivity is one entry of the activities-for-date listing.
type UpstreamActivity struct {
	ActivityID   int64   `json:"activityId"`
	ActivityName string  `json:"activityName"`
	StartTimeGMT string  `json:"startTimeGMT"`
	Duration     float64 `json:"duration"`
	ActivityType struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`
}

type activitiesForDate struct {
	ActivitiesForDay struct {
		Payload []UpstreamActivity `json:"payload"`
	} `json:"ActivitiesForDay"`
}

// ActivityDetails is the per-activity metrics document: rows of parallel
// metric values described by an index table.
type ActivityDetails struct {
	MetricDescriptors     []MetricDescriptor `json:"metricDescriptors"`
	ActivityDetailMetrics []MetricRow        `json:"activityDetailMetrics"`
}

type MetricDescriptor struct {
	MetricsIndex int    `json:"metricsIndex"`
	Key          string `json:"key"`
}

type MetricRow struct {
	Metrics []*float64 `json:"metrics"`
}

func (d ActivityDetails) metricIndex(key string) (int, bool) {
	for _, md := range d.MetricDescriptors {
		if md.Key == key {
			return md.MetricsIndex, true
		}
	}
	return 0, false
}

// Series extracts one metric as timestamped samples. Rows missing either the
// timestamp or the value are dropped.
func (d ActivityDetails) Series(key string) []timeline.Sample {
	tsIdx, ok := d.metricIndex(metricTimestamp)
	if !ok {
		return nil
	}
	valIdx, ok := d.metricIndex(key)
	if !ok {
		return nil
	}

	var samples []timeline.Sample
	for _, row := range d.ActivityDetailMetrics {
		m := row.Metrics
		if tsIdx >= len(m) || valIdx >= len(m) || m[tsIdx] == nil || m[valIdx] == nil {
			continue
		}
		samples = append(samples, timeline.Sample{
			At:    time.UnixMilli(int64(*m[tsIdx])).UTC(),
			Value: *m[valIdx],
		})
	}
	return samples
}

// Report is what one day of syncing produced, stored as the job result.
type Report struct {
	Day        time.Time `json:"day"`
	HeartRate  int       `json:"heart_rate_samples"`
	SpO2       int       `json:"spo2_samples"`
	Breathing  int       `json:"breathing_samples"`
	Activities int       `json:"activities"`
	TotalTRIMP float64   `json:"total_trimp"`
	Score      float64   `json:"daily_score"`
	Type       string    `json:"activity_type"`
}
