package vitals

import (
	"encoding/json"
	"time"

	"backend-pulsedash/internal/timeline"
	"backend-pulsedash/internal/trimp"
)

// RawDay is the unprocessed series payload for one day, exactly as the
// upstream export delivers it. Series stay raw JSON until cleaning.
type RawDay struct {
	HeartRate json.RawMessage `json:"heart_rate_values"`
	SpO2      json.RawMessage `json:"spo2_values"`
	Breathing json.RawMessage `json:"breathing_rate_values"`
}

// OxygenDebt is the minutes spent under each saturation threshold.
type OxygenDebt struct {
	Below95 float64 `json:"below_95"`
	Below90 float64 `json:"below_90"`
	Below88 float64 `json:"below_88"`
}

// SpO2Stats summarizes the minute-averaged saturation series of a day.
type SpO2Stats struct {
	Average float64    `json:"average"`
	Minimum float64    `json:"minimum"`
	Debt    OxygenDebt `json:"debt"`
}

// DayAnalysis is the cached rollup stored alongside the raw series.
type DayAnalysis struct {
	TRIMP trimp.Analysis `json:"trimp"`
	SpO2  SpO2Stats      `json:"spo2"`
}

// DayDetail is the full chart-ready document for one day.
type DayDetail struct {
	UserID    string           `json:"user_id"`
	Day       time.Time        `json:"day"`
	HeartRate []timeline.Point `json:"heart_rate"`
	SpO2      []timeline.Point `json:"spo2"`
	Breathing []timeline.Point `json:"breathing_rate"`
	Analysis  trimp.Analysis   `json:"analysis"`
	SpO2Stats SpO2Stats        `json:"spo2_stats"`
	SyncedAt  time.Time        `json:"synced_at,omitempty"`
}

// DaySummary is one cell of the two-week grid. Days never synced carry
// HasData false and zero values.
type DaySummary struct {
	Day      time.Time      `json:"day"`
	HasData  bool           `json:"has_data"`
	Analysis trimp.Analysis `json:"analysis"`
	SpO2     SpO2Stats      `json:"spo2"`
}
