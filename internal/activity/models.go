package activity

import (
	"encoding/json"
	"time"

	"backend-pulsedash/internal/timeline"
	"backend-pulsedash/internal/trimp"
)

// Activity sources. Synced activities keep their upstream identifier;
// manual and CSV-backed ones get a generated one.
const (
	SourceSync   = "sync"
	SourceManual = "manual"
	SourceCSV    = "csv"
)

type Activity struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Day           time.Time       `json:"day"`
	Name          string          `json:"name"`
	Sport         string          `json:"sport"`
	StartedAt     time.Time       `json:"started_at"`
	DurationSec   int             `json:"duration_sec"`
	Note          string          `json:"note,omitempty"`
	TRIMPOverride *float64        `json:"trimp_override,omitempty"`
	Source        string          `json:"source"`
	HeartRate     json.RawMessage `json:"heart_rate_values,omitempty"`
	SpO2          json.RawMessage `json:"spo2_values,omitempty"`
	Breathing     json.RawMessage `json:"breathing_rate_values,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Detail is the chart-ready document for one activity. EffectiveTRIMP is the
// manual override when one is set, the computed total otherwise.
type Detail struct {
	Activity
	HeartRatePoints []timeline.Point `json:"heart_rate"`
	SpO2Points      []timeline.Point `json:"spo2"`
	BreathingPoints []timeline.Point `json:"breathing_rate"`
	Analysis        trimp.Analysis   `json:"analysis"`
	EffectiveTRIMP  float64          `json:"effective_trimp"`
	TickIntervalMin float64          `json:"tick_interval_min"`
}
