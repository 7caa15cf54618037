package dashboard

import (
	"backend-pulsedash/internal/activity"
	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/vitals"
)

// DayCell is one cell of the two-week grid: the day's summary plus the URL
// that selects it.
type DayCell struct {
	vitals.DaySummary
	Selected bool   `json:"selected"`
	URL      string `json:"url"`
}

// State is the resolved navigation document for one dashboard URL. Clients
// render it directly; every move is just a link to another State.
type State struct {
	calendar.NavState
	Title      string              `json:"title"`
	Path       string              `json:"path"`
	PrevURL    string              `json:"prev_url"`
	NextURL    string              `json:"next_url"`
	TodayURL   string              `json:"today_url"`
	PrevDayURL string              `json:"prev_day_url,omitempty"`
	NextDayURL string              `json:"next_day_url,omitempty"`
	Days       []DayCell           `json:"days"`
	Activities []activity.Activity `json:"activities,omitempty"`
}
