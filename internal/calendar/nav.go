package calendar

import (
	"fmt"
	"strings"
	"time"
)

// NavState is the navigation position the dashboard renders: the visible
// period, optionally a selected day inside it, and optionally an activity
// selected on that day.
type NavState struct {
	Period     Period     `json:"period"`
	Day        *time.Time `json:"day,omitempty"`
	ActivityID string     `json:"activity_id,omitempty"`
}

// Path renders the state as its canonical URL path,
// /{start}-{end}[/{day}][/{activity}].
func (s NavState) Path() string {
	path := fmt.Sprintf("/%s-%s", s.Period.Start.Format(time.DateOnly), s.Period.End.Format(time.DateOnly))
	if s.Day == nil {
		return path
	}
	path += "/" + s.Day.Format(time.DateOnly)
	if s.ActivityID != "" {
		path += "/" + s.ActivityID
	}
	return path
}

// ParsePath reads a dashboard path without correcting it. The second return
// is false when no period could be read at all. A day segment that fails to
// parse is dropped along with everything after it.
func ParsePath(path string) (NavState, bool) {
	var state NavState

	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return state, false
	}

	period, ok := ParsePeriod(segs[0])
	if !ok {
		return state, false
	}
	state.Period = period

	if len(segs) < 2 {
		return state, true
	}
	day, err := time.ParseInLocation(time.DateOnly, segs[1], time.UTC)
	if err != nil {
		return state, true
	}
	state.Day = &day

	if len(segs) >= 3 && segs[2] != "" {
		state.ActivityID = segs[2]
	}
	return state, true
}

// ParsePeriod splits a "2024-03-04-2024-03-17" segment on its fixed layout.
// It validates the dates, not the period shape; see Period.Valid.
func ParsePeriod(seg string) (Period, bool) {
	const dateLen = len(time.DateOnly)
	if len(seg) != 2*dateLen+1 || seg[dateLen] != '-' {
		return Period{}, false
	}
	start, err := time.ParseInLocation(time.DateOnly, seg[:dateLen], time.UTC)
	if err != nil {
		return Period{}, false
	}
	end, err := time.ParseInLocation(time.DateOnly, seg[dateLen+1:], time.UTC)
	if err != nil {
		return Period{}, false
	}
	return Period{Start: start, End: end}, true
}

// Resolve turns an arbitrary path into a well-formed NavState. An unreadable
// or invalid period is replaced by the default window around today; a day
// outside the window re-anchors it. Any input yields a usable state, so the
// dashboard survives hand-edited and stale bookmarked URLs.
func Resolve(path string, today time.Time) NavState {
	state, ok := ParsePath(path)
	if !ok || !state.Period.Valid() {
		state.Period = PeriodContaining(today, true)
	}
	if state.Day != nil {
		day := DateOf(*state.Day)
		state.Day = &day
		state.Period = AdjustForDay(day, state.Period)
	} else {
		state.ActivityID = ""
	}
	return state
}

// CanonicalPath resolves path and renders it back out. It is idempotent:
// canonicalizing a canonical path returns it unchanged.
func CanonicalPath(path string, today time.Time) string {
	return Resolve(path, today).Path()
}
