// Package calendar derives the two-week navigation windows the dashboard
// moves through. All dates are civil dates pinned to midnight UTC; a period
// always runs Monday through the Sunday thirteen days later.
package calendar

import "time"

// Period is a fixed fourteen-day window. Start is always a Monday and End is
// always Start plus thirteen days.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DateOf strips the clock from t, returning midnight UTC of its civil date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MondayOf returns the Monday on or before t.
func MondayOf(t time.Time) time.Time {
	d := DateOf(t)
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	return d.AddDate(0, 0, 1-wd)
}

// PeriodContaining returns the two-week period holding date. With
// preferSecondWeek the date's week becomes the second week of the window,
// leaving the previous week visible to its left; otherwise it is the first.
func PeriodContaining(date time.Time, preferSecondWeek bool) Period {
	start := MondayOf(date)
	if preferSecondWeek {
		start = start.AddDate(0, 0, -7)
	}
	return Period{Start: start, End: start.AddDate(0, 0, 13)}
}

// Contains reports whether day falls inside the period, bounds inclusive.
func (p Period) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Valid reports whether p is a well-formed two-week window.
func (p Period) Valid() bool {
	return !p.Start.IsZero() &&
		p.Start.Weekday() == time.Monday &&
		p.End.Equal(p.Start.AddDate(0, 0, 13))
}

// Shift moves the period by whole weeks, keeping the thirteen-day span.
func (p Period) Shift(weeks int) Period {
	start := p.Start.AddDate(0, 0, weeks*7)
	return Period{Start: start, End: start.AddDate(0, 0, 13)}
}

// AdjustForDay returns the period unchanged when day already lies inside it.
// Otherwise it recomputes a period around the day: a day that walked off the
// end of the window is anchored in the second week, one that walked off the
// start in the first, so stepping feels continuous in both directions.
func AdjustForDay(day time.Time, p Period) Period {
	if p.Contains(day) {
		return p
	}
	return PeriodContaining(day, DateOf(day).After(p.End))
}

// StepDay moves the selected day by one in the given direction (+1 or -1)
// and re-anchors the period when the new day leaves it.
func StepDay(day time.Time, direction int, p Period) (time.Time, Period) {
	next := DateOf(day).AddDate(0, 0, direction)
	return next, AdjustForDay(next, p)
}
