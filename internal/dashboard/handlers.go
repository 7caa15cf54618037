package dashboard

import (
	"context"
	"time"

	"backend-pulsedash/internal/activity"
	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/vitals"

	"github.com/gofiber/fiber/v2"
)

const basePath = "/dashboard"

// RegisterRoutes wires the catch-all navigation route. A non-canonical path
// (wrong period for its day, malformed segments, stale bookmark) redirects
// to its canonical form, so every reachable URL is also a shareable one.
func RegisterRoutes(r fiber.Router, days *vitals.Service, activities *activity.Service, authMiddleware fiber.Handler) {
	r.Get("/*", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		path := "/" + c.Params("*")
		today := time.Now().UTC()

		canonical := calendar.CanonicalPath(path, today)
		if canonical != path {
			return c.Redirect(basePath+canonical, fiber.StatusFound)
		}

		state := calendar.Resolve(path, today)
		doc, err := buildState(c.Context(), days, activities, userID, state, today)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(doc)
	})
}

func buildState(ctx context.Context, days *vitals.Service, activities *activity.Service,
	userID string, state calendar.NavState, today time.Time) (State, error) {

	doc := State{
		NavState: state,
		Title:    stateTitle(state),
		Path:     basePath + state.Path(),
		PrevURL:  basePath + calendar.NavState{Period: state.Period.Shift(-1)}.Path(),
		NextURL:  basePath + calendar.NavState{Period: state.Period.Shift(1)}.Path(),
		TodayURL: basePath + calendar.NavState{Period: calendar.PeriodContaining(today, true)}.Path(),
	}

	if state.Day != nil {
		prevDay, prevPeriod := calendar.StepDay(*state.Day, -1, state.Period)
		nextDay, nextPeriod := calendar.StepDay(*state.Day, 1, state.Period)
		doc.PrevDayURL = basePath + calendar.NavState{Period: prevPeriod, Day: &prevDay}.Path()
		doc.NextDayURL = basePath + calendar.NavState{Period: nextPeriod, Day: &nextDay}.Path()
	}

	summaries, err := days.PeriodSummaries(ctx, userID, state.Period)
	if err != nil {
		return State{}, err
	}
	doc.Days = make([]DayCell, len(summaries))
	for i, s := range summaries {
		day := s.Day
		doc.Days[i] = DayCell{
			DaySummary: s,
			Selected:   state.Day != nil && state.Day.Equal(s.Day),
			URL:        basePath + calendar.NavState{Period: state.Period, Day: &day}.Path(),
		}
	}

	if state.Day != nil {
		acts, err := activities.List(ctx, userID, *state.Day, *state.Day)
		if err != nil {
			return State{}, err
		}
		doc.Activities = acts
	}
	return doc, nil
}

func stateTitle(state calendar.NavState) string {
	if state.Day != nil {
		return state.Day.Format("Monday, 2 Jan 2006")
	}
	return state.Period.Start.Format("2 Jan") + " to " + state.Period.End.Format("2 Jan 2006")
}
