package collector

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"backend-pulsedash/internal/activity"
	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/profile"
	"backend-pulsedash/internal/timeline"
	"backend-pulsedash/internal/vitals"
)

// Sync pulls one day of wearable data from a Source and writes it through
// the vitals and activity services.
type Sync struct {
	src        Source
	days       *vitals.Service
	activities *activity.Service
	profiles   *profile.Service
}

func NewSync(src Source, days *vitals.Service, activities *activity.Service, profiles *profile.Service) *Sync {
	return &Sync{src: src, days: days, activities: activities, profiles: profiles}
}

// Day syncs the given date for one user. The heart rate document is the
// backbone of a day and its absence fails the sync; spo2 and respiration are
// only on some devices, so their fetch errors degrade to an empty series.
// Re-running a day overwrites what the previous run stored.
func (s *Sync) Day(ctx context.Context, userID string, date time.Time) (Report, error) {
	report := Report{Day: calendar.DateOf(date)}

	params, err := s.profiles.Params(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("load profile: %w", err)
	}

	hr, err := s.src.DailyHeartRate(ctx, date)
	if err != nil {
		return report, err
	}
	raw := vitals.RawDay{HeartRate: hr.HeartRateValues}

	if spo2, err := s.src.DailySpO2(ctx, date); err != nil {
		log.Printf("sync %s: no spo2: %v", report.Day.Format(time.DateOnly), err)
	} else {
		raw.SpO2 = spo2.HourlyAverages
	}
	if breathing, err := s.src.DailyRespiration(ctx, date); err != nil {
		log.Printf("sync %s: no respiration: %v", report.Day.Format(time.DateOnly), err)
	} else {
		raw.Breathing = breathing.Values
	}

	detail, err := s.days.SaveDay(ctx, userID, date, raw, params)
	if err != nil {
		return report, fmt.Errorf("store day: %w", err)
	}
	report.HeartRate = countValues(detail.HeartRate)
	report.SpO2 = countValues(detail.SpO2)
	report.Breathing = countValues(detail.Breathing)
	report.TotalTRIMP = detail.Analysis.TotalTRIMP
	report.Score = detail.Analysis.LegacyScore
	report.Type = detail.Analysis.ActivityType

	upstream, err := s.src.ActivitiesForDate(ctx, date)
	if err != nil {
		return report, err
	}
	for _, ua := range upstream {
		act, err := s.buildActivity(ctx, userID, ua)
		if err != nil {
			log.Printf("sync %s: skip activity %d: %v", report.Day.Format(time.DateOnly), ua.ActivityID, err)
			continue
		}
		if _, err := s.activities.Create(ctx, act); err != nil {
			return report, fmt.Errorf("store activity %d: %w", ua.ActivityID, err)
		}
		report.Activities++
	}
	return report, nil
}

func (s *Sync) buildActivity(ctx context.Context, userID string, ua UpstreamActivity) (activity.Activity, error) {
	started, ok := timeline.ParseTime(ua.StartTimeGMT)
	if !ok {
		return activity.Activity{}, fmt.Errorf("unreadable start time %q", ua.StartTimeGMT)
	}

	details, err := s.src.ActivityDetails(ctx, strconv.FormatInt(ua.ActivityID, 10))
	if err != nil {
		return activity.Activity{}, err
	}

	act := activity.Activity{
		ID:          strconv.FormatInt(ua.ActivityID, 10),
		UserID:      userID,
		Name:        ua.ActivityName,
		Sport:       ua.ActivityType.TypeKey,
		StartedAt:   started,
		DurationSec: int(ua.Duration),
		Source:      activity.SourceSync,
	}
	if act.Name == "" {
		act.Name = ua.ActivityType.TypeKey
	}
	if hr := timeline.CleanSamples(details.Series(metricHeartRate), timeline.HeartRate); len(hr) > 0 {
		act.HeartRate = timeline.EncodePairs(hr)
	}
	if br := timeline.CleanSamples(details.Series(metricRespiration), timeline.BreathingRate); len(br) > 0 {
		act.Breathing = timeline.EncodePairs(br)
	}
	return act, nil
}

// countValues counts real measurements, not gap markers.
func countValues(points []timeline.Point) int {
	n := 0
	for _, p := range points {
		if p.Value != nil {
			n++
		}
	}
	return n
}
