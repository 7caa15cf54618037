package vitals

import (
	"context"
	"encoding/json"
	"time"

	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/db"
	"backend-pulsedash/internal/timeline"
	"backend-pulsedash/internal/trimp"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// SaveDay stores the raw series for one day and caches their analysis. The
// detail returned is what a subsequent Day read would produce.
func (s *Service) SaveDay(ctx context.Context, userID string, day time.Time, raw RawDay, params trimp.Params) (DayDetail, error) {
	detail := buildDetail(userID, day, raw, params, time.Now().UTC())

	analysis, err := json.Marshal(DayAnalysis{TRIMP: detail.Analysis, SpO2: detail.SpO2Stats})
	if err != nil {
		return DayDetail{}, err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO daily_data (user_id, day, hr_series, spo2_series, br_series, analysis, synced_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id, day) DO UPDATE
		SET hr_series=EXCLUDED.hr_series,
		    spo2_series=EXCLUDED.spo2_series,
		    br_series=EXCLUDED.br_series,
		    analysis=EXCLUDED.analysis,
		    synced_at=EXCLUDED.synced_at
	`, userID, detail.Day, nullableJSON(raw.HeartRate), nullableJSON(raw.SpO2), nullableJSON(raw.Breathing), analysis, detail.SyncedAt)
	if err != nil {
		return DayDetail{}, err
	}
	return detail, nil
}

// Day rebuilds the chart-ready document from the stored raw series, so a
// changed heart rate profile is reflected without a resync.
func (s *Service) Day(ctx context.Context, userID string, day time.Time, params trimp.Params) (DayDetail, error) {
	var (
		raw      RawDay
		syncedAt time.Time
	)
	row := s.db.QueryRow(ctx, `
		SELECT hr_series, spo2_series, br_series, synced_at
		FROM daily_data WHERE user_id=$1 AND day=$2
	`, userID, calendar.DateOf(day))
	if err := row.Scan(&raw.HeartRate, &raw.SpO2, &raw.Breathing, &syncedAt); err != nil {
		return DayDetail{}, err
	}
	return buildDetail(userID, day, raw, params, syncedAt), nil
}

// PeriodSummaries returns one summary per day of the period, in order,
// zero-filled for days that were never synced. Summaries come from the
// cached analysis column, not from re-reading the raw series.
func (s *Service) PeriodSummaries(ctx context.Context, userID string, p calendar.Period) ([]DaySummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT day, analysis
		FROM daily_data
		WHERE user_id=$1 AND day BETWEEN $2 AND $3
		ORDER BY day
	`, userID, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := map[string]DayAnalysis{}
	for rows.Next() {
		var (
			day  time.Time
			blob []byte
		)
		if err := rows.Scan(&day, &blob); err != nil {
			return nil, err
		}
		var analysis DayAnalysis
		if err := json.Unmarshal(blob, &analysis); err != nil {
			continue
		}
		stored[calendar.DateOf(day).Format(time.DateOnly)] = analysis
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var summaries []DaySummary
	for day := p.Start; !day.After(p.End); day = day.AddDate(0, 0, 1) {
		summary := DaySummary{Day: day}
		if analysis, ok := stored[day.Format(time.DateOnly)]; ok {
			summary.HasData = true
			summary.Analysis = analysis.TRIMP
			summary.SpO2 = analysis.SpO2
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func buildDetail(userID string, day time.Time, raw RawDay, params trimp.Params, syncedAt time.Time) DayDetail {
	dayStart := calendar.DateOf(day)

	hr := timeline.CleanSeries(raw.HeartRate, timeline.HeartRate)
	spo2 := timeline.AveragePerMinute(timeline.CleanSeries(raw.SpO2, timeline.SpO2), dayStart)
	br := timeline.CleanSeries(raw.Breathing, timeline.BreathingRate)

	return DayDetail{
		UserID:    userID,
		Day:       dayStart,
		HeartRate: timeline.SegmentGaps(hr, 0),
		SpO2:      timeline.SegmentGaps(spo2, 0),
		Breathing: timeline.SegmentGaps(br, 0),
		Analysis:  trimp.Analyze(hr, params),
		SpO2Stats: spo2Stats(spo2),
		SyncedAt:  syncedAt,
	}
}

// spo2Stats rolls up a minute-averaged saturation series. Each sample stands
// for one minute when accumulating time under the debt thresholds.
func spo2Stats(perMinute []timeline.Sample) SpO2Stats {
	if len(perMinute) == 0 {
		return SpO2Stats{}
	}

	stats := SpO2Stats{Minimum: perMinute[0].Value}
	var sum float64
	for _, s := range perMinute {
		sum += s.Value
		if s.Value < stats.Minimum {
			stats.Minimum = s.Value
		}
		if s.Value < 95 {
			stats.Debt.Below95++
		}
		if s.Value < 90 {
			stats.Debt.Below90++
		}
		if s.Value < 88 {
			stats.Debt.Below88++
		}
	}
	stats.Average = sum / float64(len(perMinute))
	return stats
}

// nullableJSON keeps absent series as SQL NULL instead of empty strings.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
