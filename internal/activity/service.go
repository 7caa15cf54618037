package activity

import (
	"context"
	"errors"
	"time"

	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/db"
	"backend-pulsedash/internal/timeline"
	"backend-pulsedash/internal/trimp"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

const activityColumns = `id, user_id, day, name, sport, started_at, duration_sec,
		COALESCE(note,''), trimp_override, source, hr_series, spo2_series, br_series, created_at`

func (s *Service) Create(ctx context.Context, input Activity) (Activity, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.Source == "" {
		input.Source = SourceManual
	}
	if input.StartedAt.IsZero() {
		input.StartedAt = time.Now().UTC()
	}
	input.Day = calendar.DateOf(input.StartedAt)

	row := s.db.QueryRow(ctx, `
		INSERT INTO activities (id, user_id, day, name, sport, started_at, duration_sec, source, hr_series, spo2_series, br_series)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE
		SET name=EXCLUDED.name, sport=EXCLUDED.sport, started_at=EXCLUDED.started_at,
		    duration_sec=EXCLUDED.duration_sec, day=EXCLUDED.day,
		    hr_series=EXCLUDED.hr_series, spo2_series=EXCLUDED.spo2_series, br_series=EXCLUDED.br_series
		RETURNING created_at
	`, input.ID, input.UserID, input.Day, input.Name, input.Sport, input.StartedAt, input.DurationSec,
		input.Source, nullableJSON(input.HeartRate), nullableJSON(input.SpO2), nullableJSON(input.Breathing))
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Activity{}, err
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Activity, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+activityColumns+`
		FROM activities WHERE user_id=$1 AND id=$2
	`, userID, id)
	return scanActivity(row)
}

// Detail builds the chart-ready document for one activity using the caller's
// heart rate profile.
func (s *Service) Detail(ctx context.Context, userID, id string, params trimp.Params) (Detail, error) {
	act, err := s.Get(ctx, userID, id)
	if err != nil {
		return Detail{}, err
	}
	return buildDetail(act, params), nil
}

// List returns activity metadata between two days inclusive, series omitted.
func (s *Service) List(ctx context.Context, userID string, from, to time.Time) ([]Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, day, name, sport, started_at, duration_sec,
		       COALESCE(note,''), trimp_override, source, created_at
		FROM activities
		WHERE user_id=$1 AND day BETWEEN $2 AND $3
		ORDER BY started_at
	`, userID, calendar.DateOf(from), calendar.DateOf(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Day, &a.Name, &a.Sport, &a.StartedAt, &a.DurationSec,
			&a.Note, &a.TRIMPOverride, &a.Source, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *Service) Update(ctx context.Context, userID, id string, patch Activity) (Activity, error) {
	act, err := s.Get(ctx, userID, id)
	if err != nil {
		return Activity{}, err
	}
	if patch.Name != "" {
		act.Name = patch.Name
	}
	if patch.Sport != "" {
		act.Sport = patch.Sport
	}
	if !patch.StartedAt.IsZero() {
		act.StartedAt = patch.StartedAt
		act.Day = calendar.DateOf(patch.StartedAt)
	}
	if patch.DurationSec > 0 {
		act.DurationSec = patch.DurationSec
	}

	_, err = s.db.Exec(ctx, `
		UPDATE activities
		SET name=$3, sport=$4, started_at=$5, duration_sec=$6, day=$7
		WHERE user_id=$1 AND id=$2
	`, userID, id, act.Name, act.Sport, act.StartedAt, act.DurationSec, act.Day)
	if err != nil {
		return Activity{}, err
	}
	return act, nil
}

// Delete removes a manually created activity. Synced and CSV-backed entries
// cannot be deleted.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM activities WHERE user_id=$1 AND id=$2 AND source=$3`,
		userID, id, SourceManual)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotManual
	}
	return nil
}

func (s *Service) SetNote(ctx context.Context, userID, id, note string) error {
	_, err := s.db.Exec(ctx, `UPDATE activities SET note=$3 WHERE user_id=$1 AND id=$2`, userID, id, note)
	return err
}

// SetTRIMPOverride pins the activity's training load to a manual value; nil
// clears the pin and the computed total applies again.
func (s *Service) SetTRIMPOverride(ctx context.Context, userID, id string, override *float64) error {
	_, err := s.db.Exec(ctx, `UPDATE activities SET trimp_override=$3 WHERE user_id=$1 AND id=$2`, userID, id, override)
	return err
}

func scanActivity(row interface{ Scan(dest ...any) error }) (Activity, error) {
	var a Activity
	if err := row.Scan(&a.ID, &a.UserID, &a.Day, &a.Name, &a.Sport, &a.StartedAt, &a.DurationSec,
		&a.Note, &a.TRIMPOverride, &a.Source, &a.HeartRate, &a.SpO2, &a.Breathing, &a.CreatedAt); err != nil {
		return Activity{}, err
	}
	return a, nil
}

func buildDetail(act Activity, params trimp.Params) Detail {
	hr := timeline.CleanSeries(act.HeartRate, timeline.HeartRate)
	spo2 := timeline.CleanSeries(act.SpO2, timeline.SpO2)
	br := timeline.CleanSeries(act.Breathing, timeline.BreathingRate)

	analysis := trimp.Analyze(hr, params)
	effective := analysis.TotalTRIMP
	if act.TRIMPOverride != nil {
		effective = *act.TRIMPOverride
	}

	return Detail{
		Activity:        act,
		HeartRatePoints: timeline.SegmentGaps(hr, 0),
		SpO2Points:      timeline.SegmentGaps(spo2, 0),
		BreathingPoints: timeline.SegmentGaps(br, 0),
		Analysis:        analysis,
		EffectiveTRIMP:  effective,
		TickIntervalMin: timeline.TickInterval(float64(act.DurationSec) / 60),
	}
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

var errNotManual = errors.New("only manual activities can be deleted")
