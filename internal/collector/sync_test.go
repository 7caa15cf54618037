package collector

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"backend-pulsedash/internal/activity"
	"backend-pulsedash/internal/profile"
	"backend-pulsedash/internal/trimp"
	"backend-pulsedash/internal/vitals"

	"github.com/pashagolub/pgxmock/v3"
)

type fakeSource struct {
	hr            DailyHeartRate
	hrErr         error
	spo2          DailySpO2
	spo2Err       error
	respiration   DailyRespiration
	respErr       error
	activities    []UpstreamActivity
	activitiesErr error
	details       map[string]ActivityDetails
	detailsErr    error
}

func (f *fakeSource) DailyHeartRate(ctx context.Context, date time.Time) (DailyHeartRate, error) {
	return f.hr, f.hrErr
}

func (f *fakeSource) DailySpO2(ctx context.Context, date time.Time) (DailySpO2, error) {
	return f.spo2, f.spo2Err
}

func (f *fakeSource) DailyRespiration(ctx context.Context, date time.Time) (DailyRespiration, error) {
	return f.respiration, f.respErr
}

func (f *fakeSource) ActivitiesForDate(ctx context.Context, date time.Time) ([]UpstreamActivity, error) {
	return f.activities, f.activitiesErr
}

func (f *fakeSource) ActivityDetails(ctx context.Context, activityID string) (ActivityDetails, error) {
	return f.details[activityID], f.detailsErr
}

func upstreamRun(id int64) UpstreamActivity {
	ua := UpstreamActivity{
		ActivityID:   id,
		ActivityName: "Morning Run",
		StartTimeGMT: "2024-03-10 08:00:00",
		Duration:     1800.5,
	}
	ua.ActivityType.TypeKey = "running"
	return ua
}

func runDetails() ActivityDetails {
	ts0, ts1, hr0, hr1 := 1710057600000.0, 1710057660000.0, 120.0, 150.0
	return ActivityDetails{
		MetricDescriptors: []MetricDescriptor{
			{MetricsIndex: 0, Key: metricTimestamp},
			{MetricsIndex: 1, Key: metricHeartRate},
		},
		ActivityDetailMetrics: []MetricRow{
			{Metrics: []*float64{&ts0, &hr0}},
			{Metrics: []*float64{&ts1, &hr1}},
		},
	}
}

func syncedSource() *fakeSource {
	return &fakeSource{
		hr: DailyHeartRate{
			RestingHeartRate: 52,
			HeartRateValues:  json.RawMessage(`[[1710057600000, 110], [1710057660000, 125]]`),
		},
		spo2:        DailySpO2{HourlyAverages: json.RawMessage(`[[1710057600000, 97], [1710061200000, 93]]`)},
		respiration: DailyRespiration{Values: json.RawMessage(`[[1710057600000, 16]]`)},
		activities:  []UpstreamActivity{upstreamRun(11111)},
		details:     map[string]ActivityDetails{"11111": runDetails()},
	}
}

func newSync(src Source, mock pgxmock.PgxPoolIface) *Sync {
	return NewSync(src, vitals.NewService(mock), activity.NewService(mock), profile.NewService(mock))
}

func expectProfile(mock pgxmock.PgxPoolIface) {
	mock.ExpectQuery(`SELECT resting_hr, max_hr`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"resting_hr", "max_hr"}).AddRow(48, 167))
}

func TestSyncDayStoresVitalsAndActivities(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expectProfile(mock)
	mock.ExpectExec(`INSERT INTO daily_data`).
		WithArgs("user-1", syncDate(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`INSERT INTO activities`).
		WithArgs("11111", "user-1", syncDate(), "Morning Run", "running",
			time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), 1800, activity.SourceSync,
			pgxmock.AnyArg(), nil, nil).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	report, err := newSync(syncedSource(), mock).Day(context.Background(), "user-1", syncDate())
	if err != nil {
		t.Fatalf("sync day: %v", err)
	}
	if report.HeartRate != 2 || report.SpO2 != 2 || report.Breathing != 1 {
		t.Fatalf("sample counts = %d/%d/%d, want 2/2/1", report.HeartRate, report.SpO2, report.Breathing)
	}
	if report.Activities != 1 {
		t.Fatalf("activities = %d, want 1", report.Activities)
	}
	if report.TotalTRIMP <= 0 {
		t.Fatalf("trimp = %v, want positive", report.TotalTRIMP)
	}
	if report.Type != trimp.LongLowIntensity {
		t.Fatalf("type = %q", report.Type)
	}
	if !report.Day.Equal(syncDate()) {
		t.Fatalf("day = %v", report.Day)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSyncDayFailsWithoutHeartRate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expectProfile(mock)

	src := syncedSource()
	src.hrErr = errUpstream
	if _, err := newSync(src, mock).Day(context.Background(), "user-1", syncDate()); err == nil {
		t.Fatalf("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("nothing may be written when the fetch fails: %v", err)
	}
}

func TestSyncDayDegradesWithoutOptionalMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expectProfile(mock)
	mock.ExpectExec(`INSERT INTO daily_data`).
		WithArgs("user-1", syncDate(), pgxmock.AnyArg(), nil, nil, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	src := syncedSource()
	src.spo2Err = errUpstream
	src.respErr = errUpstream
	src.activities = nil

	report, err := newSync(src, mock).Day(context.Background(), "user-1", syncDate())
	if err != nil {
		t.Fatalf("sync day: %v", err)
	}
	if report.HeartRate != 2 || report.SpO2 != 0 || report.Breathing != 0 {
		t.Fatalf("sample counts = %d/%d/%d, want 2/0/0", report.HeartRate, report.SpO2, report.Breathing)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSyncDaySkipsBrokenActivity(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expectProfile(mock)
	mock.ExpectExec(`INSERT INTO daily_data`).
		WithArgs("user-1", syncDate(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`INSERT INTO activities`).
		WithArgs("22222", "user-1", syncDate(), "Morning Run", "running",
			time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), 1800, activity.SourceSync,
			nil, nil, nil).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	broken := upstreamRun(99999)
	broken.StartTimeGMT = "sometime in march"

	src := syncedSource()
	src.activities = []UpstreamActivity{broken, upstreamRun(22222)}

	report, err := newSync(src, mock).Day(context.Background(), "user-1", syncDate())
	if err != nil {
		t.Fatalf("sync day: %v", err)
	}
	if report.Activities != 1 {
		t.Fatalf("activities = %d, want the broken one skipped", report.Activities)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var errUpstream = errors.New("upstream unavailable")
