package activity

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"backend-pulsedash/internal/timeline"
	"backend-pulsedash/internal/trimp"
)

var (
	errNoTimestampColumn = errors.New("csv needs a timestamp column")
	errNoSeriesColumn    = errors.New("csv needs at least one series column")
)

// ImportCSV replaces the activity's series with rows uploaded as CSV. The
// header row names the columns: timestamp plus any of heart_rate (hr), spo2
// and breathing_rate (br). Series whose column is absent keep their stored
// data. Unreadable rows are dropped, matching the leniency of the sync feed.
func (s *Service) ImportCSV(ctx context.Context, userID, id string, r io.Reader, params trimp.Params) (Detail, error) {
	act, err := s.Get(ctx, userID, id)
	if err != nil {
		return Detail{}, err
	}

	parsed, err := parseSeriesCSV(r)
	if err != nil {
		return Detail{}, err
	}

	hr := encodeColumn(parsed.hasHR, parsed.hr, timeline.HeartRate)
	spo2 := encodeColumn(parsed.hasSpO2, parsed.spo2, timeline.SpO2)
	br := encodeColumn(parsed.hasBR, parsed.br, timeline.BreathingRate)

	_, err = s.db.Exec(ctx, `
		UPDATE activities
		SET hr_series=COALESCE($3, hr_series),
		    spo2_series=COALESCE($4, spo2_series),
		    br_series=COALESCE($5, br_series),
		    source=$6
		WHERE user_id=$1 AND id=$2
	`, userID, id, hr, spo2, br, SourceCSV)
	if err != nil {
		return Detail{}, err
	}

	if hr != nil {
		act.HeartRate = hr.([]byte)
	}
	if spo2 != nil {
		act.SpO2 = spo2.([]byte)
	}
	if br != nil {
		act.Breathing = br.([]byte)
	}
	act.Source = SourceCSV
	return buildDetail(act, params), nil
}

// ExportCSV writes the cleaned heart rate series as timestamp,heart_rate
// rows for spreadsheet use.
func (s *Service) ExportCSV(ctx context.Context, userID, id string, w io.Writer) error {
	act, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"timestamp", "heart_rate"}); err != nil {
		return err
	}
	for _, sample := range timeline.CleanSeries(act.HeartRate, timeline.HeartRate) {
		record := []string{
			sample.At.UTC().Format(time.RFC3339),
			strconv.FormatFloat(sample.Value, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type csvSeries struct {
	hr, spo2, br          []timeline.Sample
	hasHR, hasSpO2, hasBR bool
}

func parseSeriesCSV(r io.Reader) (csvSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return csvSeries{}, errNoTimestampColumn
	}

	tsCol, hrCol, spo2Col, brCol := -1, -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "time":
			tsCol = i
		case "heart_rate", "hr":
			hrCol = i
		case "spo2":
			spo2Col = i
		case "breathing_rate", "br":
			brCol = i
		}
	}
	if tsCol < 0 {
		return csvSeries{}, errNoTimestampColumn
	}
	if hrCol < 0 && spo2Col < 0 && brCol < 0 {
		return csvSeries{}, errNoSeriesColumn
	}

	out := csvSeries{hasHR: hrCol >= 0, hasSpO2: spo2Col >= 0, hasBR: brCol >= 0}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		at, ok := parseCSVStamp(field(record, tsCol))
		if !ok {
			continue
		}
		appendSample(&out.hr, hrCol, record, at)
		appendSample(&out.spo2, spo2Col, record, at)
		appendSample(&out.br, brCol, record, at)
	}
	return out, nil
}

func appendSample(samples *[]timeline.Sample, col int, record []string, at time.Time) {
	if col < 0 {
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(field(record, col)), 64)
	if err != nil {
		return
	}
	*samples = append(*samples, timeline.Sample{At: at, Value: v})
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}

// parseCSVStamp accepts both epoch milliseconds and ISO date-times, like the
// JSON feeds do.
func parseCSVStamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return timeline.ParseTime(s)
}

// encodeColumn cleans the parsed samples and renders them in the stored pair
// shape, or nil when the column was not uploaded at all.
func encodeColumn(present bool, samples []timeline.Sample, domain timeline.Domain) any {
	if !present {
		return nil
	}
	return []byte(timeline.EncodePairs(timeline.CleanSamples(samples, domain)))
}
