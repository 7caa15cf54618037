package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Source is where a day of wearable data comes from. The HTTP client below
// talks to a Connect-shaped API; tests substitute canned documents.
type Source interface {
	DailyHeartRate(ctx context.Context, date time.Time) (DailyHeartRate, error)
	DailySpO2(ctx context.Context, date time.Time) (DailySpO2, error)
	DailyRespiration(ctx context.Context, date time.Time) (DailyRespiration, error)
	ActivitiesForDate(ctx context.Context, date time.Time) ([]UpstreamActivity, error)
	ActivityDetails(ctx context.Context, activityID string) (ActivityDetails, error)
}

// Client fetches wellness and activity documents over HTTP with a bearer
// token. The display name is part of the heart rate path upstream.
type Client struct {
	base        string
	token       string
	displayName string
	http        *http.Client
}

func NewClient(base, token, displayName string) *Client {
	return &Client{
		base:        strings.TrimRight(base, "/"),
		token:       token,
		displayName: displayName,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) DailyHeartRate(ctx context.Context, date time.Time) (DailyHeartRate, error) {
	path := fmt.Sprintf("/wellness-service/wellness/dailyHeartRate/%s?date=%s",
		url.PathEscape(c.displayName), date.Format(time.DateOnly))
	var doc DailyHeartRate
	if err := c.getJSON(ctx, path, &doc); err != nil {
		return DailyHeartRate{}, fmt.Errorf("fetch daily heart rate: %w", err)
	}
	return doc, nil
}

func (c *Client) DailySpO2(ctx context.Context, date time.Time) (DailySpO2, error) {
	var doc DailySpO2
	if err := c.getJSON(ctx, "/wellness-service/wellness/daily/spo2/"+date.Format(time.DateOnly), &doc); err != nil {
		return DailySpO2{}, fmt.Errorf("fetch daily spo2: %w", err)
	}
	return doc, nil
}

func (c *Client) DailyRespiration(ctx context.Context, date time.Time) (DailyRespiration, error) {
	var doc DailyRespiration
	if err := c.getJSON(ctx, "/wellness-service/wellness/daily/respiration/"+date.Format(time.DateOnly), &doc); err != nil {
		return DailyRespiration{}, fmt.Errorf("fetch daily respiration: %w", err)
	}
	return doc, nil
}

func (c *Client) ActivitiesForDate(ctx context.Context, date time.Time) ([]UpstreamActivity, error) {
	var doc activitiesForDate
	if err := c.getJSON(ctx, "/mobile-gateway/heartRate/forDate/"+date.Format(time.DateOnly), &doc); err != nil {
		return nil, fmt.Errorf("fetch activities for date: %w", err)
	}
	return doc.ActivitiesForDay.Payload, nil
}

func (c *Client) ActivityDetails(ctx context.Context, activityID string) (ActivityDetails, error) {
	path := fmt.Sprintf("/activity-service/activity/%s/details?maxChartSize=2000&maxPolylineSize=4000",
		url.PathEscape(activityID))
	var doc ActivityDetails
	if err := c.getJSON(ctx, path, &doc); err != nil {
		return ActivityDetails{}, fmt.Errorf("fetch activity details: %w", err)
	}
	return doc, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	return nil
}
