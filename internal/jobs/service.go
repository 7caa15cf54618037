package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/collector"
	"backend-pulsedash/internal/db"
	"backend-pulsedash/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// popTimeout bounds each blocking pop so the worker can notice shutdown.
const popTimeout = 5 * time.Second

// Service owns the job records and the redis work queue. Every status
// transition is broadcast on the stream hub so open dashboards follow along.
type Service struct {
	db    db.Querier
	redis *redis.Client
	queue string
	hub   *stream.Hub
}

func NewService(db db.Querier, redisClient *redis.Client, queue string, hub *stream.Hub) *Service {
	return &Service{db: db, redis: redisClient, queue: queue, hub: hub}
}

const jobColumns = `id, user_id, kind, day, status, result, COALESCE(error_message,''), created_at, updated_at`

// Enqueue records a queued collect job and pushes its id onto the work queue.
func (s *Service) Enqueue(ctx context.Context, userID string, day time.Time) (Job, error) {
	job := Job{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   KindCollectDay,
		Day:    calendar.DateOf(day),
		Status: StatusQueued,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO background_jobs (id, user_id, kind, day, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, job.ID, job.UserID, job.Kind, job.Day, job.Status)
	if err := row.Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		return Job{}, err
	}

	if err := s.redis.LPush(ctx, s.queue, job.ID).Err(); err != nil {
		return Job{}, fmt.Errorf("push job %s: %w", job.ID, err)
	}
	s.publish(job)
	return job, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Job, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM background_jobs WHERE user_id=$1 AND id=$2
	`, userID, id)
	return scanJob(row)
}

// List returns the user's most recent jobs, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Job, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM background_jobs
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, job)
	}
	return list, rows.Err()
}

// load fetches a job by id alone; the worker does not know the owner yet.
func (s *Service) load(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM background_jobs WHERE id=$1`, id)
	return scanJob(row)
}

func (s *Service) markRunning(ctx context.Context, job *Job) error {
	_, err := s.db.Exec(ctx, `
		UPDATE background_jobs SET status=$2, updated_at=now() WHERE id=$1
	`, job.ID, StatusRunning)
	if err != nil {
		return err
	}
	job.Status = StatusRunning
	s.publish(*job)
	return nil
}

func (s *Service) complete(ctx context.Context, job *Job, report collector.Report) error {
	result, err := json.Marshal(completedResult{Message: resultMessage(report), Report: report})
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE background_jobs SET status=$2, result=$3, updated_at=now() WHERE id=$1
	`, job.ID, StatusCompleted, result)
	if err != nil {
		return err
	}
	job.Status = StatusCompleted
	job.Result = result
	s.publish(*job)
	return nil
}

func (s *Service) fail(ctx context.Context, job *Job, cause error) {
	_, err := s.db.Exec(ctx, `
		UPDATE background_jobs SET status=$2, error_message=$3, updated_at=now() WHERE id=$1
	`, job.ID, StatusFailed, cause.Error())
	if err != nil {
		log.Printf("job %s: record failure: %v", job.ID, err)
	}
	job.Status = StatusFailed
	job.Error = cause.Error()
	s.publish(*job)
}

// dequeue pops one job id, returning "" when the pop timed out empty.
func (s *Service) dequeue(ctx context.Context) (string, error) {
	res, err := s.redis.BRPop(ctx, popTimeout, s.queue).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return res[1], nil
}

func (s *Service) publish(job Job) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return
	}
	s.hub.Broadcast(job.UserID, payload)
}

type completedResult struct {
	Message string `json:"message"`
	collector.Report
}

func resultMessage(r collector.Report) string {
	if r.HeartRate == 0 {
		return "no heart rate data for " + r.Day.Format(time.DateOnly)
	}
	return "synced " + r.Day.Format(time.DateOnly)
}

func scanJob(row pgx.Row) (Job, error) {
	var job Job
	err := row.Scan(&job.ID, &job.UserID, &job.Kind, &job.Day, &job.Status,
		&job.Result, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return Job{}, err
	}
	return job, nil
}
