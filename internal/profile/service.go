package profile

import (
	"context"
	"errors"

	"backend-pulsedash/internal/db"
	"backend-pulsedash/internal/trimp"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Params returns the user's heart rate bounds, falling back to the stock
// defaults for users who never set their own.
func (s *Service) Params(ctx context.Context, userID string) (trimp.Params, error) {
	var p trimp.Params
	row := s.db.QueryRow(ctx, `SELECT resting_hr, max_hr FROM hr_profiles WHERE user_id=$1`, userID)
	if err := row.Scan(&p.RestingHR, &p.MaxHR); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trimp.DefaultParams, nil
		}
		return trimp.Params{}, err
	}
	return p, nil
}

func (s *Service) SetParams(ctx context.Context, userID string, p trimp.Params) (trimp.Params, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO hr_profiles (user_id, resting_hr, max_hr, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (user_id) DO UPDATE
		SET resting_hr=EXCLUDED.resting_hr, max_hr=EXCLUDED.max_hr, updated_at=now()
	`, userID, p.RestingHR, p.MaxHR)
	if err != nil {
		return trimp.Params{}, err
	}
	return p, nil
}
