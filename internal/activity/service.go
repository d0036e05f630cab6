// Package activity is the boundary to the tracking subsystem. The community
// model consumes only DailySummaries; everything else about tracking stays
// behind this package.
package activity

import (
	"context"
	"errors"
	"time"

	"backend-taqvo/internal/community"
	"backend-taqvo/internal/db"

	"github.com/google/uuid"
)

type Identity interface {
	UserID() string
}

type Service struct {
	db      db.Querier
	session Identity
}

func NewService(q db.Querier, session Identity) *Service {
	return &Service{db: q, session: session}
}

func (s *Service) Record(ctx context.Context, input Activity) (Activity, error) {
	if input.UserID == "" {
		return Activity{}, errors.New("user_id required")
	}
	if input.Kind == "" {
		input.Kind = "run"
	}
	if input.StartedAt.IsZero() {
		input.StartedAt = time.Now()
	}
	if s.db == nil {
		return Activity{}, errors.New("activity store unavailable")
	}
	input.ID = uuid.NewString()

	row := s.db.QueryRow(ctx, `
		INSERT INTO activities (id, user_id, kind, started_at, distance_meters, duration_seconds)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, input.ID, input.UserID, input.Kind, input.StartedAt, input.DistanceM, input.DurationSec)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Activity{}, err
	}
	return input, nil
}

// DailySummaries aggregates the current user's activities per calendar day.
// Signed out means no data, not an error.
func (s *Service) DailySummaries(ctx context.Context) ([]community.DailySummary, error) {
	userID := s.session.UserID()
	if userID == "" || s.db == nil {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT date_trunc('day', started_at), COALESCE(SUM(distance_meters),0), COUNT(*)
		FROM activities
		WHERE user_id=$1
		GROUP BY 1
		ORDER BY 1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []community.DailySummary
	for rows.Next() {
		var s community.DailySummary
		if err := rows.Scan(&s.DayStart, &s.TotalDistanceM, &s.RunCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
