// Package gateway is the stateless boundary to the remote community
// table-store. Reads degrade to empty results when the backend is
// unreachable and drop rows that fail to parse; writes propagate errors so
// callers can queue them for replay.
package gateway

import (
	"context"
	"errors"
	"log"
	"time"

	"backend-taqvo/internal/community"
	"backend-taqvo/internal/db"

	"github.com/google/uuid"
)

const isoDay = "2006-01-02"

// errUnreachable stands in for transport failure when no backend is
// configured at all; callers treat it like any other failed write.
var errUnreachable = errors.New("remote backend unavailable")

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) Challenges(ctx context.Context, userID string) []community.Challenge {
	if s.db == nil {
		return nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.title, c.detail,
		       to_char(c.start_date, 'YYYY-MM-DD'), to_char(c.end_date, 'YYYY-MM-DD'),
		       c.goal_distance_meters, c.is_public, c.created_by, c.created_at,
		       EXISTS (SELECT 1 FROM challenge_members m WHERE m.challenge_id = c.id AND m.user_id = $1)
		FROM challenges c
		WHERE c.is_public
		   OR c.created_by = $1
		   OR EXISTS (SELECT 1 FROM challenge_members m WHERE m.challenge_id = c.id AND m.user_id = $1)
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		log.Printf("challenges load degraded to empty: %v", err)
		return nil
	}
	defer rows.Close()

	var challenges []community.Challenge
	for rows.Next() {
		var c community.Challenge
		var start, end string
		if err := rows.Scan(&c.ID, &c.Title, &c.Detail, &start, &end, &c.GoalDistanceM, &c.IsPublic, &c.CreatedBy, &c.CreatedAt, &c.Joined); err != nil {
			log.Printf("dropping unreadable challenge row: %v", err)
			continue
		}
		if c.StartDate, err = time.Parse(isoDay, start); err != nil {
			log.Printf("dropping challenge %s: bad start_date %q", c.ID, start)
			continue
		}
		if c.EndDate, err = time.Parse(isoDay, end); err != nil {
			log.Printf("dropping challenge %s: bad end_date %q", c.ID, end)
			continue
		}
		if c.ID == "" {
			continue
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		log.Printf("challenges load truncated: %v", err)
	}
	return challenges
}

func (s *Service) Clubs(ctx context.Context, userID string) []community.Club {
	if s.db == nil {
		return nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT b.id, b.name, b.description, b.is_public, b.created_by, b.created_at,
		       (SELECT COUNT(*) FROM club_members m WHERE m.club_id = b.id),
		       EXISTS (SELECT 1 FROM club_members m WHERE m.club_id = b.id AND m.user_id = $1)
		FROM clubs b
		WHERE b.is_public
		   OR b.created_by = $1
		   OR EXISTS (SELECT 1 FROM club_members m WHERE m.club_id = b.id AND m.user_id = $1)
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		log.Printf("clubs load degraded to empty: %v", err)
		return nil
	}
	defer rows.Close()

	var clubs []community.Club
	for rows.Next() {
		var c community.Club
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsPublic, &c.CreatedBy, &c.CreatedAt, &c.MemberCount, &c.Joined); err != nil {
			log.Printf("dropping unreadable club row: %v", err)
			continue
		}
		if c.ID == "" {
			continue
		}
		clubs = append(clubs, c)
	}
	if err := rows.Err(); err != nil {
		log.Printf("clubs load truncated: %v", err)
	}
	return clubs
}

// Leaderboard reads the backend-computed totals. Ordering and ranks are a
// client concern; rows come back in no particular order beyond distance.
func (s *Service) Leaderboard(ctx context.Context) []community.LeaderboardEntry {
	if s.db == nil {
		return nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT l.user_id, l.username, l.total_distance_meters, l.total_duration_seconds, l.streak_days
		FROM leaderboard l
		ORDER BY l.total_distance_meters DESC
	`)
	if err != nil {
		log.Printf("leaderboard load degraded to empty: %v", err)
		return nil
	}
	defer rows.Close()

	var entries []community.LeaderboardEntry
	for rows.Next() {
		var e community.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalDistanceM, &e.TotalDurationS, &e.StreakDays); err != nil {
			log.Printf("dropping unreadable leaderboard row: %v", err)
			continue
		}
		if e.UserID == "" {
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		log.Printf("leaderboard load truncated: %v", err)
	}
	return entries
}

// CreateChallenge assigns the canonical identity. It fails fast with
// ErrSignInRequired before touching the network when there is no user.
func (s *Service) CreateChallenge(ctx context.Context, userID string, input community.Challenge) (community.Challenge, error) {
	if userID == "" {
		return community.Challenge{}, community.ErrSignInRequired
	}
	if s.db == nil {
		return community.Challenge{}, errUnreachable
	}
	input.ID = uuid.NewString()
	input.CreatedBy = userID
	row := s.db.QueryRow(ctx, `
		INSERT INTO challenges (id, title, detail, start_date, end_date, goal_distance_meters, is_public, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, input.ID, input.Title, input.Detail, input.StartDate.Format(isoDay), input.EndDate.Format(isoDay), input.GoalDistanceM, input.IsPublic, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return community.Challenge{}, err
	}
	return input, nil
}

func (s *Service) CreateClub(ctx context.Context, userID string, input community.Club) (community.Club, error) {
	if userID == "" {
		return community.Club{}, community.ErrSignInRequired
	}
	if s.db == nil {
		return community.Club{}, errUnreachable
	}
	input.ID = uuid.NewString()
	input.CreatedBy = userID
	row := s.db.QueryRow(ctx, `
		INSERT INTO clubs (id, name, description, is_public, created_by)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, input.ID, input.Name, input.Description, input.IsPublic, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return community.Club{}, err
	}
	return input, nil
}

func (s *Service) DeleteChallenge(ctx context.Context, id string) error {
	if s.db == nil {
		return errUnreachable
	}
	_, err := s.db.Exec(ctx, `DELETE FROM challenges WHERE id=$1`, id)
	return err
}

func (s *Service) SetChallengeJoined(ctx context.Context, userID, challengeID string, joined bool) error {
	if userID == "" {
		return community.ErrSignInRequired
	}
	if s.db == nil {
		return errUnreachable
	}
	if joined {
		_, err := s.db.Exec(ctx, `
			INSERT INTO challenge_members (challenge_id, user_id)
			VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, challengeID, userID)
		return err
	}
	_, err := s.db.Exec(ctx, `
		DELETE FROM challenge_members WHERE challenge_id=$1 AND user_id=$2
	`, challengeID, userID)
	return err
}

func (s *Service) SetClubJoined(ctx context.Context, userID, clubID string, joined bool) error {
	if userID == "" {
		return community.ErrSignInRequired
	}
	if s.db == nil {
		return errUnreachable
	}
	if joined {
		_, err := s.db.Exec(ctx, `
			INSERT INTO club_members (club_id, user_id)
			VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, clubID, userID)
		return err
	}
	_, err := s.db.Exec(ctx, `
		DELETE FROM club_members WHERE club_id=$1 AND user_id=$2
	`, clubID, userID)
	return err
}

// UploadContributions upserts one row per calendar day; replaying the same
// records is idempotent.
func (s *Service) UploadContributions(ctx context.Context, userID, challengeID string, records []community.Contribution) error {
	if userID == "" {
		return community.ErrSignInRequired
	}
	if s.db == nil {
		return errUnreachable
	}
	for _, rec := range records {
		_, err := s.db.Exec(ctx, `
			INSERT INTO challenge_contributions (challenge_id, user_id, day, distance_meters, contribution_count)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (challenge_id, user_id, day)
			DO UPDATE SET distance_meters=EXCLUDED.distance_meters, contribution_count=EXCLUDED.contribution_count
		`, challengeID, userID, rec.Day, rec.DistanceMeters, rec.ContributionCount)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Invite(ctx context.Context, userID, challengeID string, usernames []string) error {
	if userID == "" {
		return community.ErrSignInRequired
	}
	if s.db == nil {
		return errUnreachable
	}
	for _, username := range usernames {
		_, err := s.db.Exec(ctx, `
			INSERT INTO challenge_invites (id, challenge_id, username, invited_by)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT DO NOTHING
		`, uuid.NewString(), challengeID, username, userID)
		if err != nil {
			return err
		}
	}
	return nil
}
