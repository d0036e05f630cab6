package community

import "time"

// Challenge is a time-boxed distance goal joinable by users. Joined and
// ProgressM are device-local: Joined merges server membership with the
// override store, ProgressM is recomputed from activity summaries.
type Challenge struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Detail        string    `json:"detail"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	GoalDistanceM float64   `json:"goal_distance_meters"`
	IsPublic      bool      `json:"is_public"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	Joined        bool      `json:"joined"`
	ProgressM     float64   `json:"progress_meters"`
}

// ProgressFraction clamps to [0,1]. ProgressM itself is left uncapped.
func (c Challenge) ProgressFraction() float64 {
	if c.GoalDistanceM <= 0 {
		return 0
	}
	f := c.ProgressM / c.GoalDistanceM
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	MemberCount int       `json:"member_count"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Joined      bool      `json:"joined"`
}

// LeaderboardEntry rank is display-only and reassigned 1..N on every sort.
type LeaderboardEntry struct {
	UserID         string   `json:"user_id"`
	Rank           int      `json:"rank"`
	Name           string   `json:"name"`
	TotalDistanceM float64  `json:"total_distance_meters"`
	TotalDurationS *float64 `json:"total_duration_seconds,omitempty"`
	StreakDays     *int     `json:"streak_days,omitempty"`
}

// Contribution is the per-challenge per-day record uploaded for joined
// challenges. Day crosses the wire as ISO yyyy-MM-dd.
type Contribution struct {
	Day               string  `json:"day"`
	DistanceMeters    float64 `json:"distance_meters"`
	ContributionCount int     `json:"contribution_count"`
}

// DailySummary is the only input consumed from the tracking subsystem.
type DailySummary struct {
	DayStart       time.Time `json:"day_start"`
	TotalDistanceM float64   `json:"total_distance_meters"`
	RunCount       int       `json:"run_count"`
}

type SortMode string

const (
	SortDistance SortMode = "distance"
	SortPace     SortMode = "pace"
	SortStreak   SortMode = "streak"
)

func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(s) {
	case SortDistance, SortPace, SortStreak:
		return SortMode(s), true
	}
	return "", false
}
