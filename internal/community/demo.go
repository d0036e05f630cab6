package community

import "time"

// demoChallenges seeds the list when the backend is unreachable and nothing
// loaded, so a fresh install still has something to show offline.
func demoChallenges(now time.Time) []Challenge {
	weekStart := dayOf(now)
	return []Challenge{
		{
			ID:            "demo-weekly-25k",
			Title:         "Weekly 25K",
			Detail:        "Cover 25 kilometers this week, any pace counts.",
			StartDate:     weekStart,
			EndDate:       weekStart.AddDate(0, 0, 6),
			GoalDistanceM: 25000,
			IsPublic:      true,
			CreatedBy:     "taqvo-demo",
			CreatedAt:     now,
		},
		{
			ID:            "demo-streak-starter",
			Title:         "Streak Starter",
			Detail:        "Get out the door three days in a row.",
			StartDate:     weekStart,
			EndDate:       weekStart.AddDate(0, 0, 2),
			GoalDistanceM: 6000,
			IsPublic:      true,
			CreatedBy:     "taqvo-demo",
			CreatedAt:     now,
		},
	}
}
