package community

import "time"

const isoDay = "2006-01-02"

// distanceInRange sums summary distances whose calendar day falls inside
// [start,end] inclusive. The total is deliberately not capped at the goal.
func distanceInRange(summaries []DailySummary, start, end time.Time) float64 {
	from := dayOf(start)
	to := dayOf(end)
	var total float64
	for _, s := range summaries {
		day := dayOf(s.DayStart)
		if day.Before(from) || day.After(to) {
			continue
		}
		total += s.TotalDistanceM
	}
	return total
}

// contributionsForRange emits exactly one record per calendar day in
// [start,end] inclusive, zero-filled for days without activity.
func contributionsForRange(start, end time.Time, summaries []DailySummary) []Contribution {
	from := dayOf(start)
	to := dayOf(end)

	var records []Contribution
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		var distance float64
		var count int
		for _, s := range summaries {
			if dayOf(s.DayStart).Equal(day) {
				distance += s.TotalDistanceM
				count += s.RunCount
			}
		}
		records = append(records, Contribution{
			Day:               day.Format(isoDay),
			DistanceMeters:    distance,
			ContributionCount: count,
		})
	}
	return records
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
