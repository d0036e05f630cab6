package activity

import "time"

type Activity struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	StartedAt   time.Time `json:"started_at"`
	DistanceM   float64   `json:"distance_meters"`
	DurationSec int64     `json:"duration_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}
