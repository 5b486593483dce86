package model

import "time"

// RidePreference is a user's per-ride alert trigger. One row per
// (user, ride); mutated only by explicit user update.
type RidePreference struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	RideID         string    `json:"ride_id"`
	RideName       string    `json:"ride_name"`
	Enabled        bool      `json:"enabled"`
	MaxWaitMinutes int       `json:"max_wait_minutes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
