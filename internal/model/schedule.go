package model

import "time"

// Show is a scheduled performance the user wants to catch. Two reminder
// stages: a travel-time reminder and a fixed final warning shortly before
// showtime. The flags flip true exactly once; only a user edit to the
// timing fields resets them.
type Show struct {
	ID                   int64     `json:"id"`
	UserID               int64     `json:"user_id"`
	Date                 string    `json:"date"` // park-local YYYY-MM-DD
	Label                string    `json:"label"`
	TargetTime           time.Time `json:"target_time"`
	TravelTimeMinutes    int       `json:"travel_time_minutes"`
	Notified             bool      `json:"notified"`
	FinalWarningNotified bool      `json:"final_warning_notified"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DiningReservation is a single-stage reminder for a dining booking.
type DiningReservation struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Date              string    `json:"date"`
	Label             string    `json:"label"`
	TargetTime        time.Time `json:"target_time"`
	TravelTimeMinutes int       `json:"travel_time_minutes"`
	Notified          bool      `json:"notified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LightningLane is a return-window reminder, keyed by ride within a day.
type LightningLane struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Date              string    `json:"date"`
	RideID            string    `json:"ride_id"`
	Label             string    `json:"label"`
	TargetTime        time.Time `json:"target_time"`
	TravelTimeMinutes int       `json:"travel_time_minutes"`
	Notified          bool      `json:"notified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
