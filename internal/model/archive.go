package model

import "time"

// DayArchive is the immutable snapshot of one user's schedule for a date
// that has passed. Created only by the archival sweep, deleted only by
// explicit user action.
type DayArchive struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Date      string          `json:"date"`
	Contents  ArchiveContents `json:"contents"`
	CreatedAt time.Time       `json:"created_at"`
}

// ArchiveContents is the archived payload, stored as a single JSON document.
type ArchiveContents struct {
	Shows          []Show                   `json:"shows"`
	Dining         []DiningReservation      `json:"dining"`
	LightningLanes map[string]LightningLane `json:"lightning_lanes"`
}
