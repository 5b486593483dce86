package store

import (
	"database/sql"
	"fmt"
)

// NotifiedStore persists each user's set of rides already announced
// ready. The set is replaced wholesale every evaluation cycle; it is
// never edited incrementally.
type NotifiedStore struct {
	db *sql.DB
}

func NewNotifiedStore(db *sql.DB) *NotifiedStore {
	return &NotifiedStore{db: db}
}

func (s *NotifiedStore) Get(userID int64) (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT ride_id FROM notified_rides WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("get notified set: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var rideID string
		if err := rows.Scan(&rideID); err != nil {
			return nil, fmt.Errorf("scan notified ride: %w", err)
		}
		set[rideID] = struct{}{}
	}
	return set, rows.Err()
}

// Replace swaps the user's notified set for the given one in a single
// transaction.
func (s *NotifiedStore) Replace(userID int64, rideIDs map[string]struct{}) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace notified set: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM notified_rides WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear notified set: %w", err)
	}
	for rideID := range rideIDs {
		if _, err := tx.Exec(`INSERT INTO notified_rides (user_id, ride_id) VALUES (?, ?)`, userID, rideID); err != nil {
			return fmt.Errorf("insert notified ride: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notified set: %w", err)
	}
	return nil
}
