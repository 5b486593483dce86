package store

import (
	"database/sql"
	"fmt"

	"github.com/rfoley/parkwatch/internal/model"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

const prefCols = `id, user_id, ride_id, ride_name, enabled, max_wait_minutes, created_at, updated_at`

func scanPreference(scanner interface{ Scan(...any) error }) (*model.RidePreference, error) {
	var p model.RidePreference
	var enabledInt int
	err := scanner.Scan(&p.ID, &p.UserID, &p.RideID, &p.RideName, &enabledInt, &p.MaxWaitMinutes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Enabled = enabledInt != 0
	return &p, nil
}

// Upsert creates or replaces the user's trigger for a ride.
func (s *PreferenceStore) Upsert(userID int64, rideID, rideName string, enabled bool, maxWaitMinutes int) (*model.RidePreference, error) {
	var enabledInt int
	if enabled {
		enabledInt = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO ride_preferences (user_id, ride_id, ride_name, enabled, max_wait_minutes)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, ride_id) DO UPDATE SET
		   ride_name = excluded.ride_name,
		   enabled = excluded.enabled,
		   max_wait_minutes = excluded.max_wait_minutes,
		   updated_at = CURRENT_TIMESTAMP`,
		userID, rideID, rideName, enabledInt, maxWaitMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert ride preference: %w", err)
	}
	return s.Get(userID, rideID)
}

func (s *PreferenceStore) Get(userID int64, rideID string) (*model.RidePreference, error) {
	row := s.db.QueryRow(`SELECT `+prefCols+` FROM ride_preferences WHERE user_id = ? AND ride_id = ?`, userID, rideID)
	p, err := scanPreference(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ride preference: %w", err)
	}
	return p, nil
}

func (s *PreferenceStore) ListByUser(userID int64) ([]model.RidePreference, error) {
	rows, err := s.db.Query(`SELECT `+prefCols+` FROM ride_preferences WHERE user_id = ? ORDER BY ride_name, ride_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list ride preferences: %w", err)
	}
	defer rows.Close()

	var prefs []model.RidePreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride preference: %w", err)
		}
		prefs = append(prefs, *p)
	}
	return prefs, rows.Err()
}

// MapByUser returns the user's preferences keyed by ride id, the shape
// the readiness evaluator consumes.
func (s *PreferenceStore) MapByUser(userID int64) (map[string]model.RidePreference, error) {
	prefs, err := s.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	m := make(map[string]model.RidePreference, len(prefs))
	for _, p := range prefs {
		m[p.RideID] = p
	}
	return m, nil
}

func (s *PreferenceStore) Delete(userID int64, rideID string) error {
	_, err := s.db.Exec(`DELETE FROM ride_preferences WHERE user_id = ? AND ride_id = ?`, userID, rideID)
	if err != nil {
		return fmt.Errorf("delete ride preference: %w", err)
	}
	return nil
}
