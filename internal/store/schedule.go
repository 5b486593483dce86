package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rfoley/parkwatch/internal/model"
)

// ScheduleStore owns the live (mutable) day-scoped schedules: shows,
// dining reservations, and lightning lanes. Date keys are park-local
// YYYY-MM-DD strings. The notified flags only ever flip true here; a
// user edit that changes the timing contract resets them in the same
// statement.
type ScheduleStore struct {
	db *sql.DB
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// UserDate identifies one user's schedule for one date.
type UserDate struct {
	UserID int64
	Date   string
}

const showCols = `id, user_id, date, label, target_time, travel_time_minutes, notified, final_warning_notified, created_at, updated_at`

func scanShow(scanner interface{ Scan(...any) error }) (*model.Show, error) {
	var sh model.Show
	var notified, finalWarning int
	err := scanner.Scan(&sh.ID, &sh.UserID, &sh.Date, &sh.Label, &sh.TargetTime, &sh.TravelTimeMinutes, &notified, &finalWarning, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sh.Notified = notified != 0
	sh.FinalWarningNotified = finalWarning != 0
	return &sh, nil
}

func (s *ScheduleStore) CreateShow(userID int64, date, label string, targetTime time.Time, travelTimeMinutes int) (*model.Show, error) {
	result, err := s.db.Exec(
		`INSERT INTO shows (user_id, date, label, target_time, travel_time_minutes)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, date, label, targetTime.UTC(), travelTimeMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert show: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetShow(userID, id)
}

func (s *ScheduleStore) GetShow(userID, id int64) (*model.Show, error) {
	row := s.db.QueryRow(`SELECT `+showCols+` FROM shows WHERE id = ? AND user_id = ?`, id, userID)
	sh, err := scanShow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	return sh, nil
}

func (s *ScheduleStore) ListShows(userID int64, date string) ([]model.Show, error) {
	rows, err := s.db.Query(`SELECT `+showCols+` FROM shows WHERE user_id = ? AND date = ? ORDER BY target_time, id`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var shows []model.Show
	for rows.Next() {
		sh, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		shows = append(shows, *sh)
	}
	return shows, rows.Err()
}

// UpdateShow edits a show. If target_time or travel_time_minutes change,
// both reminder flags reset to false in the same statement, because the
// timing contract they tracked no longer holds.
func (s *ScheduleStore) UpdateShow(userID, id int64, date, label string, targetTime time.Time, travelTimeMinutes int) (*model.Show, error) {
	_, err := s.db.Exec(
		`UPDATE shows SET
		   date = ?1, label = ?2,
		   notified = CASE WHEN target_time = ?3 AND travel_time_minutes = ?4 THEN notified ELSE 0 END,
		   final_warning_notified = CASE WHEN target_time = ?3 AND travel_time_minutes = ?4 THEN final_warning_notified ELSE 0 END,
		   target_time = ?3, travel_time_minutes = ?4,
		   updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?5 AND user_id = ?6`,
		date, label, targetTime.UTC(), travelTimeMinutes, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update show: %w", err)
	}
	return s.GetShow(userID, id)
}

func (s *ScheduleStore) DeleteShow(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM shows WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete show: %w", err)
	}
	return nil
}

// MarkShowNotified flips the travel-time reminder flag. One-way.
func (s *ScheduleStore) MarkShowNotified(id int64) error {
	_, err := s.db.Exec(`UPDATE shows SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark show notified: %w", err)
	}
	return nil
}

// MarkShowFinalWarning flips the final-warning flag. One-way.
func (s *ScheduleStore) MarkShowFinalWarning(id int64) error {
	_, err := s.db.Exec(`UPDATE shows SET final_warning_notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark show final warning: %w", err)
	}
	return nil
}

const diningCols = `id, user_id, date, label, target_time, travel_time_minutes, notified, created_at, updated_at`

func scanDining(scanner interface{ Scan(...any) error }) (*model.DiningReservation, error) {
	var d model.DiningReservation
	var notified int
	err := scanner.Scan(&d.ID, &d.UserID, &d.Date, &d.Label, &d.TargetTime, &d.TravelTimeMinutes, &notified, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Notified = notified != 0
	return &d, nil
}

func (s *ScheduleStore) CreateDining(userID int64, date, label string, targetTime time.Time, travelTimeMinutes int) (*model.DiningReservation, error) {
	result, err := s.db.Exec(
		`INSERT INTO dining_reservations (user_id, date, label, target_time, travel_time_minutes)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, date, label, targetTime.UTC(), travelTimeMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert dining reservation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetDining(userID, id)
}

func (s *ScheduleStore) GetDining(userID, id int64) (*model.DiningReservation, error) {
	row := s.db.QueryRow(`SELECT `+diningCols+` FROM dining_reservations WHERE id = ? AND user_id = ?`, id, userID)
	d, err := scanDining(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dining reservation: %w", err)
	}
	return d, nil
}

func (s *ScheduleStore) ListDining(userID int64, date string) ([]model.DiningReservation, error) {
	rows, err := s.db.Query(`SELECT `+diningCols+` FROM dining_reservations WHERE user_id = ? AND date = ? ORDER BY target_time, id`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list dining reservations: %w", err)
	}
	defer rows.Close()

	var dining []model.DiningReservation
	for rows.Next() {
		d, err := scanDining(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dining reservation: %w", err)
		}
		dining = append(dining, *d)
	}
	return dining, rows.Err()
}

func (s *ScheduleStore) UpdateDining(userID, id int64, date, label string, targetTime time.Time, travelTimeMinutes int) (*model.DiningReservation, error) {
	_, err := s.db.Exec(
		`UPDATE dining_reservations SET
		   date = ?1, label = ?2,
		   notified = CASE WHEN target_time = ?3 AND travel_time_minutes = ?4 THEN notified ELSE 0 END,
		   target_time = ?3, travel_time_minutes = ?4,
		   updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?5 AND user_id = ?6`,
		date, label, targetTime.UTC(), travelTimeMinutes, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update dining reservation: %w", err)
	}
	return s.GetDining(userID, id)
}

func (s *ScheduleStore) DeleteDining(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM dining_reservations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete dining reservation: %w", err)
	}
	return nil
}

func (s *ScheduleStore) MarkDiningNotified(id int64) error {
	_, err := s.db.Exec(`UPDATE dining_reservations SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark dining notified: %w", err)
	}
	return nil
}

const laneCols = `id, user_id, date, ride_id, label, target_time, travel_time_minutes, notified, created_at, updated_at`

func scanLane(scanner interface{ Scan(...any) error }) (*model.LightningLane, error) {
	var l model.LightningLane
	var notified int
	err := scanner.Scan(&l.ID, &l.UserID, &l.Date, &l.RideID, &l.Label, &l.TargetTime, &l.TravelTimeMinutes, &notified, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Notified = notified != 0
	return &l, nil
}

// UpsertLane creates or replaces the lane for (user, date, ride). A
// timing change on replace resets the notified flag, same as an edit.
func (s *ScheduleStore) UpsertLane(userID int64, date, rideID, label string, targetTime time.Time, travelTimeMinutes int) (*model.LightningLane, error) {
	_, err := s.db.Exec(
		`INSERT INTO lightning_lanes (user_id, date, ride_id, label, target_time, travel_time_minutes)
		 VALUES (?1, ?2, ?3, ?4, ?5, ?6)
		 ON CONFLICT(user_id, date, ride_id) DO UPDATE SET
		   label = excluded.label,
		   notified = CASE WHEN target_time = excluded.target_time AND travel_time_minutes = excluded.travel_time_minutes THEN notified ELSE 0 END,
		   target_time = excluded.target_time,
		   travel_time_minutes = excluded.travel_time_minutes,
		   updated_at = CURRENT_TIMESTAMP`,
		userID, date, rideID, label, targetTime.UTC(), travelTimeMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert lightning lane: %w", err)
	}
	return s.GetLane(userID, date, rideID)
}

func (s *ScheduleStore) GetLane(userID int64, date, rideID string) (*model.LightningLane, error) {
	row := s.db.QueryRow(`SELECT `+laneCols+` FROM lightning_lanes WHERE user_id = ? AND date = ? AND ride_id = ?`, userID, date, rideID)
	l, err := scanLane(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lightning lane: %w", err)
	}
	return l, nil
}

// MapLanes returns the day's lanes keyed by ride id, the shape the
// reminder evaluator consumes.
func (s *ScheduleStore) MapLanes(userID int64, date string) (map[string]model.LightningLane, error) {
	rows, err := s.db.Query(`SELECT `+laneCols+` FROM lightning_lanes WHERE user_id = ? AND date = ?`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list lightning lanes: %w", err)
	}
	defer rows.Close()

	lanes := make(map[string]model.LightningLane)
	for rows.Next() {
		l, err := scanLane(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lightning lane: %w", err)
		}
		lanes[l.RideID] = *l
	}
	return lanes, rows.Err()
}

func (s *ScheduleStore) DeleteLane(userID int64, date, rideID string) error {
	_, err := s.db.Exec(`DELETE FROM lightning_lanes WHERE user_id = ? AND date = ? AND ride_id = ?`, userID, date, rideID)
	if err != nil {
		return fmt.Errorf("delete lightning lane: %w", err)
	}
	return nil
}

func (s *ScheduleStore) MarkLaneNotified(id int64) error {
	_, err := s.db.Exec(`UPDATE lightning_lanes SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark lightning lane notified: %w", err)
	}
	return nil
}

// DatesBefore returns every (user, date) pair with live schedule content
// dated strictly before today, across all three stores. The archival
// sweep consumes this; comparing against wall-clock today means a missed
// midnight self-heals on the next run.
func (s *ScheduleStore) DatesBefore(today string) ([]UserDate, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT user_id, date FROM (
		   SELECT user_id, date FROM shows
		   UNION SELECT user_id, date FROM dining_reservations
		   UNION SELECT user_id, date FROM lightning_lanes
		 ) WHERE date < ? ORDER BY user_id, date`,
		today,
	)
	if err != nil {
		return nil, fmt.Errorf("list stale schedule dates: %w", err)
	}
	defer rows.Close()

	var stale []UserDate
	for rows.Next() {
		var ud UserDate
		if err := rows.Scan(&ud.UserID, &ud.Date); err != nil {
			return nil, fmt.Errorf("scan stale schedule date: %w", err)
		}
		stale = append(stale, ud)
	}
	return stale, rows.Err()
}

// DeleteDay removes one user's schedule for one date from all three live
// stores in a single transaction.
func (s *ScheduleStore) DeleteDay(userID int64, date string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete day: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"shows", "dining_reservations", "lightning_lanes"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE user_id = ? AND date = ?`, userID, date); err != nil {
			return fmt.Errorf("delete %s for day: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete day: %w", err)
	}
	return nil
}
