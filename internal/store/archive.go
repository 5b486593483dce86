package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rfoley/parkwatch/internal/model"
)

// ArchiveStore holds immutable per-(user, date) schedule snapshots.
// Rows are created only by the archival sweep and deleted only by
// explicit user action; there is no update path.
type ArchiveStore struct {
	db *sql.DB
}

func NewArchiveStore(db *sql.DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// Create writes the archive snapshot for (user, date). Archiving the
// same date twice keeps the first snapshot.
func (s *ArchiveStore) Create(userID int64, date string, contents model.ArchiveContents) error {
	payload, err := json.Marshal(contents)
	if err != nil {
		return fmt.Errorf("marshal archive contents: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO day_archives (user_id, date, contents) VALUES (?, ?, ?)`,
		userID, date, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert archive: %w", err)
	}
	return nil
}

func (s *ArchiveStore) GetByDate(userID int64, date string) (*model.DayArchive, error) {
	var a model.DayArchive
	var payload string
	err := s.db.QueryRow(
		`SELECT id, user_id, date, contents, created_at FROM day_archives WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&a.ID, &a.UserID, &a.Date, &payload, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get archive: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &a.Contents); err != nil {
		return nil, fmt.Errorf("unmarshal archive contents: %w", err)
	}
	return &a, nil
}

// ListDates returns every archived date for a user, newest first.
func (s *ArchiveStore) ListDates(userID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT date FROM day_archives WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list archive dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan archive date: %w", err)
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

func (s *ArchiveStore) Delete(userID int64, date string) error {
	_, err := s.db.Exec(`DELETE FROM day_archives WHERE user_id = ? AND date = ?`, userID, date)
	if err != nil {
		return fmt.Errorf("delete archive: %w", err)
	}
	return nil
}
