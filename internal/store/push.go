package store

import (
	"database/sql"
	"fmt"

	"github.com/rfoley/parkwatch/internal/model"
)

// PushStore holds device registrations: at most one push delivery
// address per user.
type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

// Upsert registers or replaces the user's push subscription.
func (s *PushStore) Upsert(userID int64, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh_key, auth_key)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   endpoint = excluded.endpoint,
		   p256dh_key = excluded.p256dh_key,
		   auth_key = excluded.auth_key`,
		userID, endpoint, p256dh, auth,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}
	return s.GetByUser(userID)
}

func (s *PushStore) GetByUser(userID int64) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.QueryRow(
		`SELECT id, user_id, endpoint, p256dh_key, auth_key, created_at
		 FROM push_subscriptions WHERE user_id = ?`, userID,
	).Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return &sub, nil
}

// DeleteByUser retires the user's registration. Deleting an absent
// registration is a no-op.
func (s *PushStore) DeleteByUser(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}
