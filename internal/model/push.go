package model

import "time"

// Notification category constants. Categories are independent: suppression
// of a ride alert never suppresses a show alert for the same user.
const (
	NotifTypeRideReady     = "ride_ready"
	NotifTypeShowReminder  = "show_reminder"
	NotifTypeShowFinal     = "show_final_warning"
	NotifTypeDining        = "dining_reminder"
	NotifTypeLightningLane = "lightning_lane_reminder"
)

// PushSubscription is a user's push delivery address. At most one live
// subscription per user; retired when the push service reports it gone.
type PushSubscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
