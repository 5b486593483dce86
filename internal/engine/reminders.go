package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/rfoley/parkwatch/internal/model"
)

// finalWarningLead is the fixed offset of the second show reminder stage.
const finalWarningLead = 5 * time.Minute

// Reminder is one due notification produced by the reminder evaluator.
// The caller persists the corresponding flag flip and builds the push.
type Reminder struct {
	Category string
	UserID   int64
	ItemID   int64
	Title    string
	Body     string
}

// EvaluateShowReminders returns the reminders due for the given shows at
// now. Shows have two independent stages: the travel-time reminder fires
// at targetTime - travelTime, the final warning at targetTime - 5 minutes.
// Both thresholds use >=, so the boundary minute fires. Both stages can
// fire in the same cycle when travel time is short. Flags already set
// never fire again; nothing here resets a flag.
func EvaluateShowReminders(shows []model.Show, now time.Time) []Reminder {
	var due []Reminder
	for _, show := range shows {
		target := show.TargetTime.In(now.Location())

		reminderAt := target.Add(-time.Duration(show.TravelTimeMinutes) * time.Minute)
		if !show.Notified && !now.Before(reminderAt) {
			due = append(due, Reminder{
				Category: model.NotifTypeShowReminder,
				UserID:   show.UserID,
				ItemID:   show.ID,
				Title:    "Show Reminder",
				Body:     fmt.Sprintf("Time to head to %s. It starts at %s (%d min travel time)", show.Label, target.Format(time.Kitchen), show.TravelTimeMinutes),
			})
		}

		finalAt := target.Add(-finalWarningLead)
		if !show.FinalWarningNotified && !now.Before(finalAt) {
			due = append(due, Reminder{
				Category: model.NotifTypeShowFinal,
				UserID:   show.UserID,
				ItemID:   show.ID,
				Title:    "Starting Soon",
				Body:     fmt.Sprintf("%s starts in 5 minutes", show.Label),
			})
		}
	}
	return due
}

// EvaluateDiningReminders returns the single-stage reminders due for the
// given reservations at now.
func EvaluateDiningReminders(dining []model.DiningReservation, now time.Time) []Reminder {
	var due []Reminder
	for _, res := range dining {
		target := res.TargetTime.In(now.Location())
		reminderAt := target.Add(-time.Duration(res.TravelTimeMinutes) * time.Minute)
		if res.Notified || now.Before(reminderAt) {
			continue
		}
		due = append(due, Reminder{
			Category: model.NotifTypeDining,
			UserID:   res.UserID,
			ItemID:   res.ID,
			Title:    "Dining Reminder",
			Body:     fmt.Sprintf("Time to head to %s. Your reservation is at %s", res.Label, target.Format(time.Kitchen)),
		})
	}
	return due
}

// EvaluateLightningLaneReminders returns the single-stage reminders due
// for the day's lightning lanes at now. The map is keyed by ride id;
// iteration is by sorted key so output order is deterministic.
func EvaluateLightningLaneReminders(lanes map[string]model.LightningLane, now time.Time) []Reminder {
	rideIDs := make([]string, 0, len(lanes))
	for rideID := range lanes {
		rideIDs = append(rideIDs, rideID)
	}
	sort.Strings(rideIDs)

	var due []Reminder
	for _, rideID := range rideIDs {
		lane := lanes[rideID]
		target := lane.TargetTime.In(now.Location())
		reminderAt := target.Add(-time.Duration(lane.TravelTimeMinutes) * time.Minute)
		if lane.Notified || now.Before(reminderAt) {
			continue
		}
		label := lane.Label
		if label == "" {
			label = lane.RideID
		}
		due = append(due, Reminder{
			Category: model.NotifTypeLightningLane,
			UserID:   lane.UserID,
			ItemID:   lane.ID,
			Title:    "Lightning Lane",
			Body:     fmt.Sprintf("Your Lightning Lane for %s opens at %s. Time to head over", label, target.Format(time.Kitchen)),
		})
	}
	return due
}
