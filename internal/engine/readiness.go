package engine

import (
	"fmt"

	"github.com/rfoley/parkwatch/internal/livedata"
	"github.com/rfoley/parkwatch/internal/model"
)

// A ride qualifies while OPERATING or DOWN. DOWN is deliberate: a broken
// ride usually clears its queue, so "worth lining up now" includes it.
func statusReady(s livedata.RideStatus) bool {
	return s == livedata.StatusOperating || s == livedata.StatusDown
}

// EvaluateReadiness computes which rides currently satisfy the user's
// triggers and which of those are newly qualifying this cycle.
//
// newlyReady is in snapshot iteration order and contains only rides absent
// from previouslyNotified. currentlyReady is the full qualifying set; the
// caller must replace its stored notified set with it after dispatch,
// regardless of delivery success, so that a ride leaving and re-entering
// the set re-arms the notification.
func EvaluateReadiness(prefs map[string]model.RidePreference, snap *livedata.Snapshot, previouslyNotified map[string]struct{}) (newlyReady []livedata.Entry, currentlyReady map[string]struct{}) {
	currentlyReady = make(map[string]struct{})
	if snap == nil {
		return nil, currentlyReady
	}

	for _, entry := range snap.Entries {
		pref, ok := prefs[entry.RideID]
		if !ok || !pref.Enabled {
			continue
		}
		if !statusReady(entry.Status) {
			continue
		}
		if entry.WaitMinutes > pref.MaxWaitMinutes {
			continue
		}
		currentlyReady[entry.RideID] = struct{}{}
		if _, already := previouslyNotified[entry.RideID]; !already {
			newlyReady = append(newlyReady, entry)
		}
	}
	return newlyReady, currentlyReady
}

// ReadinessBody builds the push body for a set of newly ready rides. A
// single ride is named with its wait; several rides name the first and
// count the rest.
func ReadinessBody(newlyReady []livedata.Entry) string {
	switch len(newlyReady) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s is ready: %d min wait", newlyReady[0].Name, newlyReady[0].WaitMinutes)
	case 2:
		return fmt.Sprintf("%s (%d min) and 1 other are ready", newlyReady[0].Name, newlyReady[0].WaitMinutes)
	default:
		return fmt.Sprintf("%s (%d min) and %d others are ready", newlyReady[0].Name, newlyReady[0].WaitMinutes, len(newlyReady)-1)
	}
}
