package engine

import (
	"context"
	"log/slog"

	"github.com/rfoley/parkwatch/internal/model"
	"github.com/rfoley/parkwatch/internal/parkday"
	"github.com/rfoley/parkwatch/internal/store"
)

// Exporter ships a newly archived day to external storage. Optional; a
// nil exporter disables export.
type Exporter interface {
	ExportDay(ctx context.Context, userID int64, date string, contents model.ArchiveContents) error
}

// Archiver moves schedule entries for past dates out of the live stores
// into the immutable archive.
type Archiver struct {
	schedules *store.ScheduleStore
	archives  *store.ArchiveStore
	exporter  Exporter
	locks     *userLocks
	logger    *slog.Logger
}

// newArchiver creates an archiver sharing the scheduler's per-user
// locks. exporter may be nil.
func newArchiver(schedules *store.ScheduleStore, archives *store.ArchiveStore, exporter Exporter, locks *userLocks, logger *slog.Logger) *Archiver {
	return &Archiver{
		schedules: schedules,
		archives:  archives,
		exporter:  exporter,
		locks:     locks,
		logger:    logger,
	}
}

// Sweep archives every (user, date) with live schedule content dated
// strictly before today, then removes the date from the live stores.
// Comparing against wall-clock today makes a missed run self-heal: the
// next sweep still catches everything stale. Failures are isolated per
// (user, date) so one bad day never blocks the rest.
func (a *Archiver) Sweep(ctx context.Context, today string) {
	stale, err := a.schedules.DatesBefore(today)
	if err != nil {
		a.logger.Error("list stale schedule dates", "error", err)
		return
	}

	for _, ud := range stale {
		if parkday.Before(today, ud.Date) || ud.Date == today {
			// DatesBefore already filters; guard anyway.
			continue
		}
		a.sweepDay(ctx, ud)
	}
}

func (a *Archiver) sweepDay(ctx context.Context, ud store.UserDate) {
	lock := a.locks.get(ud.UserID)
	lock.Lock()
	defer lock.Unlock()

	shows, err := a.schedules.ListShows(ud.UserID, ud.Date)
	if err != nil {
		a.logger.Error("archive: list shows", "user_id", ud.UserID, "date", ud.Date, "error", err)
		return
	}
	dining, err := a.schedules.ListDining(ud.UserID, ud.Date)
	if err != nil {
		a.logger.Error("archive: list dining", "user_id", ud.UserID, "date", ud.Date, "error", err)
		return
	}
	lanes, err := a.schedules.MapLanes(ud.UserID, ud.Date)
	if err != nil {
		a.logger.Error("archive: list lightning lanes", "user_id", ud.UserID, "date", ud.Date, "error", err)
		return
	}

	// Nothing to keep; just clear the live stores.
	if len(shows) == 0 && len(dining) == 0 && len(lanes) == 0 {
		if err := a.schedules.DeleteDay(ud.UserID, ud.Date); err != nil {
			a.logger.Error("archive: delete empty day", "user_id", ud.UserID, "date", ud.Date, "error", err)
		}
		return
	}

	contents := model.ArchiveContents{
		Shows:          shows,
		Dining:         dining,
		LightningLanes: lanes,
	}
	if err := a.archives.Create(ud.UserID, ud.Date, contents); err != nil {
		// Leave the live entries in place; the next sweep retries.
		a.logger.Error("archive: create snapshot", "user_id", ud.UserID, "date", ud.Date, "error", err)
		return
	}
	if err := a.schedules.DeleteDay(ud.UserID, ud.Date); err != nil {
		a.logger.Error("archive: delete day", "user_id", ud.UserID, "date", ud.Date, "error", err)
		return
	}

	a.logger.Info("archived day", "user_id", ud.UserID, "date", ud.Date,
		"shows", len(shows), "dining", len(dining), "lightning_lanes", len(lanes))

	if a.exporter != nil {
		if err := a.exporter.ExportDay(ctx, ud.UserID, ud.Date, contents); err != nil {
			// Export is best-effort; the local archive row is canonical.
			a.logger.Warn("archive: export", "user_id", ud.UserID, "date", ud.Date, "error", err)
		}
	}
}
