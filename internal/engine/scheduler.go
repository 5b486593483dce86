package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rfoley/parkwatch/internal/livedata"
	"github.com/rfoley/parkwatch/internal/model"
	"github.com/rfoley/parkwatch/internal/parkday"
	"github.com/rfoley/parkwatch/internal/push"
	"github.com/rfoley/parkwatch/internal/store"
)

const (
	tickInterval  = 60 * time.Second
	sweepInterval = 60 * time.Second
)

// Stores bundles the persistence the engine reads and writes.
type Stores struct {
	Users     *store.UserStore
	Prefs     *store.PreferenceStore
	Notified  *store.NotifiedStore
	Schedules *store.ScheduleStore
	PushSubs  *store.PushStore
	Archives  *store.ArchiveStore
}

// Scheduler drives the two periodic responsibilities: the minute tick
// (snapshot refresh, readiness and reminder evaluation, dispatch) and
// the daily archival sweep. A tick kind never overlaps itself: if a
// tick is still running when the next fires, the next is skipped.
type Scheduler struct {
	clock      *parkday.Clock
	live       *livedata.Service
	stores     Stores
	dispatcher *Dispatcher
	archiver   *Archiver
	locks      *userLocks
	onSnapshot func(*livedata.Snapshot)
	logger     *slog.Logger

	tickMu  sync.Mutex
	sweepMu sync.Mutex

	lastSweepMu sync.Mutex
	lastSweep   string

	mu     sync.RWMutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler wires the engine together. onSnapshot, if non-nil, is
// invoked with each cycle's merged snapshot (the websocket feed hangs
// off it). exporter may be nil to disable archive export.
func NewScheduler(clock *parkday.Clock, live *livedata.Service, stores Stores, gateway Gateway, exporter Exporter, onSnapshot func(*livedata.Snapshot), logger *slog.Logger) *Scheduler {
	locks := newUserLocks()
	return &Scheduler{
		clock:      clock,
		live:       live,
		stores:     stores,
		dispatcher: NewDispatcher(gateway, stores.PushSubs, logger.With("component", "dispatcher")),
		archiver:   newArchiver(stores.Schedules, stores.Archives, exporter, locks, logger.With("component", "archiver")),
		locks:      locks,
		onSnapshot: onSnapshot,
		logger:     logger,
	}
}

// Start begins both tick loops. Stop waits for in-flight ticks.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()

	go func() {
		defer wg.Done()
		// Run once at startup so a midnight missed while the process
		// was down is archived immediately.
		s.SweepTick(ctx)
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepTick(ctx)
			}
		}
	}()

	go func() {
		wg.Wait()
		close(s.done)
	}()
}

// Stop cancels the tick loops and waits for them to finish.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick runs one evaluation cycle: refresh the snapshot, evaluate every
// user, dispatch what came due. Skipped if the previous cycle is still
// running.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.tickMu.TryLock() {
		s.logger.Warn("evaluation tick still running, skipping")
		return
	}
	defer s.tickMu.Unlock()

	snap, errs := s.live.GetAll(ctx)
	for _, err := range errs {
		s.logger.Warn("live data fetch", "error", err)
	}
	if s.onSnapshot != nil && len(snap.Entries) > 0 {
		s.onSnapshot(snap)
	}

	userIDs, err := s.stores.Users.ListIDs()
	if err != nil {
		s.logger.Error("list users", "error", err)
		return
	}

	now := s.clock.Now()
	today := s.clock.Today()

	var msgs []push.Message
	for _, userID := range userIDs {
		msgs = append(msgs, s.evaluateUser(userID, snap, now, today)...)
	}

	s.dispatcher.Dispatch(ctx, msgs)
}

// SweepTick runs the archival sweep if the park-local day has rolled
// over since the last successful sweep.
func (s *Scheduler) SweepTick(ctx context.Context) {
	if !s.sweepMu.TryLock() {
		return
	}
	defer s.sweepMu.Unlock()

	today := s.clock.Today()
	s.lastSweepMu.Lock()
	last := s.lastSweep
	s.lastSweepMu.Unlock()
	if last == today {
		return
	}

	s.archiver.Sweep(ctx, today)

	s.lastSweepMu.Lock()
	s.lastSweep = today
	s.lastSweepMu.Unlock()
}

// evaluateUser runs both evaluators for one user and returns the push
// messages that came due. All per-user errors are logged and contained
// here; one user's failure never blocks the rest of the tick.
func (s *Scheduler) evaluateUser(userID int64, snap *livedata.Snapshot, now time.Time, today string) []push.Message {
	lock := s.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	sub, err := s.stores.PushSubs.GetByUser(userID)
	if err != nil {
		s.logger.Error("get push subscription", "user_id", userID, "error", err)
		return nil
	}
	if sub == nil {
		// No delivery address: nothing to emit, and flags stay unset so
		// a later registration still receives anything still due.
		return nil
	}

	var msgs []push.Message
	msgs = append(msgs, s.evaluateReadiness(userID, *sub, snap)...)
	msgs = append(msgs, s.evaluateReminders(userID, *sub, now, today)...)
	return msgs
}

func (s *Scheduler) evaluateReadiness(userID int64, sub model.PushSubscription, snap *livedata.Snapshot) []push.Message {
	prefs, err := s.stores.Prefs.MapByUser(userID)
	if err != nil {
		s.logger.Error("load ride preferences", "user_id", userID, "error", err)
		return nil
	}
	if len(prefs) == 0 {
		return nil
	}

	prev, err := s.stores.Notified.Get(userID)
	if err != nil {
		s.logger.Error("load notified set", "user_id", userID, "error", err)
		return nil
	}

	newlyReady, currentlyReady := EvaluateReadiness(prefs, snap, prev)

	// Replace wholesale every cycle, regardless of delivery outcome: a
	// ride leaving the set re-arms automatically.
	if err := s.stores.Notified.Replace(userID, currentlyReady); err != nil {
		s.logger.Error("replace notified set", "user_id", userID, "error", err)
	}

	if len(newlyReady) == 0 {
		return nil
	}
	return []push.Message{{
		UserID:       userID,
		Category:     model.NotifTypeRideReady,
		Subscription: sub,
		Payload: push.Payload{
			Title: "Ride Ready",
			Body:  ReadinessBody(newlyReady),
			URL:   "/waits",
			Tag:   "ride-ready",
		},
	}}
}

func (s *Scheduler) evaluateReminders(userID int64, sub model.PushSubscription, now time.Time, today string) []push.Message {
	var due []Reminder

	shows, err := s.stores.Schedules.ListShows(userID, today)
	if err != nil {
		s.logger.Error("list shows", "user_id", userID, "error", err)
	} else {
		due = append(due, EvaluateShowReminders(shows, now)...)
	}

	dining, err := s.stores.Schedules.ListDining(userID, today)
	if err != nil {
		s.logger.Error("list dining", "user_id", userID, "error", err)
	} else {
		due = append(due, EvaluateDiningReminders(dining, now)...)
	}

	lanes, err := s.stores.Schedules.MapLanes(userID, today)
	if err != nil {
		s.logger.Error("list lightning lanes", "user_id", userID, "error", err)
	} else {
		due = append(due, EvaluateLightningLaneReminders(lanes, now)...)
	}

	var msgs []push.Message
	for _, reminder := range due {
		// Flip the flag before dispatch: the suppression contract is
		// per evaluation, not per acknowledged delivery.
		if err := s.markNotified(reminder); err != nil {
			s.logger.Error("mark reminder notified", "user_id", userID, "item_id", reminder.ItemID, "error", err)
			continue
		}
		msgs = append(msgs, push.Message{
			UserID:       userID,
			Category:     reminder.Category,
			Subscription: sub,
			Payload: push.Payload{
				Title: reminder.Title,
				Body:  reminder.Body,
				URL:   "/schedule",
				Tag:   fmt.Sprintf("%s-%d", reminder.Category, reminder.ItemID),
			},
		})
	}
	return msgs
}

func (s *Scheduler) markNotified(r Reminder) error {
	switch r.Category {
	case model.NotifTypeShowReminder:
		return s.stores.Schedules.MarkShowNotified(r.ItemID)
	case model.NotifTypeShowFinal:
		return s.stores.Schedules.MarkShowFinalWarning(r.ItemID)
	case model.NotifTypeDining:
		return s.stores.Schedules.MarkDiningNotified(r.ItemID)
	case model.NotifTypeLightningLane:
		return s.stores.Schedules.MarkLaneNotified(r.ItemID)
	default:
		return fmt.Errorf("unknown reminder category %q", r.Category)
	}
}
