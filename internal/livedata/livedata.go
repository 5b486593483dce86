// Package livedata fetches the live attraction state for each monitored
// park and presents it as an immutable per-cycle snapshot. On upstream
// failure a park's last-known-good snapshot is served instead, so one bad
// poll never empties the evaluators' view of the world.
package livedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// RideStatus is the operational state reported upstream.
type RideStatus string

const (
	StatusOperating     RideStatus = "OPERATING"
	StatusDown          RideStatus = "DOWN"
	StatusRefurbishment RideStatus = "REFURBISHMENT"
	StatusClosed        RideStatus = "CLOSED"
	StatusUnknown       RideStatus = "UNKNOWN"
)

// Entry is one ride's state within a snapshot.
type Entry struct {
	RideID      string     `json:"ride_id"`
	Name        string     `json:"name"`
	Status      RideStatus `json:"status"`
	WaitMinutes int        `json:"wait_minutes"`
}

// Snapshot is a per-poll-cycle immutable view of a park's rides.
// Entries preserves upstream document order; ByID indexes the same
// entries for lookup.
type Snapshot struct {
	ParkID    string
	FetchedAt time.Time
	Stale     bool
	Entries   []Entry
	ByID      map[string]Entry
}

// Config holds the upstream API settings.
type Config struct {
	BaseURL string
	ParkIDs []string
}

// Service polls the upstream live-data API.
type Service struct {
	cfg    Config
	client *http.Client

	mu       sync.RWMutex
	lastGood map[string]*Snapshot
}

// NewService creates a live-data service for the configured parks.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		lastGood: make(map[string]*Snapshot),
	}
}

// GetSnapshot fetches the current snapshot for one park. On fetch or
// decode failure it returns the park's last-known-good snapshot marked
// stale; if none exists yet, the error is returned.
func (s *Service) GetSnapshot(ctx context.Context, parkID string) (*Snapshot, error) {
	snap, err := s.fetch(ctx, parkID)
	if err != nil {
		s.mu.RLock()
		cached := s.lastGood[parkID]
		s.mu.RUnlock()
		if cached == nil {
			return nil, err
		}
		stale := *cached
		stale.Stale = true
		return &stale, nil
	}

	s.mu.Lock()
	s.lastGood[parkID] = snap
	s.mu.Unlock()
	return snap, nil
}

// GetAll fetches all configured parks and merges their entries into a
// single snapshot view, preserving park order then upstream ride order.
// A park that fails with no cached fallback is skipped.
func (s *Service) GetAll(ctx context.Context) (*Snapshot, []error) {
	merged := &Snapshot{
		FetchedAt: time.Now(),
		ByID:      make(map[string]Entry),
	}
	var errs []error
	for _, parkID := range s.cfg.ParkIDs {
		snap, err := s.GetSnapshot(ctx, parkID)
		if err != nil {
			errs = append(errs, fmt.Errorf("park %s: %w", parkID, err))
			continue
		}
		if snap.Stale {
			merged.Stale = true
		}
		for _, e := range snap.Entries {
			merged.Entries = append(merged.Entries, e)
			merged.ByID[e.RideID] = e
		}
	}
	return merged, errs
}

type liveResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LiveData []struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		EntityType string `json:"entityType"`
		Status     string `json:"status"`
		Queue      struct {
			Standby struct {
				WaitTime *int `json:"waitTime"`
			} `json:"STANDBY"`
		} `json:"queue"`
	} `json:"liveData"`
}

func (s *Service) fetch(ctx context.Context, parkID string) (*Snapshot, error) {
	url := fmt.Sprintf("%s/entity/%s/live", s.cfg.BaseURL, parkID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build live data request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("live data request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("live data API returned status %d", resp.StatusCode)
	}

	var apiResp liveResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode live data response: %w", err)
	}

	snap := &Snapshot{
		ParkID:    parkID,
		FetchedAt: time.Now(),
		ByID:      make(map[string]Entry),
	}
	for _, item := range apiResp.LiveData {
		if item.EntityType != "ATTRACTION" {
			continue
		}
		e := Entry{
			RideID: item.ID,
			Name:   item.Name,
			Status: parseStatus(item.Status),
		}
		if item.Queue.Standby.WaitTime != nil {
			e.WaitMinutes = *item.Queue.Standby.WaitTime
		}
		snap.Entries = append(snap.Entries, e)
		snap.ByID[e.RideID] = e
	}
	return snap, nil
}

func parseStatus(s string) RideStatus {
	switch RideStatus(s) {
	case StatusOperating, StatusDown, StatusRefurbishment, StatusClosed:
		return RideStatus(s)
	default:
		return StatusUnknown
	}
}
