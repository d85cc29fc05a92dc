package session

import (
	"context"
	"log"
	"sync"

	"streamai/models"
)

// watchlistSync is the slice of the watchlist synchronizer the session needs.
type watchlistSync interface {
	Load(ctx context.Context, profileID string) []models.WatchlistEntry
	Reset()
}

// ActiveSession holds the profile selected for the current app session. It is
// ephemeral and process-local; nothing here is persisted.
type ActiveSession struct {
	mu        sync.RWMutex
	profile   *models.Profile
	watchlist watchlistSync
}

// NewActiveSession creates an empty session wired to the watchlist.
func NewActiveSession(watchlist watchlistSync) *ActiveSession {
	return &ActiveSession{watchlist: watchlist}
}

// Activate installs the profile and loads its watchlist.
func (s *ActiveSession) Activate(ctx context.Context, profile models.Profile) {
	s.mu.Lock()
	copied := profile
	s.profile = &copied
	s.mu.Unlock()

	log.Printf("[session] activated profile %s (%s)", profile.ID, profile.Name)
	if s.watchlist != nil {
		s.watchlist.Load(ctx, profile.ID)
	}
}

// Clear removes the profile and drops the watchlist to empty. The remote
// entries are untouched; they are simply no longer loaded.
func (s *ActiveSession) Clear() {
	s.mu.Lock()
	s.profile = nil
	s.mu.Unlock()

	if s.watchlist != nil {
		s.watchlist.Reset()
	}
}

// Current returns the active profile, if any.
func (s *ActiveSession) Current() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return models.Profile{}, false
	}
	return *s.profile, true
}
