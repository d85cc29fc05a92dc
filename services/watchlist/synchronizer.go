package watchlist

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"streamai/models"
	"streamai/services/remotestore"
)

const defaultWriteTimeout = 10 * time.Second

// Synchronizer maintains the in-memory watchlist for the currently active
// profile. Local mutations are applied synchronously and are the source of
// truth for rendering; matching remote writes are detached fire-and-forget
// tasks whose failures are logged, never rolled back. Divergence after a
// failed write is bounded to one profile's list and heals on the next Load.
type Synchronizer struct {
	store        remotestore.Store
	writeTimeout time.Duration

	mu        sync.Mutex
	profileID string
	entries   []models.WatchlistEntry

	writes conc.WaitGroup
}

// NewSynchronizer creates a synchronizer over the given store.
func NewSynchronizer(store remotestore.Store) *Synchronizer {
	return &Synchronizer{store: store, writeTimeout: defaultWriteTimeout}
}

// Load replaces the in-memory set wholesale with the profile's stored
// entries. A failed read or an empty profile id yields an empty set.
func (s *Synchronizer) Load(ctx context.Context, profileID string) []models.WatchlistEntry {
	if profileID == "" {
		s.Reset()
		return nil
	}

	entries, err := s.store.ListWatchlist(ctx, profileID)
	if err != nil {
		log.Printf("[watchlist] load failed for %s: %v", profileID, err)
		entries = nil
	}

	s.mu.Lock()
	s.profileID = profileID
	s.entries = entries
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	log.Printf("[watchlist] loaded %d entries for profile %s", len(snapshot), profileID)
	return snapshot
}

// Reset drops the set to empty without remote traffic. Used when no profile
// is active; the remote entries are not destroyed, just not loaded.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.profileID = ""
	s.entries = nil
	s.mu.Unlock()
}

// Toggle flips the movie's membership, strictly by presence of its id.
// Present: remove locally, then issue a remote delete. Absent: insert at the
// front, then issue a remote insert with the full snapshot. The local
// mutation completes under the lock before the remote write is even queued,
// so two rapid toggles on the same item resolve by last local intent even if
// their remote calls race. A no-op when no profile is active.
func (s *Synchronizer) Toggle(movie models.Movie) {
	s.mu.Lock()
	if s.profileID == "" {
		s.mu.Unlock()
		return
	}
	profileID := s.profileID

	if idx := s.indexLocked(movie.ID); idx >= 0 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
		s.mu.Unlock()

		s.writes.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
			defer cancel()
			if err := s.store.DeleteWatchlistEntry(ctx, profileID, movie.ID); err != nil {
				log.Printf("[watchlist] remote delete failed for %s/%s, local state kept: %v", profileID, movie.ID, err)
			}
		})
		return
	}

	entry := models.WatchlistEntry{
		ProfileID: profileID,
		MovieID:   movie.ID,
		Movie:     movie,
		AddedAt:   time.Now().UTC(),
	}
	s.entries = append([]models.WatchlistEntry{entry}, s.entries...)
	s.mu.Unlock()

	s.writes.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()
		if err := s.store.InsertWatchlistEntry(ctx, entry); err != nil {
			log.Printf("[watchlist] remote insert failed for %s/%s, local state kept: %v", profileID, movie.ID, err)
		}
	})
}

// Contains reports whether the movie is in the active set.
func (s *Synchronizer) Contains(movieID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(movieID) >= 0
}

// Entries returns a snapshot of the active set, most recently added first.
func (s *Synchronizer) Entries() []models.WatchlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Wait blocks until all queued remote writes have finished. Writes are not
// abortable once issued; this is for shutdown and tests, not cancellation.
func (s *Synchronizer) Wait() {
	s.writes.Wait()
}

func (s *Synchronizer) indexLocked(movieID string) int {
	for i, entry := range s.entries {
		if entry.MovieID == movieID {
			return i
		}
	}
	return -1
}

func (s *Synchronizer) snapshotLocked() []models.WatchlistEntry {
	out := make([]models.WatchlistEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
