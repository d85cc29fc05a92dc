package remotestore

import (
	"context"
	"log"

	"streamai/config"
	"streamai/internal/database"
	"streamai/models"
)

// Store is the authoritative persistence boundary for profiles and watchlist
// entries. Absence of records on read is not an error; callers own the
// failure policy for writes.
type Store interface {
	ListProfiles(ctx context.Context, accountID string) ([]models.Profile, error)
	UpsertProfile(ctx context.Context, profile models.Profile) error
	DeleteProfile(ctx context.Context, id string) error
	ListWatchlist(ctx context.Context, profileID string) ([]models.WatchlistEntry, error)
	InsertWatchlistEntry(ctx context.Context, entry models.WatchlistEntry) error
	DeleteWatchlistEntry(ctx context.Context, profileID, movieID string) error
}

var (
	_ Store = (*Client)(nil)
	_ Store = (*database.Repository)(nil)
)

// New selects the remote HTTP store when an endpoint is configured and the
// local database otherwise, so the engine stays usable offline.
func New(settings config.RemoteStoreSettings, local *database.Repository) Store {
	if settings.Enabled() {
		return NewClient(settings)
	}
	log.Printf("[remotestore] no endpoint configured; using local store")
	return local
}
