package profiles

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"streamai/models"
	"streamai/services/remotestore"
)

// Repository loads and saves profiles against the record store. It favors
// local availability over remote confirmation: reads degrade to empty,
// creates proceed with the client-minted id, and update/delete errors are
// returned for the caller to acknowledge and move past.
type Repository struct {
	store       remotestore.Store
	fallbackPIN string
}

// NewRepository creates a profile repository over the given store. The
// fallback PIN is persisted when Profile Lock is enabled without digits.
func NewRepository(store remotestore.Store, fallbackPIN string) *Repository {
	return &Repository{store: store, fallbackPIN: fallbackPIN}
}

// List returns the account's profiles in stable ascending id order. A failed
// remote read yields an empty list, never an error; the UI must stay usable.
func (r *Repository) List(ctx context.Context, accountID string) []models.Profile {
	profiles, err := r.store.ListProfiles(ctx, accountID)
	if err != nil {
		log.Printf("[profiles] list failed for account %s: %v", accountID, err)
		return []models.Profile{}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles
}

// Create persists a new profile built from the draft. The id is minted
// client-side before the remote write and doubles as the idempotency key, so
// the profile keeps a single identity whether or not the write lands. On
// remote failure the locally built profile is returned anyway.
func (r *Repository) Create(ctx context.Context, accountID string, draft models.Draft) models.Profile {
	now := time.Now().UTC()
	profile := draft.Apply(models.Profile{
		ID:        uuid.NewString(),
		AccountID: accountID,
		CreatedAt: now,
	}, r.fallbackPIN)

	r.logPINFallback(draft, profile)

	if err := r.store.UpsertProfile(ctx, profile); err != nil {
		log.Printf("[profiles] create failed for %s, keeping local copy: %v", profile.ID, err)
	}
	return profile
}

// Update applies the draft to the existing profile and persists it. The
// updated profile is always returned; a non-nil error reports a remote write
// that did not land, which callers are expected to log and ignore.
func (r *Repository) Update(ctx context.Context, existing models.Profile, draft models.Draft) (models.Profile, error) {
	profile := draft.Apply(existing, r.fallbackPIN)
	r.logPINFallback(draft, profile)

	err := r.store.UpsertProfile(ctx, profile)
	return profile, err
}

// Delete removes the profile record. Same contract as Update: the error is
// informational, not blocking.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.store.DeleteProfile(ctx, id)
}

func (r *Repository) logPINFallback(draft models.Draft, profile models.Profile) {
	if draft.PINLocked && draft.PIN == "" && profile.PIN != nil {
		log.Printf("[profiles] lock enabled without digits for %s; applying configured fallback pin", profile.ID)
	}
}
