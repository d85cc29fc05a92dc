package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"streamai/models"
)

// Repository provides profile and watchlist operations on the local store.
// It implements the same contract as the remote store so the engine can run
// fully offline.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository using the provided database connection
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListProfiles returns an account's profiles in stable ascending id order.
func (r *Repository) ListProfiles(ctx context.Context, accountID string) ([]models.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, name, avatar, is_kids, language, maturity_setting,
		       autoplay_next, autoplay_previews, pin, data_usage, subtitle_settings,
		       created_at, updated_at
		FROM profiles
		WHERE account_id = ?
		ORDER BY id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var (
			p            models.Profile
			pin          sql.NullString
			subtitlesRaw string
		)
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.AvatarURL, &p.IsKids,
			&p.Language, &p.MaturitySetting, &p.AutoplayNext, &p.AutoplayPreviews,
			&pin, &p.DataUsage, &subtitlesRaw, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if pin.Valid && pin.String != "" {
			value := pin.String
			p.PIN = &value
		}
		if subtitlesRaw != "" && subtitlesRaw != "{}" {
			if err := json.Unmarshal([]byte(subtitlesRaw), &p.SubtitleSettings); err != nil {
				return nil, fmt.Errorf("parse subtitle settings for %s: %w", p.ID, err)
			}
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// UpsertProfile inserts the profile or replaces it in place when the id
// already exists. The id doubles as the idempotency key, so a retried create
// never produces a second row.
func (r *Repository) UpsertProfile(ctx context.Context, p models.Profile) error {
	subtitles, err := json.Marshal(p.SubtitleSettings)
	if err != nil {
		return fmt.Errorf("marshal subtitle settings: %w", err)
	}

	var pin any
	if p.PIN != nil {
		pin = *p.PIN
	}

	now := time.Now().UTC()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, account_id, name, avatar, is_kids, language,
			maturity_setting, autoplay_next, autoplay_previews, pin, data_usage,
			subtitle_settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			avatar = excluded.avatar,
			is_kids = excluded.is_kids,
			language = excluded.language,
			maturity_setting = excluded.maturity_setting,
			autoplay_next = excluded.autoplay_next,
			autoplay_previews = excluded.autoplay_previews,
			pin = excluded.pin,
			data_usage = excluded.data_usage,
			subtitle_settings = excluded.subtitle_settings,
			updated_at = excluded.updated_at`,
		p.ID, p.AccountID, p.Name, p.AvatarURL, p.IsKids, p.Language,
		p.MaturitySetting, p.AutoplayNext, p.AutoplayPreviews, pin, p.DataUsage,
		string(subtitles), createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.ID, err)
	}
	return nil
}

// DeleteProfile removes a profile and its watchlist entries.
func (r *Repository) DeleteProfile(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM my_list WHERE profile_id = ?", id); err != nil {
		return fmt.Errorf("delete watchlist for %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return tx.Commit()
}

// ListWatchlist returns a profile's saved entries, most recently added first.
func (r *Repository) ListWatchlist(ctx context.Context, profileID string) ([]models.WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT profile_id, movie_id, movie_data, added_at
		FROM my_list
		WHERE profile_id = ?
		ORDER BY added_at DESC, movie_id DESC`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchlistEntry
	for rows.Next() {
		var (
			entry    models.WatchlistEntry
			movieRaw string
		)
		if err := rows.Scan(&entry.ProfileID, &entry.MovieID, &movieRaw, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		if err := json.Unmarshal([]byte(movieRaw), &entry.Movie); err != nil {
			return nil, fmt.Errorf("parse movie snapshot %s: %w", entry.MovieID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return entries, nil
}

// InsertWatchlistEntry stores an entry, ignoring duplicates of the
// (profile_id, movie_id) pair.
func (r *Repository) InsertWatchlistEntry(ctx context.Context, entry models.WatchlistEntry) error {
	movieRaw, err := json.Marshal(entry.Movie)
	if err != nil {
		return fmt.Errorf("marshal movie snapshot: %w", err)
	}

	addedAt := entry.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO my_list (profile_id, movie_id, movie_data, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(profile_id, movie_id) DO NOTHING`,
		entry.ProfileID, entry.MovieID, string(movieRaw), addedAt)
	if err != nil {
		return fmt.Errorf("insert watchlist entry %s/%s: %w", entry.ProfileID, entry.MovieID, err)
	}
	return nil
}

// DeleteWatchlistEntry removes the entry keyed by (profileID, movieID).
func (r *Repository) DeleteWatchlistEntry(ctx context.Context, profileID, movieID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM my_list WHERE profile_id = ? AND movie_id = ?", profileID, movieID)
	if err != nil {
		return fmt.Errorf("delete watchlist entry %s/%s: %w", profileID, movieID, err)
	}
	return nil
}
