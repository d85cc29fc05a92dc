package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"streamai/config"
	"streamai/models"
)

const (
	profilesTable  = "profiles"
	watchlistTable = "my_list"

	readRetryAttempts = 3
)

// Client talks to the hosted record store over its REST dialect. Records are
// keyed tables addressed by query filters, with snake_case wire naming.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// profileRecord is the wire shape of a profile row.
type profileRecord struct {
	ID               string                  `json:"id"`
	AccountID        string                  `json:"account_id"`
	Name             string                  `json:"name"`
	Avatar           string                  `json:"avatar"`
	IsKids           bool                    `json:"is_kids"`
	Language         string                  `json:"language"`
	MaturitySetting  string                  `json:"maturity_setting"`
	AutoplayNext     bool                    `json:"autoplay_next"`
	AutoplayPreviews bool                    `json:"autoplay_previews"`
	PIN              *string                 `json:"pin"`
	DataUsage        string                  `json:"data_usage,omitempty"`
	SubtitleSettings models.SubtitleSettings `json:"subtitle_settings"`
	CreatedAt        time.Time               `json:"created_at,omitempty"`
	UpdatedAt        time.Time               `json:"updated_at,omitempty"`
}

// watchlistRecord is the wire shape of a saved-list row. The movie snapshot
// is stored verbatim under movie_data.
type watchlistRecord struct {
	ProfileID string       `json:"profile_id"`
	MovieID   string       `json:"movie_id"`
	MovieData models.Movie `json:"movie_data"`
	AddedAt   time.Time    `json:"added_at,omitempty"`
}

// NewClient creates a store client for the configured endpoint.
func NewClient(settings config.RemoteStoreSettings) *Client {
	timeout := time.Duration(settings.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(settings.URL, "/"),
		apiKey:     settings.APIKey,
	}
}

// setHeaders adds the auth and content headers every request needs.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) tableURL(table string, filters url.Values) string {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(filters) > 0 {
		u += "?" + filters.Encode()
	}
	return u
}

// get fetches rows matching the filters, retrying transient failures. Writes
// are never retried; reads are cheap and idempotent.
func (c *Client) get(ctx context.Context, table string, filters url.Values, out any) error {
	return retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table, filters), nil)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("store request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			err := fmt.Errorf("store read %s failed: %s - %s", table, resp.Status, strings.TrimSpace(string(body)))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Unrecoverable(err)
			}
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Unrecoverable(fmt.Errorf("decode %s response: %w", table, err))
		}
		return nil
	},
		retry.Attempts(readRetryAttempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

// write issues a single-shot mutation. The engine's failure policy for
// writes is log-and-continue at the caller, so there is no retry here.
func (c *Client) write(ctx context.Context, method, table string, filters url.Values, payload any, prefer string) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", table, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.tableURL(table, filters), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("store write %s failed: %s - %s", table, resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// ListProfiles returns the account's profiles in ascending id order. An
// account with no rows yields an empty slice.
func (c *Client) ListProfiles(ctx context.Context, accountID string) ([]models.Profile, error) {
	filters := url.Values{}
	filters.Set("account_id", "eq."+accountID)
	filters.Set("order", "id.asc")

	var records []profileRecord
	if err := c.get(ctx, profilesTable, filters, &records); err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(records))
	for _, rec := range records {
		profiles = append(profiles, rec.toProfile())
	}
	return profiles, nil
}

// UpsertProfile creates or replaces the profile record. The client-minted id
// is the merge key, so replaying a failed create is safe.
func (c *Client) UpsertProfile(ctx context.Context, profile models.Profile) error {
	return c.write(ctx, http.MethodPost, profilesTable, nil,
		profileRecordFrom(profile), "resolution=merge-duplicates")
}

// DeleteProfile removes the profile record and its watchlist rows.
func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	listFilters := url.Values{}
	listFilters.Set("profile_id", "eq."+id)
	if err := c.write(ctx, http.MethodDelete, watchlistTable, listFilters, nil, ""); err != nil {
		return err
	}

	filters := url.Values{}
	filters.Set("id", "eq."+id)
	return c.write(ctx, http.MethodDelete, profilesTable, filters, nil, "")
}

// ListWatchlist returns the profile's entries, most recently added first.
func (c *Client) ListWatchlist(ctx context.Context, profileID string) ([]models.WatchlistEntry, error) {
	filters := url.Values{}
	filters.Set("profile_id", "eq."+profileID)
	filters.Set("order", "added_at.desc")

	var records []watchlistRecord
	if err := c.get(ctx, watchlistTable, filters, &records); err != nil {
		return nil, err
	}

	entries := make([]models.WatchlistEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, models.WatchlistEntry{
			ProfileID: rec.ProfileID,
			MovieID:   rec.MovieID,
			Movie:     rec.MovieData,
			AddedAt:   rec.AddedAt,
		})
	}
	return entries, nil
}

// InsertWatchlistEntry stores an entry; duplicate pairs are ignored upstream.
func (c *Client) InsertWatchlistEntry(ctx context.Context, entry models.WatchlistEntry) error {
	record := watchlistRecord{
		ProfileID: entry.ProfileID,
		MovieID:   entry.MovieID,
		MovieData: entry.Movie,
		AddedAt:   entry.AddedAt,
	}
	return c.write(ctx, http.MethodPost, watchlistTable, nil, record, "resolution=ignore-duplicates")
}

// DeleteWatchlistEntry removes the entry keyed by (profileID, movieID).
func (c *Client) DeleteWatchlistEntry(ctx context.Context, profileID, movieID string) error {
	filters := url.Values{}
	filters.Set("profile_id", "eq."+profileID)
	filters.Set("movie_id", "eq."+movieID)
	return c.write(ctx, http.MethodDelete, watchlistTable, filters, nil, "")
}

func (rec profileRecord) toProfile() models.Profile {
	p := models.Profile{
		ID:               rec.ID,
		AccountID:        rec.AccountID,
		Name:             rec.Name,
		AvatarURL:        rec.Avatar,
		IsKids:           rec.IsKids,
		Language:         rec.Language,
		MaturitySetting:  rec.MaturitySetting,
		AutoplayNext:     rec.AutoplayNext,
		AutoplayPreviews: rec.AutoplayPreviews,
		PIN:              rec.PIN,
		DataUsage:        rec.DataUsage,
		SubtitleSettings: rec.SubtitleSettings,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	if p.Language == "" {
		p.Language = models.DefaultLanguage
	}
	if p.MaturitySetting == "" {
		p.MaturitySetting = models.DefaultMaturitySetting
	}
	return p
}

func profileRecordFrom(p models.Profile) profileRecord {
	return profileRecord{
		ID:               p.ID,
		AccountID:        p.AccountID,
		Name:             p.Name,
		Avatar:           p.AvatarURL,
		IsKids:           p.IsKids,
		Language:         p.Language,
		MaturitySetting:  p.MaturitySetting,
		AutoplayNext:     p.AutoplayNext,
		AutoplayPreviews: p.AutoplayPreviews,
		PIN:              p.PIN,
		DataUsage:        p.DataUsage,
		SubtitleSettings: p.SubtitleSettings,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
