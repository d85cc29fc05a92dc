package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Movie is a denormalized catalog item. Watchlist entries carry the whole
// snapshot so the list still renders if the catalog item later changes or
// disappears upstream.
type Movie struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	Year           int      `json:"year,omitempty"`
	MatchScore     int      `json:"matchScore,omitempty"`
	Genre          []string `json:"genre,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Cast           []string `json:"cast,omitempty"`
	Creators       []string `json:"creators,omitempty"`
	MaturityRating string   `json:"maturityRating,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	TrailerURL     string   `json:"trailerUrl,omitempty"`
}

// UnmarshalJSON accepts catalog ids as either strings or numbers; snapshots
// written by older clients carry numeric ids.
func (m *Movie) UnmarshalJSON(data []byte) error {
	type alias Movie
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.ID) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.ID, &s); err == nil {
		m.ID = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(aux.ID, &n); err != nil {
		return fmt.Errorf("movie id is neither string nor number: %w", err)
	}
	m.ID = n.String()
	return nil
}

// WatchlistEntry is a profile-scoped saved content reference. At most one
// entry exists per (ProfileID, MovieID) pair.
type WatchlistEntry struct {
	ProfileID string    `json:"profileId"`
	MovieID   string    `json:"movieId"`
	Movie     Movie     `json:"movie"`
	AddedAt   time.Time `json:"addedAt"`
}
