package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"streamai/models"
	watchlistsvc "streamai/services/watchlist"
)

type watchlistService interface {
	Toggle(movie models.Movie)
	Contains(movieID string) bool
	Entries() []models.WatchlistEntry
}

var _ watchlistService = (*watchlistsvc.Synchronizer)(nil)

// WatchlistHandler exposes the active profile's watchlist over HTTP.
type WatchlistHandler struct {
	Service watchlistService
}

func NewWatchlistHandler(s watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: s}
}

// RegisterRoutes mounts the watchlist endpoints on the router.
func (h *WatchlistHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/watchlist", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/watchlist/toggle", h.Toggle).Methods(http.MethodPost)
	r.HandleFunc("/api/watchlist/{movieId}", h.Contains).Methods(http.MethodGet)
}

// List returns the active profile's entries, newest first.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Entries())
}

// Toggle flips a movie's membership and returns the resulting state. The
// remote write happens in the background; the response reflects local state.
func (h *WatchlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var movie models.Movie
	if err := decodeBody(r, &movie); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if movie.ID == "" {
		http.Error(w, "movie id required", http.StatusBadRequest)
		return
	}

	h.Service.Toggle(movie)
	writeJSON(w, struct {
		InList  bool                    `json:"inList"`
		Entries []models.WatchlistEntry `json:"entries"`
	}{
		InList:  h.Service.Contains(movie.ID),
		Entries: h.Service.Entries(),
	})
}

// Contains reports a single movie's membership.
func (h *WatchlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		InList bool `json:"inList"`
	}{InList: h.Service.Contains(mux.Vars(r)["movieId"])})
}
