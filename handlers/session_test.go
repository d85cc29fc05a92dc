package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"streamai/handlers"
	"streamai/models"
	"streamai/services/profiles"
	"streamai/services/session"
	"streamai/services/watchlist"
	"streamai/utils"
)

type memStore struct {
	mu         sync.Mutex
	profiles   map[string]models.Profile
	watchlists map[string][]models.WatchlistEntry
}

func newMemStore() *memStore {
	return &memStore{
		profiles:   make(map[string]models.Profile),
		watchlists: make(map[string][]models.WatchlistEntry),
	}
}

func (m *memStore) ListProfiles(ctx context.Context, accountID string) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Profile
	for _, p := range m.profiles {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) UpsertProfile(ctx context.Context, profile models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
	return nil
}

func (m *memStore) DeleteProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, id)
	return nil
}

func (m *memStore) ListWatchlist(ctx context.Context, profileID string) ([]models.WatchlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.WatchlistEntry, len(m.watchlists[profileID]))
	copy(out, m.watchlists[profileID])
	return out, nil
}

func (m *memStore) InsertWatchlistEntry(ctx context.Context, entry models.WatchlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchlists[entry.ProfileID] = append([]models.WatchlistEntry{entry}, m.watchlists[entry.ProfileID]...)
	return nil
}

func (m *memStore) DeleteWatchlistEntry(ctx context.Context, profileID, movieID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.watchlists[profileID][:0]
	for _, entry := range m.watchlists[profileID] {
		if entry.MovieID != movieID {
			kept = append(kept, entry)
		}
	}
	m.watchlists[profileID] = kept
	return nil
}

type testServer struct {
	server *httptest.Server
	sync   *watchlist.Synchronizer
}

func newTestServer(t *testing.T, store *memStore) *testServer {
	t.Helper()
	syncer := watchlist.NewSynchronizer(store)
	active := session.NewActiveSession(syncer)
	repo := profiles.NewRepository(store, "0000")
	controller := session.NewController(repo, active, "acct-1", 5, 0)
	controller.Refresh(context.Background())

	router := utils.NewRouter()
	handlers.NewSessionHandler(controller, active).RegisterRoutes(router)
	handlers.NewWatchlistHandler(syncer).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testServer{server: server, sync: syncer}
}

type stateResponse struct {
	Mode          string           `json:"mode"`
	Profiles      []models.Profile `json:"profiles"`
	Draft         *models.Draft    `json:"draft"`
	EditingID     string           `json:"editingId"`
	ActiveProfile *models.Profile  `json:"activeProfile"`
	PINPrompt     *struct {
		ProfileID string `json:"profileId"`
		Entered   int    `json:"entered"`
		Failed    bool   `json:"failed"`
	} `json:"pinPrompt"`
}

func postJSON(t *testing.T, url string, body any) (*http.Response, stateResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	var state stateResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
			t.Fatalf("decode state: %v", err)
		}
	}
	return resp, state
}

func TestAddProfileOverHTTP(t *testing.T) {
	ts := newTestServer(t, newMemStore())
	base := ts.server.URL

	resp, state := postJSON(t, base+"/api/session/add", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", resp.StatusCode)
	}
	if state.Mode != "ADD" || state.Draft == nil {
		t.Fatalf("expected ADD mode with a draft, got %+v", state)
	}

	draft := *state.Draft
	draft.Name = "Kid1"
	req, err := http.NewRequest(http.MethodPut, base+"/api/session/draft", encodeBody(t, draft))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	putResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT draft: %v", err)
	}
	putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("draft: expected 200, got %d", putResp.StatusCode)
	}

	resp, state = postJSON(t, base+"/api/session/save", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", resp.StatusCode)
	}
	if state.Mode != "MANAGE" {
		t.Fatalf("expected MANAGE after save, got %s", state.Mode)
	}
	if len(state.Profiles) != 1 || state.Profiles[0].Name != "Kid1" {
		t.Fatalf("expected one profile named Kid1, got %v", state.Profiles)
	}
}

func TestSaveWithoutFormIsConflict(t *testing.T) {
	ts := newTestServer(t, newMemStore())

	resp, _ := postJSON(t, ts.server.URL+"/api/session/save", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for save outside a form, got %d", resp.StatusCode)
	}
}

func TestPINFlowOverHTTP(t *testing.T) {
	store := newMemStore()
	pin := "1234"
	store.profiles["p1"] = models.Profile{ID: "p1", AccountID: "acct-1", Name: "Parent", PIN: &pin}
	ts := newTestServer(t, store)
	base := ts.server.URL

	resp, state := postJSON(t, base+"/api/session/select", map[string]string{"id": "p1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select: expected 200, got %d", resp.StatusCode)
	}
	if state.PINPrompt == nil || state.PINPrompt.ProfileID != "p1" {
		t.Fatalf("expected pin prompt for p1, got %+v", state)
	}

	resp, _ = postJSON(t, base+"/api/session/pin", map[string]string{"digits": "1111"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("wrong pin: expected 403, got %d", resp.StatusCode)
	}

	resp, state = postJSON(t, base+"/api/session/pin", map[string]string{"digits": "1234"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("correct pin: expected 200, got %d", resp.StatusCode)
	}
	if state.PINPrompt != nil {
		t.Fatalf("expected overlay closed, got %+v", state.PINPrompt)
	}
	if state.ActiveProfile == nil || state.ActiveProfile.ID != "p1" {
		t.Fatalf("expected p1 active, got %+v", state.ActiveProfile)
	}
}

func TestSelectUnknownProfileIsNotFound(t *testing.T) {
	ts := newTestServer(t, newMemStore())

	resp, _ := postJSON(t, ts.server.URL+"/api/session/select", map[string]string{"id": "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAvatarCatalogEndpoint(t *testing.T) {
	ts := newTestServer(t, newMemStore())

	resp, err := http.Get(ts.server.URL + "/api/avatars")
	if err != nil {
		t.Fatalf("GET avatars: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var catalog []models.AvatarCategory
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(catalog) == 0 {
		t.Fatalf("expected avatar categories")
	}
	for _, category := range catalog {
		if category.Title == "" || len(category.Avatars) == 0 {
			t.Fatalf("expected populated category, got %+v", category)
		}
	}
}

func encodeBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &buf
}
