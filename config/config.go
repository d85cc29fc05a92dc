package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Settings is the persisted configuration for the session engine.
type Settings struct {
	RemoteStore RemoteStoreSettings `json:"remoteStore"`
	Database    DatabaseSettings    `json:"database"`
	Profiles    ProfileSettings     `json:"profiles"`
	Log         LogSettings         `json:"log"`
	Server      ServerSettings      `json:"server"`
}

// RemoteStoreSettings points at the authoritative backend. An empty or
// non-http URL selects the local fallback store instead.
type RemoteStoreSettings struct {
	URL            string `json:"url"`
	APIKey         string `json:"apiKey"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// Enabled reports whether the remote store should be used at all.
func (r RemoteStoreSettings) Enabled() bool {
	return strings.HasPrefix(r.URL, "http")
}

// DatabaseSettings configures the local fallback store.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// ProfileSettings holds profile lifecycle policy.
type ProfileSettings struct {
	// MaxProfiles caps how many profiles an account can hold.
	MaxProfiles int `json:"maxProfiles"`
	// FallbackPIN is persisted when Profile Lock is enabled without digits.
	// Security-relevant: it is deliberately configuration, not a constant.
	FallbackPIN string `json:"fallbackPin"`
	// PINSettleDelayMS is the pause between the fourth digit and the
	// comparison, so the UI can render the last digit first.
	PINSettleDelayMS int `json:"pinSettleDelayMs"`
}

// LogSettings configures process log rotation.
type LogSettings struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Addr string `json:"addr"`
}

// DefaultSettings returns the configuration used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		RemoteStore: RemoteStoreSettings{TimeoutSeconds: 10},
		Database:    DatabaseSettings{Path: "data/streamai.db"},
		Profiles: ProfileSettings{
			MaxProfiles:      5,
			FallbackPIN:      "0000",
			PINSettleDelayMS: 100,
		},
		Log: LogSettings{
			Path:       "data/streamai.log",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Server: ServerSettings{Addr: ":8080"},
	}
}

// Manager loads and saves the settings file.
type Manager struct {
	path string
	mu   sync.RWMutex
}

// NewManager creates a settings manager for the given file path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the settings file, returning defaults when it does not exist.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}

// Save writes the settings file, creating parent directories as needed.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
