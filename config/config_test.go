package config_test

import (
	"path/filepath"
	"testing"

	"streamai/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	m := config.NewManager(filepath.Join(t.TempDir(), "settings.json"))

	settings, err := m.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if settings.Profiles.MaxProfiles != 5 {
		t.Fatalf("expected default max profiles 5, got %d", settings.Profiles.MaxProfiles)
	}
	if settings.Profiles.FallbackPIN != "0000" {
		t.Fatalf("expected default fallback pin, got %q", settings.Profiles.FallbackPIN)
	}
	if settings.RemoteStore.Enabled() {
		t.Fatalf("expected remote store disabled by default")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	m := config.NewManager(filepath.Join(t.TempDir(), "nested", "settings.json"))

	settings := config.DefaultSettings()
	settings.RemoteStore.URL = "https://store.example.com"
	settings.RemoteStore.APIKey = "key-123"
	settings.Profiles.MaxProfiles = 3

	if err := m.Save(settings); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.RemoteStore.URL != settings.RemoteStore.URL {
		t.Fatalf("expected url to round trip, got %q", loaded.RemoteStore.URL)
	}
	if !loaded.RemoteStore.Enabled() {
		t.Fatalf("expected remote store enabled")
	}
	if loaded.Profiles.MaxProfiles != 3 {
		t.Fatalf("expected max profiles 3, got %d", loaded.Profiles.MaxProfiles)
	}
}
