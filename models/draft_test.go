package models_test

import (
	"testing"

	"streamai/models"
)

func TestNormalizePIN(t *testing.T) {
	cases := []struct {
		name     string
		locked   bool
		pin      string
		expected string // "" means nil
	}{
		{"lock off", false, "1234", ""},
		{"lock off empty", false, "", ""},
		{"lock on valid", true, "1234", "1234"},
		{"lock on empty falls back", true, "", "0000"},
		{"lock on partial drops lock", true, "12", ""},
		{"lock on non-numeric drops lock", true, "12ab", ""},
		{"lock on too long drops lock", true, "12345", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := models.Draft{Name: "Test", PINLocked: tc.locked, PIN: tc.pin}
			got := d.NormalizePIN("0000")
			if tc.expected == "" {
				if got != nil {
					t.Fatalf("expected nil pin, got %q", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected pin %q, got nil", tc.expected)
			}
			if *got != tc.expected {
				t.Fatalf("expected pin %q, got %q", tc.expected, *got)
			}
		})
	}
}

func TestDraftValid(t *testing.T) {
	if (models.Draft{Name: ""}).Valid() {
		t.Fatalf("expected empty name to be invalid")
	}
	if (models.Draft{Name: "   "}).Valid() {
		t.Fatalf("expected whitespace-only name to be invalid")
	}
	if !(models.Draft{Name: "Kid1"}).Valid() {
		t.Fatalf("expected non-empty name to be valid")
	}
}

func TestDraftApplyAlwaysSatisfiesPINInvariant(t *testing.T) {
	drafts := []models.Draft{
		{Name: "A", PINLocked: true, PIN: "9876"},
		{Name: "B", PINLocked: true, PIN: ""},
		{Name: "C", PINLocked: true, PIN: "98"},
		{Name: "D", PINLocked: false, PIN: "9876"},
	}

	for _, d := range drafts {
		p := d.Apply(models.Profile{ID: "p1"}, "0000")
		if p.PIN != nil && !models.ValidPIN(*p.PIN) {
			t.Fatalf("draft %q produced invalid pin %q", d.Name, *p.PIN)
		}
	}
}

func TestDraftApplyDefaults(t *testing.T) {
	d := models.NewDraft("https://example.com/avatar.svg")
	d.Name = "Kid1"

	p := d.Apply(models.Profile{ID: "p1"}, "0000")

	if p.DataUsage != models.DefaultDataUsage {
		t.Fatalf("expected default data usage, got %q", p.DataUsage)
	}
	if p.SubtitleSettings != models.DefaultSubtitleSettings() {
		t.Fatalf("expected default subtitle settings, got %+v", p.SubtitleSettings)
	}
	if p.Language != models.DefaultLanguage {
		t.Fatalf("expected default language, got %q", p.Language)
	}
	if !p.AutoplayNext || !p.AutoplayPreviews {
		t.Fatalf("expected autoplay defaults on")
	}
}

func TestDraftFromProfileRoundTrip(t *testing.T) {
	pin := "4321"
	p := models.Profile{
		ID:               "p1",
		Name:             "Night Owl",
		AvatarURL:        "https://example.com/a.svg",
		IsKids:           true,
		Language:         "Korean",
		MaturitySetting:  models.DefaultMaturitySetting,
		AutoplayNext:     false,
		AutoplayPreviews: true,
		PIN:              &pin,
	}

	d := models.DraftFromProfile(p)

	if d.Name != p.Name || d.AvatarURL != p.AvatarURL || !d.IsKids {
		t.Fatalf("draft did not mirror profile: %+v", d)
	}
	if !d.PINLocked || d.PIN != pin {
		t.Fatalf("expected locked draft carrying pin, got %+v", d)
	}
}
