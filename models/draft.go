package models

import (
	"strings"
	"time"
)

// Draft holds the transient, unsaved form state for a profile being added or
// edited. It is a plain value passed into and returned from session
// transitions; nothing mutates it behind the caller's back.
type Draft struct {
	Name             string `json:"name"`
	AvatarURL        string `json:"avatarUrl"`
	IsKids           bool   `json:"isKids"`
	Language         string `json:"language"`
	MaturitySetting  string `json:"maturitySetting"`
	AutoplayNext     bool   `json:"autoplayNext"`
	AutoplayPreviews bool   `json:"autoplayPreviews"`
	PINLocked        bool   `json:"pinLocked"`
	PIN              string `json:"pin"`
}

// NewDraft returns a fresh draft for the ADD workflow.
func NewDraft(avatarURL string) Draft {
	return Draft{
		AvatarURL:        avatarURL,
		Language:         DefaultLanguage,
		MaturitySetting:  DefaultMaturitySetting,
		AutoplayNext:     true,
		AutoplayPreviews: true,
	}
}

// DraftFromProfile seeds an EDIT draft from a profile's persisted values.
func DraftFromProfile(p Profile) Draft {
	d := Draft{
		Name:             p.Name,
		AvatarURL:        p.AvatarURL,
		IsKids:           p.IsKids,
		Language:         p.Language,
		MaturitySetting:  p.MaturitySetting,
		AutoplayNext:     p.AutoplayNext,
		AutoplayPreviews: p.AutoplayPreviews,
		PINLocked:        p.Locked(),
	}
	if p.PIN != nil {
		d.PIN = *p.PIN
	}
	return d
}

// Valid reports whether the draft can be saved. Saving is blocked while the
// name is empty or whitespace-only.
func (d Draft) Valid() bool {
	return strings.TrimSpace(d.Name) != ""
}

// NormalizePIN resolves the draft's lock state into a persistable PIN value.
// Lock off yields nil. Lock on with a valid 4-digit PIN keeps it; lock on
// with no digits falls back to fallbackPIN. Anything else (a partial or
// malformed entry) is normalized to no lock, never to a partial lock.
func (d Draft) NormalizePIN(fallbackPIN string) *string {
	if !d.PINLocked {
		return nil
	}
	if ValidPIN(d.PIN) {
		pin := d.PIN
		return &pin
	}
	if d.PIN == "" && ValidPIN(fallbackPIN) {
		pin := fallbackPIN
		return &pin
	}
	return nil
}

// Apply writes the draft's fields onto an existing profile, leaving identity
// and timestamps for the caller. The PIN invariant is enforced here.
func (d Draft) Apply(p Profile, fallbackPIN string) Profile {
	p.Name = d.Name
	p.AvatarURL = d.AvatarURL
	p.IsKids = d.IsKids
	p.Language = d.Language
	p.MaturitySetting = d.MaturitySetting
	p.AutoplayNext = d.AutoplayNext
	p.AutoplayPreviews = d.AutoplayPreviews
	p.PIN = d.NormalizePIN(fallbackPIN)
	if p.DataUsage == "" {
		p.DataUsage = DefaultDataUsage
	}
	if p.SubtitleSettings == (SubtitleSettings{}) {
		p.SubtitleSettings = DefaultSubtitleSettings()
	}
	p.UpdatedAt = time.Now().UTC()
	return p
}

// ValidPIN reports whether s is exactly four numeric digits.
func ValidPIN(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
