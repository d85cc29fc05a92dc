package models

import "time"

const (
	// DefaultLanguage is applied to new profiles and to records missing one.
	DefaultLanguage = "English"
	// DefaultMaturitySetting is applied to new profiles and to records missing one.
	DefaultMaturitySetting = "All Maturity Ratings"
	// DefaultDataUsage is the playback-quality preference assigned on save.
	DefaultDataUsage = "auto"
)

// Languages lists the display languages a profile can choose from.
var Languages = []string{"English", "Spanish", "French", "German", "Korean"}

// DataUsageOptions lists the valid playback-quality preferences.
var DataUsageOptions = []string{"auto", "low", "medium", "high"}

// Profile is a named viewing identity under one account, with its own
// preferences and an optional PIN lock. A nil PIN means the profile is
// unlocked; a non-nil PIN is always exactly four numeric digits.
type Profile struct {
	ID               string           `json:"id"`
	AccountID        string           `json:"accountId"`
	Name             string           `json:"name"`
	AvatarURL        string           `json:"avatarUrl"`
	IsKids           bool             `json:"isKids"`
	Language         string           `json:"language"`
	MaturitySetting  string           `json:"maturitySetting"`
	AutoplayNext     bool             `json:"autoplayNext"`
	AutoplayPreviews bool             `json:"autoplayPreviews"`
	PIN              *string          `json:"pin,omitempty"`
	DataUsage        string           `json:"dataUsage,omitempty"`
	SubtitleSettings SubtitleSettings `json:"subtitleSettings"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Locked reports whether the profile requires a PIN to activate.
func (p Profile) Locked() bool {
	return p.PIN != nil && *p.PIN != ""
}

// SubtitleSettings is the subtitle appearance bundle carried per profile.
// The engine persists it verbatim; rendering is someone else's problem.
type SubtitleSettings struct {
	Font       string `json:"font"`
	Color      string `json:"color"`
	Size       string `json:"size"`
	Shadow     string `json:"shadow"`
	Background string `json:"background"`
}

// DefaultSubtitleSettings returns the appearance assigned to new profiles.
func DefaultSubtitleSettings() SubtitleSettings {
	return SubtitleSettings{
		Font:       "Block",
		Color:      "white",
		Size:       "text-xl",
		Shadow:     "drop-shadow-md",
		Background: "transparent",
	}
}
