package models

import (
	"fmt"
	"math/rand"
)

// AvatarCategory groups a titled set of avatar image references.
type AvatarCategory struct {
	Title   string   `json:"title"`
	Avatars []string `json:"avatars"`
}

// AvatarCatalog is the fixed, client-known avatar picker content. It is
// build-time configuration, not remote data.
var AvatarCatalog = []AvatarCategory{
	{
		Title: "The Classics",
		Avatars: []string{
			"https://api.dicebear.com/7.x/avataaars/svg?seed=Felix",
			"https://api.dicebear.com/7.x/avataaars/svg?seed=Aneka",
			"https://api.dicebear.com/7.x/avataaars/svg?seed=Mark",
			"https://api.dicebear.com/7.x/avataaars/svg?seed=Sasha",
			"https://api.dicebear.com/7.x/avataaars/svg?seed=Jasper",
			"https://api.dicebear.com/7.x/avataaars/svg?seed=Buster",
		},
	},
	{
		Title: "Sci-Fi & Future",
		Avatars: []string{
			"https://api.dicebear.com/7.x/bottts/svg?seed=Robot1",
			"https://api.dicebear.com/7.x/bottts/svg?seed=Robot2",
			"https://api.dicebear.com/7.x/bottts/svg?seed=Robot3",
			"https://api.dicebear.com/7.x/bottts/svg?seed=Robot4",
			"https://api.dicebear.com/7.x/bottts/svg?seed=Robot5",
			"https://api.dicebear.com/7.x/bottts/svg?seed=Robot6",
		},
	},
	{
		Title: "Playful Creatures",
		Avatars: []string{
			"https://api.dicebear.com/7.x/fun-emoji/svg?seed=Happy",
			"https://api.dicebear.com/7.x/fun-emoji/svg?seed=Cool",
			"https://api.dicebear.com/7.x/fun-emoji/svg?seed=Love",
			"https://api.dicebear.com/7.x/fun-emoji/svg?seed=Smart",
			"https://api.dicebear.com/7.x/fun-emoji/svg?seed=Wink",
			"https://api.dicebear.com/7.x/fun-emoji/svg?seed=Cute",
		},
	},
}

// RandomDefaultAvatar returns a randomly seeded avatar for a new profile.
func RandomDefaultAvatar() string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", rand.Intn(1000))
}
