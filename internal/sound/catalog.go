package sound

import "github.com/lucidlog/lucidlog/internal/models"

// catalog is the static list of shippable alarm sounds. Files live under
// sounds/alarms/ relative to the player's asset directory; adding a sound
// is a catalog-only change.
var catalog = []models.Sound{
	{
		ID:          "gentle-rise",
		Name:        "Gentle Rise",
		File:        "sounds/alarms/gentle-rise.wav",
		Description: "Soft, gradual awakening",
	},
	{
		ID:          "morning-birds",
		Name:        "Morning Birds",
		File:        "sounds/alarms/morning-birds.wav",
		Description: "Natural birdsong",
	},
	{
		ID:          "dream-bells",
		Name:        "Dream Bells",
		File:        "sounds/alarms/dream-bells.wav",
		Description: "Mystical chimes",
	},
	{
		ID:          "classic-chime",
		Name:        "Classic Chime",
		File:        "sounds/alarms/classic-chime.wav",
		Description: "Traditional alarm tone",
	},
	{
		ID:          "ocean-waves",
		Name:        "Ocean Waves",
		File:        "sounds/alarms/ocean-waves.wav",
		Description: "Gentle ocean sounds",
	},
}

// DefaultSoundID is the sound new settings are created with.
const DefaultSoundID = "gentle-rise"

// Catalog returns the available alarm sounds.
func Catalog() []models.Sound {
	out := make([]models.Sound, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by id.
func Lookup(id string) (models.Sound, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return models.Sound{}, false
}
