package models

import (
	"fmt"
	"strings"
)

// Mood is one of a fixed set of emotional states recorded by a check-in
type Mood string

const (
	MoodHappy       Mood = "Happy"
	MoodGrateful    Mood = "Grateful"
	MoodPeaceful    Mood = "Peaceful"
	MoodJoyful      Mood = "Joyful"
	MoodLoved       Mood = "Loved"
	MoodHopeful     Mood = "Hopeful"
	MoodCalm        Mood = "Calm"
	MoodExcited     Mood = "Excited"
	MoodContent     Mood = "Content"
	MoodProud       Mood = "Proud"
	MoodEnergized   Mood = "Energized"
	MoodInspired    Mood = "Inspired"
	MoodThoughtful  Mood = "Thoughtful"
	MoodQuiet       Mood = "Quiet"
	MoodReflective  Mood = "Reflective"
	MoodNostalgic   Mood = "Nostalgic"
	MoodAnxious     Mood = "Anxious"
	MoodSad         Mood = "Sad"
	MoodTired       Mood = "Tired"
	MoodLonely      Mood = "Lonely"
	MoodOverwhelmed Mood = "Overwhelmed"
)

// MoodInfo holds the display attributes of a mood
type MoodInfo struct {
	Label  string
	Flower string
	Color  string // hex, used for calendar cells
}

var moodOrder = []Mood{
	MoodHappy, MoodGrateful, MoodPeaceful, MoodJoyful, MoodLoved, MoodHopeful,
	MoodCalm, MoodExcited, MoodContent, MoodProud, MoodEnergized, MoodInspired,
	MoodThoughtful, MoodQuiet, MoodReflective, MoodNostalgic, MoodAnxious,
	MoodSad, MoodTired, MoodLonely, MoodOverwhelmed,
}

var moodCatalog = map[Mood]MoodInfo{
	MoodHappy:       {Label: "Happy", Flower: "Sunflower", Color: "#fde2b2"},
	MoodGrateful:    {Label: "Grateful", Flower: "Pink Rose", Color: "#ffcad4"},
	MoodPeaceful:    {Label: "Peaceful", Flower: "Lotus", Color: "#dcd3ff"},
	MoodJoyful:      {Label: "Joyful", Flower: "Yellow Daisy", Color: "#fde2b2"},
	MoodLoved:       {Label: "Loved", Flower: "Red Rose", Color: "#ffcad4"},
	MoodHopeful:     {Label: "Hopeful", Flower: "Cherry Blossom", Color: "#ffcad4"},
	MoodCalm:        {Label: "Calm", Flower: "Jasmine", Color: "#fefdfb"},
	MoodExcited:     {Label: "Excited", Flower: "Marigold", Color: "#fde2b2"},
	MoodContent:     {Label: "Content", Flower: "White Gerbera Daisy", Color: "#fefdfb"},
	MoodProud:       {Label: "Proud", Flower: "Yellow Rose", Color: "#fde2b2"},
	MoodEnergized:   {Label: "Energized", Flower: "Orange Lily", Color: "#fde2b2"},
	MoodInspired:    {Label: "Inspired", Flower: "Purple Tulip", Color: "#dcd3ff"},
	MoodThoughtful:  {Label: "Thoughtful", Flower: "Purple Iris", Color: "#dcd3ff"},
	MoodQuiet:       {Label: "Quiet", Flower: "Baby's Breath", Color: "#fefdfb"},
	MoodReflective:  {Label: "Reflective", Flower: "White Chrysanthemum", Color: "#fefdfb"},
	MoodNostalgic:   {Label: "Nostalgic", Flower: "Forget-Me-Not", Color: "#d1e8e2"},
	MoodAnxious:     {Label: "Anxious", Flower: "Lavender Stalk", Color: "#dcd3ff"},
	MoodSad:         {Label: "Sad", Flower: "Blue Hydrangea", Color: "#d1e8e2"},
	MoodTired:       {Label: "Tired", Flower: "Red Mushroom", Color: "#e57373"},
	MoodLonely:      {Label: "Lonely", Flower: "Single White Rose", Color: "#fefdfb"},
	MoodOverwhelmed: {Label: "Overwhelmed", Flower: "Cluster of Field Daisies", Color: "#fefdfb"},
}

// Moods returns every mood in display order.
func Moods() []Mood {
	out := make([]Mood, len(moodOrder))
	copy(out, moodOrder)
	return out
}

// Valid reports whether m is part of the catalogue.
func (m Mood) Valid() bool {
	_, ok := moodCatalog[m]
	return ok
}

// Info returns the display attributes for m. Unknown moods get their raw
// value as label and no flower.
func (m Mood) Info() MoodInfo {
	if info, ok := moodCatalog[m]; ok {
		return info
	}
	return MoodInfo{Label: string(m), Color: "#fefdfb"}
}

func (m Mood) String() string {
	return string(m)
}

// ParseMood resolves a mood name case-insensitively.
func ParseMood(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	for _, m := range moodOrder {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood: %q", s)
}
