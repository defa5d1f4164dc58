// Package deck defines the canonical deck model shared by the forge,
// codec, library, and API layers.
package deck

import (
	"github.com/sheljulian96-lab/ManaForge/internal/scryfall"
)

// Format is an MTG Arena play format.
type Format string

const (
	FormatStandard Format = "Standard"
	FormatAlchemy  Format = "Alchemy"
	FormatExplorer Format = "Explorer"
	FormatHistoric Format = "Historic"
	FormatTimeless Format = "Timeless"
	FormatBrawl    Format = "Brawl"
)

// Formats lists every supported Arena format.
var Formats = []Format{
	FormatStandard,
	FormatAlchemy,
	FormatExplorer,
	FormatHistoric,
	FormatTimeless,
	FormatBrawl,
}

// Valid reports whether f is a known Arena format.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// UsesCommander reports whether decks in this format carry a commander slot.
func (f Format) UsesCommander() bool {
	return f == FormatBrawl
}

// Item is a single deck entry: a card and how many copies of it.
// Count is always >= 1.
type Item struct {
	Count int           `json:"count"`
	Card  scryfall.Card `json:"card"`
}

// Deck is the canonical in-memory deck. Mainboard and sideboard preserve
// insertion order from their source (generation or parse); they are never
// sorted or deduplicated.
type Deck struct {
	Name         string   `json:"name"`
	Explanation  string   `json:"explanation"`
	StrategyTips []string `json:"strategyTips,omitempty"`
	Mechanics    []string `json:"mechanics,omitempty"`
	Commander    *Item    `json:"commander,omitempty"`
	Mainboard    []Item   `json:"mainboard"`
	Sideboard    []Item   `json:"sideboard"`
}

// Size returns the total number of cards in the mainboard.
func (d *Deck) Size() int {
	total := 0
	for _, item := range d.Mainboard {
		total += item.Count
	}
	return total
}

// Saved is a deck persisted to the local library.
type Saved struct {
	Deck

	ID        string `json:"id"`
	Format    Format `json:"format"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Archetype is one trending strategy identified by a meta scan.
type Archetype struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tier        string `json:"tier"`
	WinRate     string `json:"winRate,omitempty"`
}

// MetaSummary is the structured result of a format meta scan. It is not
// persisted; it lives only for the chat message that requested it.
type MetaSummary struct {
	Summary    string      `json:"summary"`
	Archetypes []Archetype `json:"archetypes"`
}

// Source is one grounding reference attached by the generative service,
// passed through to the UI unmodified in meaning.
type Source struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}
