package forge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/scryfall"
)

type fakeGenerator struct {
	text    string
	sources []deck.Source
	err     error

	gotSystem string
	gotPrompt string
	gotSchema *genai.Schema
}

func (f *fakeGenerator) generate(_ context.Context, system, prompt string, schema *genai.Schema) (string, []deck.Source, error) {
	f.gotSystem = system
	f.gotPrompt = prompt
	f.gotSchema = schema
	return f.text, f.sources, f.err
}

// fakeLookup resolves only the names in its catalog.
type fakeLookup struct {
	known map[string]bool
}

func (f *fakeLookup) Named(_ context.Context, name string) *scryfall.Card {
	if !f.known[name] {
		return nil
	}
	return &scryfall.Card{
		Name:            name,
		SetCode:         "dmu",
		CollectorNumber: "1",
		Legalities:      &scryfall.Legalities{Standard: "legal"},
	}
}

func serviceWith(gen *fakeGenerator, dir NamedLookup) *Service {
	s := NewService(nil, "", dir, nil)
	s.gen = gen
	return s
}

func TestGenerateDeckHydratesInOrder(t *testing.T) {
	gen := &fakeGenerator{
		text: `{
			"name": "Izzet Phoenix",
			"explanation": "Spells matter.",
			"strategyTips": ["Hold up counters."],
			"mechanics": ["Prowess"],
			"mainboard": [
				{"name": "Lightning Bolt", "count": 4},
				{"name": "Mountain", "count": 20},
				{"name": "Island", "count": 10}
			],
			"sideboard": [{"name": "Negate", "count": 2}]
		}`,
		sources: []deck.Source{{Title: "Untapped", URL: "https://example.com"}},
	}
	dir := &fakeLookup{known: map[string]bool{
		"Lightning Bolt": true, "Mountain": true, "Island": true, "Negate": true,
	}}

	result, err := serviceWith(gen, dir).GenerateDeck(context.Background(), "burn", deck.FormatStandard)
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}

	d := result.Deck
	if d.Name != "Izzet Phoenix" {
		t.Errorf("name = %q", d.Name)
	}
	wantOrder := []string{"Lightning Bolt", "Mountain", "Island"}
	if len(d.Mainboard) != len(wantOrder) {
		t.Fatalf("mainboard size = %d, want %d", len(d.Mainboard), len(wantOrder))
	}
	for i, name := range wantOrder {
		if d.Mainboard[i].Card.Name != name {
			t.Errorf("mainboard[%d] = %s, want %s", i, d.Mainboard[i].Card.Name, name)
		}
	}
	if len(d.Sideboard) != 1 || d.Sideboard[0].Count != 2 {
		t.Errorf("sideboard = %+v", d.Sideboard)
	}
	if result.Placeholders != 0 {
		t.Errorf("placeholders = %d, want 0", result.Placeholders)
	}
	if len(result.Sources) != 1 || result.Sources[0].Title != "Untapped" {
		t.Errorf("sources = %+v", result.Sources)
	}
}

func TestGenerateDeckSubstitutesPlaceholders(t *testing.T) {
	gen := &fakeGenerator{
		text: `{
			"name": "Bending Aggro",
			"explanation": "x",
			"mainboard": [
				{"name": "Mountain", "count": 20},
				{"name": "Sozin's Comet", "count": 4}
			]
		}`,
	}
	dir := &fakeLookup{known: map[string]bool{"Mountain": true}}

	result, err := serviceWith(gen, dir).GenerateDeck(context.Background(), "fire", deck.FormatStandard)
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}
	if result.Placeholders != 1 {
		t.Fatalf("placeholders = %d, want 1", result.Placeholders)
	}

	sub := result.Deck.Mainboard[1]
	if sub.Card.Name != "Sozin's Comet" {
		t.Errorf("placeholder keeps the generated name, got %q", sub.Card.Name)
	}
	if sub.Card.SetCode != "TLA" || sub.Card.CollectorNumber != "?" || sub.Card.ManaCost != "{?}" {
		t.Errorf("placeholder identity = %s/%s/%s", sub.Card.SetCode, sub.Card.CollectorNumber, sub.Card.ManaCost)
	}
	if sub.Card.Legalities == nil || sub.Card.Legalities.Brawl != "legal" {
		t.Error("placeholder must be renderable as legal everywhere")
	}
	if sub.Count != 4 {
		t.Errorf("placeholder count = %d, want 4", sub.Count)
	}
}

func TestGenerateDeckCommanderOnlyForBrawl(t *testing.T) {
	payload := `{
		"name": "Aang Brawl",
		"explanation": "x",
		"commander": {"name": "Avatar Aang", "count": 1},
		"mainboard": [{"name": "Island", "count": 30}]
	}`
	dir := &fakeLookup{known: map[string]bool{"Island": true, "Avatar Aang": true}}

	brawl, err := serviceWith(&fakeGenerator{text: payload}, dir).
		GenerateDeck(context.Background(), "aang", deck.FormatBrawl)
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}
	if brawl.Deck.Commander == nil || brawl.Deck.Commander.Card.Name != "Avatar Aang" {
		t.Errorf("brawl commander = %+v, want Avatar Aang", brawl.Deck.Commander)
	}

	standard, err := serviceWith(&fakeGenerator{text: payload}, dir).
		GenerateDeck(context.Background(), "aang", deck.FormatStandard)
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}
	if standard.Deck.Commander != nil {
		t.Errorf("standard deck has commander %+v, want none", standard.Deck.Commander)
	}
}

func TestGenerateDeckSkipsEmptyEntries(t *testing.T) {
	gen := &fakeGenerator{
		text: `{
			"name": "x",
			"explanation": "x",
			"mainboard": [
				{"name": "", "count": 4},
				{"name": "Island", "count": 0},
				{"name": "Island", "count": 2}
			]
		}`,
	}
	dir := &fakeLookup{known: map[string]bool{"Island": true}}

	result, err := serviceWith(gen, dir).GenerateDeck(context.Background(), "x", deck.FormatStandard)
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}
	if len(result.Deck.Mainboard) != 1 {
		t.Errorf("mainboard = %+v, want only the valid entry", result.Deck.Mainboard)
	}
	if result.Placeholders != 0 {
		t.Errorf("placeholders = %d, skipped entries are not substitutions", result.Placeholders)
	}
}

func TestGenerateDeckParseFailure(t *testing.T) {
	gen := &fakeGenerator{text: "not json"}
	_, err := serviceWith(gen, &fakeLookup{}).GenerateDeck(context.Background(), "x", deck.FormatStandard)
	if err == nil {
		t.Fatal("GenerateDeck() error = nil, want parse failure")
	}
}

func TestGenerateDeckGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	_, err := serviceWith(gen, &fakeLookup{}).GenerateDeck(context.Background(), "x", deck.FormatStandard)
	if err == nil {
		t.Fatal("GenerateDeck() error = nil, want generation failure")
	}
}

func TestGenerateDeckPromptCarriesFormat(t *testing.T) {
	gen := &fakeGenerator{text: `{"name":"x","explanation":"x","mainboard":[]}`}
	_, err := serviceWith(gen, &fakeLookup{}).GenerateDeck(context.Background(), "dragons", deck.FormatTimeless)
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}
	if !strings.Contains(gen.gotSystem, "Timeless") {
		t.Error("system instruction missing format")
	}
	if !strings.Contains(gen.gotPrompt, "dragons") {
		t.Error("prompt missing user theme")
	}
	if gen.gotSchema != deckSchema {
		t.Error("deck generation must use the deck schema")
	}
}

func TestScoutMeta(t *testing.T) {
	gen := &fakeGenerator{
		text: `{
			"summary": "Aggro dominates.",
			"archetypes": [
				{"name": "Mono Red", "description": "Fast.", "tier": "S", "winRate": "56%"}
			]
		}`,
		sources: []deck.Source{{Title: "Goldfish"}},
	}

	result, err := serviceWith(gen, &fakeLookup{}).ScoutMeta(context.Background(), deck.FormatHistoric)
	if err != nil {
		t.Fatalf("ScoutMeta() error = %v", err)
	}
	if result.Meta.Summary != "Aggro dominates." {
		t.Errorf("summary = %q", result.Meta.Summary)
	}
	if len(result.Meta.Archetypes) != 1 || result.Meta.Archetypes[0].Tier != "S" {
		t.Errorf("archetypes = %+v", result.Meta.Archetypes)
	}
	if gen.gotSchema != scoutSchema {
		t.Error("meta scan must use the scout schema")
	}
	if !strings.Contains(gen.gotSystem, "Historic") {
		t.Error("system instruction missing format")
	}
}

func TestScoutMetaParseFailure(t *testing.T) {
	gen := &fakeGenerator{text: "{{"}
	_, err := serviceWith(gen, &fakeLookup{}).ScoutMeta(context.Background(), deck.FormatStandard)
	if err == nil {
		t.Fatal("ScoutMeta() error = nil, want parse failure")
	}
}
