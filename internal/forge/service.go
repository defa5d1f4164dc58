// Package forge turns natural-language prompts into fully hydrated decks
// and meta summaries via the Gemini API.
package forge

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/scryfall"
)

const deckSystemPrompt = `You are the Oracle of the Multiverse, a top-tier MTG Arena analyst and architect.
You have absolute knowledge of ALL cards currently available on MTG Arena, including expansion sets like "Duskmourn: House of Horror" (DSK) and the hypothetical "Avatar: The Last Airbender" (Set TLA/TLE).

SET KNOWLEDGE (DSK):
- Mechanics: Eerie (unlocked Room or Enchantment entry triggers), Impending (play for less, enters as non-creature with counters), Survival.
- Key Cards: Entity Tracker, Overlord cycles, Room cards like Central Elevator.

SET KNOWLEDGE (TLA):
- Mechanics: Airbend (blink/protection), Waterbend (mana/tapping), Earthbend (land transformation), Firebending (mana generation on attack).
- Key Cards: Avatar Aang, Ozai, Phoenix King, Sozin's Comet, Appa, Steadfast Guardian.

CRITICAL RULES:
1. Suggest decks that are HIGHLY competitive and "sweaty" for the chosen format: %s.
2. Ensure mana bases are optimized using Verges (Blazemire/Gloomlake) and Surveil lands.
3. Provide sophisticated strategic advice including when to hold spells and how to use specific mechanic synergies.
4. If format is 'Brawl', you MUST provide a 'commander' and 99 unique other cards.

Use Google Search to verify the very latest meta trends and win-rates.`

const scoutSystemPrompt = `You are a professional MTG Meta Analyst.
Use Google Search to find current top-tier decks, win rates, and tournament standings for MTG Arena %s.
Scrape data mentally from Untapped.gg, MTGGoldfish, and recent Pro Tour results.
Look specifically for how new mechanics from DSK and TLA are impacting the meta.
Return a summary of the meta and a list of identified winning archetypes with win rates if possible.`

// NamedLookup is the single-card directory lookup used for hydration.
type NamedLookup interface {
	Named(ctx context.Context, name string) *scryfall.Card
}

// Service generates decks and meta summaries.
type Service struct {
	gen generator
	dir NamedLookup
	log *zap.Logger
}

// NewService creates a forge service over the given Gemini client and
// card directory.
func NewService(client *genai.Client, model string, dir NamedLookup, log *zap.Logger) *Service {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		gen: &genaiGenerator{client: client, model: model},
		dir: dir,
		log: log,
	}
}

// DeckResult is a generated deck plus its grounding sources and the number
// of entries that could not be resolved against the directory and were
// substituted with placeholders.
type DeckResult struct {
	Deck         *deck.Deck    `json:"deck"`
	Sources      []deck.Source `json:"sources"`
	Placeholders int           `json:"placeholders"`
}

// MetaResult is a meta scan plus its grounding sources.
type MetaResult struct {
	Meta    *deck.MetaSummary `json:"meta"`
	Sources []deck.Source     `json:"sources"`
}

// rawEntry is one schema-conformant {name, count} pair.
type rawEntry struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

// rawDeck is the schema-conformant generation payload before hydration.
type rawDeck struct {
	Name         string     `json:"name"`
	Explanation  string     `json:"explanation"`
	StrategyTips []string   `json:"strategyTips"`
	Mechanics    []string   `json:"mechanics"`
	Commander    *rawEntry  `json:"commander"`
	Mainboard    []rawEntry `json:"mainboard"`
	Sideboard    []rawEntry `json:"sideboard"`
}

// GenerateDeck asks the model for a deck matching the prompt and format,
// then hydrates every entry into a full card record. A schema or parse
// failure is a hard error. An entry the directory cannot resolve gets a
// placeholder record instead so the UI can still render it.
func (s *Service) GenerateDeck(ctx context.Context, prompt string, format deck.Format) (*DeckResult, error) {
	system := fmt.Sprintf(deckSystemPrompt, format)
	contents := fmt.Sprintf("Forge a top-tier %s deck. Theme/Request: %s. Ensure you include strategic insights for the 2026 metagame.", format, prompt)

	text, sources, err := s.gen.generate(ctx, system, contents, deckSchema)
	if err != nil {
		return nil, err
	}

	var raw rawDeck
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse generated deck: %w", err)
	}

	result := &DeckResult{
		Deck: &deck.Deck{
			Name:         raw.Name,
			Explanation:  raw.Explanation,
			StrategyTips: raw.StrategyTips,
			Mechanics:    raw.Mechanics,
		},
		Sources: sources,
	}

	// Hydrate all boards concurrently; output order follows input order,
	// not completion order.
	var (
		commander    *deck.Item
		commanderSub bool
	)
	g, gctx := errgroup.WithContext(ctx)

	if format.UsesCommander() && raw.Commander != nil {
		entry := *raw.Commander
		g.Go(func() error {
			item, substituted := s.hydrate(gctx, entry)
			commander, commanderSub = item, substituted
			return nil
		})
	}

	mainboard, mainSubs := s.hydrateBoard(gctx, g, raw.Mainboard)
	sideboard, sideSubs := s.hydrateBoard(gctx, g, raw.Sideboard)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Deck.Commander = commander
	result.Deck.Mainboard = collect(mainboard)
	result.Deck.Sideboard = collect(sideboard)
	result.Placeholders = countTrue(mainSubs) + countTrue(sideSubs)
	if commanderSub {
		result.Placeholders++
	}

	s.log.Info("deck forged",
		zap.String("name", raw.Name),
		zap.String("format", string(format)),
		zap.Int("mainboard", len(result.Deck.Mainboard)),
		zap.Int("sideboard", len(result.Deck.Sideboard)),
		zap.Int("placeholders", result.Placeholders))

	return result, nil
}

// hydrateBoard schedules one hydration goroutine per entry, writing each
// result into its input slot.
func (s *Service) hydrateBoard(ctx context.Context, g *errgroup.Group, entries []rawEntry) ([]*deck.Item, []bool) {
	items := make([]*deck.Item, len(entries))
	subs := make([]bool, len(entries))
	for i, entry := range entries {
		g.Go(func() error {
			items[i], subs[i] = s.hydrate(ctx, entry)
			return nil
		})
	}
	return items, subs
}

// hydrate resolves one generated entry against the directory. On a miss it
// substitutes a placeholder record: the model may reference fictional or
// unreleased cards, and the UI must still render them.
func (s *Service) hydrate(ctx context.Context, entry rawEntry) (*deck.Item, bool) {
	count := int(entry.Count)
	if entry.Name == "" || count < 1 {
		return nil, false
	}

	if card := s.dir.Named(ctx, entry.Name); card != nil {
		return &deck.Item{Count: count, Card: *card}, false
	}

	return &deck.Item{Count: count, Card: placeholderCard(entry.Name)}, true
}

// placeholderCard fabricates a renderable record for a card the directory
// does not recognize.
func placeholderCard(name string) scryfall.Card {
	return scryfall.Card{
		Name:            name,
		SetCode:         "TLA",
		CollectorNumber: "?",
		ManaCost:        "{?}",
		CMC:             0,
		TypeLine:        "Legendary Creature — Avatar",
		OracleText:      "Bending synergy card.",
		Legalities: &scryfall.Legalities{
			Standard:      "legal",
			Alchemy:       "legal",
			Explorer:      "legal",
			Historic:      "legal",
			Timeless:      "legal",
			Brawl:         "legal",
			HistoricBrawl: "legal",
		},
	}
}

func collect(items []*deck.Item) []deck.Item {
	out := make([]deck.Item, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// ScoutMeta asks the model for a structured summary of the current meta
// for the given format. No hydration; schema or parse failure is a hard
// error.
func (s *Service) ScoutMeta(ctx context.Context, format deck.Format) (*MetaResult, error) {
	system := fmt.Sprintf(scoutSystemPrompt, format)
	contents := fmt.Sprintf("Search the web for the current top tier meta decks for MTG Arena %s in 2026. Provide win rates if available.", format)

	text, sources, err := s.gen.generate(ctx, system, contents, scoutSchema)
	if err != nil {
		return nil, err
	}

	var meta deck.MetaSummary
	if err := json.Unmarshal([]byte(text), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse meta summary: %w", err)
	}

	s.log.Info("meta scouted",
		zap.String("format", string(format)),
		zap.Int("archetypes", len(meta.Archetypes)))

	return &MetaResult{Meta: &meta, Sources: sources}, nil
}
