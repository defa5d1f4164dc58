package deck

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sheljulian96-lab/ManaForge/internal/scryfall"
)

// arenaLineRegex matches one deck-list line: "1 Card Name (SET) 123" or
// just "1 Card Name". The name group is lazy so a trailing "(SET) number"
// suffix is split off when present, while parentheses inside the name
// itself still belong to the name.
var arenaLineRegex = regexp.MustCompile(`^(\d+)\s+(.+?)(?:\s+\((.+?)\)\s+(\d+))?$`)

// FormatArena renders a deck in the MTG Arena interchange format. It is a
// pure function of the deck and reproduces the format byte for byte:
//
//	Commander
//	1 Name (SET) 123
//
//	Deck
//	4 Name (SET) 123
//
//	Sideboard
//	1 Name (SET) 123
//
// The Commander block appears only when a commander is set and the
// Sideboard block only when the sideboard is non-empty. There is no
// trailing newline.
func FormatArena(d *Deck) string {
	var sb strings.Builder

	if d.Commander != nil {
		sb.WriteString("Commander\n")
		sb.WriteString(arenaLine(*d.Commander))
		sb.WriteString("\n\n")
	}

	sb.WriteString("Deck\n")
	for i, item := range d.Mainboard {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(arenaLine(item))
	}

	if len(d.Sideboard) > 0 {
		sb.WriteString("\n\nSideboard\n")
		for i, item := range d.Sideboard {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(arenaLine(item))
		}
	}

	return sb.String()
}

func arenaLine(item Item) string {
	return fmt.Sprintf("%d %s (%s) %s",
		item.Count, item.Card.Name,
		strings.ToUpper(item.Card.SetCode), item.Card.CollectorNumber)
}

// BatchResolver batch-resolves card names against the directory. Satisfied
// by *scryfall.Client.
type BatchResolver interface {
	GetCardsByNames(ctx context.Context, names []string) ([]scryfall.Card, int, error)
}

// Parser decodes Arena interchange text back into a canonical deck.
type Parser struct {
	resolver BatchResolver
}

// NewParser creates a parser that resolves card names via resolver.
func NewParser(resolver BatchResolver) *Parser {
	return &Parser{resolver: resolver}
}

// ParseResult is the outcome of decoding interchange text.
type ParseResult struct {
	Deck *Deck

	// Dropped counts entries that did not survive the import: lines that
	// failed to parse plus parsed entries whose name the directory could
	// not resolve.
	Dropped int
}

type rawItem struct {
	name    string
	count   int
	section string
}

// Parse decodes Arena interchange text. Section headers ("commander",
// "deck", "sideboard") are matched case-insensitively; text before any
// header is treated as mainboard. Blank lines are skipped and malformed
// lines are dropped rather than failing the import. A trailing
// "(SET) number" suffix is accepted but discarded: card identity is
// re-resolved by name through one batched directory lookup, so the live
// directory record wins over whatever printing the text referenced.
// Entries whose name the directory cannot resolve are dropped silently
// and counted in the result.
//
// Parse returns an error only on wholesale resolution failure (the whole
// batch lookup failing), never for individual bad lines.
func (p *Parser) Parse(ctx context.Context, text string) (*ParseResult, error) {
	var raw []rawItem
	dropped := 0
	section := "deck"

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "commander":
			section = "commander"
			continue
		case "deck":
			section = "deck"
			continue
		case "sideboard":
			section = "sideboard"
			continue
		}

		matches := arenaLineRegex.FindStringSubmatch(line)
		if matches == nil {
			dropped++
			continue
		}

		count, err := strconv.Atoi(matches[1])
		if err != nil || count < 1 {
			dropped++
			continue
		}

		raw = append(raw, rawItem{
			name:    strings.TrimSpace(matches[2]),
			count:   count,
			section: section,
		})
	}

	index, err := p.resolveIndex(ctx, raw)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Deck: &Deck{
			Name:        "Imported Deck",
			Explanation: "Manually imported via grimoire.",
			Mainboard:   []Item{},
			Sideboard:   []Item{},
		},
		Dropped: dropped,
	}

	for _, item := range raw {
		card, ok := index[strings.ToLower(item.name)]
		if !ok {
			result.Dropped++
			continue
		}

		deckItem := Item{Count: item.count, Card: card}
		switch item.section {
		case "commander":
			// Last commander line wins; the deck has a single slot.
			result.Deck.Commander = &deckItem
		case "sideboard":
			result.Deck.Sideboard = append(result.Deck.Sideboard, deckItem)
		default:
			result.Deck.Mainboard = append(result.Deck.Mainboard, deckItem)
		}
	}

	return result, nil
}

// resolveIndex issues exactly one batched lookup for all distinct names
// and builds a case-insensitive name index over the resolved records.
func (p *Parser) resolveIndex(ctx context.Context, raw []rawItem) (map[string]scryfall.Card, error) {
	seen := make(map[string]bool, len(raw))
	var names []string
	for _, item := range raw {
		key := strings.ToLower(item.name)
		if !seen[key] {
			seen[key] = true
			names = append(names, item.name)
		}
	}

	index := make(map[string]scryfall.Card, len(names))
	if len(names) == 0 {
		return index, nil
	}

	cards, _, err := p.resolver.GetCardsByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve imported cards: %w", err)
	}

	for _, card := range cards {
		if card.Resolved() {
			index[strings.ToLower(card.Name)] = card
		}
	}

	return index, nil
}
