// Package cards exposes the card directory to the rest of the application
// with the tolerant error policy the UI depends on: per-item and transport
// failures degrade to empty results instead of surfacing as errors.
package cards

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sheljulian96-lab/ManaForge/internal/scryfall"
)

// apiClient is the slice of the Scryfall client the directory consumes.
// Narrowed to an interface so tests can substitute a fake.
type apiClient interface {
	GetCardByName(ctx context.Context, name string) (*scryfall.Card, error)
	SearchCards(ctx context.Context, query string) (*scryfall.SearchResult, error)
	GetCardsByNames(ctx context.Context, names []string) ([]scryfall.Card, int, error)
}

// Lookup is the read surface consumed by the codec and the forge.
type Lookup interface {
	// Named returns the card with the exact given name, or nil if the
	// directory does not know it or the lookup failed.
	Named(ctx context.Context, name string) *scryfall.Card

	// ResolveNames batch-resolves names and reports how many of them the
	// directory could not resolve.
	ResolveNames(ctx context.Context, names []string) ([]scryfall.Card, int)
}

// SearchReply carries search results together with the monotonic sequence
// number of the request that produced them. A consumer displaying results
// must apply a reply only if its Seq is higher than the last one applied;
// this replaces the last-response-wins race with newest-request-wins.
type SearchReply struct {
	Seq   uint64          `json:"seq"`
	Cards []scryfall.Card `json:"cards"`
}

// Directory wraps the raw Scryfall client with the tolerant policy.
type Directory struct {
	client    apiClient
	log       *zap.Logger
	searchSeq atomic.Uint64
}

// NewDirectory creates a Directory over the given client.
func NewDirectory(client apiClient, log *zap.Logger) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{client: client, log: log}
}

// Named looks up a card by exact name. Any error, including not-found,
// yields nil so callers can substitute a placeholder.
func (d *Directory) Named(ctx context.Context, name string) *scryfall.Card {
	card, err := d.client.GetCardByName(ctx, name)
	if err != nil {
		if !scryfall.IsNotFound(err) {
			d.log.Warn("card lookup failed", zap.String("name", name), zap.Error(err))
		}
		return nil
	}
	if !card.Resolved() {
		return nil
	}
	return card
}

// Search performs a free-text search. Errors degrade to an empty reply.
// The returned Seq is strictly increasing across calls on this Directory.
func (d *Directory) Search(ctx context.Context, query string) SearchReply {
	seq := d.searchSeq.Add(1)

	result, err := d.client.SearchCards(ctx, query)
	if err != nil {
		if !scryfall.IsNotFound(err) {
			d.log.Warn("card search failed", zap.String("query", query), zap.Error(err))
		}
		return SearchReply{Seq: seq, Cards: []scryfall.Card{}}
	}

	cards := result.Data
	if cards == nil {
		cards = []scryfall.Card{}
	}
	return SearchReply{Seq: seq, Cards: cards}
}

// ResolveNames batch-resolves card names, tolerating chunk failures.
func (d *Directory) ResolveNames(ctx context.Context, names []string) ([]scryfall.Card, int) {
	cards, dropped, err := d.client.GetCardsByNames(ctx, names)
	if err != nil {
		d.log.Warn("batch card resolution failed", zap.Int("names", len(names)), zap.Error(err))
		return []scryfall.Card{}, len(names)
	}
	if dropped > 0 {
		d.log.Debug("batch resolution incomplete",
			zap.Int("requested", len(names)), zap.Int("dropped", dropped))
	}
	return cards, dropped
}
