package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sheljulian96-lab/ManaForge/internal/api/response"
	"github.com/sheljulian96-lab/ManaForge/internal/charts"
	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/library"
)

// DeckLibrary is the saved-deck collection the deck endpoints consume.
type DeckLibrary interface {
	All() []deck.Saved
	Get(id string) (deck.Saved, error)
	Add(d deck.Deck, format deck.Format) (deck.Saved, error)
	Remove(id string) error
}

// DeckParser decodes Arena interchange text.
type DeckParser interface {
	Parse(ctx context.Context, text string) (*deck.ParseResult, error)
}

// DecksHandler serves the saved-deck library and deck import/export.
type DecksHandler struct {
	store         DeckLibrary
	parser        DeckParser
	defaultFormat deck.Format
}

// NewDecksHandler creates a new decks handler.
func NewDecksHandler(store DeckLibrary, parser DeckParser, defaultFormat deck.Format) *DecksHandler {
	return &DecksHandler{store: store, parser: parser, defaultFormat: defaultFormat}
}

// List handles GET /decks.
func (h *DecksHandler) List(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.store.All())
}

// Get handles GET /decks/{deckID}.
func (h *DecksHandler) Get(w http.ResponseWriter, r *http.Request) {
	saved, err := h.store.Get(chi.URLParam(r, "deckID"))
	if err != nil {
		response.NotFound(w, err)
		return
	}
	response.Success(w, saved)
}

// SaveRequest is the body for POST /decks.
type SaveRequest struct {
	Deck   deck.Deck `json:"deck"`
	Format string    `json:"format"`
}

// Save handles POST /decks.
func (h *DecksHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	format, err := h.resolveFormat(req.Format)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	saved, err := h.store.Add(req.Deck, format)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, saved)
}

// Delete handles DELETE /decks/{deckID}.
func (h *DecksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Remove(chi.URLParam(r, "deckID"))
	if errors.Is(err, library.ErrNotFound) {
		response.NotFound(w, err)
		return
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

// ImportRequest is the body for POST /decks/import.
type ImportRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

// ImportResponse is the result of a deck import.
type ImportResponse struct {
	Deck    deck.Saved `json:"deck"`
	Dropped int        `json:"dropped"`
}

// Import handles POST /decks/import: decode the interchange text, resolve
// every card against the directory, and persist the result. Individual
// bad lines are dropped (and counted); a wholesale resolution failure
// persists nothing.
func (h *DecksHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Text == "" {
		response.BadRequest(w, fmt.Errorf("text is required"))
		return
	}

	format, err := h.resolveFormat(req.Format)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	result, err := h.parser.Parse(r.Context(), req.Text)
	if err != nil {
		response.BadGateway(w, fmt.Errorf("failed to parse deck"))
		return
	}

	saved, err := h.store.Add(*result.Deck, format)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, ImportResponse{Deck: saved, Dropped: result.Dropped})
}

// ExportRequest is the body for POST /decks/export.
type ExportRequest struct {
	Deck deck.Deck `json:"deck"`
}

// ExportResponse carries the Arena interchange text.
type ExportResponse struct {
	Text string `json:"text"`
}

// Export handles POST /decks/export for an ad-hoc deck.
func (h *DecksHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	response.Success(w, ExportResponse{Text: deck.FormatArena(&req.Deck)})
}

// ExportSaved handles GET /decks/{deckID}/export.
func (h *DecksHandler) ExportSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.store.Get(chi.URLParam(r, "deckID"))
	if err != nil {
		response.NotFound(w, err)
		return
	}

	response.Success(w, ExportResponse{Text: deck.FormatArena(&saved.Deck)})
}

// Curve handles GET /decks/{deckID}/curve, rendering the deck's mana
// curve as an HTML chart page.
func (h *DecksHandler) Curve(w http.ResponseWriter, r *http.Request) {
	saved, err := h.store.Get(chi.URLParam(r, "deckID"))
	if err != nil {
		response.NotFound(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderManaCurve(w, &saved.Deck); err != nil {
		response.InternalError(w, err)
	}
}

func (h *DecksHandler) resolveFormat(raw string) (deck.Format, error) {
	if raw == "" {
		return h.defaultFormat, nil
	}
	format := deck.Format(raw)
	if !format.Valid() {
		return "", fmt.Errorf("unknown format %q", raw)
	}
	return format, nil
}
