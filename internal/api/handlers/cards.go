package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sheljulian96-lab/ManaForge/internal/api/response"
	"github.com/sheljulian96-lab/ManaForge/internal/cards"
	"github.com/sheljulian96-lab/ManaForge/internal/scryfall"
)

// CardDirectory is the directory surface the card endpoints consume.
type CardDirectory interface {
	Search(ctx context.Context, query string) cards.SearchReply
	Named(ctx context.Context, name string) *scryfall.Card
}

// CardsHandler serves card directory lookups.
type CardsHandler struct {
	directory CardDirectory
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(directory CardDirectory) *CardsHandler {
	return &CardsHandler{directory: directory}
}

// Search handles GET /cards/search?q=. Lookup failures degrade to an
// empty result set; the reply carries a monotonic sequence number so the
// client applies only the newest search's results.
func (h *CardsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, fmt.Errorf("query parameter q is required"))
		return
	}

	response.Success(w, h.directory.Search(r.Context(), query))
}

// Named handles GET /cards/named?exact=.
func (h *CardsHandler) Named(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("exact")
	if name == "" {
		response.BadRequest(w, fmt.Errorf("query parameter exact is required"))
		return
	}

	card := h.directory.Named(r.Context(), name)
	if card == nil {
		response.NotFound(w, fmt.Errorf("card %q not found", name))
		return
	}

	response.Success(w, card)
}
