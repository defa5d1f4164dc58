package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sheljulian96-lab/ManaForge/internal/api/handlers"
	"github.com/sheljulian96-lab/ManaForge/internal/api/response"
	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/live"
)

// Deps holds the services the router exposes over HTTP.
type Deps struct {
	Forge   handlers.ForgeService
	Cards   handlers.CardDirectory
	Library handlers.DeckLibrary
	Parser  handlers.DeckParser
	Dial    live.Dialer
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes(cfg *Config, deps *Deps) {
	defaultFormat := deck.Format(cfg.DefaultFormat)
	if !defaultFormat.Valid() {
		defaultFormat = deck.FormatStandard
	}

	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Forge routes
		forgeHandler := handlers.NewForgeHandler(deps.Forge, defaultFormat)
		r.Post("/forge", forgeHandler.ForgeDeck)
		r.Post("/meta", forgeHandler.ScoutMeta)

		// Card routes
		cardsHandler := handlers.NewCardsHandler(deps.Cards)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/search", cardsHandler.Search)
			r.Get("/named", cardsHandler.Named)
		})

		// Deck library routes
		decksHandler := handlers.NewDecksHandler(deps.Library, deps.Parser, defaultFormat)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", decksHandler.List)
			r.Post("/", decksHandler.Save)
			r.Post("/import", decksHandler.Import)
			r.Post("/export", decksHandler.Export)
			r.Get("/{deckID}", decksHandler.Get)
			r.Delete("/{deckID}", decksHandler.Delete)
			r.Get("/{deckID}/export", decksHandler.ExportSaved)
			r.Get("/{deckID}/curve", decksHandler.Curve)
		})

		// Voice session endpoint (WebSocket, no JSON content-type requirement)
		liveHandler := handlers.NewLiveHandler(deps.Dial, deps.Forge, defaultFormat, s.log)
		r.Get("/live", liveHandler.Serve)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "manaforge-api",
	})
}
