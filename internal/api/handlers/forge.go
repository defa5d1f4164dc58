// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sheljulian96-lab/ManaForge/internal/api/response"
	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/forge"
)

// ForgeService generates decks and meta summaries.
type ForgeService interface {
	GenerateDeck(ctx context.Context, prompt string, format deck.Format) (*forge.DeckResult, error)
	ScoutMeta(ctx context.Context, format deck.Format) (*forge.MetaResult, error)
}

// ForgeHandler serves deck generation and meta scouting.
type ForgeHandler struct {
	service       ForgeService
	defaultFormat deck.Format
}

// NewForgeHandler creates a new forge handler.
func NewForgeHandler(service ForgeService, defaultFormat deck.Format) *ForgeHandler {
	return &ForgeHandler{service: service, defaultFormat: defaultFormat}
}

// ForgeRequest is the body for POST /forge.
type ForgeRequest struct {
	Prompt string `json:"prompt"`
	Format string `json:"format"`
}

// ForgeDeck handles POST /forge.
func (h *ForgeHandler) ForgeDeck(w http.ResponseWriter, r *http.Request) {
	var req ForgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Prompt == "" {
		response.BadRequest(w, fmt.Errorf("prompt is required"))
		return
	}

	format, err := h.resolveFormat(req.Format)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	result, err := h.service.GenerateDeck(r.Context(), req.Prompt, format)
	if err != nil {
		// One coarse failure message, no retry.
		response.BadGateway(w, fmt.Errorf("a rift in the Blind Eternities occurred"))
		return
	}

	response.Success(w, result)
}

// MetaRequest is the body for POST /meta.
type MetaRequest struct {
	Format string `json:"format"`
}

// ScoutMeta handles POST /meta.
func (h *ForgeHandler) ScoutMeta(w http.ResponseWriter, r *http.Request) {
	var req MetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	format, err := h.resolveFormat(req.Format)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	result, err := h.service.ScoutMeta(r.Context(), format)
	if err != nil {
		response.BadGateway(w, fmt.Errorf("meta scan failed, the archives are shielded"))
		return
	}

	response.Success(w, result)
}

func (h *ForgeHandler) resolveFormat(raw string) (deck.Format, error) {
	if raw == "" {
		return h.defaultFormat, nil
	}
	format := deck.Format(raw)
	if !format.Valid() {
		return "", fmt.Errorf("unknown format %q", raw)
	}
	return format, nil
}
