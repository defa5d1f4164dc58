package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sheljulian96-lab/ManaForge/internal/cards"
	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/forge"
	"github.com/sheljulian96-lab/ManaForge/internal/library"
	"github.com/sheljulian96-lab/ManaForge/internal/live"
	"github.com/sheljulian96-lab/ManaForge/internal/scryfall"
)

type stubForge struct{}

func (stubForge) GenerateDeck(context.Context, string, deck.Format) (*forge.DeckResult, error) {
	return &forge.DeckResult{Deck: &deck.Deck{Name: "Stub"}}, nil
}

func (stubForge) ScoutMeta(context.Context, deck.Format) (*forge.MetaResult, error) {
	return &forge.MetaResult{Meta: &deck.MetaSummary{}}, nil
}

type stubDirectory struct{}

func (stubDirectory) Search(context.Context, string) cards.SearchReply {
	return cards.SearchReply{Seq: 1, Cards: []scryfall.Card{}}
}

func (stubDirectory) Named(context.Context, string) *scryfall.Card { return nil }

type stubLibrary struct{}

func (stubLibrary) All() []deck.Saved              { return []deck.Saved{} }
func (stubLibrary) Get(string) (deck.Saved, error) { return deck.Saved{}, library.ErrNotFound }
func (stubLibrary) Add(d deck.Deck, f deck.Format) (deck.Saved, error) {
	return deck.Saved{Deck: d, ID: "x", Format: f}, nil
}
func (stubLibrary) Remove(string) error { return library.ErrNotFound }

type stubParser struct{}

func (stubParser) Parse(context.Context, string) (*deck.ParseResult, error) {
	return &deck.ParseResult{Deck: &deck.Deck{}}, nil
}

func testServer() *Server {
	deps := &Deps{
		Forge:   stubForge{},
		Cards:   stubDirectory{},
		Library: stubLibrary{},
		Parser:  stubParser{},
		Dial: func(context.Context, deck.Format) (live.Upstream, error) {
			return nil, errors.New("no live backend in tests")
		},
	}
	return NewServer(DefaultConfig(), deps, nil)
}

func TestNewServerDefaults(t *testing.T) {
	server := NewServer(nil, &Deps{}, nil)
	if server.Port() != 8080 {
		t.Errorf("port = %d, want default 8080", server.Port())
	}
}

func TestHealthCheck(t *testing.T) {
	server := testServer()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestRoutesWired(t *testing.T) {
	server := testServer()

	checks := []struct {
		method, path, body string
		wantStatus         int
	}{
		{http.MethodGet, "/api/v1/decks/", "", http.StatusOK},
		{http.MethodGet, "/api/v1/cards/search?q=bolt", "", http.StatusOK},
		{http.MethodGet, "/api/v1/cards/named?exact=Bolt", "", http.StatusNotFound},
		{http.MethodPost, "/api/v1/forge", `{"prompt": "x"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/meta", `{}`, http.StatusOK},
		{http.MethodGet, "/api/v1/decks/missing", "", http.StatusNotFound},
	}

	for _, check := range checks {
		var req *http.Request
		if check.body != "" {
			req = httptest.NewRequest(check.method, check.path, strings.NewReader(check.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(check.method, check.path, nil)
		}

		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		if rec.Code != check.wantStatus {
			t.Errorf("%s %s = %d, want %d", check.method, check.path, rec.Code, check.wantStatus)
		}
	}
}

func TestContentTypeEnforced(t *testing.T) {
	server := testServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forge", strings.NewReader(`{"prompt": "x"}`))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}
