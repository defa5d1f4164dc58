package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/forge"
)

type fakeForgeService struct {
	deckResult *forge.DeckResult
	metaResult *forge.MetaResult
	err        error

	gotPrompt string
	gotFormat deck.Format
}

func (f *fakeForgeService) GenerateDeck(_ context.Context, prompt string, format deck.Format) (*forge.DeckResult, error) {
	f.gotPrompt, f.gotFormat = prompt, format
	return f.deckResult, f.err
}

func (f *fakeForgeService) ScoutMeta(_ context.Context, format deck.Format) (*forge.MetaResult, error) {
	f.gotFormat = format
	return f.metaResult, f.err
}

func TestForgeDeck(t *testing.T) {
	svc := &fakeForgeService{deckResult: &forge.DeckResult{
		Deck:         &deck.Deck{Name: "Izzet Phoenix"},
		Placeholders: 1,
	}}
	h := NewForgeHandler(svc, deck.FormatStandard)

	body := `{"prompt": "phoenix deck", "format": "Historic"}`
	rec := httptest.NewRecorder()
	h.ForgeDeck(rec, httptest.NewRequest(http.MethodPost, "/forge", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotPrompt != "phoenix deck" || svc.gotFormat != deck.FormatHistoric {
		t.Errorf("service args = %q %q", svc.gotPrompt, svc.gotFormat)
	}

	var resp struct {
		Data forge.DeckResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Deck.Name != "Izzet Phoenix" || resp.Data.Placeholders != 1 {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestForgeDeckDefaultFormat(t *testing.T) {
	svc := &fakeForgeService{deckResult: &forge.DeckResult{Deck: &deck.Deck{}}}
	h := NewForgeHandler(svc, deck.FormatTimeless)

	rec := httptest.NewRecorder()
	h.ForgeDeck(rec, httptest.NewRequest(http.MethodPost, "/forge", strings.NewReader(`{"prompt": "x"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.gotFormat != deck.FormatTimeless {
		t.Errorf("format = %q, want configured default", svc.gotFormat)
	}
}

func TestForgeDeckRequiresPrompt(t *testing.T) {
	h := NewForgeHandler(&fakeForgeService{}, deck.FormatStandard)

	rec := httptest.NewRecorder()
	h.ForgeDeck(rec, httptest.NewRequest(http.MethodPost, "/forge", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestForgeDeckRejectsUnknownFormat(t *testing.T) {
	h := NewForgeHandler(&fakeForgeService{}, deck.FormatStandard)

	body := `{"prompt": "x", "format": "Legacy"}`
	rec := httptest.NewRecorder()
	h.ForgeDeck(rec, httptest.NewRequest(http.MethodPost, "/forge", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestForgeDeckFailure(t *testing.T) {
	h := NewForgeHandler(&fakeForgeService{err: errors.New("quota")}, deck.FormatStandard)

	rec := httptest.NewRecorder()
	h.ForgeDeck(rec, httptest.NewRequest(http.MethodPost, "/forge", strings.NewReader(`{"prompt": "x"}`)))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "quota") {
		t.Error("internal error detail leaked to the client")
	}
}

func TestScoutMeta(t *testing.T) {
	svc := &fakeForgeService{metaResult: &forge.MetaResult{
		Meta: &deck.MetaSummary{Summary: "Aggro rules."},
	}}
	h := NewForgeHandler(svc, deck.FormatStandard)

	rec := httptest.NewRecorder()
	h.ScoutMeta(rec, httptest.NewRequest(http.MethodPost, "/meta", strings.NewReader(`{"format": "Explorer"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotFormat != deck.FormatExplorer {
		t.Errorf("format = %q", svc.gotFormat)
	}
	if !strings.Contains(rec.Body.String(), "Aggro rules.") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestScoutMetaFailure(t *testing.T) {
	h := NewForgeHandler(&fakeForgeService{err: errors.New("blocked")}, deck.FormatStandard)

	rec := httptest.NewRecorder()
	h.ScoutMeta(rec, httptest.NewRequest(http.MethodPost, "/meta", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
