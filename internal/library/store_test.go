package library

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
)

func testStore(t *testing.T, opts ...StoreOption) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	store, err := Open(DefaultDBConfig(path), nil, opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func sampleDeck(name string) deck.Deck {
	return deck.Deck{
		Name:        name,
		Explanation: "test deck",
		Mainboard:   []deck.Item{{Count: 4}},
		Sideboard:   []deck.Item{},
	}
}

func TestAddAssignsIdentity(t *testing.T) {
	store, _ := testStore(t)

	saved, err := store.Add(sampleDeck("Mono Red"), deck.FormatStandard)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("saved deck has no id")
	}
	if saved.Timestamp == 0 {
		t.Error("saved deck has no timestamp")
	}
	if saved.Format != deck.FormatStandard {
		t.Errorf("format = %s", saved.Format)
	}
}

func TestAllNewestFirst(t *testing.T) {
	store, _ := testStore(t)

	if _, err := store.Add(sampleDeck("First"), deck.FormatStandard); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := store.Add(sampleDeck("Second"), deck.FormatHistoric); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	decks := store.All()
	if len(decks) != 2 {
		t.Fatalf("All() = %d decks, want 2", len(decks))
	}
	if decks[0].Name != "Second" || decks[1].Name != "First" {
		t.Errorf("order = %s, %s; want newest first", decks[0].Name, decks[1].Name)
	}
}

func TestGet(t *testing.T) {
	store, _ := testStore(t)

	saved, err := store.Add(sampleDeck("Mono Red"), deck.FormatStandard)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := store.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Mono Red" {
		t.Errorf("name = %q", got.Name)
	}

	if _, err := store.Get("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	store, _ := testStore(t)

	saved, err := store.Add(sampleDeck("Mono Red"), deck.FormatStandard)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := store.Remove(saved.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := store.All(); len(got) != 0 {
		t.Errorf("All() = %d decks after remove, want 0", len(got))
	}

	if err := store.Remove(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestCollectionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	store, err := Open(DefaultDBConfig(path), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	saved, err := store.Add(sampleDeck("Persistent"), deck.FormatBrawl)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(DefaultDBConfig(path), nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.Name != "Persistent" || got.Format != deck.FormatBrawl {
		t.Errorf("reloaded deck = %+v", got)
	}
}

func TestEncryptedAtRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	store, err := Open(DefaultDBConfig(path), nil, WithEncryption("hunter2"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.Add(sampleDeck("Secret Tech"), deck.FormatStandard); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	var payload string
	err = store.conn.QueryRow(`SELECT payload FROM library WHERE key = ?`, StorageKey).Scan(&payload)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if len(payload) < len(encryptionMagic) || payload[:len(encryptionMagic)] != encryptionMagic {
		t.Error("payload not marked encrypted")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(DefaultDBConfig(path), nil, WithEncryption("hunter2"))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if decks := reopened.All(); len(decks) != 1 || decks[0].Name != "Secret Tech" {
		t.Errorf("decrypted collection = %+v", decks)
	}
}

func TestWrongPassphraseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	store, err := Open(DefaultDBConfig(path), nil, WithEncryption("right"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.Add(sampleDeck("x"), deck.FormatStandard); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := Open(DefaultDBConfig(path), nil, WithEncryption("wrong")); err == nil {
		t.Fatal("Open() with wrong passphrase succeeded")
	}
}

func TestPlaintextUpgradesToEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	// Library written before encryption was enabled.
	store, err := Open(DefaultDBConfig(path), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.Add(sampleDeck("Old"), deck.FormatStandard); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening with a passphrase still reads the plaintext payload.
	reopened, err := Open(DefaultDBConfig(path), nil, WithEncryption("hunter2"))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if decks := reopened.All(); len(decks) != 1 || decks[0].Name != "Old" {
		t.Errorf("collection = %+v", decks)
	}
}

func TestEncryptionRoundTrip(t *testing.T) {
	plaintext := []byte(`[{"name":"deck"}]`)

	sealed, err := encryptPayload(plaintext, "passphrase")
	if err != nil {
		t.Fatalf("encryptPayload() error = %v", err)
	}
	if sealed == string(plaintext) {
		t.Fatal("payload not encrypted")
	}

	opened, err := decryptPayload(sealed, "passphrase")
	if err != nil {
		t.Fatalf("decryptPayload() error = %v", err)
	}
	if string(opened) != string(plaintext) {
		t.Errorf("round trip = %q, want %q", opened, plaintext)
	}
}
