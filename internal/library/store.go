package library

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
)

// StorageKey is the fixed key the saved-deck collection is stored under.
const StorageKey = "manaforge_saved_decks"

// ErrNotFound is returned when a saved deck id does not exist.
var ErrNotFound = errors.New("saved deck not found")

// Store holds the saved-deck collection, newest first, backed by SQLite.
type Store struct {
	conn       *sql.DB
	passphrase string
	log        *zap.Logger

	mu    sync.RWMutex
	decks []deck.Saved
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithEncryption enables at-rest encryption of the library payload.
func WithEncryption(passphrase string) StoreOption {
	return func(s *Store) { s.passphrase = passphrase }
}

// Open opens (creating and migrating if needed) the library database and
// loads the full collection into memory.
func Open(config *DBConfig, log *zap.Logger, opts ...StoreOption) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := openDB(config)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	store := &Store{conn: conn, log: log}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.load(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info("deck library opened",
		zap.String("path", config.Path), zap.Int("decks", len(store.decks)))

	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// load reads the collection payload once at startup.
func (s *Store) load() error {
	var payload string
	err := s.conn.QueryRow(`SELECT payload FROM library WHERE key = ?`, StorageKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		s.decks = []deck.Saved{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read library: %w", err)
	}

	plaintext, err := decryptPayload(payload, s.passphrase)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(plaintext, &s.decks); err != nil {
		return fmt.Errorf("failed to decode library payload: %w", err)
	}
	return nil
}

// persist rewrites the whole collection. Callers must hold s.mu.
func (s *Store) persist() error {
	payload, err := json.Marshal(s.decks)
	if err != nil {
		return fmt.Errorf("failed to encode library payload: %w", err)
	}

	text := string(payload)
	if s.passphrase != "" {
		if text, err = encryptPayload(payload, s.passphrase); err != nil {
			return err
		}
	}

	_, err = s.conn.Exec(
		`INSERT INTO library (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		StorageKey, text, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write library: %w", err)
	}
	return nil
}

// All returns the saved decks, newest first.
func (s *Store) All() []deck.Saved {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]deck.Saved, len(s.decks))
	copy(out, s.decks)
	return out
}

// Get returns the saved deck with the given id.
func (s *Store) Get(id string) (deck.Saved, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, saved := range s.decks {
		if saved.ID == id {
			return saved, nil
		}
	}
	return deck.Saved{}, ErrNotFound
}

// Add saves a deck to the library, assigning it an id and timestamp, and
// rewrites the collection.
func (s *Store) Add(d deck.Deck, format deck.Format) (deck.Saved, error) {
	saved := deck.Saved{
		Deck:      d,
		ID:        uuid.NewString(),
		Format:    format,
		Timestamp: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.decks = append([]deck.Saved{saved}, s.decks...)
	if err := s.persist(); err != nil {
		s.decks = s.decks[1:]
		return deck.Saved{}, err
	}

	s.log.Info("deck bound to library",
		zap.String("id", saved.ID), zap.String("name", d.Name), zap.String("format", string(format)))

	return saved, nil
}

// Remove deletes the saved deck with the given id and rewrites the
// collection.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, saved := range s.decks {
		if saved.ID != id {
			continue
		}

		previous := s.decks
		s.decks = append(append([]deck.Saved{}, s.decks[:i]...), s.decks[i+1:]...)
		if err := s.persist(); err != nil {
			s.decks = previous
			return err
		}

		s.log.Info("deck exiled from library", zap.String("id", id))
		return nil
	}

	return ErrNotFound
}
