// Package store owns every deck and persists them as a single JSON document.
//
// Mutations run under one lock together with the durable write. Each mutation
// works on a copy of the affected deck and a copy of the name map; the copies
// replace the live state only after the new document has been written, so a
// failed save leaves both memory and disk as they were.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/arcanaland/cardsmith/internal/deck"
	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

// WriteFunc durably replaces the file at path with data.
type WriteFunc func(path string, data []byte) error

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithWriter replaces the atomic file writer.
func WithWriter(w WriteFunc) Option {
	return func(s *Store) { s.write = w }
}

// Store maps deck names to decks.
type Store struct {
	path  string
	log   *zap.Logger
	write WriteFunc

	mu    sync.RWMutex
	decks map[string]*deck.Deck
	saved []byte
}

// Open loads the document at path. A missing document is created empty first.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:  path,
		log:   zap.NewNop(),
		write: WriteAtomic,
		decks: make(map[string]*deck.Deck),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory decks with the document on disk.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("Deck document not found, creating it", zap.String("path", s.path))
		empty := make(map[string]*deck.Deck)
		if err := s.persist(empty); err != nil {
			return err
		}
		s.decks = empty
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading deck document: %w", err)
	}

	decks, err := Decode(data)
	if err != nil {
		return err
	}
	s.decks = decks
	s.saved = data
	s.log.Info("Loaded decks", zap.String("path", s.path), zap.Int("decks", len(decks)))
	return nil
}

// Names returns the deck names in alphabetical order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.decks))
	for name := range s.decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a copy of the named deck.
func (s *Store) Get(name string) (*deck.Deck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.decks[name]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Snapshot returns copies of every deck.
func (s *Store) Snapshot() map[string]*deck.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*deck.Deck, len(s.decks))
	for name, d := range s.decks {
		out[name] = d.Clone()
	}
	return out
}

// LastSaved returns the last document confirmed on disk.
func (s *Store) LastSaved() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]byte(nil), s.saved...)
}

// View runs fn against the live deck under the read lock. fn must not modify
// or retain d.
func (s *Store) View(name string, fn func(d *deck.Deck) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.decks[name]
	if !ok {
		return unknownDeck(name)
	}
	return fn(d)
}

// Update applies fn to a copy of the named deck and saves the result. If fn
// or the save fails, nothing changes.
func (s *Store) Update(name string, fn func(d *deck.Deck) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.decks[name]
	if !ok {
		return unknownDeck(name)
	}

	d := cur.Clone()
	if err := fn(d); err != nil {
		return err
	}

	next := s.copyDecks()
	next[name] = d
	return s.commit(next)
}

// Create adds a new deck under name. It fails with NameTaken if one exists.
func (s *Store) Create(name string, d *deck.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[name]; ok {
		return apperrors.WithMetadata(apperrors.CodeNameTaken, "This name is already taken.",
			map[string]string{"deck": name})
	}

	next := s.copyDecks()
	next[name] = d.Clone()
	return s.commit(next)
}

// Put stores d under name, replacing any existing deck.
func (s *Store) Put(name string, d *deck.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyDecks()
	next[name] = d.Clone()
	return s.commit(next)
}

// Remove deletes the named deck.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[name]; !ok {
		return unknownDeck(name)
	}

	next := s.copyDecks()
	delete(next, name)
	return s.commit(next)
}

// Save writes the current decks to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persist(s.decks)
}

// commit persists next and installs it as the live state. Callers hold mu.
func (s *Store) commit(next map[string]*deck.Deck) error {
	if err := s.persist(next); err != nil {
		return err
	}
	s.decks = next
	return nil
}

// persist encodes decks and writes them. Callers hold mu.
func (s *Store) persist(decks map[string]*deck.Deck) error {
	data, err := Encode(decks)
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailed, "Could not save the decks", err)
	}
	if err := s.write(s.path, data); err != nil {
		s.log.Error("Failed to save decks", zap.String("path", s.path), zap.Error(err))
		return apperrors.Wrap(apperrors.CodePersistenceFailed, "Could not save the decks", err)
	}
	s.saved = data
	s.log.Debug("Saved decks", zap.String("path", s.path), zap.Int("decks", len(decks)))
	return nil
}

// copyDecks returns a shallow copy of the name map. Callers hold mu.
func (s *Store) copyDecks() map[string]*deck.Deck {
	next := make(map[string]*deck.Deck, len(s.decks)+1)
	for name, d := range s.decks {
		next[name] = d
	}
	return next
}

func unknownDeck(name string) error {
	return apperrors.WithMetadata(apperrors.CodeUnknownDeck,
		fmt.Sprintf("There is no deck called %s.", name),
		map[string]string{"deck": name})
}

// WriteAtomic writes data to a temporary file next to path, syncs it and
// renames it over path. A crash at any point leaves either the old or the new
// document in place.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating deck directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error syncing temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("error setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("error replacing deck document: %w", err)
	}

	// Persist the rename itself. Not every platform supports syncing a
	// directory, so failures here are ignored.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}
