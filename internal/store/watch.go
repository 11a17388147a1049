package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 200 * time.Millisecond

// Reload reads the document again if it differs from the last one this store
// wrote or loaded, and reports whether the decks changed. A missing or
// unreadable document keeps the current decks.
func (s *Store) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("Deck document disappeared, keeping decks in memory", zap.String("path", s.path))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error reading deck document: %w", err)
	}
	if bytes.Equal(data, s.saved) {
		return false, nil
	}

	decks, err := Decode(data)
	if err != nil {
		return false, err
	}
	s.decks = decks
	s.saved = data
	s.log.Info("Reloaded decks", zap.String("path", s.path), zap.Int("decks", len(decks)))
	return true, nil
}

// Watcher reloads a store when its document is edited by another program.
type Watcher struct {
	store    *Store
	fsw      *fsnotify.Watcher
	onReload func(err error)

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewWatcher prepares a watcher for s. onReload, if not nil, is called after
// each reload attempt that changed the decks or failed.
func (s *Store) NewWatcher(onReload func(err error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}
	if onReload == nil {
		onReload = func(error) {}
	}
	return &Watcher{
		store:    s,
		fsw:      fsw,
		onReload: onReload,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the document directory until ctx ends or Stop is called.
// The document is replaced by rename, so the directory is watched rather than
// the file itself.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dir := filepath.Dir(w.store.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("error watching %s: %w", dir, err)
	}
	w.running = true
	go w.run(ctx)

	w.store.log.Debug("Watching deck document", zap.String("path", w.store.path))
	return nil
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	err := w.fsw.Close()
	if running {
		<-w.done
	}
	if err != nil {
		w.store.log.Warn("Failed to close file watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	target := filepath.Clean(w.store.path)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			// Editors often write in several steps
			pending = time.After(watchDebounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.store.log.Warn("File watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			changed, err := w.store.Reload()
			if err != nil {
				w.store.log.Error("Failed to reload decks", zap.String("path", w.store.path), zap.Error(err))
			}
			if changed || err != nil {
				w.onReload(err)
			}
		}
	}
}
