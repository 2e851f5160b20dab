// Package prefs persists lightweight user preferences (theme, API
// credential) in a JSON file beside the story database, with hot reload on
// external edits.
package prefs

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/storybookapp/storybook-server/internal/domain"
)

// Prefs is the preference document. Missing fields fall back to defaults on
// load so the file can be hand-edited safely.
type Prefs struct {
	Theme  domain.Theme `json:"theme"`
	APIKey string       `json:"api_key,omitempty"`
}

// debounceDelay coalesces the burst of filesystem events an editor save
// produces into one reload.
const debounceDelay = 100 * time.Millisecond

// Store reads and writes the preference file and notifies subscribers when
// it changes on disk.
type Store struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	prefs    Prefs
	onChange []func(Prefs)

	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New opens the preference store at path, creating the file with defaults
// if it does not exist.
func New(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		prefs:  Prefs{Theme: domain.ThemeDark},
		done:   make(chan struct{}),
	}

	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load preferences: %w", err)
		}
		if err := s.persist(s.prefs); err != nil {
			return nil, fmt.Errorf("initialize preferences: %w", err)
		}
	}
	return s, nil
}

// Get returns the current preferences.
func (s *Store) Get() Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// SetTheme updates and persists the theme preference.
func (s *Store) SetTheme(theme domain.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.update(func(p *Prefs) { p.Theme = theme })
}

// SetAPIKey updates and persists the generation API credential. An empty
// key is allowed and switches the app into demo mode on restart.
func (s *Store) SetAPIKey(key string) error {
	return s.update(func(p *Prefs) { p.APIKey = key })
}

// OnChange registers a callback invoked with the new preferences after any
// change, whether through a setter or an external file edit. Callbacks run
// on the watcher goroutine and must not block.
func (s *Store) OnChange(fn func(Prefs)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Watch starts monitoring the preference file for external edits. Safe to
// skip entirely; setters work without it.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create preference watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files via rename,
	// which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch preference directory: %w", err)
	}

	s.watcher = watcher
	s.wg.Add(1)
	go s.run()
	return nil
}

// Close stops the watcher, if running.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.done) })
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	s.wg.Wait()
	return nil
}

func (s *Store) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.scheduleReload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			if s.logger != nil {
				s.logger.Warn("preference watcher error", "error", err)
			}
		}
	}
}

func (s *Store) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceDelay, s.reload)
}

func (s *Store) reload() {
	s.mu.Lock()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("preference reload failed", "error", err)
		}
		return
	}

	next := Prefs{Theme: domain.ThemeDark}
	if err := json.Unmarshal(raw, &next); err != nil {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("preference file is not valid JSON, keeping current values", "error", err)
		}
		return
	}
	if !next.Theme.Valid() {
		next.Theme = domain.ThemeDark
	}

	changed := next != s.prefs
	s.prefs = next
	callbacks := append([]func(Prefs){}, s.onChange...)
	s.mu.Unlock()

	if !changed {
		return
	}
	if s.logger != nil {
		s.logger.Info("preferences reloaded", "theme", string(next.Theme))
	}
	for _, fn := range callbacks {
		fn(next)
	}
}

func (s *Store) update(mutate func(*Prefs)) error {
	s.mu.Lock()
	next := s.prefs
	mutate(&next)
	if err := s.persist(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.prefs = next
	callbacks := append([]func(Prefs){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(next)
	}
	return nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	loaded := Prefs{Theme: domain.ThemeDark}
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	if !loaded.Theme.Valid() {
		loaded.Theme = domain.ThemeDark
	}
	s.prefs = loaded
	return nil
}

// persist writes atomically via temp file and rename.
func (s *Store) persist(p Prefs) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
