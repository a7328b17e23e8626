// Package filestore decorates the in-memory store with load-on-open and
// save-after-every-mutation. The persisted form is produced by a
// Snapshotter: a text file through a codec, or any other full-state sink.
package filestore

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/tracker/internal/memory"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Snapshotter loads and saves the complete record set. Save receives
// records in types.SaveOrder, each kind in insertion order; Load must
// return them in the order they were saved.
type Snapshotter interface {
	Load() ([]types.Record, error)
	Save(records []types.Record) error
}

// Store is a types.TaskManager that persists the full state after each
// successful mutation. A failed save is logged and remembered but does not
// undo the in-memory change.
type Store struct {
	inner   *memory.Store
	snap    Snapshotter
	logger  *slog.Logger
	lastErr error
}

var _ types.TaskManager = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for load and save reports.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New wraps inner and fills it from snap through Add, so the loaded records
// also populate the history in saved order. A missing or unreadable snapshot
// leaves the store empty; records that cannot be inserted are skipped.
func New(inner *memory.Store, snap Snapshotter, opts ...Option) *Store {
	s := newStore(opts)
	s.inner, s.snap = inner, snap
	s.load()
	return s
}

// Open is a shortcut for a Store over a fresh memory.Store and a File
// snapshotter at path. The inner store logs through the WithLogger logger.
func Open(path string, fileOpts []FileOption, opts ...Option) *Store {
	s := newStore(opts)
	s.inner = memory.New(memory.WithLogger(s.logger))
	s.snap = NewFile(path, fileOpts...)
	s.load()
	return s
}

func newStore(opts []Option) *Store {
	s := &Store{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) load() {
	records, err := s.snap.Load()
	switch {
	case err != nil && isMissing(err):
		s.logger.Debug("no saved state, starting empty", "error", err)
		return
	case err != nil:
		s.logger.Warn("reading saved state", "error", err)
	}

	loaded := 0
	for _, rec := range records {
		if _, err := s.inner.Add(rec); err != nil {
			s.logger.Warn("skipping saved record", "kind", rec.Kind().String(), "id", rec.Base().ID, "error", err)
			continue
		}
		loaded++
	}
	s.logger.Debug("state loaded", "records", loaded, "skipped", len(records)-loaded)
}

// Add inserts rec into the inner store and saves.
func (s *Store) Add(rec types.Record) (int, error) {
	id, err := s.inner.Add(rec)
	if err != nil {
		return 0, err
	}
	s.persist()
	return id, nil
}

// Update applies patch in the inner store and saves.
func (s *Store) Update(id int, patch types.Record) (types.Record, error) {
	rec, err := s.inner.Update(id, patch)
	if err != nil {
		return nil, err
	}
	s.persist()
	return rec, nil
}

// Get delegates to the inner store. Lookups are not persisted.
func (s *Store) Get(id int, kind types.Kind) (types.Record, error) {
	return s.inner.Get(id, kind)
}

// List delegates to the inner store.
func (s *Store) List(kind types.Kind) ([]types.Record, error) {
	return s.inner.List(kind)
}

// Clear empties kind in the inner store and saves.
func (s *Store) Clear(kind types.Kind) error {
	if err := s.inner.Clear(kind); err != nil {
		return err
	}
	s.persist()
	return nil
}

// Remove deletes the record in the inner store and saves.
func (s *Store) Remove(id int, kind types.Kind) error {
	if err := s.inner.Remove(id, kind); err != nil {
		return err
	}
	s.persist()
	return nil
}

// History delegates to the inner store.
func (s *Store) History() []types.HistoryEntry {
	return s.inner.History()
}

// Snapshot returns every record in save order: epics, subtasks, then tasks.
func (s *Store) Snapshot() []types.Record {
	var all []types.Record
	for _, kind := range types.SaveOrder {
		records, err := s.inner.List(kind)
		if err != nil {
			continue
		}
		all = append(all, records...)
	}
	return all
}

// Save writes the current state and returns any failure wrapped in
// types.ErrPersistence.
func (s *Store) Save() error {
	if err := s.snap.Save(s.Snapshot()); err != nil {
		s.lastErr = fmt.Errorf("%w: %w", types.ErrPersistence, err)
		return s.lastErr
	}
	s.lastErr = nil
	return nil
}

// LastSaveError returns the error of the most recent save, or nil if it
// succeeded.
func (s *Store) LastSaveError() error {
	return s.lastErr
}

func (s *Store) persist() {
	if err := s.Save(); err != nil {
		s.logger.Error("saving state", "error", err)
	}
}
