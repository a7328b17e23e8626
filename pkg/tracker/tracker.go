// Package tracker is the public entry point for opening a task store. It
// picks the backend named in a types.Config and keeps the storage
// implementations internal.
//
// Example:
//
//	store, err := tracker.Open(types.Config{
//	    Backend: types.BackendFile,
//	    DataDir: ".tracker",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	id, err := store.Add(types.NewEpic("Move", "new flat"))
package tracker

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/tracker/internal/codec"
	"github.com/mesh-intelligence/tracker/internal/filestore"
	"github.com/mesh-intelligence/tracker/internal/memory"
	"github.com/mesh-intelligence/tracker/internal/paths"
	"github.com/mesh-intelligence/tracker/internal/sqlite"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Store is an open TaskManager. Close must be called when done.
type Store struct {
	types.TaskManager
	close func() error
}

// persistent is implemented by the write-through backends.
type persistent interface {
	Save() error
	LastSaveError() error
}

// Open validates cfg and opens the selected backend. The memory backend
// keeps nothing; the file and sqlite backends load their saved state and
// save after every successful mutation.
func Open(cfg types.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	noop := func() error { return nil }
	switch cfg.Backend {
	case types.BackendMemory:
		return &Store{TaskManager: memory.New(memory.WithLogger(logger)), close: noop}, nil

	case types.BackendFile:
		c, err := codec.ForFormat(cfg.Format)
		if err != nil {
			return nil, err
		}
		fs := filestore.Open(paths.DataFile(cfg.DataDir, cfg.FileName),
			[]filestore.FileOption{
				filestore.WithCodec(c),
				filestore.WithLockTimeout(cfg.LockTimeout),
				filestore.WithFileLogger(logger),
			},
			filestore.WithLogger(logger),
		)
		return &Store{TaskManager: fs, close: noop}, nil

	default: // types.BackendSQLite
		backend, err := sqlite.Open(paths.DataFile(cfg.DataDir, cfg.FileName), logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrPersistence, err)
		}
		fs := filestore.New(memory.New(memory.WithLogger(logger)), backend, filestore.WithLogger(logger))
		return &Store{TaskManager: fs, close: backend.Close}, nil
	}
}

// Save writes the full state now. It is a no-op for the memory backend.
func (s *Store) Save() error {
	if p, ok := s.TaskManager.(persistent); ok {
		return p.Save()
	}
	return nil
}

// LastSaveError returns the failure of the most recent save, or nil.
func (s *Store) LastSaveError() error {
	if p, ok := s.TaskManager.(persistent); ok {
		return p.LastSaveError()
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.close()
}
