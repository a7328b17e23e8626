package filestore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/mesh-intelligence/tracker/internal/codec"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

const lockRetryInterval = 50 * time.Millisecond

// File keeps the record set in a text file, one encoded record per line.
// Writes replace the whole file atomically (temp file, fsync, rename) while
// holding an advisory lock on a sibling ".lock" file.
type File struct {
	path        string
	codec       codec.Codec
	lockTimeout time.Duration
	logger      *slog.Logger
}

var _ Snapshotter = (*File)(nil)

// FileOption configures a File.
type FileOption func(*File)

// WithCodec selects the line encoding. The default is codec.Line.
func WithCodec(c codec.Codec) FileOption {
	return func(f *File) {
		if c != nil {
			f.codec = c
		}
	}
}

// WithLockTimeout bounds how long Save waits for the file lock.
func WithLockTimeout(d time.Duration) FileOption {
	return func(f *File) {
		if d > 0 {
			f.lockTimeout = d
		}
	}
}

// WithFileLogger sets the logger that reports skipped lines.
func WithFileLogger(l *slog.Logger) FileOption {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFile returns a File snapshotter for path.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{
		path:        path,
		codec:       codec.Line{},
		lockTimeout: types.DefaultLockTimeout,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Load reads and decodes every non-empty line. Lines that fail to decode are
// skipped and logged. A missing file yields an error wrapping fs.ErrNotExist.
func (f *File) Load() ([]types.Record, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.path, err)
	}
	defer fh.Close()

	var records []types.Record
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := f.codec.Decode(line)
		if err != nil {
			f.logger.Warn("skipping malformed line", "path", f.path, "line", lineNo, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("scanning %s: %w", f.path, err)
	}
	return records, nil
}

// Save encodes records in order and atomically replaces the file.
func (f *File) Save(records []types.Record) error {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		line, err := f.codec.Encode(rec)
		if err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
		lines = append(lines, line)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	lock := flock.New(f.path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), f.lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("locking %s: %w", f.path, err)
	}
	if !locked {
		return fmt.Errorf("locking %s: timed out after %s", f.path, f.lockTimeout)
	}
	defer lock.Unlock()

	return writeLines(f.path, lines)
}

// writeLines atomically writes lines to path using the temp-file, fsync,
// rename pattern.
func writeLines(path string, lines []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tracker-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// isMissing reports whether err means the backing data does not exist yet.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
