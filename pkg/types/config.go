package types

import (
	"errors"
	"time"
)

// Config selects the store backend and where it keeps its data.
type Config struct {
	Backend     string        `json:"backend" yaml:"backend"`
	DataDir     string        `json:"data_dir" yaml:"data_dir"`
	FileName    string        `json:"file_name" yaml:"file_name"`
	Format      string        `json:"format" yaml:"format"`
	LockTimeout time.Duration `json:"lock_timeout" yaml:"lock_timeout"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Supported file formats for the file backend.
const (
	FormatLine  = "line"
	FormatJSONL = "jsonl"
)

// Defaults applied by WithDefaults.
const (
	DefaultFileName    = "tasksList.txt"
	DefaultSQLiteName  = "tracker.db"
	DefaultLockTimeout = 5 * time.Second
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrFormatUnknown  = errors.New("unknown file format")
)

var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendFile:   true,
	BackendSQLite: true,
}

var knownFormats = map[string]bool{
	FormatLine:  true,
	FormatJSONL: true,
}

// WithDefaults returns a copy of c with empty optional fields filled in.
// Backend is left alone so that Validate can still report it missing.
func (c Config) WithDefaults() Config {
	if c.FileName == "" {
		if c.Backend == BackendSQLite {
			c.FileName = DefaultSQLiteName
		} else {
			c.FileName = DefaultFileName
		}
	}
	if c.Format == "" {
		c.Format = FormatLine
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Format != "" && !knownFormats[c.Format] {
		return ErrFormatUnknown
	}
	return nil
}
