package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/tracker/internal/codec"
	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// withStore opens the configured store, runs fn, then closes the store. A
// save failure left behind by fn is returned as the command's error.
func (a *app) withStore(fn func(*tracker.Store) error) (err error) {
	store, err := tracker.Open(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w: %w", errSystem, cerr)
		}
	}()
	if err := fn(store); err != nil {
		return err
	}
	return store.LastSaveError()
}

// printRecords writes records one per line in the legacy line format, or
// as a JSON array with --json.
func (a *app) printRecords(w io.Writer, records []types.Record) error {
	if a.jsonMode {
		return writeJSON(w, jsonRecords(records))
	}
	enc := codec.Line{}
	for _, rec := range records {
		line, err := enc.Encode(rec)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// printRecord writes a single record; with --json it is a JSON object.
func (a *app) printRecord(w io.Writer, rec types.Record) error {
	if a.jsonMode {
		return writeJSON(w, jsonRecordOf(rec))
	}
	return a.printRecords(w, []types.Record{rec})
}

// jsonRecord is the --json view of a record: the concrete record plus its
// kind name.
type jsonRecord struct {
	Kind   string       `json:"kind"`
	Record types.Record `json:"record"`
}

func jsonRecordOf(rec types.Record) jsonRecord {
	return jsonRecord{Kind: rec.Kind().String(), Record: rec}
}

func jsonRecords(records []types.Record) []jsonRecord {
	out := make([]jsonRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, jsonRecordOf(rec))
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// parseKindID parses the "<kind> <id>" positional arguments.
func parseKindID(args []string) (types.Kind, int, error) {
	kind, err := types.ParseKind(args[0])
	if err != nil {
		return 0, 0, err
	}
	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("invalid id %q: must be a positive integer", args[1])
	}
	return kind, id, nil
}

// errMultiline rejects text that would split a record across lines.
var errMultiline = errors.New("summary and description must be a single line with the line file format")

// checkSingleLine rejects line breaks in record text when the file backend
// stores records in the line format.
func (a *app) checkSingleLine(texts ...string) error {
	if a.cfg.Backend != types.BackendFile || a.cfg.Format != types.FormatLine {
		return nil
	}
	for _, text := range texts {
		if strings.ContainsAny(text, "\r\n") {
			return errMultiline
		}
	}
	return nil
}
