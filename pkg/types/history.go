package types

import (
	"fmt"
	"strings"
)

// HistoryKey identifies a record across namespaces: ids are unique only
// within a kind, so the pair is the effective key.
type HistoryKey struct {
	ID   int
	Kind Kind
}

// KeyOf returns the history key of a record.
func KeyOf(rec Record) HistoryKey {
	return HistoryKey{ID: rec.Base().ID, Kind: rec.Kind()}
}

// String renders the key as "<id>_<kind>", e.g. "3_subtask".
func (k HistoryKey) String() string {
	return fmt.Sprintf("%d_%s", k.ID, strings.ToLower(k.Kind.String()))
}

// HistoryEntry is one element of the view history.
type HistoryEntry struct {
	Key    HistoryKey
	Record Record
}
