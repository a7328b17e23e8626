// Package history keeps the deduplicated, recency-ordered record of which
// tracker records were touched. One entry exists per (id, kind); touching an
// existing key moves it to the most recent position.
package history

import (
	"container/list"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Tracker is an insertion-ordered set of records keyed by types.HistoryKey.
// It is not safe for concurrent use.
type Tracker struct {
	order *list.List
	index map[types.HistoryKey]*list.Element
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		order: list.New(),
		index: make(map[types.HistoryKey]*list.Element),
	}
}

// Add records rec as the most recent entry. A nil record is ignored.
func (t *Tracker) Add(rec types.Record) {
	if isNil(rec) {
		return
	}
	key := types.KeyOf(rec)
	if el, ok := t.index[key]; ok {
		t.order.Remove(el)
	}
	t.index[key] = t.order.PushBack(types.HistoryEntry{Key: key, Record: rec})
}

// Remove deletes the entry for rec if present.
func (t *Tracker) Remove(rec types.Record) {
	if isNil(rec) {
		return
	}
	t.RemoveKey(types.KeyOf(rec))
}

// RemoveKey deletes the entry for key if present.
func (t *Tracker) RemoveKey(key types.HistoryKey) {
	el, ok := t.index[key]
	if !ok {
		return
	}
	t.order.Remove(el)
	delete(t.index, key)
}

// Len returns the number of entries.
func (t *Tracker) Len() int {
	return len(t.index)
}

// Entries returns the entries from least to most recently touched.
func (t *Tracker) Entries() []types.HistoryEntry {
	out := make([]types.HistoryEntry, 0, t.order.Len())
	for el := t.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(types.HistoryEntry))
	}
	return out
}

// isNil catches both a nil interface and a typed nil pointer.
func isNil(rec types.Record) bool {
	switch r := rec.(type) {
	case nil:
		return true
	case *types.Task:
		return r == nil
	case *types.Epic:
		return r == nil
	case *types.Subtask:
		return r == nil
	default:
		return false
	}
}
