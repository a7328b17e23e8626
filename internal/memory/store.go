// Package memory implements the in-memory TaskManager. It owns every record,
// keeps epic/subtask membership consistent, derives epic status from
// subtasks and maintains the view history.
package memory

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/mesh-intelligence/tracker/internal/history"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Store is the in-memory record store. Records of each kind are kept in
// insertion order. Store is not safe for concurrent use; wrap it in an
// external lock if several goroutines share one instance.
type Store struct {
	tasks    []*types.Task
	epics    []*types.Epic
	subtasks []*types.Subtask

	ids     *idAllocator
	history *history.Tracker
	logger  *slog.Logger
}

var _ types.TaskManager = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		ids:     newIDAllocator(),
		history: history.New(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts rec, assigning a fresh id when rec.ID is zero. A subtask is
// appended to its epic's subtask list and the epic status is re-derived.
// The record is recorded in the history.
func (s *Store) Add(rec types.Record) (int, error) {
	id, err := s.insert(rec)
	if err != nil {
		return 0, err
	}
	s.history.Add(rec)
	s.logger.Debug("record added", "kind", rec.Kind().String(), "id", id, "history", s.history.Len())
	return id, nil
}

func (s *Store) insert(rec types.Record) (int, error) {
	switch r := rec.(type) {
	case *types.Task:
		if r == nil {
			return 0, types.ErrNilRecord
		}
		if err := checkStatus(r.Status); err != nil {
			return 0, err
		}
		if err := s.claimID(types.KindTask, &r.ID); err != nil {
			return 0, err
		}
		s.tasks = append(s.tasks, r)
	case *types.Epic:
		if r == nil {
			return 0, types.ErrNilRecord
		}
		if err := s.claimID(types.KindEpic, &r.ID); err != nil {
			return 0, err
		}
		// Membership is rebuilt from subtask insertions.
		r.SubtaskIDs = []int{}
		r.Status = types.StatusNew
		s.epics = append(s.epics, r)
	case *types.Subtask:
		if r == nil {
			return 0, types.ErrNilRecord
		}
		if err := checkStatus(r.Status); err != nil {
			return 0, err
		}
		parent := s.findEpic(r.EpicID)
		if parent == nil {
			return 0, fmt.Errorf("subtask %q: epic %d: %w", r.Summary, r.EpicID, types.ErrInvalidReference)
		}
		if err := s.claimID(types.KindSubtask, &r.ID); err != nil {
			return 0, err
		}
		s.subtasks = append(s.subtasks, r)
		parent.SubtaskIDs = append(parent.SubtaskIDs, r.ID)
		s.refreshEpicStatus(parent)
	case nil:
		return 0, types.ErrNilRecord
	default:
		return 0, fmt.Errorf("%T: %w", rec, types.ErrInvalidKind)
	}

	return rec.Base().ID, nil
}

// claimID assigns a fresh id when *id is zero, or reserves the given id
// after checking it is not already taken.
func (s *Store) claimID(kind types.Kind, id *int) error {
	if *id == 0 {
		*id = s.ids.next(kind)
		return nil
	}
	if s.find(*id, kind) != nil {
		return fmt.Errorf("%s %d: %w", kind, *id, types.ErrDuplicateID)
	}
	s.ids.observe(kind, *id)
	return nil
}

// Update copies summary and description from patch onto the stored record
// identified by id and patch's kind. Tasks and subtasks also take the
// patch's status; a subtask update re-derives its epic's status. An epic's
// status is never taken from the patch, and an epic update does not touch
// the history.
func (s *Store) Update(id int, patch types.Record) (types.Record, error) {
	if patch == nil {
		return nil, types.ErrNilRecord
	}
	kind := patch.Kind()
	current := s.find(id, kind)
	if current == nil {
		return nil, notFound(id, kind)
	}
	src := patch.Base()
	if kind != types.KindEpic {
		if err := checkStatus(src.Status); err != nil {
			return nil, err
		}
	}

	base := current.Base()
	base.Summary = src.Summary
	base.Description = src.Description

	switch r := current.(type) {
	case *types.Epic:
		return r, nil
	case *types.Subtask:
		r.Status = src.Status
		if parent := s.findEpic(r.EpicID); parent != nil {
			s.refreshEpicStatus(parent)
		}
	case *types.Task:
		r.Status = src.Status
	}

	s.history.Add(current)
	return current, nil
}

// Get returns the record with the given id and kind and records the lookup
// in the history.
func (s *Store) Get(id int, kind types.Kind) (types.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%v: %w", kind, types.ErrInvalidKind)
	}
	rec := s.find(id, kind)
	if rec == nil {
		return nil, notFound(id, kind)
	}
	s.history.Add(rec)
	return rec, nil
}

// List returns the records of kind in insertion order. The slice is fresh;
// the records are the stored ones.
func (s *Store) List(kind types.Kind) ([]types.Record, error) {
	switch kind {
	case types.KindTask:
		return toRecords(s.tasks), nil
	case types.KindEpic:
		return toRecords(s.epics), nil
	case types.KindSubtask:
		return toRecords(s.subtasks), nil
	default:
		return nil, fmt.Errorf("%v: %w", kind, types.ErrInvalidKind)
	}
}

// Clear removes every record of kind together with its history entries.
// Clearing subtasks empties every epic's subtask list, which resets every
// epic to NEW. Clearing epics discards all subtasks as well.
func (s *Store) Clear(kind types.Kind) error {
	switch kind {
	case types.KindTask:
		for _, t := range s.tasks {
			s.history.Remove(t)
		}
		s.tasks = nil
	case types.KindSubtask:
		for _, st := range s.subtasks {
			s.history.Remove(st)
		}
		s.subtasks = nil
		for _, e := range s.epics {
			e.SubtaskIDs = []int{}
			s.refreshEpicStatus(e)
		}
	case types.KindEpic:
		for _, e := range s.epics {
			for _, sid := range e.SubtaskIDs {
				// Tolerate ids whose subtask is already gone.
				if st := s.findSubtask(sid); st != nil {
					s.history.Remove(st)
				}
			}
			s.history.Remove(e)
		}
		for _, st := range s.subtasks {
			s.history.Remove(st)
		}
		s.subtasks = nil
		s.epics = nil
	default:
		return fmt.Errorf("%v: %w", kind, types.ErrInvalidKind)
	}
	s.logger.Debug("kind cleared", "kind", kind.String())
	return nil
}

// Remove deletes one record and its history entry. Removing a subtask drops
// it from its epic and re-derives the epic status; removing an epic removes
// each of its subtasks first.
func (s *Store) Remove(id int, kind types.Kind) error {
	switch kind {
	case types.KindTask:
		i := slices.IndexFunc(s.tasks, func(t *types.Task) bool { return t.ID == id })
		if i < 0 {
			return notFound(id, kind)
		}
		s.history.Remove(s.tasks[i])
		s.tasks = slices.Delete(s.tasks, i, i+1)
	case types.KindSubtask:
		i := slices.IndexFunc(s.subtasks, func(st *types.Subtask) bool { return st.ID == id })
		if i < 0 {
			return notFound(id, kind)
		}
		st := s.subtasks[i]
		if parent := s.findEpic(st.EpicID); parent != nil {
			parent.SubtaskIDs = slices.DeleteFunc(parent.SubtaskIDs, func(sid int) bool { return sid == id })
			s.refreshEpicStatus(parent)
		}
		s.history.Remove(st)
		s.subtasks = slices.Delete(s.subtasks, i, i+1)
	case types.KindEpic:
		e := s.findEpic(id)
		if e == nil {
			return notFound(id, kind)
		}
		for _, sid := range slices.Clone(e.SubtaskIDs) {
			if err := s.Remove(sid, types.KindSubtask); err != nil {
				return fmt.Errorf("removing subtask of epic %d: %w", id, err)
			}
		}
		i := slices.Index(s.epics, e)
		s.history.Remove(e)
		s.epics = slices.Delete(s.epics, i, i+1)
	default:
		return fmt.Errorf("%v: %w", kind, types.ErrInvalidKind)
	}
	s.logger.Debug("record removed", "kind", kind.String(), "id", id)
	return nil
}

// History returns the touched records, least recent first.
func (s *Store) History() []types.HistoryEntry {
	return s.history.Entries()
}

// refreshEpicStatus re-derives e's status from its current subtasks.
func (s *Store) refreshEpicStatus(e *types.Epic) {
	statuses := make([]types.Status, 0, len(e.SubtaskIDs))
	for _, sid := range e.SubtaskIDs {
		if st := s.findSubtask(sid); st != nil {
			statuses = append(statuses, st.Status)
		}
	}
	e.Status = types.DeriveEpicStatus(statuses)
}

// find looks a record up without touching the history.
func (s *Store) find(id int, kind types.Kind) types.Record {
	switch kind {
	case types.KindTask:
		if i := slices.IndexFunc(s.tasks, func(t *types.Task) bool { return t.ID == id }); i >= 0 {
			return s.tasks[i]
		}
	case types.KindEpic:
		if e := s.findEpic(id); e != nil {
			return e
		}
	case types.KindSubtask:
		if st := s.findSubtask(id); st != nil {
			return st
		}
	}
	return nil
}

func (s *Store) findEpic(id int) *types.Epic {
	if i := slices.IndexFunc(s.epics, func(e *types.Epic) bool { return e.ID == id }); i >= 0 {
		return s.epics[i]
	}
	return nil
}

func (s *Store) findSubtask(id int) *types.Subtask {
	if i := slices.IndexFunc(s.subtasks, func(st *types.Subtask) bool { return st.ID == id }); i >= 0 {
		return s.subtasks[i]
	}
	return nil
}

func checkStatus(st types.Status) error {
	if !st.Valid() {
		return fmt.Errorf("%v: %w", st, types.ErrInvalidStatus)
	}
	return nil
}

func notFound(id int, kind types.Kind) error {
	return fmt.Errorf("%s %d: %w", kind, id, types.ErrNotFound)
}

func toRecords[T types.Record](items []T) []types.Record {
	out := make([]types.Record, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
