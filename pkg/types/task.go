package types

import "slices"

// Record is implemented by *Task, *Epic and *Subtask. Callers switch on
// Kind() (or type-switch on the concrete pointer) to reach kind-specific
// fields; Base exposes the fields every kind shares.
type Record interface {
	Kind() Kind
	Base() *Task
}

// Task is a standalone work item and the base shape shared by every kind.
// ID is assigned by the store on first insertion and is unique only within
// its kind's namespace.
type Task struct {
	ID          int    `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// NewTask returns an unsaved task (ID 0) in status NEW.
func NewTask(summary, description string) *Task {
	return &Task{Summary: summary, Description: description, Status: StatusNew}
}

// Kind implements Record.
func (t *Task) Kind() Kind { return KindTask }

// Base implements Record.
func (t *Task) Base() *Task { return t }

// Equal reports whether all four base fields match.
func (t *Task) Equal(o *Task) bool {
	if t == nil || o == nil {
		return t == o
	}
	return *t == *o
}

// Epic groups subtasks. Its Status is derived from the subtasks by the
// store and is never set directly by callers after creation. SubtaskIDs keeps
// insertion order; the store keeps it in sync with the subtasks' EpicID.
type Epic struct {
	Task
	SubtaskIDs []int `json:"subtask_ids"`
}

// NewEpic returns an unsaved epic with no subtasks.
func NewEpic(summary, description string) *Epic {
	return &Epic{Task: *NewTask(summary, description), SubtaskIDs: []int{}}
}

// Kind implements Record.
func (e *Epic) Kind() Kind { return KindEpic }

// Equal compares the base fields and the subtask id sequence.
func (e *Epic) Equal(o *Epic) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Task == o.Task && slices.Equal(e.SubtaskIDs, o.SubtaskIDs)
}

// Subtask belongs to exactly one epic. EpicID is fixed at creation.
type Subtask struct {
	Task
	EpicID int `json:"epic_id"`
}

// NewSubtask returns an unsaved subtask of the given epic.
func NewSubtask(summary, description string, epicID int) *Subtask {
	return &Subtask{Task: *NewTask(summary, description), EpicID: epicID}
}

// Kind implements Record.
func (s *Subtask) Kind() Kind { return KindSubtask }

// Equal compares the base fields and the parent epic id.
func (s *Subtask) Equal(o *Subtask) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Task == o.Task && s.EpicID == o.EpicID
}

// NewRecord returns an empty record of the given kind, or nil for an
// invalid kind.
func NewRecord(kind Kind) Record {
	switch kind {
	case KindTask:
		return NewTask("", "")
	case KindEpic:
		return NewEpic("", "")
	case KindSubtask:
		return NewSubtask("", "", 0)
	default:
		return nil
	}
}

// RecordsEqual compares two records of any kind using the kind-specific
// Equal method. Records of different kinds are never equal.
func RecordsEqual(a, b Record) bool {
	switch x := a.(type) {
	case *Task:
		y, ok := b.(*Task)
		return ok && x.Equal(y)
	case *Epic:
		y, ok := b.(*Epic)
		return ok && x.Equal(y)
	case *Subtask:
		y, ok := b.(*Subtask)
		return ok && x.Equal(y)
	default:
		return a == nil && b == nil
	}
}
