package types

import (
	"fmt"
	"strings"
)

// Kind is the closed set of record kinds. It selects the storage bucket,
// the id namespace and the codec branch for a record.
type Kind int

// Record kinds. The zero value is invalid so that an unset Kind is never
// mistaken for a real one.
const (
	KindTask Kind = iota + 1
	KindEpic
	KindSubtask
)

// Kinds lists every valid kind in declaration order.
var Kinds = []Kind{KindTask, KindEpic, KindSubtask}

// SaveOrder is the order in which kinds are written to a snapshot. Epics
// come first so that subtasks can find their parent when loaded back.
var SaveOrder = []Kind{KindEpic, KindSubtask, KindTask}

var kindNames = map[Kind]string{
	KindTask:    "Task",
	KindEpic:    "Epic",
	KindSubtask: "Subtask",
}

// String returns the wire name of the kind ("Task", "Epic", "Subtask").
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a kind name to a Kind. Matching is case-insensitive so that
// command-line input like "epic" works; codecs match the exact wire name
// themselves.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidKind)
}
