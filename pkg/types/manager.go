package types

// TaskManager is the contract shared by the in-memory store and its
// persistent decorators. Every method runs synchronously; implementations
// assume a single caller at a time.
type TaskManager interface {
	// Add inserts rec and returns its id. A zero id is replaced by a fresh
	// one from the kind's allocator. Adding a Subtask whose epic does not
	// exist returns ErrInvalidReference and leaves the store untouched.
	Add(rec Record) (int, error)

	// Update copies summary and description from patch onto the stored
	// record of the same kind. Status is copied for tasks and subtasks and
	// ignored for epics. Returns ErrNotFound if no such record exists.
	Update(id int, patch Record) (Record, error)

	// Get returns the record and records the lookup in the history.
	// Returns ErrNotFound if no such record exists.
	Get(id int, kind Kind) (Record, error)

	// List returns every record of the kind in insertion order.
	List(kind Kind) ([]Record, error)

	// Clear removes every record of the kind. Clearing epics also discards
	// all subtasks; clearing subtasks resets every epic to NEW.
	Clear(kind Kind) error

	// Remove deletes one record. Removing an epic removes its subtasks
	// first. Returns ErrNotFound if no such record exists.
	Remove(id int, kind Kind) error

	// History returns the viewed records, least recent first.
	History() []HistoryEntry
}
