package types

import "fmt"

// Status is the progress state of a record.
type Status int

// Record statuses. StatusNew is the zero value so that freshly built records
// start as NEW.
const (
	StatusNew Status = iota
	StatusInProgress
	StatusDone
)

var statusNames = [...]string{
	StatusNew:        "NEW",
	StatusInProgress: "IN_PROGRESS",
	StatusDone:       "DONE",
}

// String returns the wire name of the status.
func (s Status) String() string {
	if s.Valid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	return s >= 0 && int(s) < len(statusNames)
}

// ParseStatus maps an exact wire name (NEW, IN_PROGRESS, DONE) to a Status.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusNew, fmt.Errorf("%q: %w", name, ErrInvalidStatus)
}

// DeriveEpicStatus computes an epic's status from the statuses of its
// subtasks. No subtasks, or only NEW subtasks, yield NEW; only DONE subtasks
// yield DONE; any other mix yields IN_PROGRESS.
func DeriveEpicStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusNew
	}
	var newCount, doneCount int
	for _, s := range statuses {
		switch s {
		case StatusNew:
			newCount++
		case StatusDone:
			doneCount++
		}
	}
	switch len(statuses) {
	case newCount:
		return StatusNew
	case doneCount:
		return StatusDone
	default:
		return StatusInProgress
	}
}

// MarshalText encodes the status as its wire name.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%d: %w", int(s), ErrInvalidStatus)
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText decodes an exact wire name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
