package types

import (
	"errors"
	"testing"
)

func TestNewRecordsStartUnsaved(t *testing.T) {
	task := NewTask("s", "d")
	epic := NewEpic("s", "d")
	sub := NewSubtask("s", "d", 7)

	for _, rec := range []Record{task, epic, sub} {
		if rec.Base().ID != 0 {
			t.Errorf("%v: ID = %d, want 0", rec.Kind(), rec.Base().ID)
		}
		if rec.Base().Status != StatusNew {
			t.Errorf("%v: Status = %v, want NEW", rec.Kind(), rec.Base().Status)
		}
	}
	if len(epic.SubtaskIDs) != 0 {
		t.Errorf("epic SubtaskIDs = %v, want empty", epic.SubtaskIDs)
	}
	if sub.EpicID != 7 {
		t.Errorf("subtask EpicID = %d, want 7", sub.EpicID)
	}
}

func TestRecordKinds(t *testing.T) {
	if got := NewTask("", "").Kind(); got != KindTask {
		t.Errorf("Task.Kind() = %v", got)
	}
	if got := NewEpic("", "").Kind(); got != KindEpic {
		t.Errorf("Epic.Kind() = %v", got)
	}
	if got := NewSubtask("", "", 1).Kind(); got != KindSubtask {
		t.Errorf("Subtask.Kind() = %v", got)
	}
}

func TestBaseSharesStorage(t *testing.T) {
	epic := NewEpic("s", "d")
	epic.Base().ID = 4
	if epic.ID != 4 {
		t.Fatalf("Base() does not alias the embedded task: ID = %d", epic.ID)
	}
}

func TestRecordsEqual(t *testing.T) {
	a := &Task{ID: 1, Summary: "s", Description: "d", Status: StatusDone}
	b := &Task{ID: 1, Summary: "s", Description: "d", Status: StatusDone}
	if !RecordsEqual(a, b) {
		t.Error("identical tasks not equal")
	}
	b.Status = StatusNew
	if RecordsEqual(a, b) {
		t.Error("tasks with different status equal")
	}

	e1 := &Epic{Task: Task{ID: 1}, SubtaskIDs: []int{1, 2}}
	e2 := &Epic{Task: Task{ID: 1}, SubtaskIDs: []int{1, 2}}
	if !RecordsEqual(e1, e2) {
		t.Error("identical epics not equal")
	}
	e2.SubtaskIDs = []int{2, 1}
	if RecordsEqual(e1, e2) {
		t.Error("epics with reordered subtasks equal")
	}

	s1 := &Subtask{Task: Task{ID: 1}, EpicID: 1}
	s2 := &Subtask{Task: Task{ID: 1}, EpicID: 2}
	if RecordsEqual(s1, s2) {
		t.Error("subtasks with different epics equal")
	}

	if RecordsEqual(&Task{ID: 1}, &Epic{Task: Task{ID: 1}}) {
		t.Error("records of different kinds equal")
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"Task":    KindTask,
		"task":    KindTask,
		"EPIC":    KindEpic,
		"Subtask": KindSubtask,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseKind("Story"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("ParseKind(Story) error = %v, want ErrInvalidKind", err)
	}
	if Kind(0).Valid() {
		t.Fatal("zero Kind reported valid")
	}
}

func TestHistoryKeyString(t *testing.T) {
	tests := []struct {
		key  HistoryKey
		want string
	}{
		{HistoryKey{ID: 1, Kind: KindTask}, "1_task"},
		{HistoryKey{ID: 12, Kind: KindEpic}, "12_epic"},
		{HistoryKey{ID: 3, Kind: KindSubtask}, "3_subtask"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}

	sub := NewSubtask("s", "d", 1)
	sub.ID = 5
	if got := KeyOf(sub); got != (HistoryKey{ID: 5, Kind: KindSubtask}) {
		t.Errorf("KeyOf = %+v", got)
	}
}
