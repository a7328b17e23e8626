package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func historyKeys(s *Store) []string {
	entries := s.History()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key.String()
	}
	return out
}

func mustAdd(t *testing.T, s *Store, rec types.Record) int {
	t.Helper()
	id, err := s.Add(rec)
	require.NoError(t, err)
	return id
}

func epicOf(t *testing.T, s *Store, id int) *types.Epic {
	t.Helper()
	rec := s.find(id, types.KindEpic)
	require.NotNil(t, rec, "epic %d missing", id)
	return rec.(*types.Epic)
}

func TestAddAssignsPerKindIDs(t *testing.T) {
	s := New()

	t1 := mustAdd(t, s, types.NewTask("task1", "d"))
	t2 := mustAdd(t, s, types.NewTask("task2", "d"))
	e1 := mustAdd(t, s, types.NewEpic("epic1", "d"))
	s1 := mustAdd(t, s, types.NewSubtask("sub1", "d", e1))

	assert.Equal(t, 1, t1)
	assert.Equal(t, 2, t2)
	assert.Equal(t, 1, e1, "epic ids live in their own namespace")
	assert.Equal(t, 1, s1, "subtask ids live in their own namespace")
}

func TestAddKeepsExplicitID(t *testing.T) {
	s := New()
	task := types.NewTask("restored", "d")
	task.ID = 7

	id := mustAdd(t, s, task)
	assert.Equal(t, 7, id)

	next := mustAdd(t, s, types.NewTask("fresh", "d"))
	assert.Equal(t, 8, next, "allocator advances past restored ids")
}

func TestAddSavedRecordsFillsHistory(t *testing.T) {
	s := New()
	epic := types.NewEpic("epic1", "d")
	epic.ID = 4
	mustAdd(t, s, epic)
	mustAdd(t, s, &types.Subtask{Task: types.Task{ID: 2, Summary: "sub", Status: types.StatusDone}, EpicID: 4})
	mustAdd(t, s, &types.Task{ID: 9, Summary: "task", Status: types.StatusInProgress})

	assert.Equal(t, []string{"4_epic", "2_subtask", "9_task"}, historyKeys(s))
	assert.Equal(t, []int{2}, epicOf(t, s, 4).SubtaskIDs)
	assert.Equal(t, types.StatusDone, epicOf(t, s, 4).Status)
	assert.Equal(t, 5, mustAdd(t, s, types.NewEpic("epic2", "d")))
}

func TestAddRejectsInvalidStatus(t *testing.T) {
	s := New()
	e := mustAdd(t, s, types.NewEpic("epic", "d"))

	_, err := s.Add(&types.Task{Summary: "t", Status: types.Status(7)})
	require.ErrorIs(t, err, types.ErrInvalidStatus)
	_, err = s.Add(&types.Subtask{Task: types.Task{Summary: "s", Status: types.Status(-1)}, EpicID: e})
	require.ErrorIs(t, err, types.ErrInvalidStatus)

	tasks, _ := s.List(types.KindTask)
	subs, _ := s.List(types.KindSubtask)
	assert.Empty(t, tasks)
	assert.Empty(t, subs)
	assert.Empty(t, epicOf(t, s, e).SubtaskIDs)
	assert.Equal(t, 1, mustAdd(t, s, types.NewTask("ok", "d")), "rejected adds consume no id")
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	s := New()
	id := mustAdd(t, s, types.NewTask("task", "d"))
	e := mustAdd(t, s, types.NewEpic("epic", "d"))

	_, err := s.Update(id, &types.Task{Summary: "changed", Status: types.Status(7)})
	require.ErrorIs(t, err, types.ErrInvalidStatus)

	rec := s.find(id, types.KindTask)
	assert.Equal(t, "task", rec.Base().Summary, "a rejected update changes nothing")
	assert.Equal(t, types.StatusNew, rec.Base().Status)

	// Epic status is never taken from the patch, so it is not checked either.
	_, err = s.Update(e, &types.Epic{Task: types.Task{Summary: "epic2", Status: types.Status(7)}})
	require.NoError(t, err)
	assert.Equal(t, types.StatusNew, epicOf(t, s, e).Status)
}

func TestAddDuplicateID(t *testing.T) {
	s := New()
	a := types.NewTask("a", "d")
	a.ID = 3
	mustAdd(t, s, a)

	b := types.NewTask("b", "d")
	b.ID = 3
	_, err := s.Add(b)
	require.ErrorIs(t, err, types.ErrDuplicateID)

	list, err := s.List(types.KindTask)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddNil(t *testing.T) {
	s := New()
	var task *types.Task

	_, err := s.Add(nil)
	assert.ErrorIs(t, err, types.ErrNilRecord)
	_, err = s.Add(task)
	assert.ErrorIs(t, err, types.ErrNilRecord)
}

func TestAddSubtaskWithoutEpic(t *testing.T) {
	s := New()
	epicID := mustAdd(t, s, types.NewEpic("epic", "d"))
	before := historyKeys(s)

	_, err := s.Add(types.NewSubtask("orphan", "d", epicID+1))
	require.ErrorIs(t, err, types.ErrInvalidReference)

	subs, err := s.List(types.KindSubtask)
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Empty(t, epicOf(t, s, epicID).SubtaskIDs)
	assert.Equal(t, before, historyKeys(s))

	// No id was consumed by the failed insert.
	id := mustAdd(t, s, types.NewSubtask("child", "d", epicID))
	assert.Equal(t, 1, id)
}

func TestAddEpicResetsMembership(t *testing.T) {
	s := New()
	epic := types.NewEpic("epic", "d")
	epic.SubtaskIDs = []int{4, 5}
	epic.Status = types.StatusDone

	id := mustAdd(t, s, epic)
	got := epicOf(t, s, id)
	assert.Empty(t, got.SubtaskIDs)
	assert.Equal(t, types.StatusNew, got.Status)
}

func TestEpicStatusScenario(t *testing.T) {
	s := New()

	epicID := mustAdd(t, s, types.NewEpic("epic1", "d1"))
	require.Equal(t, 1, epicID)

	subID := mustAdd(t, s, types.NewSubtask("s1", "d1", epicID))
	require.Equal(t, 1, subID)
	epic := epicOf(t, s, epicID)
	assert.Equal(t, []int{1}, epic.SubtaskIDs)
	assert.Equal(t, types.StatusNew, epic.Status)

	patch := types.NewSubtask("s1", "d1", epicID)
	patch.Status = types.StatusDone
	_, err := s.Update(subID, patch)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDone, epic.Status)

	mustAdd(t, s, types.NewSubtask("s2", "d2", epicID))
	assert.Equal(t, types.StatusInProgress, epic.Status)
}

func TestUpdateTask(t *testing.T) {
	s := New()
	id := mustAdd(t, s, types.NewTask("task1", "task1_desc"))

	patch := &types.Task{Summary: "task1_upd", Description: "task1_desc_upd", Status: types.StatusInProgress}
	got, err := s.Update(id, patch)
	require.NoError(t, err)

	want := &types.Task{ID: id, Summary: "task1_upd", Description: "task1_desc_upd", Status: types.StatusInProgress}
	assert.True(t, types.RecordsEqual(want, got), "got %+v", got)
}

func TestUpdateEpicIgnoresStatus(t *testing.T) {
	s := New()
	e1 := mustAdd(t, s, types.NewEpic("epic1", "epic1_desc"))
	e2 := mustAdd(t, s, types.NewEpic("epic2", "epic2_desc"))
	s1 := mustAdd(t, s, types.NewSubtask("subtask1", "subtask1_desc", e1))
	s2 := mustAdd(t, s, types.NewSubtask("subtask2", "subtask2_desc", e1))
	s3 := mustAdd(t, s, types.NewSubtask("subtask3", "subtask3_desc", e2))
	s4 := mustAdd(t, s, types.NewSubtask("subtask4", "subtask4_desc", e2))

	epicPatch := types.NewEpic("epic2_upd", "epic2_desc_upd")
	epicPatch.Status = types.StatusInProgress
	_, err := s.Update(e2, epicPatch)
	require.NoError(t, err)
	assert.Equal(t, types.StatusNew, epicOf(t, s, e2).Status, "epic status comes only from subtasks")

	updates := []struct {
		id     int
		status types.Status
	}{
		{s1, types.StatusInProgress},
		{s2, types.StatusDone},
		{s3, types.StatusDone},
		{s4, types.StatusDone},
	}
	for _, u := range updates {
		patch := types.NewSubtask("upd", "upd_desc", 0)
		patch.Status = u.status
		_, err := s.Update(u.id, patch)
		require.NoError(t, err)
	}

	rec, err := s.Get(s1, types.KindSubtask)
	require.NoError(t, err)
	sub := rec.(*types.Subtask)
	assert.Equal(t, "upd", sub.Summary)
	assert.Equal(t, types.StatusInProgress, sub.Status)
	assert.Equal(t, e1, sub.EpicID, "epic id is fixed at creation")

	epic2 := epicOf(t, s, e2)
	assert.Equal(t, "epic2_upd", epic2.Summary)
	assert.Equal(t, "epic2_desc_upd", epic2.Description)
	assert.Equal(t, types.StatusDone, epic2.Status)
	assert.Equal(t, types.StatusInProgress, epicOf(t, s, e1).Status)
}

func TestUpdateNotFound(t *testing.T) {
	s := New()
	mustAdd(t, s, types.NewTask("task", "d"))

	_, err := s.Update(1, types.NewEpic("x", "y"))
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.Update(9, types.NewTask("x", "y"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateHistory(t *testing.T) {
	s := New()
	taskID := mustAdd(t, s, types.NewTask("task", "d"))
	epicID := mustAdd(t, s, types.NewEpic("epic", "d"))
	require.Equal(t, []string{"1_task", "1_epic"}, historyKeys(s))

	_, err := s.Update(taskID, types.NewTask("task", "changed"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1_epic", "1_task"}, historyKeys(s))

	_, err = s.Update(epicID, types.NewEpic("epic", "changed"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1_epic", "1_task"}, historyKeys(s), "epic updates do not touch history")
}

func TestGetRecordsView(t *testing.T) {
	s := New()
	t1 := mustAdd(t, s, types.NewTask("a", "d"))
	mustAdd(t, s, types.NewTask("b", "d"))

	rec, err := s.Get(t1, types.KindTask)
	require.NoError(t, err)
	assert.Equal(t, "a", rec.Base().Summary)
	assert.Equal(t, []string{"2_task", "1_task"}, historyKeys(s))

	_, err = s.Get(42, types.KindTask)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.Get(1, types.Kind(0))
	assert.ErrorIs(t, err, types.ErrInvalidKind)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	s := New()
	for _, name := range []string{"c", "a", "b"} {
		mustAdd(t, s, types.NewTask(name, ""))
	}

	list, err := s.List(types.KindTask)
	require.NoError(t, err)
	var names []string
	for _, rec := range list {
		names = append(names, rec.Base().Summary)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)

	_, err = s.List(types.Kind(99))
	assert.ErrorIs(t, err, types.ErrInvalidKind)
}

func TestRemoveTask(t *testing.T) {
	s := New()
	t1 := mustAdd(t, s, types.NewTask("task1", "d"))
	t2 := mustAdd(t, s, types.NewTask("task2", "d"))

	require.NoError(t, s.Remove(t2, types.KindTask))

	list, _ := s.List(types.KindTask)
	require.Len(t, list, 1)
	assert.Equal(t, t1, list[0].Base().ID)
	assert.Equal(t, []string{"1_task"}, historyKeys(s))
	assert.ErrorIs(t, s.Remove(t2, types.KindTask), types.ErrNotFound)
}

func TestRemoveSubtaskUpdatesEpic(t *testing.T) {
	s := New()
	e := mustAdd(t, s, types.NewEpic("epic", "d"))
	done := types.NewSubtask("done", "d", e)
	done.Status = types.StatusDone
	s1 := mustAdd(t, s, done)
	s2 := mustAdd(t, s, types.NewSubtask("new", "d", e))
	require.Equal(t, types.StatusInProgress, epicOf(t, s, e).Status)

	require.NoError(t, s.Remove(s2, types.KindSubtask))

	epic := epicOf(t, s, e)
	assert.Equal(t, []int{s1}, epic.SubtaskIDs)
	assert.Equal(t, types.StatusDone, epic.Status)
	assert.NotContains(t, historyKeys(s), "2_subtask")

	assert.ErrorIs(t, s.Remove(s2, types.KindSubtask), types.ErrNotFound)
}

func TestRemoveEpicCascades(t *testing.T) {
	s := New()
	e1 := mustAdd(t, s, types.NewEpic("epic1", "d"))
	e2 := mustAdd(t, s, types.NewEpic("epic2", "d"))
	mustAdd(t, s, types.NewSubtask("s1", "d", e1))
	mustAdd(t, s, types.NewSubtask("s2", "d", e2))
	mustAdd(t, s, types.NewSubtask("s3", "d", e2))

	require.NoError(t, s.Remove(e2, types.KindEpic))

	subs, _ := s.List(types.KindSubtask)
	require.Len(t, subs, 1)
	assert.Equal(t, e1, subs[0].(*types.Subtask).EpicID)
	epics, _ := s.List(types.KindEpic)
	require.Len(t, epics, 1)
	assert.Equal(t, []string{"1_epic", "1_subtask"}, historyKeys(s))

	assert.ErrorIs(t, s.Remove(e2, types.KindEpic), types.ErrNotFound)
}

func TestClearTasks(t *testing.T) {
	s := New()
	mustAdd(t, s, types.NewTask("a", "d"))
	mustAdd(t, s, types.NewTask("b", "d"))
	e := mustAdd(t, s, types.NewEpic("epic", "d"))

	require.NoError(t, s.Clear(types.KindTask))

	list, _ := s.List(types.KindTask)
	assert.Empty(t, list)
	assert.Equal(t, []string{"1_epic"}, historyKeys(s))
	assert.NotNil(t, epicOf(t, s, e))
}

func TestClearSubtasksResetsEpics(t *testing.T) {
	s := New()
	e1 := mustAdd(t, s, types.NewEpic("epic1", "d"))
	e2 := mustAdd(t, s, types.NewEpic("epic2", "d"))
	for _, e := range []int{e1, e2} {
		sub := types.NewSubtask("s", "d", e)
		sub.Status = types.StatusDone
		mustAdd(t, s, sub)
	}
	require.Equal(t, types.StatusDone, epicOf(t, s, e1).Status)

	require.NoError(t, s.Clear(types.KindSubtask))

	subs, _ := s.List(types.KindSubtask)
	assert.Empty(t, subs)
	for _, e := range []int{e1, e2} {
		epic := epicOf(t, s, e)
		assert.Empty(t, epic.SubtaskIDs)
		assert.Equal(t, types.StatusNew, epic.Status)
	}
	assert.Equal(t, []string{"1_epic", "2_epic"}, historyKeys(s))
}

func TestClearEpicsDiscardsSubtasks(t *testing.T) {
	s := New()
	e := mustAdd(t, s, types.NewEpic("epic", "d"))
	mustAdd(t, s, types.NewSubtask("s1", "d", e))
	mustAdd(t, s, types.NewSubtask("s2", "d", e))
	require.Len(t, s.History(), 3)

	require.NoError(t, s.Clear(types.KindEpic))

	epics, _ := s.List(types.KindEpic)
	subs, _ := s.List(types.KindSubtask)
	assert.Empty(t, epics)
	assert.Empty(t, subs)
	assert.Empty(t, s.History())
}

func TestClearEpicsToleratesStaleSubtaskIDs(t *testing.T) {
	s := New()
	e := mustAdd(t, s, types.NewEpic("epic", "d"))
	mustAdd(t, s, types.NewSubtask("s1", "d", e))
	epicOf(t, s, e).SubtaskIDs = append(epicOf(t, s, e).SubtaskIDs, 99)

	require.NoError(t, s.Clear(types.KindEpic))
	assert.Empty(t, s.History())
}

func TestClearInvalidKind(t *testing.T) {
	assert.ErrorIs(t, New().Clear(types.Kind(0)), types.ErrInvalidKind)
	assert.ErrorIs(t, New().Remove(1, types.Kind(0)), types.ErrInvalidKind)
}

// Epic membership always mirrors the subtasks pointing at the epic.
func TestMembershipInvariant(t *testing.T) {
	s := New()
	e1 := mustAdd(t, s, types.NewEpic("e1", ""))
	e2 := mustAdd(t, s, types.NewEpic("e2", ""))
	var subs []int
	for i := 0; i < 6; i++ {
		parent := e1
		if i%2 == 1 {
			parent = e2
		}
		subs = append(subs, mustAdd(t, s, types.NewSubtask("s", "", parent)))
	}
	require.NoError(t, s.Remove(subs[0], types.KindSubtask))
	require.NoError(t, s.Remove(subs[3], types.KindSubtask))

	check := func() {
		list, _ := s.List(types.KindSubtask)
		want := map[int][]int{}
		for _, rec := range list {
			st := rec.(*types.Subtask)
			want[st.EpicID] = append(want[st.EpicID], st.ID)
		}
		epics, _ := s.List(types.KindEpic)
		for _, rec := range epics {
			ep := rec.(*types.Epic)
			assert.ElementsMatch(t, want[ep.ID], ep.SubtaskIDs, "epic %d", ep.ID)
		}
	}
	check()

	require.NoError(t, s.Remove(e1, types.KindEpic))
	check()
}
