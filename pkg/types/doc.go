// Package types defines the record model of the tracker (tasks, epics and
// subtasks), the TaskManager interface that every store implements, the
// history key shape, configuration, and the standard error values.
//
// Glossary: a Task is a standalone work item, an Epic groups Subtasks and
// derives its status from them, and a Subtask belongs to exactly one Epic.
package types
