// Package history is the session-scoped, append-only log of executed
// commands. Undo is never an in-place edit: it dispatches the entry's
// precomputed inverse and appends a new entry recording the undo.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"stockhand/internal/command"
	"stockhand/internal/executor"
)

// ErrNothingToUndo reports an undo request with no reversible entry
// left to revert.
var ErrNothingToUndo = errors.New("nothing to undo")

// Entry is one executed command. Never mutated after creation.
type Entry struct {
	ID            string            `json:"id"`
	TimestampMs   int64             `json:"timestamp_ms"`
	RawCommand    string            `json:"raw_command"`
	Action        string            `json:"action"`
	Parameters    map[string]any    `json:"parameters"`
	Success       bool              `json:"success"`
	ResultSummary string            `json:"result_summary"`
	Reversible    bool              `json:"reversible"`
	Reverse       *command.ToolCall `json:"reverse_action,omitempty"`
	UndoOf        string            `json:"undo_of,omitempty"`
}

// Dispatcher executes a tool call. Satisfied by *executor.Executor.
type Dispatcher interface {
	Execute(ctx context.Context, call command.ToolCall) executor.Outcome
}

// Log is the append-only command history for one session. It is only
// ever touched by the session's sequential pipeline; no locking.
type Log struct {
	entries []Entry
	undone  map[string]bool
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{undone: make(map[string]bool)}
}

// NewEntry builds a log entry for an executed command.
func NewEntry(rawCommand string, call command.ToolCall, out executor.Outcome) Entry {
	return Entry{
		ID:            uuid.NewString(),
		TimestampMs:   time.Now().UnixMilli(),
		RawCommand:    rawCommand,
		Action:        call.Action,
		Parameters:    call.Parameters,
		Success:       out.Result.Success,
		ResultSummary: out.Result.Message,
		Reversible:    out.Reversible,
		Reverse:       out.Reverse,
	}
}

// Append adds an entry in execution order.
func (l *Log) Append(e Entry) {
	l.entries = append(l.entries, e)
}

// Entries returns the history, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// UndoLast reverts the most recent reversible, successful entry not yet
// undone by dispatching its precomputed inverse. The undo itself is
// appended as a forward entry; undoing an undo is therefore possible.
func (l *Log) UndoLast(ctx context.Context, d Dispatcher) (Entry, error) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		target := l.entries[i]
		if !target.Reversible || !target.Success || target.Reverse == nil || l.undone[target.ID] {
			continue
		}

		out := d.Execute(ctx, *target.Reverse)
		undoEntry := NewEntry("undo "+target.RawCommand, *target.Reverse, out)
		undoEntry.UndoOf = target.ID
		if out.Result.Success {
			// Bookkeeping lives beside the log, not inside entries.
			l.undone[target.ID] = true
		}
		l.Append(undoEntry)
		return undoEntry, nil
	}
	return Entry{}, ErrNothingToUndo
}
