// Package clarify tracks partially-filled commands across turns. One
// pending command exists per session at a time; it is merged with
// follow-up answers until complete, superseded by an unrelated command,
// or abandoned after too many turns or too much silence.
package clarify

import (
	"fmt"
	"strings"
	"time"

	"stockhand/internal/catalog"
)

// PendingCommand is a not-yet-executable command awaiting missing
// parameters.
type PendingCommand struct {
	Action          string
	Collected       map[string]any
	MissingRequired []string
	CreatedAt       time.Time
	LastUpdatedAt   time.Time
	Turns           int
}

// Manager owns the session's single pending command.
type Manager struct {
	pending  *PendingCommand
	maxTurns int
	maxAge   time.Duration
	now      func() time.Time
}

// NewManager builds a manager with the given abandonment cutoffs.
// maxTurns counts follow-up answers; maxAge bounds total dialogue age.
func NewManager(maxTurns int, maxAge time.Duration) *Manager {
	return &Manager{maxTurns: maxTurns, maxAge: maxAge, now: time.Now}
}

// Pending returns the open command, or nil.
func (m *Manager) Pending() *PendingCommand {
	return m.pending
}

// Begin opens a dialogue for action with whatever was extracted so far.
// Any previous pending command is discarded.
func (m *Manager) Begin(action string, collected map[string]any, missing []string) *PendingCommand {
	now := m.now()
	if collected == nil {
		collected = map[string]any{}
	}
	m.pending = &PendingCommand{
		Action:          action,
		Collected:       collected,
		MissingRequired: missing,
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}
	return m.pending
}

// Merge records the result of a follow-up extraction turn. merged must
// already contain all previously collected fields (the extractor merges
// without dropping).
func (m *Manager) Merge(merged map[string]any, missing []string) *PendingCommand {
	if m.pending == nil {
		return nil
	}
	m.pending.Collected = merged
	m.pending.MissingRequired = missing
	m.pending.LastUpdatedAt = m.now()
	m.pending.Turns++
	return m.pending
}

// Complete closes the dialogue and returns the finished command.
func (m *Manager) Complete() *PendingCommand {
	p := m.pending
	m.pending = nil
	return p
}

// Abandon discards the pending command.
func (m *Manager) Abandon() {
	m.pending = nil
}

// Expired reports whether the pending command has outlived its turn or
// age budget and should be abandoned before processing new input.
func (m *Manager) Expired() bool {
	if m.pending == nil {
		return false
	}
	if m.maxTurns > 0 && m.pending.Turns >= m.maxTurns {
		return true
	}
	if m.maxAge > 0 && m.now().Sub(m.pending.CreatedAt) > m.maxAge {
		return true
	}
	return false
}

// Prompt renders the clarification question data: the missing fields
// with their descriptions and an echo of what is already known. The UI
// collaborator decides presentation; this is only its content.
func Prompt(spec catalog.ToolSpec, collected map[string]any, missing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To %s I still need: ", strings.ReplaceAll(spec.Name, "_", " "))
	for i, name := range missing {
		if i > 0 {
			b.WriteString(", ")
		}
		if f, ok := spec.Field(name); ok && f.Description != "" {
			fmt.Fprintf(&b, "%s (%s)", name, strings.TrimSuffix(f.Description, "."))
		} else {
			b.WriteString(name)
		}
	}
	b.WriteString(".")

	var known []string
	for _, f := range spec.Fields {
		if v, ok := collected[f.Name]; ok && v != nil && v != "" {
			known = append(known, fmt.Sprintf("%s=%v", f.Name, v))
		}
	}
	if len(known) > 0 {
		b.WriteString(" So far I have ")
		b.WriteString(strings.Join(known, ", "))
		b.WriteString(".")
	}
	return b.String()
}
